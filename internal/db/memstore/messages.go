package memstore

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) MessageExists(_ context.Context, arg sqlc.MessageExistsParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MessageExists"); err != nil {
		return false, err
	}
	for _, m := range s.messages {
		if m.Platform == arg.Platform && m.PlatformMessageID == arg.PlatformMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateMessage(_ context.Context, arg sqlc.CreateMessageParams) (sqlc.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateMessage"); err != nil {
		return sqlc.Message{}, err
	}
	for _, m := range s.messages {
		if m.Platform == arg.Platform && m.PlatformMessageID == arg.PlatformMessageID {
			return sqlc.Message{}, errNoRows
		}
	}
	m := sqlc.Message{
		ID:                db.NewUUID(),
		ConversationID:    arg.ConversationID,
		ClientID:          arg.ClientID,
		Platform:          arg.Platform,
		PlatformMessageID: arg.PlatformMessageID,
		MessageType:       arg.MessageType,
		Content:           arg.Content,
		MediaUrl:          arg.MediaUrl,
		IsInbound:         arg.IsInbound,
		IsRead:            arg.IsRead,
		SenderName:        arg.SenderName,
		SenderID:          arg.SenderID,
		RepliedTo:         arg.RepliedTo,
		RepliedBy:         arg.RepliedBy,
		ReplyContent:      arg.ReplyContent,
		RepliedAt:         arg.RepliedAt,
		Metadata:          arg.Metadata,
		CreatedAt:         arg.CreatedAt,
	}
	if !m.CreatedAt.Valid {
		m.CreatedAt = s.stamp()
	}
	s.messages[m.ID.Bytes] = m
	return m, nil
}

func (s *Store) ListMessagesByConversation(_ context.Context, conversationID pgtype.UUID) ([]sqlc.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			items = append(items, m)
		}
	}
	slices.SortFunc(items, func(a, b sqlc.Message) int { return a.CreatedAt.Time.Compare(b.CreatedAt.Time) })
	return items, nil
}

func (s *Store) MarkConversationMessagesRead(_ context.Context, conversationID pgtype.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, m := range s.messages {
		if m.ConversationID == conversationID && !m.IsRead {
			m.IsRead = true
			s.messages[k] = m
		}
	}
	return nil
}

func (s *Store) ReassignMessages(_ context.Context, arg sqlc.ReassignMessagesParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReassignMessages"); err != nil {
		return 0, err
	}
	var n int64
	for k, m := range s.messages {
		if m.ClientID == arg.SecondaryID {
			m.ClientID = arg.PrimaryID
			s.messages[k] = m
			n++
		}
	}
	return n, nil
}
