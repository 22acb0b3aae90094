package memstore

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) GetConversationByExternal(_ context.Context, arg sqlc.GetConversationByExternalParams) (sqlc.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.Platform == arg.Platform && c.PlatformConversationID == arg.PlatformConversationID {
			return c, nil
		}
	}
	return sqlc.Conversation{}, errNoRows
}

func (s *Store) GetConversationByID(_ context.Context, id pgtype.UUID) (sqlc.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id.Bytes]
	if !ok {
		return sqlc.Conversation{}, errNoRows
	}
	return c, nil
}

func (s *Store) CreateConversation(_ context.Context, arg sqlc.CreateConversationParams) (sqlc.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateConversation"); err != nil {
		return sqlc.Conversation{}, err
	}
	for _, c := range s.conversations {
		if c.Platform == arg.Platform && c.PlatformConversationID == arg.PlatformConversationID {
			return sqlc.Conversation{}, errNoRows
		}
	}
	now := s.stamp()
	c := sqlc.Conversation{
		ID:                     db.NewUUID(),
		ClientID:               arg.ClientID,
		Platform:               arg.Platform,
		PlatformConversationID: arg.PlatformConversationID,
		LastMessageAt:          now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	s.conversations[c.ID.Bytes] = c
	return c, nil
}

func (s *Store) TouchConversation(_ context.Context, arg sqlc.TouchConversationParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("TouchConversation"); err != nil {
		return err
	}
	c, ok := s.conversations[arg.ID.Bytes]
	if !ok {
		return nil
	}
	now := s.stamp()
	c.LastMessageAt = now
	c.IsRead = arg.IsRead
	c.UpdatedAt = now
	s.conversations[c.ID.Bytes] = c
	return nil
}

func (s *Store) MarkConversationRead(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id.Bytes]
	if !ok {
		return 0, nil
	}
	c.IsRead = true
	c.UpdatedAt = s.stamp()
	s.conversations[c.ID.Bytes] = c
	return 1, nil
}

func (s *Store) ListConversations(_ context.Context) ([]sqlc.ListConversationsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.ListConversationsRow
	for _, c := range s.conversations {
		cl, ok := s.clients[c.ClientID.Bytes]
		if !ok {
			continue
		}
		items = append(items, sqlc.ListConversationsRow{
			ID:                     c.ID,
			ClientID:               c.ClientID,
			Platform:               c.Platform,
			PlatformConversationID: c.PlatformConversationID,
			AssignedTo:             c.AssignedTo,
			IsRead:                 c.IsRead,
			LastMessageAt:          c.LastMessageAt,
			CreatedAt:              c.CreatedAt,
			UpdatedAt:              c.UpdatedAt,
			ClientName:             cl.Name,
			ClientPhone:            cl.PhoneNumber,
			ClientStatus:           cl.Status,
		})
	}
	slices.SortFunc(items, func(a, b sqlc.ListConversationsRow) int {
		switch {
		case a.LastMessageAt.Valid && !b.LastMessageAt.Valid:
			return -1
		case !a.LastMessageAt.Valid && b.LastMessageAt.Valid:
			return 1
		}
		if c := newestFirst(a.LastMessageAt, b.LastMessageAt); c != 0 {
			return c
		}
		return newestFirst(a.CreatedAt, b.CreatedAt)
	})
	return items, nil
}

func (s *Store) ReassignConversations(_ context.Context, arg sqlc.ReassignConversationsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, c := range s.conversations {
		if c.ClientID == arg.SecondaryID {
			c.ClientID = arg.PrimaryID
			c.UpdatedAt = s.stamp()
			s.conversations[k] = c
			n++
		}
	}
	return n, nil
}
