// Package message persists chat messages and serves the conversation inbox.
package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/conversation"
	dbpkg "github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type Store interface {
	MessageExists(ctx context.Context, arg sqlc.MessageExistsParams) (bool, error)
	CreateMessage(ctx context.Context, arg sqlc.CreateMessageParams) (sqlc.Message, error)
	ListMessagesByConversation(ctx context.Context, conversationID pgtype.UUID) ([]sqlc.Message, error)
	MarkConversationMessagesRead(ctx context.Context, conversationID pgtype.UUID) error
	GetConversationByID(ctx context.Context, id pgtype.UUID) (sqlc.Conversation, error)
	ListConversations(ctx context.Context) ([]sqlc.ListConversationsRow, error)
	MarkConversationRead(ctx context.Context, id pgtype.UUID) (int64, error)
}

// DBService persists and reads client messages.
type DBService struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a message service.
func NewService(log *slog.Logger, store Store) *DBService {
	if log == nil {
		log = slog.Default()
	}
	return &DBService{
		store:  store,
		logger: log.With(slog.String("service", "message")),
		now:    time.Now,
	}
}

// Exists reports whether a platform message was already stored.
func (s *DBService) Exists(ctx context.Context, platform, platformMessageID string) (bool, error) {
	exists, err := s.store.MessageExists(ctx, sqlc.MessageExistsParams{Platform: platform, PlatformMessageID: platformMessageID})
	if err != nil {
		return false, fmt.Errorf("check message exists: %w", err)
	}
	return exists, nil
}

// Persist writes a single message. A second write of the same platform
// message id returns ErrDuplicate.
func (s *DBService) Persist(ctx context.Context, input PersistInput) (Message, error) {
	if strings.TrimSpace(input.Platform) == "" || strings.TrimSpace(input.PlatformMessageID) == "" {
		return Message{}, fmt.Errorf("%w: platform and platform message id are required", ErrInvalid)
	}
	pgConversationID, err := dbpkg.ParseUUID(input.ConversationID)
	if err != nil {
		return Message{}, fmt.Errorf("%w: conversation id", ErrInvalid)
	}
	pgClientID, err := dbpkg.ParseUUID(input.ClientID)
	if err != nil {
		return Message{}, fmt.Errorf("%w: client id", ErrInvalid)
	}
	pgRepliedBy, err := dbpkg.OptionalUUID(input.RepliedBy)
	if err != nil {
		return Message{}, fmt.Errorf("%w: replied by", ErrInvalid)
	}

	metaBytes, err := json.Marshal(nonNilMap(input.Metadata))
	if err != nil {
		return Message{}, fmt.Errorf("marshal message metadata: %w", err)
	}
	messageType := strings.TrimSpace(input.MessageType)
	if messageType == "" {
		messageType = "text"
	}

	params := sqlc.CreateMessageParams{
		ConversationID:    pgConversationID,
		ClientID:          pgClientID,
		Platform:          input.Platform,
		PlatformMessageID: input.PlatformMessageID,
		MessageType:       messageType,
		Content:           toPgText(input.Content),
		MediaUrl:          dbpkg.Text(input.MediaURL),
		IsInbound:         input.Inbound,
		IsRead:            !input.Inbound,
		SenderName:        dbpkg.Text(input.SenderName),
		SenderID:          dbpkg.Text(input.SenderID),
		RepliedTo:         dbpkg.Text(input.RepliedTo),
		RepliedBy:         pgRepliedBy,
		Metadata:          metaBytes,
		CreatedAt:         dbpkg.Timestamptz(s.now()),
	}
	if !input.ReceivedAt.IsZero() {
		params.CreatedAt = dbpkg.Timestamptz(input.ReceivedAt)
	}
	if !input.Inbound {
		params.ReplyContent = toPgText(input.Content)
		params.RepliedAt = dbpkg.Timestamptz(s.now())
	}

	row, err := s.store.CreateMessage(ctx, params)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrDuplicate
	}
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return FromRow(row), nil
}

// ListConversations returns the inbox, most recent activity first.
func (s *DBService) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	rows, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]ConversationSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryFromRow(row))
	}
	return out, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (s *DBService) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	id, err := s.conversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListMessagesByConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// MarkRead marks the conversation and all of its messages as read.
func (s *DBService) MarkRead(ctx context.Context, conversationID string) error {
	id, err := s.conversationID(ctx, conversationID)
	if err != nil {
		return err
	}
	if _, err := s.store.MarkConversationRead(ctx, id); err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	if err := s.store.MarkConversationMessagesRead(ctx, id); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

func (s *DBService) conversationID(ctx context.Context, raw string) (pgtype.UUID, error) {
	id, err := dbpkg.ParseUUID(raw)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: conversation id", conversation.ErrInvalidConversation)
	}
	if _, err := s.store.GetConversationByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, conversation.ErrConversationNotFound
		}
		return pgtype.UUID{}, fmt.Errorf("load conversation: %w", err)
	}
	return id, nil
}

// toPgText keeps message bodies verbatim, only mapping empty to NULL.
func toPgText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
