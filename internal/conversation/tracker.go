// Package conversation keys platform threads to CRM conversations.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type Store interface {
	GetConversationByExternal(ctx context.Context, arg sqlc.GetConversationByExternalParams) (sqlc.Conversation, error)
	CreateConversation(ctx context.Context, arg sqlc.CreateConversationParams) (sqlc.Conversation, error)
	TouchConversation(ctx context.Context, arg sqlc.TouchConversationParams) error
}

// Tracker resolves and touches conversations.
type Tracker struct {
	store  Store
	logger *slog.Logger
}

func NewTracker(log *slog.Logger, store Store) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{store: store, logger: log.With(slog.String("service", "conversation"))}
}

// Resolve returns the conversation for (platform, externalID), creating it
// for clientID when absent. An existing conversation keeps its client.
func (t *Tracker) Resolve(ctx context.Context, platform, externalID, clientID string) (Conversation, error) {
	platform = strings.TrimSpace(platform)
	externalID = strings.TrimSpace(externalID)
	if platform == "" || externalID == "" {
		return Conversation{}, fmt.Errorf("%w: platform and external id are required", ErrInvalidConversation)
	}
	key := sqlc.GetConversationByExternalParams{Platform: platform, PlatformConversationID: externalID}

	row, err := t.store.GetConversationByExternal(ctx, key)
	if err == nil {
		return FromRow(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, fmt.Errorf("lookup conversation: %w", err)
	}

	pgClientID, err := db.ParseUUID(clientID)
	if err != nil {
		return Conversation{}, fmt.Errorf("%w: client id", ErrInvalidConversation)
	}
	row, err = t.store.CreateConversation(ctx, sqlc.CreateConversationParams{
		ClientID:               pgClientID,
		Platform:               platform,
		PlatformConversationID: externalID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the insert race; the winner's row is authoritative.
		row, err = t.store.GetConversationByExternal(ctx, key)
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	t.logger.Debug("conversation opened",
		slog.String("conversation_id", db.UUIDString(row.ID)),
		slog.String("platform", platform),
	)
	return FromRow(row), nil
}

// Touch bumps last_message_at. Inbound traffic marks the conversation
// unread; outbound replies mark it read.
func (t *Tracker) Touch(ctx context.Context, conversationID string, inbound bool) error {
	id, err := db.ParseUUID(conversationID)
	if err != nil {
		return fmt.Errorf("%w: conversation id", ErrInvalidConversation)
	}
	if err := t.store.TouchConversation(ctx, sqlc.TouchConversationParams{ID: id, IsRead: !inbound}); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}
