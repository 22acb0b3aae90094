// Package outbound delivers staff replies through a conversation's platform
// adapter and audits every attempt.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
	messagepkg "github.com/acoustichub/crm/internal/message"
	"github.com/acoustichub/crm/internal/prune"
)

var (
	ErrInvalidReply   = errors.New("invalid reply")
	ErrDeliveryFailed = errors.New("reply delivery failed")
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// DispatchLog is one delivery attempt.
type DispatchLog struct {
	ID                string    `json:"id"`
	ConversationID    string    `json:"conversationId"`
	ClientID          string    `json:"clientId"`
	Platform          string    `json:"platform"`
	Content           string    `json:"content"`
	SentBy            string    `json:"sentBy,omitempty"`
	Status            string    `json:"status"`
	PlatformMessageID string    `json:"platformMessageId,omitempty"`
	ErrorMessage      string    `json:"errorMessage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func LogFromRow(row sqlc.DispatchLog) DispatchLog {
	return DispatchLog{
		ID:                db.UUIDString(row.ID),
		ConversationID:    db.UUIDString(row.ConversationID),
		ClientID:          db.UUIDString(row.ClientID),
		Platform:          row.Platform,
		Content:           row.Content,
		SentBy:            db.UUIDString(row.SentBy),
		Status:            row.Status,
		PlatformMessageID: db.TextValue(row.PlatformMessageID),
		ErrorMessage:      db.TextValue(row.ErrorMessage),
		CreatedAt:         db.TimeFromPg(row.CreatedAt),
	}
}

type Store interface {
	GetConversationByID(ctx context.Context, id pgtype.UUID) (sqlc.Conversation, error)
	CreateDispatchLog(ctx context.Context, arg sqlc.CreateDispatchLogParams) (sqlc.DispatchLog, error)
	MarkDispatchSent(ctx context.Context, arg sqlc.MarkDispatchSentParams) (sqlc.DispatchLog, error)
	MarkDispatchFailed(ctx context.Context, arg sqlc.MarkDispatchFailedParams) (sqlc.DispatchLog, error)
	ListDispatchLogsByConversation(ctx context.Context, conversationID pgtype.UUID) ([]sqlc.DispatchLog, error)
}

// Senders looks up the delivery capability of a platform adapter.
type Senders interface {
	GetSender(channelType channel.ChannelType) (channel.Sender, bool)
}

type ConversationToucher interface {
	Touch(ctx context.Context, conversationID string, inbound bool) error
}

type Dispatcher struct {
	store         Store
	senders       Senders
	fallback      channel.Sender
	configs       channel.ConfigProvider
	messages      messagepkg.Writer
	conversations ConversationToucher
	logger        *slog.Logger
}

// NewDispatcher builds a dispatcher. fallback handles platforms without a
// delivering adapter and receives an empty manual config.
func NewDispatcher(
	log *slog.Logger,
	store Store,
	senders Senders,
	fallback channel.Sender,
	configs channel.ConfigProvider,
	messages messagepkg.Writer,
	conversations ConversationToucher,
) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		store:         store,
		senders:       senders,
		fallback:      fallback,
		configs:       configs,
		messages:      messages,
		conversations: conversations,
		logger:        log.With(slog.String("service", "outbound")),
	}
}

// SendReply delivers content to the conversation's platform. Every attempt
// leaves a dispatch log row; only delivered replies become messages.
func (d *Dispatcher) SendReply(ctx context.Context, conversationID, content, staffID string) (messagepkg.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return messagepkg.Message{}, fmt.Errorf("%w: content is required", ErrInvalidReply)
	}
	convID, err := db.ParseUUID(conversationID)
	if err != nil {
		return messagepkg.Message{}, fmt.Errorf("%w: conversation id", ErrInvalidReply)
	}
	staff, err := db.OptionalUUID(staffID)
	if err != nil {
		return messagepkg.Message{}, fmt.Errorf("%w: staff id", ErrInvalidReply)
	}
	conv, err := d.store.GetConversationByID(ctx, convID)
	if errors.Is(err, pgx.ErrNoRows) {
		return messagepkg.Message{}, conversation.ErrConversationNotFound
	}
	if err != nil {
		return messagepkg.Message{}, fmt.Errorf("load conversation: %w", err)
	}

	logRow, err := d.store.CreateDispatchLog(ctx, sqlc.CreateDispatchLogParams{
		ConversationID: conv.ID,
		ClientID:       conv.ClientID,
		Platform:       conv.Platform,
		Content:        content,
		SentBy:         staff,
	})
	if err != nil {
		return messagepkg.Message{}, fmt.Errorf("create dispatch log: %w", err)
	}

	result, sendErr := d.deliver(ctx, channel.ChannelType(conv.Platform), channel.OutboundMessage{
		Target: conv.PlatformConversationID,
		Text:   content,
	})
	if sendErr != nil {
		if _, err := d.store.MarkDispatchFailed(ctx, sqlc.MarkDispatchFailedParams{
			ID:           logRow.ID,
			ErrorMessage: db.Text(prune.ErrorText(sendErr)),
		}); err != nil {
			d.logger.Error("mark dispatch failed", slog.String("dispatch_id", db.UUIDString(logRow.ID)), slog.Any("error", err))
		}
		d.logger.Warn("reply delivery failed",
			slog.String("conversation_id", conversationID),
			slog.String("platform", conv.Platform),
			slog.Any("error", sendErr),
		)
		return messagepkg.Message{}, fmt.Errorf("%w: %w", ErrDeliveryFailed, sendErr)
	}

	msg, err := d.messages.Persist(ctx, messagepkg.PersistInput{
		ConversationID:    db.UUIDString(conv.ID),
		ClientID:          db.UUIDString(conv.ClientID),
		Platform:          conv.Platform,
		PlatformMessageID: result.ExternalID,
		MessageType:       string(channel.MessageText),
		Content:           content,
		Inbound:           false,
		SenderID:          staffID,
		RepliedBy:         staffID,
	})
	if err != nil {
		return messagepkg.Message{}, fmt.Errorf("persist reply: %w", err)
	}
	if err := d.conversations.Touch(ctx, msg.ConversationID, false); err != nil {
		d.logger.Warn("touch conversation after reply", slog.String("conversation_id", msg.ConversationID), slog.Any("error", err))
	}
	if _, err := d.store.MarkDispatchSent(ctx, sqlc.MarkDispatchSentParams{
		ID:                logRow.ID,
		PlatformMessageID: db.Text(result.ExternalID),
	}); err != nil {
		d.logger.Warn("mark dispatch sent", slog.String("dispatch_id", db.UUIDString(logRow.ID)), slog.Any("error", err))
	}
	return msg, nil
}

func (d *Dispatcher) deliver(ctx context.Context, platform channel.ChannelType, msg channel.OutboundMessage) (channel.SendResult, error) {
	sender, ok := d.senders.GetSender(platform)
	if !ok {
		if d.fallback == nil {
			return channel.SendResult{}, fmt.Errorf("no sender for %s", platform)
		}
		return d.fallback.Send(ctx, channel.Config{Channel: channel.ChannelManual}, msg)
	}
	cfg, err := d.configs.ActiveConfig(ctx, platform)
	if err != nil {
		return channel.SendResult{}, err
	}
	result, err := sender.Send(ctx, cfg, msg)
	if err != nil {
		return channel.SendResult{}, err
	}
	if strings.TrimSpace(result.ExternalID) == "" {
		return channel.SendResult{}, fmt.Errorf("%s returned no message id", platform)
	}
	return result, nil
}

// Logs returns a conversation's delivery attempts, newest first.
func (d *Dispatcher) Logs(ctx context.Context, conversationID string) ([]DispatchLog, error) {
	convID, err := db.ParseUUID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation id", ErrInvalidReply)
	}
	rows, err := d.store.ListDispatchLogsByConversation(ctx, convID)
	if err != nil {
		return nil, fmt.Errorf("list dispatch logs: %w", err)
	}
	out := make([]DispatchLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, LogFromRow(row))
	}
	return out, nil
}
