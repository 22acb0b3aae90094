package message

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	// ErrDuplicate is returned when (platform, platform message id) is already stored.
	ErrDuplicate = errors.New("message already stored")
	ErrInvalid   = errors.New("invalid message")
)

// Message is one inbound or outbound chat message.
type Message struct {
	ID                string         `json:"id"`
	ConversationID    string         `json:"conversationId"`
	ClientID          string         `json:"clientId"`
	Platform          string         `json:"platform"`
	PlatformMessageID string         `json:"platformMessageId"`
	MessageType       string         `json:"messageType"`
	Content           string         `json:"content,omitempty"`
	MediaURL          string         `json:"mediaUrl,omitempty"`
	IsInbound         bool           `json:"isInbound"`
	IsRead            bool           `json:"isRead"`
	SenderName        string         `json:"senderName,omitempty"`
	SenderID          string         `json:"senderId,omitempty"`
	RepliedTo         string         `json:"repliedTo,omitempty"`
	RepliedBy         string         `json:"repliedBy,omitempty"`
	RepliedAt         *time.Time     `json:"repliedAt,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// ConversationSummary is a conversation row joined with its client for the inbox.
type ConversationSummary struct {
	conversation.Conversation
	ClientName   string `json:"clientName,omitempty"`
	ClientPhone  string `json:"clientPhone,omitempty"`
	ClientStatus string `json:"clientStatus"`
}

// PersistInput is the input for persisting a message.
type PersistInput struct {
	ConversationID    string
	ClientID          string
	Platform          string
	PlatformMessageID string
	MessageType       string
	Content           string
	MediaURL          string
	Inbound           bool
	SenderName        string
	SenderID          string
	RepliedTo         string
	RepliedBy         string
	Metadata          map[string]any
	// ReceivedAt is the platform timestamp. Zero means now.
	ReceivedAt time.Time
}

// Writer defines write behavior needed by the inbound pipeline and outbound dispatch.
type Writer interface {
	Exists(ctx context.Context, platform, platformMessageID string) (bool, error)
	Persist(ctx context.Context, input PersistInput) (Message, error)
}

func FromRow(row sqlc.Message) Message {
	var meta map[string]any
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &meta)
	}
	return Message{
		ID:                db.UUIDString(row.ID),
		ConversationID:    db.UUIDString(row.ConversationID),
		ClientID:          db.UUIDString(row.ClientID),
		Platform:          row.Platform,
		PlatformMessageID: row.PlatformMessageID,
		MessageType:       row.MessageType,
		Content:           db.TextValue(row.Content),
		MediaURL:          db.TextValue(row.MediaUrl),
		IsInbound:         row.IsInbound,
		IsRead:            row.IsRead,
		SenderName:        db.TextValue(row.SenderName),
		SenderID:          db.TextValue(row.SenderID),
		RepliedTo:         db.TextValue(row.RepliedTo),
		RepliedBy:         db.UUIDString(row.RepliedBy),
		RepliedAt:         db.TimePtrFromPg(row.RepliedAt),
		Metadata:          meta,
		CreatedAt:         db.TimeFromPg(row.CreatedAt),
	}
}

func summaryFromRow(row sqlc.ListConversationsRow) ConversationSummary {
	return ConversationSummary{
		Conversation: conversation.Conversation{
			ID:                     db.UUIDString(row.ID),
			ClientID:               db.UUIDString(row.ClientID),
			Platform:               row.Platform,
			PlatformConversationID: row.PlatformConversationID,
			AssignedTo:             db.UUIDString(row.AssignedTo),
			IsRead:                 row.IsRead,
			LastMessageAt:          db.TimeFromPg(row.LastMessageAt),
			CreatedAt:              db.TimeFromPg(row.CreatedAt),
		},
		ClientName:   db.TextValue(row.ClientName),
		ClientPhone:  db.TextValue(row.ClientPhone),
		ClientStatus: row.ClientStatus,
	}
}
