package conversation

import (
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidConversation  = errors.New("invalid conversation")
)

// Conversation is a thread with one client on one platform.
type Conversation struct {
	ID                     string    `json:"id"`
	ClientID               string    `json:"clientId"`
	Platform               string    `json:"platform"`
	PlatformConversationID string    `json:"platformConversationId"`
	AssignedTo             string    `json:"assignedTo,omitempty"`
	IsRead                 bool      `json:"isRead"`
	LastMessageAt          time.Time `json:"lastMessageAt"`
	CreatedAt              time.Time `json:"createdAt"`
}

func FromRow(row sqlc.Conversation) Conversation {
	return Conversation{
		ID:                     db.UUIDString(row.ID),
		ClientID:               db.UUIDString(row.ClientID),
		Platform:               row.Platform,
		PlatformConversationID: row.PlatformConversationID,
		AssignedTo:             db.UUIDString(row.AssignedTo),
		IsRead:                 row.IsRead,
		LastMessageAt:          db.TimeFromPg(row.LastMessageAt),
		CreatedAt:              db.TimeFromPg(row.CreatedAt),
	}
}
