package comments

import (
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrDuplicate        = errors.New("comment already stored")
	ErrInvalid          = errors.New("invalid comment")
	ErrReplyUnsupported = errors.New("platform does not support comment replies")
	ErrReplyFailed      = errors.New("comment reply failed")
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Comment is a public comment left under a platform post.
type Comment struct {
	ID                string     `json:"id"`
	ClientID          string     `json:"clientId"`
	Platform          string     `json:"platform"`
	PlatformCommentID string     `json:"platformCommentId"`
	PostID            string     `json:"postId,omitempty"`
	PostURL           string     `json:"postUrl,omitempty"`
	Content           string     `json:"content"`
	AuthorName        string     `json:"authorName,omitempty"`
	AuthorID          string     `json:"authorId,omitempty"`
	AuthorUsername    string     `json:"authorUsername,omitempty"`
	ParentCommentID   string     `json:"parentCommentId,omitempty"`
	IsRead            bool       `json:"isRead"`
	Replied           bool       `json:"replied"`
	RepliedBy         string     `json:"repliedBy,omitempty"`
	ReplyContent      string     `json:"replyContent,omitempty"`
	RepliedAt         *time.Time `json:"repliedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type ListFilter struct {
	Platform string
	ClientID string
	Limit    int
}

type PersistInput struct {
	ClientID          string
	Platform          string
	PlatformCommentID string
	PostID            string
	PostURL           string
	Content           string
	AuthorName        string
	AuthorID          string
	AuthorUsername    string
	ParentCommentID   string
	Metadata          map[string]any
	// PublishedAt is the platform timestamp. Zero means now.
	PublishedAt time.Time
}

func FromRow(row sqlc.Comment) Comment {
	return Comment{
		ID:                db.UUIDString(row.ID),
		ClientID:          db.UUIDString(row.ClientID),
		Platform:          row.Platform,
		PlatformCommentID: row.PlatformCommentID,
		PostID:            db.TextValue(row.PostID),
		PostURL:           db.TextValue(row.PostUrl),
		Content:           row.Content,
		AuthorName:        db.TextValue(row.AuthorName),
		AuthorID:          db.TextValue(row.AuthorID),
		AuthorUsername:    db.TextValue(row.AuthorUsername),
		ParentCommentID:   db.TextValue(row.ParentCommentID),
		IsRead:            row.IsRead,
		Replied:           row.Replied,
		RepliedBy:         db.UUIDString(row.RepliedBy),
		ReplyContent:      db.TextValue(row.ReplyContent),
		RepliedAt:         db.TimePtrFromPg(row.RepliedAt),
		CreatedAt:         db.TimeFromPg(row.CreatedAt),
	}
}
