// Package comments stores public platform comments and posts staff replies.
package comments

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

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type Store interface {
	CommentExists(ctx context.Context, arg sqlc.CommentExistsParams) (bool, error)
	CreateComment(ctx context.Context, arg sqlc.CreateCommentParams) (sqlc.Comment, error)
	GetCommentByID(ctx context.Context, id pgtype.UUID) (sqlc.Comment, error)
	ListComments(ctx context.Context, arg sqlc.ListCommentsParams) ([]sqlc.Comment, error)
	MarkCommentReplied(ctx context.Context, arg sqlc.MarkCommentRepliedParams) (sqlc.Comment, error)
}

// Repliers looks up the reply capability of a platform adapter.
type Repliers interface {
	GetCommentReplier(channelType channel.ChannelType) (channel.CommentReplier, bool)
}

type Service struct {
	store    Store
	repliers Repliers
	configs  channel.ConfigProvider
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(log *slog.Logger, store Store, repliers Repliers, configs channel.ConfigProvider) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		repliers: repliers,
		configs:  configs,
		logger:   log.With(slog.String("service", "comments")),
		now:      time.Now,
	}
}

func (s *Service) Exists(ctx context.Context, platform, platformCommentID string) (bool, error) {
	exists, err := s.store.CommentExists(ctx, sqlc.CommentExistsParams{Platform: platform, PlatformCommentID: platformCommentID})
	if err != nil {
		return false, fmt.Errorf("check comment exists: %w", err)
	}
	return exists, nil
}

// Persist stores an ingested comment. Replies carry their immediate parent's
// platform id only.
func (s *Service) Persist(ctx context.Context, input PersistInput) (Comment, error) {
	if strings.TrimSpace(input.Platform) == "" || strings.TrimSpace(input.PlatformCommentID) == "" {
		return Comment{}, fmt.Errorf("%w: platform and platform comment id are required", ErrInvalid)
	}
	clientID, err := db.ParseUUID(input.ClientID)
	if err != nil {
		return Comment{}, fmt.Errorf("%w: client id", ErrInvalid)
	}
	meta := input.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return Comment{}, fmt.Errorf("marshal comment metadata: %w", err)
	}
	publishedAt := input.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = s.now()
	}
	row, err := s.store.CreateComment(ctx, sqlc.CreateCommentParams{
		ClientID:          clientID,
		Platform:          input.Platform,
		PlatformCommentID: input.PlatformCommentID,
		PostID:            db.Text(input.PostID),
		PostUrl:           db.Text(input.PostURL),
		Content:           input.Content,
		AuthorName:        db.Text(input.AuthorName),
		AuthorID:          db.Text(input.AuthorID),
		AuthorUsername:    db.Text(input.AuthorUsername),
		ParentCommentID:   db.Text(input.ParentCommentID),
		Metadata:          metaBytes,
		CreatedAt:         db.Timestamptz(publishedAt),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrDuplicate
	}
	if err != nil {
		return Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return FromRow(row), nil
}

// List returns comments newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Comment, error) {
	clientID, err := db.OptionalUUID(filter.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: client id", ErrInvalid)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.store.ListComments(ctx, sqlc.ListCommentsParams{
		Platform:   db.Text(strings.ToLower(filter.Platform)),
		ClientID:   clientID,
		LimitCount: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// Reply posts text under the comment on its platform and records who replied.
func (s *Service) Reply(ctx context.Context, commentID, text, staffID string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, fmt.Errorf("%w: reply text is required", ErrInvalid)
	}
	id, err := db.ParseUUID(commentID)
	if err != nil {
		return Comment{}, fmt.Errorf("%w: comment id", ErrInvalid)
	}
	staff, err := db.OptionalUUID(staffID)
	if err != nil {
		return Comment{}, fmt.Errorf("%w: staff id", ErrInvalid)
	}
	row, err := s.store.GetCommentByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("load comment: %w", err)
	}

	platform := channel.ChannelType(row.Platform)
	replier, ok := s.repliers.GetCommentReplier(platform)
	if !ok {
		return Comment{}, fmt.Errorf("%w: %s", ErrReplyUnsupported, platform)
	}
	cfg, err := s.configs.ActiveConfig(ctx, platform)
	if err != nil {
		return Comment{}, fmt.Errorf("%w: %w", ErrReplyFailed, err)
	}
	if _, err := replier.ReplyToComment(ctx, cfg, channel.CommentReply{
		CommentID: row.PlatformCommentID,
		PostID:    db.TextValue(row.PostID),
		Text:      text,
	}); err != nil {
		s.logger.Error("comment reply failed", slog.String("comment_id", commentID), slog.Any("error", err))
		return Comment{}, fmt.Errorf("%w: %w", ErrReplyFailed, err)
	}

	updated, err := s.store.MarkCommentReplied(ctx, sqlc.MarkCommentRepliedParams{
		ID:           id,
		RepliedBy:    staff,
		ReplyContent: db.Text(text),
	})
	if err != nil {
		return Comment{}, fmt.Errorf("record comment reply: %w", err)
	}
	return FromRow(updated), nil
}
