package memstore

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) CommentExists(_ context.Context, arg sqlc.CommentExistsParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.Platform == arg.Platform && c.PlatformCommentID == arg.PlatformCommentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateComment(_ context.Context, arg sqlc.CreateCommentParams) (sqlc.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateComment"); err != nil {
		return sqlc.Comment{}, err
	}
	for _, c := range s.comments {
		if c.Platform == arg.Platform && c.PlatformCommentID == arg.PlatformCommentID {
			return sqlc.Comment{}, errNoRows
		}
	}
	c := sqlc.Comment{
		ID:                db.NewUUID(),
		ClientID:          arg.ClientID,
		Platform:          arg.Platform,
		PlatformCommentID: arg.PlatformCommentID,
		PostID:            arg.PostID,
		PostUrl:           arg.PostUrl,
		Content:           arg.Content,
		AuthorName:        arg.AuthorName,
		AuthorID:          arg.AuthorID,
		AuthorUsername:    arg.AuthorUsername,
		ParentCommentID:   arg.ParentCommentID,
		Metadata:          arg.Metadata,
		CreatedAt:         arg.CreatedAt,
	}
	if !c.CreatedAt.Valid {
		c.CreatedAt = s.stamp()
	}
	s.comments[c.ID.Bytes] = c
	return c, nil
}

func (s *Store) GetCommentByID(_ context.Context, id pgtype.UUID) (sqlc.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id.Bytes]
	if !ok {
		return sqlc.Comment{}, errNoRows
	}
	return c, nil
}

func (s *Store) ListComments(_ context.Context, arg sqlc.ListCommentsParams) ([]sqlc.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.Comment
	for _, c := range s.comments {
		if arg.Platform.Valid && c.Platform != arg.Platform.String {
			continue
		}
		if arg.ClientID.Valid && c.ClientID != arg.ClientID {
			continue
		}
		items = append(items, c)
	}
	slices.SortFunc(items, func(a, b sqlc.Comment) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	if arg.LimitCount > 0 && len(items) > int(arg.LimitCount) {
		items = items[:arg.LimitCount]
	}
	return items, nil
}

func (s *Store) MarkCommentReplied(_ context.Context, arg sqlc.MarkCommentRepliedParams) (sqlc.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[arg.ID.Bytes]
	if !ok {
		return sqlc.Comment{}, errNoRows
	}
	c.Replied = true
	c.IsRead = true
	c.RepliedBy = arg.RepliedBy
	c.ReplyContent = arg.ReplyContent
	c.RepliedAt = s.stamp()
	s.comments[c.ID.Bytes] = c
	return c, nil
}

func (s *Store) ReassignComments(_ context.Context, arg sqlc.ReassignCommentsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, c := range s.comments {
		if c.ClientID == arg.SecondaryID {
			c.ClientID = arg.PrimaryID
			s.comments[k] = c
			n++
		}
	}
	return n, nil
}
