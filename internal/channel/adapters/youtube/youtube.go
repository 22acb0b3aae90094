// Package youtube pulls public video comments from a YouTube channel and posts
// replies to them through the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/acoustichub/crm/internal/channel"
)

const (
	Type channel.ChannelType = channel.ChannelYouTube

	maxVideos   = 50
	maxThreads  = 100
	watchURLFmt = "https://www.youtube.com/watch?v=%s"
)

// ErrReplyNotAuthorized is returned when no OAuth access token is configured.
var ErrReplyNotAuthorized = errors.New("youtube access token is required for replies")

// YouTubeAdapter implements comment polling and comment replies.
type YouTubeAdapter struct {
	logger     *slog.Logger
	httpClient *http.Client
	endpoint   string
}

// NewYouTubeAdapter creates a YouTubeAdapter with the given logger.
func NewYouTubeAdapter(log *slog.Logger) *YouTubeAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &YouTubeAdapter{
		logger:     log.With(slog.String("adapter", "youtube")),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *YouTubeAdapter) Type() channel.ChannelType {
	return Type
}

func (a *YouTubeAdapter) Descriptor() channel.Descriptor {
	return channel.Descriptor{
		Type:        Type,
		DisplayName: "YouTube",
		Capabilities: channel.Capabilities{
			Poll:         true,
			CommentReply: true,
		},
		RequiredFields: []string{"apiKey", "channelId"},
	}
}

func (a *YouTubeAdapter) NormalizeConfig(raw map[string]any) (map[string]any, error) {
	aliases := map[string][]string{
		"apiKey":      {"apiKey", "api_key"},
		"channelId":   {"channelId", "channel_id"},
		"accessToken": {"accessToken", "access_token"},
	}
	for key, names := range aliases {
		if value := channel.ReadString(raw, names...); value != "" {
			for _, name := range names {
				delete(raw, name)
			}
			raw[key] = value
		}
	}
	return channel.RequireFields(raw, "apiKey", "channelId")
}

// service builds a Data API client. An API key is attached per call; the
// OAuth token, when given, authorizes write calls.
func (a *YouTubeAdapter) service(ctx context.Context, accessToken string) (*yt.Service, error) {
	client := a.httpClient
	if accessToken != "" {
		base := context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
		client = oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return svc, nil
}

// Poll lists the channel's latest videos and emits every top-level comment and
// reply found on them. A failing video is logged and skipped.
func (a *YouTubeAdapter) Poll(ctx context.Context, cfg channel.Config, emit func(context.Context, channel.InboundEvent) error) error {
	apiKey := cfg.Credential("apiKey")
	channelID := cfg.Credential("channelId")
	if apiKey == "" || channelID == "" {
		return fmt.Errorf("youtube apiKey and channelId are required")
	}
	svc, err := a.service(ctx, "")
	if err != nil {
		return err
	}
	key := googleapi.QueryParameter("key", apiKey)

	search, err := svc.Search.List([]string{"id"}).
		ChannelId(channelID).
		Type("video").
		Order("date").
		MaxResults(maxVideos).
		Context(ctx).
		Do(key)
	if err != nil {
		return fmt.Errorf("list channel videos: %w", err)
	}

	for _, item := range search.Items {
		if item == nil || item.Id == nil || strings.TrimSpace(item.Id.VideoId) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		videoID := item.Id.VideoId
		if err := a.pollVideo(ctx, svc, key, videoID, emit); err != nil {
			a.logger.Error("video comment sync failed", slog.String("video_id", videoID), slog.Any("error", err))
		}
	}
	return nil
}

func (a *YouTubeAdapter) pollVideo(ctx context.Context, svc *yt.Service, key googleapi.CallOption, videoID string, emit func(context.Context, channel.InboundEvent) error) error {
	threads, err := svc.CommentThreads.List([]string{"snippet", "replies"}).
		VideoId(videoID).
		MaxResults(maxThreads).
		Order("time").
		Context(ctx).
		Do(key)
	if err != nil {
		return fmt.Errorf("list comment threads: %w", err)
	}
	for _, thread := range threads.Items {
		if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
			continue
		}
		top := thread.Snippet.TopLevelComment
		a.emitComment(ctx, emit, top, videoID, "")
		if thread.Replies == nil {
			continue
		}
		for _, reply := range thread.Replies.Comments {
			a.emitComment(ctx, emit, reply, videoID, top.Id)
		}
	}
	return nil
}

func (a *YouTubeAdapter) emitComment(ctx context.Context, emit func(context.Context, channel.InboundEvent) error, comment *yt.Comment, videoID, parentID string) {
	event, ok := commentEvent(comment, videoID, parentID)
	if !ok {
		a.logger.Debug("comment without author skipped", slog.String("video_id", videoID))
		return
	}
	if err := emit(ctx, event); err != nil {
		a.logger.Warn("comment ingest failed",
			slog.String("comment_id", event.ExternalID),
			slog.String("video_id", videoID),
			slog.Any("error", err),
		)
	}
}

func commentEvent(comment *yt.Comment, videoID, parentID string) (channel.InboundEvent, bool) {
	if comment == nil || comment.Snippet == nil || strings.TrimSpace(comment.Id) == "" {
		return channel.InboundEvent{}, false
	}
	snippet := comment.Snippet
	authorID := ""
	if snippet.AuthorChannelId != nil {
		authorID = strings.TrimSpace(snippet.AuthorChannelId.Value)
	}
	if authorID == "" {
		return channel.InboundEvent{}, false
	}
	author := channel.Identity{
		ID:          authorID,
		Username:    strings.TrimSpace(snippet.AuthorDisplayName),
		DisplayName: strings.TrimSpace(snippet.AuthorDisplayName),
		ProfileURL:  strings.TrimSpace(snippet.AuthorChannelUrl),
	}
	received, err := time.Parse(time.RFC3339, snippet.PublishedAt)
	if err != nil {
		received = time.Time{}
	}
	text := snippet.TextDisplay
	if strings.TrimSpace(text) == "" {
		text = snippet.TextOriginal
	}
	return channel.InboundEvent{
		Kind:       channel.EventComment,
		Channel:    Type,
		ExternalID: comment.Id,
		Client:     author,
		Author:     author,
		Text:       text,
		PostID:     videoID,
		PostURL:    fmt.Sprintf(watchURLFmt, videoID),
		ParentID:   parentID,
		ReceivedAt: received,
		Metadata: map[string]any{
			"like_count": snippet.LikeCount,
		},
	}, true
}

// ReplyToComment posts a reply under the given platform comment id.
func (a *YouTubeAdapter) ReplyToComment(ctx context.Context, cfg channel.Config, reply channel.CommentReply) (channel.SendResult, error) {
	commentID := strings.TrimSpace(reply.CommentID)
	if commentID == "" {
		return channel.SendResult{}, fmt.Errorf("youtube comment id is required")
	}
	text := strings.TrimSpace(reply.Text)
	if text == "" {
		return channel.SendResult{}, fmt.Errorf("reply text is required")
	}
	token := cfg.Credential("accessToken")
	if token == "" {
		return channel.SendResult{}, ErrReplyNotAuthorized
	}
	svc, err := a.service(ctx, token)
	if err != nil {
		return channel.SendResult{}, err
	}
	created, err := svc.Comments.Insert([]string{"snippet"}, &yt.Comment{
		Snippet: &yt.CommentSnippet{
			ParentId:     commentID,
			TextOriginal: text,
		},
	}).Context(ctx).Do()
	if err != nil {
		a.logger.Error("comment reply failed", slog.String("comment_id", commentID), slog.Any("error", err))
		return channel.SendResult{}, fmt.Errorf("insert comment reply: %w", err)
	}
	return channel.SendResult{ExternalID: created.Id}, nil
}
