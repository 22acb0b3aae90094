package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/channel"
)

type fakeDataAPI struct {
	mu         sync.Mutex
	queries    map[string][]string
	authHeader string
	insertBody map[string]any
}

func (f *fakeDataAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queries == nil {
		f.queries = map[string][]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/search"):
		f.queries["search"] = append(f.queries["search"], r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"items":[{"id":{"kind":"youtube#video","videoId":"vid1"}},{"id":{"kind":"youtube#video","videoId":"broken"}},{"id":{"kind":"youtube#video","videoId":""}}]}`)
	case strings.HasSuffix(r.URL.Path, "/commentThreads"):
		f.queries["threads"] = append(f.queries["threads"], r.URL.RawQuery)
		if r.URL.Query().Get("videoId") == "broken" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"commentsDisabled"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"items":[{"id":"t1","snippet":{"videoId":"vid1","topLevelComment":{"id":"c1","snippet":{
			"authorDisplayName":"Dilnoza","authorChannelUrl":"http://www.youtube.com/@dilnoza","authorChannelId":{"value":"UC_dil"},
			"textDisplay":"Narxi qancha?","publishedAt":"2024-03-01T10:00:00Z"}}},
			"replies":{"comments":[{"id":"c1.r1","snippet":{"authorDisplayName":"Bobur","authorChannelId":{"value":"UC_bob"},
			"textDisplay":"Menga ham","publishedAt":"2024-03-01T11:00:00Z","parentId":"c1"}},
			{"id":"c1.r2","snippet":{"authorDisplayName":"ghost","textDisplay":"no author"}}]}}]}`)
	case strings.HasSuffix(r.URL.Path, "/comments"):
		f.authHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&f.insertBody)
		_, _ = io.WriteString(w, `{"id":"c1.reply","snippet":{"parentId":"c1","textOriginal":"Rahmat"}}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestAdapter(t *testing.T) (*YouTubeAdapter, *fakeDataAPI) {
	t.Helper()
	api := &fakeDataAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	adapter := NewYouTubeAdapter(nil)
	adapter.httpClient = srv.Client()
	adapter.endpoint = srv.URL + "/"
	return adapter, api
}

func pollConfig() channel.Config {
	return channel.Config{ID: "yt-1", Channel: Type, Credentials: map[string]any{
		"apiKey":      "key-123",
		"channelId":   "UC_center",
		"accessToken": "ya29.token",
	}}
}

func TestDescriptor(t *testing.T) {
	t.Parallel()

	desc := NewYouTubeAdapter(nil).Descriptor()
	assert.Equal(t, Type, desc.Type)
	assert.True(t, desc.Capabilities.Poll)
	assert.True(t, desc.Capabilities.CommentReply)
	assert.False(t, desc.Capabilities.Send)
	assert.Equal(t, []string{"apiKey", "channelId"}, desc.RequiredFields)
}

func TestNormalizeConfig(t *testing.T) {
	t.Parallel()

	adapter := NewYouTubeAdapter(nil)
	out, err := adapter.NormalizeConfig(map[string]any{"api_key": "k", "channel_id": "UC1", "access_token": "tok"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"apiKey": "k", "channelId": "UC1", "accessToken": "tok"}, out)

	_, err = adapter.NormalizeConfig(map[string]any{"apiKey": "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channelId")
}

func TestPollEmitsCommentsAndReplies(t *testing.T) {
	t.Parallel()

	adapter, api := newTestAdapter(t)
	var events []channel.InboundEvent
	err := adapter.Poll(context.Background(), pollConfig(), func(_ context.Context, ev channel.InboundEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	top := events[0]
	assert.Equal(t, channel.EventComment, top.Kind)
	assert.Equal(t, "c1", top.ExternalID)
	assert.Equal(t, "UC_dil", top.Client.ID)
	assert.Equal(t, "Dilnoza", top.Client.DisplayName)
	assert.Equal(t, "http://www.youtube.com/@dilnoza", top.Client.ProfileURL)
	assert.Equal(t, "vid1", top.PostID)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", top.PostURL)
	assert.Empty(t, top.ParentID)
	assert.Equal(t, 2024, top.ReceivedAt.Year())

	reply := events[1]
	assert.Equal(t, "c1.r1", reply.ExternalID)
	assert.Equal(t, "c1", reply.ParentID)
	assert.Equal(t, "UC_bob", reply.Author.ID)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.queries["search"], 1)
	search := api.queries["search"][0]
	assert.Contains(t, search, "key=key-123")
	assert.Contains(t, search, "channelId=UC_center")
	assert.Contains(t, search, "order=date")
	assert.Contains(t, search, "maxResults=50")
	assert.Len(t, api.queries["threads"], 2, "empty video ids are skipped, broken video still attempted")
	assert.Contains(t, api.queries["threads"][0], "maxResults=100")
	assert.Contains(t, api.queries["threads"][0], "order=time")
}

func TestPollContinuesWhenEmitFails(t *testing.T) {
	t.Parallel()

	adapter, _ := newTestAdapter(t)
	calls := 0
	err := adapter.Poll(context.Background(), pollConfig(), func(context.Context, channel.InboundEvent) error {
		calls++
		return errors.New("db down")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPollRequiresCredentials(t *testing.T) {
	t.Parallel()

	adapter, _ := newTestAdapter(t)
	err := adapter.Poll(context.Background(), channel.Config{}, func(context.Context, channel.InboundEvent) error { return nil })
	require.Error(t, err)
}

func TestReplyToComment(t *testing.T) {
	t.Parallel()

	adapter, api := newTestAdapter(t)
	res, err := adapter.ReplyToComment(context.Background(), pollConfig(), channel.CommentReply{CommentID: "c1", Text: " Rahmat "})
	require.NoError(t, err)
	assert.Equal(t, "c1.reply", res.ExternalID)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, "Bearer ya29.token", api.authHeader)
	snippet, _ := api.insertBody["snippet"].(map[string]any)
	assert.Equal(t, "c1", snippet["parentId"])
	assert.Equal(t, "Rahmat", snippet["textOriginal"])
}

func TestReplyToCommentValidation(t *testing.T) {
	t.Parallel()

	adapter, _ := newTestAdapter(t)
	_, err := adapter.ReplyToComment(context.Background(), pollConfig(), channel.CommentReply{Text: "hi"})
	require.Error(t, err)
	_, err = adapter.ReplyToComment(context.Background(), pollConfig(), channel.CommentReply{CommentID: "c1"})
	require.Error(t, err)

	cfg := pollConfig()
	delete(cfg.Credentials, "accessToken")
	_, err = adapter.ReplyToComment(context.Background(), cfg, channel.CommentReply{CommentID: "c1", Text: "hi"})
	require.ErrorIs(t, err, ErrReplyNotAuthorized)
}

func TestCommentEventSkipsAnonymous(t *testing.T) {
	t.Parallel()

	_, ok := commentEvent(nil, "v", "")
	assert.False(t, ok)
}
