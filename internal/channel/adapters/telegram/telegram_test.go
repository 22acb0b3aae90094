package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/acoustichub/crm/internal/channel"
)

type fakeTelegramAPI struct {
	mu       sync.Mutex
	calls    map[string][]map[string]string
	failSend bool
}

func newFakeTelegramAPI(t *testing.T) (*fakeTelegramAPI, *httptest.Server) {
	t.Helper()
	api := &fakeTelegramAPI{calls: map[string][]map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeTelegramAPI) serve(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	method := parts[len(parts)-1]
	_ = r.ParseForm()
	params := map[string]string{}
	for key := range r.PostForm {
		params[key] = r.PostForm.Get(key)
	}
	f.mu.Lock()
	f.calls[method] = append(f.calls[method], params)
	failSend := f.failSend
	f.mu.Unlock()

	var result any
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "CRM", "username": "crm_bot"}
	case "getFile":
		result = map[string]any{"file_id": params["file_id"], "file_path": "photos/" + params["file_id"] + ".jpg"}
	case "sendMessage":
		if failSend {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"})
			return
		}
		result = map[string]any{"message_id": 77, "date": 1700000000, "chat": map[string]any{"id": 555, "type": "private"}}
	case "setWebhook":
		result = true
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 404, "description": "Not Found"})
		return
	}
	raw, _ := json.Marshal(result)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": json.RawMessage(raw)})
}

func (f *fakeTelegramAPI) lastCall(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls[method]
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

func (f *fakeTelegramAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[method])
}

func newTestAdapter(srv *httptest.Server, opts Options) *TelegramAdapter {
	adapter := NewTelegramAdapter(nil, opts)
	adapter.apiEndpoint = srv.URL + "/bot%s/%s"
	adapter.client = srv.Client()
	return adapter
}

func testConfig() channel.Config {
	return channel.Config{ID: "cfg-1", Channel: Type, Credentials: map[string]any{"botToken": "123:abc"}}
}

func TestTelegramAdapter_Type(t *testing.T) {
	t.Parallel()

	adapter := NewTelegramAdapter(nil, Options{})
	if adapter.Type() != Type {
		t.Fatalf("unexpected type: %s", adapter.Type())
	}
	desc := adapter.Descriptor()
	if !desc.Capabilities.Webhook || !desc.Capabilities.Send || desc.Capabilities.Poll {
		t.Fatalf("unexpected capabilities: %+v", desc.Capabilities)
	}
	if len(desc.RequiredFields) != 1 || desc.RequiredFields[0] != "botToken" {
		t.Fatalf("unexpected required fields: %v", desc.RequiredFields)
	}
}

func TestTelegramAdapter_NormalizeConfig(t *testing.T) {
	t.Parallel()

	adapter := NewTelegramAdapter(nil, Options{})
	out, err := adapter.NormalizeConfig(map[string]any{"bot_token": " 123:abc "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["botToken"] != "123:abc" {
		t.Fatalf("unexpected token: %#v", out)
	}
	if _, ok := out["bot_token"]; ok {
		t.Fatalf("legacy key should be removed: %#v", out)
	}
	if _, err := adapter.NormalizeConfig(map[string]any{}); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestParseWebhookPrivateText(t *testing.T) {
	t.Parallel()

	_, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{})
	body := `{"update_id":10,"message":{"message_id":5,"date":1700000000,
		"from":{"id":42,"is_bot":false,"first_name":"Aziz","last_name":"Karimov","username":"aziz"},
		"chat":{"id":42,"type":"private","first_name":"Aziz"},
		"text":" Salom "}}`

	events, err := adapter.ParseWebhook(context.Background(), testConfig(), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != channel.EventMessage || ev.MessageType != channel.MessageText {
		t.Fatalf("unexpected kind/type: %s %s", ev.Kind, ev.MessageType)
	}
	if ev.ExternalID != "42_5" || ev.ConversationID != "42" {
		t.Fatalf("unexpected ids: %s %s", ev.ExternalID, ev.ConversationID)
	}
	if ev.Client.ID != "42" || ev.Client.DisplayName != "Aziz Karimov" || ev.Client.Username != "aziz" {
		t.Fatalf("unexpected client: %+v", ev.Client)
	}
	if ev.Client.ProfileURL != "https://t.me/aziz" {
		t.Fatalf("unexpected profile url: %s", ev.Client.ProfileURL)
	}
	if ev.Text != "Salom" {
		t.Fatalf("unexpected text: %q", ev.Text)
	}
	if ev.ReceivedAt.Unix() != 1700000000 {
		t.Fatalf("unexpected time: %v", ev.ReceivedAt)
	}
}

func TestParseWebhookGroupUsesChatIdentity(t *testing.T) {
	t.Parallel()

	_, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{})
	body := `{"update_id":11,"message":{"message_id":9,"date":1700000000,
		"from":{"id":42,"is_bot":false,"first_name":"Aziz"},
		"chat":{"id":-1001,"type":"supergroup"},
		"text":"hi all","reply_to_message":{"message_id":3,"date":1699999999,"chat":{"id":-1001,"type":"supergroup"}}}}`

	events, err := adapter.ParseWebhook(context.Background(), testConfig(), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := events[0]
	if ev.Client.ID != "group_-1001" || ev.Client.DisplayName != "Guruh -1001" {
		t.Fatalf("unexpected group client: %+v", ev.Client)
	}
	if ev.Author.ID != "42" || ev.Author.DisplayName != "Aziz" {
		t.Fatalf("unexpected author: %+v", ev.Author)
	}
	if ev.ReplyTo != "-1001_3" {
		t.Fatalf("unexpected reply ref: %s", ev.ReplyTo)
	}
}

func TestParseWebhookPhotoResolvesFileURL(t *testing.T) {
	t.Parallel()

	api, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{})
	body := `{"update_id":12,"message":{"message_id":6,"date":1700000000,
		"from":{"id":42,"is_bot":false,"first_name":"Aziz"},
		"chat":{"id":42,"type":"private"},
		"caption":"my audiogram",
		"photo":[{"file_id":"small","file_unique_id":"s","width":90,"height":90,"file_size":100},
		         {"file_id":"large","file_unique_id":"l","width":800,"height":800,"file_size":5000}]}}`

	events, err := adapter.ParseWebhook(context.Background(), testConfig(), []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := events[0]
	if ev.MessageType != channel.MessageImage || ev.Text != "my audiogram" {
		t.Fatalf("unexpected photo event: %+v", ev)
	}
	if !strings.HasSuffix(ev.MediaURL, "photos/large.jpg") {
		t.Fatalf("unexpected media url: %s", ev.MediaURL)
	}
	if got := api.lastCall("getFile")["file_id"]; got != "large" {
		t.Fatalf("expected largest photo lookup, got %q", got)
	}
}

func TestParseWebhookMediaKinds(t *testing.T) {
	t.Parallel()

	_, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{})
	cases := map[string]channel.MessageType{
		`"video":{"file_id":"v","file_unique_id":"v","width":1,"height":1,"duration":3}`: channel.MessageVideo,
		`"document":{"file_id":"d","file_unique_id":"d"}`:                               channel.MessageFile,
		`"voice":{"file_id":"o","file_unique_id":"o","duration":2}`:                     channel.MessageAudio,
		`"audio":{"file_id":"a","file_unique_id":"a","duration":2}`:                     channel.MessageAudio,
	}
	for fragment, want := range cases {
		body := fmt.Sprintf(`{"update_id":1,"message":{"message_id":1,"date":1,"from":{"id":7,"is_bot":false,"first_name":"X"},"chat":{"id":7,"type":"private"},%s}}`, fragment)
		events, err := adapter.ParseWebhook(context.Background(), testConfig(), []byte(body))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", fragment, err)
		}
		if len(events) != 1 || events[0].MessageType != want {
			t.Fatalf("unexpected events for %s: %+v", fragment, events)
		}
		if events[0].MediaURL == "" {
			t.Fatalf("expected media url for %s", fragment)
		}
	}
}

func TestParseWebhookSkipsUnsupported(t *testing.T) {
	t.Parallel()

	adapter := NewTelegramAdapter(nil, Options{})
	for _, body := range []string{
		`{"update_id":1}`,
		`{"update_id":2,"message":{"message_id":1,"date":1,"from":{"id":7,"is_bot":false,"first_name":"X"},"chat":{"id":7,"type":"private"},"sticker":{"file_id":"s","file_unique_id":"s","width":1,"height":1,"is_animated":false}}}`,
	} {
		events, err := adapter.ParseWebhook(context.Background(), testConfig(), []byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected no events for %s", body)
		}
	}
	if _, err := adapter.ParseWebhook(context.Background(), testConfig(), []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTelegramAdapter_Send(t *testing.T) {
	t.Parallel()

	api, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{})
	res, err := adapter.Send(context.Background(), testConfig(), channel.OutboundMessage{Target: "555", Text: "Assalomu alaykum", ReplyTo: "555_4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExternalID != "555_77" {
		t.Fatalf("unexpected external id: %s", res.ExternalID)
	}
	call := api.lastCall("sendMessage")
	if call["chat_id"] != "555" || call["text"] != "Assalomu alaykum" || call["reply_to_message_id"] != "4" {
		t.Fatalf("unexpected sendMessage params: %#v", call)
	}

	if _, err := adapter.Send(context.Background(), testConfig(), channel.OutboundMessage{Target: "555", Text: "again"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.count("getMe") != 1 {
		t.Fatalf("expected cached bot, getMe called %d times", api.count("getMe"))
	}
}

func TestTelegramAdapter_SendErrors(t *testing.T) {
	t.Parallel()

	api, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{})
	if _, err := adapter.Send(context.Background(), testConfig(), channel.OutboundMessage{Text: "hi"}); err == nil {
		t.Fatalf("expected target error")
	}
	if _, err := adapter.Send(context.Background(), testConfig(), channel.OutboundMessage{Target: "555", Text: "  "}); err == nil {
		t.Fatalf("expected empty message error")
	}
	if _, err := adapter.Send(context.Background(), testConfig(), channel.OutboundMessage{Target: "not-a-chat", Text: "hi"}); err == nil {
		t.Fatalf("expected invalid target error")
	}
	api.mu.Lock()
	api.failSend = true
	api.mu.Unlock()
	if _, err := adapter.Send(context.Background(), testConfig(), channel.OutboundMessage{Target: "555", Text: "hi"}); err == nil {
		t.Fatalf("expected upstream error")
	}
	if _, err := adapter.Send(context.Background(), channel.Config{}, channel.OutboundMessage{Target: "555", Text: "hi"}); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestTelegramAdapter_Configure(t *testing.T) {
	t.Parallel()

	api, srv := newFakeTelegramAPI(t)
	adapter := newTestAdapter(srv, Options{WebhookBaseURL: "https://crm.example.uz/", SecretToken: "s3cret"})
	url, err := adapter.Configure(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://crm.example.uz/api/v1/webhook/telegram" {
		t.Fatalf("unexpected webhook url: %s", url)
	}
	call := api.lastCall("setWebhook")
	if call["url"] != url || call["secret_token"] != "s3cret" {
		t.Fatalf("unexpected setWebhook params: %#v", call)
	}

	bare := newTestAdapter(srv, Options{})
	url, err = bare.Configure(context.Background(), testConfig())
	if err != nil || url != "" {
		t.Fatalf("expected registration to be skipped without a base url, got %q %v", url, err)
	}
}

func TestValidSecret(t *testing.T) {
	t.Parallel()

	open := NewTelegramAdapter(nil, Options{})
	if !open.ValidSecret("") {
		t.Fatalf("expected open adapter to accept any delivery")
	}
	guarded := NewTelegramAdapter(nil, Options{SecretToken: "s3cret"})
	if guarded.ValidSecret("wrong") || guarded.ValidSecret("") {
		t.Fatalf("expected mismatched secret to be rejected")
	}
	if !guarded.ValidSecret("s3cret") {
		t.Fatalf("expected matching secret to be accepted")
	}
}

func TestResolveTelegramSender(t *testing.T) {
	t.Parallel()

	if got := resolveTelegramSender(nil); got.ID != "" {
		t.Fatalf("expected empty sender, got %+v", got)
	}
	got := resolveTelegramSender(&tgbotapi.Message{From: &tgbotapi.User{ID: 123, UserName: "alice"}})
	if got.ID != "123" || got.DisplayName != "alice" || got.ProfileURL != "https://t.me/alice" {
		t.Fatalf("unexpected sender: %+v", got)
	}
	got = resolveTelegramSender(&tgbotapi.Message{SenderChat: &tgbotapi.Chat{ID: -100, Title: "Clinic news"}})
	if got.ID != "-100" || got.DisplayName != "Clinic news" {
		t.Fatalf("unexpected sender chat: %+v", got)
	}
}

func TestGroupIdentityUsesTitle(t *testing.T) {
	t.Parallel()

	got := groupIdentity(&tgbotapi.Chat{ID: -5, Type: "group", Title: "Family"})
	if got.ID != "group_-5" || got.DisplayName != "Family" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestParseReplyToMessageID(t *testing.T) {
	t.Parallel()

	cases := map[string]int{"": 0, "12": 12, "-1001_34": 34, "abc": 0, "42_": 0}
	for raw, want := range cases {
		if got := parseReplyToMessageID(raw); got != want {
			t.Fatalf("parseReplyToMessageID(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestPickTelegramPhoto(t *testing.T) {
	t.Parallel()

	if got := pickTelegramPhoto(nil); got.FileID != "" {
		t.Fatalf("expected empty photo")
	}
	got := pickTelegramPhoto([]tgbotapi.PhotoSize{
		{FileID: "a", FileSize: 10, Width: 10, Height: 10},
		{FileID: "b", FileSize: 50, Width: 20, Height: 20},
	})
	if got.FileID != "b" {
		t.Fatalf("unexpected photo: %s", got.FileID)
	}
}

func TestTruncateTelegramText(t *testing.T) {
	t.Parallel()

	short := "hello"
	if truncateTelegramText(short) != short {
		t.Fatalf("short text should be unchanged")
	}
	long := strings.Repeat("я", telegramMaxMessageLength)
	got := truncateTelegramText(long)
	if len(got) > telegramMaxMessageLength {
		t.Fatalf("truncated text too long: %d", len(got))
	}
	if !utf8.ValidString(got) || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text must be valid utf-8 with suffix")
	}
}

func TestSanitizeTelegramText(t *testing.T) {
	t.Parallel()

	if got := sanitizeTelegramText("ok"); got != "ok" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := sanitizeTelegramText("a\xffb"); got != "ab" {
		t.Fatalf("unexpected: %q", got)
	}
}
