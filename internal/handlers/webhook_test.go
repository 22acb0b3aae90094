package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/channel/inbound"
)

type fakeTelegram struct {
	secret string
	events []channel.InboundEvent
	err    error
	bodies []string
}

func (f *fakeTelegram) ValidSecret(header string) bool {
	return f.secret == "" || header == f.secret
}

func (f *fakeTelegram) ParseWebhook(_ context.Context, _ channel.Config, body []byte) ([]channel.InboundEvent, error) {
	f.bodies = append(f.bodies, string(body))
	return f.events, f.err
}

type fakeConfigs struct{ err error }

func (f fakeConfigs) ActiveConfig(_ context.Context, ct channel.ChannelType) (channel.Config, error) {
	if f.err != nil {
		return channel.Config{}, f.err
	}
	return channel.Config{ID: "int-telegram", Channel: ct}, nil
}

type recordingProcessor struct {
	batches [][]channel.InboundEvent
}

func (p *recordingProcessor) ProcessBatch(_ context.Context, events []channel.InboundEvent) inbound.Summary {
	p.batches = append(p.batches, events)
	return inbound.Summary{Processed: len(events)}
}

func postTelegram(e *echo.Echo, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, APIPrefix+"/webhook/telegram", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(telegramSecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTelegramWebhookRejectsBadSecret(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{secret: "hook-secret"}
	proc := &recordingProcessor{}
	e := echo.New()
	NewWebhookHandler(nil, tg, fakeConfigs{}, proc).Register(e)

	rec := postTelegram(e, "wrong", `{"update_id":1}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(tg.bodies) != 0 || len(proc.batches) != 0 {
		t.Fatalf("rejected delivery must not be parsed")
	}
}

func TestTelegramWebhookIngestsEvents(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{secret: "hook-secret", events: []channel.InboundEvent{
		{Kind: channel.EventMessage, Channel: channel.ChannelTelegram, ExternalID: "42_7"},
	}}
	proc := &recordingProcessor{}
	e := echo.New()
	NewWebhookHandler(nil, tg, fakeConfigs{}, proc).Register(e)

	rec := postTelegram(e, "hook-secret", `{"update_id":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(tg.bodies) != 1 || tg.bodies[0] != `{"update_id":7}` {
		t.Fatalf("unexpected parsed bodies: %v", tg.bodies)
	}
	if len(proc.batches) != 1 || proc.batches[0][0].ExternalID != "42_7" {
		t.Fatalf("unexpected batches: %+v", proc.batches)
	}
}

func TestTelegramWebhookAcknowledgesUnprocessable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tg      *fakeTelegram
		configs fakeConfigs
	}{
		{"not configured", &fakeTelegram{}, fakeConfigs{err: channel.ErrConfigNotFound}},
		{"config lookup failed", &fakeTelegram{}, fakeConfigs{err: errors.New("db down")}},
		{"bad payload", &fakeTelegram{err: errors.New("decode")}, fakeConfigs{}},
		{"no supported message", &fakeTelegram{}, fakeConfigs{}},
	}
	for _, tc := range cases {
		proc := &recordingProcessor{}
		e := echo.New()
		NewWebhookHandler(nil, tc.tg, tc.configs, proc).Register(e)

		rec := postTelegram(e, "", `{}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.name, rec.Code)
		}
		if len(proc.batches) != 0 {
			t.Fatalf("%s: nothing should be processed", tc.name)
		}
	}
}
