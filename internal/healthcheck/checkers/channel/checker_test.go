package channelchecker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/acoustichub/crm/internal/channel"
)

type fakeConfigs struct {
	items map[channel.ChannelType]channel.Config
	errs  map[channel.ChannelType]error
}

func (f *fakeConfigs) ActiveConfig(_ context.Context, ct channel.ChannelType) (channel.Config, error) {
	if err, ok := f.errs[ct]; ok {
		return channel.Config{}, err
	}
	if cfg, ok := f.items[ct]; ok {
		return cfg, nil
	}
	return channel.Config{}, channel.ErrConfigNotFound
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckerListChecks(t *testing.T) {
	t.Parallel()

	checker := NewChecker(newTestLogger(), &fakeConfigs{
		items: map[channel.ChannelType]channel.Config{
			channel.ChannelTelegram: {ID: "cfg-1", Channel: channel.ChannelTelegram},
			channel.ChannelYouTube:  {Channel: channel.ChannelYouTube},
		},
		errs: map[channel.ChannelType]error{channel.ChannelEskizSMS: errors.New("connection refused")},
	}, channel.ChannelTelegram, channel.ChannelYouTube, channel.ChannelEskizSMS, channel.ChannelInstagram)

	items := checker.ListChecks(context.Background())
	if len(items) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(items))
	}
	want := []string{"ok", "ok", "error", "warn"}
	for i, item := range items {
		if item.Status != want[i] {
			t.Fatalf("check %s: expected %s, got %s", item.ID, want[i], item.Status)
		}
	}
	if items[0].ID != "channel.config.telegram" || items[0].Metadata["config_id"] != "cfg-1" {
		t.Fatalf("unexpected telegram check: %+v", items[0])
	}
	if items[1].Metadata["source"] != "config_file" {
		t.Fatalf("expected fallback source, got %v", items[1].Metadata["source"])
	}
	if items[2].Detail != "connection refused" {
		t.Fatalf("unexpected detail: %s", items[2].Detail)
	}
}

func TestCheckerNilProvider(t *testing.T) {
	t.Parallel()

	checker := NewChecker(newTestLogger(), nil, channel.ChannelTelegram)
	items := checker.ListChecks(context.Background())
	if len(items) != 1 {
		t.Fatalf("expected service warning check, got %d", len(items))
	}
	if items[0].Status != "warn" {
		t.Fatalf("expected warn status, got %s", items[0].Status)
	}
}
