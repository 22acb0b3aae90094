package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/channel/inbound"
)

// YouTubeSyncJob is the registered name of the comment sync.
const YouTubeSyncJob = "youtube_comments"

type EventProcessor interface {
	Process(ctx context.Context, ev channel.InboundEvent) (inbound.Result, error)
}

type SyncToucher interface {
	TouchSync(ctx context.Context, cfg channel.Config) error
}

// YouTubeSync pulls recent comments from the configured channel into the
// ingest pipeline. Runs never overlap.
type YouTubeSync struct {
	configs   channel.ConfigProvider
	poller    channel.Poller
	processor EventProcessor
	touch     SyncToucher
	logger    *slog.Logger

	mu sync.Mutex
}

func NewYouTubeSync(log *slog.Logger, configs channel.ConfigProvider, poller channel.Poller, processor EventProcessor, touch SyncToucher) *YouTubeSync {
	if log == nil {
		log = slog.Default()
	}
	return &YouTubeSync{
		configs:   configs,
		poller:    poller,
		processor: processor,
		touch:     touch,
		logger:    log.With(slog.String("job", YouTubeSyncJob)),
	}
}

func (j *YouTubeSync) Name() string { return YouTubeSyncJob }

// Run is the cron entry point. A missing configuration is not an error.
func (j *YouTubeSync) Run(ctx context.Context) error {
	_, err := j.Sync(ctx)
	if errors.Is(err, channel.ErrConfigNotFound) {
		j.logger.Debug("youtube not configured, skipping sync")
		return nil
	}
	return err
}

// Sync performs one poll and reports what was ingested.
func (j *YouTubeSync) Sync(ctx context.Context) (inbound.Summary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cfg, err := j.configs.ActiveConfig(ctx, channel.ChannelYouTube)
	if err != nil {
		return inbound.Summary{}, err
	}
	var summary inbound.Summary
	err = j.poller.Poll(ctx, cfg, func(ctx context.Context, ev channel.InboundEvent) error {
		result, err := j.processor.Process(ctx, ev)
		switch {
		case err != nil:
			summary.Failed++
			return err
		case result.Outcome == inbound.OutcomeDuplicate:
			summary.Duplicates++
		default:
			summary.Processed++
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("youtube poll: %w", err)
	}
	if j.touch != nil {
		if err := j.touch.TouchSync(ctx, cfg); err != nil {
			j.logger.Warn("touch last sync failed", slog.Any("error", err))
		}
	}
	j.logger.Info("youtube sync finished",
		slog.Int("processed", summary.Processed),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}
