package channelchecker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/healthcheck"
)

const checkTypeChannelConfig = "channel.config"

// Checker reports whether each platform has usable credentials.
type Checker struct {
	logger    *slog.Logger
	configs   channel.ConfigProvider
	platforms []channel.ChannelType
}

// NewChecker creates a channel health checker for the given platforms.
func NewChecker(log *slog.Logger, configs channel.ConfigProvider, platforms ...channel.ChannelType) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger:    log.With(slog.String("checker", "healthcheck_channel")),
		configs:   configs,
		platforms: platforms,
	}
}

// ListChecks resolves the active config of every platform, in order.
func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	if err := ctx.Err(); err != nil {
		return []healthcheck.CheckResult{}
	}
	if c.configs == nil {
		c.logger.Warn("channel healthcheck dependency is unavailable")
		return []healthcheck.CheckResult{
			{
				ID:      checkTypeChannelConfig + ".service",
				Type:    checkTypeChannelConfig,
				Status:  healthcheck.StatusWarn,
				Summary: "Channel checker service is not available.",
				Detail:  "config provider is nil",
			},
		}
	}

	checks := make([]healthcheck.CheckResult, 0, len(c.platforms))
	for _, platform := range c.platforms {
		name := strings.TrimSpace(platform.String())
		item := healthcheck.CheckResult{
			ID:       checkTypeChannelConfig + "." + name,
			Type:     checkTypeChannelConfig,
			Subtitle: name,
			Metadata: map[string]any{"channel_type": name},
		}
		cfg, err := c.configs.ActiveConfig(ctx, platform)
		switch {
		case errors.Is(err, channel.ErrConfigNotFound):
			item.Status = healthcheck.StatusWarn
			item.Summary = fmt.Sprintf("Channel %s is not configured.", name)
		case err != nil:
			item.Status = healthcheck.StatusError
			item.Summary = fmt.Sprintf("Channel %s config could not be loaded.", name)
			item.Detail = err.Error()
		default:
			item.Status = healthcheck.StatusOK
			item.Summary = fmt.Sprintf("Channel %s is configured.", name)
			item.Metadata["source"] = "integration"
			if cfg.ID == "" {
				item.Metadata["source"] = "config_file"
			} else {
				item.Metadata["config_id"] = cfg.ID
			}
		}
		checks = append(checks, item)
	}
	return checks
}
