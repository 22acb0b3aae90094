package pingchecker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acoustichub/crm/internal/healthcheck"
)

const (
	checkTypeDependency = "dependency.ping"
	defaultTimeout      = 2 * time.Second
)

// Pinger is satisfied by the pgx pool wrapper and the redis dedup guard.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker pings one backing service.
type Checker struct {
	logger   *slog.Logger
	name     string
	pinger   Pinger
	optional bool
	timeout  time.Duration
}

// NewChecker creates a ping checker. For an optional dependency a nil pinger
// is reported as disabled and a failed ping as a warning.
func NewChecker(log *slog.Logger, name string, pinger Pinger, optional bool) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger:   log.With(slog.String("checker", "healthcheck_ping"), slog.String("dependency", name)),
		name:     name,
		pinger:   pinger,
		optional: optional,
		timeout:  defaultTimeout,
	}
}

func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	item := healthcheck.CheckResult{
		ID:       checkTypeDependency + "." + c.name,
		Type:     checkTypeDependency,
		Subtitle: c.name,
	}
	if c.pinger == nil {
		if c.optional {
			item.Status = healthcheck.StatusOK
			item.Summary = fmt.Sprintf("%s is disabled.", c.name)
		} else {
			item.Status = healthcheck.StatusError
			item.Summary = fmt.Sprintf("%s is not configured.", c.name)
		}
		return []healthcheck.CheckResult{item}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	started := time.Now()
	err := c.pinger.Ping(ctx)
	item.Metadata = map[string]any{"latency_ms": time.Since(started).Milliseconds()}
	if err != nil {
		c.logger.Warn("ping failed", slog.Any("error", err))
		item.Status = healthcheck.StatusError
		if c.optional {
			item.Status = healthcheck.StatusWarn
		}
		item.Summary = fmt.Sprintf("%s is unreachable.", c.name)
		item.Detail = err.Error()
		return []healthcheck.CheckResult{item}
	}
	item.Status = healthcheck.StatusOK
	item.Summary = fmt.Sprintf("%s is reachable.", c.name)
	return []healthcheck.CheckResult{item}
}
