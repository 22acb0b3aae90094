package clients

import (
	"time"

	"github.com/acoustichub/crm/internal/db/sqlc"
)

// Dwell returns the seconds a client has spent in latest.ToStatus as of now.
// A row that did not change the status (a merge checkpoint, or a transition
// onto the same stage) already carries the dwell accrued before it, so its
// duration is added on.
func Dwell(latest sqlc.ClientStatusHistory, now time.Time) int64 {
	seconds := int64(now.Sub(latest.CreatedAt.Time) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	if latest.FromStatus.Valid && latest.FromStatus.String == latest.ToStatus {
		seconds += latest.DurationSeconds
	}
	return seconds
}
