package healthcheck

import (
	"context"
	"time"
)

// Report is the combined result of all checkers.
type Report struct {
	Status    string        `json:"status"`
	CheckedAt time.Time     `json:"checkedAt"`
	Checks    []CheckResult `json:"checks"`
}

// Aggregator runs a fixed set of checkers and folds their results.
type Aggregator struct {
	checkers []Checker
}

// NewAggregator skips nil checkers.
func NewAggregator(checkers ...Checker) *Aggregator {
	items := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			items = append(items, c)
		}
	}
	return &Aggregator{checkers: items}
}

// Run evaluates every checker in order. The report status is the worst
// status seen: error, then warn, then ok.
func (a *Aggregator) Run(ctx context.Context) Report {
	report := Report{Status: StatusOK, CheckedAt: time.Now().UTC(), Checks: []CheckResult{}}
	if a == nil {
		return report
	}
	for _, c := range a.checkers {
		for _, item := range c.ListChecks(ctx) {
			report.Checks = append(report.Checks, item)
			if rank(item.Status) > rank(report.Status) {
				report.Status = item.Status
			}
		}
	}
	return report
}

func rank(status string) int {
	switch status {
	case StatusOK:
		return 0
	case StatusWarn, StatusUnknown:
		return 1
	default:
		return 2
	}
}
