package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

// Schedule runs the refresher on a cron expression until the context is
// cancelled.
type Schedule struct {
	refresher *Refresher
	expr      string
}

// NewSchedule validates the cron expression and binds it to the refresher.
func NewSchedule(refresher *Refresher, expr string) (*Schedule, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("invalid cron expression %q", expr)
	}
	return &Schedule{refresher: refresher, expr: expr}, nil
}

// Run blocks, firing a refresh pass at every cron tick.
func (s *Schedule) Run(ctx context.Context) error {
	slog.Info("price refresh scheduled", "cron", s.expr)

	for {
		next, err := gronx.NextTickAfter(s.expr, time.Now(), false)
		if err != nil {
			return fmt.Errorf("compute next tick: %w", err)
		}

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}

		if _, err := s.refresher.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("price refresh pass failed", "error", err)
		}
	}
}
