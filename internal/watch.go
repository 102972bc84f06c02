package internal

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultWatchSchedule runs the sweep every morning at 09:00 local time.
const DefaultWatchSchedule = "0 9 * * *"

// RunWatch runs the reminder daemon: one sweep immediately, then on the
// given cron schedule, until the process is stopped. Each sweep reloads
// state, applies renewals (persisting any changes) and delivers due
// reminders. Blocks forever on success.
func RunWatch(store *Store, cfg *Config, plan *PlanStore, notifier Notifier, schedule string) error {
	sweep := func() {
		today := Today()
		if _, err := LoadApp(store, cfg, plan, today); err != nil {
			slog.Warn("renewal sweep failed", "error", err)
			return
		}
		fired, err := plan.FireDue(notifier, today)
		if err != nil {
			slog.Warn("reminder delivery failed", "error", err)
			return
		}
		if fired > 0 {
			slog.Info("delivered reminders", "count", fired)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, sweep); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	sweep()
	c.Run()
	return nil
}
