package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// App owns the in-memory application state. The store is the only mutation
// path to durable data: every change goes through a renewal pass, a
// whole-collection write, and a reminder reschedule, in that order.
// Reminder failures never roll back the data mutation that triggered them.
type App struct {
	Store     *Store
	Config    *Config
	Scheduler Scheduler

	Settings      AppSettings
	Subscriptions []Subscription
}

// LoadApp reads durable state and runs the renewal pass over it. Changes
// made by the pass persist immediately and reminders are rescheduled.
func LoadApp(store *Store, cfg *Config, scheduler Scheduler, today Date) (*App, error) {
	app := &App{
		Store:         store,
		Config:        cfg,
		Scheduler:     scheduler,
		Settings:      store.GetSettings(),
		Subscriptions: store.GetSubscriptions(),
	}

	renewed, changed := ApplyRenewals(app.Subscriptions, today)
	if changed {
		app.Subscriptions = renewed
		if err := store.SaveSubscriptions(renewed); err != nil {
			return nil, err
		}
		app.reschedule()
	}
	return app, nil
}

// persist re-runs the renewal check, writes the set back and reschedules
// reminders. Every user-facing mutation funnels through here.
func (a *App) persist(today Date) error {
	renewed, _ := ApplyRenewals(a.Subscriptions, today)
	a.Subscriptions = renewed
	if err := a.Store.SaveSubscriptions(renewed); err != nil {
		return err
	}
	a.reschedule()
	return nil
}

func (a *App) reschedule() {
	if a.Scheduler == nil {
		return
	}
	Reschedule(a.Scheduler, a.Subscriptions, a.Settings, a.Config.LeadDays())
}

// Add validates and stores a new subscription, assigning its identity.
func (a *App) Add(sub Subscription, today Date) (Subscription, error) {
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now().UnixMilli()
	if err := sub.Validate(); err != nil {
		return Subscription{}, err
	}

	a.Subscriptions = append(a.Subscriptions, sub)
	if err := a.persist(today); err != nil {
		return Subscription{}, err
	}
	return a.mustFind(sub.ID), nil
}

// Update validates and replaces an existing subscription. The ID and
// creation timestamp are immutable.
func (a *App) Update(sub Subscription, today Date) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	for i := range a.Subscriptions {
		if a.Subscriptions[i].ID == sub.ID {
			sub.CreatedAt = a.Subscriptions[i].CreatedAt
			a.Subscriptions[i] = sub
			return a.persist(today)
		}
	}
	return fmt.Errorf("no subscription with id %s", sub.ID)
}

// Remove deletes a subscription and cancels its reminders.
func (a *App) Remove(query string, today Date) (Subscription, error) {
	sub, err := a.Find(query)
	if err != nil {
		return Subscription{}, err
	}

	kept := a.Subscriptions[:0]
	for _, s := range a.Subscriptions {
		if s.ID != sub.ID {
			kept = append(kept, s)
		}
	}
	a.Subscriptions = kept

	if err := a.persist(today); err != nil {
		return Subscription{}, err
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Cancel(NotificationIDs(sub.ID)); err != nil {
			slog.Warn("failed to cancel reminders for removed subscription",
				"name", sub.Name, "error", err)
		}
	}
	return sub, nil
}

// RenewNow applies one manual renewal to the matched subscription.
func (a *App) RenewNow(query string, today Date) (Subscription, error) {
	sub, err := a.Find(query)
	if err != nil {
		return Subscription{}, err
	}

	renewed, err := RenewOnce(sub)
	if err != nil {
		return Subscription{}, err
	}
	for i := range a.Subscriptions {
		if a.Subscriptions[i].ID == renewed.ID {
			a.Subscriptions[i] = renewed
		}
	}
	if err := a.persist(today); err != nil {
		return Subscription{}, err
	}
	return a.mustFind(renewed.ID), nil
}

// SaveSettings persists new settings and reschedules reminders, since the
// notifications toggle changes the plan.
func (a *App) SaveSettings(settings AppSettings, today Date) error {
	a.Settings = settings.normalize()
	if err := a.Store.SaveSettings(a.Settings); err != nil {
		return err
	}
	return a.persist(today)
}

// Import merges subscriptions from an external file, assigning fresh IDs.
func (a *App) Import(subs []Subscription, today Date) (int, error) {
	count := 0
	for _, sub := range subs {
		sub.ID = uuid.NewString()
		if sub.CreatedAt == 0 {
			sub.CreatedAt = time.Now().UnixMilli()
		}
		if err := sub.Validate(); err != nil {
			return count, fmt.Errorf("importing %q: %w", sub.Name, err)
		}
		a.Subscriptions = append(a.Subscriptions, sub)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return count, a.persist(today)
}

// Find matches by exact ID, then exact name (case-insensitive), then unique
// name prefix.
func (a *App) Find(query string) (Subscription, error) {
	for _, s := range a.Subscriptions {
		if s.ID == query {
			return s, nil
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	for _, s := range a.Subscriptions {
		if strings.ToLower(s.Name) == q {
			return s, nil
		}
	}

	var matches []Subscription
	for _, s := range a.Subscriptions {
		if strings.HasPrefix(strings.ToLower(s.Name), q) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Subscription{}, fmt.Errorf("no subscription matches %q", query)
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return Subscription{}, fmt.Errorf("%q is ambiguous (matches %s)", query, strings.Join(names, ", "))
	}
}

func (a *App) mustFind(id string) Subscription {
	for _, s := range a.Subscriptions {
		if s.ID == id {
			return s
		}
	}
	return Subscription{}
}
