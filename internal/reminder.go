package internal

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gen2brain/beeep"
)

// Notification is one planned local reminder.
type Notification struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	FireAt Date   `json:"-"`

	// FireAtStr is the persisted YYYY-MM-DD form of FireAt.
	FireAtStr string `json:"fireAt"`
}

// Scheduler is the narrow interface the app uses to manage reminders.
// Implementations are best-effort collaborators: the app never lets their
// failures block persistence of the subscription data itself.
type Scheduler interface {
	Cancel(ids []uint32) error
	Schedule(notifications []Notification) error
}

// Notifier delivers a single notification to the user right now.
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier shows OS desktop notifications.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// NotificationID derives a stable numeric reminder ID from a subscription's
// unique identifier, masked positive because notification backends tend to
// want int32 IDs. Each subscription gets two slots: due-day and lead-time.
func NotificationID(subscriptionID string, lead bool) uint32 {
	h := fnv.New32a()
	h.Write([]byte(subscriptionID))
	id := h.Sum32() & 0x7ffffffe
	if lead {
		id |= 1
	}
	return id
}

// NotificationIDs returns both reminder slots for a subscription.
func NotificationIDs(subscriptionID string) []uint32 {
	return []uint32{
		NotificationID(subscriptionID, false),
		NotificationID(subscriptionID, true),
	}
}

// BuildNotifications derives the reminder plan for a subscription set:
// one reminder leadDays before each next billing date and one on the day
// itself. Returns nil when notifications are disabled.
func BuildNotifications(subs []Subscription, settings AppSettings, leadDays int) []Notification {
	if !settings.NotificationsEnabled {
		return nil
	}

	var plan []Notification
	for _, sub := range subs {
		price := FormatterFor(sub.Currency).Format(sub.Price)

		plan = append(plan, Notification{
			ID:     NotificationID(sub.ID, false),
			Title:  "subradar",
			Body:   dueBody(settings.Language, sub.Name, price),
			FireAt: sub.NextBillingDate,
		})

		if leadDays > 0 {
			plan = append(plan, Notification{
				ID:     NotificationID(sub.ID, true),
				Title:  "subradar",
				Body:   upcomingBody(settings.Language, sub.Name, price, sub.NextBillingDate),
				FireAt: sub.NextBillingDate.AddDays(-leadDays),
			})
		}
	}
	return plan
}

func dueBody(lang Language, name, price string) string {
	if lang == LangChinese {
		return fmt.Sprintf("%s 今天续费（%s）", name, price)
	}
	return fmt.Sprintf("%s renews today (%s)", name, price)
}

func upcomingBody(lang Language, name, price string, due Date) string {
	if lang == LangChinese {
		return fmt.Sprintf("%s 将于 %s 续费（%s）", name, due, price)
	}
	return fmt.Sprintf("%s renews on %s (%s)", name, due, price)
}

// Reschedule replaces the reminders for the given subscriptions: cancel
// everything previously scheduled for their IDs, then schedule fresh ones.
// Failures are logged and swallowed; reminder delivery is best-effort.
func Reschedule(s Scheduler, subs []Subscription, settings AppSettings, leadDays int) {
	var ids []uint32
	for _, sub := range subs {
		ids = append(ids, NotificationIDs(sub.ID)...)
	}
	if err := s.Cancel(ids); err != nil {
		slog.Warn("failed to cancel reminders", "error", err)
	}

	plan := BuildNotifications(subs, settings, leadDays)
	if len(plan) == 0 {
		return
	}
	if err := s.Schedule(plan); err != nil {
		slog.Warn("failed to schedule reminders", "error", err)
	}
}

// PlanStore is the Scheduler used by the CLI: it persists the reminder plan
// to a JSON file, and the watch daemon fires entries as they come due.
type PlanStore struct {
	Path string
}

// DefaultPlanPath returns ~/.subradar/reminders.json.
func DefaultPlanPath() string {
	return filepath.Join(DefaultStoreDir(), "reminders.json")
}

type planEntry struct {
	Notification
	Fired bool `json:"fired,omitempty"`
}

func (p *PlanStore) load() ([]planEntry, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading reminder plan: %w", err)
	}

	var entries []planEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing reminder plan: %w", err)
	}
	for i := range entries {
		if d, err := ParseDate(entries[i].FireAtStr); err == nil {
			entries[i].FireAt = d
		}
	}
	return entries, nil
}

func (p *PlanStore) save(entries []planEntry) error {
	for i := range entries {
		entries[i].FireAtStr = entries[i].FireAt.String()
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FireAtStr != entries[j].FireAtStr {
			return entries[i].FireAtStr < entries[j].FireAtStr
		}
		return entries[i].ID < entries[j].ID
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling reminder plan: %w", err)
	}
	if dir := filepath.Dir(p.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(p.Path, data, 0644); err != nil {
		return fmt.Errorf("writing reminder plan: %w", err)
	}
	return nil
}

// Cancel drops all plan entries with the given IDs.
func (p *PlanStore) Cancel(ids []uint32) error {
	entries, err := p.load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	drop := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := entries[:0]
	for _, e := range entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	return p.save(kept)
}

// Schedule adds or replaces plan entries by ID. A rescheduled entry resets
// its fired flag.
func (p *PlanStore) Schedule(notifications []Notification) error {
	entries, err := p.load()
	if err != nil {
		return err
	}

	byID := make(map[uint32]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}
	for _, n := range notifications {
		entry := planEntry{Notification: n}
		if i, ok := byID[n.ID]; ok {
			entries[i] = entry
		} else {
			entries = append(entries, entry)
		}
	}
	return p.save(entries)
}

// FireDue delivers every unfired plan entry whose fire date is today or
// earlier, marking delivered entries so they fire once. Delivery failures
// are logged per entry and never abort the sweep.
func (p *PlanStore) FireDue(notifier Notifier, today Date) (int, error) {
	entries, err := p.load()
	if err != nil {
		return 0, err
	}

	fired := 0
	for i := range entries {
		e := &entries[i]
		if e.Fired || e.FireAt.After(today) {
			continue
		}
		if err := notifier.Notify(e.Title, e.Body); err != nil {
			slog.Warn("failed to deliver reminder", "id", e.ID, "error", err)
			continue
		}
		e.Fired = true
		fired++
	}

	if fired == 0 {
		return 0, nil
	}
	return fired, p.save(entries)
}
