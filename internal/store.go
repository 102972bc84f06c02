package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

const (
	subscriptionsFile = "subscriptions.json"
	settingsFile      = "settings.json"
)

func init() {
	// Records written by earlier versions store money as JSON numbers,
	// not strings; keep writing the same shape.
	decimal.MarshalJSONWithoutQuotes = true
}

// Store is the persistence adapter. All reads and writes are synchronous
// and whole-collection: read the set, mutate in memory, write it back.
type Store struct {
	Dir string
}

// DefaultStoreDir returns ~/.subradar, the default data directory.
func DefaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subradar"
	}
	return filepath.Join(home, ".subradar")
}

// storedSubscription is the persisted record shape. Cycle configuration is
// flat (cycle + customCycleDuration/customCycleUnit) for compatibility with
// records written by earlier versions of the app.
type storedSubscription struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Price               decimal.Decimal  `json:"price"`
	Currency            string           `json:"currency,omitempty"`
	Cycle               string           `json:"cycle"`
	CustomCycleDuration int              `json:"customCycleDuration,omitempty"`
	CustomCycleUnit     string           `json:"customCycleUnit,omitempty"`
	NextBillingDate     string           `json:"nextBillingDate"`
	StartDate           string           `json:"startDate,omitempty"`
	AccountBalance      *decimal.Decimal `json:"accountBalance,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Image               string           `json:"image,omitempty"`
	CreatedAt           int64            `json:"createdAt"`
}

func toStored(s Subscription) storedSubscription {
	rec := storedSubscription{
		ID:              s.ID,
		Name:            s.Name,
		Price:           s.Price,
		Currency:        string(s.Currency),
		Cycle:           string(s.Cycle.Kind),
		NextBillingDate: s.NextBillingDate.String(),
		AccountBalance:  s.AccountBalance,
		Notes:           s.Notes,
		Image:           s.Image,
		CreatedAt:       s.CreatedAt,
	}
	if s.Cycle.Kind == CycleCustom {
		rec.CustomCycleDuration = s.Cycle.Every
		rec.CustomCycleUnit = string(s.Cycle.Unit)
	}
	if s.StartDate != nil {
		rec.StartDate = s.StartDate.String()
	}
	return rec
}

// fromStored converts a persisted record, migrating legacy data: a missing
// currency defaults to USD (older versions only supported $ display), and
// absent optional fields stay absent. A broken custom cycle loads fine and
// is only rejected at save-time validation or skipped by renewal.
func fromStored(rec storedSubscription) Subscription {
	sub := Subscription{
		ID:             rec.ID,
		Name:           rec.Name,
		Price:          rec.Price,
		Currency:       Currency(rec.Currency),
		AccountBalance: rec.AccountBalance,
		Notes:          rec.Notes,
		Image:          rec.Image,
		CreatedAt:      rec.CreatedAt,
	}
	if sub.Currency == "" {
		sub.Currency = USD
	}

	sub.Cycle = Cycle{Kind: CycleKind(rec.Cycle)}
	if sub.Cycle.Kind == "" {
		sub.Cycle.Kind = CycleMonthly
	}
	if sub.Cycle.Kind == CycleCustom {
		sub.Cycle.Every = rec.CustomCycleDuration
		sub.Cycle.Unit = CycleUnit(rec.CustomCycleUnit)
	}

	next, err := ParseDate(rec.NextBillingDate)
	if err != nil {
		// A record without a usable due date would never surface in
		// due-date order; treat it as due now so the user sees it.
		slog.Warn("subscription has no usable next billing date, defaulting to today",
			"name", rec.Name, "id", rec.ID)
		next = Today()
	}
	sub.NextBillingDate = next

	if rec.StartDate != "" {
		if start, err := ParseDate(rec.StartDate); err == nil {
			sub.StartDate = &start
		}
	}
	return sub
}

// GetSubscriptions loads the subscription set. Read failures degrade to an
// empty set with a warning; a missing file is simply an empty set.
func (st *Store) GetSubscriptions() []Subscription {
	data, err := os.ReadFile(filepath.Join(st.Dir, subscriptionsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read subscriptions, starting empty", "error", err)
		}
		return nil
	}

	var records []storedSubscription
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("failed to parse subscriptions, starting empty", "error", err)
		return nil
	}

	subs := make([]Subscription, 0, len(records))
	for _, rec := range records {
		subs = append(subs, fromStored(rec))
	}
	return subs
}

// SaveSubscriptions writes the whole subscription set back.
func (st *Store) SaveSubscriptions(subs []Subscription) error {
	records := make([]storedSubscription, 0, len(subs))
	for _, sub := range subs {
		records = append(records, toStored(sub))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling subscriptions: %w", err)
	}
	return st.writeFile(subscriptionsFile, data)
}

// GetSettings loads the app settings, filling defaults for absent fields.
// Read failures degrade to defaults.
func (st *Store) GetSettings() AppSettings {
	data, err := os.ReadFile(filepath.Join(st.Dir, settingsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read settings, using defaults", "error", err)
		}
		return DefaultSettings()
	}

	var settings AppSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("failed to parse settings, using defaults", "error", err)
		return DefaultSettings()
	}
	return settings.normalize()
}

// SaveSettings writes the settings object back.
func (st *Store) SaveSettings(settings AppSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	return st.writeFile(settingsFile, data)
}

func (st *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(st.Dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", st.Dir, err)
	}
	path := filepath.Join(st.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
