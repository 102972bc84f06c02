package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmptyWhenNoFile(t *testing.T) {
	st := &Store{Dir: t.TempDir()}

	assert.Empty(t, st.GetSubscriptions())
}

func TestStore_RoundTrip(t *testing.T) {
	st := &Store{Dir: t.TempDir()}

	start := date("2023-11-01")
	subs := []Subscription{
		{
			ID:              "a1b2",
			Name:            "Netflix",
			Price:           dec("9.99"),
			Currency:        USD,
			Cycle:           Cycle{Kind: CycleMonthly},
			NextBillingDate: date("2024-04-01"),
			StartDate:       &start,
			AccountBalance:  balanceOf("25.50"),
			Notes:           "family plan",
			CreatedAt:       1700000000000,
		},
		{
			ID:              "c3d4",
			Name:            "VPS",
			Price:           dec("48"),
			Currency:        CNY,
			Cycle:           Cycle{Kind: CycleCustom, Every: 2, Unit: UnitWeek},
			NextBillingDate: date("2024-04-10"),
			CreatedAt:       1700000001000,
		},
	}

	require.NoError(t, st.SaveSubscriptions(subs))
	loaded := st.GetSubscriptions()

	require.Len(t, loaded, 2)
	assert.Equal(t, "Netflix", loaded[0].Name)
	assert.True(t, loaded[0].Price.Equal(dec("9.99")))
	assert.True(t, loaded[0].AccountBalance.Equal(dec("25.50")))
	assert.Equal(t, date("2023-11-01"), *loaded[0].StartDate)
	assert.Equal(t, Cycle{Kind: CycleCustom, Every: 2, Unit: UnitWeek}, loaded[1].Cycle)
	assert.Nil(t, loaded[1].AccountBalance)
}

func TestStore_MoneyPersistsAsJSONNumbers(t *testing.T) {
	// Records written by earlier app versions hold plain JSON numbers;
	// new writes must keep that shape.
	st := &Store{Dir: t.TempDir()}
	require.NoError(t, st.SaveSubscriptions([]Subscription{
		monthlySub("netflix", "2024-04-01", "9.99", balanceOf("25")),
	}))

	raw, err := os.ReadFile(filepath.Join(st.Dir, "subscriptions.json"))
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(raw, &records))
	assert.IsType(t, float64(0), records[0]["price"])
	assert.IsType(t, float64(0), records[0]["accountBalance"])
}

func TestStore_MigratesLegacyRecords(t *testing.T) {
	dir := t.TempDir()
	// Legacy record: no currency, no optional fields.
	legacy := `[
	  {
	    "id": "legacy-1",
	    "name": "Old Timer",
	    "price": 12.5,
	    "cycle": "Monthly",
	    "nextBillingDate": "2024-02-01",
	    "createdAt": 1600000000000
	  }
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subscriptions.json"), []byte(legacy), 0644))

	st := &Store{Dir: dir}
	subs := st.GetSubscriptions()

	require.Len(t, subs, 1)
	assert.Equal(t, USD, subs[0].Currency, "missing currency defaults to USD")
	assert.Nil(t, subs[0].AccountBalance)
	assert.Nil(t, subs[0].StartDate)
	assert.Equal(t, date("2024-02-01"), subs[0].NextBillingDate)
}

func TestStore_ToleratesBrokenCustomCycleAtLoad(t *testing.T) {
	dir := t.TempDir()
	// Custom cycle missing its duration/unit loads fine; it is only
	// rejected at save-time validation and skipped by renewal.
	raw := `[
	  {
	    "id": "b0rk",
	    "name": "Broken",
	    "price": 1,
	    "currency": "USD",
	    "cycle": "Custom",
	    "nextBillingDate": "2020-01-01",
	    "accountBalance": 100,
	    "createdAt": 1600000000000
	  }
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subscriptions.json"), []byte(raw), 0644))

	st := &Store{Dir: dir}
	subs := st.GetSubscriptions()

	require.Len(t, subs, 1)
	assert.ErrorIs(t, subs[0].Cycle.Validate(), ErrInvalidCycleConfig)

	// and the renewal engine leaves it untouched
	updated, changed := ApplyRenewals(subs, date("2024-03-15"))
	assert.False(t, changed)
	assert.Equal(t, subs[0], updated[0])
}

func TestStore_CorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subscriptions.json"), []byte("{nope"), 0644))

	st := &Store{Dir: dir}

	assert.Empty(t, st.GetSubscriptions())
}

func TestStore_SettingsDefaults(t *testing.T) {
	st := &Store{Dir: t.TempDir()}

	settings := st.GetSettings()

	assert.False(t, settings.NotificationsEnabled)
	assert.Equal(t, defaultTheme, settings.Theme)
	assert.Contains(t, []Language{LangEnglish, LangChinese}, settings.Language)
}

func TestStore_SettingsRoundTripAndMigration(t *testing.T) {
	st := &Store{Dir: t.TempDir()}

	require.NoError(t, st.SaveSettings(AppSettings{
		NotificationsEnabled: true,
		Language:             LangChinese,
		Theme:                "dark",
	}))
	loaded := st.GetSettings()
	assert.True(t, loaded.NotificationsEnabled)
	assert.Equal(t, LangChinese, loaded.Language)
	assert.Equal(t, "dark", loaded.Theme)

	// Older saves are missing language and theme.
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir, "settings.json"),
		[]byte(`{"notificationsEnabled": true}`), 0644))
	migrated := st.GetSettings()
	assert.True(t, migrated.NotificationsEnabled)
	assert.Equal(t, defaultTheme, migrated.Theme)
	assert.Contains(t, []Language{LangEnglish, LangChinese}, migrated.Language)
}
