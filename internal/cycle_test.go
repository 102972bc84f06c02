package internal

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func date(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAdvance_FixedCycles(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		cycle    Cycle
		expected string
	}{
		{
			name:     "monthly simple",
			from:     "2024-03-15",
			cycle:    Cycle{Kind: CycleMonthly},
			expected: "2024-04-15",
		},
		{
			name:     "monthly clamps Jan 31 to leap Feb 29",
			from:     "2024-01-31",
			cycle:    Cycle{Kind: CycleMonthly},
			expected: "2024-02-29",
		},
		{
			name:     "monthly clamps Jan 31 to Feb 28",
			from:     "2023-01-31",
			cycle:    Cycle{Kind: CycleMonthly},
			expected: "2023-02-28",
		},
		{
			name:     "monthly across year boundary",
			from:     "2024-12-31",
			cycle:    Cycle{Kind: CycleMonthly},
			expected: "2025-01-31",
		},
		{
			name:     "quarterly",
			from:     "2024-11-30",
			cycle:    Cycle{Kind: CycleQuarterly},
			expected: "2025-02-28",
		},
		{
			name:     "yearly",
			from:     "2024-06-01",
			cycle:    Cycle{Kind: CycleYearly},
			expected: "2025-06-01",
		},
		{
			name:     "yearly clamps leap day",
			from:     "2024-02-29",
			cycle:    Cycle{Kind: CycleYearly},
			expected: "2025-02-28",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Advance(date(tt.from), tt.cycle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != date(tt.expected) {
				t.Errorf("Advance(%s) = %s, want %s", tt.from, result, tt.expected)
			}
		})
	}
}

func TestAdvance_CustomCycles(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		every    int
		unit     CycleUnit
		expected string
	}{
		{"days", "2024-01-01", 10, UnitDay, "2024-01-11"},
		{"days across month", "2024-02-25", 7, UnitDay, "2024-03-03"},
		{"weeks", "2024-01-01", 2, UnitWeek, "2024-01-15"},
		{"months with clamp", "2024-01-31", 1, UnitMonth, "2024-02-29"},
		{"months multiple", "2024-01-15", 6, UnitMonth, "2024-07-15"},
		{"years", "2024-05-20", 2, UnitYear, "2026-05-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := Cycle{Kind: CycleCustom, Every: tt.every, Unit: tt.unit}
			result, err := Advance(date(tt.from), cycle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != date(tt.expected) {
				t.Errorf("Advance(%s, %v) = %s, want %s", tt.from, cycle, result, tt.expected)
			}
		})
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	cycle := Cycle{Kind: CycleCustom, Every: 3, Unit: UnitWeek}
	first, err := Advance(date("2024-01-01"), cycle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Advance(date("2024-01-01"), cycle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("Advance is not deterministic: %s vs %s", first, second)
	}
}

func TestAdvance_InvalidCycleConfig(t *testing.T) {
	tests := []struct {
		name  string
		cycle Cycle
	}{
		{"custom without duration or unit", Cycle{Kind: CycleCustom}},
		{"custom without unit", Cycle{Kind: CycleCustom, Every: 3}},
		{"custom without duration", Cycle{Kind: CycleCustom, Unit: UnitDay}},
		{"custom with zero duration", Cycle{Kind: CycleCustom, Every: 0, Unit: UnitWeek}},
		{"custom with negative duration", Cycle{Kind: CycleCustom, Every: -1, Unit: UnitDay}},
		{"custom with bogus unit", Cycle{Kind: CycleCustom, Every: 1, Unit: "fortnight"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Advance(date("2024-01-01"), tt.cycle)
			if !errors.Is(err, ErrInvalidCycleConfig) {
				t.Errorf("expected ErrInvalidCycleConfig, got %v", err)
			}
		})
	}
}

func TestAdvance_UnknownKind(t *testing.T) {
	_, err := Advance(date("2024-01-01"), Cycle{Kind: "Biweekly"})
	if err == nil {
		t.Fatal("expected error for unknown cycle kind")
	}
}

func TestCycleValidate(t *testing.T) {
	if err := (Cycle{Kind: CycleMonthly}).Validate(); err != nil {
		t.Errorf("monthly should be valid: %v", err)
	}
	if err := (Cycle{Kind: CycleCustom, Every: 2, Unit: UnitWeek}).Validate(); err != nil {
		t.Errorf("custom 2 weeks should be valid: %v", err)
	}
	if err := (Cycle{Kind: CycleCustom}).Validate(); !errors.Is(err, ErrInvalidCycleConfig) {
		t.Errorf("expected ErrInvalidCycleConfig, got %v", err)
	}
	if err := (Cycle{Kind: "Sometimes"}).Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestCycleString(t *testing.T) {
	tests := []struct {
		cycle    Cycle
		expected string
	}{
		{Cycle{Kind: CycleMonthly}, "Monthly"},
		{Cycle{Kind: CycleCustom, Every: 1, Unit: UnitWeek}, "every 1 week"},
		{Cycle{Kind: CycleCustom, Every: 10, Unit: UnitDay}, "every 10 days"},
	}
	for _, tt := range tests {
		if got := tt.cycle.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestDateOrderingMatchesStringOrdering(t *testing.T) {
	// The persisted form relies on lexicographic order equaling date order.
	pairs := [][2]string{
		{"2024-01-09", "2024-01-10"},
		{"2024-09-30", "2024-10-01"},
		{"1999-12-31", "2000-01-01"},
	}
	for _, p := range pairs {
		if !(p[0] < p[1]) {
			t.Fatalf("test data not ordered: %v", p)
		}
		if !date(p[0]).Before(date(p[1])) {
			t.Errorf("expected %s before %s", p[0], p[1])
		}
	}
}
