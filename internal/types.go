package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code. Data entry is limited to the supported set;
// aggregation and formatting work on any code so adding currencies is a
// one-line change.
type Currency string

const (
	CNY Currency = "CNY"
	USD Currency = "USD"
)

// SupportedCurrencies lists the codes accepted by add/edit.
var SupportedCurrencies = []Currency{CNY, USD}

// ParseCurrency validates a user-supplied currency code.
func ParseCurrency(s string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range SupportedCurrencies {
		if code == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q (supported: %v)", s, SupportedCurrencies)
}

// CycleKind is the billing recurrence type.
type CycleKind string

const (
	CycleMonthly   CycleKind = "Monthly"
	CycleQuarterly CycleKind = "Quarterly"
	CycleYearly    CycleKind = "Yearly"
	CycleCustom    CycleKind = "Custom"
)

// CycleUnit is the unit of a custom cycle duration.
type CycleUnit string

const (
	UnitDay   CycleUnit = "day"
	UnitWeek  CycleUnit = "week"
	UnitMonth CycleUnit = "month"
	UnitYear  CycleUnit = "year"
)

// Cycle is a tagged billing-cycle variant. Every and Unit are only
// meaningful when Kind is CycleCustom; for the fixed kinds they stay zero.
type Cycle struct {
	Kind  CycleKind
	Every int
	Unit  CycleUnit
}

func (c Cycle) String() string {
	if c.Kind != CycleCustom {
		return string(c.Kind)
	}
	unit := string(c.Unit)
	if c.Every != 1 {
		unit += "s"
	}
	return fmt.Sprintf("every %d %s", c.Every, unit)
}

// Date is a calendar date with no time component. The canonical string
// form is zero-padded YYYY-MM-DD, so lexicographic order on the string
// matches chronological order.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a canonical YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current date in local wall-clock time.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// DaysUntil returns the number of days from d to other (negative if other
// is in the past).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// AddMonths returns the date n calendar months later, clamping the
// day-of-month to the target month's length (Jan 31 + 1 month = last day
// of Feb). This intentionally differs from time.AddDate, which normalizes
// Jan 31 + 1 month into March.
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := d.Day
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return Date{Year: first.Year(), Month: first.Month(), Day: day}
}

// AddYears returns the date n calendar years later, with the same
// day clamping (Feb 29 + 1 year = Feb 28).
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Subscription is the single durable entity: one recurring payment.
type Subscription struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Currency Currency
	Cycle    Cycle

	// NextBillingDate is the next date a charge is due.
	NextBillingDate Date
	// StartDate is informational only; it never feeds renewal math.
	StartDate *Date
	// AccountBalance is an optional prepaid fund. When nil, auto-renewal
	// never fires for this subscription.
	AccountBalance *decimal.Decimal

	Notes string
	Image string

	// CreatedAt is unix milliseconds, matching records written by earlier
	// versions of the app.
	CreatedAt int64
}

// Balance returns the prepaid balance and whether one is set.
func (s *Subscription) Balance() (decimal.Decimal, bool) {
	if s.AccountBalance == nil {
		return decimal.Zero, false
	}
	return *s.AccountBalance, true
}

// SetBalance replaces the prepaid balance.
func (s *Subscription) SetBalance(b decimal.Decimal) {
	s.AccountBalance = &b
}

// Validate checks the fields a user can get wrong on add/edit. Renewal
// never calls this; it tolerates bad records and skips them instead.
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("subscription name must not be empty")
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if s.AccountBalance != nil && s.AccountBalance.IsNegative() {
		return fmt.Errorf("account balance must not be negative")
	}
	if _, err := ParseCurrency(string(s.Currency)); err != nil {
		return err
	}
	return s.Cycle.Validate()
}

// AppSettings is the persisted application configuration.
type AppSettings struct {
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	Language             Language `json:"language"`
	Theme                string   `json:"theme"`
}
