package internal

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// daysPerMonth is the approximation used when normalizing custom cycles to
// a monthly cost. Deliberately not calendar-exact.
const daysPerMonth = 30

var unitDays = map[CycleUnit]int{
	UnitDay:   1,
	UnitWeek:  7,
	UnitMonth: 30,
	UnitYear:  365,
}

// SortByNextBilling returns a copy sorted by ascending due date, name as
// tiebreaker so output stays deterministic.
func SortByNextBilling(subs []Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NextBillingDate != out[j].NextBillingDate {
			return out[i].NextBillingDate.Before(out[j].NextBillingDate)
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// SortByName and SortByPrice are alternative orderings for list output.
func SortByName(subs []Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func SortByPrice(subs []Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price.GreaterThan(out[j].Price)
	})
	return out
}

// FilterByName keeps subscriptions whose name contains the query,
// case-insensitively. An empty query keeps everything.
func FilterByName(subs []Subscription, query string) []Subscription {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return subs
	}
	return lo.Filter(subs, func(s Subscription, _ int) bool {
		return strings.Contains(strings.ToLower(s.Name), query)
	})
}

// FilterByTags keeps subscriptions carrying at least one of the given tags
// in the display config.
func FilterByTags(subs []Subscription, tags []string, cfg *Config) []Subscription {
	if cfg == nil || len(tags) == 0 {
		return subs
	}
	return lo.Filter(subs, func(s Subscription, _ int) bool {
		return lo.SomeBy(cfg.GetTags(s.Name), func(have string) bool {
			return lo.ContainsBy(tags, func(want string) bool {
				return strings.EqualFold(have, want)
			})
		})
	})
}

// MonthlyEquivalent converts a subscription's price to its approximate
// monthly cost: Monthly price, Quarterly price/3, Yearly price/12, and for
// custom cycles price spread over the cycle's days scaled to 30.
func MonthlyEquivalent(sub Subscription) decimal.Decimal {
	switch sub.Cycle.Kind {
	case CycleQuarterly:
		return sub.Price.Div(decimal.NewFromInt(3))
	case CycleYearly:
		return sub.Price.Div(decimal.NewFromInt(12))
	case CycleCustom:
		days, ok := unitDays[sub.Cycle.Unit]
		if !ok || sub.Cycle.Every < 1 {
			return decimal.Zero
		}
		totalDays := decimal.NewFromInt(int64(days * sub.Cycle.Every))
		return sub.Price.Div(totalDays).Mul(decimal.NewFromInt(daysPerMonth))
	default: // CycleMonthly
		return sub.Price
	}
}

// MonthlyTotals sums monthly-equivalent costs per currency. Currencies are
// never converted into each other; each code accumulates separately.
func MonthlyTotals(subs []Subscription) map[Currency]decimal.Decimal {
	totals := make(map[Currency]decimal.Decimal)
	for _, sub := range subs {
		currency := sub.Currency
		if currency == "" {
			currency = USD
		}
		totals[currency] = totals[currency].Add(MonthlyEquivalent(sub))
	}
	return totals
}

// TotalCurrencies returns the currency keys of a totals map in a stable
// order.
func TotalCurrencies(totals map[Currency]decimal.Decimal) []Currency {
	codes := lo.Keys(totals)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
