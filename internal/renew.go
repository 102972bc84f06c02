package internal

import (
	"log/slog"
)

// maxRenewalsPerPass bounds how many cycles a single pass may advance one
// subscription. A daily custom cycle that sat dormant for years would
// otherwise iterate thousands of times, and a malformed record could spin
// forever.
const maxRenewalsPerPass = 60

// moneyScale is the display precision money is rounded to after each
// deduction (round half away from zero, matching currency display).
const moneyScale = 2

// ApplyRenewals advances every due subscription with sufficient prepaid
// balance, deducting one price per cycle. Subscriptions are processed
// independently; a malformed cycle config skips that one record and never
// aborts the batch. Unchanged subscriptions are passed through untouched.
// The second return value reports whether anything changed.
func ApplyRenewals(subs []Subscription, today Date) ([]Subscription, bool) {
	changed := false
	out := make([]Subscription, len(subs))
	for i, sub := range subs {
		renewed, steps := renewUntilCurrent(sub, today)
		if steps > 0 {
			changed = true
		}
		out[i] = renewed
	}
	return out, changed
}

// renewUntilCurrent runs the renewal loop for one subscription and returns
// it together with the number of cycles applied (0 means untouched).
func renewUntilCurrent(sub Subscription, today Date) (Subscription, int) {
	balance, ok := sub.Balance()
	if !ok {
		return sub, 0
	}

	next := sub.NextBillingDate
	steps := 0
	for steps < maxRenewalsPerPass {
		if next.After(today) || balance.LessThan(sub.Price) {
			break
		}

		advanced, err := Advance(next, sub.Cycle)
		if err != nil {
			slog.Warn("skipping auto-renewal of subscription with invalid cycle config",
				"name", sub.Name, "id", sub.ID, "error", err)
			return sub, 0
		}

		balance = balance.Sub(sub.Price).Round(moneyScale)
		next = advanced
		steps++
	}

	if steps == 0 {
		return sub, 0
	}
	sub.SetBalance(balance)
	sub.NextBillingDate = next
	return sub, steps
}

// RenewOnce applies exactly one cycle advance, whether or not the
// subscription is currently due. If a prepaid balance is present and covers
// the price, one price is deducted; otherwise the balance is left alone.
// Used for the user-initiated "mark as paid" action.
func RenewOnce(sub Subscription) (Subscription, error) {
	next, err := Advance(sub.NextBillingDate, sub.Cycle)
	if err != nil {
		return sub, err
	}
	sub.NextBillingDate = next

	if balance, ok := sub.Balance(); ok && balance.GreaterThanOrEqual(sub.Price) {
		sub.SetBalance(balance.Sub(sub.Price).Round(moneyScale))
	}
	return sub, nil
}
