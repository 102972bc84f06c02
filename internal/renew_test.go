package internal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceOf(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func monthlySub(name, next string, price string, balance *decimal.Decimal) Subscription {
	return Subscription{
		ID:              "id-" + name,
		Name:            name,
		Price:           dec(price),
		Currency:        USD,
		Cycle:           Cycle{Kind: CycleMonthly},
		NextBillingDate: date(next),
		AccountBalance:  balance,
	}
}

func TestApplyRenewals_Idempotent(t *testing.T) {
	subs := []Subscription{
		monthlySub("netflix", "2024-04-01", "9.99", balanceOf("100")),
		monthlySub("spotify", "2024-05-12", "5.99", nil),
	}

	updated, changed := ApplyRenewals(subs, date("2024-03-15"))

	assert.False(t, changed)
	assert.Equal(t, subs, updated)
}

func TestApplyRenewals_NoBalanceNeverFires(t *testing.T) {
	subs := []Subscription{monthlySub("netflix", "2020-01-01", "9.99", nil)}

	updated, changed := ApplyRenewals(subs, date("2024-03-15"))

	assert.False(t, changed)
	assert.Equal(t, date("2020-01-01"), updated[0].NextBillingDate)
}

func TestApplyRenewals_InsufficientBalanceSkips(t *testing.T) {
	subs := []Subscription{monthlySub("netflix", "2024-01-01", "10", balanceOf("9.99"))}

	updated, changed := ApplyRenewals(subs, date("2024-03-15"))

	assert.False(t, changed)
	assert.Equal(t, date("2024-01-01"), updated[0].NextBillingDate)
	assert.True(t, updated[0].AccountBalance.Equal(dec("9.99")))
}

func TestApplyRenewals_BoundaryExactFunds(t *testing.T) {
	// Due today with balance == price: renews exactly once, to zero.
	subs := []Subscription{monthlySub("netflix", "2024-03-15", "10", balanceOf("10"))}

	updated, changed := ApplyRenewals(subs, date("2024-03-15"))

	require.True(t, changed)
	assert.Equal(t, date("2024-04-15"), updated[0].NextBillingDate)
	assert.True(t, updated[0].AccountBalance.IsZero())
}

func TestApplyRenewals_CatchUpStopsAtInsufficientFunds(t *testing.T) {
	// Jan 1 and Feb 1 are paid; Mar 1 is due but 5 < 10 halts exactly there.
	subs := []Subscription{monthlySub("netflix", "2024-01-01", "10", balanceOf("25"))}

	updated, changed := ApplyRenewals(subs, date("2024-03-15"))

	require.True(t, changed)
	assert.Equal(t, date("2024-03-01"), updated[0].NextBillingDate)
	assert.True(t, updated[0].AccountBalance.Equal(dec("5")))
}

func TestApplyRenewals_SafetyCap(t *testing.T) {
	start := date("2024-03-15").AddDays(-1000)
	sub := Subscription{
		ID:              "daily",
		Name:            "daily",
		Price:           dec("1"),
		Currency:        USD,
		Cycle:           Cycle{Kind: CycleCustom, Every: 1, Unit: UnitDay},
		NextBillingDate: start,
		AccountBalance:  balanceOf("100000"),
	}

	updated, changed := ApplyRenewals([]Subscription{sub}, date("2024-03-15"))

	require.True(t, changed)
	// 60 advances, not 1000
	assert.Equal(t, start.AddDays(60), updated[0].NextBillingDate)
	assert.True(t, updated[0].AccountBalance.Equal(dec("99940")))
}

func TestApplyRenewals_MalformedEntryDoesNotAbortBatch(t *testing.T) {
	broken := Subscription{
		ID:              "broken",
		Name:            "broken",
		Price:           dec("1"),
		Currency:        USD,
		Cycle:           Cycle{Kind: CycleCustom}, // no duration/unit
		NextBillingDate: date("2020-01-01"),
		AccountBalance:  balanceOf("50"),
	}
	healthy := monthlySub("netflix", "2024-03-01", "10", balanceOf("10"))

	updated, changed := ApplyRenewals([]Subscription{broken, healthy}, date("2024-03-15"))

	require.True(t, changed)
	// broken is left exactly as it was
	assert.Equal(t, broken, updated[0])
	// healthy still renewed
	assert.Equal(t, date("2024-04-01"), updated[1].NextBillingDate)
	assert.True(t, updated[1].AccountBalance.IsZero())
}

func TestApplyRenewals_InvariantAfterPass(t *testing.T) {
	today := date("2024-03-15")
	subs := []Subscription{
		monthlySub("a", "2023-01-01", "3.50", balanceOf("20")),
		monthlySub("b", "2024-03-15", "7", balanceOf("7")),
		monthlySub("c", "2024-02-29", "100", balanceOf("350.25")),
	}

	updated, _ := ApplyRenewals(subs, today)

	for _, sub := range updated {
		future := sub.NextBillingDate.After(today)
		broke := sub.AccountBalance.LessThan(sub.Price)
		if !future && !broke {
			t.Errorf("%s: next=%s balance=%s price=%s violates renewal invariant",
				sub.Name, sub.NextBillingDate, sub.AccountBalance, sub.Price)
		}
	}
}

func TestApplyRenewals_DeductionRounding(t *testing.T) {
	// Balance ends with at most two decimals after every deduction.
	sub := monthlySub("odd", "2024-01-01", "3.333", balanceOf("10"))

	updated, changed := ApplyRenewals([]Subscription{sub}, date("2024-02-15"))

	require.True(t, changed)
	// 10 - 3.333 = 6.667 -> 6.67, 6.67 - 3.333 = 3.337 -> 3.34
	assert.True(t, updated[0].AccountBalance.Equal(dec("3.34")),
		"got %s", updated[0].AccountBalance)
}

func TestRenewOnce_AdvancesEvenWhenNotDue(t *testing.T) {
	sub := monthlySub("netflix", "2024-06-01", "10", nil)

	renewed, err := RenewOnce(sub)

	require.NoError(t, err)
	assert.Equal(t, date("2024-07-01"), renewed.NextBillingDate)
	assert.Nil(t, renewed.AccountBalance)
}

func TestRenewOnce_DeductsWhenCovered(t *testing.T) {
	sub := monthlySub("netflix", "2024-06-01", "10", balanceOf("25"))

	renewed, err := RenewOnce(sub)

	require.NoError(t, err)
	assert.Equal(t, date("2024-07-01"), renewed.NextBillingDate)
	assert.True(t, renewed.AccountBalance.Equal(dec("15")))
}

func TestRenewOnce_SkipsDeductionOnInsufficientFunds(t *testing.T) {
	sub := monthlySub("netflix", "2024-06-01", "10", balanceOf("4"))

	renewed, err := RenewOnce(sub)

	require.NoError(t, err)
	assert.Equal(t, date("2024-07-01"), renewed.NextBillingDate)
	assert.True(t, renewed.AccountBalance.Equal(dec("4")))
}

func TestRenewOnce_InvalidCycleFails(t *testing.T) {
	sub := monthlySub("netflix", "2024-06-01", "10", nil)
	sub.Cycle = Cycle{Kind: CycleCustom}

	_, err := RenewOnce(sub)

	assert.ErrorIs(t, err, ErrInvalidCycleConfig)
}
