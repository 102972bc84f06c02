package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// OutputOptions controls how subscriptions are displayed
type OutputOptions struct {
	Search    string
	TagFilter []string
	SortField string
	Today     Date
}

// JSONOutput is the root JSON output object
type JSONOutput struct {
	Subscriptions []JSONSubscription `json:"subscriptions"`
	Summary       []JSONTotal        `json:"summary"`
}

// JSONTotal is one per-currency aggregate. Currencies never convert into
// each other, so there is one entry per code in use.
type JSONTotal struct {
	Currency     string          `json:"currency"`
	MonthlyTotal decimal.Decimal `json:"monthly_total"`
	YearlyTotal  decimal.Decimal `json:"yearly_total"`
}

// JSONSubscription is the JSON output format for a subscription
type JSONSubscription struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	Currency        string           `json:"currency"`
	Cycle           string           `json:"cycle"`
	NextBillingDate string           `json:"next_billing_date"`
	DueInDays       int              `json:"due_in_days"`
	AccountBalance  *decimal.Decimal `json:"account_balance,omitempty"`
	MonthlyCost     decimal.Decimal  `json:"monthly_cost"`
	Notes           string           `json:"notes,omitempty"`
}

// PrintSubscriptionsJSON outputs subscriptions in JSON format
func PrintSubscriptionsJSON(w io.Writer, subs []Subscription, cfg *Config, today Date) error {
	out := JSONOutput{Subscriptions: []JSONSubscription{}}

	for _, sub := range subs {
		out.Subscriptions = append(out.Subscriptions, JSONSubscription{
			ID:              sub.ID,
			Name:            sub.Name,
			Description:     cfg.GetDescription(sub.Name),
			Tags:            cfg.GetTags(sub.Name),
			Price:           sub.Price,
			Currency:        string(sub.Currency),
			Cycle:           sub.Cycle.String(),
			NextBillingDate: sub.NextBillingDate.String(),
			DueInDays:       today.DaysUntil(sub.NextBillingDate),
			AccountBalance:  sub.AccountBalance,
			MonthlyCost:     MonthlyEquivalent(sub).Round(moneyScale),
			Notes:           sub.Notes,
		})
	}

	totals := MonthlyTotals(subs)
	for _, code := range TotalCurrencies(totals) {
		monthly := totals[code].Round(moneyScale)
		out.Summary = append(out.Summary, JSONTotal{
			Currency:     string(code),
			MonthlyTotal: monthly,
			YearlyTotal:  monthly.Mul(decimal.NewFromInt(12)).Round(moneyScale),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintSubscriptionsTable outputs subscriptions as a formatted table, due
// soonest first unless another sort was picked.
func PrintSubscriptionsTable(w io.Writer, subs []Subscription, opts OutputOptions, cfg *Config) {
	fmt.Fprintf(w, "Tracking %d subscriptions\n\n", len(subs))

	t := table.NewWriter()
	t.SetOutputMirror(w)

	hasTags := false
	for _, sub := range subs {
		if len(cfg.GetTags(sub.Name)) > 0 {
			hasTags = true
			break
		}
	}

	header := table.Row{"Name", "Price", "Cycle", "Next Billing", "Due In"}
	if hasTags {
		header = append(header, "Tags")
	}
	header = append(header, "Balance", "Monthly")
	t.AppendHeader(header)

	for _, sub := range subs {
		formatter := FormatterFor(sub.Currency)

		row := table.Row{
			sub.Name,
			formatter.Format(sub.Price),
			sub.Cycle.String(),
			sub.NextBillingDate.String(),
			dueInLabel(opts.Today, sub.NextBillingDate),
		}
		if hasTags {
			row = append(row, strings.Join(cfg.GetTags(sub.Name), ", "))
		}

		balanceStr := text.FgHiBlack.Sprint("-")
		if balance, ok := sub.Balance(); ok {
			balanceStr = formatter.Format(balance)
			if balance.LessThan(sub.Price) {
				balanceStr = text.FgYellow.Sprint(balanceStr)
			}
		}
		row = append(row, balanceStr, formatter.Format(MonthlyEquivalent(sub)))
		t.AppendRow(row)
	}

	t.AppendSeparator()

	footer := table.Row{"", "", "", ""}
	if hasTags {
		footer = append(footer, "")
	}
	footer = append(footer, text.Bold.Sprint("Total"), "", text.Bold.Sprint(totalsLabel(subs)))
	t.AppendFooter(footer)

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	colCount := len(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: colCount - 1, Align: text.AlignRight},
		{Number: colCount, Align: text.AlignRight},
	})

	t.Render()
}

// dueInLabel colors the countdown: overdue red, due today amber.
func dueInLabel(today, due Date) string {
	days := today.DaysUntil(due)
	switch {
	case days < 0:
		return text.FgRed.Sprintf("%d days ago", -days)
	case days == 0:
		return text.FgYellow.Sprint("today")
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// totalsLabel joins the per-currency monthly totals, e.g. "¥25 + $40".
func totalsLabel(subs []Subscription) string {
	totals := MonthlyTotals(subs)
	var parts []string
	for _, code := range TotalCurrencies(totals) {
		if totals[code].IsZero() {
			continue
		}
		parts = append(parts, FormatterFor(code).FormatWhole(totals[code]))
	}
	if len(parts) == 0 {
		return "-"
	}
	return "~ " + strings.Join(parts, " + ") + " /mo"
}

// ApplyView runs the view-model pipeline (filter, tag filter, sort) used by
// list and export.
func ApplyView(subs []Subscription, opts OutputOptions, cfg *Config) []Subscription {
	subs = FilterByName(subs, opts.Search)
	subs = FilterByTags(subs, opts.TagFilter, cfg)

	switch opts.SortField {
	case "name":
		return SortByName(subs)
	case "price":
		return SortByPrice(subs)
	default: // "due"
		return SortByNextBilling(subs)
	}
}
