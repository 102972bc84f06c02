package internal

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter renders amounts with locale-aware digit grouping and the
// currency's symbol. It works for any ISO code even though data entry is
// limited to SupportedCurrencies.
type MoneyFormatter struct {
	Code    string
	unit    currency.Unit
	tag     language.Tag
	printer *message.Printer
}

// symbolOverrides provides custom symbols where x/text defaults aren't
// ideal ("CN¥" reads poorly next to prices entered as ¥).
var symbolOverrides = map[string]string{
	"CNY": "¥",
}

// defaultLocaleForCurrency provides a "home" locale per currency when the
// system locale is unknown.
var defaultLocaleForCurrency = map[string]language.Tag{
	"CNY": language.Chinese,
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"JPY": language.Japanese,
	"SEK": language.Swedish,
}

// detectedLocale stores the system locale when auto-detected, so formatting
// follows the user's conventions rather than the currency's home locale.
var detectedLocale language.Tag

// FormatterFor returns the MoneyFormatter for a currency code.
func FormatterFor(code Currency) MoneyFormatter {
	upper := strings.ToUpper(string(code))

	unit, err := currency.ParseISO(upper)
	isUnknown := err != nil
	if isUnknown {
		unit = currency.USD // fallback unit for number formatting only
	}

	var tag language.Tag
	if detectedLocale != language.Und {
		tag = detectedLocale
	} else if t, ok := defaultLocaleForCurrency[upper]; ok {
		tag = t
	} else {
		tag = language.English
	}

	f := MoneyFormatter{
		Code:    upper,
		unit:    unit,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}

	if isUnknown {
		symbolOverrides[upper] = upper
	}

	return f
}

// DetectSystemCurrency attempts to derive a currency from the OS locale.
// Returns empty string if detection fails. Also sets detectedLocale so
// subsequent formatting uses the user's locale.
func DetectSystemCurrency() string {
	locale := detectSystemLocale()
	if locale == "" {
		return ""
	}

	code, tag := parseCurrencyFromLocale(locale)
	if code != "" {
		detectedLocale = tag
		return code
	}
	return ""
}

// DefaultCurrency picks the data-entry default from the system locale:
// a Chinese-region locale selects CNY, everything else USD.
func DefaultCurrency() Currency {
	if DetectSystemCurrency() == string(CNY) {
		return CNY
	}
	return USD
}

// parseCurrencyFromLocale extracts currency code and language tag from a
// locale string. Example: "zh_CN.UTF-8" -> ("CNY", zh-CN).
func parseCurrencyFromLocale(locale string) (string, language.Tag) {
	base := locale
	if idx := strings.Index(base, "."); idx != -1 {
		base = base[:idx]
	}
	if idx := strings.Index(base, "@"); idx != -1 {
		base = base[:idx]
	}

	tagStr := strings.Replace(base, "_", "-", 1)
	tag, err := language.Parse(tagStr)
	if err != nil {
		return "", language.Und
	}

	_, _, region := tag.Raw()
	if region.String() == "" || region.String() == "ZZ" {
		return "", language.Und
	}

	unit, ok := currency.FromRegion(region)
	if !ok {
		return "", language.Und
	}

	return unit.String(), tag
}

func (f MoneyFormatter) symbol() string {
	if sym, ok := symbolOverrides[f.Code]; ok {
		return sym
	}
	return f.printer.Sprint(currency.NarrowSymbol(f.unit))
}

// isPrefix returns true if the symbol goes before the amount.
// golang.org/x/text/currency doesn't implement symbol positioning from CLDR
// patterns, so the prefix set is maintained by hand.
func (f MoneyFormatter) isPrefix() bool {
	switch f.Code {
	case "USD", "CNY", "GBP", "JPY", "CAD", "AUD", "HKD", "SGD", "NZD":
		return true
	default:
		return false
	}
}

// Format renders an amount with two fraction digits and the symbol.
func (f MoneyFormatter) Format(amount decimal.Decimal) string {
	formatted := f.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(moneyScale)))
	if f.isPrefix() {
		return f.symbol() + formatted
	}
	return formatted + " " + f.symbol()
}

// FormatWhole renders an amount rounded to whole units, for compact totals.
func (f MoneyFormatter) FormatWhole(amount decimal.Decimal) string {
	formatted := f.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(0)))
	if f.isPrefix() {
		return f.symbol() + formatted
	}
	return formatted + " " + f.symbol()
}
