package internal

import (
	"golang.org/x/text/language"
)

// Language is the UI language for list output and reminder texts.
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

const defaultTheme = "auto"

// DefaultSettings returns the settings used when no settings file exists,
// with the language derived from the system locale.
func DefaultSettings() AppSettings {
	return AppSettings{
		NotificationsEnabled: false,
		Language:             DetectSystemLanguage(),
		Theme:                defaultTheme,
	}
}

// DetectSystemLanguage maps the OS locale onto a supported language:
// any Chinese locale selects zh, everything else falls back to en.
func DetectSystemLanguage() Language {
	locale := detectSystemLocale()
	if locale == "" {
		return LangEnglish
	}
	_, tag := parseCurrencyFromLocale(locale)
	base, _ := tag.Base()
	if base == language.MustParseBase("zh") {
		return LangChinese
	}
	return LangEnglish
}

// normalize fills in defaults for fields absent from older settings files.
func (s AppSettings) normalize() AppSettings {
	if s.Language != LangEnglish && s.Language != LangChinese {
		s.Language = DetectSystemLanguage()
	}
	if s.Theme == "" {
		s.Theme = defaultTheme
	}
	return s
}
