package domain

// Locale selects the target language for all textual output fields of a
// generated response.
type Locale string

const (
	LocaleSlovenian Locale = "sl"
	LocaleEnglish   Locale = "en"
)

// LanguageName returns the language name spelled out. Generation prompts must
// state the language by name, never by code.
func (l Locale) LanguageName() string {
	switch l {
	case LocaleSlovenian:
		return "Slovenian"
	default:
		return "English"
	}
}

// ParseLocale maps a locale string onto a supported Locale, falling back to
// English for anything unknown.
func ParseLocale(s string) Locale {
	if Locale(s) == LocaleSlovenian {
		return LocaleSlovenian
	}
	return LocaleEnglish
}
