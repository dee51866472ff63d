package domain

import "strings"

// Language identifies one of the two fixed display languages.
type Language string

const (
	// LangKazakh is the default language. Records store Kazakh text as their default values.
	LangKazakh Language = "kk"

	// LangEnglish is the override language. Records may carry English overrides.
	LangEnglish Language = "en"
)

// DefaultLanguage is the language a new session starts with when nothing better is known.
const DefaultLanguage = LangKazakh

// OverrideLanguage is the language whose values are stored as per-record overrides.
const OverrideLanguage = LangEnglish

// Languages lists the supported languages in display order.
var Languages = []Language{LangKazakh, LangEnglish}

// ParseLanguage converts a language code to a Language.
// Matching ignores case and surrounding whitespace.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangKazakh:
		return LangKazakh, nil
	case LangEnglish:
		return LangEnglish, nil
	default:
		return "", NewValidationErrorWithValue("lang", "must be one of: kk en", s)
	}
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LangKazakh || l == LangEnglish
}

// WantsOverride reports whether values in this language come from record overrides.
func (l Language) WantsOverride() bool {
	return l == OverrideLanguage
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}
