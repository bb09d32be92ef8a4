package domain

// Language is the closed set of languages the service localizes into.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// ParseLanguage maps a raw header value to a supported language.
// Anything unrecognized falls back to English, matching the read-path
// behavior: localization never fails a request.
func ParseLanguage(raw string) Language {
	if Language(raw) == LanguageArabic {
		return LanguageArabic
	}
	return LanguageEnglish
}
