// Package i18n holds the closed set of supported submission languages and the
// per-form translation bundles that localize rendered forms and documents.
package i18n

import (
	"fmt"
	"strings"
)

// Language identifies a supported UI language by its ISO 639-1 code.
type Language string

const (
	English Language = "en"
	German  Language = "de"
	French  Language = "fr"
	Italian Language = "it"
	Spanish Language = "es"
	Turkish Language = "tr"
	Russian Language = "ru"
	Polish  Language = "pl"
	Arabic  Language = "ar"
	Hebrew  Language = "he"
)

// Direction is the text direction a language renders in.
type Direction string

const (
	LeftToRight Direction = "ltr"
	RightToLeft Direction = "rtl"
)

var supported = []Language{
	English, German, French, Italian, Spanish,
	Turkish, Russian, Polish, Arabic, Hebrew,
}

var rightToLeft = map[Language]bool{
	Arabic: true,
	Hebrew: true,
}

// Supported returns the closed language set in stable order.
func Supported() []Language {
	return append([]Language(nil), supported...)
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	_, err := ParseLanguage(code)
	return err == nil
}

// ParseLanguage normalizes a language code ("DE", " de-CH ") to a supported
// Language, rejecting codes outside the closed set.
func ParseLanguage(code string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(normalized, "-_"); idx > 0 {
		normalized = normalized[:idx]
	}
	for _, lang := range supported {
		if string(lang) == normalized {
			return lang, nil
		}
	}
	return "", fmt.Errorf("i18n: unsupported language %q", code)
}

// Direction returns the text direction for the language.
func (l Language) Direction() Direction {
	if rightToLeft[l] {
		return RightToLeft
	}
	return LeftToRight
}

// String returns the ISO code.
func (l Language) String() string {
	return string(l)
}

// yes/no markers used when a bundle supplies no override. Keys outside the
// table fall back to English.
var yesNoLabels = map[Language][2]string{
	English: {"Yes", "No"},
	German:  {"Ja", "Nein"},
	French:  {"Oui", "Non"},
	Italian: {"Sì", "No"},
	Spanish: {"Sí", "No"},
	Turkish: {"Evet", "Hayır"},
	Russian: {"Да", "Нет"},
	Polish:  {"Tak", "Nie"},
	Arabic:  {"نعم", "لا"},
	Hebrew:  {"כן", "לא"},
}

// YesNo returns the localized yes/no labels for boolean rendering.
func (l Language) YesNo() (yes, no string) {
	if labels, ok := yesNoLabels[l]; ok {
		return labels[0], labels[1]
	}
	labels := yesNoLabels[English]
	return labels[0], labels[1]
}

// DateLayout returns the locale-conventional date layout used when formatting
// date values in rendered documents.
func (l Language) DateLayout() string {
	switch l {
	case German, Russian, Turkish, Polish:
		return "02.01.2006"
	case French, Italian, Spanish:
		return "02/01/2006"
	case Arabic, Hebrew:
		return "02/01/2006"
	default:
		return "Jan 2, 2006"
	}
}
