package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/macrolens/diettracker/internal/domain"
)

// Package-level compiled regex patterns for search normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

var numberPrinter = message.NewPrinter(language.English)

// FormatNumber rounds x half-up to an integer and adds thousands separators: 2345.6 -> "2,346".
func FormatNumber(x float64) string {
	return numberPrinter.Sprintf("%d", int64(domain.RoundHalfUp(x)))
}

// DisplayName turns an item id such as "peanutButter" or "peanut_butter" into "Peanut Butter".
func DisplayName(id string) string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range id {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0:
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// normalizeSearchText lowercases s, strips punctuation and collapses whitespace.
func normalizeSearchText(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
