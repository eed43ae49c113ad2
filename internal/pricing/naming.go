package pricing

import (
	"regexp"
	"strings"
)

var (
	bracketTag = regexp.MustCompile(`[\[(（【][^\])）】]*[\])）】]`)
	multiSpace = regexp.MustCompile(`\s{2,}`)
)

// CleanProductName strips the platform's listing decorations — bracketed
// promo/category tags and duplicated whitespace — from a product name so it
// reads as a quote line. "[Custom] Mug  (2-pack)" → "Mug".
func CleanProductName(name string) string {
	cleaned := bracketTag.ReplaceAllString(name, " ")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
