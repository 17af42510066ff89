// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases the name and collapses every run of
// non-alphanumeric characters into a single hyphen.
//
//	"Wireless Keyboard (US)" -> "wireless-keyboard-us"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix appends a short disambiguator, used when a generated slug
// collides with an existing one.
func WithSuffix(base, suffix string) string {
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
