package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

// NormalizeEmail lowercases and trims an email-like identity so lookups by
// customer or provider identity are case-insensitive, matching how the
// identities are stored.
func NormalizeEmail(email string) string {
	p := Pipeline{trimAndLower}
	return p.Apply(email)
}

// NormalizeCategory normalizes a category tag for comparison against the
// canonical set.
func NormalizeCategory(category string) string {
	p := Pipeline{trimAndLower}
	return p.Apply(category)
}
