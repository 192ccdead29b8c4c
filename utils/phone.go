package utils

import "strings"

// NormalizePhone keeps digits and a leading '+', dropping the separators
// people type ("+1 (555) 010-2030" -> "+15550102030").
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(raw))
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SamePhone compares two phone numbers after normalization.
func SamePhone(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	return na != "" && na == nb
}

// MaskPhone hides all but the last four digits.
func MaskPhone(phone string) string {
	n := NormalizePhone(phone)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
