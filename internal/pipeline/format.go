package pipeline

import (
	"strings"
	"unicode"

	"hotel_scout/internal/domain"
)

// FormatAmenities trims, title-cases and de-duplicates an amenity list,
// keeping first-seen order with case-insensitive comparison. Sentinel
// entries are dropped wherever they appear; a list left empty collapses to
// the single sentinel. The function is idempotent.
func FormatAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		t := strings.TrimSpace(a)
		if t == "" || strings.EqualFold(t, domain.NotAvailable) {
			continue
		}
		t = titleCase(t)
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return []string{domain.NotAvailable}
	}
	return out
}

// titleCase uppercases the first letter of every word and lowercases the
// rest, treating any non-letter as a word boundary ("wi-fi" -> "Wi-Fi").
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
