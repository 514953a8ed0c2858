// Package cost computes nightly totals under Indian hotel GST rules.
package cost

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ServiceRate is the flat service charge applied on top of every stay,
// independent of the GST slab.
const ServiceRate = 0.10

// Breakdown is the per-candidate cost computation. Amounts are kept as
// float64; the Fmt fields carry the display rendering.
type Breakdown struct {
	Base    float64
	Tax     float64
	Service float64
	Total   float64
	Nights  int

	BaseFmt    string
	TaxFmt     string
	ServiceFmt string
	TotalFmt   string
}

// Nights returns the stay length between two ISO dates, never less than 1.
// Unparsable input yields 1; callers must treat the result as a best-effort
// stay length.
func Nights(checkIn, checkOut string) int {
	in, err := time.Parse("2006-01-02", strings.TrimSpace(checkIn))
	if err != nil {
		return 1
	}
	out, err := time.Parse("2006-01-02", strings.TrimSpace(checkOut))
	if err != nil {
		return 1
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// TaxSlab maps a nightly price to its GST rate. Boundaries are half-open and
// the top slab is unbounded. The label is for traces only; the two middle
// slabs share a rate, so callers must branch on the rate, never the label.
func TaxSlab(nightly float64) (float64, string) {
	switch {
	case nightly < 1000:
		return 0.0, "Below ₹1000 (0% GST)"
	case nightly < 2500:
		return 0.12, "₹1000-2500 (12% GST)"
	case nightly < 7500:
		return 0.12, "₹2500-7500 (12% GST)"
	default:
		return 0.18, "Above ₹7500 (18% GST)"
	}
}

// Compute builds the full cost breakdown for a stay. The service charge is
// always ServiceRate of the base, regardless of slab.
func Compute(nightly float64, nights int, taxRate float64) Breakdown {
	base := nightly * float64(nights)
	tax := base * taxRate
	service := base * ServiceRate
	total := base + tax + service
	return Breakdown{
		Base:       base,
		Tax:        tax,
		Service:    service,
		Total:      total,
		Nights:     nights,
		BaseFmt:    FormatINR(base),
		TaxFmt:     fmt.Sprintf("%s (%.0f%%)", FormatINR(tax), taxRate*100),
		ServiceFmt: fmt.Sprintf("%s (%.0f%%)", FormatINR(service), ServiceRate*100),
		TotalFmt:   FormatINR(total),
	}
}

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)₹\s*(\d+(?:,\d+)*(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)INR\s*(\d+(?:,\d+)*(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d+)*(?:\.\d+)?)\s*INR`),
	regexp.MustCompile(`(?i)\$\s*(\d+(?:,\d+)*(?:\.\d+)?)`),
}

// ExtractPrice scans free text for the first recognizable currency amount
// (₹-prefixed, INR-prefixed, INR-suffixed, then $-prefixed). Returns 0 when
// nothing matches; 0 is the shared "price unknown" sentinel.
func ExtractPrice(text string) float64 {
	for _, p := range pricePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return v
	}
	return 0
}

// FormatINR renders an amount as ₹ with thousands grouping and two decimals.
func FormatINR(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := "₹" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
