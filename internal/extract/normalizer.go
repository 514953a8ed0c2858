// Package extract coerces free-form LLM answers into hotel record arrays.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hotel_scout/internal/domain"
)

// Outcome tags how the record list was obtained.
type Outcome int

const (
	// Parsed means the model returned a usable JSON array.
	Parsed Outcome = iota
	// Fallback means the list was synthesized from raw search results after
	// the model failed to produce one.
	Fallback
	// Failed is only reachable when a fallback is impossible (no raw
	// results at all); the list is empty.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Fallback:
		return "fallback"
	default:
		return "failed"
	}
}

// RawHotel is one record as the model emits it, before canonicalization.
type RawHotel struct {
	Name        string   `json:"name"`
	Amenities   []string `json:"amenities"`
	RoomPrice   string   `json:"room_price"`
	Source      string   `json:"source"`
	BookingLink string   `json:"booking_link"`
}

// Result carries the extraction outcome plus attempt accounting.
type Result struct {
	Outcome  Outcome
	Hotels   []RawHotel
	Attempts int
	Retries  int
	Reason   string
}

// FallbackLimit caps how many raw search items the fallback synthesizes
// candidates from.
const FallbackLimit = 5

// Normalizer retries an LLM completion until it yields a parseable JSON
// array, then falls back to a deterministic list built from the raw search
// results. The fallback path never fails.
type Normalizer struct {
	llm         domain.Completer
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) bool
	log         zerolog.Logger
}

// New builds a Normalizer. maxAttempts <= 0 defaults to 3; backoff <= 0
// defaults to one second.
func New(llm domain.Completer, maxAttempts int, backoff time.Duration, log zerolog.Logger) *Normalizer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Normalizer{
		llm:         llm,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		sleep:       sleepCtx,
		log:         log,
	}
}

// SetSleep replaces the inter-attempt wait. Tests use this to avoid real
// backoff delays.
func (n *Normalizer) SetSleep(f func(ctx context.Context, d time.Duration) bool) {
	if f != nil {
		n.sleep = f
	}
}

// Extract runs the retry loop and, if needed, the fallback. The first
// successful parse terminates the loop even if the array is empty; an empty
// array still routes to the fallback so the pipeline never continues with
// zero candidates while raw results exist.
func (n *Normalizer) Extract(ctx context.Context, system, user string, raw []domain.SearchResult) Result {
	res := Result{}
	var hotels []RawHotel
	parsed := false

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		res.Attempts = attempt
		hs, err := n.attempt(ctx, system, user)
		if err == nil {
			hotels = hs
			parsed = true
			break
		}
		res.Reason = err.Error()
		n.log.Warn().Int("attempt", attempt).Int("max", n.maxAttempts).Err(err).
			Msg("hotel extraction attempt failed")
		if attempt == n.maxAttempts {
			break
		}
		res.Retries++
		if !n.sleep(ctx, n.backoff) {
			res.Reason = ctx.Err().Error()
			break
		}
	}

	if parsed && len(hotels) > 0 {
		res.Outcome = Parsed
		res.Hotels = hotels
		res.Reason = ""
		return res
	}

	fb := fallbackHotels(raw)
	if len(fb) == 0 {
		res.Outcome = Failed
		if res.Reason == "" {
			res.Reason = "model returned an empty array and no raw results to fall back on"
		}
		return res
	}
	res.Outcome = Fallback
	res.Hotels = fb
	return res
}

func (n *Normalizer) attempt(ctx context.Context, system, user string) ([]RawHotel, error) {
	text, err := n.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("completion call: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("model returned empty response")
	}

	payload, err := CleanArrayPayload(text)
	if err != nil {
		return nil, err
	}
	var hotels []RawHotel
	if err := json.Unmarshal([]byte(payload), &hotels); err != nil {
		return nil, fmt.Errorf("parse hotel array: %w", err)
	}
	return hotels, nil
}

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// CleanArrayPayload strips the wrapper tokens models habitually add around a
// JSON array: markdown code fences, leading prose before the first bracket,
// and trailing text after the matching close. Trailing commas before a
// closing brace or bracket are repaired.
func CleanArrayPayload(text string) (string, error) {
	s := strings.TrimSpace(text)

	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", fmt.Errorf("no JSON array in response: %q", head(s, 120))
	}
	s = s[start:]

	// Cut at the bracket that closes the array so trailing prose does not
	// break the decode. Brackets inside strings are skipped.
	depth := 0
	inStr := false
	esc := false
	end := -1
scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case esc:
			esc = false
		case inStr:
			if c == '\\' {
				esc = true
			} else if c == '"' {
				inStr = false
			}
		case c == '"':
			inStr = true
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}
	if end >= 0 {
		s = s[:end+1]
	}

	return trailingComma.ReplaceAllString(s, "$1"), nil
}

// fallbackHotels builds minimal records straight from the raw search items,
// one per item, first FallbackLimit only. Title and link carry over; every
// other field stays at the sentinel.
func fallbackHotels(raw []domain.SearchResult) []RawHotel {
	limit := len(raw)
	if limit > FallbackLimit {
		limit = FallbackLimit
	}
	out := make([]RawHotel, 0, limit)
	for i := 0; i < limit; i++ {
		name := strings.TrimSpace(raw[i].Title)
		if name == "" {
			name = fmt.Sprintf("Hotel %d", i+1)
		}
		src := raw[i].URL
		if src == "" {
			src = domain.NotAvailable
		}
		out = append(out, RawHotel{
			Name:        name,
			Amenities:   []string{domain.NotAvailable},
			RoomPrice:   domain.NotAvailable,
			Source:      src,
			BookingLink: domain.NotAvailable,
		})
	}
	return out
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
