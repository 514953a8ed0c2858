package extract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hotel_scout/internal/domain"
	"hotel_scout/internal/extract"
)

type scriptedLLM struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedLLM) Complete(ctx context.Context, system, user string) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.replies[i], err
}

func noSleep(ctx context.Context, d time.Duration) bool { return true }

func newNormalizer(llm domain.Completer) *extract.Normalizer {
	n := extract.New(llm, 3, time.Second, zerolog.Nop())
	n.SetSleep(noSleep)
	return n
}

func rawResults(n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{Title: "Result", URL: "https://example.com"}
	}
	return out
}

const validArray = `[{"name":"Hotel A","amenities":["WiFi"],"room_price":"2000 INR","source":"https://a.example","booking_link":"https://book.example"}]`

func TestExtract_FailsTwiceThenSucceeds(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"", "I could not find hotels.", validArray}}
	n := newNormalizer(llm)

	res := n.Extract(context.Background(), "sys", "user", rawResults(3))
	if res.Outcome != extract.Parsed {
		t.Fatalf("outcome = %v, want parsed (reason %q)", res.Outcome, res.Reason)
	}
	if res.Retries != 2 {
		t.Errorf("retries = %d, want 2", res.Retries)
	}
	if res.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", res.Attempts)
	}
	if len(res.Hotels) != 1 || res.Hotels[0].Name != "Hotel A" {
		t.Errorf("unexpected hotels: %+v", res.Hotels)
	}
}

func TestExtract_SuccessStopsRetrying(t *testing.T) {
	llm := &scriptedLLM{replies: []string{validArray}}
	n := newNormalizer(llm)

	res := n.Extract(context.Background(), "sys", "user", rawResults(3))
	if res.Outcome != extract.Parsed {
		t.Fatalf("outcome = %v, want parsed", res.Outcome)
	}
	if llm.calls != 1 {
		t.Errorf("completion called %d times, want 1", llm.calls)
	}
}

func TestExtract_AlwaysEmptyFallsBack(t *testing.T) {
	llm := &scriptedLLM{replies: []string{""}}
	n := newNormalizer(llm)

	for _, rawLen := range []int{3, 7} {
		res := n.Extract(context.Background(), "sys", "user", rawResults(rawLen))
		if res.Outcome != extract.Fallback {
			t.Fatalf("outcome = %v, want fallback", res.Outcome)
		}
		want := rawLen
		if want > extract.FallbackLimit {
			want = extract.FallbackLimit
		}
		if len(res.Hotels) != want {
			t.Errorf("fallback count = %d, want %d", len(res.Hotels), want)
		}
		for _, h := range res.Hotels {
			if h.RoomPrice != domain.NotAvailable {
				t.Errorf("fallback price = %q, want sentinel", h.RoomPrice)
			}
		}
	}
}

func TestExtract_CompletionErrorFallsBack(t *testing.T) {
	llm := &scriptedLLM{
		replies: []string{"", "", ""},
		errs:    []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}
	n := newNormalizer(llm)

	res := n.Extract(context.Background(), "sys", "user", rawResults(2))
	if res.Outcome != extract.Fallback {
		t.Fatalf("outcome = %v, want fallback", res.Outcome)
	}
	if len(res.Hotels) != 2 {
		t.Errorf("fallback count = %d, want 2", len(res.Hotels))
	}
}

func TestExtract_EmptyParsedArrayUsesFallback(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"[]"}}
	n := newNormalizer(llm)

	res := n.Extract(context.Background(), "sys", "user", rawResults(4))
	if res.Outcome != extract.Fallback {
		t.Fatalf("outcome = %v, want fallback", res.Outcome)
	}
	if llm.calls != 1 {
		t.Errorf("completion called %d times, want 1 (success ends the loop)", llm.calls)
	}
}

func TestExtract_NoRawResultsFails(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"not json at all"}}
	n := newNormalizer(llm)

	res := n.Extract(context.Background(), "sys", "user", nil)
	if res.Outcome != extract.Failed {
		t.Fatalf("outcome = %v, want failed", res.Outcome)
	}
	if len(res.Hotels) != 0 {
		t.Errorf("hotels = %+v, want none", res.Hotels)
	}
	if res.Reason == "" {
		t.Error("expected a failure reason")
	}
}

func TestCleanArrayPayload(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"name":"A"}]`, `[{"name":"A"}]`},
		{"json fence", "```json\n[{\"name\":\"A\"}]\n```", `[{"name":"A"}]`},
		{"plain fence", "```\n[{\"name\":\"A\"}]\n```", `[{"name":"A"}]`},
		{"leading prose", `Here are the hotels: [{"name":"A"}]`, `[{"name":"A"}]`},
		{"trailing prose", `[{"name":"A"}] Hope that helps!`, `[{"name":"A"}]`},
		{"trailing comma", `[{"name":"A",}]`, `[{"name":"A"}]`},
		{"bracket in string", `[{"name":"A ] B"}] extra`, `[{"name":"A ] B"}]`},
	}
	for _, c := range cases {
		got, err := extract.CleanArrayPayload(c.in)
		if err != nil {
			t.Errorf("%s: unexpected err: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}

	if _, err := extract.CleanArrayPayload("no array here"); err == nil {
		t.Error("expected error when no bracket is present")
	}
}
