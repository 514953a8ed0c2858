// Package pipeline runs the five-stage hotel search workflow:
// parse input -> search hotels -> compute costs -> (enrich) -> finalize.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotel_scout/internal/adapters/observability"
	"hotel_scout/internal/domain"
	"hotel_scout/internal/extract"
)

// State is the record threaded through the stages. Trace and Errors are
// append-only; each stage receives a value and returns the advanced value,
// so no stage aliases another's output.
type State struct {
	RunID      string
	Query      string
	Params     *domain.SearchRequest
	Trace      []string
	RawResults []domain.SearchResult
	// Hotels is nil until the search stage has run; an empty non-nil slice
	// means the search ran and found nothing.
	Hotels       []domain.Candidate
	NeedsImages  bool
	NeedsContact bool
	Final        *domain.HotelSearchResult
	Errors       []string
}

func (s State) withTrace(msg string) State {
	s.Trace = append(s.Trace, msg)
	return s
}

func (s State) withError(msg string) State {
	s.Errors = append(s.Errors, msg)
	return s
}

// Failed reports whether a fatal stage error was recorded.
func (s State) Failed() bool { return len(s.Errors) > 0 }

// Pipeline owns the provider clients and drives one State through the
// stages. It holds no per-request mutable data and is safe to share across
// concurrent requests.
type Pipeline struct {
	llm    domain.Completer
	search domain.SearchClient
	places domain.PlacesClient
	norm   *extract.Normalizer
	log    zerolog.Logger
	now    func() time.Time
}

// Options tunes the extraction retry loop.
type Options struct {
	MaxAttempts int           // completion attempts per extraction, default 3
	RetryDelay  time.Duration // fixed wait between attempts, default 1s
}

// New wires a Pipeline. places may be nil when the enrichment provider is
// not configured.
func New(llm domain.Completer, search domain.SearchClient, places domain.PlacesClient, opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		llm:    llm,
		search: search,
		places: places,
		norm:   extract.New(llm, opts.MaxAttempts, opts.RetryDelay, log),
		log:    log,
		now:    time.Now,
	}
}

// SetClock replaces the timestamp source. Tests use this for deterministic
// completion timestamps.
func (p *Pipeline) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// Normalizer exposes the extraction normalizer so callers can adjust its
// sleep function in tests.
func (p *Pipeline) Normalizer() *extract.Normalizer { return p.norm }

// Run executes the workflow for a free-text query.
func (p *Pipeline) Run(ctx context.Context, query string) State {
	return p.run(ctx, State{RunID: uuid.NewString(), Query: query})
}

// RunWithParams executes the workflow with pre-supplied search parameters,
// turning the parse stage into a pass-through.
func (p *Pipeline) RunWithParams(ctx context.Context, params domain.SearchRequest) State {
	return p.run(ctx, State{RunID: uuid.NewString(), Params: &params})
}

func (p *Pipeline) run(ctx context.Context, s State) State {
	s = p.stage(ctx, s, "parse_input", p.parseInput)
	if s.Failed() {
		return s
	}
	s = p.stage(ctx, s, "search_hotels", p.searchHotels)
	if s.Failed() {
		return s
	}
	s = p.stage(ctx, s, "compute_costs", p.computeCosts)
	if s.Failed() {
		// errors short-circuit straight to termination; finalize never runs
		return s
	}
	if s.NeedsImages || s.NeedsContact {
		s = p.stage(ctx, s, "enrich", p.enrich)
		if s.Failed() {
			return s
		}
	}
	return p.stage(ctx, s, "finalize", p.finalize)
}

// stage wraps a transition: cancellation check at the boundary, duration and
// outcome metrics, one log line.
func (p *Pipeline) stage(ctx context.Context, s State, name string, fn func(context.Context, State) State) State {
	if err := ctx.Err(); err != nil {
		observability.ObserveStage(name, "skipped", 0)
		return s.withError("pipeline cancelled before " + name + ": " + err.Error())
	}
	start := time.Now()
	before := len(s.Errors)
	s = fn(ctx, s)
	outcome := "ok"
	if len(s.Errors) > before {
		outcome = "error"
	}
	dur := time.Since(start)
	observability.ObserveStage(name, outcome, dur)
	p.log.Info().
		Str("run_id", s.RunID).
		Str("stage", name).
		Str("outcome", outcome).
		Dur("duration", dur).
		Int("hotels", len(s.Hotels)).
		Msg("pipeline stage")
	return s
}

// Response folds a terminal State into the outbound envelope. Partial
// knowledge is not failure: success is false only when the error list is
// non-empty.
func (p *Pipeline) Response(s State) SearchResponse {
	resp := SearchResponse{
		Success:        !s.Failed(),
		Data:           s.Final,
		ReasoningSteps: s.Trace,
		Timestamp:      p.now().Format(time.RFC3339),
	}
	if s.Failed() {
		msg := strings.Join(s.Errors, "; ")
		resp.Error = &msg
	}
	return resp
}

// SearchResponse is the JSON envelope returned to callers.
type SearchResponse struct {
	Success        bool                      `json:"success"`
	Data           *domain.HotelSearchResult `json:"data"`
	Error          *string                   `json:"error"`
	ReasoningSteps []string                  `json:"reasoning_steps"`
	Timestamp      string                    `json:"timestamp"`
}
