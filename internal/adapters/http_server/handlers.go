// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_scout/internal/domain"
	"hotel_scout/internal/pipeline"
)

// Runner is the slice of the pipeline the handlers need.
type Runner interface {
	Run(ctx context.Context, query string) pipeline.State
	RunWithParams(ctx context.Context, params domain.SearchRequest) pipeline.State
	Response(s pipeline.State) pipeline.SearchResponse
}

type Handlers struct{ P Runner }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/health", h.health)
	s.mux.Get("/", h.root)
	s.mux.Get("/api/workflow", h.workflow)
	s.mux.Post("/api/search", h.search)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// searchBody accepts either a free-text query or pre-parsed parameters.
// Exactly one of the two must be present.
type searchBody struct {
	Query  string                `json:"query"`
	Params *domain.SearchRequest `json:"params"`
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be JSON")
		return
	}
	if body.Query == "" && body.Params == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "either query or params is required")
		return
	}
	if body.Query != "" && body.Params != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "query and params are mutually exclusive")
		return
	}

	var state pipeline.State
	if body.Params != nil {
		state = h.P.RunWithParams(r.Context(), *body.Params)
	} else {
		state = h.P.Run(r.Context(), body.Query)
	}

	resp := h.P.Response(state)
	status := http.StatusOK
	if !resp.Success {
		// the envelope already carries the error detail; the status code only
		// distinguishes a failed run from a served one
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "hotel_scout",
	})
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "hotel_scout",
		"endpoints": map[string]string{
			"search":   "POST /api/search",
			"workflow": "GET /api/workflow",
			"health":   "GET /health",
		},
	})
}

// workflow documents the stage graph for API consumers.
func (h *Handlers) workflow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stages": []map[string]string{
			{"name": "parse_input", "description": "Parse the natural language query into structured search parameters"},
			{"name": "search_hotels", "description": "Run web searches and extract structured hotel candidates"},
			{"name": "compute_costs", "description": "Compute per-stay taxes, service charges and totals"},
			{"name": "enrich", "description": "Fill missing images and contact details from the places provider"},
			{"name": "finalize", "description": "Assemble the final response document"},
		},
		"conditional": []string{"enrich runs only when images or contact details are missing"},
	})
}
