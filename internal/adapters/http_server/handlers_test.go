package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "hotel_scout/internal/adapters/http_server"
	"hotel_scout/internal/domain"
	"hotel_scout/internal/pipeline"
)

type fakeRunner struct {
	lastQuery  string
	lastParams *domain.SearchRequest
	state      pipeline.State
}

func (f *fakeRunner) Run(ctx context.Context, query string) pipeline.State {
	f.lastQuery = query
	return f.state
}

func (f *fakeRunner) RunWithParams(ctx context.Context, params domain.SearchRequest) pipeline.State {
	f.lastParams = &params
	return f.state
}

func (f *fakeRunner) Response(s pipeline.State) pipeline.SearchResponse {
	resp := pipeline.SearchResponse{
		Success:        !s.Failed(),
		Data:           s.Final,
		ReasoningSteps: s.Trace,
		Timestamp:      time.Now().Format(time.RFC3339),
	}
	if s.Failed() {
		msg := strings.Join(s.Errors, "; ")
		resp.Error = &msg
	}
	return resp
}

func newTestServer(f *fakeRunner) *httptest.Server {
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{P: f})
	return httptest.NewServer(srv.Mux())
}

func TestSearch_Query(t *testing.T) {
	f := &fakeRunner{state: pipeline.State{
		Trace: []string{"parsed", "searched"},
		Final: &domain.HotelSearchResult{
			SearchParams: domain.SearchRequest{Location: "Jaipur"},
			Hotels:       []domain.Candidate{domain.NewCandidate("Hotel A")},
			Version:      1,
		},
	}}
	ts := newTestServer(f)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/search", "application/json",
		strings.NewReader(`{"query":"hotels in Jaipur"}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var env pipeline.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Data == nil || len(env.Data.Hotels) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if f.lastQuery != "hotels in Jaipur" {
		t.Errorf("query passed to pipeline = %q", f.lastQuery)
	}
}

func TestSearch_Params(t *testing.T) {
	f := &fakeRunner{state: pipeline.State{Final: &domain.HotelSearchResult{Version: 1}}}
	ts := newTestServer(f)
	defer ts.Close()

	body := `{"params":{"location":"Udaipur","check_in":"2026-01-10","check_out":"2026-01-12","guests":2,"budget":"5000 INR","room_type":"double"}}`
	resp, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if f.lastParams == nil || f.lastParams.Location != "Udaipur" {
		t.Fatalf("params not forwarded: %+v", f.lastParams)
	}
	if f.lastQuery != "" {
		t.Error("free-text path must not run when params are supplied")
	}
}

func TestSearch_FailedRunReturns422(t *testing.T) {
	f := &fakeRunner{state: pipeline.State{Errors: []string{"Input parsing failed: no location"}}}
	ts := newTestServer(f)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/search", "application/json",
		strings.NewReader(`{"query":"???"}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 422 {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var env pipeline.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error == nil || !strings.Contains(*env.Error, "Input parsing failed") {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestSearch_BadBodies(t *testing.T) {
	ts := newTestServer(&fakeRunner{})
	defer ts.Close()

	cases := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"empty object", `{}`},
		{"both fields", `{"query":"x","params":{"location":"y"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != 400 {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHealthAndInfoEndpoints(t *testing.T) {
	ts := newTestServer(&fakeRunner{})
	defer ts.Close()

	for _, path := range []string{"/healthz", "/health", "/", "/api/workflow"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}
