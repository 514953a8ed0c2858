package perplexity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hotel_scout/internal/adapters/perplexity"
)

func TestClient_Search_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			var body struct {
				Query      string `json:"query"`
				MaxResults int    `json:"max_results"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Query != "hotels in Jaipur" || body.MaxResults != 10 {
				t.Errorf("unexpected request body: %+v", body)
			}
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"title": "Hotel A", "url": "https://a.example", "snippet": "from 2000 INR"},
				},
			})
		}
	}))
	defer ts.Close()

	cl, err := perplexity.New(ts.URL, "test-key", 10, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.Search(ctx, "hotels in Jaipur")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Hotel A" || got[0].URL != "https://a.example" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Search_ExhaustedRetriesYieldEmptySlice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer ts.Close()

	cl, err := perplexity.New(ts.URL, "test-key", 10, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got, err := cl.Search(ctx, "anything")
	if err != nil {
		t.Fatalf("transient exhaustion must not error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestClient_Search_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	}))
	defer ts.Close()

	cl, err := perplexity.New(ts.URL, "bad-key", 10, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.Search(ctx, "anything")
	if !errors.Is(err, perplexity.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := perplexity.New("", "", 10, 5); err == nil {
		t.Fatal("expected error for missing key")
	}
}
