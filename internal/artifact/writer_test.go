package artifact_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hotel_scout/internal/artifact"
	"hotel_scout/internal/domain"
	"hotel_scout/internal/pipeline"
)

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir)
	w.SetClock(func() time.Time { return time.Date(2025, 12, 16, 9, 30, 5, 0, time.UTC) })

	resp := pipeline.SearchResponse{
		Success: true,
		Data: &domain.HotelSearchResult{
			SearchParams: domain.SearchRequest{Location: "New Delhi"},
			Hotels:       []domain.Candidate{domain.NewCandidate("Hotel A")},
			Version:      1,
		},
	}
	path, err := w.Write(resp)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := filepath.Join(dir, "hotel_search_New_Delhi_20251216_093005.json")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var got pipeline.SearchResponse
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if !got.Success || got.Data == nil || got.Data.SearchParams.Location != "New Delhi" {
		t.Fatalf("unexpected artifact content: %+v", got)
	}
}

func TestWriter_Write_NoData(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir)
	w.SetClock(func() time.Time { return time.Date(2025, 12, 16, 9, 30, 5, 0, time.UTC) })

	msg := "Input parsing failed"
	path, err := w.Write(pipeline.SearchResponse{Success: false, Error: &msg})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if filepath.Base(path) != "hotel_search_unknown_20251216_093005.json" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}
}
