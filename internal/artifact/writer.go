// Package artifact persists finished search results as timestamped JSON
// files for later inspection.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hotel_scout/internal/pipeline"
)

type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "output"
	}
	return &Writer{dir: dir, now: time.Now}
}

// SetClock replaces the timestamp source used in file names.
func (w *Writer) SetClock(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

// Write stores the response under
// <dir>/hotel_search_<location>_<YYYYMMDD_HHMMSS>.json and returns the path.
// Spaces in the location become underscores so the name stays shell-friendly.
func (w *Writer) Write(resp pipeline.SearchResponse) (string, error) {
	location := "unknown"
	if resp.Data != nil && resp.Data.SearchParams.Location != "" {
		location = resp.Data.SearchParams.Location
	}
	location = strings.ReplaceAll(strings.TrimSpace(location), " ", "_")

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("hotel_search_%s_%s.json", location, w.now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal response: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
