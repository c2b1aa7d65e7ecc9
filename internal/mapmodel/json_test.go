package mapmodel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")

	doc := `{
		"stations": [
			{"id": 1, "types": ["taxi"]},
			{"id": 2, "types": ["taxi", "bus"]}
		],
		"connections": [
			{"from": 1, "to": 2, "mode": "taxi"}
		],
		"rounds": [
			{"index": 0, "reveal_x": false},
			{"index": 1, "reveal_x": true}
		]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.AllStations()) != 2 {
		t.Errorf("expected 2 stations, got %d", len(m.AllStations()))
	}
	if !m.HasEdge(1, 2, DetectiveTaxi.Matches) {
		t.Error("expected a taxi edge between 1 and 2")
	}
	if m.RoundCount() != 2 {
		t.Errorf("expected 2 rounds, got %d", m.RoundCount())
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/map.json")
	if err == nil {
		t.Error("expected an error loading a nonexistent file")
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Error("expected an error loading invalid JSON")
	}
}
