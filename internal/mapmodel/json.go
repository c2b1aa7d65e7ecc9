package mapmodel

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileDocument is the on-disk shape for a JSON map file: stations, edges and
// rounds verbatim, the same shapes the /map/* HTTP endpoints serve.
type fileDocument struct {
	Stations []Station `json:"stations"`
	Edges    []Edge    `json:"connections"`
	Rounds   []Round   `json:"rounds"`
}

// LoadFile reads a Map from a JSON file (spec.md §4.1's map data provider,
// read-only and loaded once at startup).
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapmodel: read %s: %w", path, err)
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mapmodel: parse %s: %w", path, err)
	}
	return New(doc.Stations, doc.Edges, doc.Rounds), nil
}

// DefaultRounds builds the production 24-round schedule with reveal rounds
// at indices {3, 8, 13, 18, 24} one-based (spec.md §6.1/§6.3), i.e. zero-based
// indices {2, 7, 12, 17, 23}.
func DefaultRounds() []Round {
	reveal := map[int]bool{2: true, 7: true, 12: true, 17: true, 23: true}
	rounds := make([]Round, 24)
	for i := range rounds {
		rounds[i] = Round{Index: i, RevealX: reveal[i]}
	}
	return rounds
}
