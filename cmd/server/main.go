// Command server runs the Scotland-Yard-style pursuit game server: the
// read-only map HTTP endpoints and the websocket game protocol (spec.md
// §6.4), both behind a single cobra command following the CLI pattern
// Seednode-partybox uses for its server binary.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/scotlandyard/server/internal/applog"
	"github.com/scotlandyard/server/internal/config"
	"github.com/scotlandyard/server/internal/dispatcher"
	"github.com/scotlandyard/server/internal/httpapi"
	"github.com/scotlandyard/server/internal/mapmodel"
	"github.com/scotlandyard/server/internal/metrics"
	"github.com/scotlandyard/server/internal/random"
	"github.com/scotlandyard/server/internal/registry"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "server",
		Short: "Run the Scotland Yard game server",
		RunE:  run,
	}
	root.Flags().String("port", "", "port to listen on (default 8081)")
	root.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	root.Flags().String("map-path", "", "path to a JSON map file (stations, connections, rounds)")
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applog.Configure(cfg.LogLevel)

	m, err := loadMap(cfg.MapPath)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}

	met := metrics.New()

	source := registry.Source{
		Map:           m,
		Rules:         cfg.Rules.ToRules(),
		Rand:          random.New(),
		MisterXPool:   defaultMisterXPool(m),
		DetectivePool: defaultDetectivePool(m),
	}
	reg := registry.New(source)
	disp := dispatcher.New(reg, met, cfg.OutboundBufferSize)

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.New(m, met))
	mux.HandleFunc("/ws", disp.HandleWebSocket)

	port := cfg.Port
	if port == "" {
		port = "8081"
	}
	addr := "0.0.0.0:" + port
	applog.L().Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// loadMap reads the map from mapPath, or falls back to a small built-in
// fixture for local runs without a curated map file.
func loadMap(mapPath string) (*mapmodel.Map, error) {
	if mapPath != "" {
		return mapmodel.LoadFile(mapPath)
	}
	return devFixtureMap(), nil
}

func defaultMisterXPool(m *mapmodel.Map) []uint8 {
	stations := m.AllStations()
	if len(stations) == 0 {
		return nil
	}
	return []uint8{stations[0].ID}
}

func defaultDetectivePool(m *mapmodel.Map) []uint8 {
	stations := m.AllStations()
	if len(stations) <= 1 {
		return nil
	}
	ids := make([]uint8, 0, len(stations)-1)
	for _, s := range stations[1:] {
		ids = append(ids, s.ID)
	}
	return ids
}

// devFixtureMap is a tiny placeholder map for local runs without a curated
// map file; production deployments always set --map-path.
func devFixtureMap() *mapmodel.Map {
	stations := []mapmodel.Station{
		{ID: 1, Types: []mapmodel.TransportMode{mapmodel.Taxi}},
		{ID: 2, Types: []mapmodel.TransportMode{mapmodel.Taxi, mapmodel.Bus}},
		{ID: 3, Types: []mapmodel.TransportMode{mapmodel.Bus}},
	}
	edges := []mapmodel.Edge{
		{From: 1, To: 2, Mode: mapmodel.Taxi},
		{From: 2, To: 3, Mode: mapmodel.Bus},
	}
	return mapmodel.New(stations, edges, mapmodel.DefaultRounds())
}
