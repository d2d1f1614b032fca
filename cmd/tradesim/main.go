// Command tradesim runs the trade-economy simulation daemon: it loads the
// world from the SQLite store, drives the economy and caravan clocks, and
// serves the editor/operator API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mezenin/tradeway/internal/api"
	"github.com/mezenin/tradeway/internal/config"
	"github.com/mezenin/tradeway/internal/engine"
	"github.com/mezenin/tradeway/internal/persistence"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// ── Store ─────────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755)
	store, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open world store", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("world store opened", "path", cfg.Database.Path)

	w, err := store.LoadWorld()
	if err != nil {
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	}

	var population int64
	for _, c := range w.Cities {
		population += c.Population
	}
	slog.Info("world loaded",
		"cities", len(w.Cities),
		"countries", len(w.Countries),
		"routes", len(w.Routes),
		"items", len(w.Items),
		"transport_types", len(w.Transports),
		"economy_rules", len(w.Rules),
		"population", humanize.Comma(population),
	)

	// ── Simulation ────────────────────────────────────────────────────
	hub := api.NewHub()
	go hub.Run()

	sim := engine.NewSimulation(w, cfg.Sim.Seed, hub, store)
	sim.SpawnAllRoutes()

	eng := engine.NewEngine(sim)
	eng.Interval = time.Duration(cfg.Sim.FrameMs) * time.Millisecond
	eng.SetSpeed(cfg.Sim.Speed)

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		Store:    store,
		Hub:      hub,
		Port:     cfg.Server.Port,
		AdminKey: cfg.Server.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("Tradeway is running: %d cities, %d routes, %d caravans.\n",
		len(w.Cities), len(w.Routes), sim.UnitCount())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)

	eng.Run()

	// Final flush on shutdown.
	sim.Mu.Lock()
	snapshot := sim.Store.Snapshot()
	gameTime := sim.GameTime
	sim.Mu.Unlock()

	if err := store.SaveAllInventory(snapshot); err != nil {
		slog.Error("final inventory flush failed", "error", err)
	}
	if err := store.SetMeta("last_game_time", gameTime.String()); err != nil {
		slog.Error("failed to store shutdown metadata", "error", err)
	}

	fmt.Println("Simulation stopped. Inventory saved.")
}
