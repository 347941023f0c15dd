package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/silentrun/config"
	"github.com/pthm-cable/silentrun/events"
	"github.com/pthm-cable/silentrun/game"
	"github.com/pthm-cable/silentrun/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logEvents := flag.Bool("log-events", false, "Log every audio event via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	restore := flag.String("restore", "", "Snapshot file to resume from")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until the player is destroyed)")
	playerSpeed := flag.Float64("player-speed", 5, "Player helm speed in knots")
	playerDepth := flag.Float64("player-depth", 150, "Player helm depth in metres")
	towed := flag.Bool("towed-array", false, "Deploy the player's towed array")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	var sink events.Sink
	if *logEvents {
		sink = events.SinkFunc(func(e events.Event) {
			slog.Debug("event", "type", e.Type.String(), "tick", e.Tick, "source", e.VesselID, "detail", e.Detail)
		})
	}

	opts := game.Options{
		Seed:        rngSeed,
		Sink:        sink,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
		LogStats:    *logStats,
		Empty:       *restore != "",
	}
	sim := game.New(cfg, opts)
	defer func() {
		if err := sim.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	if *restore != "" {
		snap, err := telemetry.LoadSnapshot(*restore)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		if err := sim.Restore(snap); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", *maxTicks,
		"player", sim.PlayerID(),
	)

	sim.Helm(*playerSpeed, 0, *playerDepth)
	sim.SetTowedArray(*towed)

	start := time.Now()
	for {
		sim.Step(cfg.Physics.DT)

		if *maxTicks > 0 && int(sim.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", sim.Tick())
			break
		}
		if !sim.PlayerAlive() {
			slog.Info("player destroyed", "tick", sim.Tick(), "sim_time", sim.SimTime())
			break
		}
	}

	for _, r := range sim.Records() {
		slog.Info("vessel record",
			"vessel", r.VesselID,
			"class", r.Class,
			"team", r.Team,
			"fired", r.TorpedoesFired,
			"hits", r.Hits,
			"kills", r.Kills,
			"destroyed", r.Destroyed,
		)
	}
	slog.Info("simulation finished", "ticks", sim.Tick(), "wall_time", time.Since(start).String())
}
