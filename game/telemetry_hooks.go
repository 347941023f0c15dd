package game

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/telemetry"
	"github.com/pthm-cable/silentrun/terrain"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Simulation) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWindow())
	perfStats := g.perfCollector.Stats()

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.runLog != nil {
		if err := g.runLog.Window(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.runLog.Perf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.opts.LogStats {
			bm.LogBookmark()
		}
		if g.runLog != nil {
			if err := g.runLog.Bookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if g.opts.SnapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleWindow collects end-of-window state from live vessels.
func (g *Simulation) sampleWindow() telemetry.WindowSample {
	sample := telemetry.WindowSample{PlayerAlive: g.PlayerAlive()}

	query := g.vesselFilter.Query()
	for query.Next() {
		_, _, hull, sig, _, _ := query.Get()
		if hull.Destroyed {
			continue
		}
		sample.VesselsAlive++
		sample.Signatures = append(sample.Signatures, sig.Current)
		sample.HullFractions = append(sample.HullFractions, hull.Health())
	}

	torps := g.torpFilter.Query()
	for torps.Next() {
		sample.TorpedoesInWater++
	}
	return sample
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.Snapshot()
	snapshot.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snapshot, g.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot captures the complete state between ticks. Queued commands are not included.
func (g *Simulation) Snapshot() *telemetry.Snapshot {
	rng, err := g.pcg.MarshalBinary()
	if err != nil {
		slog.Error("failed to marshal rng state", "error", err)
	}
	s := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     g.opts.Seed,
		RNG:      rng,
		Tick:     g.tick,
		SimTime:  g.simTime,
		NextID:   g.nextID,
		PlayerID: g.playerID,
		Records:  g.lifetime.Records(),
	}

	g.collectVessels()
	for _, v := range g.vessels {
		state := telemetry.VesselState{
			Identity:    *v.id,
			Kinematics:  *v.kin,
			Hull:        *v.hull,
			Signature:   *v.sig,
			Sensor:      *v.sensor,
			FireControl: *v.fc,
		}
		state.Sensor.Contacts = slices.Clone(v.sensor.Contacts)
		state.FireControl.Slots = slices.Clone(v.fc.Slots)
		if v.ai != nil {
			ai := *v.ai
			ai.Route.Waypoints = slices.Clone(v.ai.Route.Waypoints)
			state.AI = &ai
		}
		s.Vessels = append(s.Vessels, state)
	}
	g.vessels = g.vessels[:0]

	s.Torpedoes = g.Torpedoes()
	s.Countermeasures = g.Countermeasures()
	return s
}

// Restore replaces the whole simulation state with a snapshot. Terrain owned
// by the simulation is regenerated from the snapshot seed.
func (g *Simulation) Restore(s *telemetry.Snapshot) error {
	if s.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, telemetry.SnapshotVersion)
	}
	if err := g.pcg.UnmarshalBinary(s.RNG); err != nil {
		return fmt.Errorf("restore rng: %w", err)
	}

	g.resetWorld()
	if g.opts.Terrain == nil && s.Seed != g.opts.Seed {
		g.terrain = terrain.New(g.cfg.Terrain, g.cfg.World.MaxDepth, s.Seed)
	}
	g.opts.Seed = s.Seed
	g.tick = s.Tick
	g.simTime = s.SimTime
	g.nextID = s.NextID
	g.playerID = s.PlayerID

	vessels := slices.Clone(s.Vessels)
	slices.SortFunc(vessels, func(a, b telemetry.VesselState) int {
		return cmp.Compare(a.Identity.ID, b.Identity.ID)
	})
	for _, vs := range vessels {
		ident, kin, hull, sig, sensor, fc := vs.Identity, vs.Kinematics, vs.Hull, vs.Signature, vs.Sensor, vs.FireControl
		sensor.Contacts = slices.Clone(vs.Sensor.Contacts)
		fc.Slots = slices.Clone(vs.FireControl.Slots)
		if vs.AI == nil {
			g.entities[ident.ID] = g.vesselMap.NewEntity(&ident, &kin, &hull, &sig, &sensor, &fc)
			continue
		}
		ai := *vs.AI
		ai.Route.Waypoints = slices.Clone(vs.AI.Route.Waypoints)
		g.entities[ident.ID] = g.aiVesselMap.NewEntity(&ident, &kin, &hull, &sig, &sensor, &fc, &ai)
	}

	torps := slices.Clone(s.Torpedoes)
	slices.SortFunc(torps, func(a, b components.Torpedo) int { return cmp.Compare(a.ID, b.ID) })
	for i := range torps {
		g.torpMap.NewEntity(&torps[i])
	}
	cms := slices.Clone(s.Countermeasures)
	slices.SortFunc(cms, func(a, b components.Countermeasure) int { return cmp.Compare(a.ID, b.ID) })
	for i := range cms {
		g.cmMap.NewEntity(&cms[i])
	}

	g.lifetime.Restore(s.Records)
	g.commands = nil
	g.refused = nil
	g.hits = g.hits[:0]
	g.vessels = g.vessels[:0]

	slog.Info("snapshot restored",
		"tick", g.tick,
		"vessels", len(vessels),
		"torpedoes", len(torps),
		"countermeasures", len(cms),
	)
	return nil
}
