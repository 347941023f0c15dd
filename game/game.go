// Package game owns the ECS world and drives the combat simulation tick.
package game

import (
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
	"github.com/pthm-cable/silentrun/events"
	"github.com/pthm-cable/silentrun/systems"
	"github.com/pthm-cable/silentrun/telemetry"
	"github.com/pthm-cable/silentrun/terrain"
)

// PlayerTeam is the team of the operator's vessel.
const PlayerTeam = 1

// Options configures a Simulation.
type Options struct {
	Seed        int64
	Terrain     systems.Terrain // nil uses the procedural field for Seed
	Sink        events.Sink     // audio sink, may be nil
	OutputDir   string          // CSV/JSON output, empty disables
	SnapshotDir string          // snapshots on bookmarks, empty disables
	LogStats    bool
	Empty       bool // skip the configured scenario
}

// Simulation holds the complete combat state.
type Simulation struct {
	cfg  *config.Config
	opts Options

	world *ecs.World
	pcg   *rand.PCG
	rng   *rand.Rand

	// Vessels carry all six; AI vessels add AIState.
	vesselMap *ecs.Map6[
		components.Identity,
		components.Kinematics,
		components.Hull,
		components.Signature,
		components.Sensor,
		components.FireControl,
	]
	aiVesselMap *ecs.Map7[
		components.Identity,
		components.Kinematics,
		components.Hull,
		components.Signature,
		components.Sensor,
		components.FireControl,
		components.AIState,
	]
	vesselFilter *ecs.Filter6[
		components.Identity,
		components.Kinematics,
		components.Hull,
		components.Signature,
		components.Sensor,
		components.FireControl,
	]
	aiMap      *ecs.Map[components.AIState]
	torpMap    *ecs.Map1[components.Torpedo]
	torpFilter *ecs.Filter1[components.Torpedo]
	cmMap      *ecs.Map1[components.Countermeasure]
	cmFilter   *ecs.Filter1[components.Countermeasure]

	// Systems, each built from its config section
	signature       systems.SignatureModel
	detection       *systems.DetectionEngine
	damage          systems.DamageModel
	ai              *systems.AIController
	lock            systems.LockSystem
	guidance        systems.TorpedoGuidance
	countermeasures systems.Countermeasures
	armory          systems.Armory
	motion          systems.Motion
	registry        *systems.SystemRegistry
	terrain         systems.Terrain
	bounds          systems.Bounds

	bus      *events.Bus
	commands []command
	refused  []error

	// State
	tick     int32
	simTime  float64
	nextID   uint32
	playerID uint32
	entities map[uint32]ecs.Entity // vessel ID -> entity

	// Per-tick scratch
	vessels []vessel
	targets *targetTable
	hits    []pendingHit

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetime         *telemetry.LifetimeTracker
	runLog           *telemetry.RunLog
}

// New creates a simulation from cfg. Unless opts.Empty is set, the configured
// scenario is spawned.
func New(cfg *config.Config, opts Options) *Simulation {
	g := &Simulation{
		cfg:      cfg,
		opts:     opts,
		pcg:      rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15),
		nextID:   1,
		entities: make(map[uint32]ecs.Entity),
		targets:  newTargetTable(),
	}
	g.rng = rand.New(g.pcg)
	g.resetWorld()

	g.bounds = systems.Bounds{HalfWidth: cfg.World.HalfWidth, MaxDepth: cfg.World.MaxDepth}
	g.terrain = opts.Terrain
	if g.terrain == nil {
		g.terrain = terrain.New(cfg.Terrain, cfg.World.MaxDepth, opts.Seed)
	}

	g.signature = systems.NewSignatureModel(cfg.Signature)
	g.detection = systems.NewDetectionEngine(cfg.Sonar, cfg.World.HalfWidth, cfg.World.GridCellSize)
	g.damage = systems.NewDamageModel(cfg.Damage, cfg.Derived.HitTable)
	g.ai = systems.NewAIController(cfg.AI, g.targets)
	g.lock = systems.NewLockSystem(cfg.Lock, cfg.Derived.Torpedoes, cfg.Sonar.DefaultPingCadence)
	g.guidance = systems.NewTorpedoGuidance(cfg.Derived.Torpedoes, cfg.Physics.KnotsToMPS)
	g.countermeasures = systems.NewCountermeasures(cfg.Countermeasures)
	g.armory = systems.NewArmory(cfg.Derived.Torpedoes)
	g.motion = systems.NewMotion(cfg.Physics, g.bounds)
	g.registry = systems.NewSystemRegistry()

	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow, g.registry.IDs())
	g.bookmarkDetector = telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize)
	g.lifetime = telemetry.NewLifetimeTracker()
	g.bus = events.NewBus(telemetry.Tee{opts.Sink, g.collector})

	if opts.OutputDir != "" {
		om, err := telemetry.NewRunLog(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create run log", "error", err)
		} else {
			g.runLog = om
			if err := om.Config(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	if !opts.Empty {
		g.spawnScenario()
	}
	return g
}

// resetWorld discards every entity and rebinds the mappers to a fresh world.
func (g *Simulation) resetWorld() {
	world := ecs.NewWorld()
	g.world = world
	g.vesselMap = ecs.NewMap6[
		components.Identity,
		components.Kinematics,
		components.Hull,
		components.Signature,
		components.Sensor,
		components.FireControl,
	](world)
	g.aiVesselMap = ecs.NewMap7[
		components.Identity,
		components.Kinematics,
		components.Hull,
		components.Signature,
		components.Sensor,
		components.FireControl,
		components.AIState,
	](world)
	g.vesselFilter = ecs.NewFilter6[
		components.Identity,
		components.Kinematics,
		components.Hull,
		components.Signature,
		components.Sensor,
		components.FireControl,
	](world)
	g.aiMap = ecs.NewMap[components.AIState](world)
	g.torpMap = ecs.NewMap1[components.Torpedo](world)
	g.torpFilter = ecs.NewFilter1[components.Torpedo](world)
	g.cmMap = ecs.NewMap1[components.Countermeasure](world)
	g.cmFilter = ecs.NewFilter1[components.Countermeasure](world)
	g.entities = make(map[uint32]ecs.Entity)
}

// Close writes the vessel records and closes telemetry output.
func (g *Simulation) Close() error {
	if g.runLog == nil {
		return nil
	}
	if err := g.runLog.Records(g.lifetime.Records()); err != nil {
		slog.Error("failed to write vessel records", "error", err)
	}
	return g.runLog.Close()
}

// Tick returns the number of completed ticks.
func (g *Simulation) Tick() int32 {
	return g.tick
}

// SimTime returns elapsed simulation seconds.
func (g *Simulation) SimTime() float64 {
	return g.simTime
}

// PlayerID returns the operator's vessel ID, 0 if none was spawned.
func (g *Simulation) PlayerID() uint32 {
	return g.playerID
}

// PlayerAlive reports whether the operator's vessel is still afloat.
func (g *Simulation) PlayerAlive() bool {
	_, ok := g.entities[g.playerID]
	return g.playerID != 0 && ok
}

// Records returns every vessel's combat record.
func (g *Simulation) Records() []telemetry.VesselRecord {
	return g.lifetime.Records()
}

func (g *Simulation) newID() uint32 {
	id := g.nextID
	g.nextID++
	return id
}
