package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
	"github.com/pthm-cable/silentrun/systems"
)

// VesselSpawn describes a vessel to place in the world.
type VesselSpawn struct {
	Class   string
	Team    int
	Role    components.Role
	Player  bool // operator-controlled, no AI state
	Pos     r3.Vec
	Heading float64 // radians
	Leader  uint32  // escort leader, 0 for none
}

// vessel holds component pointers for one vessel during a tick.
// Pointers stay valid until a vessel entity is created or removed.
type vessel struct {
	entity ecs.Entity
	id     *components.Identity
	kin    *components.Kinematics
	hull   *components.Hull
	sig    *components.Signature
	sensor *components.Sensor
	fc     *components.FireControl
	ai     *components.AIState // nil for the player
	spec   *config.ClassSpec
}

// SpawnVessel creates a vessel and returns its ID. Unknown classes fall back
// to the default class.
func (g *Simulation) SpawnVessel(s VesselSpawn) uint32 {
	spec := g.cfg.Class(s.Class)
	id := g.newID()

	ident := components.Identity{ID: id, Class: spec.Name, Team: s.Team, Role: s.Role, Player: s.Player}
	kin := components.Kinematics{Pos: s.Pos, Heading: systems.NormalizeHeading(s.Heading), TargetDepth: -s.Pos.Y}
	hull := components.NewHull(spec)
	sig := components.Signature{}
	sensor := components.Sensor{}
	fc := components.NewFireControl(spec)

	if s.Player {
		if g.playerID != 0 {
			slog.Warn("player vessel already spawned, replacing", "old", g.playerID, "new", id)
		}
		ident.Team = PlayerTeam
		g.entities[id] = g.vesselMap.NewEntity(&ident, &kin, &hull, &sig, &sensor, &fc)
		g.playerID = id
	} else {
		ai := components.AIState{
			Mode:      components.AIPatrolling,
			Tunables:  spec.AI,
			Route:     systems.BuildRoute(s.Role, s.Pos, kin.Heading),
			OrbitSign: 1,
		}
		if g.rng.Float64() < 0.5 {
			ai.OrbitSign = -1
		}
		if s.Leader != 0 {
			ai.LeaderID = s.Leader
			ai.HasLeader = true
			ai.FormationOffset = systems.FormationOffset(g.escortsOf(s.Leader))
			ai.Mode = components.AIEscorting
		}
		g.entities[id] = g.aiVesselMap.NewEntity(&ident, &kin, &hull, &sig, &sensor, &fc, &ai)
	}

	g.lifetime.Register(id, spec.Name, ident.Team, s.Player, g.tick)
	return id
}

// escortsOf counts vessels already escorting leader.
func (g *Simulation) escortsOf(leader uint32) int {
	n := 0
	for _, e := range g.entities {
		if g.aiMap.Has(e) {
			if ai := g.aiMap.Get(e); ai.HasLeader && ai.LeaderID == leader {
				n++
			}
		}
	}
	return n
}

// SpawnMine places a neutral mine and returns its ID.
func (g *Simulation) SpawnMine(pos r3.Vec) uint32 {
	cm := g.countermeasures.Mine(g.newID(), pos)
	g.cmMap.NewEntity(&cm)
	return cm.ID
}

// spawnScenario places the configured player, AI vessels and mines.
func (g *Simulation) spawnScenario() {
	sc := g.cfg.Scenario
	g.SpawnVessel(VesselSpawn{
		Class:   sc.PlayerClass,
		Player:  true,
		Pos:     vecFrom(sc.PlayerPosition),
		Heading: sc.PlayerHeadingDeg * math.Pi / 180,
	})

	ids := make([]uint32, len(sc.Vessels))
	for i, sv := range sc.Vessels {
		role, ok := components.ParseRole(sv.Role)
		if !ok {
			slog.Warn("unknown vessel role, using perimeter", "role", sv.Role, "index", i)
		}
		spawn := VesselSpawn{
			Class:   sv.Class,
			Team:    sv.Team,
			Role:    role,
			Pos:     vecFrom(sv.Position),
			Heading: sv.HeadingDeg * math.Pi / 180,
		}
		if sv.Leader != nil && *sv.Leader >= 0 && *sv.Leader < i {
			spawn.Leader = ids[*sv.Leader]
		}
		ids[i] = g.SpawnVessel(spawn)
	}

	for _, m := range sc.Mines {
		g.SpawnMine(vecFrom(m))
	}

	slog.Info("scenario spawned",
		"vessels", len(g.entities),
		"mines", len(sc.Mines),
		"player", g.playerID,
	)
}

// launch fires a released slot's weapon from v.
func (g *Simulation) launch(v vessel, t components.TorpedoType, target uint32, hasTarget bool) components.Torpedo {
	torp := g.guidance.Launch(g.newID(), t, v.id.ID, v.id.Team, target, hasTarget, v.kin.Pos, v.kin.Forward())
	g.torpMap.NewEntity(&torp)
	return torp
}

// dropCountermeasure adds a knuckle or noisemaker to the world.
func (g *Simulation) dropCountermeasure(cm components.Countermeasure) {
	g.cmMap.NewEntity(&cm)
}

// collectVessels gathers every vessel sorted by ID, so tick order never
// depends on archetype layout.
func (g *Simulation) collectVessels() {
	g.vessels = g.vessels[:0]
	query := g.vesselFilter.Query()
	for query.Next() {
		e := query.Entity()
		id, kin, hull, sig, sensor, fc := query.Get()
		g.vessels = append(g.vessels, vessel{entity: e, id: id, kin: kin, hull: hull, sig: sig, sensor: sensor, fc: fc})
	}
	for i := range g.vessels {
		v := &g.vessels[i]
		if g.aiMap.Has(v.entity) {
			v.ai = g.aiMap.Get(v.entity)
		}
		v.spec = g.classSpec(v.id.Class)
	}
	sortVessels(g.vessels)
}

// vesselByID returns component pointers for one vessel.
func (g *Simulation) vesselByID(id uint32) (vessel, bool) {
	e, ok := g.entities[id]
	if !ok || !g.world.Alive(e) {
		return vessel{}, false
	}
	ident, kin, hull, sig, sensor, fc := g.vesselMap.Get(e)
	v := vessel{entity: e, id: ident, kin: kin, hull: hull, sig: sig, sensor: sensor, fc: fc, spec: g.classSpec(ident.Class)}
	if g.aiMap.Has(e) {
		v.ai = g.aiMap.Get(e)
	}
	return v, true
}

// classSpec resolves a class already normalized at spawn.
func (g *Simulation) classSpec(name string) *config.ClassSpec {
	idx, ok := g.cfg.Derived.ClassIndex[name]
	if !ok {
		idx = g.cfg.Derived.Default
	}
	return &g.cfg.Derived.Classes[idx]
}

func vecFrom(v []float64) r3.Vec {
	var out r3.Vec
	if len(v) > 0 {
		out.X = v[0]
	}
	if len(v) > 1 {
		out.Y = v[1]
	}
	if len(v) > 2 {
		out.Z = v[2]
	}
	return out
}
