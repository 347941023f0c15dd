package systems

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// TorpedoOutcome is what happened to a torpedo on one tick.
type TorpedoOutcome uint8

const (
	TorpedoRunning TorpedoOutcome = iota
	TorpedoHit                    // fused on its target
	TorpedoRemoved                // self-destruct finished, left the map or struck the seabed
)

// TorpedoResult reports a torpedo's tick.
type TorpedoResult struct {
	Outcome        TorpedoOutcome
	TargetID       uint32
	Damage         float64
	SelfDestructed bool // entered self-destruct this tick
	Activated      bool // drone went active this tick
	Reason         string
}

// TorpedoGuidance steers torpedoes and resolves fusing, safety arcs and removal.
type TorpedoGuidance struct {
	specs      [components.TorpedoTypeCount]config.TorpedoConfig
	knotsToMPS float64
}

// NewTorpedoGuidance creates guidance for the configured torpedo types.
func NewTorpedoGuidance(specs [4]config.TorpedoConfig, knotsToMPS float64) TorpedoGuidance {
	return TorpedoGuidance{specs: specs, knotsToMPS: knotsToMPS}
}

// Spec returns the configuration of a torpedo type.
func (g TorpedoGuidance) Spec(t components.TorpedoType) config.TorpedoConfig {
	return g.specs[t]
}

// Launch builds a new torpedo leaving pos along dir.
// Guided types start in approach at reduced speed; drones start in transit.
func (g TorpedoGuidance) Launch(id uint32, t components.TorpedoType, owner uint32, team int, target uint32, hasTarget bool, pos, dir r3.Vec) components.Torpedo {
	spec := g.specs[t]
	dir = unitOr(dir, r3.Vec{Z: 1})
	torp := components.Torpedo{
		ID:        id,
		Type:      t,
		OwnerID:   owner,
		Team:      team,
		TargetID:  target,
		HasTarget: hasTarget && t.Guided(),
		LaunchPos: pos,
		LaunchDir: dir,
		Pos:       pos,
		Dir:       dir,
	}
	if t.Guided() {
		torp.Mode = components.TorpApproach
		torp.Speed = spec.ApproachFraction * spec.MaxSpeed * g.knotsToMPS
	} else {
		torp.Mode = components.TorpTransit
		torp.Speed = spec.MaxSpeed * g.knotsToMPS
	}
	return torp
}

// Update advances one torpedo by dt.
func (g TorpedoGuidance) Update(t *components.Torpedo, lookup TargetLookup, bounds Bounds, terrain Terrain, dt float64) TorpedoResult {
	if t.Type.Guided() {
		return g.updateGuided(t, lookup, bounds, terrain, dt)
	}
	return g.updateDrone(t, bounds, terrain, dt)
}

func (g TorpedoGuidance) updateGuided(t *components.Torpedo, lookup TargetLookup, bounds Bounds, terrain Terrain, dt float64) TorpedoResult {
	spec := g.specs[t.Type]
	res := TorpedoResult{TargetID: t.TargetID}

	if t.Mode == components.TorpSelfDestruct {
		t.Timer += dt
		if t.Timer >= spec.SelfDestructDelay {
			res.Outcome = TorpedoRemoved
			res.Reason = "self_destruct"
		}
		return res
	}

	var target Target
	ok := false
	if t.HasTarget && lookup != nil {
		target, ok = lookup.Lookup(t.TargetID)
	}
	if !ok {
		slog.Warn("torpedo lost its target, self-destructing", "torpedo", t.ID, "target", t.TargetID)
		return g.selfDestruct(t, res, "target_lost")
	}

	tpos := target.Position()
	toTarget := r3.Sub(tpos, t.Pos)
	if t.Traveled >= spec.ArmingDistance && g.outsideSafetyArc(t, toTarget, spec) {
		return g.selfDestruct(t, res, "safety_arc")
	}

	d := r3.Norm(toTarget)
	if t.Mode == components.TorpApproach && d <= spec.SwitchDistance {
		t.Mode = components.TorpTerminal
	}
	if t.Mode == components.TorpTerminal {
		t.Speed = spec.MaxSpeed * g.knotsToMPS
	} else {
		t.Speed = spec.ApproachFraction * spec.MaxSpeed * g.knotsToMPS
	}

	t.Dir = turnToward(t.Dir, unitOr(toTarget, t.Dir), deg2rad(spec.TurnRate)*dt)
	step := t.Speed * dt
	t.Pos = r3.Add(t.Pos, r3.Scale(step, t.Dir))
	t.Traveled += step

	if t.Traveled >= spec.ArmingDistance && distance(t.Pos, tpos) <= spec.FuseRadius {
		res.Outcome = TorpedoHit
		res.Damage = spec.Damage
		return res
	}
	if !bounds.Contains(t.Pos) {
		res.Outcome = TorpedoRemoved
		res.Reason = "out_of_bounds"
		return res
	}
	if terrain != nil && -t.Pos.Y >= terrain.SeabedDepth(t.Pos.X, t.Pos.Z) {
		res.Outcome = TorpedoRemoved
		res.Reason = "seabed"
		return res
	}
	if spec.MaxRange > 0 && t.Traveled > spec.MaxRange {
		return g.selfDestruct(t, res, "max_range")
	}
	return res
}

// outsideSafetyArc reports whether the horizontal bearing to the target has
// swung beyond the safety arc of the launch heading.
func (g TorpedoGuidance) outsideSafetyArc(t *components.Torpedo, toTarget r3.Vec, spec config.TorpedoConfig) bool {
	flat := r3.Vec{X: toTarget.X, Z: toTarget.Z}
	launch := r3.Vec{X: t.LaunchDir.X, Z: t.LaunchDir.Z}
	if r3.Norm(flat) < 1e-9 || r3.Norm(launch) < 1e-9 {
		return false
	}
	return angleOff(r3.Unit(flat), r3.Unit(launch)) > deg2rad(spec.SafetyArcDeg)
}

func (g TorpedoGuidance) selfDestruct(t *components.Torpedo, res TorpedoResult, reason string) TorpedoResult {
	t.Mode = components.TorpSelfDestruct
	t.Timer = 0
	t.Speed = 0
	res.SelfDestructed = true
	res.Reason = reason
	return res
}

func (g TorpedoGuidance) updateDrone(t *components.Torpedo, bounds Bounds, terrain Terrain, dt float64) TorpedoResult {
	spec := g.specs[t.Type]
	var res TorpedoResult

	step := t.Speed * dt
	t.Pos = r3.Add(t.Pos, r3.Scale(step, t.LaunchDir))
	t.Traveled += step

	if t.Mode == components.TorpTransit && t.Traveled >= spec.ActivationDistance {
		t.Mode = components.TorpActive
		res.Activated = true
	}
	switch {
	case !bounds.Contains(t.Pos):
		res.Outcome = TorpedoRemoved
		res.Reason = "out_of_bounds"
	case terrain != nil && -t.Pos.Y >= terrain.SeabedDepth(t.Pos.X, t.Pos.Z):
		res.Outcome = TorpedoRemoved
		res.Reason = "seabed"
	case spec.MaxRange > 0 && t.Traveled > spec.MaxRange:
		res.Outcome = TorpedoRemoved
		res.Reason = "max_range"
	}
	return res
}

// turnToward rotates unit vector from toward unit vector to by at most maxAngle radians.
func turnToward(from, to r3.Vec, maxAngle float64) r3.Vec {
	a := angleOff(from, to)
	if a <= maxAngle || a < 1e-9 {
		return to
	}
	w := r3.Sub(to, r3.Scale(r3.Dot(from, to), from))
	if r3.Norm(w) < 1e-9 {
		// Opposite vectors: turn about the vertical axis.
		w = r3.Vec{X: from.Z, Z: -from.X}
		if r3.Norm(w) < 1e-9 {
			return to
		}
	}
	w = r3.Unit(w)
	return r3.Add(r3.Scale(math.Cos(maxAngle), from), r3.Scale(math.Sin(maxAngle), w))
}
