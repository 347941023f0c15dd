package systems

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

var (
	// ErrReinforceFloor is returned when a reinforce would drain an adjacent facing below the floor.
	ErrReinforceFloor = errors.New("reinforce would drop an adjacent facing below the safety floor")
	// ErrReinforceFull is returned when the facing has no room or nothing to double.
	ErrReinforceFull = errors.New("facing cannot be reinforced further")
)

// DamageResult describes what one hit did.
type DamageResult struct {
	Facing       components.Facing
	Absorbed     float64 // taken by armor
	Penetrating  float64 // passed through armor
	System       components.SystemKind
	SystemDamage float64
	HullDamage   float64 // includes cascade from the chosen system
	Disabled     []components.SystemKind // systems knocked out by this hit
	Destroyed    bool                    // destroyed by this hit
}

// Performance holds multipliers derived from system health.
type Performance struct {
	Engine     float64 // scales max speed
	Navigation float64 // scales turn, pitch and roll rates
	Sensors    float64 // scales detection range
	Weapons    float64
}

// DamageModel applies directional hits and runs damage control.
type DamageModel struct {
	cfg      config.DamageConfig
	hitTable [components.FacingCount][components.SystemCount]float64
}

// NewDamageModel creates a damage model from config and a normalized hit table.
func NewDamageModel(cfg config.DamageConfig, hitTable [6][6]float64) DamageModel {
	return DamageModel{cfg: cfg, hitTable: hitTable}
}

// ApplyDirectionalDamage resolves one hit on a facing: fast armor, then slow
// armor, each absorbing at most the facing threshold; the remainder strikes a
// system drawn from the facing's hit table, which takes at most its own
// threshold with the excess cascading to the hull.
func (m DamageModel) ApplyDirectionalDamage(h *components.Hull, amount float64, facing components.Facing, rng Rand) DamageResult {
	res := DamageResult{Facing: facing}
	if amount <= 0 || h.Destroyed || facing >= components.FacingCount {
		return res
	}

	a := &h.Armor[facing]
	rem := amount

	fast := math.Min(rem, math.Min(a.Fast, a.Threshold))
	a.Fast = clamp(a.Fast-fast, 0, a.FastMax)
	rem -= fast

	slow := math.Min(rem, math.Min(a.Slow, a.Threshold))
	a.Slow = clamp(a.Slow-slow, 0, a.SlowMax)
	rem -= slow

	res.Absorbed = fast + slow
	res.Penetrating = rem
	if rem <= 0 {
		return res
	}

	res.System = m.sampleSystem(facing, rng)
	if res.System == components.SystemHull {
		res.HullDamage = m.damageHull(h, rem)
	} else {
		s := &h.Systems[res.System]
		wasUp := !s.Disabled()
		applied := math.Min(rem, math.Min(s.ThresholdFrac*s.Max, s.HP))
		s.HP = clamp(s.HP-applied, 0, s.Max)
		res.SystemDamage = applied
		if wasUp && s.Disabled() {
			res.Disabled = append(res.Disabled, res.System)
		}
		if excess := rem - applied; excess > 0 {
			res.HullDamage = m.damageHull(h, excess)
		}
	}

	res.Destroyed = m.checkDestroyed(h)
	return res
}

// ApplyHullDamage applies damage directly to the hull system, bypassing armor.
func (m DamageModel) ApplyHullDamage(h *components.Hull, amount float64) DamageResult {
	res := DamageResult{System: components.SystemHull}
	if amount <= 0 || h.Destroyed {
		return res
	}
	res.Penetrating = amount
	res.HullDamage = m.damageHull(h, amount)
	res.Destroyed = m.checkDestroyed(h)
	return res
}

func (m DamageModel) damageHull(h *components.Hull, amount float64) float64 {
	s := &h.Systems[components.SystemHull]
	applied := math.Min(amount, s.HP)
	s.HP = clamp(s.HP-applied, 0, s.Max)
	return applied
}

// checkDestroyed marks the hull destroyed and reports whether that happened now.
func (m DamageModel) checkDestroyed(h *components.Hull) bool {
	if h.Destroyed {
		return false
	}
	switch {
	case h.Systems[components.SystemHull].Disabled():
		h.Destroyed = true
		h.Cause = components.CauseImplosion
	case h.Systems[components.SystemLifeSupport].Disabled():
		h.Destroyed = true
		h.Cause = components.CauseCrewLoss
	}
	return h.Destroyed
}

// sampleSystem draws the struck system from the facing's hit table.
func (m DamageModel) sampleSystem(facing components.Facing, rng Rand) components.SystemKind {
	row := m.hitTable[facing]
	r := rng.Float64()
	var acc float64
	last := components.SystemHull
	for s, p := range row {
		if p <= 0 {
			continue
		}
		last = components.SystemKind(s)
		acc += p
		if r < acc {
			return last
		}
	}
	return last
}

// PerformanceFactors returns multipliers from system health, never below the disabled floor.
func (m DamageModel) PerformanceFactors(h *components.Hull) Performance {
	f := func(k components.SystemKind) float64 {
		return math.Max(h.Systems[k].Ratio(), m.cfg.DisabledFloor)
	}
	return Performance{
		Engine:     f(components.SystemEngines),
		Navigation: f(components.SystemNavigation),
		Sensors:    f(components.SystemSensors),
		Weapons:    f(components.SystemWeapons),
	}
}

// Redistribute moves every facing's fast layer toward the hull-wide fill ratio.
// The total fast armor is unchanged.
func (m DamageModel) Redistribute(h *components.Hull, dt float64) {
	if h.Destroyed {
		return
	}
	var total, capacity float64
	for i := range h.Armor {
		total += h.Armor[i].Fast
		capacity += h.Armor[i].FastMax
	}
	if capacity <= 0 {
		return
	}
	ratio := total / capacity
	rate := clamp01(m.cfg.RedistributionRate * dt)
	for i := range h.Armor {
		a := &h.Armor[i]
		a.Fast += (ratio*a.FastMax - a.Fast) * rate
		a.Fast = clamp(a.Fast, 0, a.FastMax)
	}
}

// Reinforce doubles a facing's fast layer, up to its capacity, by draining the
// four adjacent facings equally. Nothing changes when an error is returned.
func (m DamageModel) Reinforce(h *components.Hull, facing components.Facing) error {
	if facing >= components.FacingCount {
		return ErrReinforceFull
	}
	a := &h.Armor[facing]
	gain := math.Min(a.Fast, a.FastMax-a.Fast)
	if gain <= 0 {
		return ErrReinforceFull
	}
	drain := gain / 4

	adjacent := AdjacentFacings(facing)
	for _, f := range adjacent {
		if h.Armor[f].Fast-drain < m.cfg.ReinforceFloor {
			return ErrReinforceFloor
		}
	}
	for _, f := range adjacent {
		h.Armor[f].Fast -= drain
	}
	a.Fast = clamp(a.Fast+gain, 0, a.FastMax)
	return nil
}

// AdjacentFacings returns the four facings that border f.
func AdjacentFacings(f components.Facing) [4]components.Facing {
	var out [4]components.Facing
	n := 0
	for g := components.Facing(0); g < components.FacingCount; g++ {
		if g != f && g != f.Opposite() {
			out[n] = g
			n++
		}
	}
	return out
}

// Repair restores system health over time on surviving vessels.
func (m DamageModel) Repair(h *components.Hull, dt float64) {
	if h.Destroyed {
		return
	}
	for k := range h.Systems {
		s := &h.Systems[k]
		rate := m.cfg.RepairRate
		if components.SystemKind(k) == components.SystemHull {
			rate = m.cfg.HullRepairRate
		}
		s.HP = clamp(s.HP+rate*dt, 0, s.Max)
	}
}

// CollisionDamage converts an impact speed (m/s) into hull damage.
func (m DamageModel) CollisionDamage(impactSpeed float64) float64 {
	return math.Max(0, (impactSpeed-m.cfg.SafeImpactSpeed)*m.cfg.CollisionFactor)
}

// CrushDamage returns hull damage for time spent below crush depth.
func (m DamageModel) CrushDamage(spec config.ClassSpec, depth, dt float64) float64 {
	if depth <= spec.CrushDepth {
		return 0
	}
	return (depth - spec.CrushDepth) * m.cfg.CrushDamageRate * dt
}

// HullStress reports whether the vessel just crossed below test depth.
// The latch re-arms once the vessel climbs back above it.
func HullStress(spec config.ClassSpec, h *components.Hull, depth float64) bool {
	if depth <= spec.TestDepth {
		h.BelowTestDepth = false
		return false
	}
	if h.BelowTestDepth {
		return false
	}
	h.BelowTestDepth = true
	return true
}

// FacingFromDirection maps the direction toward a hit's source into the
// vessel's frame and returns the facing it strikes.
func FacingFromDirection(heading float64, toSource r3.Vec) components.Facing {
	fwd := components.HeadingVector(heading)
	right := r3.Vec{X: math.Cos(heading), Z: -math.Sin(heading)}
	lf := r3.Dot(toSource, fwd)
	lr := r3.Dot(toSource, right)
	lu := toSource.Y

	switch {
	case math.Abs(lf) >= math.Abs(lr) && math.Abs(lf) >= math.Abs(lu):
		if lf >= 0 {
			return components.FacingFore
		}
		return components.FacingAft
	case math.Abs(lr) >= math.Abs(lu):
		if lr >= 0 {
			return components.FacingStarboard
		}
		return components.FacingPort
	default:
		if lu >= 0 {
			return components.FacingDorsal
		}
		return components.FacingVentral
	}
}
