package components

import "github.com/pthm-cable/silentrun/config"

// Facing identifies one of the six armor faces of a hull.
// Order matches config.FacingNames.
type Facing uint8

const (
	FacingFore Facing = iota
	FacingAft
	FacingPort
	FacingStarboard
	FacingDorsal
	FacingVentral
	FacingCount
)

func (f Facing) String() string {
	if f >= FacingCount {
		return "unknown"
	}
	return config.FacingNames[f]
}

// Opposite returns the facing on the other side of the hull.
func (f Facing) Opposite() Facing {
	return f ^ 1
}

// SystemKind identifies an internal system.
// Order matches config.SystemNames.
type SystemKind uint8

const (
	SystemHull SystemKind = iota
	SystemEngines
	SystemWeapons
	SystemSensors
	SystemLifeSupport
	SystemNavigation
	SystemCount
)

func (s SystemKind) String() string {
	if s >= SystemCount {
		return "unknown"
	}
	return config.SystemNames[s]
}

// ArmorFacing holds one facing's two armor layers.
// The fast layer is redistributable by damage control, the slow layer is not.
type ArmorFacing struct {
	Fast      float64
	Slow      float64
	FastMax   float64 // reinforcement capacity
	SlowMax   float64
	Threshold float64 // max absorbed per layer per hit
}

// ArmorSet is the six-facing armor of a hull.
type ArmorSet [FacingCount]ArmorFacing

// FastTotal returns the sum of all fast layers.
func (a *ArmorSet) FastTotal() float64 {
	var sum float64
	for i := range a {
		sum += a[i].Fast
	}
	return sum
}

// SystemHealth holds one internal system's hit points.
type SystemHealth struct {
	HP            float64
	Max           float64
	ThresholdFrac float64 // fraction of Max a single hit can remove
}

// Ratio returns HP as a fraction of Max.
func (s SystemHealth) Ratio() float64 {
	if s.Max <= 0 {
		return 0
	}
	return s.HP / s.Max
}

// Disabled reports whether the system has been knocked out.
func (s SystemHealth) Disabled() bool {
	return s.HP <= 0
}

// SystemTable holds every internal system, indexed by SystemKind.
type SystemTable [SystemCount]SystemHealth

// DestroyCause records why a vessel was destroyed.
type DestroyCause uint8

const (
	CauseNone DestroyCause = iota
	CauseImplosion
	CauseCrewLoss
)

func (c DestroyCause) String() string {
	switch c {
	case CauseImplosion:
		return "implosion"
	case CauseCrewLoss:
		return "crew_loss"
	default:
		return "none"
	}
}

// Hull holds a vessel's armor and internal systems.
type Hull struct {
	Armor     ArmorSet
	Systems   SystemTable
	Destroyed bool
	Cause     DestroyCause

	// BelowTestDepth latches once the hull-stress event has fired for the current dive.
	BelowTestDepth bool
}

// NewHull builds a fully repaired hull from a class spec.
// The fast layer starts at the class rating with room to be doubled by reinforcement.
func NewHull(spec config.ClassSpec) Hull {
	var h Hull
	for f, a := range spec.Armor {
		h.Armor[f] = ArmorFacing{
			Fast:      a.Fast,
			Slow:      a.Slow,
			FastMax:   2 * a.Fast,
			SlowMax:   a.Slow,
			Threshold: a.Threshold,
		}
	}
	for s, sys := range spec.Systems {
		h.Systems[s] = SystemHealth{HP: sys.HP, Max: sys.HP, ThresholdFrac: sys.Threshold}
	}
	return h
}

// Health returns the hull integrity fraction.
func (h *Hull) Health() float64 {
	return h.Systems[SystemHull].Ratio()
}
