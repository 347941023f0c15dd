package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
)

// TargetKind distinguishes what a Target really is.
type TargetKind uint8

const (
	TargetVessel TargetKind = iota
	TargetDecoy
	TargetMine
)

// Target is anything that can be detected, tracked or homed on.
type Target interface {
	ID() uint32
	Position() r3.Vec
	Heading() float64 // radians, only meaningful when Oriented
	Oriented() bool
	Signature() float64
	Kind() TargetKind
	Team() int // 0 is neutral
}

// TargetLookup resolves target IDs against the current tick's snapshots.
type TargetLookup interface {
	Lookup(id uint32) (Target, bool)
}

// VesselSnapshot is a read-only copy of a vessel taken at the start of a tick.
type VesselSnapshot struct {
	VesselID  uint32
	TeamID    int
	Class     string
	Pos       r3.Vec
	Vel       r3.Vec
	HeadingR  float64
	Speed     float64
	Loudness  float64
	Health    float64
	Destroyed bool
}

func (v VesselSnapshot) ID() uint32         { return v.VesselID }
func (v VesselSnapshot) Position() r3.Vec   { return v.Pos }
func (v VesselSnapshot) Heading() float64   { return v.HeadingR }
func (v VesselSnapshot) Oriented() bool     { return true }
func (v VesselSnapshot) Signature() float64 { return v.Loudness }
func (v VesselSnapshot) Kind() TargetKind   { return TargetVessel }
func (v VesselSnapshot) Team() int          { return v.TeamID }

// DecoySnapshot is a read-only copy of a countermeasure.
type DecoySnapshot struct {
	DecoyID uint32
	OwnerID uint32
	TeamID  int
	Pos     r3.Vec
	Noise   float64
	Cap     float64 // maximum contact strength the decoy can produce
	Mine    bool
}

func (d DecoySnapshot) ID() uint32         { return d.DecoyID }
func (d DecoySnapshot) Position() r3.Vec   { return d.Pos }
func (d DecoySnapshot) Heading() float64   { return 0 }
func (d DecoySnapshot) Oriented() bool     { return false }
func (d DecoySnapshot) Signature() float64 { return d.Noise }
func (d DecoySnapshot) Team() int          { return d.TeamID }

func (d DecoySnapshot) Kind() TargetKind {
	if d.Mine {
		return TargetMine
	}
	return TargetDecoy
}

// SnapshotDecoy builds a decoy snapshot from a countermeasure.
func SnapshotDecoy(cm *components.Countermeasure) DecoySnapshot {
	return DecoySnapshot{
		DecoyID: cm.ID,
		OwnerID: cm.OwnerID,
		TeamID:  cm.Team,
		Pos:     cm.Pos,
		Noise:   cm.CurrentNoise(),
		Cap:     cm.DecoyStrength(),
		Mine:    cm.Kind == components.CMMine,
	}
}

// Terrain answers environmental queries. Implemented by package terrain.
type Terrain interface {
	// SeabedDepth returns the depth of the seabed below the point (x, z).
	SeabedDepth(x, z float64) float64
	// ThermalLayerDepth returns the depth of the thermocline at (x, z).
	ThermalLayerDepth(x, z float64) float64
}

// FlatTerrain is a constant-depth Terrain.
type FlatTerrain struct {
	Seabed  float64
	Thermal float64
}

func (f FlatTerrain) SeabedDepth(x, z float64) float64       { return f.Seabed }
func (f FlatTerrain) ThermalLayerDepth(x, z float64) float64 { return f.Thermal }

// Rand is the random source used for damage sampling.
type Rand interface {
	Float64() float64
}

// Bounds is the playable horizontal area and depth range.
type Bounds struct {
	HalfWidth float64
	MaxDepth  float64
}

// Contains reports whether p is within the bounds. Points above the surface are outside.
func (b Bounds) Contains(p r3.Vec) bool {
	return p.X >= -b.HalfWidth && p.X <= b.HalfWidth &&
		p.Z >= -b.HalfWidth && p.Z <= b.HalfWidth &&
		p.Y <= 0 && -p.Y <= b.MaxDepth
}
