package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/config"
)

// TorpedoType identifies a torpedo variant. Order matches config.TorpedoTypeNames.
type TorpedoType uint8

const (
	TorpLight TorpedoType = iota
	TorpMedium
	TorpHeavy
	TorpDrone
	TorpedoTypeCount
)

func (t TorpedoType) String() string {
	if t >= TorpedoTypeCount {
		return "unknown"
	}
	return config.TorpedoTypeNames[t]
}

// Guided reports whether the type homes on a target.
func (t TorpedoType) Guided() bool {
	return t != TorpDrone
}

// TorpedoMode is the guidance phase of a torpedo.
type TorpedoMode uint8

const (
	TorpApproach TorpedoMode = iota
	TorpTerminal
	TorpSelfDestruct
	TorpTransit
	TorpActive
)

var torpedoModeNames = [...]string{"approach", "terminal", "self_destruct", "transit", "active"}

func (m TorpedoMode) String() string {
	if int(m) >= len(torpedoModeNames) {
		return "unknown"
	}
	return torpedoModeNames[m]
}

// Torpedo is a launched weapon entity.
type Torpedo struct {
	ID        uint32
	Type      TorpedoType
	Mode      TorpedoMode
	OwnerID   uint32
	Team      int
	TargetID  uint32
	HasTarget bool

	LaunchPos r3.Vec
	LaunchDir r3.Vec
	Pos       r3.Vec
	Dir       r3.Vec  // unit
	Speed     float64 // metres per second
	Traveled  float64
	Timer     float64 // seconds in self-destruct
}

// ReloadPhase is the state of a launcher slot.
type ReloadPhase uint8

const (
	PhaseReady ReloadPhase = iota
	PhaseLoading
	PhaseFlooding
	PhaseEmpty
)

var phaseNames = [...]string{"ready", "loading", "flooding", "empty"}

func (p ReloadPhase) String() string {
	if int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// WeaponSlot is one torpedo launcher.
type WeaponSlot struct {
	Type    TorpedoType
	Phase   ReloadPhase
	Elapsed float64 // seconds in current phase
}

// LockMode selects how a lock is being acquired.
type LockMode uint8

const (
	LockNone LockMode = iota
	LockReticle
	LockContact
)

// LockState tracks weapon lock acquisition on one target.
type LockState struct {
	TargetID  uint32
	HasTarget bool
	Mode      LockMode
	Progress  float64 // [0, 1]
	Elapsed   float64
	Required  float64
	Locked    bool
}

// Reset clears all lock progress and the target.
func (l *LockState) Reset() {
	*l = LockState{}
}

// ReticleInput is the operator's aim this tick, in normalized screen units.
type ReticleInput struct {
	TargetID  uint32
	HasTarget bool
	Offset    float64 // distance from reticle centre
}

// FireControl holds launchers, inventory and lock state.
type FireControl struct {
	Lock        LockState
	Reticle     ReticleInput
	Slots       []WeaponSlot
	Inventory   [TorpedoTypeCount]int
	Noisemakers int
}

// NewFireControl builds loaded launchers from a class spec.
// Each slot starts loaded, drawing one weapon from inventory.
func NewFireControl(spec config.ClassSpec) FireControl {
	fc := FireControl{Noisemakers: spec.Noisemakers}
	for t, n := range spec.Torpedoes {
		fc.Inventory[t] = n
	}
	fc.Slots = make([]WeaponSlot, len(spec.Slots))
	for i, t := range spec.Slots {
		fc.Slots[i].Type = TorpedoType(t)
		if fc.Inventory[t] > 0 {
			fc.Inventory[t]--
			fc.Slots[i].Phase = PhaseReady
		} else {
			fc.Slots[i].Phase = PhaseEmpty
		}
	}
	return fc
}
