package systems

import (
	"errors"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

var (
	ErrNoSlot           = errors.New("no such weapon slot")
	ErrSlotNotReady     = errors.New("weapon slot not ready")
	ErrNoInventory      = errors.New("insufficient inventory")
	ErrNoFiringSolution = errors.New("guided weapon needs a locked target")
	ErrWeaponsDisabled  = errors.New("weapons system disabled")
)

// Armory runs launcher reload phases and fire checks.
// A slot cycles ready -> loading -> flooding -> ready, or parks in empty
// when no weapon of its type remains.
type Armory struct {
	specs [components.TorpedoTypeCount]config.TorpedoConfig
}

// NewArmory creates an armory for the configured torpedo types.
func NewArmory(specs [4]config.TorpedoConfig) Armory {
	return Armory{specs: specs}
}

// Advance moves every slot through its reload phases.
func (a Armory) Advance(fc *components.FireControl, dt float64) {
	for i := range fc.Slots {
		s := &fc.Slots[i]
		spec := a.specs[s.Type]
		switch s.Phase {
		case components.PhaseLoading:
			s.Elapsed += dt
			if s.Elapsed >= spec.LoadTime {
				s.Phase = components.PhaseFlooding
				s.Elapsed = 0
			}
		case components.PhaseFlooding:
			s.Elapsed += dt
			if s.Elapsed >= spec.FloodTime {
				s.Phase = components.PhaseReady
				s.Elapsed = 0
			}
		case components.PhaseEmpty:
			if fc.Inventory[s.Type] > 0 {
				fc.Inventory[s.Type]--
				s.Phase = components.PhaseLoading
				s.Elapsed = 0
			}
		}
	}
}

// CheckFire validates a shot from a slot without changing anything.
func (a Armory) CheckFire(fc *components.FireControl, slot int, weaponsUp bool) (components.TorpedoType, error) {
	if slot < 0 || slot >= len(fc.Slots) {
		return 0, ErrNoSlot
	}
	if !weaponsUp {
		return 0, ErrWeaponsDisabled
	}
	s := fc.Slots[slot]
	switch s.Phase {
	case components.PhaseReady:
	case components.PhaseEmpty:
		return s.Type, ErrNoInventory
	default:
		return s.Type, ErrSlotNotReady
	}
	if s.Type.Guided() && !(fc.Lock.Locked && fc.Lock.HasTarget) {
		return s.Type, ErrNoFiringSolution
	}
	return s.Type, nil
}

// Release empties a slot after firing and starts reloading it from inventory.
func (a Armory) Release(fc *components.FireControl, slot int) {
	s := &fc.Slots[slot]
	s.Elapsed = 0
	if fc.Inventory[s.Type] > 0 {
		fc.Inventory[s.Type]--
		s.Phase = components.PhaseLoading
		return
	}
	s.Phase = components.PhaseEmpty
}

// ReadySlot returns the first ready slot holding a type accepted by want.
func ReadySlot(fc *components.FireControl, want func(components.TorpedoType) bool) (int, bool) {
	for i, s := range fc.Slots {
		if s.Phase == components.PhaseReady && want(s.Type) {
			return i, true
		}
	}
	return -1, false
}

// TakeNoisemaker removes one noisemaker from inventory.
func TakeNoisemaker(fc *components.FireControl) error {
	if fc.Noisemakers <= 0 {
		return ErrNoInventory
	}
	fc.Noisemakers--
	return nil
}
