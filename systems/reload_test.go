package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

func TestNewFireControlPreloads(t *testing.T) {
	spec := config.Cfg().Class("attack")
	fc := components.NewFireControl(spec)

	if len(fc.Slots) != len(spec.Slots) {
		t.Fatalf("slots = %d, want %d", len(fc.Slots), len(spec.Slots))
	}
	for i, s := range fc.Slots {
		if s.Phase != components.PhaseReady {
			t.Errorf("slot %d phase = %v, want ready", i, s.Phase)
		}
	}
	// Two medium launchers draw two of four.
	if got := fc.Inventory[components.TorpMedium]; got != spec.Torpedoes[components.TorpMedium]-2 {
		t.Errorf("medium inventory = %d, want %d", got, spec.Torpedoes[components.TorpMedium]-2)
	}
}

func TestCheckFire(t *testing.T) {
	a := NewArmory(config.Cfg().Derived.Torpedoes)
	locked := components.LockState{TargetID: 3, HasTarget: true, Locked: true}

	tests := []struct {
		name      string
		slot      components.WeaponSlot
		lock      components.LockState
		weaponsUp bool
		index     int
		want      error
	}{
		{"ready and locked", components.WeaponSlot{Type: components.TorpMedium}, locked, true, 0, nil},
		{"no lock", components.WeaponSlot{Type: components.TorpMedium}, components.LockState{}, true, 0, ErrNoFiringSolution},
		{"drone needs no lock", components.WeaponSlot{Type: components.TorpDrone}, components.LockState{}, true, 0, nil},
		{"loading", components.WeaponSlot{Type: components.TorpMedium, Phase: components.PhaseLoading}, locked, true, 0, ErrSlotNotReady},
		{"empty", components.WeaponSlot{Type: components.TorpMedium, Phase: components.PhaseEmpty}, locked, true, 0, ErrNoInventory},
		{"weapons down", components.WeaponSlot{Type: components.TorpMedium}, locked, false, 0, ErrWeaponsDisabled},
		{"bad slot", components.WeaponSlot{Type: components.TorpMedium}, locked, true, 5, ErrNoSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := components.FireControl{Lock: tt.lock, Slots: []components.WeaponSlot{tt.slot}}
			before := fc.Slots[0]
			_, err := a.CheckFire(&fc, tt.index, tt.weaponsUp)
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckFire error = %v, want %v", err, tt.want)
			}
			if fc.Slots[0] != before {
				t.Error("CheckFire changed the slot")
			}
		})
	}
}

func TestReloadCycle(t *testing.T) {
	torps := config.Cfg().Derived.Torpedoes
	a := NewArmory(torps)
	spec := torps[components.TorpMedium]
	fc := components.FireControl{Slots: []components.WeaponSlot{{Type: components.TorpMedium}}}
	fc.Inventory[components.TorpMedium] = 1

	a.Release(&fc, 0)
	if fc.Slots[0].Phase != components.PhaseLoading || fc.Inventory[components.TorpMedium] != 0 {
		t.Fatalf("after release: slot = %+v, inventory = %d", fc.Slots[0], fc.Inventory[components.TorpMedium])
	}

	for elapsed := 0.0; elapsed < spec.LoadTime; elapsed++ {
		a.Advance(&fc, 1)
	}
	if fc.Slots[0].Phase != components.PhaseFlooding {
		t.Fatalf("phase after load time = %v, want flooding", fc.Slots[0].Phase)
	}
	for elapsed := 0.0; elapsed < spec.FloodTime; elapsed++ {
		a.Advance(&fc, 1)
	}
	if fc.Slots[0].Phase != components.PhaseReady {
		t.Fatalf("phase after flood time = %v, want ready", fc.Slots[0].Phase)
	}

	a.Release(&fc, 0)
	if fc.Slots[0].Phase != components.PhaseEmpty {
		t.Fatalf("phase with no inventory = %v, want empty", fc.Slots[0].Phase)
	}
	a.Advance(&fc, 1)
	if fc.Slots[0].Phase != components.PhaseEmpty {
		t.Error("empty slot left empty without inventory")
	}

	fc.Inventory[components.TorpMedium] = 1
	a.Advance(&fc, 1)
	if fc.Slots[0].Phase != components.PhaseLoading {
		t.Errorf("phase after restock = %v, want loading", fc.Slots[0].Phase)
	}
}

func TestReadySlot(t *testing.T) {
	fc := components.FireControl{Slots: []components.WeaponSlot{
		{Type: components.TorpLight, Phase: components.PhaseLoading},
		{Type: components.TorpDrone},
		{Type: components.TorpHeavy},
	}}
	i, ok := ReadySlot(&fc, components.TorpedoType.Guided)
	if !ok || i != 2 {
		t.Errorf("ReadySlot = %d, %v, want 2, true", i, ok)
	}
}

func TestTakeNoisemaker(t *testing.T) {
	fc := components.FireControl{Noisemakers: 1}
	if err := TakeNoisemaker(&fc); err != nil {
		t.Fatalf("TakeNoisemaker error: %v", err)
	}
	if err := TakeNoisemaker(&fc); !errors.Is(err, ErrNoInventory) {
		t.Errorf("TakeNoisemaker error = %v, want ErrNoInventory", err)
	}
	if fc.Noisemakers != 0 {
		t.Errorf("Noisemakers = %d, want 0", fc.Noisemakers)
	}
}
