package components

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/config"
)

func testSpec() config.ClassSpec {
	var spec config.ClassSpec
	for f := range spec.Armor {
		spec.Armor[f] = config.ArmorConfig{Fast: 30, Slow: 20, Threshold: 25}
	}
	for s := range spec.Systems {
		spec.Systems[s] = config.SystemConfig{HP: 100, Threshold: 0.4}
	}
	spec.Torpedoes = [4]int{2, 1, 0, 1}
	spec.Slots = []int{0, 2}
	spec.Noisemakers = 3
	return spec
}

func TestFacingOpposite(t *testing.T) {
	tests := []struct {
		f, want Facing
	}{
		{FacingFore, FacingAft},
		{FacingAft, FacingFore},
		{FacingPort, FacingStarboard},
		{FacingStarboard, FacingPort},
		{FacingDorsal, FacingVentral},
		{FacingVentral, FacingDorsal},
	}
	for _, tt := range tests {
		if got := tt.f.Opposite(); got != tt.want {
			t.Errorf("%v.Opposite() = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestNewHull(t *testing.T) {
	h := NewHull(testSpec())
	for f, a := range h.Armor {
		if a.FastMax != 60 || a.Fast != 30 || a.SlowMax != 20 {
			t.Errorf("facing %v = %+v, want fast 30/60, slow 20", Facing(f), a)
		}
	}
	if h.Health() != 1 {
		t.Errorf("Health() = %v, want 1", h.Health())
	}
	h.Systems[SystemHull].HP = 25
	if h.Health() != 0.25 {
		t.Errorf("Health() = %v, want 0.25", h.Health())
	}
	if h.Armor.FastTotal() != 180 {
		t.Errorf("FastTotal() = %v, want 180", h.Armor.FastTotal())
	}
}

func TestNewFireControlEmptySlot(t *testing.T) {
	fc := NewFireControl(testSpec())
	if fc.Slots[0].Phase != PhaseReady || fc.Inventory[TorpLight] != 1 {
		t.Errorf("slot 0 = %+v, light inventory = %d, want ready and 1", fc.Slots[0], fc.Inventory[TorpLight])
	}
	if fc.Slots[1].Phase != PhaseEmpty {
		t.Errorf("slot 1 phase = %v, want empty", fc.Slots[1].Phase)
	}
	if fc.Noisemakers != 3 {
		t.Errorf("Noisemakers = %d, want 3", fc.Noisemakers)
	}
}

func TestTimedModifierFraction(t *testing.T) {
	tests := []struct {
		m    TimedModifier
		want float64
	}{
		{TimedModifier{}, 0},
		{TimedModifier{Active: true, Duration: 4}, 1},
		{TimedModifier{Active: true, Elapsed: 1, Duration: 4}, 0.75},
		{TimedModifier{Active: true, Elapsed: 5, Duration: 4}, 0},
	}
	for _, tt := range tests {
		if got := tt.m.Fraction(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%+v.Fraction() = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestRouteWraps(t *testing.T) {
	var r Route
	if _, ok := r.Current(); ok {
		t.Error("empty route returned a waypoint")
	}
	r.Waypoints = []r3.Vec{{X: 1}, {X: 2}}
	r.Advance()
	r.Advance()
	if wp, _ := r.Current(); wp.X != 1 {
		t.Errorf("Current() = %v after wrapping, want first waypoint", wp)
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("escort"); !ok || r != RoleEscort {
		t.Errorf("ParseRole(escort) = %v, %v", r, ok)
	}
	if _, ok := ParseRole("submarine"); ok {
		t.Error("ParseRole accepted an unknown role")
	}
}
