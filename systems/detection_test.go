package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

func newTestDetection() *DetectionEngine {
	w := config.Cfg().World
	return NewDetectionEngine(config.Cfg().Sonar, w.HalfWidth, w.GridCellSize)
}

func TestPassiveSensitivityStationaryBaseline(t *testing.T) {
	e := newTestDetection()
	cfg := config.Cfg().Sonar

	still := e.PassiveSensitivity(0, 35, false)
	if still != cfg.BaselineSensitivity {
		t.Errorf("stationary sensitivity = %v, want %v", still, cfg.BaselineSensitivity)
	}
	if moving := e.PassiveSensitivity(0.6*35, 35, false); moving >= still {
		t.Errorf("sensitivity at 60%% speed = %v, want < %v", moving, still)
	}
}

func TestPassiveSensitivityTowedArray(t *testing.T) {
	e := newTestDetection()
	cfg := config.Cfg().Sonar

	if got, want := e.PassiveSensitivity(0, 35, true), cfg.BaselineSensitivity*cfg.TowedArrayMultiplier; math.Abs(got-want) > 1e-9 {
		t.Errorf("towed sensitivity = %v, want %v", got, want)
	}
	fast := cfg.TowedArrayMaxSpeed + 1
	if e.PassiveSensitivity(fast, 35, true) != e.PassiveSensitivity(fast, 35, false) {
		t.Error("towed array should give no benefit above its speed limit")
	}
}

func TestWakeFactor(t *testing.T) {
	e := newTestDetection()
	cfg := config.Cfg().Sonar
	obs := Observer{Heading: 0}

	tests := []struct {
		name   string
		target r3.Vec
		want   float64
	}{
		{"astern", r3.Vec{Z: -1000}, 1 - cfg.WakeReduction},
		{"ahead", r3.Vec{Z: 1000}, 1},
		{"beam", r3.Vec{X: 1000}, 1},
		{"astern beyond cone distance", r3.Vec{Z: -(cfg.WakeMaxDistance + 100)}, 1},
	}
	for _, tt := range tests {
		if got := e.WakeFactor(obs, tt.target); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: WakeFactor = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAspectFactor(t *testing.T) {
	e := newTestDetection()
	cfg := config.Cfg().Sonar
	obs := Observer{}
	pos := r3.Vec{Z: 1000}

	tests := []struct {
		name    string
		heading float64
		want    float64
	}{
		{"bow", math.Pi, cfg.AspectBow},
		{"beam", math.Pi / 2, cfg.AspectBeam},
		{"stern", 0, cfg.AspectStern},
	}
	for _, tt := range tests {
		target := VesselSnapshot{VesselID: 2, Pos: pos, HeadingR: tt.heading}
		if got := e.AspectFactor(obs, target); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: AspectFactor = %v, want %v", tt.name, got, tt.want)
		}
	}

	decoy := DecoySnapshot{DecoyID: 3, Pos: pos}
	if got := e.AspectFactor(obs, decoy); got != 1 {
		t.Errorf("decoy AspectFactor = %v, want 1", got)
	}
}

func TestSweepDetectsAndClassifies(t *testing.T) {
	e := newTestDetection()
	self := r3.Vec{Y: -100}
	e.Index([]Target{
		VesselSnapshot{VesselID: 1, Pos: self, HeadingR: math.Pi / 2, Loudness: 30},
		VesselSnapshot{VesselID: 2, Pos: r3.Vec{Y: -100, Z: 1000}, HeadingR: math.Pi / 2, Loudness: 30},
		VesselSnapshot{VesselID: 3, Pos: r3.Vec{Y: -100, Z: 9000}, HeadingR: math.Pi / 2, Loudness: 30},
	})

	obs := Observer{ID: 1, Team: 1, Pos: self, Heading: math.Pi / 2, MaxSpeed: 35, SensorRatio: 1}
	sens := e.PassiveSensitivity(0, 35, false)
	contacts := e.Sweep(obs, components.SonarPassive, sens, nil, 0)

	if len(contacts) != 1 {
		t.Fatalf("Sweep returned %d contacts, want 1", len(contacts))
	}
	c := contacts[0]
	if c.TargetID != 2 {
		t.Errorf("TargetID = %d, want 2", c.TargetID)
	}
	if math.Abs(c.Bearing) > 1e-9 {
		t.Errorf("Bearing = %v, want 0", c.Bearing)
	}
	wantStrength := 30 * 3.0 * (1 - 1000.0/3500) / 10
	if math.Abs(c.Strength-wantStrength) > 1e-9 {
		t.Errorf("Strength = %v, want %v", c.Strength, wantStrength)
	}
	if c.Class != components.ContactIdentified {
		t.Errorf("Class = %v, want identified", c.Class)
	}
}

func TestStrengthOutOfRange(t *testing.T) {
	e := newTestDetection()
	if got := e.Strength(50, 3, 4000, 3500); got != 0 {
		t.Errorf("Strength beyond range = %v, want 0", got)
	}
	if got := e.Strength(1000, 3, 0, 3500); got != 10 {
		t.Errorf("Strength = %v, want clamp at 10", got)
	}
}

func TestDecoyCrossCheck(t *testing.T) {
	e := newTestDetection()
	cfg := config.Cfg().Sonar
	e.Index(nil)

	obs := Observer{ID: 1, Team: 1, Pos: r3.Vec{Y: -100}, Heading: math.Pi / 2, MaxSpeed: 35, SensorRatio: 1}
	decoy := DecoySnapshot{DecoyID: 9, OwnerID: 5, TeamID: 2, Pos: r3.Vec{X: 500, Y: -100}, Noise: 40, Cap: 8}

	var sensor components.Sensor
	sens := e.PassiveSensitivity(0, 35, false)

	fresh := e.Sweep(obs, components.SonarPassive, sens, []Target{decoy}, 0)
	if len(fresh) != 1 {
		t.Fatalf("Sweep returned %d contacts, want 1", len(fresh))
	}
	if fresh[0].Strength > decoy.Cap {
		t.Errorf("decoy strength = %v, want <= cap %v", fresh[0].Strength, decoy.Cap)
	}
	e.Merge(&sensor, fresh, components.SonarPassive, 0)
	c, _ := sensor.Find(9)
	if !c.Spoofed || c.Decoy {
		t.Errorf("fresh decoy: Spoofed = %v, Decoy = %v, want true, false", c.Spoofed, c.Decoy)
	}

	fresh = e.Sweep(obs, components.SonarPassive, sens, []Target{decoy}, cfg.CrossCheckTime)
	e.Merge(&sensor, fresh, components.SonarPassive, cfg.CrossCheckTime)
	c, _ = sensor.Find(9)
	if !c.Decoy {
		t.Error("decoy not flagged after cross-check time")
	}
	if c.FirstSeen != 0 {
		t.Errorf("FirstSeen = %v, want 0", c.FirstSeen)
	}
}

func TestMergeRetention(t *testing.T) {
	e := newTestDetection()
	cfg := config.Cfg().Sonar
	sensor := components.Sensor{Contacts: []components.Contact{
		{TargetID: 5, Mode: components.SonarPassive, UpdatedAt: 0},
		{TargetID: 6, Mode: components.SonarActive, UpdatedAt: 0, Class: components.ContactIdentified},
	}}

	e.Merge(&sensor, nil, components.SonarPassive, 1)
	if _, ok := sensor.Find(5); ok {
		t.Error("passive contact kept after a passive sweep missed it")
	}
	if _, ok := sensor.Find(6); !ok {
		t.Fatal("active contact dropped by a passive sweep")
	}

	weak := []components.Contact{{TargetID: 6, Mode: components.SonarPassive, Class: components.ContactUnidentified, UpdatedAt: 2}}
	e.Merge(&sensor, weak, components.SonarPassive, 2)
	if c, _ := sensor.Find(6); c.Class != components.ContactIdentified {
		t.Errorf("Class = %v, want identified to be held", c.Class)
	}

	sensor.Contacts[0].Mode = components.SonarActive
	sensor.SelectedID, sensor.HasSelection = 6, true
	e.Expire(&sensor, 2+cfg.ActiveHold+0.1)
	if len(sensor.Contacts) != 0 {
		t.Errorf("contacts after expiry = %d, want 0", len(sensor.Contacts))
	}
	if sensor.HasSelection {
		t.Error("selection kept after its contact expired")
	}
}

func TestRevealAroundSkipsOwnTeam(t *testing.T) {
	e := newTestDetection()
	e.Index([]Target{
		VesselSnapshot{VesselID: 1, TeamID: 1, Pos: r3.Vec{}},
		VesselSnapshot{VesselID: 2, TeamID: 1, Pos: r3.Vec{X: 5000, Z: 5100}},
		VesselSnapshot{VesselID: 3, TeamID: 2, Pos: r3.Vec{X: 5000, Z: 5200}},
	})
	owner := Observer{ID: 1, Team: 1}
	out := e.RevealAround(r3.Vec{X: 5000, Z: 5000}, owner, 1200, 0)
	if len(out) != 1 || out[0].TargetID != 3 {
		t.Fatalf("RevealAround = %v, want only target 3", out)
	}
	if !out[0].Revealed || out[0].Class != components.ContactIdentified {
		t.Errorf("revealed contact = %+v, want revealed and identified", out[0])
	}
}
