package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

var fullPerf = Performance{Engine: 1, Navigation: 1, Sensors: 1, Weapons: 1}

func newTestMotion() (Motion, config.ClassSpec) {
	cfg := config.Cfg()
	return NewMotion(cfg.Physics, Bounds{HalfWidth: cfg.World.HalfWidth, MaxDepth: cfg.World.MaxDepth}), cfg.Class("attack")
}

func TestIntegrateAcceleration(t *testing.T) {
	m, spec := newTestMotion()
	phys := config.Cfg().Physics
	kin := components.Kinematics{Pos: r3.Vec{Y: -100}, TargetSpeed: 10, TargetDepth: 100}

	m.Integrate(spec, &kin, fullPerf, 1)
	if kin.Speed != phys.Acceleration {
		t.Errorf("Speed = %v, want %v", kin.Speed, phys.Acceleration)
	}
	if want := phys.Acceleration * phys.KnotsToMPS; math.Abs(kin.Pos.Z-want) > 1e-9 {
		t.Errorf("Pos.Z = %v, want %v", kin.Pos.Z, want)
	}

	kin.TargetSpeed = spec.MaxSpeed * 2
	for i := 0; i < 100; i++ {
		m.Integrate(spec, &kin, fullPerf, 1)
	}
	if kin.Speed != spec.MaxSpeed {
		t.Errorf("Speed = %v, want clamp at %v", kin.Speed, spec.MaxSpeed)
	}

	half := Performance{Engine: 0.5, Navigation: 1}
	for i := 0; i < 100; i++ {
		m.Integrate(spec, &kin, half, 1)
	}
	if kin.Speed != spec.MaxSpeed/2 {
		t.Errorf("Speed with half engines = %v, want %v", kin.Speed, spec.MaxSpeed/2)
	}
}

func TestIntegrateZeroDT(t *testing.T) {
	m, spec := newTestMotion()
	kin := components.Kinematics{Pos: r3.Vec{Y: -100}, TargetSpeed: 10, TargetDepth: 200}
	m.Integrate(spec, &kin, fullPerf, 0.05)
	before := kin

	for _, dt := range []float64{0, -0.05} {
		m.Integrate(spec, &kin, fullPerf, dt)
		if kin != before {
			t.Errorf("Integrate(dt=%v) = %+v, want unchanged %+v", dt, kin, before)
		}
		if math.IsNaN(kin.Vel.Y) || math.IsNaN(kin.Pitch) {
			t.Errorf("Integrate(dt=%v) produced NaN: vel %v pitch %v", dt, kin.Vel, kin.Pitch)
		}
	}
}

func TestIntegrateDepth(t *testing.T) {
	m, spec := newTestMotion()
	phys := config.Cfg().Physics
	kin := components.Kinematics{Pos: r3.Vec{Y: -100}, TargetDepth: 200}

	m.Integrate(spec, &kin, fullPerf, 1)
	if got, want := kin.Depth(), 100+phys.DepthRate; got != want {
		t.Errorf("Depth = %v, want %v", got, want)
	}

	kin.TargetDepth = 0
	for i := 0; i < 100; i++ {
		m.Integrate(spec, &kin, fullPerf, 1)
	}
	if kin.Depth() != phys.SurfaceDepth {
		t.Errorf("Depth = %v, want surface depth %v", kin.Depth(), phys.SurfaceDepth)
	}
}

func TestIntegrateStaysInBounds(t *testing.T) {
	m, spec := newTestMotion()
	w := config.Cfg().World
	kin := components.Kinematics{Pos: r3.Vec{X: w.HalfWidth - 1, Y: -100}, Heading: math.Pi / 2, Speed: spec.MaxSpeed, TargetSpeed: spec.MaxSpeed, TargetDepth: 100}

	for i := 0; i < 50; i++ {
		m.Integrate(spec, &kin, fullPerf, 1)
	}
	if kin.Pos.X > w.HalfWidth {
		t.Errorf("Pos.X = %v, want <= %v", kin.Pos.X, w.HalfWidth)
	}
}

func TestSteerToHeading(t *testing.T) {
	_, spec := newTestMotion()
	kin := components.Kinematics{}

	SteerToHeading(&kin, spec, math.Pi/2)
	if kin.TurnIntent != 1 {
		t.Errorf("TurnIntent = %v, want 1", kin.TurnIntent)
	}
	SteerToHeading(&kin, spec, 3*math.Pi/2)
	if kin.TurnIntent != -1 {
		t.Errorf("TurnIntent = %v, want -1 (shorter way round)", kin.TurnIntent)
	}
	SteerToHeading(&kin, spec, 0)
	if kin.TurnIntent != 0 {
		t.Errorf("TurnIntent = %v, want 0", kin.TurnIntent)
	}
}

func TestGround(t *testing.T) {
	kin := components.Kinematics{Pos: r3.Vec{Y: -310}, Vel: r3.Vec{Y: -4}, TargetDepth: 400}
	impact, hit := Ground(&kin, 300)
	if !hit {
		t.Fatal("Ground = false below the seabed")
	}
	if impact != 4 {
		t.Errorf("impact = %v, want 4", impact)
	}
	if kin.Depth() != 300-groundClearance || kin.TargetDepth != 300-groundClearance {
		t.Errorf("depth = %v, target = %v, want %v", kin.Depth(), kin.TargetDepth, 300-groundClearance)
	}

	if _, hit := Ground(&kin, 300); hit {
		t.Error("Ground = true after being lifted clear")
	}
}
