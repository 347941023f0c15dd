package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// groundClearance is how far above the seabed a grounded vessel is placed.
const groundClearance = 5.0

// Motion integrates vessel kinematics.
type Motion struct {
	cfg    config.PhysicsConfig
	bounds Bounds
}

// NewMotion creates the kinematics integrator.
func NewMotion(cfg config.PhysicsConfig, bounds Bounds) Motion {
	return Motion{cfg: cfg, bounds: bounds}
}

// SteerToHeading sets turn intent toward a target heading. Full rudder is held
// until the remaining turn is less than one second at the class turn rate.
func SteerToHeading(kin *components.Kinematics, spec config.ClassSpec, target float64) {
	if spec.TurnRate <= 0 {
		kin.TurnIntent = 0
		return
	}
	diff := normalizeAngle(target - kin.Heading)
	kin.TurnIntent = clamp(diff/spec.TurnRate, -1, 1)
}

// Integrate advances a vessel by dt. Engine damage scales reachable speed,
// navigation damage scales turn and depth rates. A non-positive dt is a no-op.
func (m Motion) Integrate(spec config.ClassSpec, kin *components.Kinematics, perf Performance, dt float64) {
	if dt <= 0 {
		return
	}
	maxSpeed := spec.MaxSpeed * perf.Engine
	target := clamp(kin.TargetSpeed, -maxSpeed/2, maxSpeed)
	step := m.cfg.Acceleration * dt
	switch {
	case kin.Speed < target:
		kin.Speed = math.Min(target, kin.Speed+step)
	case kin.Speed > target:
		kin.Speed = math.Max(target, kin.Speed-step)
	}

	kin.TurnIntent = clamp(kin.TurnIntent, -1, 1)
	kin.TurnRate = kin.TurnIntent * spec.TurnRate * perf.Navigation
	kin.Heading = normalizeHeading(kin.Heading + kin.TurnRate*dt)

	depth := kin.Depth()
	want := clamp(kin.TargetDepth, m.cfg.SurfaceDepth, m.bounds.MaxDepth)
	dstep := m.cfg.DepthRate * perf.Navigation * dt
	newDepth := depth
	switch {
	case depth < want:
		newDepth = math.Min(want, depth+dstep)
	case depth > want:
		newDepth = math.Max(want, depth-dstep)
	}

	horiz := r3.Scale(kin.Speed*m.cfg.KnotsToMPS, kin.Forward())
	kin.Vel = r3.Vec{X: horiz.X, Y: (depth - newDepth) / dt, Z: horiz.Z}
	kin.Pos.X = clamp(kin.Pos.X+horiz.X*dt, -m.bounds.HalfWidth, m.bounds.HalfWidth)
	kin.Pos.Z = clamp(kin.Pos.Z+horiz.Z*dt, -m.bounds.HalfWidth, m.bounds.HalfWidth)
	kin.Pos.Y = -newDepth
	kin.Pitch = math.Atan2(kin.Vel.Y, math.Abs(kin.Speed*m.cfg.KnotsToMPS))
}

// Ground resolves seabed contact. When the hull is at or below the seabed it
// is lifted clear, its dive is cancelled, and the impact speed is returned.
func Ground(kin *components.Kinematics, seabed float64) (float64, bool) {
	if kin.Depth() < seabed {
		return 0, false
	}
	impact := math.Hypot(kin.Vel.Y, 0.25*r3.Norm(r3.Vec{X: kin.Vel.X, Z: kin.Vel.Z}))
	kin.Pos.Y = -(seabed - groundClearance)
	kin.TargetDepth = seabed - groundClearance
	kin.Vel.Y = 0
	return impact, true
}
