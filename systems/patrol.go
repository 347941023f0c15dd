package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
)

// Route shapes per role.
const (
	perimeterRadius = 3000.0
	perimeterPoints = 8

	hunterRadius = 1800.0
	hunterPoints = 6

	cargoLeg = 6000.0

	escortRadius = 600.0
	escortPoints = 4

	explorerRadius = 5000.0
	explorerPoints = 10

	tacticalInner  = 2000.0
	tacticalOuter  = 3200.0
	tacticalPoints = 8
)

// Steering tuning.
const (
	engageStandoff       = 0.6  // fraction of engagement range kept from the target
	searchSpiralRate     = 0.3  // radians per second around the last-known position
	retreatDepthFraction = 0.8  // of test depth
	minRetreatDepth      = 50.0 // metres
)

// BuildRoute returns the patrol route for a role, centred on the spawn point.
// Waypoints keep the spawn depth. Cargo routes run along the spawn heading and back.
func BuildRoute(role components.Role, center r3.Vec, heading float64) components.Route {
	var wps []r3.Vec
	switch role {
	case components.RoleHunter:
		wps = ring(center, hunterRadius, hunterRadius, hunterPoints)
	case components.RoleCargo:
		far := r3.Add(center, r3.Scale(cargoLeg, components.HeadingVector(heading)))
		wps = []r3.Vec{far, center}
	case components.RoleEscort:
		wps = ring(center, escortRadius, escortRadius, escortPoints)
	case components.RoleExplorer:
		wps = ring(center, explorerRadius, explorerRadius, explorerPoints)
	case components.RoleTactical:
		wps = ring(center, tacticalInner, tacticalOuter, tacticalPoints)
	default:
		wps = ring(center, perimeterRadius, perimeterRadius, perimeterPoints)
	}
	return components.Route{Waypoints: wps}
}

// ring places n points clockwise from north, alternating between two radii.
func ring(center r3.Vec, r0, r1 float64, n int) []r3.Vec {
	wps := make([]r3.Vec, n)
	for i := range wps {
		r := r0
		if i%2 == 1 {
			r = r1
		}
		a := 2 * math.Pi * float64(i) / float64(n)
		wps[i] = r3.Add(center, r3.Scale(r, components.HeadingVector(a)))
	}
	return wps
}

// FormationOffset returns the station for the n-th escort of a leader,
// alternating port and starboard quarters.
func FormationOffset(n int) r3.Vec {
	side := 1.0
	if n%2 == 1 {
		side = -1
	}
	rank := float64(n/2 + 1)
	return r3.Vec{X: side * 300 * rank, Z: -200 * rank}
}
