// Package components defines ECS components for the simulation.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Role selects a patrol route shape and idle behavior for AI vessels.
type Role uint8

const (
	RolePerimeter Role = iota // Wide ring around the spawn area
	RoleHunter                // Aggressive intercept ring
	RoleCargo                 // Point-to-point transit
	RoleEscort                // Tight defensive ring around a leader
	RoleExplorer              // Wide exploration ring
	RoleTactical              // Ring with alternating radii
	RoleCount
)

var roleNames = [RoleCount]string{"perimeter", "hunter", "cargo", "escort", "explorer", "tactical"}

func (r Role) String() string {
	if r >= RoleCount {
		return "unknown"
	}
	return roleNames[r]
}

// ParseRole maps a config role name to a Role.
func ParseRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}
	return RolePerimeter, false
}

// Identity holds the stable identity of a vessel.
type Identity struct {
	ID     uint32 // Monotonic, never reused
	Class  string
	Team   int
	Role   Role
	Player bool
}

// Kinematics holds a vessel's motion state.
// Heading is radians clockwise from north (+Z). Depth is -Pos.Y.
type Kinematics struct {
	Pos     r3.Vec
	Vel     r3.Vec // metres per second
	Heading float64
	Pitch   float64

	Speed       float64 // knots, signed (negative is astern)
	TargetSpeed float64 // knots
	TurnRate    float64 // radians per second, signed, actual
	TurnIntent  float64 // -1 (port) to +1 (starboard)
	TargetDepth float64
}

// Depth returns the vessel's depth below the surface.
func (k *Kinematics) Depth() float64 {
	return -k.Pos.Y
}

// Forward returns the horizontal unit vector along the heading.
func (k *Kinematics) Forward() r3.Vec {
	return HeadingVector(k.Heading)
}

// HeadingVector converts a heading into a horizontal unit vector.
func HeadingVector(h float64) r3.Vec {
	return r3.Vec{X: math.Sin(h), Z: math.Cos(h)}
}
