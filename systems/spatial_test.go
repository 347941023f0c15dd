package systems

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
)

func TestSpatialGridQuery(t *testing.T) {
	g := NewSpatialGrid(5000, 1000)
	points := [][2]float64{
		{0, 0},
		{900, 0},
		{0, 1500},
		{-4900, -4900},
		{7000, 7000}, // clamped into the edge cell
	}
	for i, p := range points {
		g.Insert(i, p[0], p[1])
	}

	tests := []struct {
		x, z, r float64
		want    []int
	}{
		{0, 0, 1000, []int{0, 1}},
		{0, 0, 2000, []int{0, 1, 2}},
		{-5000, -5000, 200, []int{3}},
		{100, 100, 10, nil},
	}
	for _, tt := range tests {
		var got []int
		for _, n := range g.QueryRadiusInto(nil, tt.x, tt.z, tt.r) {
			got = append(got, n.Idx)
		}
		slices.Sort(got)
		if !slices.Equal(got, tt.want) {
			t.Errorf("QueryRadiusInto(%v, %v, %v) = %v, want %v", tt.x, tt.z, tt.r, got, tt.want)
		}
	}

	g.Clear()
	if got := g.QueryRadiusInto(nil, 0, 0, 10000); len(got) != 0 {
		t.Errorf("after Clear got %d neighbors, want 0", len(got))
	}
}

func TestBuildRoute(t *testing.T) {
	center := r3.Vec{Y: -200}
	tests := []struct {
		role components.Role
		n    int
	}{
		{components.RolePerimeter, perimeterPoints},
		{components.RoleHunter, hunterPoints},
		{components.RoleCargo, 2},
		{components.RoleEscort, escortPoints},
		{components.RoleExplorer, explorerPoints},
		{components.RoleTactical, tacticalPoints},
	}
	for _, tt := range tests {
		r := BuildRoute(tt.role, center, 0)
		if len(r.Waypoints) != tt.n {
			t.Errorf("%v: %d waypoints, want %d", tt.role, len(r.Waypoints), tt.n)
		}
		for _, wp := range r.Waypoints {
			if wp.Y != center.Y {
				t.Errorf("%v: waypoint depth %v, want %v", tt.role, -wp.Y, -center.Y)
			}
		}
	}

	cargo := BuildRoute(components.RoleCargo, center, math.Pi/2)
	if math.Abs(cargo.Waypoints[0].X-cargoLeg) > 1e-6 {
		t.Errorf("cargo leg end = %v, want east by %v", cargo.Waypoints[0], cargoLeg)
	}
}

func TestFormationOffsetAlternates(t *testing.T) {
	a, b := FormationOffset(0), FormationOffset(1)
	if a.X*b.X >= 0 {
		t.Errorf("offsets %v and %v should be on opposite sides", a, b)
	}
	if a.Z >= 0 {
		t.Errorf("offset %v should be astern of the leader", a)
	}
}

func TestBearingDeg(t *testing.T) {
	tests := []struct {
		to   r3.Vec
		want float64
	}{
		{r3.Vec{Z: 1}, 0},
		{r3.Vec{X: 1}, 90},
		{r3.Vec{Z: -1}, 180},
		{r3.Vec{X: -1}, 270},
	}
	for _, tt := range tests {
		if got := BearingDeg(r3.Vec{}, tt.to); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("BearingDeg(%v) = %v, want %v", tt.to, got, tt.want)
		}
	}
}
