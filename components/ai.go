package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/config"
)

// AIMode is the behavior state of an AI vessel.
type AIMode uint8

const (
	AIPatrolling AIMode = iota
	AIEngaging
	AIRetreating
	AISearching
	AIEscorting
)

var aiModeNames = [...]string{"patrolling", "engaging", "retreating", "searching", "escorting"}

func (m AIMode) String() string {
	if int(m) >= len(aiModeNames) {
		return "unknown"
	}
	return aiModeNames[m]
}

// Route is a closed list of patrol waypoints.
type Route struct {
	Waypoints []r3.Vec
	Index     int
}

// Current returns the active waypoint.
func (r *Route) Current() (r3.Vec, bool) {
	if len(r.Waypoints) == 0 {
		return r3.Vec{}, false
	}
	return r.Waypoints[r.Index%len(r.Waypoints)], true
}

// Advance moves to the next waypoint, wrapping.
func (r *Route) Advance() {
	if len(r.Waypoints) > 0 {
		r.Index = (r.Index + 1) % len(r.Waypoints)
	}
}

// AIState holds per-vessel AI controller state.
type AIState struct {
	Mode      AIMode
	TargetID  uint32
	HasTarget bool
	LastKnown r3.Vec
	Tunables  config.AITunables

	SweepTimer     float64
	DecisionTimer  float64
	TimeInState    float64
	EngagementTime float64
	ReactionTimer  float64 // time the current candidate has been held
	CandidateID    uint32  // 0 when there is no candidate
	WeaponTimer    float64

	Route           Route
	LeaderID        uint32
	HasLeader       bool
	FormationOffset r3.Vec
	OrbitSign       float64 // +1 or -1, orbit direction while engaging
	WantPing        bool    // set by the controller, consumed by the driver
}

// Idle returns the resting mode for this vessel.
func (a *AIState) Idle() AIMode {
	if a.HasLeader {
		return AIEscorting
	}
	return AIPatrolling
}

// SetMode switches state and resets time-in-state.
func (a *AIState) SetMode(m AIMode) {
	if a.Mode == m {
		return
	}
	a.Mode = m
	a.TimeInState = 0
}

// ClearTarget forgets the current target.
func (a *AIState) ClearTarget() {
	a.TargetID = 0
	a.HasTarget = false
	a.EngagementTime = 0
}
