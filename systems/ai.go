package systems

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// VesselView is the controlled vessel's own state as the AI sees it.
type VesselView struct {
	ID        uint32
	Team      int
	Pos       r3.Vec
	Heading   float64
	Speed     float64 // knots
	MaxSpeed  float64 // knots
	Health    float64 // hull fraction
	TestDepth float64
}

// Steering is the controller's setpoint output for one tick.
type Steering struct {
	TargetHeading float64 // radians
	SpeedFraction float64 // of max speed
	TargetDepth   float64
	Fire          bool
	FireTarget    uint32
}

// AIController runs the per-vessel behavior state machine.
// Decisions run on a slow timer; steering runs every tick.
type AIController struct {
	cfg    config.AIConfig
	lookup TargetLookup
}

// NewAIController creates a controller that resolves leaders and targets through lookup.
func NewAIController(cfg config.AIConfig, lookup TargetLookup) *AIController {
	return &AIController{cfg: cfg, lookup: lookup}
}

// SweepDue advances the sensor-sweep timer and reports whether a passive sweep should run.
func (c *AIController) SweepDue(ai *components.AIState, dt float64) bool {
	ai.SweepTimer += dt
	if ai.SweepTimer >= c.cfg.SweepInterval {
		ai.SweepTimer -= c.cfg.SweepInterval
		return true
	}
	return false
}

// Update advances timers, runs the watchdog every tick, re-evaluates the
// state machine when the decision timer fires, and returns steering.
func (c *AIController) Update(ai *components.AIState, self VesselView, contacts []components.Contact, dt float64) Steering {
	ai.TimeInState += dt
	if ai.Mode == components.AIEngaging {
		ai.EngagementTime += dt
	}
	if ai.WeaponTimer > 0 {
		ai.WeaponTimer = math.Max(0, ai.WeaponTimer-dt)
	}
	c.trackCandidate(ai, self, contacts, dt)

	if ai.Mode == components.AIEngaging && ai.TimeInState > 2*c.cfg.MaxEngagementTime {
		slog.Warn("ai engagement watchdog fired, forcing idle",
			"vessel", self.ID,
			"target", ai.TargetID,
			"time_in_state", ai.TimeInState,
		)
		ai.ClearTarget()
		ai.SetMode(ai.Idle())
	}

	ai.DecisionTimer += dt
	if ai.DecisionTimer >= c.cfg.DecisionInterval {
		ai.DecisionTimer -= c.cfg.DecisionInterval
		c.decide(ai, self, contacts)
	}

	return c.steer(ai, self, contacts)
}

// trackCandidate keeps the nearest hostile contact and how long it has been held.
func (c *AIController) trackCandidate(ai *components.AIState, self VesselView, contacts []components.Contact, dt float64) {
	best, ok := c.nearestHostile(ai, self, contacts)
	if !ok {
		ai.CandidateID = 0
		ai.ReactionTimer = 0
		return
	}
	if best.TargetID == ai.CandidateID {
		ai.ReactionTimer += dt
		return
	}
	ai.CandidateID = best.TargetID
	ai.ReactionTimer = 0
}

func (c *AIController) nearestHostile(ai *components.AIState, self VesselView, contacts []components.Contact) (components.Contact, bool) {
	var best components.Contact
	found := false
	for _, ct := range contacts {
		if ct.Decoy || ct.Mine || ct.Distance > ai.Tunables.DetectionRange {
			continue
		}
		if c.friendly(self, ct.TargetID) {
			continue
		}
		if !found || ct.Distance < best.Distance {
			best = ct
			found = true
		}
	}
	return best, found
}

func (c *AIController) friendly(self VesselView, id uint32) bool {
	if c.lookup == nil {
		return false
	}
	t, ok := c.lookup.Lookup(id)
	return ok && t.Team() == self.Team
}

// decide applies state transitions.
func (c *AIController) decide(ai *components.AIState, self VesselView, contacts []components.Contact) {
	tun := ai.Tunables
	target, tracked := findTracked(ai, contacts)

	switch ai.Mode {
	case components.AIPatrolling, components.AIEscorting:
		if ai.CandidateID == 0 || ai.ReactionTimer < tun.ReactionLatency || tun.Aggressiveness < tun.EngageThreshold {
			return
		}
		cand, ok := findContact(contacts, ai.CandidateID)
		if !ok || cand.Distance > tun.EngagementRange {
			return
		}
		ai.TargetID = cand.TargetID
		ai.HasTarget = true
		ai.LastKnown = cand.Position
		ai.EngagementTime = 0
		ai.SetMode(components.AIEngaging)

	case components.AIEngaging:
		if ai.EngagementTime > c.cfg.MaxEngagementTime ||
			(self.Health < c.cfg.RetreatHealth && tun.Aggressiveness < c.cfg.CautiousAggressiveness) {
			if tracked {
				ai.LastKnown = target.Position
			}
			ai.SetMode(components.AIRetreating)
			return
		}
		if !tracked || target.Distance > c.cfg.SearchRangeFactor*tun.EngagementRange {
			ai.SetMode(components.AISearching)
			ai.WantPing = true
			return
		}
		ai.LastKnown = target.Position

	case components.AISearching:
		if tracked && target.Distance <= c.cfg.SearchRangeFactor*tun.EngagementRange {
			ai.LastKnown = target.Position
			ai.SetMode(components.AIEngaging)
			return
		}
		if ai.TimeInState >= c.cfg.SearchTimeout {
			ai.ClearTarget()
			ai.SetMode(ai.Idle())
		}

	case components.AIRetreating:
		if !tracked || self.Health > c.cfg.RecoverHealth {
			ai.ClearTarget()
			ai.SetMode(ai.Idle())
			return
		}
		ai.LastKnown = target.Position
	}
}

// steer turns the current state into setpoints.
func (c *AIController) steer(ai *components.AIState, self VesselView, contacts []components.Contact) Steering {
	cfg := c.cfg
	st := Steering{TargetHeading: self.Heading, TargetDepth: -self.Pos.Y}

	aim := func(p r3.Vec, speed float64) {
		st.TargetHeading = headingTo(self.Pos, p)
		st.TargetDepth = -p.Y
		st.SpeedFraction = speed
	}

	switch ai.Mode {
	case components.AIPatrolling:
		wp, ok := ai.Route.Current()
		if !ok {
			st.SpeedFraction = cfg.PatrolSpeed
			break
		}
		if horizontalDistance(self.Pos, wp) < cfg.ArrivalRadius {
			ai.Route.Advance()
			wp, _ = ai.Route.Current()
		}
		aim(wp, cfg.PatrolSpeed)

	case components.AIEscorting:
		leader, ok := c.lookupLeader(ai)
		if !ok {
			ai.HasLeader = false
			ai.SetMode(components.AIPatrolling)
			return c.steer(ai, self, contacts)
		}
		station := r3.Add(leader.Position(), rotateToHeading(ai.FormationOffset, leader.Heading()))
		speed := cfg.PatrolSpeed
		if horizontalDistance(self.Pos, station) > cfg.ArrivalRadius {
			speed = cfg.EngageSpeed
		}
		aim(station, speed)

	case components.AIEngaging:
		tpos := ai.LastKnown
		target, tracked := findTracked(ai, contacts)
		if tracked {
			tpos = target.Position
		}
		aim(c.orbitPoint(ai, self.Pos, tpos), cfg.EngageSpeed)
		if !tracked || ai.WeaponTimer > 0 || target.Distance > cfg.WeaponRange {
			break
		}
		if target.Class != components.ContactIdentified {
			// Passive returns rarely classify at weapon range; ping for a solution.
			ai.WantPing = true
			ai.WeaponTimer = math.Max(ai.Tunables.ReactionLatency, cfg.DecisionInterval)
			break
		}
		st.Fire = true
		st.FireTarget = target.TargetID
		ai.WeaponTimer = ai.Tunables.WeaponCooldown

	case components.AIRetreating:
		away := r3.Sub(self.Pos, ai.LastKnown)
		away.Y = 0
		p := r3.Add(self.Pos, r3.Scale(cfg.RetreatDistance, unitOr(away, components.HeadingVector(self.Heading))))
		// Hold depth, but never run deeper than most of test depth.
		p.Y = -math.Min(retreatDepthFraction*self.TestDepth, math.Max(-self.Pos.Y, minRetreatDepth))
		aim(p, cfg.RetreatSpeed)

	case components.AISearching:
		progress := 0.0
		if cfg.SearchTimeout > 0 {
			progress = ai.TimeInState / cfg.SearchTimeout
		}
		r := cfg.ArrivalRadius * (1 + 4*progress)
		a := ai.TimeInState * searchSpiralRate
		p := r3.Add(ai.LastKnown, r3.Scale(r, components.HeadingVector(a)))
		aim(p, cfg.SearchSpeed)
	}

	return st
}

// orbitPoint offsets the aim point sideways around the target, scaled by evasion skill.
func (c *AIController) orbitPoint(ai *components.AIState, self, target r3.Vec) r3.Vec {
	toTarget := r3.Sub(target, self)
	toTarget.Y = 0
	dir := unitOr(toTarget, r3.Vec{Z: 1})
	standoff := engageStandoff * ai.Tunables.EngagementRange
	side := ai.OrbitSign
	if side == 0 {
		side = 1
	}
	perp := r3.Vec{X: dir.Z * side, Z: -dir.X * side}
	p := r3.Sub(target, r3.Scale(standoff, dir))
	p = r3.Add(p, r3.Scale(ai.Tunables.EvasionSkill*standoff*0.5, perp))
	p.Y = target.Y
	return p
}

func (c *AIController) lookupLeader(ai *components.AIState) (Target, bool) {
	if !ai.HasLeader || c.lookup == nil {
		return nil, false
	}
	t, ok := c.lookup.Lookup(ai.LeaderID)
	if !ok || t.Kind() != TargetVessel {
		return nil, false
	}
	return t, true
}

// findTracked returns the contact for the AI's current target unless it has been exposed as a decoy.
func findTracked(ai *components.AIState, contacts []components.Contact) (components.Contact, bool) {
	if !ai.HasTarget {
		return components.Contact{}, false
	}
	ct, ok := findContact(contacts, ai.TargetID)
	if !ok || ct.Decoy {
		return components.Contact{}, false
	}
	return ct, true
}

func findContact(contacts []components.Contact, id uint32) (components.Contact, bool) {
	for _, ct := range contacts {
		if ct.TargetID == id {
			return ct, true
		}
	}
	return components.Contact{}, false
}

// rotateToHeading turns a local offset (X starboard, Z forward) into world space.
func rotateToHeading(local r3.Vec, heading float64) r3.Vec {
	s, c := math.Sin(heading), math.Cos(heading)
	return r3.Vec{
		X: local.X*c + local.Z*s,
		Y: local.Y,
		Z: -local.X*s + local.Z*c,
	}
}

func horizontalDistance(a, b r3.Vec) float64 {
	return math.Hypot(b.X-a.X, b.Z-a.Z)
}
