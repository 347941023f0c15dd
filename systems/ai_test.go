package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// mapLookup resolves targets from a map.
type mapLookup map[uint32]Target

func (m mapLookup) Lookup(id uint32) (Target, bool) {
	t, ok := m[id]
	return t, ok
}

func newTestAI(lookup TargetLookup) (*AIController, components.AIState, VesselView) {
	cfg := config.Cfg()
	spec := cfg.Class("attack")
	ai := components.AIState{Mode: components.AIPatrolling, Tunables: spec.AI, OrbitSign: 1}
	self := VesselView{ID: 1, Team: 1, Pos: r3.Vec{Y: -100}, MaxSpeed: spec.MaxSpeed, Health: 1, TestDepth: spec.TestDepth}
	return NewAIController(cfg.AI, lookup), ai, self
}

func hostileAt(id uint32, z float64) components.Contact {
	return components.Contact{
		TargetID: id,
		Distance: z,
		Position: r3.Vec{Y: -100, Z: z},
		Strength: 8,
		Class:    components.ContactIdentified,
	}
}

func run(c *AIController, ai *components.AIState, self VesselView, contacts []components.Contact, seconds float64) Steering {
	var st Steering
	for elapsed := 0.0; elapsed < seconds; elapsed += 0.1 {
		st = c.Update(ai, self, contacts, 0.1)
	}
	return st
}

func TestAIPatrolToEngage(t *testing.T) {
	lookup := mapLookup{7: VesselSnapshot{VesselID: 7, TeamID: 2}}
	c, ai, self := newTestAI(lookup)
	contacts := []components.Contact{hostileAt(7, 2000)}

	run(c, &ai, self, contacts, ai.Tunables.ReactionLatency/2)
	if ai.Mode != components.AIPatrolling {
		t.Fatalf("Mode = %v before reaction latency, want patrolling", ai.Mode)
	}

	run(c, &ai, self, contacts, ai.Tunables.ReactionLatency+config.Cfg().AI.DecisionInterval)
	if ai.Mode != components.AIEngaging {
		t.Fatalf("Mode = %v, want engaging", ai.Mode)
	}
	if !ai.HasTarget || ai.TargetID != 7 {
		t.Errorf("target = %d (%v), want 7", ai.TargetID, ai.HasTarget)
	}
}

func TestAIIgnoresDecoysAndFriendlies(t *testing.T) {
	lookup := mapLookup{
		7: VesselSnapshot{VesselID: 7, TeamID: 1},
		8: DecoySnapshot{DecoyID: 8, TeamID: 2},
	}
	c, ai, self := newTestAI(lookup)
	decoy := hostileAt(8, 1500)
	decoy.Decoy = true
	contacts := []components.Contact{hostileAt(7, 1000), decoy}

	run(c, &ai, self, contacts, 10)
	if ai.Mode != components.AIPatrolling {
		t.Errorf("Mode = %v, want patrolling", ai.Mode)
	}
	if ai.CandidateID != 0 {
		t.Errorf("CandidateID = %d, want 0", ai.CandidateID)
	}
}

func TestAIRetreatsWhenHurt(t *testing.T) {
	c, ai, self := newTestAI(nil)
	ai.Mode = components.AIEngaging
	ai.TargetID, ai.HasTarget = 7, true
	ai.Tunables.Aggressiveness = 0.5
	self.Health = 0.2

	run(c, &ai, self, []components.Contact{hostileAt(7, 1500)}, config.Cfg().AI.DecisionInterval+0.1)
	if ai.Mode != components.AIRetreating {
		t.Errorf("Mode = %v, want retreating", ai.Mode)
	}
}

func TestAIAggressiveStaysEngaged(t *testing.T) {
	c, ai, self := newTestAI(nil)
	ai.Mode = components.AIEngaging
	ai.TargetID, ai.HasTarget = 7, true
	ai.Tunables.Aggressiveness = 0.9
	self.Health = 0.2

	run(c, &ai, self, []components.Contact{hostileAt(7, 1500)}, config.Cfg().AI.DecisionInterval+0.1)
	if ai.Mode != components.AIEngaging {
		t.Errorf("Mode = %v, want engaging", ai.Mode)
	}
}

func TestAIEngageToSearch(t *testing.T) {
	c, ai, self := newTestAI(nil)
	ai.Mode = components.AIEngaging
	ai.TargetID, ai.HasTarget = 7, true
	far := ai.Tunables.EngagementRange*config.Cfg().AI.SearchRangeFactor + 100

	run(c, &ai, self, []components.Contact{hostileAt(7, far)}, config.Cfg().AI.DecisionInterval+0.1)
	if ai.Mode != components.AISearching {
		t.Fatalf("Mode = %v, want searching", ai.Mode)
	}
	if !ai.WantPing {
		t.Error("WantPing = false on entering search, want true")
	}

	run(c, &ai, self, nil, config.Cfg().AI.SearchTimeout+config.Cfg().AI.DecisionInterval+0.1)
	if ai.Mode != components.AIPatrolling || ai.HasTarget {
		t.Errorf("Mode = %v, HasTarget = %v after search timeout, want patrolling, false", ai.Mode, ai.HasTarget)
	}
}

func TestAIWatchdog(t *testing.T) {
	cfg := config.Cfg().AI
	cfg.DecisionInterval = 1e9
	c := NewAIController(cfg, nil)
	_, ai, self := newTestAI(nil)
	ai.Mode = components.AIEngaging
	ai.TargetID, ai.HasTarget = 7, true
	ai.TimeInState = 2*cfg.MaxEngagementTime + 1

	c.Update(&ai, self, []components.Contact{hostileAt(7, 1000)}, 0.05)
	if ai.Mode != components.AIPatrolling {
		t.Errorf("Mode = %v, want patrolling", ai.Mode)
	}
	if ai.HasTarget {
		t.Error("watchdog left the target set")
	}
}

func TestAIEngageFires(t *testing.T) {
	c, ai, self := newTestAI(nil)
	ai.Mode = components.AIEngaging
	ai.TargetID, ai.HasTarget = 7, true

	st := c.Update(&ai, self, []components.Contact{hostileAt(7, 1500)}, 0.05)
	if !st.Fire || st.FireTarget != 7 {
		t.Errorf("Steering = %+v, want fire on 7", st)
	}
	if ai.WeaponTimer != ai.Tunables.WeaponCooldown {
		t.Errorf("WeaponTimer = %v, want %v", ai.WeaponTimer, ai.Tunables.WeaponCooldown)
	}
	if st = c.Update(&ai, self, []components.Contact{hostileAt(7, 1500)}, 0.05); st.Fire {
		t.Error("fired again during weapon cooldown")
	}
}

func TestAIPingsForUnidentifiedTarget(t *testing.T) {
	c, ai, self := newTestAI(nil)
	ai.Mode = components.AIEngaging
	ai.TargetID, ai.HasTarget = 7, true
	faint := hostileAt(7, 1500)
	faint.Class = components.ContactUnidentified
	faint.Strength = 1.4

	st := c.Update(&ai, self, []components.Contact{faint}, 0.05)
	if st.Fire {
		t.Error("fired on an unidentified contact")
	}
	if !ai.WantPing {
		t.Fatal("WantPing = false, want a ping to classify the target")
	}
	wait := ai.WeaponTimer
	if want := max(ai.Tunables.ReactionLatency, config.Cfg().AI.DecisionInterval); wait != want {
		t.Errorf("WeaponTimer = %v, want %v", wait, want)
	}

	// No second ping until the timer runs out.
	ai.WantPing = false
	c.Update(&ai, self, []components.Contact{faint}, 0.05)
	if ai.WantPing {
		t.Error("pinged again before the timer elapsed")
	}

	// Once the ping classifies the target, the next free window fires.
	fired := false
	for elapsed := 0.0; elapsed < wait+0.5 && !fired; elapsed += 0.05 {
		fired = c.Update(&ai, self, []components.Contact{hostileAt(7, 1500)}, 0.05).Fire
	}
	if !fired {
		t.Error("never fired after the target was identified")
	}
}

func TestAIEscortFollowsLeader(t *testing.T) {
	leader := VesselSnapshot{VesselID: 3, TeamID: 1, Pos: r3.Vec{Y: -100, Z: 5000}}
	c, ai, self := newTestAI(mapLookup{3: leader})
	ai.Mode = components.AIEscorting
	ai.LeaderID, ai.HasLeader = 3, true
	ai.FormationOffset = FormationOffset(0)

	st := c.Update(&ai, self, nil, 0.05)
	if st.SpeedFraction != config.Cfg().AI.EngageSpeed {
		t.Errorf("SpeedFraction = %v, want catch-up speed %v", st.SpeedFraction, config.Cfg().AI.EngageSpeed)
	}

	// A lost leader drops the escort back to patrolling.
	c2, ai2, _ := newTestAI(mapLookup{})
	ai2.Mode = components.AIEscorting
	ai2.LeaderID, ai2.HasLeader = 3, true
	c2.Update(&ai2, self, nil, 0.05)
	if ai2.Mode != components.AIPatrolling || ai2.HasLeader {
		t.Errorf("Mode = %v, HasLeader = %v, want patrolling, false", ai2.Mode, ai2.HasLeader)
	}
}

func TestSweepDue(t *testing.T) {
	c, ai, _ := newTestAI(nil)
	interval := config.Cfg().AI.SweepInterval
	n := 0
	for i := 0; i < 100; i++ {
		if c.SweepDue(&ai, interval/10) {
			n++
		}
	}
	if n < 9 || n > 10 {
		t.Errorf("sweeps over 10 intervals = %d, want 9 or 10", n)
	}
}
