package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/silentrun/events"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []float64{5}, Distribution{Mean: 5, Min: 5, P90: 5}},
		{"unsorted", []float64{4, 1, 3, 2}, Distribution{Mean: 2.5, Std: math.Sqrt(1.25), Min: 1, P90: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDistribution(tt.values)
			if math.Abs(got.Mean-tt.want.Mean) > 1e-9 || math.Abs(got.Std-tt.want.Std) > 1e-9 ||
				got.Min != tt.want.Min || got.P90 != tt.want.P90 {
				t.Errorf("ComputeDistribution(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

func TestComputeDistributionDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeDistribution(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered to %v", values)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10, 0.5)
	if c.WindowDurationTicks() != 20 {
		t.Fatalf("WindowDurationTicks() = %d, want 20", c.WindowDurationTicks())
	}

	c.Trigger(events.Event{Type: events.TorpedoLaunch})
	c.Trigger(events.Event{Type: events.TorpedoLaunch})
	c.Trigger(events.Event{Type: events.PingFired})
	c.Trigger(events.Event{Type: events.VesselDestroyed})
	c.RecordHit(60)
	c.RecordLock()
	c.RecordNewContacts(3)

	if c.ShouldFlush(19) {
		t.Error("ShouldFlush(19) = true before the window closed")
	}
	if !c.ShouldFlush(20) {
		t.Error("ShouldFlush(20) = false at the window end")
	}

	s := c.Flush(20, WindowSample{VesselsAlive: 2, PlayerAlive: true, HullFractions: []float64{1, 0.5}})
	if s.TorpedoesFired != 2 || s.Hits != 1 || s.HitRate != 0.5 {
		t.Errorf("fired/hits/rate = %d/%d/%v, want 2/1/0.5", s.TorpedoesFired, s.Hits, s.HitRate)
	}
	if s.Pings != 1 || s.Kills != 1 || s.Locks != 1 || s.NewContacts != 3 || s.DamageDealt != 60 {
		t.Errorf("counters = %+v", s)
	}
	if s.SimTimeSec != 10 || s.HullMin != 0.5 || s.HullMean != 0.75 {
		t.Errorf("sim time %v, hull min %v, hull mean %v", s.SimTimeSec, s.HullMin, s.HullMean)
	}

	next := c.Flush(40, WindowSample{})
	if next.TorpedoesFired != 0 || next.Hits != 0 || next.WindowStartTick != 20 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestTeeSkipsNil(t *testing.T) {
	var rec events.Recorder
	c := NewCollector(1, 1)
	tee := Tee{nil, &rec, c}
	tee.Trigger(events.Event{Type: events.KnuckleFormed})
	if len(rec.Events) != 1 {
		t.Errorf("recorder got %d events, want 1", len(rec.Events))
	}
	if s := c.Flush(1, WindowSample{}); s.Knuckles != 1 {
		t.Errorf("Knuckles = %d, want 1", s.Knuckles)
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(2, "attack", 1, false, 0)
	lt.Register(1, "attack", 0, true, 0)

	lt.RecordFire(1)
	lt.RecordHit(1, 2, 80)
	lt.RecordHit(0, 2, 150) // mine
	lt.UpdateSurvival(1)
	lt.RecordKill(1, 2, "implosion")
	lt.UpdateSurvival(1)

	recs := lt.Records()
	if len(recs) != 2 || recs[0].VesselID != 1 {
		t.Fatalf("Records() = %+v, want two sorted records", recs)
	}
	p, v := recs[0], recs[1]
	if p.TorpedoesFired != 1 || p.Hits != 1 || p.Kills != 1 || p.DamageDealt != 80 {
		t.Errorf("attacker record = %+v", p)
	}
	if !v.Destroyed || v.Cause != "implosion" || v.DamageTaken != 230 || v.SurvivalTimeSec != 1 {
		t.Errorf("victim record = %+v", v)
	}
	if p.SurvivalTimeSec != 2 {
		t.Errorf("attacker survival = %v, want 2", p.SurvivalTimeSec)
	}
}
