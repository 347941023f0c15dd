package events

import "testing"

func TestBusFlushOrder(t *testing.T) {
	rec := &Recorder{}
	bus := NewBus(rec)

	bus.Emit(Event{Type: PingFired, Tick: 1})
	bus.Emit(Event{Type: Explosion, Tick: 1})
	if bus.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", bus.Pending())
	}
	if len(rec.Events) != 0 {
		t.Errorf("sink received %d events before flush, want 0", len(rec.Events))
	}

	out := bus.Flush()
	if len(out) != 2 || out[0].Type != PingFired || out[1].Type != Explosion {
		t.Errorf("Flush() = %v, want [ping_fired explosion]", out)
	}
	if bus.Pending() != 0 {
		t.Errorf("Pending() after flush = %d, want 0", bus.Pending())
	}
	if rec.Count(Explosion) != 1 {
		t.Errorf("Count(Explosion) = %d, want 1", rec.Count(Explosion))
	}
}

func TestNilSink(t *testing.T) {
	bus := NewBus(nil)
	bus.Emit(Event{Type: HullStress})
	if got := len(bus.Flush()); got != 1 {
		t.Errorf("Flush() returned %d events, want 1", got)
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{PingFired, "ping_fired"},
		{KnuckleFormed, "knuckle_formed"},
		{NoisemakerDeployed, "noisemaker_deployed"},
		{Type(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestSinkFunc(t *testing.T) {
	var got []Type
	bus := NewBus(SinkFunc(func(e Event) { got = append(got, e.Type) }))
	bus.Emit(Event{Type: TorpedoLaunch})
	bus.Flush()
	if len(got) != 1 || got[0] != TorpedoLaunch {
		t.Errorf("SinkFunc received %v, want [torpedo_launch]", got)
	}
}
