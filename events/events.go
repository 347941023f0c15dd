// Package events carries fire-and-forget audio triggers out of the simulation.
package events

import "gonum.org/v1/gonum/spatial/r3"

// Type identifies an audio trigger.
type Type uint8

const (
	PingFired Type = iota
	KnuckleFormed
	HullStress
	Explosion
	TorpedoLaunch
	SystemDisabled
	VesselDestroyed
	SelfDestruct
	NoisemakerDeployed
)

var typeNames = [...]string{
	"ping_fired",
	"knuckle_formed",
	"hull_stress",
	"explosion",
	"torpedo_launch",
	"system_disabled",
	"vessel_destroyed",
	"self_destruct",
	"noisemaker_deployed",
}

func (t Type) String() string {
	if int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Event is one audio trigger.
type Event struct {
	Type     Type
	Tick     int32
	VesselID uint32 // source vessel or weapon
	Pos      r3.Vec
	Detail   string // e.g. the disabled system name
}

// Sink receives events. Implementations must not block.
type Sink interface {
	Trigger(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Trigger calls f(e).
func (f SinkFunc) Trigger(e Event) { f(e) }

// Bus buffers events raised during a tick and delivers them in order on Flush.
type Bus struct {
	pending []Event
	sink    Sink
}

// NewBus creates a bus delivering to sink. A nil sink discards events.
func NewBus(sink Sink) *Bus {
	return &Bus{pending: make([]Event, 0, 16), sink: sink}
}

// Emit queues an event for the end of the tick.
func (b *Bus) Emit(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return len(b.pending)
}

// Flush delivers queued events to the sink in FIFO order and returns them.
// The returned slice is only valid until the next Emit.
func (b *Bus) Flush() []Event {
	out := b.pending
	if b.sink != nil {
		for _, e := range out {
			b.sink.Trigger(e)
		}
	}
	b.pending = b.pending[:0]
	return out
}

// Recorder is a Sink that keeps every event. Useful in tests and headless runs.
type Recorder struct {
	Events []Event
}

// Trigger appends e.
func (r *Recorder) Trigger(e Event) {
	r.Events = append(r.Events, e)
}

// Count returns how many recorded events have type t.
func (r *Recorder) Count(t Type) int {
	n := 0
	for _, e := range r.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}
