// Package telemetry provides combat statistics, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/silentrun/events"

// Trigger counts an audio event toward the current window, so a Collector can
// be attached to the simulation's event bus as a sink.
func (c *Collector) Trigger(e events.Event) {
	switch e.Type {
	case events.PingFired:
		c.pings++
	case events.KnuckleFormed:
		c.knuckles++
	case events.TorpedoLaunch:
		c.torpedoesFired++
	case events.SelfDestruct:
		c.selfDestructs++
	case events.VesselDestroyed:
		c.kills++
	case events.SystemDisabled:
		c.systemsDisabled++
	case events.NoisemakerDeployed:
		c.noisemakers++
	}
}

// Tee fans events out to several sinks in order. Nil sinks are skipped.
type Tee []events.Sink

// Trigger forwards e to every sink.
func (t Tee) Trigger(e events.Event) {
	for _, s := range t {
		if s != nil {
			s.Trigger(e)
		}
	}
}
