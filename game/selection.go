package game

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/silentrun/components"
)

// Contacts returns a copy of the player's contact table, sorted by target ID.
func (g *Simulation) Contacts() []components.Contact {
	return g.ContactsOf(g.playerID)
}

// ContactsOf returns a copy of any vessel's contact table.
func (g *Simulation) ContactsOf(id uint32) []components.Contact {
	v, ok := g.vesselByID(id)
	if !ok {
		return nil
	}
	return slices.Clone(v.sensor.Contacts)
}

// Lock returns the player's weapon lock.
func (g *Simulation) Lock() (components.LockState, bool) {
	return g.LockOf(g.playerID)
}

// LockOf returns a vessel's weapon lock.
func (g *Simulation) LockOf(id uint32) (components.LockState, bool) {
	v, ok := g.vesselByID(id)
	if !ok {
		return components.LockState{}, false
	}
	return v.fc.Lock, true
}

// SignatureOf returns a vessel's acoustic state.
func (g *Simulation) SignatureOf(id uint32) (components.Signature, bool) {
	v, ok := g.vesselByID(id)
	if !ok {
		return components.Signature{}, false
	}
	return *v.sig, true
}

// HullOf returns a vessel's armor and systems.
func (g *Simulation) HullOf(id uint32) (components.Hull, bool) {
	v, ok := g.vesselByID(id)
	if !ok {
		return components.Hull{}, false
	}
	return *v.hull, true
}

// KinematicsOf returns a vessel's motion state.
func (g *Simulation) KinematicsOf(id uint32) (components.Kinematics, bool) {
	v, ok := g.vesselByID(id)
	if !ok {
		return components.Kinematics{}, false
	}
	return *v.kin, true
}

// FireControlOf returns a copy of a vessel's launchers, inventory and lock.
func (g *Simulation) FireControlOf(id uint32) (components.FireControl, bool) {
	v, ok := g.vesselByID(id)
	if !ok {
		return components.FireControl{}, false
	}
	fc := *v.fc
	fc.Slots = slices.Clone(v.fc.Slots)
	return fc, true
}

// AIStateOf returns an AI vessel's controller state. The player has none.
func (g *Simulation) AIStateOf(id uint32) (components.AIState, bool) {
	v, ok := g.vesselByID(id)
	if !ok || v.ai == nil {
		return components.AIState{}, false
	}
	ai := *v.ai
	ai.Route.Waypoints = slices.Clone(v.ai.Route.Waypoints)
	return ai, true
}

// VesselIDs returns the IDs of every vessel still in the world, sorted.
func (g *Simulation) VesselIDs() []uint32 {
	ids := make([]uint32, 0, len(g.entities))
	for id, e := range g.entities {
		if g.world.Alive(e) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Torpedoes returns every torpedo in the water, sorted by ID.
func (g *Simulation) Torpedoes() []components.Torpedo {
	var out []components.Torpedo
	query := g.torpFilter.Query()
	for query.Next() {
		out = append(out, *query.Get())
	}
	slices.SortFunc(out, func(a, b components.Torpedo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Countermeasures returns every knuckle, noisemaker and mine, sorted by ID.
func (g *Simulation) Countermeasures() []components.Countermeasure {
	var out []components.Countermeasure
	query := g.cmFilter.Query()
	for query.Next() {
		out = append(out, *query.Get())
	}
	slices.SortFunc(out, func(a, b components.Countermeasure) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
