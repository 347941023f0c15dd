package telemetry

import "sort"

// VesselRecord tracks one vessel's combat statistics over its lifetime.
type VesselRecord struct {
	VesselID        uint32  `json:"vessel_id"`
	Class           string  `json:"class"`
	Team            int     `json:"team"`
	Player          bool    `json:"player"`
	SpawnTick       int32   `json:"spawn_tick"`
	SurvivalTimeSec float64 `json:"survival_time_sec"`

	TorpedoesFired int     `json:"torpedoes_fired"`
	Hits           int     `json:"hits"`
	Kills          int     `json:"kills"`
	DamageDealt    float64 `json:"damage_dealt"`
	DamageTaken    float64 `json:"damage_taken"`

	Destroyed bool   `json:"destroyed"`
	Cause     string `json:"cause,omitempty"`
}

// LifetimeTracker manages per-vessel combat records.
// Records of destroyed vessels are kept so the run can be summarized.
type LifetimeTracker struct {
	records map[uint32]*VesselRecord
}

// NewLifetimeTracker creates an empty tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{records: make(map[uint32]*VesselRecord)}
}

// Register starts a record for a spawned vessel.
func (lt *LifetimeTracker) Register(id uint32, class string, team int, player bool, spawnTick int32) {
	lt.records[id] = &VesselRecord{VesselID: id, Class: class, Team: team, Player: player, SpawnTick: spawnTick}
}

// Restore replaces all records, e.g. from a snapshot.
func (lt *LifetimeTracker) Restore(records []VesselRecord) {
	lt.records = make(map[uint32]*VesselRecord, len(records))
	for i := range records {
		r := records[i]
		lt.records[r.VesselID] = &r
	}
}

// Get returns the record for a vessel, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *VesselRecord {
	return lt.records[id]
}

// RecordFire credits a launch to the firing vessel.
func (lt *LifetimeTracker) RecordFire(id uint32) {
	if r := lt.records[id]; r != nil {
		r.TorpedoesFired++
	}
}

// RecordHit credits damage to the attacker and debits it from the victim.
// Either ID may be unknown (mines have no owner).
func (lt *LifetimeTracker) RecordHit(attacker, victim uint32, damage float64) {
	if r := lt.records[attacker]; r != nil {
		r.Hits++
		r.DamageDealt += damage
	}
	if r := lt.records[victim]; r != nil {
		r.DamageTaken += damage
	}
}

// RecordKill credits a kill and marks the victim destroyed.
func (lt *LifetimeTracker) RecordKill(attacker, victim uint32, cause string) {
	if r := lt.records[attacker]; r != nil && attacker != victim {
		r.Kills++
	}
	if r := lt.records[victim]; r != nil {
		r.Destroyed = true
		r.Cause = cause
	}
}

// UpdateSurvival advances survival time for every vessel still afloat.
func (lt *LifetimeTracker) UpdateSurvival(dt float64) {
	for _, r := range lt.records {
		if !r.Destroyed {
			r.SurvivalTimeSec += dt
		}
	}
}

// Records returns a copy of every record sorted by vessel ID.
func (lt *LifetimeTracker) Records() []VesselRecord {
	out := make([]VesselRecord, 0, len(lt.records))
	for _, r := range lt.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VesselID < out[j].VesselID })
	return out
}
