package systems

// SystemInfo describes a simulation system for perf reporting.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "acoustics", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so logs and the perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems in tick order.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// Input
	r.Register(SystemInfo{ID: "commands", Name: "Commands", Description: "Applies queued operator commands", Category: "input"})

	// Acoustics and sensing
	r.Register(SystemInfo{ID: "signature", Name: "Signature", Description: "Updates masking and acoustic output", Category: "acoustics"})
	r.Register(SystemInfo{ID: "detection", Name: "Detection", Description: "Runs passive and active sonar sweeps", Category: "acoustics"})

	// AI and fire control
	r.Register(SystemInfo{ID: "ai", Name: "AI", Description: "Runs vessel state machines and steering", Category: "ai"})
	r.Register(SystemInfo{ID: "lock", Name: "Weapon Lock", Description: "Accrues and decays lock progress", Category: "weapons"})

	// Physics
	r.Register(SystemInfo{ID: "motion", Name: "Motion", Description: "Integrates kinematics, grounding and hull stress", Category: "physics"})
	r.Register(SystemInfo{ID: "torpedoes", Name: "Torpedoes", Description: "Guides torpedoes and resolves fusing", Category: "weapons"})

	// Damage
	r.Register(SystemInfo{ID: "hits", Name: "Hits", Description: "Applies queued hits atomically", Category: "damage"})
	r.Register(SystemInfo{ID: "damageControl", Name: "Damage Control", Description: "Redistributes armor, repairs systems, reloads", Category: "damage"})

	// Cleanup
	r.Register(SystemInfo{ID: "cleanup", Name: "Cleanup", Description: "Decays countermeasures and removes dead entities", Category: "core"})
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Flushes events and window stats", Category: "core"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
