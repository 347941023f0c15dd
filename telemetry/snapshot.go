package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/silentrun/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state between two ticks.
// Restoring it and replaying the same commands reproduces the same run.
type Snapshot struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"` // also seeds the terrain field
	RNG     []byte `json:"rng"`  // marshaled PCG state

	Tick     int32   `json:"tick"`
	SimTime  float64 `json:"sim_time"`
	NextID   uint32  `json:"next_id"`
	PlayerID uint32  `json:"player_id"`

	Vessels         []VesselState               `json:"vessels"`
	Torpedoes       []components.Torpedo        `json:"torpedoes"`
	Countermeasures []components.Countermeasure `json:"countermeasures"`
	Records         []VesselRecord              `json:"records,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// VesselState holds one vessel's components.
type VesselState struct {
	Identity    components.Identity    `json:"identity"`
	Kinematics  components.Kinematics  `json:"kinematics"`
	Hull        components.Hull        `json:"hull"`
	Signature   components.Signature   `json:"signature"`
	Sensor      components.Sensor      `json:"sensor"`
	FireControl components.FireControl `json:"fire_control"`
	AI          *components.AIState    `json:"ai,omitempty"` // nil for the player
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
