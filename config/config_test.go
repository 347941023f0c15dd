package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Physics.DT != 0.05 {
		t.Errorf("Physics.DT = %v, want 0.05", cfg.Physics.DT)
	}
	if len(cfg.Derived.Classes) != len(cfg.Classes) {
		t.Errorf("derived classes = %d, want %d", len(cfg.Derived.Classes), len(cfg.Classes))
	}
	if got := cfg.Class("attack").Armor[0].Threshold; got != 45 {
		t.Errorf("attack fore threshold = %v, want 45", got)
	}
}

func TestHitTableNormalized(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	for f, row := range cfg.Derived.HitTable {
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("hit table %s sums to %v, want 1", FacingNames[f], sum)
		}
	}
}

func TestUnknownClassFallsBack(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	got := cfg.Class("battlecruiser")
	if got.Name != cfg.DefaultClass {
		t.Errorf("Class(unknown).Name = %q, want %q", got.Name, cfg.DefaultClass)
	}
}

func TestClassTurnRateRadians(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := 8 * math.Pi / 180
	if got := cfg.Class("attack").TurnRate; math.Abs(got-want) > 1e-12 {
		t.Errorf("attack TurnRate = %v, want %v", got, want)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "duplicate class",
			yaml: `
classes:
  - {name: a, max_speed: 10, armor: {fore: {}, aft: {}, port: {}, starboard: {}, dorsal: {}, ventral: {}},
     systems: {hull: {hp: 1, threshold: 1}, engines: {hp: 1, threshold: 1}, weapons: {hp: 1, threshold: 1},
               sensors: {hp: 1, threshold: 1}, life_support: {hp: 1, threshold: 1}, navigation: {hp: 1, threshold: 1}}}
  - {name: a, max_speed: 10, armor: {fore: {}, aft: {}, port: {}, starboard: {}, dorsal: {}, ventral: {}},
     systems: {hull: {hp: 1, threshold: 1}, engines: {hp: 1, threshold: 1}, weapons: {hp: 1, threshold: 1},
               sensors: {hp: 1, threshold: 1}, life_support: {hp: 1, threshold: 1}, navigation: {hp: 1, threshold: 1}}}
default_class: a
`,
			wantErr: "duplicate vessel class",
		},
		{
			name:    "unknown default",
			yaml:    "default_class: nope\n",
			wantErr: "default_class",
		},
		{
			name:    "zero dt",
			yaml:    "physics: {dt: 0}\n",
			wantErr: "physics.dt",
		},
		{
			name:    "negative reinforce floor",
			yaml:    "damage: {reinforce_floor: -1}\n",
			wantErr: "damage.reinforce_floor",
		},
		{
			name:    "thermal reduction above one",
			yaml:    "signature: {thermal_reduction: 1.5}\n",
			wantErr: "signature.thermal_reduction",
		},
		{
			name:    "negative knuckle reduction",
			yaml:    "signature: {knuckle_reduction: -0.1}\n",
			wantErr: "signature.knuckle_reduction",
		},
		{
			name:    "wake reduction above one",
			yaml:    "sonar: {wake_reduction: 2}\n",
			wantErr: "sonar.wake_reduction",
		},
		{
			name:    "empty hit table row",
			yaml:    "damage: {hit_table: {fore: {hull: 0}, aft: {hull: 1}, port: {hull: 1}, starboard: {hull: 1}, dorsal: {hull: 1}, ventral: {hull: 1}}}\n",
			wantErr: "no positive weights",
		},
		{
			name: "unknown torpedo type",
			yaml: `
torpedoes:
  - {type: nuclear}
`,
			wantErr: "unknown torpedo type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("sonar:\n  active_range: 9000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Sonar.ActiveRange != 9000 {
		t.Errorf("ActiveRange = %v, want 9000", cfg.Sonar.ActiveRange)
	}
	// Unset fields keep their defaults.
	if cfg.Sonar.PassiveRange != 3500 {
		t.Errorf("PassiveRange = %v, want 3500", cfg.Sonar.PassiveRange)
	}
}

func TestLoadValidatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("signature:\n  seafloor_reduction: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "signature.seafloor_reduction") {
		t.Errorf("Load error = %v, want seafloor_reduction range error", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing file) error = nil, want read error")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written) error: %v", err)
	}
	if again.Derived.Default != cfg.Derived.Default {
		t.Errorf("default class index = %d, want %d", again.Derived.Default, cfg.Derived.Default)
	}
}
