package systems

import (
	"slices"
	"testing"

	"github.com/pthm-cable/silentrun/telemetry"
)

func TestRegistryTickOrder(t *testing.T) {
	reg := NewSystemRegistry()
	want := []string{
		telemetry.PhaseCommands,
		telemetry.PhaseSignature,
		telemetry.PhaseDetection,
		telemetry.PhaseAI,
		telemetry.PhaseLock,
		telemetry.PhaseMotion,
		telemetry.PhaseTorpedoes,
		telemetry.PhaseHits,
		telemetry.PhaseDamageControl,
		telemetry.PhaseCleanup,
		telemetry.PhaseTelemetry,
	}
	if got := reg.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if len(reg.All()) != len(want) {
		t.Errorf("All() = %d systems, want %d", len(reg.All()), len(want))
	}
}

func TestRegistryGetName(t *testing.T) {
	reg := NewSystemRegistry()
	tests := []struct {
		id   string
		want string
	}{
		{"lock", "Weapon Lock"},
		{"damageControl", "Damage Control"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := reg.GetName(tt.id); got != tt.want {
			t.Errorf("GetName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
