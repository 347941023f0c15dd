package components

// ModifierKind identifies a timed signature modifier.
type ModifierKind uint8

const (
	ModWeaponFire ModifierKind = iota
	ModLaunchSpike
	ModPing
	ModKnuckle
	ModifierCount
)

var modifierNames = [ModifierCount]string{"weapon_fire", "launch_spike", "ping", "knuckle"}

func (m ModifierKind) String() string {
	if m >= ModifierCount {
		return "unknown"
	}
	return modifierNames[m]
}

// TimedModifier is a signature effect that fades over Duration seconds.
type TimedModifier struct {
	Active   bool
	Elapsed  float64
	Duration float64
}

// Fraction returns how much of the effect remains, 1 when just triggered and 0 when expired.
func (m TimedModifier) Fraction() float64 {
	if !m.Active || m.Duration <= 0 || m.Elapsed >= m.Duration {
		return 0
	}
	return 1 - m.Elapsed/m.Duration
}

// Signature holds a vessel's acoustic output and masking state.
type Signature struct {
	Current   float64 // never negative
	Modifiers [ModifierCount]TimedModifier

	InThermalLayer  bool
	NearSeafloor    bool
	Supercavitating bool

	KnuckleCooldown float64 // seconds until another knuckle can form
}
