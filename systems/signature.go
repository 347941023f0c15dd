package systems

import (
	"math"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// SignatureModel computes acoustic output from motion, masking and timed events.
type SignatureModel struct {
	cfg config.SignatureConfig
}

// NewSignatureModel creates a signature model from config.
func NewSignatureModel(cfg config.SignatureConfig) SignatureModel {
	return SignatureModel{cfg: cfg}
}

// Compute returns the current signature. Terms are applied in a fixed order:
// additive base, speed, cavitation, supercavitation and turn terms, then
// multiplicative thermal, seafloor, knuckle, launch, ping and weapon-fire factors.
func (m SignatureModel) Compute(spec config.ClassSpec, kin *components.Kinematics, sig *components.Signature) float64 {
	c := m.cfg
	speed := math.Abs(kin.Speed)

	s := spec.BaseSignature
	s += c.SpeedFactor * speed
	if speed > spec.CavitationSpeed {
		s += spec.CavitationJump
	}
	if sig.Supercavitating {
		s += c.SupercavitationBoost
	}
	s += math.Min(c.TurnFactor*math.Abs(rad2deg(kin.TurnRate)), c.TurnCap)

	if sig.InThermalLayer {
		s *= 1 - c.ThermalReduction
	}
	if sig.NearSeafloor {
		s *= 1 - c.SeafloorReduction
	}
	if f := sig.Modifiers[components.ModKnuckle].Fraction(); f > 0 {
		s *= 1 - c.KnuckleReduction*f
	}
	if f := sig.Modifiers[components.ModLaunchSpike].Fraction(); f > 0 {
		s *= 1 + (c.LaunchSpike-1)*f
	}
	if f := sig.Modifiers[components.ModPing].Fraction(); f > 0 {
		s *= 1 + c.PingBoost*f
	}
	if f := sig.Modifiers[components.ModWeaponFire].Fraction(); f > 0 {
		s *= 1 + c.FireBoost*f
	}

	if s < 0 || math.IsNaN(s) {
		s = 0
	}
	return s
}

// Update recomputes masking flags against the terrain and stores the new signature.
func (m SignatureModel) Update(spec config.ClassSpec, kin *components.Kinematics, sig *components.Signature, terrain Terrain) {
	m.UpdateMasking(spec, kin, sig, terrain)
	sig.Current = m.Compute(spec, kin, sig)
}

// UpdateMasking sets the thermal, seafloor and supercavitation flags.
func (m SignatureModel) UpdateMasking(spec config.ClassSpec, kin *components.Kinematics, sig *components.Signature, terrain Terrain) {
	depth := kin.Depth()
	sig.Supercavitating = math.Abs(kin.Speed) >= m.cfg.SupercavitationFrac*spec.MaxSpeed
	if terrain == nil {
		sig.InThermalLayer = false
		sig.NearSeafloor = false
		return
	}
	layer := terrain.ThermalLayerDepth(kin.Pos.X, kin.Pos.Z)
	sig.InThermalLayer = math.Abs(depth-layer) <= m.cfg.ThermalBand
	seabed := terrain.SeabedDepth(kin.Pos.X, kin.Pos.Z)
	sig.NearSeafloor = seabed-depth < m.cfg.SeafloorClearance
}

// Trigger starts (or restarts) a timed modifier with its configured window.
func (m SignatureModel) Trigger(sig *components.Signature, kind components.ModifierKind) {
	var d float64
	switch kind {
	case components.ModWeaponFire:
		d = m.cfg.FireWindow
	case components.ModLaunchSpike:
		d = m.cfg.LaunchDecay
	case components.ModPing:
		d = m.cfg.PingWindow
	case components.ModKnuckle:
		d = m.cfg.KnuckleWindow
	default:
		return
	}
	sig.Modifiers[kind] = components.TimedModifier{Active: d > 0, Duration: d}
}

// AdvanceModifiers ages every active modifier and expires finished ones.
func AdvanceModifiers(sig *components.Signature, dt float64) {
	for i := range sig.Modifiers {
		mod := &sig.Modifiers[i]
		if !mod.Active {
			continue
		}
		mod.Elapsed += dt
		if mod.Elapsed >= mod.Duration {
			*mod = components.TimedModifier{}
		}
	}
	if sig.KnuckleCooldown > 0 {
		sig.KnuckleCooldown = math.Max(0, sig.KnuckleCooldown-dt)
	}
}
