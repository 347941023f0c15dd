package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// Countermeasures creates and ages knuckles, noisemakers and mines.
type Countermeasures struct {
	cfg config.CountermeasureConfig
}

// NewCountermeasures creates the countermeasure system.
func NewCountermeasures(cfg config.CountermeasureConfig) Countermeasures {
	return Countermeasures{cfg: cfg}
}

// KnuckleDue reports whether a hard high-speed turn forms a knuckle this tick,
// and starts the cooldown when it does.
func (c Countermeasures) KnuckleDue(kin *components.Kinematics, sig *components.Signature) bool {
	if sig.KnuckleCooldown > 0 {
		return false
	}
	if math.Abs(kin.Speed) < c.cfg.KnuckleMinSpeed || math.Abs(rad2deg(kin.TurnRate)) < c.cfg.KnuckleMinTurnRate {
		return false
	}
	sig.KnuckleCooldown = c.cfg.KnuckleCooldown
	return true
}

// Knuckle returns a knuckle left in the water at pos.
func (c Countermeasures) Knuckle(id, owner uint32, team int, pos r3.Vec) components.Countermeasure {
	return components.Countermeasure{
		ID:        id,
		Kind:      components.CMKnuckle,
		OwnerID:   owner,
		Team:      team,
		Pos:       pos,
		Remaining: c.cfg.KnuckleLifetime,
		Lifetime:  c.cfg.KnuckleLifetime,
		Strength:  c.cfg.KnuckleStrength,
		Noise:     c.cfg.KnuckleNoise,
	}
}

// Noisemaker returns a deployed noisemaker at pos.
func (c Countermeasures) Noisemaker(id, owner uint32, team int, pos r3.Vec) components.Countermeasure {
	return components.Countermeasure{
		ID:        id,
		Kind:      components.CMNoisemaker,
		OwnerID:   owner,
		Team:      team,
		Pos:       pos,
		Remaining: c.cfg.NoisemakerLifetime,
		Lifetime:  c.cfg.NoisemakerLifetime,
		Strength:  c.cfg.NoisemakerStrength,
		Noise:     c.cfg.NoisemakerNoise,
	}
}

// Mine returns a neutral, permanent mine at pos.
func (c Countermeasures) Mine(id uint32, pos r3.Vec) components.Countermeasure {
	return components.Countermeasure{
		ID:       id,
		Kind:     components.CMMine,
		Pos:      pos,
		Strength: c.cfg.MineStrength,
		Noise:    c.cfg.MineNoise,
	}
}

// MineTriggered reports whether a vessel at pos sets off the mine.
func (c Countermeasures) MineTriggered(cm *components.Countermeasure, pos r3.Vec) bool {
	return cm.Kind == components.CMMine && distance(cm.Pos, pos) <= c.cfg.MineTriggerRadius
}

// MineDamage returns the damage a mine deals.
func (c Countermeasures) MineDamage() float64 {
	return c.cfg.MineDamage
}

// Decay ages a countermeasure and reports whether it has expired.
func Decay(cm *components.Countermeasure, dt float64) bool {
	if cm.Lifetime <= 0 {
		return false
	}
	cm.Remaining = math.Max(0, cm.Remaining-dt)
	return cm.Remaining <= 0
}
