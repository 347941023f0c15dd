package systems

import (
	"math"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/config"
)

// ReticleContext is everything the reticle lock needs for one tick.
type ReticleContext struct {
	Input       components.ReticleInput
	Distance    float64 // to the reticle target
	SincePing   float64 // seconds since the last active ping
	HasPinged   bool
	PingCadence float64 // seconds between the operator's pings, 0 if unknown
}

// LockSystem accrues and decays weapon lock progress.
type LockSystem struct {
	cfg         config.LockConfig
	torpedoes   [components.TorpedoTypeCount]config.TorpedoConfig
	baseCadence float64
}

// NewLockSystem creates a lock system. baseCadence is the ping cadence that
// earns the full sonar-assist bonus.
func NewLockSystem(cfg config.LockConfig, torpedoes [4]config.TorpedoConfig, baseCadence float64) LockSystem {
	return LockSystem{cfg: cfg, torpedoes: torpedoes, baseCadence: baseCadence}
}

// SonarAssist returns the reticle-lock bonus from a recent ping.
func (s LockSystem) SonarAssist(ctx ReticleContext) float64 {
	if !ctx.HasPinged || ctx.SincePing > s.cfg.PingGrace {
		return 0
	}
	scale := 1.0
	if ctx.PingCadence > 0 && s.baseCadence > 0 {
		scale = math.Min(1, s.baseCadence/ctx.PingCadence)
	}
	return s.cfg.SonarAssist * scale
}

// UpdateReticleLock accrues progress while the target sits inside the reticle
// and within lock distance, and decays it otherwise.
func (s LockSystem) UpdateReticleLock(lock *components.LockState, ctx ReticleContext, dt float64) {
	if lock.Mode == components.LockContact {
		return
	}
	in := ctx.Input
	holding := in.HasTarget && in.Offset < s.cfg.ReticleRadius && ctx.Distance <= s.cfg.LockDistance

	if !holding {
		lock.Progress = clamp01(lock.Progress - s.cfg.DecayRate*dt)
		lock.Locked = false
		if lock.Progress == 0 {
			lock.Reset()
		}
		return
	}

	if lock.HasTarget && lock.TargetID != in.TargetID {
		lock.Reset()
	}
	lock.Mode = components.LockReticle
	lock.TargetID = in.TargetID
	lock.HasTarget = true

	proximity := 1 - in.Offset/s.cfg.ReticleRadius
	rate := (s.cfg.BaseRate + s.SonarAssist(ctx)) * proximity * s.cfg.GunnerySkill
	lock.Progress = clamp01(lock.Progress + rate*dt)
	lock.Elapsed += dt
	lock.Locked = lock.Progress >= s.cfg.LockedThreshold
}

// RequiredTime returns the contact-lock time for a torpedo type.
func (s LockSystem) RequiredTime(t components.TorpedoType, mode components.SonarMode, offset, strength float64) float64 {
	tc := s.torpedoes[t]
	base := tc.LockTimePassive
	if mode == components.SonarActive {
		base = tc.LockTimeActive
	}
	gunnery := s.cfg.GunnerySkill
	if gunnery <= 0 {
		gunnery = 1
	}
	return base * (1 + s.cfg.CenterDistanceFactor*offset) / (0.5 + strength/10) / gunnery
}

// BeginContactLock starts a lock on a selected contact, discarding any previous lock.
func (s LockSystem) BeginContactLock(lock *components.LockState, c components.Contact, t components.TorpedoType, offset float64) {
	lock.Reset()
	lock.Mode = components.LockContact
	lock.TargetID = c.TargetID
	lock.HasTarget = true
	lock.Required = s.RequiredTime(t, c.Mode, offset, c.Strength)
}

// UpdateContactLock advances a contact lock. Losing the contact or leaving
// lock distance resets it at once.
func (s LockSystem) UpdateContactLock(lock *components.LockState, contacts []components.Contact, dt float64) {
	if lock.Mode != components.LockContact {
		return
	}
	c, ok := findContact(contacts, lock.TargetID)
	if !ok || c.Distance > s.cfg.LockDistance {
		lock.Reset()
		return
	}
	lock.Elapsed += dt
	if lock.Required <= 0 {
		lock.Progress = 1
	} else {
		lock.Progress = clamp01(lock.Elapsed / lock.Required)
	}
	lock.Locked = lock.Progress >= s.cfg.LockedThreshold
}
