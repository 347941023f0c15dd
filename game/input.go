package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/events"
	"github.com/pthm-cable/silentrun/systems"
)

var (
	// ErrNoPlayer is returned for operator commands when no player vessel is afloat.
	ErrNoPlayer = errors.New("no player vessel")
	// ErrUnknownContact is returned when selecting a contact the sensor does not hold.
	ErrUnknownContact = errors.New("no such contact")
	// ErrUnknownVessel is returned when a command names a vessel that does not exist.
	ErrUnknownVessel = errors.New("no such vessel")
)

type commandKind uint8

const (
	cmdHelm commandKind = iota
	cmdPing
	cmdFire
	cmdReinforce
	cmdSelectContact
	cmdReticle
	cmdTowedArray
	cmdNoisemaker
	cmdCollision
)

// command is one queued operator or collision-layer request.
type command struct {
	kind    commandKind
	vessel  uint32
	slot    int
	facing  components.Facing
	speed   float64
	turn    float64
	depth   float64
	target  uint32
	reticle components.ReticleInput
	on      bool
	impact  float64
}

// Helm sets the player's target speed (knots), turn intent [-1, 1] and target depth.
func (g *Simulation) Helm(speed, turn, depth float64) {
	g.commands = append(g.commands, command{kind: cmdHelm, speed: speed, turn: turn, depth: depth})
}

// Ping requests an active sonar ping from the player this tick.
func (g *Simulation) Ping() {
	g.commands = append(g.commands, command{kind: cmdPing})
}

// Fire requests a launch from one of the player's weapon slots.
func (g *Simulation) Fire(slot int) {
	g.commands = append(g.commands, command{kind: cmdFire, slot: slot})
}

// Reinforce requests a fast-armor reinforcement of one facing.
func (g *Simulation) Reinforce(f components.Facing) {
	g.commands = append(g.commands, command{kind: cmdReinforce, facing: f})
}

// SelectContact selects a held contact and starts a contact lock on it.
// Selecting ID 0 clears the selection.
func (g *Simulation) SelectContact(id uint32) {
	g.commands = append(g.commands, command{kind: cmdSelectContact, target: id})
}

// SetReticle supplies this tick's reticle aim.
func (g *Simulation) SetReticle(in components.ReticleInput) {
	g.commands = append(g.commands, command{kind: cmdReticle, reticle: in})
}

// SetTowedArray deploys or recovers the player's towed array.
func (g *Simulation) SetTowedArray(on bool) {
	g.commands = append(g.commands, command{kind: cmdTowedArray, on: on})
}

// DeployNoisemaker drops a noisemaker at the player's position.
func (g *Simulation) DeployNoisemaker() {
	g.commands = append(g.commands, command{kind: cmdNoisemaker})
}

// ApplyCollision reports a collision impact (m/s) on any vessel. The hull
// damage is applied with the tick's other hits.
func (g *Simulation) ApplyCollision(vesselID uint32, impactSpeed float64) {
	g.commands = append(g.commands, command{kind: cmdCollision, vessel: vesselID, impact: impactSpeed})
}

// Refused returns the command refusals from the last tick.
func (g *Simulation) Refused() []error {
	return g.refused
}

// applyCommands drains the queue in order. It returns whether the player pinged.
func (g *Simulation) applyCommands() (pinged bool) {
	g.refused = g.refused[:0]
	queue := g.commands
	g.commands = nil

	for _, c := range queue {
		if c.kind == cmdCollision {
			v, ok := g.vesselByID(c.vessel)
			if !ok {
				g.refuse("collision", ErrUnknownVessel, "vessel", c.vessel)
				continue
			}
			if dmg := g.damage.CollisionDamage(c.impact); dmg > 0 {
				g.hits = append(g.hits, pendingHit{victim: v.id.ID, amount: dmg, direct: true, cause: "collision"})
			}
			continue
		}

		p, ok := g.vesselByID(g.playerID)
		if !ok || p.hull.Destroyed {
			g.refuse("command", ErrNoPlayer, "kind", int(c.kind))
			continue
		}

		switch c.kind {
		case cmdHelm:
			p.kin.TargetSpeed = c.speed
			p.kin.TurnIntent = c.turn
			p.kin.TargetDepth = c.depth
		case cmdPing:
			pinged = true
		case cmdFire:
			if err := g.fire(p, c.slot); err != nil {
				g.refused = append(g.refused, err)
			}
		case cmdReinforce:
			if err := g.damage.Reinforce(p.hull, c.facing); err != nil {
				g.refuse("reinforce", err, "facing", c.facing.String())
			}
		case cmdSelectContact:
			g.selectContact(p, c.target)
		case cmdReticle:
			p.fc.Reticle = c.reticle
		case cmdTowedArray:
			p.sensor.TowedArray = c.on
		case cmdNoisemaker:
			if err := systems.TakeNoisemaker(p.fc); err != nil {
				g.refuse("noisemaker", err, "vessel", p.id.ID)
				continue
			}
			g.dropCountermeasure(g.countermeasures.Noisemaker(g.newID(), p.id.ID, p.id.Team, p.kin.Pos))
			g.emit(events.NoisemakerDeployed, p.id.ID, p.kin.Pos, "")
		}
	}
	return pinged
}

// selectContact selects a contact and begins a contact lock sized for the
// first ready guided weapon.
func (g *Simulation) selectContact(p vessel, id uint32) {
	if id == 0 {
		p.sensor.HasSelection = false
		p.sensor.SelectedID = 0
		if p.fc.Lock.Mode == components.LockContact {
			p.fc.Lock.Reset()
		}
		return
	}
	c, ok := p.sensor.Find(id)
	if !ok {
		g.refuse("select contact", ErrUnknownContact, "contact", id)
		return
	}
	p.sensor.SelectedID = id
	p.sensor.HasSelection = true

	offset := 0.0
	if p.fc.Reticle.HasTarget && p.fc.Reticle.TargetID == id {
		offset = p.fc.Reticle.Offset
	}
	g.lock.BeginContactLock(&p.fc.Lock, c, lockWeapon(p.fc), offset)
}

// lockWeapon picks the torpedo type a lock is timed for.
func lockWeapon(fc *components.FireControl) components.TorpedoType {
	if slot, ok := systems.ReadySlot(fc, components.TorpedoType.Guided); ok {
		return fc.Slots[slot].Type
	}
	for _, s := range fc.Slots {
		if s.Type.Guided() {
			return s.Type
		}
	}
	return components.TorpLight
}

// fire validates and launches a weapon from a slot. Refusals are logged and returned.
func (g *Simulation) fire(v vessel, slot int) error {
	weaponsUp := !v.hull.Systems[components.SystemWeapons].Disabled()
	t, err := g.armory.CheckFire(v.fc, slot, weaponsUp)
	if err != nil {
		slog.Info("fire refused",
			"vessel", v.id.ID,
			"slot", slot,
			"type", t.String(),
			"error", err,
		)
		return err
	}

	target, hasTarget := v.fc.Lock.TargetID, v.fc.Lock.HasTarget
	g.armory.Release(v.fc, slot)
	torp := g.launch(v, t, target, hasTarget)

	g.signature.Trigger(v.sig, components.ModLaunchSpike)
	g.signature.Trigger(v.sig, components.ModWeaponFire)
	g.lifetime.RecordFire(v.id.ID)
	g.emit(events.TorpedoLaunch, torp.ID, torp.Pos, t.String())
	return nil
}

func (g *Simulation) refuse(what string, err error, args ...any) {
	slog.Info(what+" refused", append(args, "error", err)...)
	g.refused = append(g.refused, err)
}
