package game

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/components"
	"github.com/pthm-cable/silentrun/events"
	"github.com/pthm-cable/silentrun/systems"
	"github.com/pthm-cable/silentrun/telemetry"
)

// targetTable resolves IDs against the current tick's vessel and decoy snapshots.
type targetTable struct {
	byID    map[uint32]systems.Target
	vessels []systems.Target
	decoys  []systems.Target
}

func newTargetTable() *targetTable {
	return &targetTable{byID: make(map[uint32]systems.Target)}
}

func (t *targetTable) reset() {
	clear(t.byID)
	t.vessels = t.vessels[:0]
	t.decoys = t.decoys[:0]
}

// Lookup implements systems.TargetLookup.
func (t *targetTable) Lookup(id uint32) (systems.Target, bool) {
	target, ok := t.byID[id]
	return target, ok
}

func sortVessels(vs []vessel) {
	slices.SortFunc(vs, func(a, b vessel) int { return cmp.Compare(a.id.ID, b.id.ID) })
}

func snapshotVessel(v vessel) systems.VesselSnapshot {
	return systems.VesselSnapshot{
		VesselID:  v.id.ID,
		TeamID:    v.id.Team,
		Class:     v.id.Class,
		Pos:       v.kin.Pos,
		Vel:       v.kin.Vel,
		HeadingR:  v.kin.Heading,
		Speed:     v.kin.Speed,
		Loudness:  v.sig.Current,
		Health:    v.hull.Health(),
		Destroyed: v.hull.Destroyed,
	}
}

// refreshTargets rebuilds the snapshot table and the detection index from
// live vessels and every countermeasure in the water.
func (g *Simulation) refreshTargets() {
	g.targets.reset()
	for _, v := range g.vessels {
		if v.hull.Destroyed {
			continue
		}
		s := snapshotVessel(v)
		g.targets.vessels = append(g.targets.vessels, s)
		g.targets.byID[s.VesselID] = s
	}

	for _, e := range g.sortedCountermeasures() {
		d := systems.SnapshotDecoy(g.cmMap.Get(e))
		g.targets.decoys = append(g.targets.decoys, d)
		g.targets.byID[d.DecoyID] = d
	}

	g.detection.Index(g.targets.vessels)
}

// decoysFor returns the decoys a team can hear; its own countermeasures are excluded.
func (g *Simulation) decoysFor(team int) []systems.Target {
	out := make([]systems.Target, 0, len(g.targets.decoys))
	for _, t := range g.targets.decoys {
		if d, ok := t.(systems.DecoySnapshot); ok && d.TeamID == team {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (g *Simulation) observer(v vessel) systems.Observer {
	perf := g.damage.PerformanceFactors(v.hull)
	return systems.Observer{
		ID:          v.id.ID,
		Team:        v.id.Team,
		Pos:         v.kin.Pos,
		Heading:     v.kin.Heading,
		Speed:       v.kin.Speed,
		MaxSpeed:    v.spec.MaxSpeed,
		SensorRatio: perf.Sensors,
		TowedArray:  v.sensor.TowedArray,
	}
}

// Step advances the simulation by one tick of dt seconds.
// A non-positive dt runs the tick without advancing time.
func (g *Simulation) Step(dt float64) {
	dt = max(dt, 0)
	now := g.simTime
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseCommands)
	pinged := g.applyCommands()

	g.perfCollector.StartPhase(telemetry.PhaseSignature)
	g.collectVessels()
	for _, v := range g.vessels {
		if !v.hull.Destroyed {
			g.signature.Update(*v.spec, v.kin, v.sig, g.terrain)
		}
	}
	g.refreshTargets()

	g.perfCollector.StartPhase(telemetry.PhaseDetection)
	g.updateDetection(pinged, now, dt)

	g.perfCollector.StartPhase(telemetry.PhaseAI)
	g.updateAI(dt)

	g.perfCollector.StartPhase(telemetry.PhaseLock)
	g.updateLocks(now, dt)

	g.perfCollector.StartPhase(telemetry.PhaseMotion)
	g.updateMotion(dt)
	g.refreshTargets()

	g.perfCollector.StartPhase(telemetry.PhaseTorpedoes)
	g.updateTorpedoes(now, dt)

	g.perfCollector.StartPhase(telemetry.PhaseHits)
	g.applyHits()

	g.perfCollector.StartPhase(telemetry.PhaseDamageControl)
	for _, v := range g.vessels {
		if v.hull.Destroyed {
			continue
		}
		g.damage.Redistribute(v.hull, dt)
		g.damage.Repair(v.hull, dt)
		g.armory.Advance(v.fc, dt)
		systems.AdvanceModifiers(v.sig, dt)
	}

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanup(dt)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.bus.Flush()
	g.lifetime.UpdateSurvival(dt)
	g.tick++
	g.simTime += dt
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updateDetection runs player and AI sonar, then expires stale contacts.
func (g *Simulation) updateDetection(pinged bool, now, dt float64) {
	for _, v := range g.vessels {
		if v.hull.Destroyed {
			continue
		}
		switch {
		case v.id.Player:
			v.sensor.PassiveTimer += dt
			if v.sensor.PassiveTimer >= g.cfg.Sonar.PassiveInterval {
				v.sensor.PassiveTimer -= g.cfg.Sonar.PassiveInterval
				g.sweep(v, components.SonarPassive, now)
			}
			if pinged {
				g.ping(v, now)
			}
		case v.ai != nil:
			if g.ai.SweepDue(v.ai, dt) {
				g.sweep(v, components.SonarPassive, now)
			}
			if v.ai.WantPing {
				v.ai.WantPing = false
				g.ping(v, now)
			}
		}
		g.detection.Expire(v.sensor, now)
	}
}

// sweep runs one sonar sweep for v and merges the result.
func (g *Simulation) sweep(v vessel, mode components.SonarMode, now float64) {
	obs := g.observer(v)
	sensitivity := g.detection.ActiveSensitivity()
	if mode == components.SonarPassive {
		sensitivity = g.detection.PassiveSensitivity(v.kin.Speed, v.spec.MaxSpeed, v.sensor.TowedArray)
	}
	fresh := g.detection.Sweep(obs, mode, sensitivity, g.decoysFor(v.id.Team), now)

	added := 0
	for _, c := range fresh {
		if _, ok := v.sensor.Find(c.TargetID); !ok {
			added++
		}
	}
	g.detection.Merge(v.sensor, fresh, mode, now)
	if added > 0 {
		g.collector.RecordNewContacts(added)
	}
}

// ping fires an active sweep and tracks the operator's cadence.
func (g *Simulation) ping(v vessel, now float64) {
	g.sweep(v, components.SonarActive, now)
	g.signature.Trigger(v.sig, components.ModPing)
	if v.sensor.HasPinged {
		v.sensor.PingCadence = now - v.sensor.LastPingAt
	}
	v.sensor.LastPingAt = now
	v.sensor.HasPinged = true
	g.emit(events.PingFired, v.id.ID, v.kin.Pos, "")
}

// updateAI turns controller output into helm setpoints and fire requests.
func (g *Simulation) updateAI(dt float64) {
	for _, v := range g.vessels {
		if v.ai == nil || v.hull.Destroyed {
			continue
		}
		perf := g.damage.PerformanceFactors(v.hull)
		view := systems.VesselView{
			ID:        v.id.ID,
			Team:      v.id.Team,
			Pos:       v.kin.Pos,
			Heading:   v.kin.Heading,
			Speed:     v.kin.Speed,
			MaxSpeed:  v.spec.MaxSpeed * perf.Engine,
			Health:    v.hull.Health(),
			TestDepth: v.spec.TestDepth,
		}
		st := g.ai.Update(v.ai, view, v.sensor.Contacts, dt)

		systems.SteerToHeading(v.kin, *v.spec, st.TargetHeading)
		v.kin.TargetSpeed = st.SpeedFraction * v.spec.MaxSpeed
		v.kin.TargetDepth = st.TargetDepth

		// The contact lock follows the engagement target.
		lock := &v.fc.Lock
		if v.ai.Mode == components.AIEngaging && v.ai.HasTarget {
			if lock.Mode != components.LockContact || lock.TargetID != v.ai.TargetID {
				if c, ok := v.sensor.Find(v.ai.TargetID); ok {
					g.lock.BeginContactLock(lock, c, lockWeapon(v.fc), 0)
				}
			}
		} else if lock.Mode != components.LockNone {
			lock.Reset()
		}

		if st.Fire {
			g.aiFire(v, st.FireTarget)
		}
	}
}

// aiFire launches a guided weapon at target once the lock on it is complete.
func (g *Simulation) aiFire(v vessel, target uint32) {
	slot, ok := systems.ReadySlot(v.fc, components.TorpedoType.Guided)
	if !ok {
		slog.Info("fire refused", "vessel", v.id.ID, "target", target, "error", systems.ErrSlotNotReady)
		return
	}
	if v.fc.Lock.TargetID != target {
		slog.Info("fire refused", "vessel", v.id.ID, "target", target, "error", systems.ErrNoFiringSolution)
		return
	}
	g.fire(v, slot)
}

// updateLocks advances contact locks for every vessel and the operator's reticle lock.
func (g *Simulation) updateLocks(now, dt float64) {
	for _, v := range g.vessels {
		if v.hull.Destroyed {
			continue
		}
		lock := &v.fc.Lock
		was := lock.Locked
		g.lock.UpdateContactLock(lock, v.sensor.Contacts, dt)

		if v.id.Player && lock.Mode != components.LockContact {
			ctx := systems.ReticleContext{
				Input:       v.fc.Reticle,
				SincePing:   now - v.sensor.LastPingAt,
				HasPinged:   v.sensor.HasPinged,
				PingCadence: v.sensor.PingCadence,
			}
			if t, ok := g.targets.Lookup(v.fc.Reticle.TargetID); ok && v.fc.Reticle.HasTarget {
				ctx.Distance = r3.Norm(r3.Sub(t.Position(), v.kin.Pos))
			} else {
				ctx.Input.HasTarget = false
			}
			g.lock.UpdateReticleLock(lock, ctx, dt)
		}

		if lock.Locked && !was {
			g.collector.RecordLock()
			slog.Debug("weapon lock", "vessel", v.id.ID, "target", lock.TargetID)
		}
	}
}

// updateMotion integrates kinematics and queues environmental damage,
// knuckles and mine strikes.
func (g *Simulation) updateMotion(dt float64) {
	var drops []components.Countermeasure
	for _, v := range g.vessels {
		if v.hull.Destroyed {
			continue
		}
		perf := g.damage.PerformanceFactors(v.hull)
		g.motion.Integrate(*v.spec, v.kin, perf, dt)

		seabed := g.terrain.SeabedDepth(v.kin.Pos.X, v.kin.Pos.Z)
		if impact, hit := systems.Ground(v.kin, seabed); hit {
			if dmg := g.damage.CollisionDamage(impact); dmg > 0 {
				g.hits = append(g.hits, pendingHit{victim: v.id.ID, amount: dmg, direct: true, cause: "grounding"})
			}
		}

		depth := v.kin.Depth()
		if systems.HullStress(*v.spec, v.hull, depth) {
			g.emit(events.HullStress, v.id.ID, v.kin.Pos, "")
		}
		if dmg := g.damage.CrushDamage(*v.spec, depth, dt); dmg > 0 {
			g.hits = append(g.hits, pendingHit{victim: v.id.ID, amount: dmg, direct: true, cause: "crush_depth"})
		}

		if g.countermeasures.KnuckleDue(v.kin, v.sig) {
			drops = append(drops, g.countermeasures.Knuckle(g.newID(), v.id.ID, v.id.Team, v.kin.Pos))
			g.signature.Trigger(v.sig, components.ModKnuckle)
			g.emit(events.KnuckleFormed, v.id.ID, v.kin.Pos, "")
		}
	}

	var spent []ecs.Entity
	for _, e := range g.sortedCountermeasures() {
		cm := g.cmMap.Get(e)
		if cm.Kind != components.CMMine {
			continue
		}
		for _, v := range g.vessels {
			if v.hull.Destroyed || !g.countermeasures.MineTriggered(cm, v.kin.Pos) {
				continue
			}
			g.hits = append(g.hits, pendingHit{
				victim: v.id.ID,
				amount: g.countermeasures.MineDamage(),
				from:   cm.Pos,
				strike: true,
				cause:  "mine",
			})
			g.emit(events.Explosion, cm.ID, cm.Pos, "mine")
			spent = append(spent, e)
			break
		}
	}

	for _, e := range spent {
		g.world.RemoveEntity(e)
	}
	for _, cm := range drops {
		g.dropCountermeasure(cm)
	}
}

// updateTorpedoes guides every torpedo against post-motion snapshots.
func (g *Simulation) updateTorpedoes(now, dt float64) {
	var gone []ecs.Entity
	for _, e := range g.sortedTorpedoes() {
		t := g.torpMap.Get(e)
		res := g.guidance.Update(t, g.targets, g.bounds, g.terrain, dt)

		if res.SelfDestructed {
			g.emit(events.SelfDestruct, t.ID, t.Pos, res.Reason)
		}
		if res.Activated {
			slog.Debug("drone active", "torpedo", t.ID, "owner", t.OwnerID)
		}
		if t.Type == components.TorpDrone && t.Mode == components.TorpActive {
			g.droneReveal(t, now)
		}

		switch res.Outcome {
		case systems.TorpedoHit:
			g.hits = append(g.hits, pendingHit{
				victim:   res.TargetID,
				attacker: t.OwnerID,
				amount:   res.Damage,
				from:     t.Pos,
				strike:   true,
				cause:    t.Type.String(),
			})
			g.emit(events.Explosion, t.ID, t.Pos, t.Type.String())
			gone = append(gone, e)
		case systems.TorpedoRemoved:
			slog.Debug("torpedo removed", "torpedo", t.ID, "reason", res.Reason)
			gone = append(gone, e)
		}
	}
	for _, e := range gone {
		g.world.RemoveEntity(e)
	}
}

// droneReveal hands every hostile inside an active drone's radius to its owner.
func (g *Simulation) droneReveal(t *components.Torpedo, now float64) {
	owner, ok := g.vesselByID(t.OwnerID)
	if !ok || owner.hull.Destroyed {
		return
	}
	radius := g.guidance.Spec(t.Type).RevealRadius
	revealed := g.detection.RevealAround(t.Pos, g.observer(owner), radius, now)
	if len(revealed) > 0 {
		g.detection.Reveal(owner.sensor, revealed, now)
	}
}

// sortedTorpedoes returns torpedo entities in ID order. Archetype order
// changes with removals, so it cannot drive hit order.
func (g *Simulation) sortedTorpedoes() []ecs.Entity {
	type entry struct {
		e  ecs.Entity
		id uint32
	}
	var list []entry
	query := g.torpFilter.Query()
	for query.Next() {
		list = append(list, entry{query.Entity(), query.Get().ID})
	}
	slices.SortFunc(list, func(a, b entry) int { return cmp.Compare(a.id, b.id) })
	out := make([]ecs.Entity, len(list))
	for i, en := range list {
		out[i] = en.e
	}
	return out
}

// sortedCountermeasures returns countermeasure entities in ID order.
func (g *Simulation) sortedCountermeasures() []ecs.Entity {
	type entry struct {
		e  ecs.Entity
		id uint32
	}
	var list []entry
	query := g.cmFilter.Query()
	for query.Next() {
		list = append(list, entry{query.Entity(), query.Get().ID})
	}
	slices.SortFunc(list, func(a, b entry) int { return cmp.Compare(a.id, b.id) })
	out := make([]ecs.Entity, len(list))
	for i, en := range list {
		out[i] = en.e
	}
	return out
}

func (g *Simulation) emit(t events.Type, id uint32, pos r3.Vec, detail string) {
	g.bus.Emit(events.Event{Type: t, Tick: g.tick, VesselID: id, Pos: pos, Detail: detail})
}
