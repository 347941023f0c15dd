package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/silentrun/events"
	"github.com/pthm-cable/silentrun/systems"
)

// pendingHit is damage queued during the tick and applied in order.
type pendingHit struct {
	victim   uint32
	attacker uint32 // 0 for mines, collisions and the environment
	amount   float64
	from     r3.Vec // source position for directional hits
	direct   bool   // bypasses armor and systems
	strike   bool   // a weapon or mine detonation
	cause    string
}

// applyHits resolves queued hits in order. Each hit completes before the next starts.
func (g *Simulation) applyHits() {
	for _, h := range g.hits {
		v, ok := g.vesselByID(h.victim)
		if !ok || v.hull.Destroyed {
			continue
		}

		var res systems.DamageResult
		if h.direct {
			res = g.damage.ApplyHullDamage(v.hull, h.amount)
		} else {
			facing := systems.FacingFromDirection(v.kin.Heading, r3.Sub(h.from, v.kin.Pos))
			res = g.damage.ApplyDirectionalDamage(v.hull, h.amount, facing, g.rng)
		}

		if h.strike {
			g.collector.RecordHit(h.amount)
		}
		g.lifetime.RecordHit(h.attacker, h.victim, h.amount)

		for _, s := range res.Disabled {
			g.emit(events.SystemDisabled, v.id.ID, v.kin.Pos, s.String())
		}
		if res.Destroyed {
			g.emit(events.VesselDestroyed, v.id.ID, v.kin.Pos, v.hull.Cause.String())
			g.lifetime.RecordKill(h.attacker, h.victim, h.cause)
			slog.Info("vessel destroyed",
				"vessel", v.id.ID,
				"class", v.id.Class,
				"by", h.attacker,
				"cause", h.cause,
				"condition", v.hull.Cause.String(),
			)
		}
	}
	g.hits = g.hits[:0]
}

// cleanup ages countermeasures and removes expired and destroyed entities.
// g.vessels is stale once this returns.
func (g *Simulation) cleanup(dt float64) {
	var toRemove []ecs.Entity

	query := g.cmFilter.Query()
	for query.Next() {
		if systems.Decay(query.Get(), dt) {
			toRemove = append(toRemove, query.Entity())
		}
	}

	for _, v := range g.vessels {
		if v.hull.Destroyed {
			toRemove = append(toRemove, v.entity)
			delete(g.entities, v.id.ID)
		}
	}

	for _, e := range toRemove {
		g.world.RemoveEntity(e)
	}
	g.vessels = g.vessels[:0]
}
