package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/simulation-tree/particle-systems/telemetry"
)

// updateLifespans counts down emitter lifespans, removes expired emitters
// and respawns the ones marked for it.
func (g *Game) updateLifespans() {
	dt := g.cfg.Derived.DT32

	// First pass: collect expired entities (must complete before modifying)
	type expiredInfo struct {
		entity  ecs.Entity
		index   int
		name    string
		respawn bool
	}
	var expired []expiredInfo

	query := g.lifespanFilter.Query()
	for query.Next() {
		life, info := query.Get()
		life.Remaining -= dt
		if life.Remaining <= 0 {
			expired = append(expired, expiredInfo{
				entity:  query.Entity(),
				index:   info.Index,
				name:    info.Name,
				respawn: life.Respawn,
			})
		}
	}

	// Second pass: remove and respawn (query iteration complete)
	for _, ex := range expired {
		previousID := ex.entity.ID()
		g.world.RemoveEntity(ex.entity)
		g.emitters--
		g.recordEvent(telemetry.NewEmitterExpiredEvent(g.tick, previousID, ex.name))

		if ex.respawn {
			e := g.spawnEmitter(ex.index)
			g.recordEvent(telemetry.NewEmitterRespawnedEvent(g.tick, e.ID(), previousID, ex.name))
		}
	}
}

// recordLimitHits turns the joined error from the particle system into one
// event per offending emitter.
func (g *Game) recordLimitHits(err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		g.recordEvent(telemetry.NewLimitHitEvent(g.tick, e))
	}
}

func (g *Game) recordEvent(ev telemetry.Event) {
	g.collector.Record(ev)
	if g.outputManager != nil {
		g.events = append(g.events, ev)
	}
}
