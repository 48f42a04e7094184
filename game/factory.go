package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/simulation-tree/particle-systems/components"
	"github.com/simulation-tree/particle-systems/config"
	"github.com/simulation-tree/particle-systems/telemetry"
)

// buildTemplates converts emitter configs into component descriptors.
// Distributions are immutable and shared by every entity of a template.
func buildTemplates(emitters []config.EmitterConfig) ([]components.Emitter, error) {
	templates := make([]components.Emitter, len(emitters))
	for i := range emitters {
		em, err := buildEmitter(&emitters[i])
		if err != nil {
			return nil, fmt.Errorf("emitter %q: %w", emitters[i].Name, err)
		}
		templates[i] = em
	}
	return templates, nil
}

func buildEmitter(ec *config.EmitterConfig) (components.Emitter, error) {
	var em components.Emitter
	var err error

	if em.Emission.Interval, err = ec.Interval.Build(); err != nil {
		return em, fmt.Errorf("interval: %w", err)
	}

	initial := &em.InitialState
	initial.Position = mgl32.Vec3(ec.Position)
	if initial.Lifetime, err = ec.Lifetime.Build(); err != nil {
		return em, fmt.Errorf("lifetime: %w", err)
	}
	if initial.Velocity, err = ec.Velocity.Build(); err != nil {
		return em, fmt.Errorf("velocity: %w", err)
	}
	if initial.Drag, err = ec.Drag.Build(); err != nil {
		return em, fmt.Errorf("drag: %w", err)
	}
	if initial.Size, err = ec.Size.Build(); err != nil {
		return em, fmt.Errorf("size: %w", err)
	}
	return em, nil
}

// spawnInitialEmitters creates Count entities for every configured emitter.
func (g *Game) spawnInitialEmitters() {
	for i, ec := range g.cfg.Emitters {
		for n := 0; n < ec.Count; n++ {
			e := g.spawnEmitter(i)
			g.recordEvent(telemetry.NewEmitterCreatedEvent(g.tick, e.ID(), ec.Name))
		}
	}
}

// spawnEmitter creates one emitter entity from template index.
// The entity starts with an empty particle buffer; its emitter state is
// created by the particle system on first update.
func (g *Game) spawnEmitter(index int) ecs.Entity {
	ec := &g.cfg.Emitters[index]

	emitter := g.templates[index]
	info := components.EmitterInfo{Name: ec.Name, Index: index}
	entity := g.emitterMapper.NewEntity(&emitter, &components.ParticleBuffer{}, &info)

	if ec.Lifespan > 0 {
		g.lifespanMap.Add(entity, &components.Lifespan{
			Remaining: float32(ec.Lifespan),
			Respawn:   ec.Respawn,
		})
	}

	g.emitters++
	return entity
}
