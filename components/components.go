// Package components defines ECS components for the particle simulation.
package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/simulation-tree/particle-systems/distribution"
)

// Emission controls when an emitter produces particles.
type Emission struct {
	Interval distribution.Scalar // seconds between spawns; must evaluate > 0
}

// InitialParticleState describes how a freshly spawned particle is set up.
// Position is copied as-is; every other field is sampled.
type InitialParticleState struct {
	Position mgl32.Vec3
	Lifetime distribution.Scalar
	Velocity distribution.Vector
	Drag     distribution.Vector
	Size     distribution.Vector // sampled into Particle.Extents
}

// Emitter marks an entity as a particle emitter and holds its read-only
// emission descriptor.
type Emitter struct {
	Emission     Emission
	InitialState InitialParticleState
}

// EmitterInfo identifies which configured emitter an entity was created from.
type EmitterInfo struct {
	Name  string
	Index int // position in config.Emitters
}

// Lifespan limits how long an emitter entity exists.
// Remaining <= 0 after a tick removes the entity.
type Lifespan struct {
	Remaining float32
	Respawn   bool // create a replacement entity when this one is removed
}
