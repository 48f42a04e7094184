package components

import "github.com/go-gl/mathgl/mgl32"

// Particle is one slot of an emitter's particle collection.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Drag     mgl32.Vec3
	Extents  mgl32.Vec3
	Lifetime float32 // seconds remaining; <= 0 means expired
	Free     bool    // slot holds no live particle and may be reused
}

// ParticleBuffer is the growable particle collection owned by an emitter.
// Its length never shrinks; dead slots are flagged Free and reused.
type ParticleBuffer struct {
	Particles []Particle
}

// Len returns the number of slots, live or free.
func (b *ParticleBuffer) Len() int {
	return len(b.Particles)
}

// At returns a pointer to slot i.
func (b *ParticleBuffer) At(i int) *Particle {
	return &b.Particles[i]
}

// Grow appends n zero-valued slots and returns the previous length.
// Existing slots keep their contents and positions.
func (b *ParticleBuffer) Grow(n int) int {
	prev := len(b.Particles)
	if n <= 0 {
		return prev
	}
	b.Particles = append(b.Particles, make([]Particle, n)...)
	return prev
}

// AliveCount returns the number of slots holding a live particle.
func (b *ParticleBuffer) AliveCount() int {
	n := 0
	for i := range b.Particles {
		if !b.Particles[i].Free {
			n++
		}
	}
	return n
}

// Alive returns the i-th live particle in storage order.
// ok is false if there are not that many live particles.
func (b *ParticleBuffer) Alive(i int) (p Particle, ok bool) {
	for j := range b.Particles {
		if b.Particles[j].Free {
			continue
		}
		if i == 0 {
			return b.Particles[j], true
		}
		i--
	}
	return Particle{}, false
}

// FreeCount returns the number of reusable slots.
func (b *ParticleBuffer) FreeCount() int {
	return len(b.Particles) - b.AliveCount()
}
