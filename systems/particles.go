package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/simulation-tree/particle-systems/components"
	"github.com/simulation-tree/particle-systems/distribution"
)

var (
	// ErrSpawnLimit is reported when Limits.MaxSpawnsPerTick stopped the
	// spawn loop before the cooldown became positive.
	ErrSpawnLimit = errors.New("spawn limit reached")
	// ErrCapacityExceeded is reported when Limits.MaxParticles prevented
	// the particle buffer from growing far enough.
	ErrCapacityExceeded = errors.New("particle capacity exceeded")
)

// Limits are opt-in guards around the emitter update. Zero disables a limit,
// which is the default and keeps the update unbounded.
type Limits struct {
	MaxParticles     int // per-emitter buffer length cap
	MaxSpawnsPerTick int // iterations of the spawn loop per tick
}

// TickReport summarizes one emitter update.
type TickReport struct {
	Spawned int // Reused + Grown
	Reused  int // free slots re-initialized
	Grown   int // slots appended
	Expired int // live particles that became free this tick
	Dropped int // spawns lost to MaxParticles
	Err     error
}

// Counters accumulate TickReports across all emitters and ticks.
type Counters struct {
	Ticks     int64
	Updates   int64
	Spawned   int64
	Reused    int64
	Grown     int64
	Expired   int64
	Dropped   int64
	LimitHits int64
}

// ParticleSystem advances every emitter entity once per tick.
type ParticleSystem struct {
	filter   *ecs.Filter2[components.Emitter, components.ParticleBuffer]
	states   *StateTable
	limits   Limits
	counters Counters
}

// NewParticleSystem creates a particle system over the world's emitters.
func NewParticleSystem(w *ecs.World, limits Limits) *ParticleSystem {
	return &ParticleSystem{
		filter: ecs.NewFilter2[components.Emitter, components.ParticleBuffer](w),
		states: NewStateTable(),
		limits: limits,
	}
}

// Update advances all emitters by dt seconds, in query order.
// The returned error joins any limit violations, each tagged with the
// emitter's entity index; it is nil when no opt-in limit tripped.
func (s *ParticleSystem) Update(dt float32) error {
	var errs []error

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		emitter, buf := query.Get()

		state := s.states.Bind(entity)
		report := UpdateEmitter(emitter, buf, dt, state, s.limits)
		s.record(report)

		if report.Err != nil {
			errs = append(errs, fmt.Errorf("emitter %d: %w", entity.ID(), report.Err))
		}
	}

	s.states.Sweep()
	s.counters.Ticks++

	return errors.Join(errs...)
}

func (s *ParticleSystem) record(r TickReport) {
	s.counters.Updates++
	s.counters.Spawned += int64(r.Spawned)
	s.counters.Reused += int64(r.Reused)
	s.counters.Grown += int64(r.Grown)
	s.counters.Expired += int64(r.Expired)
	s.counters.Dropped += int64(r.Dropped)
	if r.Err != nil {
		s.counters.LimitHits++
	}
}

// Counters returns the cumulative update counters.
func (s *ParticleSystem) Counters() Counters {
	return s.counters
}

// States exposes the per-emitter state table.
func (s *ParticleSystem) States() *StateTable {
	return s.states
}

// UpdateEmitter runs one tick for a single emitter: age, schedule, reuse or
// grow, then consume dt from the cooldown and advance the stream.
//
// The emission interval must evaluate to a strictly positive value, otherwise
// the spawn loop never ends unless limits.MaxSpawnsPerTick is set.
func UpdateEmitter(emitter *components.Emitter, buf *components.ParticleBuffer, dt float32, state *EmitterState, limits Limits) TickReport {
	var r TickReport

	r.Expired = ageParticles(buf, dt)

	pending, err := scheduleSpawns(state, emitter.Emission.Interval, limits.MaxSpawnsPerTick)
	r.Err = err

	if pending > 0 {
		r.Reused, r.Grown, r.Dropped = spawnParticles(buf, emitter, state, pending, limits.MaxParticles)
		r.Spawned = r.Reused + r.Grown
		if r.Dropped > 0 {
			r.Err = errors.Join(r.Err, ErrCapacityExceeded)
		}
	}

	state.SpawnCooldown -= dt
	state.Stream.Advance()

	return r
}

// ageParticles decrements every slot's lifetime and frees expired slots.
// Free slots are aged too; their lifetime is overwritten on reuse.
func ageParticles(buf *components.ParticleBuffer, dt float32) int {
	expired := 0
	for i := range buf.Particles {
		p := &buf.Particles[i]
		p.Lifetime -= dt
		if p.Lifetime <= 0 {
			if !p.Free {
				expired++
			}
			p.Free = true
		}
	}
	return expired
}

// scheduleSpawns consumes emission intervals until the cooldown is positive
// and returns how many particles are due.
func scheduleSpawns(state *EmitterState, interval distribution.Scalar, maxSpawns int) (int, error) {
	n := 0
	for state.SpawnCooldown <= 0 {
		if maxSpawns > 0 && n >= maxSpawns {
			return n, ErrSpawnLimit
		}
		state.SpawnCooldown += interval.Evaluate(state.Stream.Float01())
		state.Stream.Advance()
		n++
	}
	return n, nil
}

// spawnParticles places pending particles into free slots in storage order,
// then appends the remainder. Growth stops at maxParticles when it is set.
func spawnParticles(buf *components.ParticleBuffer, emitter *components.Emitter, state *EmitterState, pending, maxParticles int) (reused, grown, dropped int) {
	for i := 0; i < buf.Len() && pending > 0; i++ {
		p := buf.At(i)
		if !p.Free {
			continue
		}
		spawn(p, emitter, state)
		pending--
		reused++
	}
	if pending == 0 {
		return reused, 0, 0
	}

	grown = pending
	if maxParticles > 0 && buf.Len()+grown > maxParticles {
		grown = max(maxParticles-buf.Len(), 0)
	}

	prev := buf.Grow(grown)
	for i := prev; i < buf.Len(); i++ {
		spawn(buf.At(i), emitter, state)
	}

	return reused, grown, pending - grown
}

// spawn initializes a slot from the emitter's initial state. The draws are
// taken without advancing the stream, in a fixed order.
func spawn(p *components.Particle, emitter *components.Emitter, state *EmitterState) {
	initial := &emitter.InitialState

	*p = components.Particle{}
	p.Position = initial.Position
	p.Lifetime = initial.Lifetime.Evaluate(state.Stream.Float01())
	p.Velocity = initial.Velocity.Evaluate(state.Stream.Vector01())
	p.Drag = initial.Drag.Evaluate(state.Stream.Vector01())
	p.Extents = initial.Size.Evaluate(state.Stream.Vector01())
}
