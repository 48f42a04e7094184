package systems

import "github.com/mlange-42/ark/ecs"

// EmitterState is the persistent per-emitter record: the spawn cooldown
// accumulator and the emitter's random stream.
type EmitterState struct {
	SpawnCooldown float32
	Stream        Stream

	owner ecs.Entity
	seen  uint64 // sweep generation of the last Bind
}

// NewEmitterState returns a freshly bound state for the entity.
func NewEmitterState(e ecs.Entity) EmitterState {
	return EmitterState{
		Stream: NewStream(e.ID()),
		owner:  e,
	}
}

// Owner returns the entity this state is bound to.
func (s *EmitterState) Owner() ecs.Entity {
	return s.owner
}

// StateTable maps emitter identities to their state.
// Slots are keyed by entity index; the full entity (index and generation) is
// compared on every lookup so a recycled index starts over.
// A state lives only while its emitter is bound once per sweep.
type StateTable struct {
	states  map[uint32]*EmitterState
	sweep   uint64
	rebinds int
}

// NewStateTable creates an empty table.
func NewStateTable() *StateTable {
	return &StateTable{states: make(map[uint32]*EmitterState)}
}

// Bind returns the state for e, creating or resetting it if the slot is
// unbound or currently owned by a different entity.
func (t *StateTable) Bind(e ecs.Entity) *EmitterState {
	st, ok := t.states[e.ID()]
	if !ok {
		st = &EmitterState{}
		t.states[e.ID()] = st
	}
	if !ok || st.owner != e {
		*st = NewEmitterState(e)
		t.rebinds++
	}
	st.seen = t.sweep
	return st
}

// Lookup returns the state currently bound to e, if any.
func (t *StateTable) Lookup(e ecs.Entity) (*EmitterState, bool) {
	st, ok := t.states[e.ID()]
	if !ok || st.owner != e {
		return nil, false
	}
	return st, true
}

// Sweep drops every state not bound since the previous Sweep and returns
// how many were removed. An emitter that leaves the query and later returns
// starts over with a fresh state.
func (t *StateTable) Sweep() int {
	removed := 0
	for id, st := range t.states {
		if st.seen != t.sweep {
			delete(t.states, id)
			removed++
		}
	}
	t.sweep++
	return removed
}

// Len returns the number of bound states.
func (t *StateTable) Len() int {
	return len(t.states)
}

// Rebinds returns how many times a slot was (re)initialized.
func (t *StateTable) Rebinds() int {
	return t.rebinds
}
