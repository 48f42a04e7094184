package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/simulation-tree/particle-systems/components"
)

func TestStateTableBindKeepsState(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.ParticleBuffer](w)
	e := mapper.NewEntity(&components.ParticleBuffer{})

	table := NewStateTable()
	st := table.Bind(e)
	if st.SpawnCooldown != 0 {
		t.Errorf("fresh state cooldown = %v, want 0", st.SpawnCooldown)
	}
	if st.Stream.State() != NewStream(e.ID()).State() {
		t.Error("fresh state not seeded from entity index")
	}
	if st.Owner() != e {
		t.Error("fresh state not owned by entity")
	}

	st.SpawnCooldown = 0.7
	st.Stream.Advance()
	advanced := st.Stream.State()

	again := table.Bind(e)
	if again != st {
		t.Error("Bind returned a different record for the same entity")
	}
	if again.SpawnCooldown != 0.7 || again.Stream.State() != advanced {
		t.Error("Bind reset state for an unchanged identity")
	}
	if table.Rebinds() != 1 {
		t.Errorf("Rebinds() = %d, want 1", table.Rebinds())
	}
}

func TestStateTableRebindOnRecycledIndex(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.ParticleBuffer](w)
	first := mapper.NewEntity(&components.ParticleBuffer{})

	table := NewStateTable()
	st := table.Bind(first)
	st.SpawnCooldown = 3
	st.Stream.Advance()

	w.RemoveEntity(first)
	second := mapper.NewEntity(&components.ParticleBuffer{})
	if second.ID() != first.ID() {
		t.Skip("world did not recycle the entity index")
	}
	if second == first {
		t.Fatal("recycled entity compares equal to removed entity")
	}

	if _, ok := table.Lookup(second); ok {
		t.Error("Lookup found state for an entity that was never bound")
	}

	rebound := table.Bind(second)
	if rebound.SpawnCooldown != 0 {
		t.Errorf("rebound cooldown = %v, want 0", rebound.SpawnCooldown)
	}
	if rebound.Stream.State() != NewStream(second.ID()).State() {
		t.Error("rebound stream not reseeded")
	}
	if rebound.Owner() != second {
		t.Error("rebound state has stale owner")
	}
	if table.Rebinds() != 2 {
		t.Errorf("Rebinds() = %d, want 2", table.Rebinds())
	}
}

func TestStateTableSweep(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.ParticleBuffer](w)
	a := mapper.NewEntity(&components.ParticleBuffer{})
	b := mapper.NewEntity(&components.ParticleBuffer{})

	table := NewStateTable()
	table.Bind(a)
	table.Bind(b)
	if removed := table.Sweep(); removed != 0 {
		t.Errorf("Sweep() after binding both removed %d, want 0", removed)
	}

	table.Bind(b)
	if removed := table.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
	if _, ok := table.Lookup(a); ok {
		t.Error("state of unbound entity survived the sweep")
	}
	if _, ok := table.Lookup(b); !ok {
		t.Error("bound entity state was swept")
	}

	st := table.Bind(a)
	if st.SpawnCooldown != 0 || st.Stream.State() != NewStream(a.ID()).State() {
		t.Error("re-bound entity did not start with a fresh state")
	}
}
