package worldmanager

import (
	"testing"

	"github.com/chazu/lignin-terrain/pkg/graph"
)

func TestLoadAndOverlap(t *testing.T) {
	m := New()

	id := graph.NewNodeID("dune")
	handle, err := m.Load(id, [3]float64{0, 0, 0}, [3]float64{100, 100, 20}, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if handle.Session.String() == "" {
		t.Error("expected a non-empty session UUID")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 loaded block, got %d", m.Len())
	}

	overlapping, err := m.Overlapping([3]float64{50, 50, 0}, [3]float64{10, 10, 10})
	if err != nil {
		t.Fatalf("Overlapping failed: %v", err)
	}
	if len(overlapping) != 1 {
		t.Fatalf("expected 1 overlapping block, got %d", len(overlapping))
	}
	if overlapping[0].BlockID != id {
		t.Errorf("expected block %s, got %s", id.Short(), overlapping[0].BlockID.Short())
	}
}

func TestOverlappingNoMatch(t *testing.T) {
	m := New()
	id := graph.NewNodeID("dune")
	if _, err := m.Load(id, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	overlapping, err := m.Overlapping([3]float64{1000, 1000, 1000}, [3]float64{10, 10, 10})
	if err != nil {
		t.Fatalf("Overlapping failed: %v", err)
	}
	if len(overlapping) != 0 {
		t.Fatalf("expected 0 overlapping blocks, got %d", len(overlapping))
	}
}

func TestUnload(t *testing.T) {
	m := New()
	id := graph.NewNodeID("boulder")
	if _, err := m.Load(id, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	m.Unload(id)
	if m.Len() != 0 {
		t.Fatalf("expected 0 loaded blocks after unload, got %d", m.Len())
	}
}

func TestReloadReplacesExisting(t *testing.T) {
	m := New()
	id := graph.NewNodeID("mesa")
	if _, err := m.Load(id, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := m.Load(id, [3]float64{500, 500, 0}, [3]float64{10, 10, 10}, nil); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 loaded block after reload, got %d", m.Len())
	}

	// Should be found at the new location, not the old one.
	atOld, _ := m.Overlapping([3]float64{0, 0, 0}, [3]float64{10, 10, 10})
	if len(atOld) != 0 {
		t.Error("block should no longer overlap its old location")
	}
	atNew, _ := m.Overlapping([3]float64{500, 500, 0}, [3]float64{10, 10, 10})
	if len(atNew) != 1 {
		t.Error("block should overlap its new location")
	}
}

func TestReleaseSession(t *testing.T) {
	m := New()
	id := graph.NewNodeID("dune")
	handle, err := m.Load(id, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Releasing a session must not unload the block from the index.
	m.Release(handle.Session)
	if m.Len() != 1 {
		t.Fatalf("expected block to remain loaded after releasing a session, got %d loaded", m.Len())
	}
}

func TestDistinctSessionsPerCheckout(t *testing.T) {
	m := New()
	id := graph.NewNodeID("dune")

	h1, _ := m.Load(id, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, nil)
	h2, err := m.Load(id, [3]float64{0, 0, 0}, [3]float64{10, 10, 10}, nil)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	if h1.Session == h2.Session {
		t.Error("two checkouts of identical content should have distinct session UUIDs")
	}
}
