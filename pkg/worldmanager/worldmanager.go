// Package worldmanager is a small demonstration caller of the polygonizer
// core: it tracks which terrain blocks are currently loaded, indexes their
// bounding boxes for region queries, and hands out session handles while a
// block is checked out to a renderer. It is not a streaming block cache or
// a thread pool; those remain the surrounding engine's responsibility.
package worldmanager

import (
	"fmt"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"

	"github.com/chazu/lignin-terrain/pkg/graph"
	"github.com/chazu/lignin-terrain/pkg/transvoxel"
)

// minChildren and maxChildren are rtreego's node fan-out bounds. These are
// the values rtreego's own docs use as a reasonable default.
const (
	minChildren = 2
	maxChildren = 5
)

// BlockHandle is a loan of a loaded block's mesh to a renderer. Two
// checkouts of identically-shaped content are distinct loans, since the
// content hash alone cannot distinguish "which caller currently holds
// this," so each handle carries its own session UUID.
type BlockHandle struct {
	Session uuid.UUID
	BlockID graph.NodeID
	Origin  [3]float64
	Size    [3]float64
	Mesh    *transvoxel.MeshOutput
}

// spatialBlock adapts a BlockHandle to rtreego.Spatial.
type spatialBlock struct {
	handle *BlockHandle
	rect   rtreego.Rect
}

func (s *spatialBlock) Bounds() rtreego.Rect { return s.rect }

// Manager tracks the set of currently loaded terrain blocks and answers
// spatial overlap queries with an R-tree instead of a linear scan.
type Manager struct {
	mu     sync.Mutex
	tree   *rtreego.Rtree
	byID   map[graph.NodeID]*spatialBlock
	bySess map[uuid.UUID]*spatialBlock
}

// New returns an empty world manager.
func New() *Manager {
	return &Manager{
		tree:   rtreego.NewTree(3, minChildren, maxChildren),
		byID:   make(map[graph.NodeID]*spatialBlock),
		bySess: make(map[uuid.UUID]*spatialBlock),
	}
}

// Load registers a polygonized block at the given world-space origin and
// extent, indexing it for region queries, and returns a session handle
// representing this particular checkout.
func (m *Manager) Load(id graph.NodeID, origin, size [3]float64, mesh *transvoxel.MeshOutput) (*BlockHandle, error) {
	rect, err := rtreego.NewRect(rtreego.Point{origin[0], origin[1], origin[2]}, []float64{size[0], size[1], size[2]})
	if err != nil {
		return nil, fmt.Errorf("worldmanager: Load: bad bounds for block %s: %w", id.Short(), err)
	}

	handle := &BlockHandle{
		Session: uuid.New(),
		BlockID: id,
		Origin:  origin,
		Size:    size,
		Mesh:    mesh,
	}
	sb := &spatialBlock{handle: handle, rect: rect}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byID[id]; ok {
		m.tree.Delete(existing)
	}
	m.tree.Insert(sb)
	m.byID[id] = sb
	m.bySess[handle.Session] = sb

	return handle, nil
}

// Unload removes a block from the index entirely, releasing every handle
// checked out against it.
func (m *Manager) Unload(id graph.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sb, ok := m.byID[id]
	if !ok {
		return
	}
	m.tree.Delete(sb)
	delete(m.byID, id)
	for sess, s := range m.bySess {
		if s.handle.BlockID == id {
			delete(m.bySess, sess)
		}
	}
}

// Release drops a single session handle without unloading the underlying
// block, since other handles or the index itself may still reference it.
func (m *Manager) Release(session uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bySess, session)
}

// Overlapping returns every loaded block whose bounding box intersects the
// given world-space region.
func (m *Manager) Overlapping(origin, size [3]float64) ([]*BlockHandle, error) {
	rect, err := rtreego.NewRect(rtreego.Point{origin[0], origin[1], origin[2]}, []float64{size[0], size[1], size[2]})
	if err != nil {
		return nil, fmt.Errorf("worldmanager: Overlapping: bad region: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	results := m.tree.SearchIntersect(rect)
	out := make([]*BlockHandle, 0, len(results))
	for _, r := range results {
		sb, ok := r.(*spatialBlock)
		if !ok {
			continue
		}
		out = append(out, sb.handle)
	}
	return out, nil
}

// Len returns the number of blocks currently loaded.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
