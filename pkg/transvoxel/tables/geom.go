// Package tables holds the read-only case data that drives the Transvoxel
// polygonizer: which of a cell's edges carry a crossing vertex for each of
// its 256 (regular) or 512 (transition) sign configurations, how those
// vertices wind into triangles, and how they cache in the reuse deck.
//
// Corner numbering follows the Transvoxel paper's bit-packed convention:
// corner i has x = i&1, y = (i>>1)&1, z = (i>>2)&1, so corner 0 is the
// cell's minimum and corner 7 its maximum. Regular-cell data is indexed by
// an 8-bit case code with bit i set when corner i is "inside" (negative
// sample); transition-cell data is indexed by a 9-bit code over the face's
// 3x3 sample grid, whose bits 0..8 come from the row-major grid positions
// 0, 1, 2, 5, 8, 7, 6, 3, 4 in that order.
package tables

// cornerCoord returns the (x, y, z) unit-cube position of corner c, c in [0,8).
func cornerCoord(c int) (x, y, z int) {
	return c & 1, (c >> 1) & 1, (c >> 2) & 1
}

// regularEdges lists the cube's 12 edges as ordered corner pairs (v0 < v1).
// Index order matches no published numbering; it only needs to be used
// consistently between construction and lookup, which it is.
var regularEdges = [12][2]int{
	{0, 1}, {0, 2}, {0, 4},
	{1, 3}, {1, 5},
	{2, 3}, {2, 6},
	{3, 7},
	{4, 5}, {4, 6},
	{5, 7},
	{6, 7},
}

// reuseByteForEdge computes the packed (reuseDir<<4 | reuseSlot) high byte
// for the local edge (v0, v1) of a regular cell, plus whether this cell owns
// (may cache) the crossing vertex on that edge.
//
// Every one of a cube's 8 corners except its own maximum corner (7) is also
// the maximum corner of exactly one neighboring cell: the one reached by
// subtracting 1 along every axis where the corner's coordinate is 0 rather
// than 1 (corner XOR 7, read as an axis bitmask). The three edges incident
// to corner 7 are therefore the only ones this cell can be first to resolve;
// every other edge is owned by whichever neighbor corner 7 would be if you
// walked backwards along those same axes. This is a fixed geometric fact
// about the cube, independent of which of the 256 cases uses the edge, so it
// is computed once here rather than carried case-by-case in the tables.
func reuseByteForEdge(v0, v1 int) (dir, slot int, owns bool) {
	dirBit := v0 ^ v1
	common := v0 & v1
	dir = (^common) & (^dirBit) & 7
	slot = edgeSlot(dirBit)
	owns = dir == 0
	return dir, slot, owns
}

// edgeSlot maps an edge's direction bit (the single bit that differs
// between its two corners) to one of the three per-direction cache slots.
// Slot 0 is reserved for corner-vertex caching (see reuseByteForCorner).
func edgeSlot(dirBit int) int {
	switch dirBit {
	case 1:
		return 1 // x-direction edge
	case 2:
		return 2 // y-direction edge
	case 4:
		return 3 // z-direction edge
	default:
		panic("tables: edge direction bit must be 1, 2, or 4")
	}
}

// reuseByteForCorner computes the reuse direction for a vertex sitting
// exactly on corner c of a regular cell (c != 7; corner 7 is always owned,
// never looked up). It is always found in slot 0 of the owning neighbor.
func reuseByteForCorner(c int) (dir, slot int) {
	return c ^ 7, 0
}

// packEdge encodes one RegularVertexData / TransitionVertexData entry: low
// byte (v0<<4 | v1), high byte (reuseDir<<4 | reuseSlot), matching the byte
// layout spec'd for the interior case in the polygonizer's edge walk.
func packEdge(v0, v1, dir, slot int) uint16 {
	low := byte(v0<<4 | v1)
	high := byte(dir<<4 | slot)
	return uint16(low) | uint16(high)<<8
}

// CellData describes one triangulation shape: how many distinct vertices a
// case needs and the triangle fan over those vertices, expressed as indices
// into the case's own vertex list (0-based, in emission order).
type CellData struct {
	VertexCount   int
	TriangleCount int
	VertexIndex   []byte
}

// segment is an undirected crossing edge discovered while walking a cell's
// faces: two corners that are fully determined by the case code, carried
// only to enable chaining into closed loops.
type segment struct {
	a, b [2]int // each endpoint identified as (corner, corner) for a regular cube edge, or (gridIndex, gridIndex) for a transition face
}

// chainLoops assembles a set of undirected segments (each naming two
// endpoint keys) into one or more closed loops, returning each loop as an
// ordered list of endpoint keys. Segments must form closed loops (every
// endpoint touches exactly two segments) for a closed-surface cube or
// transition-cell contour, which is always true for a well-formed
// marching-cubes/marching-squares case.
func chainLoops(segs [][2]int) [][]int {
	adj := map[int][]int{}
	for _, s := range segs {
		adj[s[0]] = append(adj[s[0]], s[1])
		adj[s[1]] = append(adj[s[1]], s[0])
	}
	visited := map[[2]int]bool{}
	var loops [][]int
	for _, s := range segs {
		if visited[s] || visited[[2]int{s[1], s[0]}] {
			continue
		}
		loop := []int{s[0], s[1]}
		visited[s] = true
		prev, cur := s[0], s[1]
		for cur != loop[0] {
			next := otherNeighbor(adj, cur, prev)
			visited[[2]int{cur, next}] = true
			visited[[2]int{next, cur}] = true
			loop = append(loop, next)
			prev, cur = cur, next
		}
		loops = append(loops, loop[:len(loop)-1])
	}
	return loops
}

func otherNeighbor(adj map[int][]int, cur, prev int) int {
	for _, n := range adj[cur] {
		if n != prev {
			return n
		}
	}
	// cur has only one edge walked so far back to prev (a 2-cycle); reuse it.
	return prev
}

// fanTriangulate returns the vertex-index triangle fan for a closed loop of
// n vertices, referencing positions within the loop itself (0-based).
func fanTriangulate(n int) []byte {
	if n < 3 {
		return nil
	}
	out := make([]byte, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		out = append(out, 0, byte(i), byte(i+1))
	}
	return out
}
