package transvoxel

// Slot holds the vertex indices a single cell may have cached, one per
// reuse slot (see tables.reuseByteForEdge / reuseByteForCorner for how a
// slot number is assigned to an edge or corner). -1 means "not cached".
type Slot [4]int32

func emptySlot() Slot {
	return Slot{-1, -1, -1, -1}
}

// RegularCache is the per-sweep vertex reuse cache for the regular pass:
// two decks selected by the current cell's z parity, each sized
// size.X*size.Y, one Slot per (x,y) column. Resized only when the block
// size changes; otherwise Reset just refills with -1, preserving capacity
// per spec.md's "retain buffers between build invocations" resource model.
type RegularCache struct {
	size  Size
	decks [2][]Slot
}

// NewRegularCache allocates a cache for the given block size.
func NewRegularCache(size Size) *RegularCache {
	c := &RegularCache{}
	c.Reset(size)
	return c
}

// Reset fills the cache with -1, reallocating only if size changed.
func (c *RegularCache) Reset(size Size) {
	n := size.X * size.Y
	if size != c.size || len(c.decks[0]) != n {
		c.size = size
		c.decks[0] = make([]Slot, n)
		c.decks[1] = make([]Slot, n)
	}
	for d := range c.decks {
		for i := range c.decks[d] {
			c.decks[d][i] = emptySlot()
		}
	}
}

// Cell returns the slot owned by the cell at pos, per spec.md §4.3: deck
// chosen by pos.Z&1, index pos.Y*size.X+pos.X — the fixed form of the
// indexing expression (spec.md §9 Open Question 1 resolved as "fix").
func (c *RegularCache) Cell(pos Pos) *Slot {
	deck := pos.Z & 1
	idx := pos.Y*c.size.X + pos.X
	return &c.decks[deck][idx]
}

// RegularDirectionValidityMask reports, for pos relative to min, which of
// the three "subtract 1" reuse directions are safe to dereference without
// stepping outside the sweep's padded region.
func RegularDirectionValidityMask(pos, min Pos) int {
	mask := 0
	if pos.X > min.X {
		mask |= 1
	}
	if pos.Y > min.Y {
		mask |= 2
	}
	if pos.Z > min.Z {
		mask |= 4
	}
	return mask
}

// TransitionCache is the per-sweep vertex reuse cache for the transition
// pass: two rows selected by the current face cell's fy parity, each sized
// size.X, one Slot per fx column.
type TransitionCache struct {
	width int
	rows  [2][]Slot
}

// NewTransitionCache allocates a cache for a face of the given width (the
// block's extent along the face's fx axis).
func NewTransitionCache(width int) *TransitionCache {
	c := &TransitionCache{}
	c.Reset(width)
	return c
}

// Reset fills the cache with -1, reallocating only if width changed.
func (c *TransitionCache) Reset(width int) {
	if width != c.width || len(c.rows[0]) != width {
		c.width = width
		c.rows[0] = make([]Slot, width)
		c.rows[1] = make([]Slot, width)
	}
	for r := range c.rows {
		for i := range c.rows[r] {
			c.rows[r][i] = emptySlot()
		}
	}
}

// Cell2D returns the slot owned by the face cell at (fx, fy).
func (c *TransitionCache) Cell2D(fx, fy int) *Slot {
	row := fy & 1
	return &c.rows[row][fx]
}

// TransitionDirectionValidityMask is the 2D analog of
// RegularDirectionValidityMask for the transition sweep's (fx, fy) axes.
func TransitionDirectionValidityMask(fx, fy, min int) int {
	mask := 0
	if fx > min {
		mask |= 1
	}
	if fy > min {
		mask |= 2
	}
	return mask
}
