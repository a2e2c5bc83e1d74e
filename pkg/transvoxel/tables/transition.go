package tables

// TransitionCellClass maps each of the 512 transition-cell sign
// configurations to an entry in TransitionCellData. Bit 7 of the stored
// value means "flip triangle winding"; this build's generator always
// produces triangles already wound for the outward +face normal (see
// buildTransitionCase), so bit 7 is always 0 here — the field is kept so
// callers that inspect it directly see the documented bit position.
var TransitionCellClass [512]uint8

// TransitionCellData holds one triangulation shape per entry, sized 512 to
// match TransitionCellClass's direct (unfactored) mapping, mirroring
// RegularCellData's choice for the same documented reason.
var TransitionCellData [512]CellData

// TransitionVertexData holds, per case, the packed edge descriptor for
// each vertex referenced by the case's triangle fan.
var TransitionVertexData [512][]uint16

// TransitionCornerData gives the packed reuse byte for a vertex landing
// exactly on one of the 13 transition-cell sample positions (9 full-res
// grid points plus the 4 half-resolution corner aliases 9..12, which alias
// full-res positions 0, 2, 6, 8 respectively).
var TransitionCornerData [13]uint8

func init() {
	for code := 0; code < 512; code++ {
		data, verts := buildTransitionCase(code)
		TransitionCellData[code] = data
		TransitionVertexData[code] = verts
	}
	for pos := 0; pos < 13; pos++ {
		TransitionCornerData[pos] = transitionCornerReuse(pos)
	}
}

// transitionGridPos returns the (col, row) of full-res position p in [0,9),
// both in {0,1,2}, per the paper's "6 7 8 / 3 4 5 / 0 1 2" face layout.
func transitionGridPos(p int) (col, row int) {
	return p % 3, p / 3
}

var transitionQuads = [4][4]int{
	{0, 1, 4, 3}, // bottom-left
	{1, 2, 5, 4}, // bottom-right
	{3, 4, 7, 6}, // top-left
	{4, 5, 8, 7}, // top-right
}

func transitionEdgeIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return a*16 + b // sparse but stable key, used only within this file's maps
}

// transitionOuterAlias maps a fine corner sample (0, 2, 6, or 8) to its
// half-resolution alias (9..12) when it appears in an "outer" edge — one of
// the two edges of its quadrant that run along the transition cell's
// perimeter rather than spoking in toward the shared center sample 4. A
// coarse neighbor's own cell shares exactly those perimeter edges, never
// the interior spokes, so tagging only the outer occurrence is what lets
// the stitched boundary vertex carry the half-resolution side's identity
// (see buildTransitionCase and polygonizer.go's emitTransitionVertex).
func transitionOuterAlias(idx int) int {
	switch idx {
	case 0:
		return 9
	case 2:
		return 10
	case 6:
		return 11
	case 8:
		return 12
	default:
		return idx
	}
}

// transitionAliasCorner reverses transitionOuterAlias: given any sample
// index (fine 0..8 or alias 9..12), it returns the fine corner the position
// coincides with and whether idx was itself an alias.
func transitionAliasCorner(idx int) (corner int, isAlias bool) {
	switch idx {
	case 9:
		return 0, true
	case 10:
		return 2, true
	case 11:
		return 6, true
	case 12:
		return 8, true
	default:
		return idx, false
	}
}

// transitionEdgeKey builds the chainLoops endpoint key for the quad edge
// (a, b), aliasing corner endpoints to their half-resolution identity
// whenever neither endpoint is the shared center sample 4 — i.e. whenever
// the edge runs along the cell's outer perimeter rather than spoking
// inward.
func transitionEdgeKey(a, b int) int {
	if a != 4 && b != 4 {
		a, b = transitionOuterAlias(a), transitionOuterAlias(b)
	}
	return transitionEdgeIndex(a, b)
}

// transitionReuseByte computes the packed high byte for a fine-fine edge
// (v0,v1 both < 9) of a transition cell, following the same "owned iff at
// the cell's own maximal coordinate" reasoning as the regular-cell case,
// restricted to the two face axes (fx, fy) the 2D sweep advances over in
// steps of 2: local column/row 2 is this cell's own edge, shared forward
// with the next cell at fx+2 / fy+2; column/row 0 is shared backward with
// the preceding cell; column/row 1 is unique to this cell along that axis.
func transitionReuseByte(v0, v1 int) (high int) {
	corner0, alias0 := transitionAliasCorner(v0)
	corner1, alias1 := transitionAliasCorner(v1)
	if alias0 || alias1 {
		// A boundary vertex tagged to its half-resolution corner identity
		// is always resolved locally: the shared position is looked up
		// through TransitionCornerData by whichever cell touches it as a
		// plain fine-fine edge, not through cross-cell vertex reuse here.
		return 0x8 << 4 // owns, dir 0, slot 0
	}
	c0, r0 := transitionGridPos(corner0)
	c1, r1 := transitionGridPos(corner1)
	col, row := c0, r0
	if c1 > c0 {
		col = c1
	}
	if r1 > r0 {
		row = r1
	}
	dir := 0
	if col == 0 {
		dir |= 0x1
	}
	if row == 0 {
		dir |= 0x2
	}
	owns := col != 0 && row != 0 && (col == 2 || row == 2)
	interior := col == 1 && row == 1
	slot := 0
	switch {
	case col == 2 && row == 2:
		slot = 3
	case col == 2:
		slot = 1
	case row == 2:
		slot = 2
	}
	if interior {
		dir |= 0x4
	}
	if owns {
		dir |= 0x8
	}
	return dir<<4 | slot
}

// transitionCornerReuse computes TransitionCornerData[pos]: the same
// reasoning as transitionReuseByte but for a vertex landing exactly on one
// grid sample rather than strictly between two. Half-res aliases 9..12
// (corners 0, 2, 6, 8) are always fully owned in slot 0: a block's corner
// sample never needs to reach across to a neighboring transition cell.
func transitionCornerReuse(pos int) uint8 {
	if pos >= 9 {
		return 0x80 // owns, slot 0, no subtraction
	}
	col, row := transitionGridPos(pos)
	dir := 0
	if col == 0 {
		dir |= 0x1
	}
	if row == 0 {
		dir |= 0x2
	}
	owns := col == 2 || row == 2
	slot := 0
	switch {
	case col == 2 && row == 2:
		slot = 3
	case col == 2:
		slot = 1
	case row == 2:
		slot = 2
	}
	if owns {
		dir |= 0x8
	}
	return uint8(dir<<4 | slot)
}

// buildTransitionCase triangulates a transition cell's 9-sample face patch
// using the same per-quadrant marching-squares construction as the regular
// cell's per-face pass. Segments crossing a quadrant's outer (perimeter)
// edge reference the half-resolution alias of whichever fine corner
// anchors that edge instead of the corner itself (transitionEdgeKey), so
// the vertices stitching this cell's boundary to a coarser neighbor carry
// a distinguishable identity from the interior fine-fine crossings — see
// polygonizer.go's emitTransitionVertex for how that identity drives the
// secondary-position asymmetry.
func buildTransitionCase(code int) (CellData, []uint16) {
	var signs [9]bool
	order := [9]int{0, 1, 2, 5, 8, 7, 6, 3, 4}
	for bit, pos := range order {
		if code&(1<<bit) != 0 {
			signs[pos] = true
		}
	}

	var segs [][2]int
	for _, quad := range transitionQuads {
		segs = append(segs, transitionQuadSegments(signs, quad)...)
	}
	if len(segs) == 0 {
		return CellData{}, nil
	}

	loops := chainLoops(segs)

	var verts []uint16
	var tris []byte
	seen := map[int]byte{}
	for _, loop := range loops {
		localIdx := make([]byte, len(loop))
		for i, edgeKey := range loop {
			v, ok := seen[edgeKey]
			if !ok {
				v0, v1 := edgeKey/16, edgeKey%16
				high := transitionReuseByte(v0, v1)
				verts = append(verts, packEdge(v0, v1, high>>4, high&0xf))
				v = byte(len(verts) - 1)
				seen[edgeKey] = v
			}
			localIdx[i] = v
		}
		for _, t := range fanTriangulate(len(loop)) {
			tris = append(tris, localIdx[t])
		}
	}

	return CellData{
		VertexCount:   len(verts),
		TriangleCount: len(tris) / 3,
		VertexIndex:   tris,
	}, verts
}

func transitionQuadSegments(signs [9]bool, quad [4]int) [][2]int {
	a, b, c, d := quad[0], quad[1], quad[2], quad[3]
	sa, sb, sc, sd := signs[a], signs[b], signs[c], signs[d]
	eAB := transitionEdgeKey(a, b)
	eBC := transitionEdgeKey(b, c)
	eCD := transitionEdgeKey(c, d)
	eDA := transitionEdgeKey(d, a)

	switch {
	case sa == sb && sb == sc && sc == sd:
		return nil
	case sa == sc && sb == sd && sa != sb:
		return [][2]int{{eDA, eAB}, {eBC, eCD}}
	default:
		var crossed []int
		if sa != sb {
			crossed = append(crossed, eAB)
		}
		if sb != sc {
			crossed = append(crossed, eBC)
		}
		if sc != sd {
			crossed = append(crossed, eCD)
		}
		if sd != sa {
			crossed = append(crossed, eDA)
		}
		if len(crossed) != 2 {
			return nil
		}
		return [][2]int{{crossed[0], crossed[1]}}
	}
}
