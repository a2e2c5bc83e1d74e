package tables

// RegularCellClass maps each of the 256 regular-cell sign configurations to
// an entry in RegularCellData. This build keeps a direct 1:1 mapping
// (every case is its own class) rather than factoring out the ~15
// rotation/reflection-equivalent shapes the published Transvoxel tables
// collapse onto: see DESIGN.md for why. The indirection is kept so callers
// written against the class/data split still work unchanged if a future
// revision wants the smaller table.
var RegularCellClass [256]uint8

// RegularCellData holds one triangulation shape per entry. Sized 256 to
// match RegularCellClass's direct mapping above.
var RegularCellData [256]CellData

// RegularVertexData holds, per case, the packed edge descriptor for each
// vertex the case's triangle fan references, in the same order CellData's
// VertexIndex values index into.
var RegularVertexData [256][]uint16

func init() {
	for code := 0; code < 256; code++ {
		RegularCellClass[code] = uint8(code)
		data, verts := buildRegularCase(code)
		RegularCellData[code] = data
		RegularVertexData[code] = verts
	}
}

var regularFaces = [6][4]int{
	{0, 2, 6, 4}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 3, 7, 6}, // +Y
	{0, 1, 3, 2}, // -Z
	{4, 5, 7, 6}, // +Z
}

func regularEdgeIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	for i, e := range regularEdges {
		if e[0] == a && e[1] == b {
			return i
		}
	}
	panic("tables: no such cube edge")
}

// buildRegularCase computes one regular cell's triangulation by finding,
// independently on each of the cube's 6 faces, the face-local contour
// segments implied by that face's 4 corner signs, then chaining the
// resulting segments (which always meet in pairs at shared cube edges) into
// closed loops and fan-triangulating each loop. Two diagonally-opposite
// corners of a face crossing the surface while the other diagonal pair
// doesn't (the classic marching-cubes ambiguous-face case) is resolved by
// cubeInteriorMajority: a coarse stand-in for the trilinear-center
// (asymptotic decider) test used to pick which way the saddle connects
// when the true field value at the face center isn't available to a
// sign-only case table.
func buildRegularCase(code int) (CellData, []uint16) {
	var signs [8]bool
	for c := 0; c < 8; c++ {
		signs[c] = code&(1<<c) != 0
	}

	interior := cubeInteriorMajority(signs)
	var segs [][2]int
	for _, face := range regularFaces {
		segs = append(segs, faceSegments(signs, face, interior)...)
	}
	if len(segs) == 0 {
		return CellData{}, nil
	}

	loops := chainLoops(segs)

	var verts []uint16
	var tris []byte
	edgeToVertex := map[int]byte{}
	for _, loop := range loops {
		localIdx := make([]byte, len(loop))
		for i, edgeIdx := range loop {
			v, ok := edgeToVertex[edgeIdx]
			if !ok {
				v0, v1 := regularEdges[edgeIdx][0], regularEdges[edgeIdx][1]
				dir, slot, owns := reuseByteForEdge(v0, v1)
				if owns {
					dir |= 0x08
				}
				verts = append(verts, packEdge(v0, v1, dir, slot))
				v = byte(len(verts) - 1)
				edgeToVertex[edgeIdx] = v
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

// cubeInteriorMajority approximates the trilinear value at a cube's center
// from its 8 corner signs alone: more inside corners than outside means the
// center is taken as inside. Ties (4-4 splits) favor outside, an arbitrary
// but fixed and documented tie-break.
func cubeInteriorMajority(signs [8]bool) bool {
	n := 0
	for _, s := range signs {
		if s {
			n++
		}
	}
	return n > 4
}

// faceSegments finds the 0, 1, or 2 contour segments a square face
// contributes given its 4 corners' inside/outside signs, each segment
// named by the pair of cube-edge indices its endpoints sit on. interior is
// the cube's own asymptotic-decider proxy (cubeInteriorMajority), consulted
// only for the ambiguous diagonal-crossing case.
func faceSegments(signs [8]bool, face [4]int, interior bool) [][2]int {
	a, b, c, d := face[0], face[1], face[2], face[3]
	sa, sb, sc, sd := signs[a], signs[b], signs[c], signs[d]
	edgeAB := regularEdgeIndex(a, b)
	edgeBC := regularEdgeIndex(b, c)
	edgeCD := regularEdgeIndex(c, d)
	edgeDA := regularEdgeIndex(d, a)

	switch {
	case sa == sb && sb == sc && sc == sd:
		return nil
	case sa == sc && sb == sd && sa != sb:
		if interior == sa {
			return [][2]int{{edgeAB, edgeBC}, {edgeCD, edgeDA}}
		}
		return [][2]int{{edgeDA, edgeAB}, {edgeBC, edgeCD}}
	default:
		var crossed []int
		if sa != sb {
			crossed = append(crossed, edgeAB)
		}
		if sb != sc {
			crossed = append(crossed, edgeBC)
		}
		if sc != sd {
			crossed = append(crossed, edgeCD)
		}
		if sd != sa {
			crossed = append(crossed, edgeDA)
		}
		if len(crossed) != 2 {
			return nil
		}
		return [][2]int{{crossed[0], crossed[1]}}
	}
}
