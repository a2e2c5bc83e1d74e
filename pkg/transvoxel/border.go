package transvoxel

// BorderOffset computes the secondary position a regular-cell vertex needs
// when it sits near a block face that a coarser neighbor's transition cell
// will stitch against. p is the vertex's primary position in cell-local
// units (pre-LOD-scale), n its unit normal, lod the block's level of
// detail, size the block's cell extent, and min the sweep's minimum corner
// (the 1-cell padding every axis carries).
//
// Per axis, a cell within one coarse step of the block's minimum face
// shrinks toward that face; one within a coarse step of the maximum face
// shrinks toward it; interior cells are untouched. The result is projected
// off the vertex's own normal before being added, so the shift never moves
// the vertex along its own surface tangent, and then added to p to produce
// the secondary position a transition stitch will snap to.
func BorderOffset(p, n Vec3, lod int, size Size, min Pos) Vec3 {
	k := float64(int(1) << lod)
	w := 0.25 * k

	delta := Vec3{
		X: borderDeltaAxis(p.X, min.X, size.X, k, w),
		Y: borderDeltaAxis(p.Y, min.Y, size.Y, k, w),
		Z: borderDeltaAxis(p.Z, min.Z, size.Z, k, w),
	}

	proj := n.Scale(delta.Dot(n))
	deltaPrime := delta.Sub(proj)
	return p.Add(deltaPrime)
}

// borderDeltaAxis is one axis of the per-axis Δ computation: q is the
// vertex's coordinate along this axis relative to min, s the block's
// extent along it.
func borderDeltaAxis(coord float64, min, s int, k, w float64) float64 {
	q := coord - float64(min)
	switch {
	case q < k:
		return (1 - q/k) * w
	case q > k*float64(s-1):
		return (k*float64(s)-1-q) * w
	default:
		return 0
	}
}

// NeedsSecondary reports whether a vertex with the given border mask's low
// six (per-face) bits carries a secondary position at all: spec.md §4.4
// only runs border-offset math when the vertex actually touches a block
// face.
func NeedsSecondary(borderMask uint16) bool {
	return borderMask&0x3f != 0
}
