package transvoxel

import (
	"log"

	"github.com/chazu/lignin-terrain/pkg/transvoxel/tables"
	"github.com/chazu/lignin-terrain/pkg/voxel"
)

// TextureChannel is the voxel.View channel the polygonizer reads a vertex's
// texture index from. The density channel (voxel.ChannelDensity) drives the
// case classification; this one only ever feeds through to Vertex.Extra.
const TextureChannel = voxel.ChannelTexture

// Polygonizer holds the vertex reuse caches and output buffers one block's
// worth of builds reuses across calls. It is not safe for concurrent use on
// the same instance; a worker pool wants one Polygonizer per goroutine.
type Polygonizer struct {
	// Logger receives precondition-failure diagnostics (degenerate
	// crossings, out-of-range cache lookups) rather than panicking, per
	// this package's "skip the cell, never panic" error model. Defaults
	// to log.Default() when nil.
	Logger *log.Logger

	regularCache    *RegularCache
	transitionCache *TransitionCache
	regularSize     Size
	transitionWidth int
}

func (p *Polygonizer) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// BuildRegular polygonizes the interior of a block on the given channel,
// producing the single regular surface spec.md §4.5.1 describes. The
// result overwrites out's buffers in place (Clear then append), so callers
// that want to keep a prior build's output must copy it out first.
func (p *Polygonizer) BuildRegular(view voxel.View, channel int, lod int, out *MeshOutput) {
	out.Clear()

	size := view.Size()
	if p.regularCache == nil || p.regularSize != size {
		p.regularCache = NewRegularCache(size)
		p.regularSize = size
	} else {
		p.regularCache.Reset(size)
	}

	if raw, uniform := view.Uniform(channel); uniform {
		_ = raw
		return
	}

	min := Pos{MinPadding, MinPadding, MinPadding}
	max := Pos{size.X - MaxPadding, size.Y - MaxPadding, size.Z - MaxPadding}
	scale := float64(int(1) << lod)

	for z := min.Z; z < max.Z; z++ {
		for y := min.Y; y < max.Y; y++ {
			for x := min.X; x < max.X; x++ {
				pos := Pos{x, y, z}
				p.buildRegularCell(view, channel, pos, min, scale, lod, out)
			}
		}
	}
}

func (p *Polygonizer) buildRegularCell(view voxel.View, channel int, pos, min Pos, scale float64, lod int, out *MeshOutput) {
	var signed [8]int8
	for c := 0; c < 8; c++ {
		cx, cy, cz := pos.X+c&1, pos.Y+(c>>1)&1, pos.Z+(c>>2)&1
		signed[c] = view.GetSigned(cx, cy, cz, channel)
	}

	code := 0
	for c := 0; c < 8; c++ {
		if (signed[c]>>7)&1 != 0 {
			code |= 1 << c
		}
	}

	slot := p.regularCache.Cell(pos)
	if code == 0 || code == 255 {
		slot[0] = -1
		return
	}

	cellData := tables.RegularCellData[tables.RegularCellClass[code]]
	vertexData := tables.RegularVertexData[tables.RegularCellClass[code]]
	dirMask := RegularDirectionValidityMask(pos, min)

	localIdx := make([]int32, len(vertexData))
	for i, packed := range vertexData {
		v0 := int((packed >> 4) & 0xf)
		v1 := int(packed & 0xf)
		high := byte(packed >> 8)
		reuseDir := int(high>>4) & 0x7
		owns := high&0x80 != 0
		reuseSlot := int(high & 0xf)

		idx, ok := p.resolveRegularVertex(view, channel, pos, min, dirMask, v0, v1, signed, reuseDir, reuseSlot, owns, scale, lod, out)
		if !ok {
			p.logger().Printf("transvoxel: regular cell %+v: degenerate edge (%d,%d), skipping cell", pos, v0, v1)
			return
		}
		localIdx[i] = idx
		if owns && reuseSlot < 4 {
			slot[reuseSlot] = idx
		}
	}

	for t := 0; t+2 < len(cellData.VertexIndex); t += 3 {
		a := localIdx[cellData.VertexIndex[t]]
		b := localIdx[cellData.VertexIndex[t+1]]
		c := localIdx[cellData.VertexIndex[t+2]]
		out.Indices = append(out.Indices, uint32(a), uint32(b), uint32(c))
	}
}

// resolveRegularVertex returns the output vertex index for one edge
// crossing of a regular cell, either by emitting a fresh vertex or by
// reusing one cached by an already-visited neighbor.
func (p *Polygonizer) resolveRegularVertex(
	view voxel.View, channel int, pos, min Pos, dirMask int,
	v0, v1 int, signed [8]int8, reuseDir, reuseSlot int, owns bool,
	scale float64, lod int, out *MeshOutput,
) (int32, bool) {
	d0, d1 := int(signed[v0]), int(signed[v1])
	if d0 == d1 {
		return 0, false
	}

	if owns || reuseDir == 0 {
		return p.emitRegularVertex(view, channel, pos, v0, v1, d0, d1, scale, lod, out), true
	}

	if dirMask&reuseDir != reuseDir {
		// Neighbor lies outside the padded sweep; nothing cached there yet
		// this call, fall back to emitting fresh rather than reading
		// garbage from an unvisited cell.
		return p.emitRegularVertex(view, channel, pos, v0, v1, d0, d1, scale, lod, out), true
	}

	neighbor := pos
	if reuseDir&1 != 0 {
		neighbor.X--
	}
	if reuseDir&2 != 0 {
		neighbor.Y--
	}
	if reuseDir&4 != 0 {
		neighbor.Z--
	}
	nSlot := p.regularCache.Cell(neighbor)
	if reuseSlot >= 4 || nSlot[reuseSlot] < 0 {
		return p.emitRegularVertex(view, channel, pos, v0, v1, d0, d1, scale, lod, out), true
	}
	return nSlot[reuseSlot], true
}

func (p *Polygonizer) emitRegularVertex(
	view voxel.View, channel int, pos Pos, v0, v1, d0, d1 int, scale float64, lod int, out *MeshOutput,
) int32 {
	t := (d1 << 8) / (d1 - d0)
	t0 := float64(t) / 256
	t1 := float64(256-t) / 256

	p0 := cornerPos(pos, v0)
	p1 := cornerPos(pos, v1)
	primary := p0.Scale(t1).Add(p1.Scale(t0))

	normal := blendedCornerNormal(view, channel, p0, p1, t1, t0)

	borderMask := computeBorderMask(view.Size(), primary, p0, p1)
	extraTexture := float32(view.Get(pos.X, pos.Y, pos.Z, TextureChannel))

	primaryScaled := primary.Scale(scale)
	secondary := primaryScaled
	if NeedsSecondary(borderMask) {
		size := view.Size()
		min := Pos{MinPadding, MinPadding, MinPadding}
		secondary = BorderOffset(primaryScaled, normal, lod, size, min)
	}

	unpad := Vec3{MinPadding, MinPadding, MinPadding}.Scale(scale)
	v := Vertex{
		Primary:    primaryScaled.Sub(unpad),
		Normal:     normal,
		BorderMask: borderMask,
		Secondary:  secondary.Sub(unpad),
		Extra:      [4]float32{0, extraTexture, 0, float32(borderMask)},
	}
	return int32(out.addVertex(v))
}

func cornerPos(pos Pos, c int) Vec3 {
	return Vec3{
		X: float64(pos.X + c&1),
		Y: float64(pos.Y + (c>>1)&1),
		Z: float64(pos.Z + (c>>2)&1),
	}
}

// cornerGradient central-differences the signed density field one voxel in
// each direction around the lattice point (x, y, z) and returns the
// negated (un-normalized) central difference (s[-1] - s[+1]) / 256 per
// axis, per spec.md §4.5.1's 1/256-scaled gradient. Since the signed field
// is negative on the solid side, this vector points toward the solid.
func cornerGradient(view voxel.View, channel, x, y, z int) Vec3 {
	gx := float64(view.GetSigned(x+1, y, z, channel)) - float64(view.GetSigned(x-1, y, z, channel))
	gy := float64(view.GetSigned(x, y+1, z, channel)) - float64(view.GetSigned(x, y-1, z, channel))
	gz := float64(view.GetSigned(x, y, z+1, channel)) - float64(view.GetSigned(x, y, z-1, channel))
	return Vec3{-gx / 256, -gy / 256, -gz / 256}
}

// blendedCornerNormal computes the central-difference gradient at each of
// an edge crossing's two corners and blends them by the same interpolation
// weights used for the crossing's position, per spec.md §4.5.1 step 5b:
// normal = normalize(g[v0]*w0 + g[v1]*w1). Corners always sit on integer
// lattice points, so no rounding is needed to sample each one.
func blendedCornerNormal(view voxel.View, channel int, p0, p1 Vec3, w0, w1 float64) Vec3 {
	g0 := cornerGradient(view, channel, int(p0.X), int(p0.Y), int(p0.Z))
	g1 := cornerGradient(view, channel, int(p1.X), int(p1.Y), int(p1.Z))
	return normalize(g0.Scale(w0).Add(g1.Scale(w1)))
}

// faceMembership reports, as the low six bits of a mask, which of the
// block's six faces the point p lies on.
func faceMembership(size Size, p Vec3) uint16 {
	var mask uint16
	if p.X <= float64(MinPadding) {
		mask |= 1 << 0
	}
	if p.X >= float64(size.X-MaxPadding) {
		mask |= 1 << 1
	}
	if p.Y <= float64(MinPadding) {
		mask |= 1 << 2
	}
	if p.Y >= float64(size.Y-MaxPadding) {
		mask |= 1 << 3
	}
	if p.Z <= float64(MinPadding) {
		mask |= 1 << 4
	}
	if p.Z >= float64(size.Z-MaxPadding) {
		mask |= 1 << 5
	}
	return mask
}

// computeBorderMask builds a vertex's full 12-bit border mask: the low six
// bits are which block faces the crossing's primary position itself touches
// (cell-face membership); the high six bits are the AND of the two edge
// endpoints' own face memberships, per spec.md §3/§6 — identifying which
// block-face seams this vertex lies on for secondary-position application,
// since a vertex can sit on a seam (both endpoints share a face) even when
// its interpolated position isn't itself flush against that face.
func computeBorderMask(size Size, primary, p0, p1 Vec3) uint16 {
	low := faceMembership(size, primary)
	high := faceMembership(size, p0) & faceMembership(size, p1)
	return low | (high&0x3f)<<6
}

// axisForFace returns the function mapping a transition sweep's in-face
// (fx, fy) coordinates on face f to the block's full 3D coordinate space,
// holding the face's fixed axis at its block-relative boundary value. fx
// sweeps Y then fy sweeps Z on the two X faces, and fx sweeps X on the Y
// and Z faces; BuildTransition's maxFx/maxFy bounds and transitionWidth are
// derived to match this same order.
func axisForFace(f Face, size Size) (fixed func(fx, fy int) (x, y, z int)) {
	switch f {
	case FaceNegX:
		return func(fx, fy int) (int, int, int) { return MinPadding, fx, fy }
	case FacePosX:
		return func(fx, fy int) (int, int, int) { return size.X - MaxPadding, fx, fy }
	case FaceNegY:
		return func(fx, fy int) (int, int, int) { return fx, MinPadding, fy }
	case FacePosY:
		return func(fx, fy int) (int, int, int) { return fx, size.Y - MaxPadding, fy }
	case FaceNegZ:
		return func(fx, fy int) (int, int, int) { return fx, fy, MinPadding }
	case FacePosZ:
		return func(fx, fy int) (int, int, int) { return fx, fy, size.Z - MaxPadding }
	}
	panic("transvoxel: invalid face")
}

// BuildTransition polygonizes one face's transition cells at half the
// block's full resolution, stitching the block's own full-resolution
// boundary against a coarser neighbor, per spec.md §4.5.2.
func (p *Polygonizer) BuildTransition(view voxel.View, channel int, face Face, lod int, out *MeshOutput) {
	out.Clear()

	size := view.Size()
	fixed := axisForFace(face, size)

	width := size.X
	if face == FaceNegX || face == FacePosX {
		width = size.Y
	}
	if p.transitionCache == nil || p.transitionWidth != width {
		p.transitionCache = NewTransitionCache(width)
		p.transitionWidth = width
	} else {
		p.transitionCache.Reset(width)
	}

	if raw, uniform := view.Uniform(channel); uniform {
		_ = raw
		return
	}

	min := MinPadding
	maxFx := size.X - MaxPadding
	maxFy := size.Y - MaxPadding
	if face == FaceNegX || face == FacePosX {
		maxFx = size.Y - MaxPadding
		maxFy = size.Z - MaxPadding
	} else if face == FaceNegY || face == FacePosY {
		maxFy = size.Z - MaxPadding
	}

	scale := float64(int(1) << lod)

	for fy := min; fy < maxFy; fy += 2 {
		for fx := min; fx < maxFx; fx += 2 {
			p.buildTransitionCell(view, channel, face, fx, fy, min, fixed, scale, lod, out)
		}
	}
}

// sample9 holds the 9 full-resolution density samples a transition cell's
// 3x3 patch reads, laid out row-major per spec.md's "6 7 8 / 3 4 5 / 0 1 2".
func sample9(view voxel.View, channel int, face Face, fx, fy int, fixed func(int, int) (int, int, int)) [9]int8 {
	var s [9]int8
	offsets := [9][2]int{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}
	for i, off := range offsets {
		x, y, z := fixed(fx+off[0], fy+off[1])
		s[i] = view.GetSigned(x, y, z, channel)
	}
	return s
}

// sample13 extends sample9 with the 4 half-resolution corner aliases 9..12,
// which the coarse neighbor's own case classification sees at the same
// world position as fine corners 0, 2, 6, 8 respectively (a coarse voxel
// covers the same lattice point, just without the fine samples between).
func sample13(fine [9]int8) [13]int8 {
	var s [13]int8
	copy(s[:9], fine[:])
	s[9], s[10], s[11], s[12] = fine[0], fine[2], fine[6], fine[8]
	return s
}

func (p *Polygonizer) buildTransitionCell(
	view voxel.View, channel int, face Face, fx, fy, min int,
	fixed func(int, int) (int, int, int), scale float64, lod int, out *MeshOutput,
) {
	fine := sample9(view, channel, face, fx, fy, fixed)
	signed := sample13(fine)

	order := [9]int{0, 1, 2, 5, 8, 7, 6, 3, 4}
	code := 0
	for bit, pos := range order {
		if (fine[pos]>>7)&1 != 0 {
			code |= 1 << bit
		}
	}

	slot := p.transitionCache.Cell2D(fx, fy)
	if code == 0 || code == 511 {
		slot[0] = -1
		return
	}

	cellData := tables.TransitionCellData[code]
	vertexData := tables.TransitionVertexData[code]
	dirMask := TransitionDirectionValidityMask(fx, fy, min)

	localIdx := make([]int32, len(vertexData))
	for i, packed := range vertexData {
		v0 := int((packed >> 4) & 0xf)
		v1 := int(packed & 0xf)
		high := byte(packed >> 8)
		reuseDir := int(high>>4) & 0x3
		owns := high&0x80 != 0
		reuseSlot := int(high & 0xf & 0x3)

		idx, ok := p.resolveTransitionVertex(view, channel, face, fx, fy, min, dirMask, v0, v1, signed, reuseDir, reuseSlot, owns, fixed, scale, lod, out)
		if !ok {
			p.logger().Printf("transvoxel: transition cell face %d (%d,%d): degenerate edge (%d,%d), skipping cell", face, fx, fy, v0, v1)
			return
		}
		localIdx[i] = idx
		if owns && reuseSlot < 4 {
			slot[reuseSlot] = idx
		}
	}

	for t := 0; t+2 < len(cellData.VertexIndex); t += 3 {
		a := localIdx[cellData.VertexIndex[t]]
		b := localIdx[cellData.VertexIndex[t+1]]
		c := localIdx[cellData.VertexIndex[t+2]]
		out.Indices = append(out.Indices, uint32(a), uint32(b), uint32(c))
	}
}

func (p *Polygonizer) resolveTransitionVertex(
	view voxel.View, channel int, face Face, fx, fy, min int, dirMask int,
	v0, v1 int, signed [13]int8, reuseDir, reuseSlot int, owns bool,
	fixed func(int, int) (int, int, int), scale float64, lod int, out *MeshOutput,
) (int32, bool) {
	d0, d1 := int(signed[v0]), int(signed[v1])
	if d0 == d1 {
		return 0, false
	}

	if owns || reuseDir == 0 {
		return p.emitTransitionVertex(view, channel, face, fx, fy, v0, v1, d0, d1, fixed, scale, lod, out), true
	}

	if dirMask&reuseDir != reuseDir {
		return p.emitTransitionVertex(view, channel, face, fx, fy, v0, v1, d0, d1, fixed, scale, lod, out), true
	}

	nfx, nfy := fx, fy
	if reuseDir&1 != 0 {
		nfx -= 2
	}
	if reuseDir&2 != 0 {
		nfy -= 2
	}
	nSlot := p.transitionCache.Cell2D(nfx, nfy)
	if reuseSlot >= 4 || nSlot[reuseSlot] < 0 {
		return p.emitTransitionVertex(view, channel, face, fx, fy, v0, v1, d0, d1, fixed, scale, lod, out), true
	}
	return nSlot[reuseSlot], true
}

func (p *Polygonizer) emitTransitionVertex(
	view voxel.View, channel int, face Face, fx, fy, v0, v1, d0, d1 int,
	fixed func(int, int) (int, int, int), scale float64, lod int, out *MeshOutput,
) int32 {
	t := (d1 << 8) / (d1 - d0)
	t0 := float64(t) / 256
	t1 := float64(256-t) / 256

	p0 := transitionSamplePos(fx, fy, v0, fixed)
	p1 := transitionSamplePos(fx, fy, v1, fixed)
	primary := p0.Scale(t1).Add(p1.Scale(t0))

	normal := blendedCornerNormal(view, channel, p0, p1, t1, t0)

	// A vertex touching a half-resolution alias (9..12) sits on the seam
	// this transition cell stitches against its coarser neighbor, and per
	// spec.md §4.5.2.f's secondary-position asymmetry never needs its own
	// border/secondary treatment: the fine-side vertex on the same edge
	// already carries it.
	var borderMask uint16
	if v0 < 9 && v1 < 9 {
		borderMask = computeBorderMask(view.Size(), primary, p0, p1) | faceBit[face]
	}

	tx, ty, tz := fixed(fx, fy)
	extraTexture := float32(view.Get(tx, ty, tz, TextureChannel))

	primaryScaled := primary.Scale(scale)
	secondary := primaryScaled
	if v0 < 9 && v1 < 9 && NeedsSecondary(borderMask) {
		size := view.Size()
		min := Pos{MinPadding, MinPadding, MinPadding}
		secondary = BorderOffset(primaryScaled, normal, lod, size, min)
	}

	unpad := Vec3{MinPadding, MinPadding, MinPadding}.Scale(scale)
	v := Vertex{
		Primary:    primaryScaled.Sub(unpad),
		Normal:     normal,
		BorderMask: borderMask,
		Secondary:  secondary.Sub(unpad),
		Extra:      [4]float32{0, extraTexture, 0, float32(borderMask)},
	}
	return int32(out.addVertex(v))
}

// transitionSamplePos maps a transition-cell sample index (0..8 fine, 9..12
// half-resolution corner aliases) to its world-local position within the
// face patch rooted at (fx, fy).
func transitionSamplePos(fx, fy, idx int, fixed func(int, int) (int, int, int)) Vec3 {
	var lx, ly int
	switch {
	case idx < 9:
		lx, ly = idx%3, idx/3
	case idx == 9:
		lx, ly = 0, 0
	case idx == 10:
		lx, ly = 2, 0
	case idx == 11:
		lx, ly = 0, 2
	default:
		lx, ly = 2, 2
	}
	x, y, z := fixed(fx+lx, fy+ly)
	return Vec3{float64(x), float64(y), float64(z)}
}

// BuildAll runs the regular build plus all six transition builds, matching
// spec.md §4.5.3's "build_all" external entry point. outs must have length
// 7: index 0 is the regular surface, 1..6 are the transition faces in Face
// order (FaceNegX..FacePosZ).
func (p *Polygonizer) BuildAll(view voxel.View, channel int, lod int, outs []*MeshOutput) {
	if len(outs) != 7 {
		panic("transvoxel: BuildAll requires 7 output buffers")
	}
	p.BuildRegular(view, channel, lod, outs[0])
	for f := FaceNegX; f <= FacePosZ; f++ {
		p.BuildTransition(view, channel, f, lod, outs[1+int(f)])
	}
}
