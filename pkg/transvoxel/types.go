// Package transvoxel implements the Transvoxel polygonizer core: the
// vertex reuse cache, border-offset math, and the regular and transition
// sweep kernels that turn a voxel.View into triangle meshes.
package transvoxel

import (
	"math"

	"github.com/chazu/lignin-terrain/pkg/voxel"
)

// Pos is an integer cell position within a block's sweep.
type Pos struct {
	X, Y, Z int
}

// Size is the block's voxel extent, including padding.
type Size = voxel.Size

// MinPadding and MaxPadding are the fixed padding constants spec.md §6
// requires for backward and forward gradient sampling.
const (
	MinPadding = 1
	MaxPadding = 2
)

// TransitionCellScale is the fraction of a cell used by border-offset math
// when shrinking boundary cells to make room for a transition cell.
const TransitionCellScale = 0.25

// Face identifies one of the block's six faces, used by the transition
// sweep and by a vertex's BorderMask.
type Face int

const (
	FaceNegX Face = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// faceBit is the border-mask bit contributed by a cell lying on Face f.
var faceBit = map[Face]uint16{
	FaceNegX: 1 << 0,
	FacePosX: 1 << 1,
	FaceNegY: 1 << 2,
	FacePosY: 1 << 3,
	FaceNegZ: 1 << 4,
	FacePosZ: 1 << 5,
}

// Vec3 is a plain 3-component vector; transvoxel avoids pulling in a linear
// algebra package for its own output type since every operation it needs
// (add, scale, project, normalize) is a handful of lines, matching the
// teacher's own graph.Vec3.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3        { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3        { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3   { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64     { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Vertex is one emitted mesh vertex, per spec.md §3.
type Vertex struct {
	Primary   Vec3
	Normal    Vec3
	BorderMask uint16
	Secondary Vec3
	Extra     [4]float32 // (0, texture_idx, 0, border_mask)
}

// MeshOutput is the per-surface result of a build call, per spec.md §4.5.3.
type MeshOutput struct {
	Vertices []Vec3
	Normals  []Vec3
	Extra    [][4]float32
	Indices  []uint32
}

// Clear empties the output buffers while retaining their capacity, per
// spec.md §5's "never freed, only cleared" resource model.
func (m *MeshOutput) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Normals = m.Normals[:0]
	m.Extra = m.Extra[:0]
	m.Indices = m.Indices[:0]
}

func (m *MeshOutput) addVertex(v Vertex) uint32 {
	idx := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, v.Primary)
	m.Normals = append(m.Normals, v.Normal)
	m.Extra = append(m.Extra, v.Extra)
	return idx
}

func normalize(v Vec3) Vec3 {
	lenSq := v.Dot(v)
	if lenSq == 0 {
		return Vec3{0, 1, 0}
	}
	return v.Scale(1 / math.Sqrt(lenSq))
}
