package export

import (
	"github.com/chazu/lignin-terrain/pkg/kernel"
	"github.com/chazu/lignin-terrain/pkg/transvoxel"
)

// FromKernelMesh adapts a kernel.Mesh (the scene DSL's marching-cubes output)
// into a transvoxel.MeshOutput so both geometry pipelines in this repository
// can share the same .3mf writer.
func FromKernelMesh(m *kernel.Mesh) *transvoxel.MeshOutput {
	if m == nil {
		return &transvoxel.MeshOutput{}
	}

	out := &transvoxel.MeshOutput{
		Indices: append([]uint32(nil), m.Indices...),
	}
	n := m.VertexCount()
	out.Vertices = make([]transvoxel.Vec3, n)
	out.Normals = make([]transvoxel.Vec3, n)
	out.Extra = make([][4]float32, n)
	for i := 0; i < n; i++ {
		out.Vertices[i] = transvoxel.Vec3{
			X: float64(m.Vertices[i*3]),
			Y: float64(m.Vertices[i*3+1]),
			Z: float64(m.Vertices[i*3+2]),
		}
		out.Normals[i] = transvoxel.Vec3{
			X: float64(m.Normals[i*3]),
			Y: float64(m.Normals[i*3+1]),
			Z: float64(m.Normals[i*3+2]),
		}
	}
	return out
}
