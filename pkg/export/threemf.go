// Package export writes polygonizer output to interchange formats consumed
// by external slicers and viewers.
package export

import (
	"fmt"
	"io"

	"github.com/hpinc/go3mf"

	"github.com/chazu/lignin-terrain/pkg/transvoxel"
)

// WriteThreeMF encodes a single mesh's triangle-list output as a .3mf model
// and writes it to w. Vertices are written in the order MeshOutput produced
// them; no dedup or welding is attempted here, that is the polygonizer's
// job via its reuse cache.
func WriteThreeMF(w io.Writer, mesh *transvoxel.MeshOutput) error {
	if mesh == nil {
		return fmt.Errorf("export: WriteThreeMF: mesh is nil")
	}
	if len(mesh.Indices)%3 != 0 {
		return fmt.Errorf("export: WriteThreeMF: index count %d is not a multiple of 3", len(mesh.Indices))
	}

	verts := make([]go3mf.Point3D, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = go3mf.Point3D{float32(v.X), float32(v.Y), float32(v.Z)}
	}

	tris := make([]go3mf.Triangle, 0, len(mesh.Indices)/3)
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		tris = append(tris, go3mf.Triangle{
			V1: uint32(mesh.Indices[i]),
			V2: uint32(mesh.Indices[i+1]),
			V3: uint32(mesh.Indices[i+2]),
		})
	}

	model := new(go3mf.Model)
	model.Resources.Objects = append(model.Resources.Objects, &go3mf.Object{
		ID: 1,
		Mesh: &go3mf.Mesh{
			Vertices:  go3mf.Vertices{Vertex: verts},
			Triangles: go3mf.Triangles{Triangle: tris},
		},
	})
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: 1})

	enc := go3mf.NewEncoder(w)
	if err := enc.Encode(model); err != nil {
		return fmt.Errorf("export: WriteThreeMF: encode: %w", err)
	}
	return nil
}

// WriteBlocksThreeMF encodes several named block meshes into a single .3mf
// model, one object per block, all placed at the origin in the build. The
// caller is responsible for baking any world-space offsets into each mesh's
// vertices before calling this, since 3mf items only support one transform
// per instance and this repo's blocks are already resolved into world space
// by the time they reach export.
func WriteBlocksThreeMF(w io.Writer, meshes map[string]*transvoxel.MeshOutput) error {
	if len(meshes) == 0 {
		return fmt.Errorf("export: WriteBlocksThreeMF: no meshes given")
	}

	model := new(go3mf.Model)
	var nextID uint32 = 1
	for name, mesh := range meshes {
		if mesh == nil || len(mesh.Vertices) == 0 {
			continue
		}
		verts := make([]go3mf.Point3D, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			verts[i] = go3mf.Point3D{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		tris := make([]go3mf.Triangle, 0, len(mesh.Indices)/3)
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			tris = append(tris, go3mf.Triangle{
				V1: uint32(mesh.Indices[i]),
				V2: uint32(mesh.Indices[i+1]),
				V3: uint32(mesh.Indices[i+2]),
			})
		}

		id := nextID
		nextID++
		model.Resources.Objects = append(model.Resources.Objects, &go3mf.Object{
			ID:   id,
			Name: name,
			Mesh: &go3mf.Mesh{
				Vertices:  go3mf.Vertices{Vertex: verts},
				Triangles: go3mf.Triangles{Triangle: tris},
			},
		})
		model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: id})
	}

	if len(model.Resources.Objects) == 0 {
		return fmt.Errorf("export: WriteBlocksThreeMF: every mesh given was empty")
	}

	enc := go3mf.NewEncoder(w)
	if err := enc.Encode(model); err != nil {
		return fmt.Errorf("export: WriteBlocksThreeMF: encode: %w", err)
	}
	return nil
}
