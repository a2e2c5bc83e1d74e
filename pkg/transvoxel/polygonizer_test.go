package transvoxel

import (
	"math"
	"testing"

	"github.com/chazu/lignin-terrain/pkg/voxel"
)

func TestBuildRegularUniformBlockIsEmpty(t *testing.T) {
	g := voxel.NewDenseGrid(voxel.Size{X: 6, Y: 6, Z: 6})
	g.Fill(voxel.ChannelDensity, 0) // all air

	var p Polygonizer
	var out MeshOutput
	p.BuildRegular(g, voxel.ChannelDensity, 0, &out)

	if len(out.Vertices) != 0 || len(out.Indices) != 0 {
		t.Errorf("uniform block produced %d vertices, %d indices; want 0, 0", len(out.Vertices), len(out.Indices))
	}
}

func TestBuildRegularSingleSolidCorner(t *testing.T) {
	size := voxel.Size{X: 6, Y: 6, Z: 6}
	g := voxel.NewDenseGrid(size)
	g.Fill(voxel.ChannelDensity, 0)
	if err := g.Set(2, 2, 2, voxel.ChannelDensity, 255); err != nil {
		t.Fatal(err)
	}

	var p Polygonizer
	var out MeshOutput
	p.BuildRegular(g, voxel.ChannelDensity, 0, &out)

	if len(out.Indices) == 0 {
		t.Fatal("a single solid corner should produce at least one triangle")
	}
	if len(out.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(out.Indices))
	}
	for _, idx := range out.Indices {
		if int(idx) >= len(out.Vertices) {
			t.Fatalf("index %d out of range for %d vertices", idx, len(out.Vertices))
		}
	}
}

func TestBuildRegularNormalsAreUnitLength(t *testing.T) {
	size := voxel.Size{X: 8, Y: 8, Z: 8}
	g := voxel.NewDenseGrid(size)
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				raw := uint8(0)
				if z < 4 {
					raw = 255
				}
				g.Set(x, y, z, voxel.ChannelDensity, raw)
			}
		}
	}

	var p Polygonizer
	var out MeshOutput
	p.BuildRegular(g, voxel.ChannelDensity, 0, &out)

	if len(out.Normals) == 0 {
		t.Fatal("flat interface should produce vertices")
	}
	for i, n := range out.Normals {
		l := math.Sqrt(n.Dot(n))
		if math.Abs(l-1) > 1e-9 {
			t.Errorf("normal %d has length %v, want 1", i, l)
		}
	}
}

func TestBuildRegularIsDeterministic(t *testing.T) {
	size := voxel.Size{X: 8, Y: 8, Z: 8}
	g := voxel.NewDenseGrid(size)
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				raw := uint8(0)
				if x+y+z < 10 {
					raw = 255
				}
				g.Set(x, y, z, voxel.ChannelDensity, raw)
			}
		}
	}

	var p1, p2 Polygonizer
	var out1, out2 MeshOutput
	p1.BuildRegular(g, voxel.ChannelDensity, 0, &out1)
	p2.BuildRegular(g, voxel.ChannelDensity, 0, &out2)

	if len(out1.Vertices) != len(out2.Vertices) || len(out1.Indices) != len(out2.Indices) {
		t.Fatalf("two builds of the same grid disagree: (%d,%d) vs (%d,%d)",
			len(out1.Vertices), len(out1.Indices), len(out2.Vertices), len(out2.Indices))
	}
	for i := range out1.Vertices {
		if out1.Vertices[i] != out2.Vertices[i] {
			t.Errorf("vertex %d differs between builds: %+v vs %+v", i, out1.Vertices[i], out2.Vertices[i])
		}
	}
}

func TestBuildRegularLODScalesPositions(t *testing.T) {
	size := voxel.Size{X: 6, Y: 6, Z: 6}
	g := voxel.NewDenseGrid(size)
	g.Fill(voxel.ChannelDensity, 0)
	g.Set(2, 2, 2, voxel.ChannelDensity, 255)

	var p0, p1 Polygonizer
	var out0, out1 MeshOutput
	p0.BuildRegular(g, voxel.ChannelDensity, 0, &out0)
	p1.BuildRegular(g, voxel.ChannelDensity, 1, &out1)

	if len(out0.Vertices) != len(out1.Vertices) {
		t.Fatalf("lod should not change vertex count: %d vs %d", len(out0.Vertices), len(out1.Vertices))
	}
	for i := range out0.Vertices {
		want := out0.Vertices[i].Scale(2)
		got := out1.Vertices[i]
		if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 || math.Abs(got.Z-want.Z) > 1e-9 {
			t.Errorf("vertex %d: lod=1 position %+v, want %+v (2x lod=0)", i, got, want)
		}
	}
}

func TestBuildRegularVerticesAreUnpadded(t *testing.T) {
	size := voxel.Size{X: 6, Y: 6, Z: 6}
	g := voxel.NewDenseGrid(size)
	g.Fill(voxel.ChannelDensity, 0)
	g.Set(2, 2, 2, voxel.ChannelDensity, 255)

	var p Polygonizer
	var out MeshOutput
	p.BuildRegular(g, voxel.ChannelDensity, 0, &out)

	if len(out.Vertices) == 0 {
		t.Fatal("a single solid corner should produce vertices")
	}
	max := float64(size.X - MinPadding - MaxPadding)
	for i, v := range out.Vertices {
		if v.X < 0 || v.Y < 0 || v.Z < 0 || v.X > max || v.Y > max || v.Z > max {
			t.Errorf("vertex %d = %+v out of unpadded range [0, %v]", i, v, max)
		}
	}
}

func TestBuildTransitionUniformFaceIsEmpty(t *testing.T) {
	g := voxel.NewDenseGrid(voxel.Size{X: 8, Y: 8, Z: 8})
	g.Fill(voxel.ChannelDensity, 0)

	var p Polygonizer
	var out MeshOutput
	p.BuildTransition(g, voxel.ChannelDensity, FacePosZ, 0, &out)

	if len(out.Vertices) != 0 {
		t.Errorf("uniform face produced %d vertices, want 0", len(out.Vertices))
	}
}

func TestBuildTransitionFlatInterfaceProducesTriangles(t *testing.T) {
	size := voxel.Size{X: 8, Y: 8, Z: 8}
	g := voxel.NewDenseGrid(size)
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				raw := uint8(0)
				if y < 4 {
					raw = 255
				}
				g.Set(x, y, z, voxel.ChannelDensity, raw)
			}
		}
	}

	var p Polygonizer
	var out MeshOutput
	p.BuildTransition(g, voxel.ChannelDensity, FaceNegZ, 0, &out)

	if len(out.Indices) == 0 {
		t.Fatal("a flat interface crossing the face should produce triangles")
	}
	if len(out.Indices)%3 != 0 {
		t.Errorf("index count %d not a multiple of 3", len(out.Indices))
	}
}

func TestBuildAllProducesSevenSurfaces(t *testing.T) {
	g := voxel.NewDenseGrid(voxel.Size{X: 8, Y: 8, Z: 8})
	g.Fill(voxel.ChannelDensity, 0)
	g.Set(4, 4, 4, voxel.ChannelDensity, 255)

	var p Polygonizer
	outs := make([]*MeshOutput, 7)
	for i := range outs {
		outs[i] = &MeshOutput{}
	}
	p.BuildAll(g, voxel.ChannelDensity, 0, outs)

	if len(outs[0].Indices) == 0 {
		t.Error("regular surface (outs[0]) should be non-empty for an interior solid corner")
	}
}
