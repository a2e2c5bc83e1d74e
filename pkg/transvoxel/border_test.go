package transvoxel

import (
	"testing"

	"github.com/chazu/lignin-terrain/pkg/voxel"
)

func TestBorderOffsetInteriorIsUnchanged(t *testing.T) {
	size := Size{X: 16, Y: 16, Z: 16}
	min := Pos{1, 1, 1}
	p := Vec3{8, 8, 8}
	n := Vec3{0, 1, 0}
	got := BorderOffset(p, n, 0, size, min)
	if got != p {
		t.Errorf("interior vertex shifted: got %+v, want %+v", got, p)
	}
}

func TestBorderOffsetNearMinFaceShiftsInward(t *testing.T) {
	size := Size{X: 16, Y: 16, Z: 16}
	min := Pos{1, 1, 1}
	p := Vec3{1, 8, 8}
	n := Vec3{0, 1, 0} // normal orthogonal to the shrinking axis: projection leaves it unchanged
	got := BorderOffset(p, n, 0, size, min)
	if got.X <= p.X {
		t.Errorf("expected the border cell to shrink toward the interior (X increasing), got X=%v (was %v)", got.X, p.X)
	}
}

func TestNeedsSecondaryRequiresAFaceBit(t *testing.T) {
	if NeedsSecondary(0) {
		t.Error("mask 0 should not need a secondary position")
	}
	if !NeedsSecondary(1) {
		t.Error("mask with -X bit set should need a secondary position")
	}
	if NeedsSecondary(1 << 6) {
		t.Error("only an edge-endpoint-AND bit (bit 6+) set should not need a secondary position")
	}
}

func TestFaceMembershipInteriorIsZero(t *testing.T) {
	size := Size{X: 16, Y: 16, Z: 16}
	if got := faceMembership(size, Vec3{8, 8, 8}); got != 0 {
		t.Errorf("interior point: faceMembership = %#x, want 0", got)
	}
}

func TestFaceMembershipSetsBothLowFaces(t *testing.T) {
	size := Size{X: 16, Y: 16, Z: 16}
	got := faceMembership(size, Vec3{MinPadding, MinPadding, 8})
	want := uint16(1<<0 | 1<<2)
	if got != want {
		t.Errorf("corner-adjacent point: faceMembership = %#x, want %#x", got, want)
	}
}

func TestComputeBorderMaskSetsHighBitsOnlyWhenBothEndpointsShareAFace(t *testing.T) {
	size := Size{X: 16, Y: 16, Z: 16}
	// Both endpoints sit on the -X face: the AND survives into bits 6..11.
	p0 := Vec3{MinPadding, 4, 4}
	p1 := Vec3{MinPadding, 5, 4}
	primary := Vec3{MinPadding, 4.5, 4}
	got := computeBorderMask(size, primary, p0, p1)
	if got&0x3f == 0 {
		t.Errorf("primary on -X face: low bits = %#x, want -X bit set", got&0x3f)
	}
	if (got>>6)&0x3f == 0 {
		t.Errorf("both endpoints on -X face: high bits = %#x, want -X bit set", (got>>6)&0x3f)
	}
}

func TestBlendedCornerNormalReducesToOneCornerAtFullWeight(t *testing.T) {
	size := voxel.Size{X: 8, Y: 8, Z: 8}
	g := voxel.NewDenseGrid(size)
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				raw := uint8(0)
				if x < 4 {
					raw = 255
				}
				g.Set(x, y, z, voxel.ChannelDensity, raw)
			}
		}
	}
	p0 := Vec3{3, 4, 4}
	p1 := Vec3{5, 4, 4}
	got := blendedCornerNormal(g, voxel.ChannelDensity, p0, p1, 1, 0)
	want := normalize(cornerGradient(g, voxel.ChannelDensity, 3, 4, 4))
	if got != want {
		t.Errorf("full weight on p0: blendedCornerNormal = %+v, want %+v", got, want)
	}
}

func TestComputeBorderMaskHighBitsRequireBothEndpoints(t *testing.T) {
	size := Size{X: 16, Y: 16, Z: 16}
	// Only one endpoint touches -X; the edge crosses away from the face.
	p0 := Vec3{MinPadding, 4, 4}
	p1 := Vec3{MinPadding + 1, 4, 4}
	primary := Vec3{MinPadding, 4, 4}
	got := computeBorderMask(size, primary, p0, p1)
	if (got>>6)&0x3f != 0 {
		t.Errorf("only one endpoint on -X face: high bits = %#x, want 0", (got>>6)&0x3f)
	}
}
