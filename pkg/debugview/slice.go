// Package debugview renders visual aids for inspecting a voxel.View's case
// classification, the natural companion to the published algorithm's case
// diagrams.
package debugview

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/chazu/lignin-terrain/pkg/transvoxel/tables"
	"github.com/chazu/lignin-terrain/pkg/voxel"
)

// cellPixels is the on-screen size, in pixels, of one voxel cell in the
// rendered slice.
const cellPixels = 12

// caseColor buckets a regular cell's class into one of a handful of hues so
// adjacent classes are visually distinguishable without needing a legend
// for all 256 raw codes.
func caseColor(class uint8) string {
	switch {
	case class == 0:
		return "white" // fully outside: no geometry
	case class == 255:
		return "black" // fully inside: no geometry
	default:
		hue := int(class) % 12 * 30
		return fmt.Sprintf("hsl(%d,70%%,60%%)", hue)
	}
}

// WriteZSlice renders the case classification of every cell in the XY plane
// at the given Z layer to an SVG document written to w. channel selects
// which of the view's channels is sampled; density is conventionally 0.
func WriteZSlice(w io.Writer, v voxel.View, z, channel int) error {
	if v == nil {
		return fmt.Errorf("debugview: WriteZSlice: view is nil")
	}
	size := v.Size()
	if z < 0 || z >= size.Z-1 {
		return fmt.Errorf("debugview: WriteZSlice: z=%d out of range [0,%d)", z, size.Z-1)
	}

	width := size.X * cellPixels
	height := size.Y * cellPixels

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")

	for x := 0; x < size.X-1; x++ {
		for y := 0; y < size.Y-1; y++ {
			code := cellCode(v, x, y, z, channel)
			class := tables.RegularCellClass[code]

			px := x * cellPixels
			py := y * cellPixels
			canvas.Rect(px, py, cellPixels, cellPixels,
				fmt.Sprintf("fill:%s;stroke:gray;stroke-width:0.5", caseColor(class)))
		}
	}

	canvas.End()
	return nil
}

// cellCode samples the 8 corners of the cell whose min corner is (x,y,z) and
// packs their signs into a bitmask, corner i contributing bit i when its
// signed sample is negative ("solid" under this repo's polarity convention).
func cellCode(v voxel.View, x, y, z, channel int) int {
	offsets := [8][3]int{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	code := 0
	for i, off := range offsets {
		s := v.GetSigned(x+off[0], y+off[1], z+off[2], channel)
		if s < 0 {
			code |= 1 << uint(i)
		}
	}
	return code
}
