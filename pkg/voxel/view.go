// Package voxel defines the read-only grid of signed density samples the
// Transvoxel polygonizer sweeps over, plus the one concrete producer of such
// a grid this repository ships: a rasterizer from an SDF expression tree.
package voxel

// Size is the integer extent of a grid along each axis.
type Size struct {
	X, Y, Z int
}

// View is the abstract accessor the polygonizer sweeps: a 3D grid of raw
// 8-bit samples addressable per channel, with a fast uniform-block
// short-circuit. Implementations need not be in-memory; the polygonizer
// only ever reads within its own padded sweep region.
type View interface {
	// Get reads the raw sample at (x, y, z) on the given channel. Bounds
	// are the caller's responsibility within the padded sweep region.
	Get(x, y, z, channel int) uint8
	// GetSigned returns the signed reinterpretation the polygonizer's case
	// classification operates on: (255-raw)-128.
	GetSigned(x, y, z, channel int) int8
	// Uniform reports the single raw value every sample on this channel
	// holds, if the whole grid is known to be uniform on that channel.
	Uniform(channel int) (uint8, bool)
	// Size returns the grid's extent.
	Size() Size
}

// SignedFromRaw applies the polarity spec.md resolves Open Question 2 with:
// raw 0 (the usual "air" convention for a freshly zeroed buffer) maps to
// signed +127 (non-negative, "air"); raw 255 ("solid") maps to signed -128
// (negative, "solid").
func SignedFromRaw(raw uint8) int8 {
	return int8(127 - int(raw))
}
