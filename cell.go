package forestfire

import (
	"encoding/binary"
	"math"
)

// BurnState is the sum-type field of a [Cell]: either idle, or burning with
// a positive countdown. The zero value is idle.
type BurnState struct {
	Burning        bool
	TicksRemaining uint32 // only meaningful when Burning is true
}

// Idle is the zero-value BurnState, kept as a named value for readability at
// call sites that reset a cell after burn-out.
var Idle = BurnState{}

// Ignite returns a BurnState burning for the given duration. A duration of
// zero is raised to one: a just-ignited cell must have ticks_remaining >= 1.
func Ignite(duration uint32) BurnState {
	if duration == 0 {
		duration = 1
	}
	return BurnState{Burning: true, TicksRemaining: duration}
}

// Cell is the per-cell state of the grid: tree presence, underbrush density
// in [0,1], and burn status.
type Cell struct {
	Tree       bool
	Underbrush float32
	Burn       BurnState
}

// PackedCellSize is the size in bytes of a [PackedCell], satisfying the
// 16-byte alignment storage-buffer arrays require.
const PackedCellSize = 16

// PackedCell is the GPU-addressable 16-byte record for a single cell:
// f32 tree (0.0/1.0), f32 underbrush, u32 burning (0 = idle, >0 =
// ticks_remaining), u32 padding. Used for the snapshot/staging path, where a
// CPU-readable copy of the grid is produced on request.
type PackedCell struct {
	Tree       float32
	Underbrush float32
	Burning    uint32
	_          uint32 // padding, always zero
}

// Pack converts a Cell to its packed GPU record.
func Pack(c Cell) PackedCell {
	var treeF float32
	if c.Tree {
		treeF = 1
	}
	var burning uint32
	if c.Burn.Burning {
		burning = c.Burn.TicksRemaining
	}
	return PackedCell{Tree: treeF, Underbrush: c.Underbrush, Burning: burning}
}

// Unpack converts a packed GPU record back to a Cell.
func Unpack(p PackedCell) Cell {
	c := Cell{Tree: p.Tree > 0, Underbrush: p.Underbrush}
	if p.Burning > 0 {
		c.Burn = BurnState{Burning: true, TicksRemaining: p.Burning}
	}
	return c
}

// AppendBytes appends the little-endian 16-byte encoding of p to dst,
// matching the wire layout the compute kernel's storage buffer would use.
func (p PackedCell) AppendBytes(dst []byte) []byte {
	var buf [PackedCellSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.Tree))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Underbrush))
	binary.LittleEndian.PutUint32(buf[8:12], p.Burning)
	binary.LittleEndian.PutUint32(buf[12:16], 0)
	return append(dst, buf[:]...)
}

// Grid is a width x height rectangle of cells, row-major: index i = y*width+x.
type Grid struct {
	Width, Height int
	Cells         []Cell
}

// NewGrid allocates an idle, treeless, barren grid of the given dimensions.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height, Cells: make([]Cell, width*height)}
}

// Index returns the row-major index of (x, y). It does not bounds-check.
func (g Grid) Index(x, y int) int {
	return y*g.Width + x
}

// InBounds reports whether (x, y) lies within the grid.
func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}
