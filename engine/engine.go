// Package engine implements the double-buffered, data-parallel stepping
// engine: the GPU-less analogue of a compute-shader dispatch, fanning the
// pure [kernel.Step] function out across row-bands with one
// errgroup.Group.Wait per tick.
package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	ff "github.com/phanxgames/forestfire"
	"github.com/phanxgames/forestfire/kernel"
)

// minRowsPerBand bounds how finely a tick's work is split: bands thinner
// than this spend more time synchronizing goroutines than stepping cells.
const minRowsPerBand = 4

// Engine owns the two cell buffers, the current derived parameters, and the
// step counter. The zero value is not usable; construct with [New].
type Engine struct {
	width, height int

	mu       sync.RWMutex
	bufs     [2]ff.Grid
	flipped  bool // false: bufs[0] is current, true: bufs[1] is current
	params   ff.DerivedParameters
	stepIdx  uint32
	workers  int
	snapBusy atomic.Bool
}

// New constructs an Engine over a width x height grid, seeded from initial,
// which is copied into the current buffer (ignored if nil, leaving the grid
// idle and treeless). workers bounds the goroutine fan-out per tick; values
// <= 0 default to runtime.GOMAXPROCS(0) (resolved on each tick in Advance,
// so Engine itself stores the raw request).
func New(width, height int, initial []ff.Cell, params ff.DerivedParameters, workers int) *Engine {
	e := &Engine{
		width:   width,
		height:  height,
		params:  params,
		workers: workers,
	}
	e.bufs[0] = ff.NewGrid(width, height)
	e.bufs[1] = ff.NewGrid(width, height)
	if initial != nil {
		copy(e.bufs[0].Cells, initial)
	}
	return e
}

// Dimensions returns the grid's width and height.
func (e *Engine) Dimensions() (width, height int) {
	return e.width, e.height
}

// StepCount returns the number of ticks advanced so far.
func (e *Engine) StepCount() uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stepIdx
}

// SetParameters replaces the derived parameters used by future ticks. Safe
// to call concurrently with Advance; takes effect on the next tick, never
// mid-tick, since Advance holds the write lock for a tick's whole duration.
func (e *Engine) SetParameters(p ff.DerivedParameters) {
	e.mu.Lock()
	e.params = p
	e.mu.Unlock()
}

// CurrentBuffer returns a read-only view of the grid as of the last
// completed tick. The returned Grid shares its Cells slice with the
// engine's internal buffer: callers must not mutate it and must not retain
// it across a call to Advance.
func (e *Engine) CurrentBuffer() ff.Grid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current()
}

func (e *Engine) current() ff.Grid {
	if e.flipped {
		return e.bufs[1]
	}
	return e.bufs[0]
}

func (e *Engine) next() ff.Grid {
	if e.flipped {
		return e.bufs[0]
	}
	return e.bufs[1]
}

// Advance steps the simulation forward n ticks, one errgroup fan-out per
// tick. The step counter read by the kernel's PRF is stable for an entire
// tick and only advances between ticks, mirroring the one-submission-per-
// tick correctness requirement of the original compute pipeline. Returns
// the context error if cancelled partway through, with whatever ticks
// already completed retained.
func (e *Engine) Advance(ctx context.Context, n uint32) error {
	for i := uint32(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.advanceOne(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) advanceOne(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.current()
	dst := e.next()
	params := e.params
	stepIdx := e.stepIdx
	width, height := e.width, e.height

	workers := e.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	bands := workers
	if height > 0 {
		if maxBands := height / minRowsPerBand; maxBands < bands {
			bands = maxBands
		}
	}
	if bands < 1 {
		bands = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	rowsPerBand := (height + bands - 1) / bands
	for b := 0; b < bands; b++ {
		y0 := b * rowsPerBand
		y1 := y0 + rowsPerBand
		if y1 > height {
			y1 = height
		}
		if y0 >= y1 {
			continue
		}
		g.Go(func() error {
			return stepBand(gctx, cur, dst, params, width, height, stepIdx, y0, y1)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.flipped = !e.flipped
	e.stepIdx++
	return nil
}

func stepBand(ctx context.Context, cur, dst ff.Grid, params ff.DerivedParameters, width, height int, stepIdx uint32, y0, y1 int) error {
	var neighbors [kernel.MaxNeighbors]ff.Cell
	for y := y0; y < y1; y++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for x := 0; x < width; x++ {
			n := collectNeighbors(cur, width, height, x, y, &neighbors)
			idx := cur.Index(x, y)
			dst.Cells[idx] = kernel.Step(cur.Cells[idx], neighbors, n, params, width, height, stepIdx, uint32(idx))
		}
	}
	return nil
}

var neighborOffsets = [kernel.MaxNeighbors][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func collectNeighbors(g ff.Grid, width, height, x, y int, out *[kernel.MaxNeighbors]ff.Cell) int {
	n := 0
	for _, off := range neighborOffsets {
		nx, ny := x+off[0], y+off[1]
		if nx < 0 || nx >= width || ny < 0 || ny >= height {
			continue
		}
		out[n] = g.Cells[g.Index(nx, ny)]
		n++
	}
	return n
}

// Snapshot copies the current buffer into packed GPU-record form, returning
// forestfire.ErrSnapshotBusy if a previous snapshot is still being
// serviced (mirrors the original staging-buffer contract: the caller is
// expected to drop the request and try again on a later tick, not block).
func (e *Engine) Snapshot(dst []ff.PackedCell) ([]ff.PackedCell, error) {
	if !e.snapBusy.CompareAndSwap(false, true) {
		return nil, ff.ErrSnapshotBusy
	}
	defer e.snapBusy.Store(false)

	e.mu.RLock()
	defer e.mu.RUnlock()

	cur := e.current()
	if cap(dst) < len(cur.Cells) {
		dst = make([]ff.PackedCell, len(cur.Cells))
	}
	dst = dst[:len(cur.Cells)]
	for i, c := range cur.Cells {
		dst[i] = ff.Pack(c)
	}
	return dst, nil
}
