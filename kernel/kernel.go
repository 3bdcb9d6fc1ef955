// Package kernel implements the forest-fire rule kernel: the one-tick
// transition of a single cell given its neighborhood and the current
// parameters. [Step] is a pure function, safe to call concurrently for
// distinct cells — the property the stepping engine's goroutine fan-out
// relies on, the Go-native analogue of a GPU compute kernel invoked once
// per grid cell.
package kernel

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	ff "github.com/phanxgames/forestfire"
)

// MaxNeighbors is the most neighbors a cell can have (the 8 surrounding
// cells; fewer at grid boundaries).
const MaxNeighbors = 8

// Step advances one cell by one tick. own is the cell's state at the start
// of the tick; neighbors[:neighborCount] are its (up to 8) neighbors' states
// at the start of the tick, in any order — only counts of burning and
// treed neighbors matter. params are the tick's derived parameters, width
// and height the grid dimensions (needed to turn the global lightning
// frequency into a per-cell probability), stepIndex the engine's step
// counter, and cellIndex the cell's row-major index — together they seed
// the deterministic per-cell pseudo-random function.
//
// Step reads only its own and its neighbors' snapshot values and writes
// nothing but its return value: callers provide the double-buffering.
func Step(own ff.Cell, neighbors [MaxNeighbors]ff.Cell, neighborCount int, params ff.DerivedParameters, width, height int, stepIndex, cellIndex uint32) ff.Cell {
	tree := own.Tree
	underbrush := own.Underbrush
	burn := own.Burn

	// 1. Decrement the burn timer, or transition Burning -> Idle on burn-out.
	// A cell that leaves burning this tick is reset to idle and barren: the
	// rest of this tick's rules see tree=false, underbrush=0, exactly as if
	// the cell had always been that way this tick (so steps 3-7 may still
	// ignite it, grow a tree on it, or add underbrush to it).
	if burn.Burning {
		if burn.TicksRemaining > 1 {
			burn.TicksRemaining--
		} else {
			burn = ff.Idle
			tree = false
			underbrush = 0
		}
	}

	// 2. Neighborhood sums, read from the snapshot only.
	var nFires, nTrees int
	for i := 0; i < neighborCount; i++ {
		nb := neighbors[i]
		if nb.Burn.Burning {
			nFires++
		}
		if nb.Tree {
			nTrees++
		}
	}

	// 3. Lightning. Burn-out is evaluated before ignition, so a cell whose
	// countdown just hit zero can still be struck this same tick.
	if !burn.Burning {
		totalCells := float32(width) * float32(height)
		if totalCells > 0 {
			p := params.LightningFrequency / totalCells
			if sample(cellIndex, stepIndex, 0) < p {
				burn = ff.Ignite(burnDuration(tree, underbrush, params))
			}
		}
	}

	// 4. Fire spread.
	if !burn.Burning {
		flammability := underbrush * params.UnderbrushFlammability
		if tree {
			flammability += params.TreeFlammability
		}
		p := (float32(nFires) / MaxNeighbors) * params.FireSpreadRate * flammability
		if sample(cellIndex, stepIndex, 1) < p {
			burn = ff.Ignite(burnDuration(tree, underbrush, params))
		}
	}

	burningNow := burn.Burning

	// 5. Tree death.
	treeDied := false
	if tree {
		if sample(cellIndex, stepIndex, 2) < params.TreeDeathRate {
			treeDied = true
			tree = false
		}
	}

	// 6. Tree growth. Gated on own.Tree, the start-of-tick value, not the
	// possibly-just-cleared local tree: a tree that dies this tick (step 5)
	// must not also regrow this tick. Ignition wins too — a cell that is
	// burning this tick, whether it was already burning or just ignited in
	// steps 3/4, cannot grow a tree. Death and growth are mutually
	// exclusive this way (a treed cell tests at most one of them per tick),
	// so they safely share sample slot 2.
	if !own.Tree && !burningNow {
		hindrance := clamp01(params.UnderbrushTreeGrowthHindrance)
		p := maxFloat32(params.TreeGrowthRate*(1-hindrance*underbrush), 0)
		if sample(cellIndex, stepIndex, 2) < p {
			tree = true
		}
	}

	// 7. Underbrush accumulation.
	var hasTreeAfterGrowth float32
	if tree {
		hasTreeAfterGrowth = 1
	}
	underbrush += params.TreeUnderbrushGeneration * (hasTreeAfterGrowth + float32(nTrees))
	if treeDied {
		underbrush += params.TreeDeathUnderbrush
	}
	underbrush = clamp01(underbrush)

	return ff.Cell{Tree: tree, Underbrush: underbrush, Burn: burn}
}

// burnDuration computes the ignition duration, identical whether the
// ignition came from lightning or from spread: round(underbrush *
// underbrush_fire_duration) + (tree ? tree_fire_duration : 0), clamped to at
// least 1 by [forestfire.Ignite].
func burnDuration(tree bool, underbrush float32, params ff.DerivedParameters) uint32 {
	dur := uint32(math.Round(float64(underbrush) * float64(params.UnderbrushFireDuration)))
	if tree {
		dur += params.TreeFireDuration
	}
	return dur
}

// sample draws the `which`-th deterministic pseudo-random sample in [0,1)
// for the given cell and step, hashing (cellIndex, stepIndex, which) with
// xxhash. Three independent sample slots are used per cell per tick:
// lightning (0), spread (1), and death-or-growth (2) — death and growth
// never both evaluate for the same cell in the same tick, so slot 2 is safe
// to share between them.
func sample(cellIndex, stepIndex, which uint32) float32 {
	var seed [12]byte
	binary.LittleEndian.PutUint32(seed[0:4], cellIndex)
	binary.LittleEndian.PutUint32(seed[4:8], stepIndex)
	binary.LittleEndian.PutUint32(seed[8:12], which)
	h := xxhash.Sum64(seed[:])
	// Top 24 bits give more than enough precision for a probability
	// threshold comparison against an f32.
	return float32(h>>40) / float32(1<<24)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func maxFloat32(v, min float32) float32 {
	if v < min {
		return min
	}
	return v
}
