package engine

import (
	"context"
	"testing"

	ff "github.com/phanxgames/forestfire"
)

func TestAdvanceFlipsBufferAndStepCount(t *testing.T) {
	e := New(8, 8, nil, ff.DerivedParameters{}, 2)

	if got := e.StepCount(); got != 0 {
		t.Fatalf("StepCount before Advance = %d, want 0", got)
	}
	before := e.CurrentBuffer()

	if err := e.Advance(context.Background(), 3); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got := e.StepCount(); got != 3 {
		t.Fatalf("StepCount after 3 ticks = %d, want 3", got)
	}

	after := e.CurrentBuffer()
	if &before.Cells[0] == &after.Cells[0] {
		t.Fatalf("CurrentBuffer did not flip to the other backing array")
	}
}

func TestAdvanceDeterministicAcrossWorkerCounts(t *testing.T) {
	params := ff.Derive(ff.DefaultConfiguredParameters(12, 12))
	params.FireSpreadRate = 1
	params.TreeFlammability = 1

	seed := make([]ff.Cell, 12*12)
	seed[0] = ff.Cell{Burn: ff.Ignite(5)}
	for i := 1; i < len(seed); i++ {
		seed[i] = ff.Cell{Tree: true}
	}

	run := func(workers int) ff.Grid {
		e := New(12, 12, seed, params, workers)
		if err := e.Advance(context.Background(), 4); err != nil {
			t.Fatalf("Advance: %v", err)
		}
		return e.CurrentBuffer()
	}

	serial := run(1)
	parallel := run(4)
	for i := range serial.Cells {
		if serial.Cells[i] != parallel.Cells[i] {
			t.Fatalf("cell %d diverged between 1-worker and 4-worker runs: %+v vs %+v", i, serial.Cells[i], parallel.Cells[i])
		}
	}
}

func TestSnapshotRejectsConcurrentCall(t *testing.T) {
	e := New(4, 4, nil, ff.DerivedParameters{}, 1)
	e.snapBusy.Store(true)

	_, err := e.Snapshot(nil)
	if err != ff.ErrSnapshotBusy {
		t.Fatalf("Snapshot while busy returned %v, want ErrSnapshotBusy", err)
	}
}

func TestSnapshotRoundTrips(t *testing.T) {
	width, height := 3, 2
	seed := make([]ff.Cell, width*height)
	seed[0] = ff.Cell{Tree: true, Underbrush: 0.25}
	seed[1] = ff.Cell{Burn: ff.Ignite(4)}

	e := New(width, height, seed, ff.DerivedParameters{}, 1)
	packed, err := e.Snapshot(nil)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(packed) != width*height {
		t.Fatalf("Snapshot returned %d cells, want %d", len(packed), width*height)
	}
	got := ff.Unpack(packed[0])
	if got != seed[0] {
		t.Fatalf("round trip cell 0 = %+v, want %+v", got, seed[0])
	}
	got1 := ff.Unpack(packed[1])
	if got1 != seed[1] {
		t.Fatalf("round trip cell 1 = %+v, want %+v", got1, seed[1])
	}
}

func TestAdvanceRespectsContextCancellation(t *testing.T) {
	e := New(4, 4, nil, ff.DerivedParameters{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Advance(ctx, 5)
	if err == nil {
		t.Fatalf("Advance with a cancelled context returned nil error")
	}
}
