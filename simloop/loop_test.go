package simloop

import (
	"context"
	"testing"
	"time"

	ff "github.com/phanxgames/forestfire"
	"github.com/phanxgames/forestfire/engine"
)

func newTestLoop(t *testing.T, cfg ff.ConfiguredParameters) (*Loop, *engine.Engine) {
	t.Helper()
	eng := engine.New(cfg.Width, cfg.Height, nil, ff.Derive(cfg), 1)
	return New(eng, cfg), eng
}

func TestTickRateZeroNeverAdvances(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(4, 4)
	cfg.TicksPerMonth = 0
	loop, eng := newTestLoop(t, cfg)

	n, err := loop.Tick(10 * time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if n != 0 {
		t.Fatalf("Tick with tick_rate=0 advanced %d ticks, want 0", n)
	}
	if got := eng.StepCount(); got != 0 {
		t.Fatalf("engine StepCount = %d, want 0", got)
	}
}

func TestTickCapsAtOneHundred(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(4, 4)
	cfg.TicksPerMonth = 30
	cfg.MonthsPerSecond = 1000 // very high tick rate so a long elapsed produces many ticks
	loop, _ := newTestLoop(t, cfg)

	n, err := loop.Tick(1000 * time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if n != maxTicksPerCall {
		t.Fatalf("Tick after a long stall advanced %d ticks, want cap of %d", n, maxTicksPerCall)
	}
}

func TestPausePreventsAdvance(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(4, 4)
	loop, eng := newTestLoop(t, cfg)

	loop.TogglePause()
	if loop.State() != Paused {
		t.Fatalf("State() = %v, want Paused", loop.State())
	}

	n, err := loop.Tick(time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if n != 0 {
		t.Fatalf("Tick while paused advanced %d ticks, want 0", n)
	}
	if got := eng.StepCount(); got != 0 {
		t.Fatalf("engine advanced while loop paused: StepCount = %d", got)
	}

	loop.TogglePause()
	if loop.State() != Running {
		t.Fatalf("State() after second toggle = %v, want Running", loop.State())
	}
}

func TestSetParametersUpdatesDerivedBeforeNextTick(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(4, 4)
	cfg.TicksPerMonth = 0
	loop, _ := newTestLoop(t, cfg)

	n, _ := loop.Tick(time.Second)
	if n != 0 {
		t.Fatalf("sanity: expected no ticks with tick_rate=0")
	}

	cfg.TicksPerMonth = 30
	cfg.MonthsPerSecond = 1
	loop.SetParameters(cfg)

	n, err := loop.Tick(time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if n == 0 {
		t.Fatalf("Tick after raising tick_rate advanced 0 ticks, want > 0")
	}
}

func TestStopIsTerminalAndPublishesStatistics(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(4, 4)
	loop, _ := newTestLoop(t, cfg)

	if _, err := loop.Tick(time.Second); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	statsCh := loop.Statistics()
	loop.Stop()
	select {
	case stats := <-statsCh:
		if stats.AverageStepExecTimeMS < 0 {
			t.Fatalf("negative average step exec time: %v", stats.AverageStepExecTimeMS)
		}
	case <-time.After(time.Second):
		t.Fatalf("Stop did not publish statistics in time")
	}

	if loop.State() != Stopped {
		t.Fatalf("State() after Stop = %v, want Stopped", loop.State())
	}

	n, err := loop.Tick(time.Second)
	if err != nil {
		t.Fatalf("Tick after Stop: %v", err)
	}
	if n != 0 {
		t.Fatalf("Tick after Stop advanced %d ticks, want 0", n)
	}
}

func TestRequestSnapshotDeliversOnce(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(4, 4)
	loop, _ := newTestLoop(t, cfg)

	ch := loop.RequestSnapshot()
	if _, err := loop.Tick(time.Second); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	select {
	case packed, ok := <-ch:
		if !ok {
			t.Fatalf("snapshot channel closed without a value")
		}
		if len(packed) != cfg.Width*cfg.Height {
			t.Fatalf("snapshot has %d cells, want %d", len(packed), cfg.Width*cfg.Height)
		}
	case <-time.After(time.Second):
		t.Fatalf("snapshot was not delivered after a tick")
	}
}

func TestMeasuredTPSReflectsProducerCadence(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(2, 2)
	cfg.TicksPerMonth = 30
	cfg.MonthsPerSecond = 1000 // fast enough to complete a full sample window quickly
	loop, _ := newTestLoop(t, cfg)

	if got := loop.MeasuredTPS(); got != 0 {
		t.Fatalf("MeasuredTPS() before any ticks = %v, want 0", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var mailbox ff.Mailbox[[]ff.PackedCell]
	done := make(chan error, 1)
	go func() { done <- loop.RunProducer(ctx, &mailbox) }()
	<-done

	if got := loop.MeasuredTPS(); got <= 0 {
		t.Fatalf("MeasuredTPS() after a full sample window = %v, want > 0", got)
	}
}

func TestRunProducerRespectsContextCancellation(t *testing.T) {
	cfg := ff.DefaultConfiguredParameters(2, 2)
	cfg.TicksPerMonth = 30
	cfg.MonthsPerSecond = 1000
	loop, _ := newTestLoop(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var mailbox ff.Mailbox[[]ff.PackedCell]
	done := make(chan error, 1)
	go func() { done <- loop.RunProducer(ctx, &mailbox) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("RunProducer did not exit after context cancellation")
	}

	if _, ok := mailbox.Peek(); !ok {
		t.Fatalf("RunProducer never published a frame before cancellation")
	}
}
