// Package simloop drives the stepping engine at a configured tick rate,
// honoring pause/stop, parameter updates, and frame-snapshot requests. Two
// embeddings are offered on the same [Loop] value, the way a Scene offers
// both an owned Run loop and manual Update/Draw calls:
// [Loop.Tick] for a redraw-driven host, [Loop.RunProducer] for a dedicated
// goroutine ticking independently of rendering.
package simloop

import (
	"context"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ff "github.com/phanxgames/forestfire"
	"github.com/phanxgames/forestfire/engine"
)

// State is the loop's position in the {Running, Paused, Stopped} state
// machine. Running and Paused transition via [Loop.TogglePause]; either
// transitions to Stopped via [Loop.Stop], which is terminal.
type State int

const (
	Running State = iota
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// maxTicksPerCall caps the whole ticks extracted from the reservoir in a
// single Tick call, bounding redraw latency after a tab-suspend or stall.
const maxTicksPerCall = 100

// tpsSampleSize is the producer-thread TPS averaging window: MeasuredTPS is
// recomputed every this many ticks rather than on every single one.
const tpsSampleSize = 20

// Loop owns a [engine.Engine], the current ConfiguredParameters, and the
// {Running, Paused, Stopped} state machine. The zero value is not usable;
// construct with [New].
type Loop struct {
	eng *engine.Engine

	mu        sync.Mutex
	state     State
	cfg       ff.ConfiguredParameters
	reservoir float64 // seconds of unconsumed wall-clock time

	totalStepDur   time.Duration
	completedTicks uint64

	segments   map[string]time.Duration
	segCounts  map[string]uint64
	segEnabled bool

	snapshotPending []chan []ff.PackedCell

	statsOnce sync.Once
	statsCh   chan ff.SimulationStatistics

	// paramsMailbox receives every ConfiguredParameters value passed to New
	// and SetParameters. Tick and RunProducer do not read it; they read cfg
	// under mu.
	paramsMailbox ff.Mailbox[ff.ConfiguredParameters]
	// wake is signaled whenever tick_rate transitions away from 0, or on
	// pause/resume/stop, so RunProducer can stop parking.
	wake chan struct{}

	// measuredTPS holds math.Float64bits of the producer loop's rolling
	// measured ticks-per-second, updated every tpsSampleSize ticks.
	measuredTPS atomic.Uint64
}

var _ ff.ControlSurface = (*Loop)(nil)

// New constructs a Loop over eng, starting Running with the given
// configured parameters (already pushed to eng via SetParameters).
func New(eng *engine.Engine, cfg ff.ConfiguredParameters) *Loop {
	l := &Loop{
		eng:       eng,
		state:     Running,
		cfg:       cfg,
		segments:  make(map[string]time.Duration),
		segCounts: make(map[string]uint64),
		statsCh:   make(chan ff.SimulationStatistics, 1),
		wake:      make(chan struct{}, 1),
	}
	eng.SetParameters(ff.Derive(cfg))
	l.paramsMailbox.Send(cfg)
	return l
}

// EnableSegmentTiming turns on the per-phase SimulationStatistics.Segments
// breakdown. Off by default so callers who don't need it pay nothing extra.
func (l *Loop) EnableSegmentTiming(enabled bool) {
	l.mu.Lock()
	l.segEnabled = enabled
	l.mu.Unlock()
}

// State reports the loop's current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SetParameters atomically swaps the current ConfiguredParameters. Safe to
// call from any goroutine; observable by the loop no later than the next
// tick, matching the control-surface contract.
func (l *Loop) SetParameters(cfg ff.ConfiguredParameters) {
	l.mu.Lock()
	l.cfg = cfg
	l.eng.SetParameters(ff.Derive(cfg))
	l.mu.Unlock()

	l.paramsMailbox.Send(cfg)
	l.nudge()
}

// Parameters returns the currently configured parameters.
func (l *Loop) Parameters() ff.ConfiguredParameters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// TogglePause flips Running<->Paused. No-op if Stopped.
func (l *Loop) TogglePause() {
	l.mu.Lock()
	switch l.state {
	case Running:
		l.state = Paused
	case Paused:
		l.state = Running
	}
	l.mu.Unlock()
	l.nudge()
}

// Resume forces the state to Running, unless Stopped. Idempotent.
func (l *Loop) Resume() {
	l.mu.Lock()
	if l.state == Paused {
		l.state = Running
	}
	l.mu.Unlock()
	l.nudge()
}

// Stop transitions to Stopped (terminal) and publishes final statistics on
// the channel returned by [Loop.Statistics]. Matches the
// forestfire.ControlSurface signature; callers that want the statistics
// should call Statistics() before or after Stop(), not rely on a return
// value here. Calling Stop more than once is a no-op beyond the first call.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.state = Stopped
	pending := l.snapshotPending
	l.snapshotPending = nil
	l.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}

	l.statsOnce.Do(func() {
		l.mu.Lock()
		stats := l.statisticsLocked()
		l.mu.Unlock()
		l.statsCh <- stats
		close(l.statsCh)
	})
	l.nudge()
}

// Statistics returns the one-shot channel that receives final
// SimulationStatistics when the loop stops. Safe to call before or after
// Stop(); the channel always receives exactly one value, then closes.
func (l *Loop) Statistics() <-chan ff.SimulationStatistics {
	return l.statsCh
}

// MeasuredTPS returns the producer loop's most recently measured
// ticks-per-second, averaged over the last tpsSampleSize ticks. Zero until
// the first full sample window completes, and always zero under the
// redraw-driven embedding, which has no independent tick clock to sample.
func (l *Loop) MeasuredTPS() float64 {
	return math.Float64frombits(l.measuredTPS.Load())
}

func (l *Loop) statisticsLocked() ff.SimulationStatistics {
	var avgMS float64
	if l.completedTicks > 0 {
		avgMS = float64(l.totalStepDur) / float64(time.Millisecond) / float64(l.completedTicks)
	}
	stats := ff.SimulationStatistics{AverageStepExecTimeMS: avgMS}
	for name, total := range l.segments {
		n := l.segCounts[name]
		if n == 0 {
			continue
		}
		stats.Segments = append(stats.Segments, ff.StatSegment{Name: name, AverageDur: total / time.Duration(n)})
	}
	return stats
}

// RequestSnapshot asks the loop to publish the next completed state as a
// CPU-readable frame. The returned channel receives exactly one value (or
// is closed without a value if the loop stops first or the engine's
// snapshot is busy) and need not be drained if the caller loses interest.
func (l *Loop) RequestSnapshot() <-chan []ff.PackedCell {
	ch := make(chan []ff.PackedCell, 1)
	l.mu.Lock()
	if l.state == Stopped {
		l.mu.Unlock()
		close(ch)
		return ch
	}
	l.snapshotPending = append(l.snapshotPending, ch)
	l.mu.Unlock()
	return ch
}

func (l *Loop) serviceSnapshots() {
	l.mu.Lock()
	pending := l.snapshotPending
	l.snapshotPending = nil
	l.mu.Unlock()
	if len(pending) == 0 {
		return
	}

	packed, err := l.eng.Snapshot(nil)
	if err != nil {
		log.Printf("forestfire: snapshot request dropped: %v", err)
		for _, ch := range pending {
			close(ch)
		}
		return
	}
	for _, ch := range pending {
		ch <- packed
		close(ch)
	}
}

func (l *Loop) nudge() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Tick implements the redraw-driven embedding: it accumulates elapsed into
// the fractional-tick reservoir, extracts whole ticks, caps the result at
// 100, and advances the engine that many times. It returns the number of
// ticks actually advanced. Per the tick-rate-behavior property, a
// tick_rate of 0 never calls advance regardless of elapsed time or
// reservoir contents.
//
// The subtraction of the full, uncapped step count from the reservoir
// happens before the 100-tick cap is applied — matching the original
// engine's reservoir bookkeeping. Capping first would leave the reservoir
// over-full and cause runaway catch-up on the next call.
func (l *Loop) Tick(elapsed time.Duration) (int, error) {
	l.mu.Lock()
	if l.state != Running {
		l.mu.Unlock()
		return 0, nil
	}
	l.reservoir += elapsed.Seconds()

	tickRate := ff.Derive(l.cfg).TickRate
	if tickRate == 0 {
		l.mu.Unlock()
		return 0, nil
	}

	secondsPerTick := 1.0 / float64(tickRate)
	steps := int(math.Floor(l.reservoir / secondsPerTick))
	l.reservoir -= float64(steps) * secondsPerTick
	if steps > maxTicksPerCall {
		steps = maxTicksPerCall
	}
	l.mu.Unlock()

	if steps <= 0 {
		return 0, nil
	}

	start := time.Now()
	if err := l.eng.Advance(context.Background(), uint32(steps)); err != nil {
		return 0, err
	}
	dur := time.Since(start)

	l.mu.Lock()
	l.totalStepDur += dur
	l.completedTicks += uint64(steps)
	if l.segEnabled {
		l.segments["advance"] += dur
		l.segCounts["advance"] += uint64(steps)
	}
	l.mu.Unlock()

	l.serviceSnapshots()
	return steps, nil
}

// RunProducer implements the producer-thread embedding: a goroutine that
// calls Advance(1) in a loop, sleeping 1/tick_rate between ticks and
// publishing the resulting frame through dst, a single-slot mailbox. When
// tick_rate == 0 it parks on a parameter-change/resume signal instead of
// busy-waiting. Returns when ctx is cancelled or the loop is stopped.
func (l *Loop) RunProducer(ctx context.Context, dst *ff.Mailbox[[]ff.PackedCell]) error {
	var (
		durationSum time.Duration
		ticksCount  int
		lastTick    = time.Now()
	)

	for {
		l.mu.Lock()
		state := l.state
		tickRate := ff.Derive(l.cfg).TickRate
		l.mu.Unlock()

		if state == Stopped {
			return ctx.Err()
		}
		if state == Paused || tickRate == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
				continue
			}
		}

		period := time.Duration(float64(time.Second) / float64(tickRate))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(period):
		case <-l.wake:
			continue
		}

		start := time.Now()
		if err := l.eng.Advance(ctx, 1); err != nil {
			return err
		}
		dur := time.Since(start)

		now := time.Now()
		tickDur := now.Sub(lastTick)
		lastTick = now
		durationSum += tickDur
		ticksCount++

		l.mu.Lock()
		l.totalStepDur += dur
		l.completedTicks++
		if l.segEnabled {
			l.segments["advance"] += dur
			l.segCounts["advance"]++
		}
		l.mu.Unlock()

		if ticksCount >= tpsSampleSize {
			if avg := durationSum / time.Duration(ticksCount); avg > 0 {
				l.measuredTPS.Store(math.Float64bits(1.0 / avg.Seconds()))
			}
			durationSum, ticksCount = 0, 0
		}

		l.serviceSnapshots()

		if packed, err := l.eng.Snapshot(nil); err == nil {
			dst.Send(packed)
		}
	}
}
