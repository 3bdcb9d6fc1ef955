// Package forestfire implements a forest-fire cellular automaton: a
// double-buffered, data-parallel stepping engine plus the concurrency
// contract that keeps a steadily-ticking simulation and a redraw-driven
// renderer in sync.
//
// Four subpackages carry the bulk of the behavior:
//
//   - [forestfire/kernel] implements the per-cell transition rule (ignition,
//     spread, burn-out, growth, death, underbrush accumulation).
//   - [forestfire/engine] owns the two cell buffers and dispatches the rule
//     kernel over the grid each tick.
//   - [forestfire/simloop] drives the engine at a configured tick rate,
//     under either a redraw-driven or a producer-thread embedding.
//   - [forestfire/render] draws the engine's current buffer with [Ebitengine],
//     via a Kage shader.
//
// This package holds the data model shared by all of them: [Cell],
// [ConfiguredParameters], [DerivedParameters], and the packed GPU-addressable
// [PackedCell] record used for snapshots.
//
// # Quick start
//
//	cfg := forestfire.DefaultConfiguredParameters(256, 256)
//	eng := engine.New(cfg.Width, cfg.Height, nil, forestfire.Derive(cfg), 0)
//	loop := simloop.New(eng, cfg)
//	render.Run(loop, eng, render.RunConfig{Title: "forestfire"})
//
// [Ebitengine]: https://ebitengine.org
package forestfire
