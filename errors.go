package forestfire

import "errors"

// Sentinel errors for the kinds of failure the error-handling design
// distinguishes. Initialization failures and device-lost/out-of-memory
// errors are fatal; surface-lost and transient submission errors are
// recoverable. ErrSurfaceLost, ErrDeviceLost and ErrTransientSubmission are
// not returned by any package of this module; the render package's
// Ebitengine backend does not report those conditions.
var (
	// ErrInitialization marks a fatal failure setting up GPU resources:
	// no compatible adapter, compute unsupported, or a shader compile error.
	ErrInitialization = errors.New("forestfire: initialization failed")

	// ErrSurfaceLost marks a recoverable presentation-surface loss. The
	// caller should reconfigure with the last known size and retry once.
	ErrSurfaceLost = errors.New("forestfire: surface lost")

	// ErrDeviceLost marks a fatal GPU device loss or out-of-memory
	// condition. The loop must exit.
	ErrDeviceLost = errors.New("forestfire: device lost")

	// ErrTransientSubmission marks a logged-and-ignored submission error;
	// the next redraw is re-armed without advancing simulation state.
	ErrTransientSubmission = errors.New("forestfire: transient submission error")

	// ErrSnapshotBusy is returned by a snapshot request made while a
	// previous snapshot mapping is still in flight. Per the error-handling
	// design this is logged and dropped, not escalated.
	ErrSnapshotBusy = errors.New("forestfire: snapshot mapping already in flight")
)
