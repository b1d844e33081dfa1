package viewer

// State is the lifecycle phase of the current document session.
type State int

const (
	// StateIdle means no document is loaded.
	StateIdle State = iota
	// StateLoading means document bytes are being opened.
	StateLoading
	// StateRendering means a page render is in flight.
	StateRendering
	// StateRendered means the current page is fully on screen.
	StateRendered
	// StateFailed means the session recorded an error; see Snapshot.Err.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendering:
		return "rendering"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the controller, safe to read after the
// controller has moved on.
type Snapshot struct {
	State      State
	Page       int
	PageCount  int
	Generation uint64

	// Derived view-state flags.
	Rendering     bool
	Rendered      bool
	HasTextLayer  bool
	NoTextForPage bool

	// Err is the recorded session error, nil unless State is StateFailed.
	Err error
}
