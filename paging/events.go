package paging

// EventKind identifies what happened during a step
type EventKind uint8

const (
	EventHit EventKind = iota
	EventFault
	EventLoaded
	EventSwapOut
	EventEvictedAndLoaded
)

// String returns string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventHit:
		return "HIT"
	case EventFault:
		return "FAULT"
	case EventLoaded:
		return "LOADED"
	case EventSwapOut:
		return "SWAP_OUT"
	case EventEvictedAndLoaded:
		return "EVICTED_AND_LOADED"
	default:
		return "UNKNOWN"
	}
}

// Event is emitted by the engine while resolving a reference.
//
// Field use per kind:
//
//	HIT                 Page, Frame
//	FAULT               Page
//	LOADED              Page, Frame, FreeFrames
//	SWAP_OUT            VictimPage, Frame
//	EVICTED_AND_LOADED  VictimPage, Page, Frame
//
// Unused fields hold NoPage / NoFrame. Step is the 1-based reference number
// (the input position when submitted through StepAt).
type Event struct {
	Kind       EventKind
	Step       uint64
	Page       PageID
	Frame      FrameIndex
	VictimPage PageID
	FreeFrames int
}

// EventSink receives engine events synchronously, in emission order
type EventSink interface {
	HandleEvent(ev Event)
}

// SinkFunc adapts a function to an EventSink
type SinkFunc func(ev Event)

// HandleEvent calls f(ev)
func (f SinkFunc) HandleEvent(ev Event) {
	f(ev)
}

// MultiSink delivers every event to each sink in order
type MultiSink []EventSink

// HandleEvent forwards ev to all sinks
func (m MultiSink) HandleEvent(ev Event) {
	for _, s := range m {
		s.HandleEvent(ev)
	}
}

type discardSink struct{}

func (discardSink) HandleEvent(Event) {}
