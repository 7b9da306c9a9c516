package paging

import (
	"fmt"
	"log/slog"
)

// StepKind is the outcome of a single reference
type StepKind uint8

const (
	StepHit StepKind = iota
	StepFaultLoad
	StepFaultEvict
	StepInvalid
)

// String returns string representation of StepKind
func (k StepKind) String() string {
	switch k {
	case StepHit:
		return "HIT"
	case StepFaultLoad:
		return "FAULT_LOAD"
	case StepFaultEvict:
		return "FAULT_EVICT"
	case StepInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// StepResult describes how a reference was resolved.
// EvictedPage is NoPage unless Kind is StepFaultEvict.
type StepResult struct {
	Kind        StepKind
	Frame       FrameIndex
	EvictedPage PageID
}

// Option configures an Engine
type Option func(*Engine)

// WithSink sets the observer notified of hits, faults, loads and evictions
func WithSink(sink EventSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithLogger sets the logger used for debug-level step tracing
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine is the FIFO page replacement engine.
// It owns all simulation state and is not safe for concurrent use.
type Engine struct {
	numFrames int
	numPages  int
	pageTable *PageTable
	frames    *FramePool
	queue     *FIFOQueue
	stats     accounting

	sink    EventSink
	logger  *slog.Logger
	pending []Event // events of the step in progress
}

// NewEngine creates an engine with numFrames empty frames and numPages
// non-resident pages
func NewEngine(numFrames, numPages int, opts ...Option) (*Engine, error) {
	if numFrames <= 0 {
		return nil, ErrNonPositive("NewEngine", "frame count", numFrames)
	}
	if numPages <= 0 {
		return nil, ErrNonPositive("NewEngine", "page count", numPages)
	}

	e := &Engine{
		numFrames: numFrames,
		numPages:  numPages,
		pageTable: NewPageTable(numPages),
		frames:    NewFramePool(numFrames),
		queue:     NewFIFOQueue(numFrames),
		sink:      discardSink{},
		logger:    slog.New(slog.DiscardHandler),
		pending:   make([]Event, 0, 3),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NumFrames returns the physical frame count
func (e *Engine) NumFrames() int {
	return e.numFrames
}

// NumPages returns the virtual page count
func (e *Engine) NumPages() int {
	return e.numPages
}

// FreeFrames returns the number of frames never allocated
func (e *Engine) FreeFrames() int {
	return e.frames.FreeCount()
}

// Step resolves one reference. An out-of-range page is rejected with an
// InvalidPage error and a StepInvalid result, and leaves the engine untouched.
// Events are numbered by accepted reference.
func (e *Engine) Step(page PageID) (StepResult, error) {
	return e.StepAt(e.stats.totalRefs+1, page)
}

// StepAt is Step with the event step number supplied by the caller, usually
// the reference's position in the input sequence
func (e *Engine) StepAt(step uint64, page PageID) (StepResult, error) {
	if page < 0 || int(page) >= e.numPages {
		return StepResult{Kind: StepInvalid, Frame: NoFrame, EvictedPage: NoPage},
			ErrPageOutOfRange("Step", page, e.numPages)
	}

	e.stats.onReference()
	result := e.resolve(step, page)

	e.logger.Debug("reference resolved",
		slog.Uint64("step", step),
		slog.Int("page", int(page)),
		slog.String("result", result.Kind.String()),
		slog.Int("frame", int(result.Frame)),
		slog.Int("evicted_page", int(result.EvictedPage)),
		slog.Int("free_frames", e.frames.FreeCount()),
	)

	// State is consistent again; only now do observers hear about the step
	for _, ev := range e.pending {
		e.sink.HandleEvent(ev)
	}
	e.pending = e.pending[:0]

	return result, nil
}

// resolve performs the hit/fault decision and all state updates for a step
func (e *Engine) resolve(step uint64, page PageID) StepResult {
	entry := e.pageTable.Lookup(page)
	if entry.Resident {
		// FIFO: hits never reorder the queue
		e.emit(Event{Kind: EventHit, Step: step, Page: page, Frame: entry.Frame, VictimPage: NoPage})
		return StepResult{Kind: StepHit, Frame: entry.Frame, EvictedPage: NoPage}
	}

	e.stats.onFault()
	e.emit(Event{Kind: EventFault, Step: step, Page: page, Frame: NoFrame, VictimPage: NoPage})

	if e.frames.FreeCount() > 0 {
		frame := e.frames.AllocateFree()
		e.pageTable.MarkResident(page, frame)
		e.frames.SetOccupant(frame, page)
		e.queue.PushTail(frame, page)
		e.emit(Event{
			Kind:       EventLoaded,
			Step:       step,
			Page:       page,
			Frame:      frame,
			VictimPage: NoPage,
			FreeFrames: e.frames.FreeCount(),
		})
		return StepResult{Kind: StepFaultLoad, Frame: frame, EvictedPage: NoPage}
	}

	victim, ok := e.queue.PopHead()
	if !ok {
		violation("Step", "FIFO queue empty while no free frames remain")
	}
	if e.frames.OccupantOf(victim.Frame) != victim.Page {
		violation("Step", "queue head (frame %d, page %d) disagrees with frame occupant %d",
			victim.Frame, victim.Page, e.frames.OccupantOf(victim.Frame))
	}

	e.pageTable.MarkEvicted(victim.Page)
	e.stats.onSwapOut()
	e.emit(Event{Kind: EventSwapOut, Step: step, Page: NoPage, Frame: victim.Frame, VictimPage: victim.Page})

	e.frames.SetOccupant(victim.Frame, page)
	e.pageTable.MarkResident(page, victim.Frame)
	e.queue.PushTail(victim.Frame, page)
	e.emit(Event{Kind: EventEvictedAndLoaded, Step: step, Page: page, Frame: victim.Frame, VictimPage: victim.Page})

	return StepResult{Kind: StepFaultEvict, Frame: victim.Frame, EvictedPage: victim.Page}
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

// FinalStats returns the accounting report for the references processed so far
func (e *Engine) FinalStats() Stats {
	return e.stats.report(e.frames)
}

// Snapshot is a deep copy of the engine state
type Snapshot struct {
	PageTable     []PageTableEntry
	Frames        []PageID
	Queue         []QueueEntry
	FreeFrames    int
	NextFreeFrame FrameIndex
	TotalRefs     uint64
	Faults        uint64
	Swaps         uint64
}

// Snapshot captures the full engine state
func (e *Engine) Snapshot() Snapshot {
	pt := e.pageTable.clone()
	fp := e.frames.clone()
	return Snapshot{
		PageTable:     pt.entries,
		Frames:        fp.occupants,
		Queue:         e.queue.clone().Entries(),
		FreeFrames:    fp.freeCount,
		NextFreeFrame: fp.nextFreeFrame,
		TotalRefs:     e.stats.totalRefs,
		Faults:        e.stats.faults,
		Swaps:         e.stats.swaps,
	}
}

// CheckInvariants verifies that the page table, frame pool and queue agree.
// A non-nil result always carries ErrCodeInternalConsistency.
func (e *Engine) CheckInvariants() error {
	const op = "CheckInvariants"

	resident := e.pageTable.ResidentCount()
	if e.frames.FreeCount()+resident != e.numFrames {
		return ErrInconsistent(op, fmt.Sprintf("free frames %d + resident pages %d != frames %d",
			e.frames.FreeCount(), resident, e.numFrames))
	}
	if e.queue.Len() != resident {
		return ErrInconsistent(op, fmt.Sprintf("queue length %d != resident pages %d", e.queue.Len(), resident))
	}

	seenFrames := make(map[FrameIndex]bool, e.queue.Len())
	seenPages := make(map[PageID]bool, e.queue.Len())
	for _, qe := range e.queue.Entries() {
		if seenFrames[qe.Frame] || seenPages[qe.Page] {
			return ErrInconsistent(op, fmt.Sprintf("duplicate queue entry (frame %d, page %d)", qe.Frame, qe.Page))
		}
		seenFrames[qe.Frame] = true
		seenPages[qe.Page] = true

		entry := e.pageTable.Lookup(qe.Page)
		if !entry.Resident || entry.Frame != qe.Frame {
			return ErrInconsistent(op, fmt.Sprintf("queued (frame %d, page %d) not resident there", qe.Frame, qe.Page))
		}
		if e.frames.OccupantOf(qe.Frame) != qe.Page {
			return ErrInconsistent(op, fmt.Sprintf("frame %d holds page %d, queue says %d",
				qe.Frame, e.frames.OccupantOf(qe.Frame), qe.Page))
		}
	}

	var err error
	e.pageTable.ForEachResident(func(page PageID, frame FrameIndex) bool {
		if !e.queue.Contains(page) {
			err = ErrInconsistent(op, fmt.Sprintf("resident page %d (frame %d) missing from queue", page, frame))
			return false
		}
		return true
	})
	return err
}
