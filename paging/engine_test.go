package paging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
}

func (r *recordingSink) HandleEvent(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recordingSink) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func runRefs(t *testing.T, e *Engine, refs []PageID) []StepResult {
	t.Helper()
	results := make([]StepResult, 0, len(refs))
	for _, p := range refs {
		res, err := e.Step(p)
		require.NoError(t, err)
		require.NoError(t, e.CheckInvariants())
		results = append(results, res)
	}
	return results
}

func TestNewEngineRejectsNonPositive(t *testing.T) {
	tests := []struct {
		name      string
		numFrames int
		numPages  int
	}{
		{"zero frames", 0, 4},
		{"negative frames", -1, 4},
		{"zero pages", 3, 0},
		{"negative pages", 3, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.numFrames, tt.numPages)
			assert.Nil(t, e)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Equal(t, ErrCodeConfig, GetErrorCode(err))
		})
	}
}

func TestNewEngineInitialState(t *testing.T) {
	e, err := NewEngine(4, 6)
	require.NoError(t, err)

	assert.Equal(t, 4, e.NumFrames())
	assert.Equal(t, 6, e.NumPages())
	assert.Equal(t, 4, e.FreeFrames())
	require.NoError(t, e.CheckInvariants())

	stats := e.FinalStats()
	assert.Zero(t, stats.TotalRefs)
	assert.Equal(t, []PageID{NoPage, NoPage, NoPage, NoPage}, stats.FrameOccupancy)
	assert.False(t, stats.Occupied(0))
	assert.Zero(t, stats.FaultRate())
}

func TestClassicTenReferenceString(t *testing.T) {
	e, err := NewEngine(3, 6)
	require.NoError(t, err)

	results := runRefs(t, e, []PageID{1, 2, 3, 4, 1, 2, 5, 1, 2, 3})

	wantKinds := []StepKind{
		StepFaultLoad, StepFaultLoad, StepFaultLoad,
		StepFaultEvict, StepFaultEvict, StepFaultEvict, StepFaultEvict,
		StepHit, StepHit,
		StepFaultEvict,
	}
	for i, res := range results {
		assert.Equal(t, wantKinds[i], res.Kind, "step %d", i+1)
	}

	stats := e.FinalStats()
	assert.Equal(t, uint64(10), stats.TotalRefs)
	assert.Equal(t, uint64(8), stats.Faults)
	assert.Equal(t, uint64(5), stats.Swaps)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, []PageID{5, 3, 2}, stats.FrameOccupancy)
}

func TestClassicTwelveReferenceString(t *testing.T) {
	e, err := NewEngine(3, 6)
	require.NoError(t, err)

	runRefs(t, e, []PageID{1, 2, 3, 4, 1, 2, 5, 1, 2, 3, 4, 5})

	stats := e.FinalStats()
	assert.Equal(t, uint64(9), stats.Faults)
	assert.Equal(t, uint64(6), stats.Swaps)
	assert.Equal(t, []PageID{5, 3, 4}, stats.FrameOccupancy)
}

func TestAllLoadsNoSwaps(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEngine(3, 3, WithSink(sink))
	require.NoError(t, err)

	results := runRefs(t, e, []PageID{0, 1, 2})
	for i, res := range results {
		assert.Equal(t, StepFaultLoad, res.Kind)
		assert.Equal(t, FrameIndex(i), res.Frame)
		assert.Equal(t, NoPage, res.EvictedPage)
	}

	stats := e.FinalStats()
	assert.Equal(t, uint64(3), stats.Faults)
	assert.Zero(t, stats.Swaps)
	assert.Equal(t, []PageID{0, 1, 2}, stats.FrameOccupancy)

	assert.Equal(t, []EventKind{
		EventFault, EventLoaded,
		EventFault, EventLoaded,
		EventFault, EventLoaded,
	}, sink.kinds())
	assert.Equal(t, 0, sink.events[5].FreeFrames)
	assert.Equal(t, 2, sink.events[1].FreeFrames)
}

func TestHitsWhenPagesFit(t *testing.T) {
	e, err := NewEngine(2, 2)
	require.NoError(t, err)

	results := runRefs(t, e, []PageID{0, 1, 0, 1})
	assert.Equal(t, StepFaultLoad, results[0].Kind)
	assert.Equal(t, StepFaultLoad, results[1].Kind)
	assert.Equal(t, StepResult{Kind: StepHit, Frame: 0, EvictedPage: NoPage}, results[2])
	assert.Equal(t, StepResult{Kind: StepHit, Frame: 1, EvictedPage: NoPage}, results[3])

	stats := e.FinalStats()
	assert.Equal(t, uint64(2), stats.Faults)
	assert.Zero(t, stats.Swaps)
}

func TestSingleFrameThrashing(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEngine(1, 2, WithSink(sink))
	require.NoError(t, err)

	results := runRefs(t, e, []PageID{0, 1, 0, 1})
	assert.Equal(t, StepFaultLoad, results[0].Kind)
	for i, res := range results[1:] {
		assert.Equal(t, StepFaultEvict, res.Kind, "step %d", i+2)
		assert.Equal(t, FrameIndex(0), res.Frame)
	}
	assert.Equal(t, PageID(0), results[1].EvictedPage)
	assert.Equal(t, PageID(1), results[2].EvictedPage)
	assert.Equal(t, PageID(0), results[3].EvictedPage)

	stats := e.FinalStats()
	assert.Equal(t, uint64(4), stats.Faults)
	assert.Equal(t, uint64(3), stats.Swaps)
	assert.Equal(t, []PageID{1}, stats.FrameOccupancy)

	// Second step: FAULT, SWAP_OUT, EVICTED_AND_LOADED
	assert.Equal(t, []EventKind{
		EventFault, EventLoaded,
		EventFault, EventSwapOut, EventEvictedAndLoaded,
		EventFault, EventSwapOut, EventEvictedAndLoaded,
		EventFault, EventSwapOut, EventEvictedAndLoaded,
	}, sink.kinds())

	swap := sink.events[3]
	assert.Equal(t, uint64(2), swap.Step)
	assert.Equal(t, PageID(0), swap.VictimPage)
	assert.Equal(t, FrameIndex(0), swap.Frame)
}

func TestInvalidPageLeavesStateUntouched(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEngine(3, 3, WithSink(sink))
	require.NoError(t, err)
	runRefs(t, e, []PageID{0, 1})
	eventsBefore := len(sink.events)

	before := e.Snapshot()
	for _, bad := range []PageID{5, 3, -1} {
		res, err := e.Step(bad)
		require.Error(t, err)
		assert.Equal(t, StepResult{Kind: StepInvalid, Frame: NoFrame, EvictedPage: NoPage}, res)
		assert.Equal(t, "INVALID", res.Kind.String())
		assert.True(t, errors.Is(err, ErrInvalidPage))
		assert.Equal(t, ErrCodeInvalidPage, GetErrorCode(err))
	}

	assert.Equal(t, before, e.Snapshot())
	assert.Len(t, sink.events, eventsBefore)
	assert.Equal(t, uint64(2), e.FinalStats().TotalRefs)
}

func TestStepAtNumbersEventsByPosition(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEngine(1, 2, WithSink(sink))
	require.NoError(t, err)

	_, err = e.StepAt(1, 0)
	require.NoError(t, err)
	_, err = e.StepAt(2, 9)
	require.Error(t, err)
	res, err := e.StepAt(3, 1)
	require.NoError(t, err)
	assert.Equal(t, StepFaultEvict, res.Kind)

	for _, ev := range sink.events[2:] {
		assert.Equal(t, uint64(3), ev.Step, "event %s", ev.Kind)
	}
	assert.Equal(t, uint64(2), e.FinalStats().TotalRefs)

	// Step continues from the accepted count
	_, err = e.Step(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sink.events[len(sink.events)-1].Step)
}

func TestEventsDeliveredAfterStateIsConsistent(t *testing.T) {
	var e *Engine
	var checked int
	sink := SinkFunc(func(ev Event) {
		checked++
		assert.NoError(t, e.CheckInvariants(), "event %s observed inconsistent state", ev.Kind)
	})

	var err error
	e, err = NewEngine(2, 4, WithSink(sink))
	require.NoError(t, err)
	runRefs(t, e, []PageID{0, 1, 2, 3, 0})
	assert.Equal(t, 2+2+3+3+3, checked)
}

func TestMultiSinkFanOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	e, err := NewEngine(1, 2, WithSink(MultiSink{a, b}))
	require.NoError(t, err)

	runRefs(t, e, []PageID{0, 0})
	assert.Equal(t, a.events, b.events)
	assert.Equal(t, []EventKind{EventFault, EventLoaded, EventHit}, a.kinds())
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := NewEngine(1, 2, WithLogger(logger))
	require.NoError(t, err)
	runRefs(t, e, []PageID{0, 1})

	out := buf.String()
	assert.Contains(t, out, "reference resolved")
	assert.Contains(t, out, "result=FAULT_LOAD")
	assert.Contains(t, out, "result=FAULT_EVICT")
	assert.Contains(t, out, "evicted_page=0")
}

func TestEmptyQueueWithNoFreeFramesPanics(t *testing.T) {
	e, err := NewEngine(1, 2)
	require.NoError(t, err)
	runRefs(t, e, []PageID{0})

	// Corrupt the engine the way only a defect could
	e.queue.PopHead()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		pe, ok := r.(*PagingError)
		require.True(t, ok, "expected *PagingError, got %T", r)
		assert.ErrorIs(t, pe, ErrInternalConsistency)
	}()
	_, _ = e.Step(1)
}

func TestCheckInvariantsDetectsCorruption(t *testing.T) {
	e, err := NewEngine(2, 3)
	require.NoError(t, err)
	runRefs(t, e, []PageID{0, 1})

	e.frames.SetOccupant(1, 2)
	err = e.CheckInvariants()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternalConsistency)
}
