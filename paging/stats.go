package paging

// Stats is the accounting report of a run
type Stats struct {
	TotalRefs uint64
	Faults    uint64
	Swaps     uint64
	Hits      uint64

	// FrameOccupancy holds the page in each frame, NoPage if never written
	FrameOccupancy []PageID
}

// FaultRate returns faults / references, or 0 before any reference
func (s Stats) FaultRate() float64 {
	if s.TotalRefs == 0 {
		return 0.0
	}
	return float64(s.Faults) / float64(s.TotalRefs)
}

// Occupied reports whether frame has ever been written
func (s Stats) Occupied(frame FrameIndex) bool {
	return s.FrameOccupancy[frame] != NoPage
}

type accounting struct {
	totalRefs uint64
	faults    uint64
	swaps     uint64
}

func (a *accounting) onReference() { a.totalRefs++ }
func (a *accounting) onFault() { a.faults++ }
func (a *accounting) onSwapOut() { a.swaps++ }

func (a *accounting) report(frames *FramePool) Stats {
	return Stats{
		TotalRefs:      a.totalRefs,
		Faults:         a.faults,
		Swaps:          a.swaps,
		Hits:           a.totalRefs - a.faults,
		FrameOccupancy: frames.Occupancy(),
	}
}
