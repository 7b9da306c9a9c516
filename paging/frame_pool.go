package paging

// FrameIndex identifies a physical frame slot in [0, numFrames)
type FrameIndex int

// NoFrame is the frame of a non-resident page
const NoFrame FrameIndex = -1

// FramePool tracks the occupant of every physical frame.
// Frames are handed out once each, in ascending order. After that a frame
// only changes hands through eviction, so the free count never grows.
type FramePool struct {
	occupants     []PageID
	nextFreeFrame FrameIndex
	freeCount     int
}

// NewFramePool creates a pool of numFrames empty frames
func NewFramePool(numFrames int) *FramePool {
	occupants := make([]PageID, numFrames)
	for i := range occupants {
		occupants[i] = NoPage
	}
	return &FramePool{
		occupants:     occupants,
		nextFreeFrame: 0,
		freeCount:     numFrames,
	}
}

// Size returns the number of frames
func (fp *FramePool) Size() int {
	return len(fp.occupants)
}

// FreeCount returns the number of frames never allocated
func (fp *FramePool) FreeCount() int {
	return fp.freeCount
}

// AllocateFree returns the next never-used frame and decrements the free count
func (fp *FramePool) AllocateFree() FrameIndex {
	if fp.freeCount == 0 {
		violation("AllocateFree", "no free frames remain (%d frames)", len(fp.occupants))
	}
	frame := fp.nextFreeFrame
	fp.nextFreeFrame++
	fp.freeCount--
	return frame
}

// SetOccupant overwrites the page held by frame
func (fp *FramePool) SetOccupant(frame FrameIndex, page PageID) {
	fp.occupants[frame] = page
}

// OccupantOf returns the page held by frame, or NoPage
func (fp *FramePool) OccupantOf(frame FrameIndex) PageID {
	return fp.occupants[frame]
}

// Occupancy returns a copy of the frame -> page table
func (fp *FramePool) Occupancy() []PageID {
	out := make([]PageID, len(fp.occupants))
	copy(out, fp.occupants)
	return out
}

func (fp *FramePool) clone() *FramePool {
	return &FramePool{
		occupants:     fp.Occupancy(),
		nextFreeFrame: fp.nextFreeFrame,
		freeCount:     fp.freeCount,
	}
}
