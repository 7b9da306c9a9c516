package paging

// QueueEntry is a resident (frame, page) pair in load order
type QueueEntry struct {
	Frame FrameIndex
	Page  PageID
}

// FIFOQueue orders resident pages by load time, oldest at the head.
// It is a fixed-capacity ring buffer; capacity equals the frame count
// because at most one entry exists per frame.
type FIFOQueue struct {
	ring []QueueEntry
	head int
	size int
}

// NewFIFOQueue creates an empty queue holding at most capacity entries
func NewFIFOQueue(capacity int) *FIFOQueue {
	return &FIFOQueue{
		ring: make([]QueueEntry, capacity),
	}
}

// Len returns the number of queued entries
func (q *FIFOQueue) Len() int {
	return q.size
}

// Cap returns the queue capacity
func (q *FIFOQueue) Cap() int {
	return len(q.ring)
}

// PushTail appends a newly loaded page as the youngest entry
func (q *FIFOQueue) PushTail(frame FrameIndex, page PageID) {
	if q.size == len(q.ring) {
		violation("PushTail", "queue full (%d entries)", q.size)
	}
	q.ring[(q.head+q.size)%len(q.ring)] = QueueEntry{Frame: frame, Page: page}
	q.size++
}

// PopHead removes and returns the oldest entry.
// Returns false if the queue is empty.
func (q *FIFOQueue) PopHead() (QueueEntry, bool) {
	if q.size == 0 {
		return QueueEntry{Frame: NoFrame, Page: NoPage}, false
	}
	entry := q.ring[q.head]
	q.ring[q.head] = QueueEntry{}
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	return entry, true
}

// Head returns the oldest entry without removing it
func (q *FIFOQueue) Head() (QueueEntry, bool) {
	if q.size == 0 {
		return QueueEntry{Frame: NoFrame, Page: NoPage}, false
	}
	return q.ring[q.head], true
}

// Remove deletes the entry for page, keeping the order of the others.
// Returns the removed entry and true if page was queued.
func (q *FIFOQueue) Remove(page PageID) (QueueEntry, bool) {
	pos := q.indexOf(page)
	if pos < 0 {
		return QueueEntry{Frame: NoFrame, Page: NoPage}, false
	}
	removed := q.at(pos)

	// Shift younger entries one slot towards the head
	for i := pos; i < q.size-1; i++ {
		q.ring[(q.head+i)%len(q.ring)] = q.at(i + 1)
	}
	q.ring[(q.head+q.size-1)%len(q.ring)] = QueueEntry{}
	q.size--
	return removed, true
}

// Contains reports whether page is queued
func (q *FIFOQueue) Contains(page PageID) bool {
	return q.indexOf(page) >= 0
}

// Entries returns the queued entries, head first
func (q *FIFOQueue) Entries() []QueueEntry {
	out := make([]QueueEntry, q.size)
	for i := 0; i < q.size; i++ {
		out[i] = q.at(i)
	}
	return out
}

func (q *FIFOQueue) at(i int) QueueEntry {
	return q.ring[(q.head+i)%len(q.ring)]
}

func (q *FIFOQueue) indexOf(page PageID) int {
	for i := 0; i < q.size; i++ {
		if q.at(i).Page == page {
			return i
		}
	}
	return -1
}

func (q *FIFOQueue) clone() *FIFOQueue {
	ring := make([]QueueEntry, len(q.ring))
	copy(ring, q.ring)
	return &FIFOQueue{ring: ring, head: q.head, size: q.size}
}
