package paging

// PageID identifies a logical page in [0, numPages)
type PageID int

// NoPage marks a frame that has never held a page
const NoPage PageID = -1

// PageTableEntry describes where a page lives.
// Resident is true exactly when Frame != NoFrame.
type PageTableEntry struct {
	Resident bool
	Frame    FrameIndex
}

// PageTable maps every page id to its residency
type PageTable struct {
	entries []PageTableEntry
}

// NewPageTable creates a page table with every page non-resident
func NewPageTable(numPages int) *PageTable {
	entries := make([]PageTableEntry, numPages)
	for i := range entries {
		entries[i] = PageTableEntry{Resident: false, Frame: NoFrame}
	}
	return &PageTable{entries: entries}
}

// Size returns the number of pages tracked
func (pt *PageTable) Size() int {
	return len(pt.entries)
}

// Lookup returns the entry for a page
func (pt *PageTable) Lookup(page PageID) PageTableEntry {
	return pt.entries[page]
}

// MarkResident records that page now occupies frame
func (pt *PageTable) MarkResident(page PageID, frame FrameIndex) {
	if pt.entries[page].Resident {
		violation("MarkResident", "page %d already resident in frame %d", page, pt.entries[page].Frame)
	}
	pt.entries[page] = PageTableEntry{Resident: true, Frame: frame}
}

// MarkEvicted records that page no longer occupies any frame
func (pt *PageTable) MarkEvicted(page PageID) {
	if !pt.entries[page].Resident {
		violation("MarkEvicted", "page %d is not resident", page)
	}
	pt.entries[page] = PageTableEntry{Resident: false, Frame: NoFrame}
}

// ResidentCount returns the number of resident pages
func (pt *PageTable) ResidentCount() int {
	n := 0
	for _, e := range pt.entries {
		if e.Resident {
			n++
		}
	}
	return n
}

// ForEachResident calls fn for every resident page in ascending page order.
// Iteration stops when fn returns false.
func (pt *PageTable) ForEachResident(fn func(page PageID, frame FrameIndex) bool) {
	for i, e := range pt.entries {
		if !e.Resident {
			continue
		}
		if !fn(PageID(i), e.Frame) {
			return
		}
	}
}

func (pt *PageTable) clone() *PageTable {
	entries := make([]PageTableEntry, len(pt.entries))
	copy(entries, pt.entries)
	return &PageTable{entries: entries}
}
