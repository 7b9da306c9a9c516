package swaplog

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sibexico/HexPager/paging"
)

// TextLogHeader is the first line of a plain-text swap log
const TextLogHeader = "=== Swap simulated log ==="

// TextLog appends one human-readable line per swap-out:
//
//	Step 7: swapped out page 4 from frame 0
type TextLog struct {
	w     *bufio.Writer
	file  *os.File
	count uint64
	err   error
}

// NewTextLog creates (or truncates) a text swap log at path
func NewTextLog(path string) (*TextLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap log %s: %w", path, err)
	}

	tl, err := NewTextLogWriter(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	tl.file = file
	return tl, nil
}

// NewTextLogWriter writes the log header to w and returns a log appending to it
func NewTextLogWriter(w io.Writer) (*TextLog, error) {
	tl := &TextLog{w: bufio.NewWriter(w)}
	if _, err := fmt.Fprintln(tl.w, TextLogHeader); err != nil {
		return nil, fmt.Errorf("failed to write swap log header: %w", err)
	}
	return tl, nil
}

// HandleEvent records swap-out events and ignores everything else
func (tl *TextLog) HandleEvent(ev paging.Event) {
	if ev.Kind != paging.EventSwapOut || tl.err != nil {
		return
	}
	if _, err := fmt.Fprintf(tl.w, "Step %d: swapped out page %d from frame %d\n", ev.Step, ev.VictimPage, ev.Frame); err != nil {
		tl.err = fmt.Errorf("failed to append to swap log: %w", err)
		return
	}
	tl.count++
}

// Count returns the number of swap lines written
func (tl *TextLog) Count() uint64 {
	return tl.count
}

// Err returns the first error hit while handling events
func (tl *TextLog) Err() error {
	return tl.err
}

// Close flushes buffered lines and closes the file, if owned
func (tl *TextLog) Close() error {
	err := tl.err
	if ferr := tl.w.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("failed to flush swap log: %w", ferr)
	}
	if tl.file != nil {
		if cerr := tl.file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close swap log: %w", cerr)
		}
		tl.file = nil
	}
	return err
}
