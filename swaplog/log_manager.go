package swaplog

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/xid"

	"github.com/sibexico/HexPager/paging"
)

// DefaultBlockRecords is the number of records buffered before a block is written
const DefaultBlockRecords = 256

// LogManager writes swap-out records to a binary log in compressed blocks.
// It is a paging.EventSink; the first write error is kept and reported by
// Err and Close.
type LogManager struct {
	w          io.Writer
	file       *os.File // nil when writing to a caller-owned writer
	header     Header
	buffer     []byte
	buffered   int
	blockSize  int
	nextSeq    uint64
	written    uint64
	err        error
	headerDone bool
}

// NewLogManager creates (or truncates) a binary swap log at path
func NewLogManager(path string, compression CompressionType, runID xid.ID) (*LogManager, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap log %s: %w", path, err)
	}

	lm, err := NewLogManagerWriter(file, compression, runID)
	if err != nil {
		file.Close()
		return nil, err
	}
	lm.file = file
	return lm, nil
}

// NewLogManagerWriter creates a binary swap log on w. Closing the manager
// does not close w.
func NewLogManagerWriter(w io.Writer, compression CompressionType, runID xid.ID) (*LogManager, error) {
	if compression > CompressionSnappy {
		return nil, fmt.Errorf("unsupported compression type: %d", compression)
	}
	return &LogManager{
		w: w,
		header: Header{
			Version:     FormatVersion,
			Compression: compression,
			RunID:       runID,
		},
		buffer:    make([]byte, 0, DefaultBlockRecords*RecordSize),
		blockSize: DefaultBlockRecords,
		nextSeq:   1,
	}, nil
}

// SetBlockRecords changes how many records are grouped per block
func (lm *LogManager) SetBlockRecords(n int) {
	if n > 0 {
		lm.blockSize = n
	}
}

// HandleEvent records swap-out events and ignores everything else
func (lm *LogManager) HandleEvent(ev paging.Event) {
	if ev.Kind != paging.EventSwapOut || lm.err != nil {
		return
	}
	if _, err := lm.Append(ev.Step, ev.VictimPage, ev.Frame); err != nil {
		lm.err = err
	}
}

// Append adds a record and returns its sequence number
func (lm *LogManager) Append(step uint64, page paging.PageID, frame paging.FrameIndex) (uint64, error) {
	rec := SwapRecord{
		Seq:   lm.nextSeq,
		Step:  step,
		Page:  int32(page),
		Frame: int32(frame),
	}
	lm.nextSeq++

	lm.buffer = rec.Serialize(lm.buffer)
	lm.buffered++

	if lm.buffered >= lm.blockSize {
		return rec.Seq, lm.Flush()
	}
	return rec.Seq, nil
}

// Flush writes buffered records as one block
func (lm *LogManager) Flush() error {
	if !lm.headerDone {
		if _, err := lm.w.Write(lm.header.Serialize()); err != nil {
			return fmt.Errorf("failed to write swap log header: %w", err)
		}
		lm.headerDone = true
	}

	if lm.buffered == 0 {
		return nil
	}

	block, err := encodeBlock(lm.buffer, lm.header.Compression)
	if err != nil {
		return err
	}
	if _, err := lm.w.Write(block); err != nil {
		return fmt.Errorf("failed to write swap log block: %w", err)
	}
	if lm.file != nil {
		if err := lm.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync swap log: %w", err)
		}
	}

	lm.written += uint64(lm.buffered)
	lm.buffer = lm.buffer[:0]
	lm.buffered = 0
	return nil
}

// Count returns the number of records appended so far
func (lm *LogManager) Count() uint64 {
	return lm.nextSeq - 1
}

// Written returns the number of records flushed to the writer
func (lm *LogManager) Written() uint64 {
	return lm.written
}

// Err returns the first error hit while handling events
func (lm *LogManager) Err() error {
	return lm.err
}

// Close flushes remaining records and closes the file, if owned
func (lm *LogManager) Close() error {
	err := lm.err
	if err == nil {
		err = lm.Flush()
	}
	if lm.file != nil {
		if cerr := lm.file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close swap log: %w", cerr)
		}
		lm.file = nil
	}
	return err
}
