package swaplog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/xid"
)

// ErrCorruptLog is wrapped by every decoding failure of a binary swap log
var ErrCorruptLog = errors.New("corrupt swap log")

// SwapRecord is one swap-out notification
type SwapRecord struct {
	Seq   uint64 // 1-based, monotonic within a log
	Step  uint64 // Reference number that caused the eviction
	Page  int32  // Evicted page
	Frame int32  // Frame the page was evicted from
}

// RecordSize is the serialized size of a SwapRecord
const RecordSize = 8 + 8 + 4 + 4

// Serialize appends the record to buf
// Format: Seq(8) | Step(8) | Page(4) | Frame(4), little endian
func (r SwapRecord) Serialize(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, r.Seq)
	buf = binary.LittleEndian.AppendUint64(buf, r.Step)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.Page))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.Frame))
	return buf
}

// DeserializeRecord decodes a record from the first RecordSize bytes of data
func DeserializeRecord(data []byte) (SwapRecord, error) {
	if len(data) < RecordSize {
		return SwapRecord{}, fmt.Errorf("%w: record needs %d bytes, have %d", ErrCorruptLog, RecordSize, len(data))
	}
	return SwapRecord{
		Seq:   binary.LittleEndian.Uint64(data[0:8]),
		Step:  binary.LittleEndian.Uint64(data[8:16]),
		Page:  int32(binary.LittleEndian.Uint32(data[16:20])),
		Frame: int32(binary.LittleEndian.Uint32(data[20:24])),
	}, nil
}

// File header layout:
// [0-3]: Magic "HXSW"
// [4]: Format version
// [5]: Compression type used for blocks
// [6-7]: Reserved
// [8-19]: Run id (xid)
const (
	FileMagic      = "HXSW"
	FormatVersion  = 1
	FileHeaderSize = 20
)

// Header identifies a binary swap log
type Header struct {
	Version     uint8
	Compression CompressionType
	RunID       xid.ID
}

// Serialize encodes the header
func (h Header) Serialize() []byte {
	buf := make([]byte, FileHeaderSize)
	copy(buf[0:4], FileMagic)
	buf[4] = h.Version
	buf[5] = uint8(h.Compression)
	copy(buf[8:20], h.RunID.Bytes())
	return buf
}

// DeserializeHeader decodes a file header
func DeserializeHeader(data []byte) (Header, error) {
	if len(data) < FileHeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrCorruptLog, FileHeaderSize, len(data))
	}
	if string(data[0:4]) != FileMagic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrCorruptLog, data[0:4])
	}
	if data[4] != FormatVersion {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptLog, data[4])
	}
	runID, err := xid.FromBytes(data[8:20])
	if err != nil {
		return Header{}, fmt.Errorf("%w: bad run id: %v", ErrCorruptLog, err)
	}
	return Header{
		Version:     data[4],
		Compression: CompressionType(data[5]),
		RunID:       runID,
	}, nil
}
