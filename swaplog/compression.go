package swaplog

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// CompressionType represents the compression algorithm used for record blocks
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionLZ4    CompressionType = 1
	CompressionSnappy CompressionType = 2
)

// String returns the config name of the algorithm
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a config name to a CompressionType
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	default:
		return CompressionNone, fmt.Errorf("unsupported compression %q (must be none, snappy, or lz4)", name)
	}
}

// Block header layout:
// [0-1]: Magic number (0xC0DE)
// [2]: Compression type actually applied to this block
// [3]: Reserved
// [4-7]: Uncompressed size
// [8-11]: Stored size
// [12-15]: CRC32 (IEEE) of the uncompressed payload
const (
	BlockMagic      = 0xC0DE
	BlockHeaderSize = 16

	// MinCompressionSavings is the minimum number of bytes compression must
	// save for a block to be stored compressed
	MinCompressionSavings = 16

	// Sanity limit when decoding
	maxBlockSize = 16 * 1024 * 1024
)

// encodeBlock compresses raw with the requested algorithm and returns the
// framed block
func encodeBlock(raw []byte, compression CompressionType) ([]byte, error) {
	var stored []byte

	switch compression {
	case CompressionNone:
		stored = raw

	case CompressionLZ4:
		stored = make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, stored, nil)
		if err != nil {
			return nil, fmt.Errorf("LZ4 compression failed: %w", err)
		}
		// n == 0 means the data was incompressible
		stored = stored[:n]

	case CompressionSnappy:
		stored = snappy.Encode(nil, raw)

	default:
		return nil, fmt.Errorf("unsupported compression type: %d", compression)
	}

	applied := compression
	if compression != CompressionNone && (len(stored) == 0 || len(raw)-len(stored) < MinCompressionSavings) {
		applied = CompressionNone
		stored = raw
	}

	block := make([]byte, BlockHeaderSize, BlockHeaderSize+len(stored))
	binary.LittleEndian.PutUint16(block[0:2], BlockMagic)
	block[2] = uint8(applied)
	binary.LittleEndian.PutUint32(block[4:8], uint32(len(raw)))
	binary.LittleEndian.PutUint32(block[8:12], uint32(len(stored)))
	binary.LittleEndian.PutUint32(block[12:16], crc32.ChecksumIEEE(raw))
	return append(block, stored...), nil
}

type blockHeader struct {
	compression CompressionType
	rawSize     uint32
	storedSize  uint32
	checksum    uint32
}

func parseBlockHeader(data []byte) (blockHeader, error) {
	if len(data) < BlockHeaderSize {
		return blockHeader{}, fmt.Errorf("%w: short block header (%d bytes)", ErrCorruptLog, len(data))
	}
	if magic := binary.LittleEndian.Uint16(data[0:2]); magic != BlockMagic {
		return blockHeader{}, fmt.Errorf("%w: invalid block magic %04x", ErrCorruptLog, magic)
	}
	h := blockHeader{
		compression: CompressionType(data[2]),
		rawSize:     binary.LittleEndian.Uint32(data[4:8]),
		storedSize:  binary.LittleEndian.Uint32(data[8:12]),
		checksum:    binary.LittleEndian.Uint32(data[12:16]),
	}
	if h.rawSize > maxBlockSize || h.storedSize > maxBlockSize {
		return blockHeader{}, fmt.Errorf("%w: block too large (%d/%d bytes)", ErrCorruptLog, h.rawSize, h.storedSize)
	}
	return h, nil
}

// decodeBlock restores and verifies the payload of a block
func decodeBlock(h blockHeader, stored []byte) ([]byte, error) {
	var raw []byte

	switch h.compression {
	case CompressionNone:
		raw = stored

	case CompressionLZ4:
		raw = make([]byte, h.rawSize)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: LZ4 decompression failed: %v", ErrCorruptLog, err)
		}
		if n != int(h.rawSize) {
			return nil, fmt.Errorf("%w: LZ4 size mismatch: got %d, expected %d", ErrCorruptLog, n, h.rawSize)
		}

	case CompressionSnappy:
		var err error
		raw, err = snappy.Decode(nil, stored)
		if err != nil {
			return nil, fmt.Errorf("%w: snappy decompression failed: %v", ErrCorruptLog, err)
		}

	default:
		return nil, fmt.Errorf("%w: unsupported compression type %d", ErrCorruptLog, h.compression)
	}

	if len(raw) != int(h.rawSize) {
		return nil, fmt.Errorf("%w: block size mismatch: got %d, expected %d", ErrCorruptLog, len(raw), h.rawSize)
	}
	if sum := crc32.ChecksumIEEE(raw); sum != h.checksum {
		return nil, fmt.Errorf("%w: checksum mismatch: got %08x, expected %08x", ErrCorruptLog, sum, h.checksum)
	}
	return raw, nil
}
