package swaplog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadLog decodes a binary swap log, verifying every block checksum
func ReadLog(r io.Reader) (Header, []SwapRecord, error) {
	br := bufio.NewReader(r)

	headerBytes := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(br, headerBytes); err != nil {
		return Header{}, nil, fmt.Errorf("%w: reading header: %v", ErrCorruptLog, err)
	}
	header, err := DeserializeHeader(headerBytes)
	if err != nil {
		return Header{}, nil, err
	}

	records := make([]SwapRecord, 0)
	blockHead := make([]byte, BlockHeaderSize)
	for {
		_, err := io.ReadFull(br, blockHead)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, records, fmt.Errorf("%w: reading block header: %v", ErrCorruptLog, err)
		}

		bh, err := parseBlockHeader(blockHead)
		if err != nil {
			return header, records, err
		}

		stored := make([]byte, bh.storedSize)
		if _, err := io.ReadFull(br, stored); err != nil {
			return header, records, fmt.Errorf("%w: reading block payload: %v", ErrCorruptLog, err)
		}

		raw, err := decodeBlock(bh, stored)
		if err != nil {
			return header, records, err
		}
		if len(raw)%RecordSize != 0 {
			return header, records, fmt.Errorf("%w: block of %d bytes is not a whole number of records", ErrCorruptLog, len(raw))
		}

		for off := 0; off < len(raw); off += RecordSize {
			rec, err := DeserializeRecord(raw[off:])
			if err != nil {
				return header, records, err
			}
			records = append(records, rec)
		}
	}

	return header, records, nil
}

// ReadLogFile decodes the binary swap log at path
func ReadLogFile(path string) (Header, []SwapRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open swap log %s: %w", path, err)
	}
	defer file.Close()

	return ReadLog(file)
}
