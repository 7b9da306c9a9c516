package swaplog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibexico/HexPager/paging"
)

func swapEvent(step uint64, page paging.PageID, frame paging.FrameIndex) paging.Event {
	return paging.Event{
		Kind:       paging.EventSwapOut,
		Step:       step,
		Page:       paging.NoPage,
		Frame:      frame,
		VictimPage: page,
	}
}

func TestLogManagerRoundTrip(t *testing.T) {
	for _, compression := range []CompressionType{CompressionNone, CompressionSnappy, CompressionLZ4} {
		t.Run(compression.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "swap.bin")
			runID := xid.New()

			lm, err := NewLogManager(path, compression, runID)
			require.NoError(t, err)
			lm.SetBlockRecords(64)

			// Highly repetitive payload so every algorithm actually compresses
			for i := uint64(1); i <= 1000; i++ {
				lm.HandleEvent(swapEvent(i+3, paging.PageID(i%5), paging.FrameIndex(i%3)))
			}
			// Non swap events are ignored
			lm.HandleEvent(paging.Event{Kind: paging.EventHit, Page: 1, Frame: 0})

			require.NoError(t, lm.Err())
			require.NoError(t, lm.Close())
			assert.Equal(t, uint64(1000), lm.Count())
			assert.Equal(t, uint64(1000), lm.Written())

			header, records, err := ReadLogFile(path)
			require.NoError(t, err)
			assert.Equal(t, compression, header.Compression)
			assert.Equal(t, runID, header.RunID)
			require.Len(t, records, 1000)

			for i, rec := range records {
				n := uint64(i + 1)
				assert.Equal(t, n, rec.Seq)
				assert.Equal(t, n+3, rec.Step)
				assert.Equal(t, int32(n%5), rec.Page)
				assert.Equal(t, int32(n%3), rec.Frame)
			}
		})
	}
}

func TestLogManagerCompressesBlocks(t *testing.T) {
	var plain, packed bytes.Buffer

	write := func(buf *bytes.Buffer, compression CompressionType) {
		lm, err := NewLogManagerWriter(buf, compression, xid.New())
		require.NoError(t, err)
		for i := uint64(1); i <= 512; i++ {
			lm.HandleEvent(swapEvent(i, 1, 0))
		}
		require.NoError(t, lm.Close())
	}

	write(&plain, CompressionNone)
	write(&packed, CompressionSnappy)
	assert.Less(t, packed.Len(), plain.Len())
}

func TestLogManagerEmptyLog(t *testing.T) {
	var buf bytes.Buffer
	lm, err := NewLogManagerWriter(&buf, CompressionLZ4, xid.New())
	require.NoError(t, err)
	require.NoError(t, lm.Close())

	assert.Equal(t, FileHeaderSize, buf.Len())
	_, records, err := ReadLog(&buf)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLogManagerRejectsUnknownCompression(t *testing.T) {
	_, err := NewLogManagerWriter(&bytes.Buffer{}, CompressionType(9), xid.New())
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestLogManagerKeepsFirstError(t *testing.T) {
	lm, err := NewLogManagerWriter(failingWriter{}, CompressionNone, xid.New())
	require.NoError(t, err)
	lm.SetBlockRecords(1)

	lm.HandleEvent(swapEvent(1, 0, 0))
	require.Error(t, lm.Err())
	assert.Contains(t, lm.Err().Error(), "disk full")

	// Later events are dropped once the log has failed
	lm.HandleEvent(swapEvent(2, 1, 0))
	assert.Equal(t, uint64(1), lm.Count())
	assert.Error(t, lm.Close())
}

func TestReadLogDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	lm, err := NewLogManagerWriter(&buf, CompressionNone, xid.New())
	require.NoError(t, err)
	for i := uint64(1); i <= 10; i++ {
		lm.HandleEvent(swapEvent(i, 2, 1))
	}
	require.NoError(t, lm.Close())
	good := buf.Bytes()

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		msg    string
	}{
		{
			name:   "bad magic",
			mutate: func(b []byte) []byte { b[0] = 'X'; return b },
			msg:    "bad magic",
		},
		{
			name:   "flipped payload byte",
			mutate: func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b },
			msg:    "checksum mismatch",
		},
		{
			name:   "truncated payload",
			mutate: func(b []byte) []byte { return b[:len(b)-5] },
			msg:    "reading block payload",
		},
		{
			name:   "bad block magic",
			mutate: func(b []byte) []byte { b[FileHeaderSize] = 0; return b },
			msg:    "invalid block magic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), good...))
			_, _, err := ReadLog(bytes.NewReader(data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptLog)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    CompressionType
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"Snappy", CompressionSnappy, false},
		{"lz4", CompressionLZ4, false},
		{"zstd", CompressionNone, true},
	}

	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTextLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swap_simulated.txt")
	tl, err := NewTextLog(path)
	require.NoError(t, err)

	tl.HandleEvent(paging.Event{Kind: paging.EventFault, Page: 3})
	tl.HandleEvent(swapEvent(4, 1, 0))
	tl.HandleEvent(swapEvent(5, 2, 1))
	require.NoError(t, tl.Close())
	assert.Equal(t, uint64(2), tl.Count())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		TextLogHeader,
		"Step 4: swapped out page 1 from frame 0",
		"Step 5: swapped out page 2 from frame 1",
	}, lines)
}

func TestTextLogTruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swap.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale line\nanother\n"), 0644))

	tl, err := NewTextLog(path)
	require.NoError(t, err)
	require.NoError(t, tl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, TextLogHeader+"\n", string(data))
}
