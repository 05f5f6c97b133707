package logstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyvito/walcursor/logrec"
)

func TestSegmentNew(t *testing.T) {
	cfg := newTestConfig(t, withSegmentSize(64))
	seg, err := openSegment(1, cfg)
	require.NoError(t, err)
	require.NoError(t, seg.Close())

	data, err := os.ReadFile(filepath.Join(cfg.WorkDir, "wal0000000001"))
	require.NoError(t, err)
	expected := mustBytesFromHex("00000000 00000001 00000000 00000040 00000000 00000000")
	expected = append(expected, make([]byte, 64)...)
	assert.Equal(t, expected, data)
}

func TestSegmentOpen(t *testing.T) {
	cfg := newTestConfig(t)
	data := mustBytesFromHex("00000000 00000007 00000000 00000020 00000000 00000000")
	data = append(data, make([]byte, 32)...)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkDir, segmentName(7)), data, 0644))

	seg, err := openSegment(7, cfg)
	require.NoError(t, err)
	defer seg.Close()

	assert.Equal(t, uint32(7), seg.FileNumber)
	assert.Equal(t, int64(32), seg.Size)
	assert.Equal(t, int64(0), seg.Cursor.Load())
	assert.Equal(t, int64(32), seg.Available())
}

func TestSegmentOpenMismatchedMetadata(t *testing.T) {
	cfg := newTestConfig(t)
	data := mustBytesFromHex("00000000 00000001 00000000 00000400 00000000 00000000")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkDir, segmentName(1)), data, 0644))

	_, err := openSegment(1, cfg)
	assert.ErrorContains(t, err, "metadata does not match file size")
}

func TestSegmentAppendRecord(t *testing.T) {
	cfg := newTestConfig(t, withSegmentSize(64))
	seg, err := openSegment(1, cfg)
	require.NoError(t, err)
	defer seg.Close()

	rec := logrec.BuildRecord(checkpointBody("abc"), 0)
	require.Len(t, rec, 20)

	for i := int64(0); i < 3; i++ {
		offset, ok := seg.Append(rec)
		require.True(t, ok)
		assert.Equal(t, i*20, offset)
	}
	_, ok := seg.Append(rec)
	assert.False(t, ok)
	assert.Equal(t, int64(4), seg.Available())

	got, err := seg.Record(20)
	require.NoError(t, err)
	assert.Equal(t, rec, []byte(got))

	_, err = seg.Record(60)
	assert.ErrorIs(t, err, errSegmentEnd)

	_, err = seg.Record(10)
	assert.Error(t, err)
}

func TestSegmentCorruptRecord(t *testing.T) {
	cfg := newTestConfig(t, withSegmentSize(64))
	seg, err := openSegment(1, cfg)
	require.NoError(t, err)
	defer seg.Close()

	_, ok := seg.Append(logrec.BuildRecord(checkpointBody("abc"), 0))
	require.True(t, ok)
	seg.Records[logrec.HeaderSize+1] ^= 0xFF

	_, err = seg.Record(0)
	assert.ErrorIs(t, err, logrec.ErrChecksum)
}
