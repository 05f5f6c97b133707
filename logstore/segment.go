package logstore

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/heyvito/gommap"

	"github.com/heyvito/walcursor/logrec"
)

var be = binary.BigEndian

const segmentMetadataSize = 8 * 3

var segmentOffsets = struct {
	FileNumber uint8
	Size       uint8
	Cursor     uint8
}{
	FileNumber: 0,
	Size:       8,
	Cursor:     16,
}

// errSegmentEnd signals that no record starts at or after a given offset of
// a segment.
var errSegmentEnd = stderrors.New("end of segment")

func segmentName(num uint32) string { return fmt.Sprintf("wal%010d", num) }

// segment is a preallocated, memory mapped log file. Records are appended
// back to back after its metadata; Cursor holds the amount of record bytes
// written so far.
type segment struct {
	Path string
	File *os.File

	FileNumber uint32
	Size       int64
	Cursor     atomic.Int64
	ReadOnly   bool

	RawData  gommap.MMap
	Metadata gommap.MMap
	Records  gommap.MMap

	writeMu sync.Mutex
}

func openSegment(num uint32, config Config) (*segment, error) {
	path := filepath.Join(config.WorkDir, segmentName(num))
	var fd *os.File
	stat, err := os.Stat(path)
	isNew := false
	switch {
	case os.IsNotExist(err) && config.ReadOnly:
		return nil, err
	case os.IsNotExist(err):
		fd, err = os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_EXCL|os.O_SYNC, 0644)
		isNew = true
	case err != nil:
		return nil, err
	case stat.IsDir():
		return nil, fmt.Errorf("%s: is a directory", path)
	case config.ReadOnly:
		fd, err = os.OpenFile(path, os.O_RDONLY, 0644)
	default:
		fd, err = os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0644)
	}
	if err != nil {
		return nil, err
	}

	if isNew {
		if err = fd.Truncate(config.GetSegmentSize() + segmentMetadataSize); err != nil {
			_ = fd.Close()
			return nil, err
		}
	} else if stat.Size() < segmentMetadataSize {
		_ = fd.Close()
		return nil, fmt.Errorf("%s: truncated segment", path)
	}

	prot := gommap.PROT_READ | gommap.PROT_WRITE
	if config.ReadOnly {
		prot = gommap.PROT_READ
	}
	mapped, err := gommap.Map(fd.Fd(), prot, gommap.MAP_SHARED)
	if err != nil {
		_ = fd.Close()
		return nil, err
	}

	seg := &segment{
		Path:       path,
		File:       fd,
		FileNumber: num,
		Size:       config.GetSegmentSize(),
		ReadOnly:   config.ReadOnly,
		RawData:    mapped,
		Metadata:   mapped[:segmentMetadataSize],
		Records:    mapped[segmentMetadataSize:],
	}

	if isNew {
		seg.FlushMetadata()
	} else {
		seg.LoadMetadata()
		if seg.Size > int64(len(seg.Records)) || seg.Cursor.Load() > seg.Size {
			_ = seg.Close()
			return nil, fmt.Errorf("%s: metadata does not match file size", path)
		}
	}

	return seg, nil
}

func (s *segment) FlushMetadata() {
	be.PutUint64(s.Metadata[segmentOffsets.FileNumber:], uint64(s.FileNumber))
	be.PutUint64(s.Metadata[segmentOffsets.Size:], uint64(s.Size))
	be.PutUint64(s.Metadata[segmentOffsets.Cursor:], uint64(s.Cursor.Load()))
}

func (s *segment) LoadMetadata() {
	s.FileNumber = uint32(be.Uint64(s.Metadata[segmentOffsets.FileNumber:]))
	s.Size = int64(be.Uint64(s.Metadata[segmentOffsets.Size:]))
	s.Cursor.Store(int64(be.Uint64(s.Metadata[segmentOffsets.Cursor:])))
}

// end returns the amount of record bytes readable from the segment. Read-only
// segments observe the cursor published by the writing process.
func (s *segment) end() int64 {
	if s.ReadOnly {
		c := int64(be.Uint64(s.Metadata[segmentOffsets.Cursor:]))
		return min(c, s.Size)
	}
	return s.Cursor.Load()
}

// Append writes a complete record, returning the offset it was written to.
// Returns false in case the record does not fit the remaining space.
func (s *segment) Append(rec []byte) (int64, bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	offset := s.Cursor.Load()
	if offset+int64(len(rec)) > s.Size {
		return 0, false
	}
	copy(s.Records[offset:], rec)
	s.Cursor.Add(int64(len(rec)))
	be.PutUint64(s.Metadata[segmentOffsets.Cursor:], uint64(s.Cursor.Load()))
	return offset, true
}

// Record returns the record starting at offset. The returned slice references
// the mapped file and must not be modified.
func (s *segment) Record(offset int64) ([]byte, error) {
	end := s.end()
	if offset >= end {
		return nil, errSegmentEnd
	}
	l, err := logrec.PeekLen(s.Records[offset:end])
	if err != nil {
		return nil, err
	}
	if int64(l) < logrec.HeaderSize || offset+int64(l) > end {
		return nil, fmt.Errorf("record length %d at offset %d exceeds written data", l, offset)
	}
	rec := s.Records[offset : offset+int64(l)]
	if _, err = logrec.VerifyFrame(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Seek returns the first record starting at or after offset, along with the
// offset it starts at. Offsets not on a record boundary are resolved by
// walking record lengths from the start of the segment. Errors are reported
// with the offset of the record that could not be read.
func (s *segment) Seek(offset int64) (int64, []byte, error) {
	rec, err := s.Record(offset)
	if err == nil || stderrors.Is(err, errSegmentEnd) {
		return offset, rec, err
	}

	end := s.end()
	at := int64(0)
	for at < offset {
		l, lerr := logrec.PeekLen(s.Records[at:end])
		if lerr != nil {
			return at, nil, lerr
		}
		if int64(l) < logrec.HeaderSize {
			return at, nil, fmt.Errorf("record length %d at offset %d is smaller than its header", l, at)
		}
		at += int64(l)
	}
	if at == offset {
		return offset, nil, err
	}
	rec, err = s.Record(at)
	return at, rec, err
}

func (s *segment) Available() int64{ return s.Size - s.Cursor.Load() }

func (s *segment) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.ReadOnly {
		s.FlushMetadata()
		if err := s.RawData.Sync(gommap.MS_SYNC); err != nil {
			return err
		}
	}
	if err := s.RawData.UnsafeUnmap(); err != nil {
		return err
	}
	return s.File.Close()
}
