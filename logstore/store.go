// Package logstore implements a segmented, append-only log on top of memory
// mapped files. A Store accepts records from a single writer and serves any
// number of concurrent scanners.
package logstore

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-stdlog/stdlog"

	"github.com/heyvito/walcursor/errors"
	"github.com/heyvito/walcursor/internal/lockfile"
	"github.com/heyvito/walcursor/internal/metrics"
	"github.com/heyvito/walcursor/logrec"
)

type Store struct {
	config Config
	log    stdlog.Logger
	lock   *lockfile.Lock

	mu       sync.RWMutex
	segments map[uint32]*segment
	first    uint32
	last     uint32
	closed   bool

	writeMu sync.Mutex

	measureUsageTimer *time.Ticker
	done              chan struct{}
}

// Open loads or creates the log stored in config.WorkDir.
func Open(config Config) (*Store, error) {
	if config.WorkDir == "" {
		return nil, fmt.Errorf("cannot initialize log store without WorkDir")
	}

	log := config.GetLogger()
	log.Info("Log store is initializing",
		"SegmentSize", humanize.IBytes(uint64(config.GetSegmentSize())),
		"Alignment", config.GetAlignment(),
		"WorkDir", config.WorkDir,
		"ReadOnly", config.ReadOnly,
	)

	stat, err := os.Stat(config.WorkDir)
	switch {
	case os.IsNotExist(err) && !config.ReadOnly:
		if err = os.MkdirAll(config.WorkDir, 0755); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !stat.IsDir():
		return nil, fmt.Errorf("%s: exists and is not a directory", config.WorkDir)
	}

	s := &Store{
		config:   config,
		log:      log,
		segments: map[uint32]*segment{},
		done:     make(chan struct{}),
	}

	if !config.ReadOnly {
		s.lock, err = lockfile.Acquire(filepath.Join(config.WorkDir, "lock"), log.Named("lock"))
		if err != nil {
			return nil, err
		}
	}

	if err = s.loadSegments(); err != nil {
		s.log.Error(err, "Log store startup failed")
		_ = s.Close()
		return nil, err
	}

	if s.last == 0 && !config.ReadOnly {
		if err = s.rotate(); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	s.measureUsageTimer = time.NewTicker(10 * time.Second)
	go s.measureUsage(s.measureUsageTimer)
	return s, nil
}

// loadSegments opens every segment file not loaded yet.
func (s *Store) loadSegments() error {
	entries, err := os.ReadDir(s.config.WorkDir)
	if err != nil {
		return err
	}

	var toLoad []uint32
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "wal") {
			continue
		}
		num, err := strconv.ParseUint(entry.Name()[3:], 10, 32)
		if err != nil || num == 0 {
			return fmt.Errorf("%s: invalid segment file name", entry.Name())
		}
		toLoad = append(toLoad, uint32(num))
	}
	slices.Sort(toLoad)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, num := range toLoad {
		if _, ok := s.segments[num]; ok {
			continue
		}
		seg, err := openSegment(num, s.config)
		if err != nil {
			s.log.Error(err, "Failed loading segment", "file", num)
			return err
		}
		s.log.Debug("Loaded segment", "file", num, "used", humanize.IBytes(uint64(seg.end())))
		s.segments[num] = seg
		if s.first == 0 || num < s.first {
			s.first = num
		}
		if num > s.last {
			s.last = num
		}
	}
	return nil
}

func (s *Store) rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	num := s.last + 1
	seg, err := openSegment(num, s.config)
	if err != nil {
		s.log.Error(err, "Failed creating segment", "file", num)
		return err
	}
	s.segments[num] = seg
	if s.first == 0 {
		s.first = num
	}
	s.last = num
	metrics.Simple(metrics.StoreSegmentRotations, 0)
	s.log.Debug("Created segment", "file", num, "size", humanize.IBytes(uint64(seg.Size)))
	return nil
}

func (s *Store) segment(num uint32) (*segment, uint32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, 0, false, errors.ConfigurationError{Reason: "log store is closed"}
	}
	seg, ok := s.segments[num]
	return seg, s.last, ok, nil
}

// Append frames body as a record and appends it to the log, returning the
// LSN it was written at.
func (s *Store) Append(body []byte) (logrec.LSN, error) {
	defer metrics.Measure(metrics.StoreAppendLatency)()
	metrics.Simple(metrics.StoreAppendCalls, 0)

	lsn, err := s.append(body)
	if err != nil {
		metrics.Simple(metrics.StoreAppendFailures, 0)
	}
	return lsn, err
}

func (s *Store) append(body []byte) (logrec.LSN, error) {
	if s.config.ReadOnly {
		return logrec.ZeroLSN, errors.ConfigurationError{Reason: "cannot append to a read-only log store"}
	}

	rec := logrec.BuildRecord(body, s.config.GetAlignment())
	if limit := s.config.GetSegmentSize(); int64(len(rec)) > limit {
		return logrec.ZeroLSN, errors.RecordTooLargeError{Size: int64(len(rec)), Limit: limit}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for {
		s.mu.RLock()
		closed := s.closed
		seg := s.segments[s.last]
		s.mu.RUnlock()
		if closed {
			return logrec.ZeroLSN, errors.ConfigurationError{Reason: "log store is closed"}
		}

		if offset, ok := seg.Append(rec); ok {
			return logrec.LSN{File: seg.FileNumber, Offset: uint64(offset)}, nil
		}
		if err := s.rotate(); err != nil {
			return logrec.ZeroLSN, err
		}
	}
}

// AppendRecord appends a non-commit record of a given type.
func (s *Store) AppendRecord(t logrec.RecordType, payload []byte) (logrec.LSN, error) {
	return s.Append(logrec.AppendRecordBody(nil, t, payload))
}

// AppendCommit appends a commit record for txnID holding ops in order.
func (s *Store) AppendCommit(txnID uint64, ops ...logrec.Operation) (logrec.LSN, error) {
	packed := make([][]byte, 0, len(ops))
	for _, op := range ops {
		packed = append(packed, logrec.AppendOp(nil, op))
	}
	return s.Append(logrec.AppendCommitBody(nil, txnID, packed...))
}

// ScanOne returns the first record starting at or after lsn, along with the
// LSN it actually starts at. The zero LSN reads the first record of the log,
// and an LSN past the last record of a segment continues into the following
// one. Returns
// errors.EndOfLogErr when no record follows lsn. The returned slice
// references the mapped segment and is only valid until the store is closed.
func (s *Store) ScanOne(lsn logrec.LSN) (logrec.LSN, []byte, error) {
	defer metrics.Measure(metrics.StoreScanLatency)()
	metrics.Simple(metrics.StoreScanCalls, 0)

	if lsn.IsZero() {
		s.mu.RLock()
		lsn = logrec.LSN{File: max(s.first, 1)}
		s.mu.RUnlock()
	}

	refreshed := false
	for {
		seg, last, ok, err := s.segment(lsn.File)
		if err != nil {
			return lsn, nil, err
		}
		if !ok {
			if lsn.File > last {
				if s.config.ReadOnly && !refreshed {
					refreshed = true
					if err := s.loadSegments(); err != nil {
						return lsn, nil, err
					}
					continue
				}
				return lsn, nil, errors.EndOfLogErr
			}
			return lsn, nil, errors.NotFound{File: lsn.File, Offset: lsn.Offset}
		}

		at, rec, err := seg.Seek(int64(lsn.Offset))
		switch {
		case stderrors.Is(err, errSegmentEnd) && lsn.File < last:
			lsn = logrec.LSN{File: lsn.File + 1}
			continue
		case stderrors.Is(err, errSegmentEnd) && s.config.ReadOnly && !refreshed:
			refreshed = true
			if err = s.loadSegments(); err != nil {
				return lsn, nil, err
			}
			continue
		case stderrors.Is(err, errSegmentEnd):
			return lsn, nil, errors.EndOfLogErr
		case err != nil:
			return lsn, nil, errors.DecodeError{File: lsn.File, Offset: uint64(at), Err: err}
		}
		return logrec.LSN{File: lsn.File, Offset: uint64(at)}, rec, nil
	}
}

// Close flushes all segments to disk, and releases the directory lock.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.measureUsageTimer != nil {
		s.measureUsageTimer.Stop()
	}
	close(s.done)

	var errs []error
	for num, seg := range s.segments {
		if err := seg.Close(); err != nil {
			s.log.Error(err, "Failed closing segment", "file", num)
			errs = append(errs, err)
		}
	}
	s.segments = map[uint32]*segment{}

	if s.lock != nil {
		if err := s.lock.Release(); err != nil {
			s.log.Error(err, "Failed releasing lock")
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (s *Store) measureUsage(ticker *time.Ticker) {
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.RLock()
		var total int64
		for _, seg := range s.segments {
			total += seg.end()
		}
		count := len(s.segments)
		s.mu.RUnlock()

		metrics.Simple(metrics.StoreTotalSize, float64(total))
		metrics.Simple(metrics.StoreSegmentsCount, float64(count))
	}
}
