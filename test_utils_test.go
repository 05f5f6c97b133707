package walcursor

import (
	"bytes"
	"testing"

	"github.com/go-stdlog/stdlog"
	"github.com/stretchr/testify/require"

	"github.com/heyvito/walcursor/errors"
	"github.com/heyvito/walcursor/logrec"
	"github.com/heyvito/walcursor/logstore"
)

type scannedRecord struct {
	lsn  LSN
	data []byte
}

// sliceScanner serves records held in memory, laid back to back in file 1.
// It counts calls to ScanOne so tests can check whether the log was read.
type sliceScanner struct {
	records []scannedRecord
	end     LSN
	calls   int
}

func newSliceScanner(records ...[]byte) *sliceScanner {
	s := &sliceScanner{end: LSN{File: 1}}
	for _, r := range records {
		s.add(r)
	}
	return s
}

func (s *sliceScanner) add(rec []byte) LSN {
	lsn := s.end
	s.records = append(s.records, scannedRecord{lsn: lsn, data: rec})
	s.end = lsn.Advance(len(rec))
	return lsn
}

// ScanOne returns the first record starting at or after lsn.
func (s *sliceScanner) ScanOne(lsn LSN) (LSN, []byte, error) {
	s.calls++
	for _, r := range s.records {
		if r.lsn.Compare(lsn) >= 0 {
			return r.lsn, r.data, nil
		}
	}
	return lsn, nil, errors.EndOfLogErr
}

func commitRecord(txnID uint64, ops ...logrec.Operation) []byte {
	packed := make([][]byte, 0, len(ops))
	for _, op := range ops {
		packed = append(packed, logrec.AppendOp(nil, op))
	}
	return logrec.BuildRecord(logrec.AppendCommitBody(nil, txnID, packed...), 0)
}

func rawCommitRecord(txnID uint64, ops ...[]byte) []byte {
	return logrec.BuildRecord(logrec.AppendCommitBody(nil, txnID, ops...), 0)
}

func checkpointRecord() []byte {
	return logrec.BuildRecord(logrec.AppendRecordBody(nil, logrec.RecordCheckpoint, nil), 0)
}

func rowPut(table uint32, key, value string) logrec.Operation {
	return logrec.Operation{Kind: logrec.OpRowPut, TableID: table, Key: []byte(key), Value: []byte(value)}
}

func rowRemove(table uint32, key string) logrec.Operation {
	return logrec.Operation{Kind: logrec.OpRowRemove, TableID: table, Key: []byte(key)}
}

func testConfig() Config {
	return Config{LoggingEnabled: true, Logger: stdlog.Discard}
}

func openTestCursor(t *testing.T, scanner Scanner) *LogCursor {
	t.Helper()
	c, err := Open(scanner, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// cloneRow copies the buffers a row references, since the cursor reuses
// them once repositioned.
func cloneRow(k Key, v Value) Row {
	v.OpKey = bytes.Clone(v.OpKey)
	v.OpValue = bytes.Clone(v.OpValue)
	return Row{Key: k, Value: v}
}

func collectRows(t *testing.T, c *LogCursor) []Row {
	t.Helper()
	var rows []Row
	for {
		err := c.Next()
		if err != nil {
			require.ErrorIs(t, err, errors.EndOfLogErr)
			return rows
		}
		rows = append(rows, cloneRow(c.Key(), c.Value()))
	}
}

// switchScanner fails every scan with err while it is set.
type switchScanner struct {
	Scanner
	err error
}

func (s *switchScanner) ScanOne(lsn LSN) (LSN, []byte, error) {
	if s.err != nil {
		return lsn, nil, s.err
	}
	return s.Scanner.ScanOne(lsn)
}

func openTestStore(t *testing.T, config logstore.Config) *logstore.Store {
	t.Helper()
	s, err := logstore.Open(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
