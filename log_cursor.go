// Package walcursor exposes the history of a write-ahead log through a
// forward-only cursor. Each log record yields one row describing the whole
// record, followed by one row per operation recorded in it.
package walcursor

import (
	errs "errors"
	"iter"

	"github.com/go-stdlog/stdlog"

	"github.com/heyvito/walcursor/errors"
	"github.com/heyvito/walcursor/internal/metrics"
	"github.com/heyvito/walcursor/internal/scratch"
	"github.com/heyvito/walcursor/logrec"
)

// noStep marks a cleared step position: the current record, if any, has no
// operations left to visit.
const noStep = -1

// LogCursor walks log records through a Scanner. A LogCursor is not safe for
// concurrent use; independent cursors may read the same log concurrently.
type LogCursor struct {
	scanner Scanner
	log     stdlog.Logger

	curLSN  LSN
	nextLSN LSN

	record  *scratch.Buffer
	opKey   *scratch.Buffer
	opValue *scratch.Buffer

	step       int
	stepEnd    int
	stepCount  uint32
	txnID      uint64
	recordType logrec.RecordType

	key    Key
	value  Value
	closed bool
}

var _ Cursor[Key, Value] = (*LogCursor)(nil)

// Position reports where a LogCursor stands: the record it is on, the record
// Next reads once the current one is exhausted, and the amount of rows
// already returned from the current record.
type Position struct {
	Current LSN
	Next    LSN
	Step    uint32
}

// Open returns a LogCursor positioned before the first record read by
// scanner.
func Open(scanner Scanner, config Config) (*LogCursor, error) {
	if !config.LoggingEnabled {
		return nil, errors.ConfigurationError{Reason: "cannot open a log cursor without logging enabled"}
	}
	if scanner == nil {
		return nil, errors.ConfigurationError{Reason: "cannot open a log cursor without a log scanner"}
	}

	limit := config.GetMaxRecordSize()
	c := &LogCursor{
		scanner: scanner,
		log:     config.GetLogger(),
		record:  scratch.New(limit),
		opKey:   scratch.New(limit),
		opValue: scratch.New(limit),
	}
	c.clearPosition()
	c.log.Debug("Log cursor opened", "max_record_size", limit)
	return c, nil
}

func (c *LogCursor) Key() Key { return c.key }

// Value returns the current row's value. OpKey and OpValue reference buffers
// owned by the cursor, and are only valid until it is repositioned.
func (c *LogCursor) Value() Value { return c.value }

func (c *LogCursor) Position() Position {
	return Position{Current: c.curLSN, Next: c.nextLSN, Step: c.stepCount}
}

// Next moves to the following row, reading the next record from the log once
// the current one has no operations left. Returns errors.EndOfLogErr when the
// log has no further records; Next may succeed again once the log grows.
func (c *LogCursor) Next() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	defer metrics.Measure(metrics.CursorNextLatency)()
	metrics.Simple(metrics.CursorNextCalls, 0)

	if c.recordExhausted() {
		c.txnID = 0
		lsn, rec, err := c.scan(c.nextLSN)
		if err != nil {
			return c.fail(err)
		}
		if err = c.load(lsn, rec); err != nil {
			return c.fail(err)
		}
	}
	return c.fail(c.assemble())
}

// recordExhausted reports whether Next must read a new record. A zero byte
// at the step position is taken as the start of the record's padding, so an
// operation whose packed kind is zero also ends stepping through its record.
func (c *LogCursor) recordExhausted() bool {
	return c.step == noStep || c.step >= c.stepEnd || c.record.Bytes()[c.step] == 0
}

// Search positions the cursor on the record starting at the LSN formed by
// key. The key's slot is ignored: the cursor always lands on the record row
// (slot 0). Returns errors.NotFound when no record starts at that LSN. The
// position is left untouched when the log cannot be read at that LSN.
func (c *LogCursor) Search(key Key) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	defer metrics.Measure(metrics.CursorSearchLatency)()
	metrics.Simple(metrics.CursorSearchCalls, 0)

	want := key.LSN()
	lsn, rec, err := c.scan(want)
	switch {
	case errs.Is(err, errors.EndOfLogErr), err == nil && lsn != want:
		return errors.NotFound{File: want.File, Offset: want.Offset}
	case err != nil:
		c.report(err)
		return err
	}

	if err = c.load(lsn, rec); err != nil {
		return c.fail(err)
	}
	return c.fail(c.assemble())
}

// Compare orders two log cursors by LSN, then by the amount of rows read
// from their current records. The order matches the one Next visits rows in.
func (c *LogCursor) Compare(other Cursor[Key, Value]) (int, error) {
	o, ok := other.(*LogCursor)
	if !ok || o == nil {
		return 0, errors.ConfigurationError{Reason: "cursors must reference the same object"}
	}
	if cmp := c.curLSN.Compare(o.curLSN); cmp != 0 {
		return cmp, nil
	}
	switch {
	case c.stepCount < o.stepCount:
		return -1, nil
	case c.stepCount > o.stepCount:
		return 1, nil
	}
	return 0, nil
}

// Reset positions the cursor before the first record of the log.
func (c *LogCursor) Reset() error {
	c.clearPosition()
	return nil
}

func (c *LogCursor) clearPosition() {
	c.step, c.stepEnd = noStep, noStep
	c.stepCount = 0
	c.curLSN, c.nextLSN = logrec.ZeroLSN, logrec.ZeroLSN
	c.txnID = 0
	c.recordType = logrec.RecordInvalid
	c.key, c.value = Key{}, Value{}
}

// Close resets the cursor and releases its buffers. Close never fails, and
// may be called any number of times.
func (c *LogCursor) Close() error {
	if c == nil || c.closed {
		return nil
	}
	_ = c.Reset()
	c.record.Free()
	c.opKey.Free()
	c.opValue.Free()
	c.closed = true
	c.log.Debug("Log cursor closed")
	return nil
}

// Rows iterates over the remaining rows of the log. Iteration stops silently
// at the end of the log; any other error is yielded once, and ends it.
func (c *LogCursor) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			err := c.Next()
			if errs.Is(err, errors.EndOfLogErr) {
				return
			}
			if err != nil {
				yield(Row{}, err)
				return
			}
			if !yield(Row{Key: c.key, Value: c.value}, nil) {
				return
			}
		}
	}
}

// The log is append-only and can only be scanned forward.

func (c *LogCursor) Prev() error { return c.notSupported("prev") }

func (c *LogCursor) SearchNear(Key) (int, error) { return 0, c.notSupported("search_near") }

func (c *LogCursor) Insert(Key, Value) error { return c.notSupported("insert") }

func (c *LogCursor) Update(Key, Value) error { return c.notSupported("update") }

func (c *LogCursor) Remove(Key) error { return c.notSupported("remove") }

func (c *LogCursor) notSupported(op string) error {
	metrics.Simple(metrics.CursorUnsupportedCalls, 0)
	return errors.NotSupportedError{Op: op}
}

func (c *LogCursor) checkOpen() error {
	if c.closed {
		return errors.ConfigurationError{Reason: "log cursor is closed"}
	}
	return nil
}

// fail reports err and, for decoding failures, drops the current record so
// that the following Next moves past it.
func (c *LogCursor) fail(err error) error {
	if c.report(err) {
		c.step = noStep
		c.key, c.value = Key{}, Value{}
	}
	return err
}

// report accounts for err without touching the cursor position, returning
// whether err is a decoding failure.
func (c *LogCursor) report(err error) bool {
	var decodeErr errors.DecodeError
	switch {
	case err == nil:
	case errs.Is(err, errors.EndOfLogErr):
		metrics.Simple(metrics.CursorEndOfLog, 0)
	case errs.As(err, &decodeErr):
		metrics.Simple(metrics.CursorDecodeFailures, 0)
		c.log.Error(err, "Failed decoding log record")
		return true
	}
	return false
}

func (c *LogCursor) decodeError(position int, err error) error {
	return errors.DecodeError{
		File:     c.curLSN.File,
		Offset:   c.curLSN.Offset,
		Position: position,
		Err:      err,
	}
}
