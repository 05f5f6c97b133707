package walcursor

import (
	"github.com/heyvito/walcursor/internal/metrics"
	"github.com/heyvito/walcursor/logrec"
)

func (c *LogCursor) scan(lsn LSN) (LSN, []byte, error) {
	defer metrics.Measure(metrics.CursorFetchLatency)()
	return c.scanner.ScanOne(lsn)
}

// load takes a copy of the record starting at lsn and prepares to step
// through it. Commit records are positioned right after their transaction
// id; other records have no operations to step through.
func (c *LogCursor) load(lsn LSN, rec []byte) error {
	if err := c.record.Set(rec); err != nil {
		return err
	}
	c.curLSN = lsn
	c.nextLSN = lsn.Advance(len(rec))
	c.stepCount = 0
	c.step, c.stepEnd = noStep, len(rec)
	c.txnID = 0
	c.recordType = logrec.RecordInvalid

	buf := c.record.Bytes()
	t, pos, err := logrec.UnpackRecordType(buf)
	if err != nil {
		return c.decodeError(logrec.HeaderSize, err)
	}
	c.recordType = t
	if t != logrec.RecordCommit {
		return nil
	}

	txnID, n, err := logrec.UnpackUint(buf[pos:])
	if err != nil {
		return c.decodeError(pos, err)
	}
	c.txnID = txnID
	c.step = pos + n
	return nil
}
