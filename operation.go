package walcursor

import (
	"encoding/binary"

	"github.com/heyvito/walcursor/logrec"
)

// readOperation decodes the operation at the step position into the cursor's
// key and value buffers. Operations of kinds without a key and value are
// returned whole, as raw bytes, with no key and no table.
func (c *LogCursor) readOperation() (logrec.Operation, error) {
	op, err := logrec.UnpackOp(c.record.Bytes()[c.step:c.stepEnd])
	if err != nil {
		return op, c.decodeError(c.step, err)
	}

	switch op.Kind {
	case logrec.OpColumnPut, logrec.OpColumnRemove:
		var recno [8]byte
		binary.BigEndian.PutUint64(recno[:], op.Recno)
		err = c.opKey.Set(recno[:])
	case logrec.OpRowPut, logrec.OpRowRemove:
		err = c.opKey.Set(op.Key)
	default:
		op.TableID = 0
		c.opKey.Reset()
	}
	if err != nil {
		return op, err
	}
	return op, c.opValue.Set(op.Value)
}

// assemble produces the row for the current step and moves past it. Step 0
// is the record itself; every following step is one operation, and advances
// the step position by the operation's declared size regardless of how much
// of it was decoded.
func (c *LogCursor) assemble() error {
	slot := c.stepCount
	c.stepCount++

	v := Value{RecordType: c.recordType}
	if slot == 0 {
		v.OpKind = logrec.OpInvalid
		v.OpValue = c.record.Bytes()
	} else {
		op, err := c.readOperation()
		if err != nil {
			c.stepCount--
			return err
		}
		c.step += int(op.Size)
		v.TxnID = c.txnID
		v.OpKind = op.Kind
		v.TableID = op.TableID
		v.OpKey = c.opKey.Bytes()
		v.OpValue = c.opValue.Bytes()
	}

	c.key = Key{File: c.curLSN.File, Offset: c.curLSN.Offset, Slot: slot}
	c.value = v
	return nil
}
