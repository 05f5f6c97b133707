package logrec

import (
	"github.com/pkg/errors"
)

// Operation is the decoded view of one logical operation within a commit
// record. Key and Value reference the record bytes they were decoded from.
type Operation struct {
	Kind    OpKind
	Size    uint32
	TableID uint32
	Recno   uint64
	Key     []byte
	Value   []byte
}

// UnpackOpHeader reads the kind and declared size of the operation at the
// start of b. The declared size covers the whole operation, header included,
// and must lie within b.
func UnpackOpHeader(b []byte) (OpKind, uint32, int, error) {
	kind, n, err := UnpackUint32(b)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "operation kind")
	}
	size, m, err := UnpackUint32(b[n:])
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "operation size")
	}
	hdr := n + m
	switch {
	case int(size) < hdr:
		return 0, 0, 0, errors.Errorf("operation size %d is smaller than its header", size)
	case uint64(size) > uint64(len(b)):
		return 0, 0, 0, errors.Wrapf(ErrOpBounds, "operation of %d bytes, %d available", size, len(b))
	}
	return OpKind(kind), size, hdr, nil
}

// UnpackOp decodes the operation at the start of b. Only the declared size
// of the operation is examined; the remainder of b is ignored. Kinds this
// package does not decode yield an Operation whose Value holds the raw
// bytes of the whole operation.
func UnpackOp(b []byte) (Operation, error) {
	kind, size, hdr, err := UnpackOpHeader(b)
	if err != nil {
		return Operation{}, err
	}
	op := Operation{Kind: kind, Size: size}
	raw := b[:size]
	p := raw[hdr:]

	switch kind {
	case OpColumnPut, OpColumnRemove, OpRowPut, OpRowRemove:
	default:
		op.Value = raw
		return op, nil
	}

	var n int
	if op.TableID, n, err = UnpackUint32(p); err != nil {
		return op, errors.Wrapf(err, "%s table id", kind)
	}
	p = p[n:]

	switch kind {
	case OpColumnPut, OpColumnRemove:
		if op.Recno, n, err = UnpackUint(p); err != nil {
			return op, errors.Wrapf(err, "%s record number", kind)
		}
		if kind == OpColumnPut {
			op.Value = p[n:]
		}
	case OpRowPut:
		if op.Key, n, err = unpackItem(p); err != nil {
			return op, errors.Wrapf(err, "%s key", kind)
		}
		op.Value = p[n:]
	case OpRowRemove:
		op.Key = p
	}
	return op, nil
}

// AppendOp appends the packed form of a ColumnPut, ColumnRemove, RowPut or
// RowRemove operation to dst. Size is computed, and the Size field of op is
// ignored.
func AppendOp(dst []byte, op Operation) []byte {
	payload := AppendUint(nil, uint64(op.TableID))
	switch op.Kind {
	case OpColumnPut:
		payload = AppendUint(payload, op.Recno)
		payload = append(payload, op.Value...)
	case OpColumnRemove:
		payload = AppendUint(payload, op.Recno)
	case OpRowPut:
		payload = appendItem(payload, op.Key)
		payload = append(payload, op.Value...)
	case OpRowRemove:
		payload = append(payload, op.Key...)
	default:
		panic(errors.Errorf("logrec: AppendOp cannot pack %s", op.Kind))
	}
	return AppendRawOp(dst, op.Kind, payload)
}

// AppendColumnTruncate appends a column-store truncate operation.
func AppendColumnTruncate(dst []byte, tableID uint32, start, stop uint64) []byte {
	payload := AppendUint(nil, uint64(tableID))
	payload = AppendUint(payload, start)
	payload = AppendUint(payload, stop)
	return AppendRawOp(dst, OpColumnTruncate, payload)
}

// AppendRowTruncate appends a row-store truncate operation.
func AppendRowTruncate(dst []byte, tableID uint32, start, stop []byte, mode uint32) []byte {
	payload := AppendUint(nil, uint64(tableID))
	payload = appendItem(payload, start)
	payload = appendItem(payload, stop)
	payload = AppendUint(payload, uint64(mode))
	return AppendRawOp(dst, OpRowTruncate, payload)
}

// AppendRawOp frames an arbitrary payload as an operation of a given kind.
func AppendRawOp(dst []byte, kind OpKind, payload []byte) []byte {
	k := PackedLen(uint64(kind))
	n := 1
	for PackedLen(uint64(k+n+len(payload))) != n {
		n++
	}
	dst = AppendUint(dst, uint64(kind))
	dst = AppendUint(dst, uint64(k+n+len(payload)))
	return append(dst, payload...)
}
