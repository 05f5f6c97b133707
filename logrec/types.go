package logrec

import "strconv"

// RecordType identifies the kind of a log record. Only Commit records carry
// an operation stream.
type RecordType uint32

const (
	RecordInvalid RecordType = iota
	RecordCheckpoint
	RecordCommit
	RecordFileSync
	RecordMessage
)

var recordTypeNames = [...]string{
	RecordInvalid:    "invalid",
	RecordCheckpoint: "checkpoint",
	RecordCommit:     "commit",
	RecordFileSync:   "file_sync",
	RecordMessage:    "message",
}

// Known reports whether t is one of the record types defined by this
// package. Unknown codes are preserved as-is so newer logs remain readable.
func (t RecordType) Known() bool { return int(t) < len(recordTypeNames) }

func (t RecordType) String() string {
	if t.Known() {
		return recordTypeNames[t]
	}
	return "record(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// OpKind identifies a logical operation inside a commit record.
type OpKind uint32

const (
	OpInvalid OpKind = iota
	OpColumnPut
	OpColumnRemove
	OpColumnTruncate
	OpRowPut
	OpRowRemove
	OpRowTruncate
)

var opKindNames = [...]string{
	OpInvalid:        "invalid",
	OpColumnPut:      "col_put",
	OpColumnRemove:   "col_remove",
	OpColumnTruncate: "col_truncate",
	OpRowPut:         "row_put",
	OpRowRemove:      "row_remove",
	OpRowTruncate:    "row_truncate",
}

func (k OpKind) Known() bool { return int(k) < len(opKindNames) }

func (k OpKind) String() string {
	if k.Known() {
		return opKindNames[k]
	}
	return "op(" + strconv.FormatUint(uint64(k), 10) + ")"
}
