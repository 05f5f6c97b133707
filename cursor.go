package walcursor

import "github.com/heyvito/walcursor/logrec"

// Cursor is the capability set shared by every cursor kind. Kinds that
// cannot implement an operation return errors.NotSupportedError from it
// without changing their position.
type Cursor[K, V any] interface {
	// Key returns the key of the row the cursor is positioned on.
	Key() K

	// Value returns the value of the row the cursor is positioned on.
	Value() V

	// Next moves the cursor to the following row.
	Next() error

	// Prev moves the cursor to the preceding row.
	Prev() error

	// Search positions the cursor on the row identified by key.
	Search(key K) error

	// SearchNear positions the cursor on the row identified by key, or on
	// a neighbour, reporting which through the returned comparison.
	SearchNear(key K) (int, error)

	// Reset clears the cursor position, so that the following Next starts
	// over from the first row.
	Reset() error

	// Insert adds a row holding value under key.
	Insert(key K, value V) error

	// Update replaces the value of the row identified by key.
	Update(key K, value V) error

	// Remove deletes the row identified by key.
	Remove(key K) error

	// Compare orders the positions of two cursors of the same kind.
	// Returns -1, 0 or 1.
	Compare(other Cursor[K, V]) (int, error)

	// Close releases resources held by the cursor. Closing a closed cursor
	// is a no-op.
	Close() error
}

// LSN identifies a byte position in the log: a file number and an offset.
type LSN = logrec.LSN

// Key identifies a log cursor row: the LSN of the record holding it, and its
// slot within that record. Slot 0 is the record itself, slot N the record's
// Nth operation.
type Key struct {
	File   uint32
	Offset uint64
	Slot   uint32
}

// LSN returns the LSN of the record the key points into.
func (k Key) LSN() LSN { return LSN{File: k.File, Offset: k.Offset} }

// Value describes a log cursor row. For slot 0, OpKind is OpInvalid and
// OpValue holds the whole raw record. For operation rows, OpKey and OpValue
// hold the operation's key and value; column store record numbers are keyed
// by their 8-byte big-endian encoding.
type Value struct {
	TxnID      uint64
	RecordType logrec.RecordType
	OpKind     logrec.OpKind
	TableID    uint32
	OpKey      []byte
	OpValue    []byte
}

// Row pairs a Key with its Value.
type Row struct {
	Key   Key
	Value Value
}
