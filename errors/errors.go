package errors

import "fmt"

// EndOfLogErr is returned by Next when no record follows the current
// position. It is not fatal: the log may grow, after which Next succeeds
// again.
var EndOfLogErr = fmt.Errorf("end of log")

// ConfigurationError indicates that a cursor or store was opened or used in a
// way its configuration does not allow.
type ConfigurationError struct {
	Reason string
}

func (c ConfigurationError) Error() string {
	return c.Reason
}

// NotSupportedError is returned by cursor operations that are exposed by the
// shared Cursor interface but are not meaningful for a given cursor kind.
// Returning it never mutates cursor state.
type NotSupportedError struct {
	Op string
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("%s: operation not supported", n.Op)
}

// DecodeError indicates that a log record could not be unpacked. File and
// Offset identify the record, Position is the byte position within the record
// where decoding failed.
type DecodeError struct {
	File     uint32
	Offset   uint64
	Position int
	Err      error
}

func (d DecodeError) Error() string {
	return fmt.Sprintf("malformed log record at %d/%d (byte %d): %s", d.File, d.Offset, d.Position, d.Err)
}

func (d DecodeError) Unwrap() error { return d.Err }

// NotFound indicates that no record starts at the requested position.
type NotFound struct {
	File   uint32
	Offset uint64
}

func (n NotFound) Error() string {
	return fmt.Sprintf("no log record at %d/%d", n.File, n.Offset)
}

// AllocationError indicates that a scratch buffer could not grow to hold the
// requested amount of bytes.
type AllocationError struct {
	Requested int
	Limit     int
}

func (a AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate %d bytes: limit is %d", a.Requested, a.Limit)
}

// CannotAcquireLogLockError indicates that the log directory lock could not be
// obtained since it is in use by another process. The process holding the
// lock is present in the PID field of this error.
type CannotAcquireLogLockError struct {
	PID int
}

func (c CannotAcquireLogLockError) Error() string {
	return fmt.Sprintf("cannot acquire log lock, as it is being held by process %d", c.PID)
}

// RecordTooLargeError indicates that a record cannot fit into a single log
// segment.
type RecordTooLargeError struct {
	Size  int64
	Limit int64
}

func (r RecordTooLargeError) Error() string {
	return fmt.Sprintf("record of %d bytes exceeds segment capacity of %d bytes", r.Size, r.Limit)
}
