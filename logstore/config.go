package logstore

import "github.com/go-stdlog/stdlog"

const (
	defaultSegmentSize = 64 * 1024 * 1024 // 64MiB
	defaultAlignment   = 128
)

type Config struct {
	// WorkDir represents the absolute path to the directory holding the log
	// segments. The directory is created in case it does not exist.
	WorkDir string

	// SegmentSize defines the maximum amount of record bytes a segment
	// holds. Records never span segments, so this is also the largest record
	// the store accepts. This value does not affect segments already present
	// in the disk, if any.
	SegmentSize int64

	// Alignment is the multiple every record is zero-padded to. Defaults to
	// 128 bytes; a negative value disables padding.
	Alignment int

	// ReadOnly opens an existing log without taking the directory lock.
	// Append is refused, and scans pick up records written by the process
	// holding the lock.
	ReadOnly bool

	// Logger allows a given stdlog.Logger instance to be set as the system
	// logger. If unset, no logs will be generated.
	Logger stdlog.Logger
}

func (c Config) GetSegmentSize() int64 {
	if c.SegmentSize <= 0 {
		return defaultSegmentSize
	}
	return c.SegmentSize
}

func (c Config) GetAlignment() int {
	switch {
	case c.Alignment < 0:
		return 0
	case c.Alignment == 0:
		return defaultAlignment
	}
	return c.Alignment
}

func (c Config) GetLogger() stdlog.Logger {
	if c.Logger != nil {
		return c.Logger.Named("logstore")
	}
	return stdlog.Discard
}
