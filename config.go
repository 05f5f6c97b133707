package walcursor

import "github.com/go-stdlog/stdlog"

type Config struct {
	// LoggingEnabled reflects whether the connection the cursor belongs to
	// has logging enabled. Log cursors cannot be opened otherwise.
	LoggingEnabled bool

	// MaxRecordSize bounds the size of the record, key and value copies the
	// cursor retains. Zero means no limit.
	MaxRecordSize int

	// Logger allows a given stdlog.Logger instance to be set as the system
	// logger. If unset, no logs will be generated.
	Logger stdlog.Logger
}

func (c Config) GetMaxRecordSize() int {
	return max(c.MaxRecordSize, 0)
}

func (c Config) GetLogger() stdlog.Logger {
	if c.Logger != nil {
		return c.Logger.Named("logcursor")
	}
	return stdlog.Discard
}
