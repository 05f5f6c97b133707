package walcursor

// Scanner reads raw records from an append-only log, one at a time.
type Scanner interface {
	// ScanOne returns the first record starting at or after lsn, with the
	// LSN it starts at. The zero LSN designates the start of the log, and
	// positions between files continue into the following file. Returns
	// errors.EndOfLogErr when no record follows lsn. The returned bytes need
	// only remain valid until the next call.
	ScanOne(lsn LSN) (LSN, []byte, error)
}
