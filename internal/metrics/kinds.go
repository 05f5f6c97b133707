package metrics

type MetricKind uint8

const (
	CursorNextCalls MetricKind = iota
	CursorNextLatency
	CursorSearchCalls
	CursorSearchLatency
	CursorFetchLatency
	CursorDecodeFailures
	CursorEndOfLog
	CursorUnsupportedCalls

	StoreAppendCalls
	StoreAppendLatency
	StoreAppendFailures
	StoreScanCalls
	StoreScanLatency
	StoreSegmentRotations
	StoreTotalSize
	StoreSegmentsCount
)

// IsCursor reports whether k is emitted by log cursors, as opposed to the
// log store.
func (k MetricKind) IsCursor() bool { return k <= CursorUnsupportedCalls }
