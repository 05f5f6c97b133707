package metrics

import (
	"sync/atomic"

	"github.com/heyvito/walcursor/internal/metrics"
)

var hasDelegate atomic.Bool

// InstallDelegate starts forwarding instrumentation readings to del. Only the
// first installed delegate is honored.
func InstallDelegate(del *Delegates) {
	if hasDelegate.Swap(true) {
		return
	}
	go metrics.Dispatch(del)
}

// Delegates routes readings to the delegate of the component emitting them.
// Either delegate may be left nil, in which case its readings are dropped.
type Delegates struct {
	Cursor CursorInstrumentationDelegate
	Store  StoreInstrumentationDelegate
}

func (d *Delegates) Dispatch(kind metrics.MetricKind, value float64) {
	if kind.IsCursor() {
		if d.Cursor != nil {
			d.dispatchCursor(kind, value)
		}
	} else if d.Store != nil {
		d.dispatchStore(kind, value)
	}
}

func (d *Delegates) dispatchCursor(kind metrics.MetricKind, value float64) {
	switch kind {
	case metrics.CursorNextCalls:
		d.Cursor.NextCalls(value)
	case metrics.CursorNextLatency:
		d.Cursor.NextLatency(value)
	case metrics.CursorSearchCalls:
		d.Cursor.SearchCalls(value)
	case metrics.CursorSearchLatency:
		d.Cursor.SearchLatency(value)
	case metrics.CursorFetchLatency:
		d.Cursor.FetchLatency(value)
	case metrics.CursorDecodeFailures:
		d.Cursor.DecodeFailures(value)
	case metrics.CursorEndOfLog:
		d.Cursor.EndOfLog(value)
	case metrics.CursorUnsupportedCalls:
		d.Cursor.UnsupportedCalls(value)
	}
}

func (d *Delegates) dispatchStore(kind metrics.MetricKind, value float64) {
	switch kind {
	case metrics.StoreAppendCalls:
		d.Store.AppendCalls(value)
	case metrics.StoreAppendLatency:
		d.Store.AppendLatency(value)
	case metrics.StoreAppendFailures:
		d.Store.AppendFailures(value)
	case metrics.StoreScanCalls:
		d.Store.ScanCalls(value)
	case metrics.StoreScanLatency:
		d.Store.ScanLatency(value)
	case metrics.StoreSegmentRotations:
		d.Store.SegmentRotations(value)
	case metrics.StoreTotalSize:
		d.Store.TotalSize(value)
	case metrics.StoreSegmentsCount:
		d.Store.SegmentsCount(value)
	}
}

// CursorInstrumentationDelegate receives log cursor readings. Latencies are
// expressed in microseconds.
type CursorInstrumentationDelegate interface {
	NextCalls(float64)
	NextLatency(float64)
	SearchCalls(float64)
	SearchLatency(float64)
	FetchLatency(float64)
	DecodeFailures(float64)
	EndOfLog(float64)
	UnsupportedCalls(float64)
}

// StoreInstrumentationDelegate receives log store readings. Latencies are
// expressed in microseconds, sizes in bytes.
type StoreInstrumentationDelegate interface {
	AppendCalls(float64)
	AppendLatency(float64)
	AppendFailures(float64)
	ScanCalls(float64)
	ScanLatency(float64)
	SegmentRotations(float64)
	TotalSize(float64)
	SegmentsCount(float64)
}
