package metrics

import (
	"time"

	"github.com/uber-go/tally/v4"
)

// NewTallyDelegates returns Delegates reporting every reading to scope.
// Cursor readings live under the "cursor" sub-scope, store readings under
// "store".
func NewTallyDelegates(scope tally.Scope) *Delegates {
	return &Delegates{
		Cursor: tallyCursor{scope: scope.SubScope("cursor")},
		Store:  tallyStore{scope: scope.SubScope("store")},
	}
}

func micros(v float64) time.Duration { return time.Duration(v) * time.Microsecond }

type tallyCursor struct{ scope tally.Scope }

func (t tallyCursor) NextCalls(float64) { t.scope.Counter("next_calls").Inc(1) }
func (t tallyCursor) NextLatency(v float64) { t.scope.Timer("next_latency").Record(micros(v)) }
func (t tallyCursor) SearchCalls(float64) { t.scope.Counter("search_calls").Inc(1) }
func (t tallyCursor) SearchLatency(v float64) {
	t.scope.Timer("search_latency").Record(micros(v))
}
func (t tallyCursor) FetchLatency(v float64) { t.scope.Timer("fetch_latency").Record(micros(v)) }
func (t tallyCursor) DecodeFailures(float64) { t.scope.Counter("decode_failures").Inc(1) }
func (t tallyCursor) EndOfLog(float64) { t.scope.Counter("end_of_log").Inc(1) }
func (t tallyCursor) UnsupportedCalls(float64) { t.scope.Counter("unsupported_calls").Inc(1) }

type tallyStore struct{ scope tally.Scope }

func (t tallyStore) AppendCalls(float64) { t.scope.Counter("append_calls").Inc(1) }
func (t tallyStore) AppendLatency(v float64) { t.scope.Timer("append_latency").Record(micros(v)) }
func (t tallyStore) AppendFailures(float64) { t.scope.Counter("append_failures").Inc(1) }
func (t tallyStore) ScanCalls(float64) { t.scope.Counter("scan_calls").Inc(1) }
func (t tallyStore) ScanLatency(v float64) { t.scope.Timer("scan_latency").Record(micros(v)) }
func (t tallyStore) SegmentRotations(float64) { t.scope.Counter("segment_rotations").Inc(1) }
func (t tallyStore) TotalSize(v float64) { t.scope.Gauge("total_size").Update(v) }
func (t tallyStore) SegmentsCount(v float64) { t.scope.Gauge("segments_count").Update(v) }
