package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	kinds []MetricKind
}

func (r *recorder) Dispatch(kind MetricKind, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recorder) seen(kind MetricKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func TestDispatch(t *testing.T) {
	rec := &recorder{}
	go Dispatch(rec)
	assert.Eventually(t, dispatching.Load, time.Second, time.Millisecond)

	Simple(CursorNextCalls, 0)
	Measure(CursorNextLatency)()

	assert.Eventually(t, func() bool {
		return rec.seen(CursorNextCalls) && rec.seen(CursorNextLatency)
	}, time.Second, time.Millisecond)
}

func TestMetricKindIsCursor(t *testing.T) {
	assert.True(t, CursorNextCalls.IsCursor())
	assert.True(t, CursorUnsupportedCalls.IsCursor())
	assert.False(t, StoreAppendCalls.IsCursor())
	assert.False(t, StoreSegmentsCount.IsCursor())
}
