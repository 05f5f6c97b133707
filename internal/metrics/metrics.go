package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

var metricsCh = make(chan *metricReading, 1024)
var readingsPool = sync.Pool{
	New: func() interface{} {
		return &metricReading{}
	},
}
var dispatching atomic.Bool

// Simple records a single reading. Readings are dropped until a delegate is
// dispatching, and when the dispatcher falls behind.
func Simple(kind MetricKind, value float64) {
	if !dispatching.Load() {
		return
	}
	r := readingsPool.Get().(*metricReading)
	r.Kind = kind
	r.Value = value
	select {
	case metricsCh <- r:
	default:
		readingsPool.Put(r)
	}
}

// Measure returns a function reporting the microseconds elapsed since
// Measure was called.
func Measure(kind MetricKind) func() {
	start := time.Now()
	return func() {
		Simple(kind, float64(time.Since(start).Microseconds()))
	}
}

type metricReading struct {
	Kind  MetricKind
	Value float64
}

type delegate interface {
	Dispatch(kind MetricKind, value float64)
}

// Dispatch forwards readings to del. It never returns, and is expected to
// run on its own goroutine.
func Dispatch(del delegate) {
	dispatching.Store(true)
	for msg := range metricsCh {
		del.Dispatch(msg.Kind, msg.Value)
		readingsPool.Put(msg)
	}
}
