// Package scratch provides the reusable byte buffers a cursor owns for the
// record copy and the key and value it exposes.
package scratch

import "github.com/heyvito/walcursor/errors"

// Buffer is a growable byte buffer. Its contents are replaced on every Set,
// and its backing array is reused whenever it is large enough.
type Buffer struct {
	data  []byte
	limit int
}

// New returns an empty Buffer that refuses to grow past limit bytes. A limit
// of zero means no limit.
func New(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Grow ensures the buffer can hold n bytes without reallocating.
func (b *Buffer) Grow(n int) error {
	if b.limit > 0 && n > b.limit {
		return errors.AllocationError{Requested: n, Limit: b.limit}
	}
	if cap(b.data) < n {
		b.data = make([]byte, 0, n)
	}
	return nil
}

// Set replaces the contents of the buffer with a copy of p.
func (b *Buffer) Set(p []byte) error {
	if err := b.Grow(len(p)); err != nil {
		return err
	}
	b.data = append(b.data[:0], p...)
	return nil
}

// Bytes returns the current contents. The returned slice is only valid until
// the next call to Set, Reset or Free.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Len() int { return len(b.data) }

// Reset empties the buffer, retaining its backing array.
func (b *Buffer) Reset() { b.data = b.data[:0] }

// Free empties the buffer and releases its backing array. Free is safe to
// call on a nil Buffer.
func (b *Buffer) Free() {
	if b == nil {
		return
	}
	b.data = nil
}
