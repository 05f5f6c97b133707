package logrec

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrShortBuffer = errors.New("unexpected end of data")
	ErrOverflow    = errors.New("packed integer overflows")
	ErrOpBounds    = errors.New("operation runs past the end of the record")
)

// UnpackUint reads a packed unsigned integer from the start of b, returning
// its value and the amount of bytes it occupies.
func UnpackUint(b []byte) (uint64, int, error) {
	v, n := binary.Uvarint(b)
	switch {
	case n == 0:
		return 0, 0, ErrShortBuffer
	case n < 0:
		return 0, 0, ErrOverflow
	}
	return v, n, nil
}

// UnpackUint32 behaves like UnpackUint, but fails for values that do not fit
// 32 bits.
func UnpackUint32(b []byte) (uint32, int, error) {
	v, n, err := UnpackUint(b)
	if err != nil {
		return 0, 0, err
	}
	if v > math.MaxUint32 {
		return 0, 0, errors.Wrapf(ErrOverflow, "value %d does not fit 32 bits", v)
	}
	return uint32(v), n, nil
}

// AppendUint appends the packed form of v to dst.
func AppendUint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// PackedLen returns how many bytes the packed form of v takes.
func PackedLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// unpackItem reads a length-prefixed byte string.
func unpackItem(b []byte) ([]byte, int, error) {
	l, n, err := UnpackUint(b)
	if err != nil {
		return nil, 0, err
	}
	if l > uint64(len(b)-n) {
		return nil, 0, errors.Wrapf(ErrShortBuffer, "item of %d bytes", l)
	}
	end := n + int(l)
	return b[n:end], end, nil
}

func appendItem(dst, item []byte) []byte {
	dst = AppendUint(dst, uint64(len(item)))
	return append(dst, item...)
}
