package scratch

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyvito/walcursor/errors"
)

func TestBufferSet(t *testing.T) {
	b := New(0)
	src := []byte("hello")
	require.NoError(t, b.Set(src))
	src[0] = 'j'
	assert.Equal(t, []byte("hello"), b.Bytes())
	assert.Equal(t, 5, b.Len())

	require.NoError(t, b.Set([]byte("hi")))
	assert.Equal(t, []byte("hi"), b.Bytes())

	b.Reset()
	assert.Zero(t, b.Len())
	b.Free()
	assert.Nil(t, b.Bytes())
}

func TestBufferLimit(t *testing.T) {
	b := New(4)
	require.NoError(t, b.Set([]byte("four")))

	err := b.Set([]byte("five!"))
	var allocErr errors.AllocationError
	require.True(t, stderrors.As(err, &allocErr))
	assert.Equal(t, 5, allocErr.Requested)
	assert.Equal(t, 4, allocErr.Limit)
	assert.Equal(t, []byte("four"), b.Bytes(), "failed Set must not clobber contents")
}

func TestBufferFreeNil(t *testing.T) {
	var b *Buffer
	assert.NotPanics(t, b.Free)
}
