package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_WriteReadRoundTripAcrossWindowBoundary(t *testing.T) {
	t.Parallel()

	buf := New()
	w, err := NewStream(buf, WriteOnly, 4)
	require.NoError(t, err)
	require.NoError(t, w.Open())
	require.NoError(t, w.WriteString("hello world"))
	require.NoError(t, w.Close())

	assert.Equal(t, "hello world", buf.Text())

	r, err := NewStream(buf, ReadOnly, 4)
	require.NoError(t, err)
	require.NoError(t, r.Open())
	out := make([]byte, 11)
	n, err := r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "hello world", string(out))
	require.NoError(t, r.Close())
}

func TestStream_ReadLine(t *testing.T) {
	t.Parallel()

	buf := New()
	buf.AssignText("first\nsecond\nthird")

	r, err := NewStream(buf, ReadOnly, 4)
	require.NoError(t, err)
	require.NoError(t, r.Open())

	l1, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "first", l1)

	l2, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "second", l2)

	l3, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "third", l3)
}

func TestStream_SeekWithinWindowIsCheap(t *testing.T) {
	t.Parallel()

	buf := New()
	buf.AssignText("0123456789")

	r, err := NewStream(buf, ReadOnly, 8)
	require.NoError(t, err)
	require.NoError(t, r.Open())

	pos, err := r.Seek(3)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('3'), b)
}

func TestStream_ModeMismatchFailsWithInvalidArg(t *testing.T) {
	t.Parallel()

	buf := New()
	r, err := NewStream(buf, ReadOnly, 4)
	require.NoError(t, err)
	require.NoError(t, r.Open())

	_, err = r.Write([]byte("x"))
	assert.Error(t, err)
}

func TestStream_ClosedStreamFails(t *testing.T) {
	t.Parallel()

	buf := New()
	s, err := NewStream(buf, ReadWrite, 4)
	require.NoError(t, err)

	_, err = s.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestStream_EofSetCleanlyAtEnd(t *testing.T) {
	t.Parallel()

	buf := New()
	buf.AssignText("ab")

	r, err := NewStream(buf, ReadOnly, 4)
	require.NoError(t, err)
	require.NoError(t, r.Open())

	out := make([]byte, 2)
	n, err := r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, r.Eof())

	n, err = r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, r.Eof())
}
