package vfserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WrapsSentinel(t *testing.T) {
	t.Parallel()

	err := New("mkdir", "/a", PathError)

	assert.True(t, errors.Is(err, ErrPath))
	assert.True(t, Is(err, PathError))
	assert.False(t, Is(err, InvalidArg))
}

func TestWrap_PreservesUnderlying(t *testing.T) {
	t.Parallel()

	underlying := errors.New("boom")
	err := Wrap("decompress", "/f.bin", Corrupted, underlying)

	assert.True(t, errors.Is(err, underlying))
	assert.True(t, Is(err, Corrupted))
}

func TestError_MessageIncludesPath(t *testing.T) {
	t.Parallel()

	err := New("rm", "/a/b", RootError)
	assert.Contains(t, err.Error(), "/a/b")
	assert.Contains(t, err.Error(), "RootError")
}
