// Package buffer implements the byte buffer (C1) and buffered byte
// stream (C2) file-content primitives.
package buffer

import (
	"encoding/binary"

	"vfsim/internal/vfserr"
)

// Buffer is a random-access mutable byte array, grown on write and
// truncated/replaced wholesale. It backs file content.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer.
func New() *Buffer { return &Buffer{} }

// Size returns the current length of the buffer.
func (b *Buffer) Size() int { return len(b.data) }

// Bytes returns the underlying bytes. Callers must not retain the
// returned slice across a mutating call.
func (b *Buffer) Bytes() []byte { return b.data }

// Read returns up to min(n, size-off) bytes starting at off.
func (b *Buffer) Read(off, n int) ([]byte, error) {
	if off > len(b.data) {
		return nil, vfserr.New("Buffer.Read", "", vfserr.OutOfRange)
	}
	end := off + n
	if end > len(b.data) {
		end = len(b.data)
	}
	out := make([]byte, end-off)
	copy(out, b.data[off:end])
	return out, nil
}

// Write overwrites [off, off+len(p)), growing the buffer if needed.
func (b *Buffer) Write(off int, p []byte) error {
	if off > len(b.data) {
		return vfserr.New("Buffer.Write", "", vfserr.OutOfRange)
	}
	need := off + len(p)
	if need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[off:need], p)
	return nil
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// Truncate resizes the buffer to newSize, zero-filling on growth.
func (b *Buffer) Truncate(newSize int) {
	if newSize <= len(b.data) {
		b.data = b.data[:newSize]
		return
	}
	grown := make([]byte, newSize)
	copy(grown, b.data)
	b.data = grown
}

// ReplaceAll replaces the entire contents of the buffer with p.
func (b *Buffer) ReplaceAll(p []byte) {
	b.data = append([]byte(nil), p...)
}

// AssignText replaces the contents with the bytes of s.
func (b *Buffer) AssignText(s string) { b.ReplaceAll([]byte(s)) }

// Text returns the buffer's contents decoded as text.
func (b *Buffer) Text() string { return string(b.data) }

// PutUint64At writes v as 8 little-endian bytes at off, growing the
// buffer if needed. Mirrors the original FileContent::writeValue<T>
// helper specialized to the one fixed-width field C3's container
// header actually needs.
func (b *Buffer) PutUint64At(off int, v uint64) error {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return b.Write(off, tmp[:])
}

// GetUint64At reads 8 little-endian bytes at off.
func (b *Buffer) GetUint64At(off int) (uint64, error) {
	p, err := b.Read(off, 8)
	if err != nil {
		return 0, err
	}
	if len(p) != 8 {
		return 0, vfserr.New("Buffer.GetUint64At", "", vfserr.OutOfRange)
	}
	return binary.LittleEndian.Uint64(p), nil
}
