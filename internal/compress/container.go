// Package compress implements the self-describing compression
// container (C3): a small header wrapping a variable-width LZW
// payload under one of two dictionary-extension policies.
package compress

import (
	"encoding/binary"

	"vfsim/internal/vfserr"
)

// Algo identifies a compression algorithm by its on-wire tag.
type Algo byte

const (
	// AlgoLZWVarAll extends the dictionary with every new phrase
	// until the dictionary limit is reached.
	AlgoLZWVarAll Algo = 2
	// AlgoLZWVarAlpha extends the dictionary only when every byte of
	// the candidate phrase is an ASCII letter.
	AlgoLZWVarAlpha Algo = 3
)

const (
	magic0, magic1, magic2 = 'C', 'M', 'P'
	version                = 3
	headerLen              = 13
)

// IsCompressed reports whether buf starts with a recognized container
// header: the 3-byte magic, version 3, and a known algorithm tag.
func IsCompressed(buf []byte) bool {
	if len(buf) < headerLen {
		return false
	}
	if buf[0] != magic0 || buf[1] != magic1 || buf[2] != magic2 {
		return false
	}
	if buf[3] != version {
		return false
	}
	switch Algo(buf[4]) {
	case AlgoLZWVarAll, AlgoLZWVarAlpha:
		return true
	default:
		return false
	}
}

// Compress wraps raw with the container header produced by algo. It
// is a no-op (returns raw unchanged) if raw is already compressed.
func Compress(raw []byte, algo Algo) ([]byte, error) {
	if IsCompressed(raw) {
		return raw, nil
	}

	var payload []byte
	switch algo {
	case AlgoLZWVarAll:
		payload = lzwCompress(raw, false)
	case AlgoLZWVarAlpha:
		payload = lzwCompress(raw, true)
	default:
		return nil, vfserr.New("Compress", "", vfserr.Unsupported)
	}

	out := make([]byte, headerLen+len(payload))
	out[0], out[1], out[2] = magic0, magic1, magic2
	out[3] = version
	out[4] = byte(algo)
	binary.LittleEndian.PutUint64(out[5:13], uint64(len(raw)))
	copy(out[headerLen:], payload)
	return out, nil
}

// Decompress unwraps a container produced by Compress, verifying the
// decoded length matches the advertised original length.
func Decompress(buf []byte) ([]byte, error) {
	if len(buf) < headerLen || buf[0] != magic0 || buf[1] != magic1 || buf[2] != magic2 {
		return nil, vfserr.New("Decompress", "", vfserr.InvalidArg)
	}
	if buf[3] != version {
		return nil, vfserr.New("Decompress", "", vfserr.Unsupported)
	}

	algo := Algo(buf[4])
	origLen := binary.LittleEndian.Uint64(buf[5:13])
	payload := buf[headerLen:]

	var raw []byte
	var err error
	switch algo {
	case AlgoLZWVarAll:
		raw, err = lzwDecompress(payload, false)
	case AlgoLZWVarAlpha:
		raw, err = lzwDecompress(payload, true)
	default:
		return nil, vfserr.New("Decompress", "", vfserr.Unsupported)
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != origLen {
		return nil, vfserr.New("Decompress", "", vfserr.Corrupted)
	}
	return raw, nil
}
