package compress

import "vfsim/internal/vfserr"

const (
	minBits    = 9
	maxBits    = 16
	firstFree  = 256
	dictLimit  = 1 << maxBits
)

// bitWriter packs codes LSB-first and can be forced to a byte
// boundary mid-stream — the alignment the wire format requires the
// instant the code width grows.
type bitWriter struct {
	buf   uint32
	count int
	out   []byte
}

func (w *bitWriter) put(value uint32, nbits int) {
	if nbits <= 0 {
		return
	}
	var mask uint32
	if nbits == 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (1 << uint(nbits)) - 1
	}
	value &= mask
	w.buf |= value << uint(w.count)
	w.count += nbits
	for w.count >= 8 {
		w.out = append(w.out, byte(w.buf&0xFF))
		w.buf >>= 8
		w.count -= 8
	}
}

func (w *bitWriter) alignToByte() {
	if w.count > 0 {
		w.out = append(w.out, byte(w.buf&0xFF))
		w.buf = 0
		w.count = 0
	}
}

func (w *bitWriter) finish() []byte {
	w.alignToByte()
	return w.out
}

type bitReader struct {
	data  []byte
	pos   int
	buf   uint32
	count int
}

func (r *bitReader) get(nbits int) (uint32, bool) {
	if nbits <= 0 {
		return 0, true
	}
	for r.count < nbits {
		if r.pos >= len(r.data) {
			return 0, false
		}
		r.buf |= uint32(r.data[r.pos]) << uint(r.count)
		r.pos++
		r.count += 8
	}
	var mask uint32
	if nbits == 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (1 << uint(nbits)) - 1
	}
	value := r.buf & mask
	r.buf >>= uint(nbits)
	r.count -= nbits
	return value, true
}

func (r *bitReader) alignToByte() {
	r.buf = 0
	r.count = 0
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// lzwCompress runs the variable-width LZW encoder. alphaOnly selects
// the LZW_VAR_ALPHA dictionary-extension policy; otherwise LZW_VAR_ALL.
func lzwCompress(input []byte, alphaOnly bool) []byte {
	w := &bitWriter{}
	if len(input) == 0 {
		return w.finish()
	}

	dict := make(map[string]uint32, 1<<15)
	for i := 0; i < 256; i++ {
		dict[string([]byte{byte(i)})] = uint32(i)
	}

	word := string(input[:1])
	nextCode := uint32(firstFree)
	codeBits := minBits

	for i := 1; i < len(input); i++ {
		c := input[i : i+1]
		wc := word + string(c)

		if _, ok := dict[wc]; ok {
			word = wc
			continue
		}

		code := dict[word]
		w.put(code, codeBits)

		if nextCode < dictLimit {
			allow := true
			if alphaOnly {
				for j := 0; j < len(wc); j++ {
					if !isASCIILetter(wc[j]) {
						allow = false
						break
					}
				}
			}
			if allow {
				if nextCode == uint32(1)<<uint(codeBits) && codeBits < maxBits {
					codeBits++
					w.alignToByte()
				}
				dict[wc] = nextCode
				nextCode++
			}
		}

		word = string(c)
	}

	w.put(dict[word], codeBits)
	return w.finish()
}

// lzwDecompress is the mirror of lzwCompress; it must apply the exact
// same dictionary-extension predicate at the exact same point or it
// silently diverges into Corrupted output.
func lzwDecompress(payload []byte, alphaOnly bool) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	r := &bitReader{data: payload}

	first, ok := r.get(minBits)
	if !ok || first >= 256 {
		return nil, vfserr.New("lzwDecompress", "", vfserr.Corrupted)
	}

	dict := make([][]byte, 256, dictLimit)
	for i := 0; i < 256; i++ {
		dict[i] = []byte{byte(i)}
	}

	prev := dict[first]
	out := append([]byte(nil), prev...)

	nextCode := uint32(firstFree)
	codeBits := minBits

	for {
		// In ALL mode every code after the first extends the dictionary,
		// so the width bump the encoder made for that extension is known
		// here, before the code written at the new width is read.
		if !alphaOnly && nextCode < dictLimit && nextCode == uint32(1)<<uint(codeBits) && codeBits < maxBits {
			codeBits++
			r.alignToByte()
		}
		code, ok := r.get(codeBits)
		if !ok {
			break
		}

		var entry []byte
		switch {
		case int(code) < len(dict):
			entry = dict[code]
		case code == nextCode && len(prev) > 0:
			entry = append(append([]byte(nil), prev...), prev[0])
		default:
			return nil, vfserr.New("lzwDecompress", "", vfserr.Corrupted)
		}

		out = append(out, entry...)

		if nextCode < dictLimit {
			if alphaOnly {
				newEntry := append(append([]byte(nil), prev...), firstByteOrNil(entry)...)
				allow := true
				for j := 0; j < len(newEntry); j++ {
					if !isASCIILetter(newEntry[j]) {
						allow = false
						break
					}
				}
				if allow {
					if nextCode == uint32(1)<<uint(codeBits) && codeBits < maxBits {
						codeBits++
						r.alignToByte()
					}
					dict = append(dict, newEntry)
					nextCode++
				}
			} else {
				if len(prev) > 0 && len(entry) > 0 {
					newEntry := append(append([]byte(nil), prev...), entry[0])
					dict = append(dict, newEntry)
					nextCode++
				}
			}
		}

		prev = entry
	}

	return out, nil
}

func firstByteOrNil(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b[:1]
}
