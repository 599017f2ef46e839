package buffer

import (
	"vfsim/internal/vfserr"
)

// Mode selects which directions a Stream permits.
type Mode int

const (
	ReadOnly Mode = iota
	WriteOnly
	ReadWrite
)

type role int

const (
	roleIdle role = iota
	roleRead
	roleWrite
)

// Stream is a fixed-capacity read/write window over a Buffer. It is a
// scoped-acquisition resource: callers must Close it to flush any
// pending writes.
type Stream struct {
	file     *Buffer
	mode     Mode
	capacity int
	window   []byte

	opened     bool
	filePos    int
	windowUsed int
	pos        int
	dirty      bool
	eof        bool
	role       role
}

// NewStream returns a Stream of the given window capacity over file.
// capacity must be > 0.
func NewStream(file *Buffer, mode Mode, capacity int) (*Stream, error) {
	if capacity <= 0 {
		return nil, vfserr.New("NewStream", "", vfserr.InvalidArg)
	}
	return &Stream{file: file, mode: mode, capacity: capacity}, nil
}

func (s *Stream) canRead() bool  { return s.mode == ReadOnly || s.mode == ReadWrite }
func (s *Stream) canWrite() bool { return s.mode == WriteOnly || s.mode == ReadWrite }

// Open prepares the window, pre-filling it from offset 0 for readable
// modes.
func (s *Stream) Open() error {
	if s.opened {
		return vfserr.New("Stream.Open", "", vfserr.InvalidArg)
	}
	s.window = make([]byte, s.capacity)
	s.filePos, s.windowUsed, s.pos = 0, 0, 0
	s.dirty, s.eof = false, false
	s.role = roleIdle
	s.opened = true

	if s.canRead() {
		s.fillForRead(0)
	}
	return nil
}

// Close flushes any pending write window and closes the stream.
func (s *Stream) Close() error {
	if !s.opened {
		return nil
	}
	if s.canWrite() && s.dirty {
		s.flushForWrite()
	}
	s.opened = false
	s.windowUsed, s.pos = 0, 0
	s.dirty, s.eof = false, false
	s.role = roleIdle
	return nil
}

func (s *Stream) ensureOpen() error {
	if !s.opened {
		return vfserr.New("Stream", "", vfserr.InvalidArg)
	}
	return nil
}

// ReadByte reads a single byte.
func (s *Stream) ReadByte() (byte, error) {
	var out [1]byte
	n, err := s.Read(out[:])
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, vfserr.New("Stream.ReadByte", "", vfserr.IOError)
	}
	return out[0], nil
}

// Read fills dst with up to len(dst) bytes, refilling the window as
// needed, and returns the number read.
func (s *Stream) Read(dst []byte) (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	if !s.canRead() {
		return 0, vfserr.New("Stream.Read", "", vfserr.InvalidArg)
	}
	if dst == nil {
		return 0, vfserr.New("Stream.Read", "", vfserr.InvalidArg)
	}
	if len(dst) == 0 {
		return 0, nil
	}

	total := 0
	for total < len(dst) {
		if s.pos >= s.windowUsed {
			s.fillForRead(s.filePos + s.windowUsed)
			if s.windowUsed == 0 {
				break
			}
		}
		available := s.windowUsed - s.pos
		chunk := len(dst) - total
		if available < chunk {
			chunk = available
		}
		copy(dst[total:total+chunk], s.window[s.pos:s.pos+chunk])
		s.pos += chunk
		total += chunk
	}
	if total == 0 && s.windowUsed == 0 {
		s.eof = true
	}
	return total, nil
}

// ReadChar reads one byte as a rune-sized char; ok is false at EOF.
func (s *Stream) ReadChar() (c byte, ok bool) {
	b, err := s.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

// ReadLine reads bytes up to and excluding the next '\n', or to EOF.
func (s *Stream) ReadLine() (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}
	if !s.canRead() {
		return "", vfserr.New("Stream.ReadLine", "", vfserr.InvalidArg)
	}
	var line []byte
	for {
		c, ok := s.ReadChar()
		if !ok {
			break
		}
		if c == '\n' {
			break
		}
		line = append(line, c)
	}
	return string(line), nil
}

// WriteByte writes a single byte.
func (s *Stream) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// Write writes src into the window, flushing on overflow.
func (s *Stream) Write(src []byte) (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	if !s.canWrite() {
		return 0, vfserr.New("Stream.Write", "", vfserr.InvalidArg)
	}
	if src == nil {
		return 0, vfserr.New("Stream.Write", "", vfserr.InvalidArg)
	}
	if len(src) == 0 {
		return 0, nil
	}

	s.prepareForWrite()

	total := 0
	for total < len(src) {
		if s.pos >= s.capacity {
			s.flushForWrite()
		}
		space := s.capacity - s.pos
		chunk := len(src) - total
		if space < chunk {
			chunk = space
		}
		copy(s.window[s.pos:s.pos+chunk], src[total:total+chunk])
		s.pos += chunk
		if s.pos > s.windowUsed {
			s.windowUsed = s.pos
		}
		s.dirty = true
		total += chunk
		if s.pos == s.capacity {
			s.flushForWrite()
		}
	}
	return total, nil
}

// WriteChar writes a single byte value of c.
func (s *Stream) WriteChar(c byte) error { return s.WriteByte(c) }

// WriteString writes the bytes of str.
func (s *Stream) WriteString(str string) error {
	_, err := s.Write([]byte(str))
	return err
}

// Flush forces any dirty write window to the backing buffer.
func (s *Stream) Flush() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if !s.canWrite() {
		return nil
	}
	s.flushForWrite()
	return nil
}

// Tell returns the absolute stream position.
func (s *Stream) Tell() (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	return s.filePos + s.pos, nil
}

// Seek moves to newPos. If newPos lands inside the current read
// window, the window is kept; otherwise it is reset at the target.
func (s *Stream) Seek(newPos int) (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}

	if s.canWrite() && s.dirty {
		s.flushForWrite()
	}

	if s.canRead() && s.role == roleRead {
		start := s.filePos
		end := s.filePos + s.windowUsed
		if newPos >= start && newPos <= end {
			s.pos = newPos - start
			s.eof = false
			return s.Tell()
		}
	}

	s.filePos = newPos
	s.pos = 0
	s.windowUsed = 0
	s.eof = false
	s.role = roleIdle

	if s.canRead() {
		s.fillForRead(newPos)
		return s.Tell()
	}
	if s.canWrite() {
		s.role = roleWrite
	}
	return s.Tell()
}

// IsOpen reports whether Open has been called without a matching Close.
func (s *Stream) IsOpen() bool { return s.opened }

// Eof reports whether a read has reached the end of the buffer with no
// bytes left to return; consuming the final byte alone does not set it.
func (s *Stream) Eof() bool { return s.eof }

func (s *Stream) fillForRead(filePos int) {
	if !s.canRead() {
		return
	}
	fileSize := s.file.Size()
	s.filePos = filePos
	if filePos >= fileSize {
		s.windowUsed, s.pos = 0, 0
		s.eof = true
		s.role = roleRead
		return
	}
	toRead := s.capacity
	if remain := fileSize - filePos; remain < toRead {
		toRead = remain
	}
	data, _ := s.file.Read(filePos, toRead)
	copy(s.window, data)
	s.windowUsed = len(data)
	s.pos = 0
	s.eof = false
	s.role = roleRead
}

func (s *Stream) flushForWrite() {
	if !s.dirty {
		return
	}
	_ = s.file.Write(s.filePos, s.window[:s.windowUsed])
	s.filePos += s.windowUsed
	s.pos, s.windowUsed = 0, 0
	s.dirty = false
	s.role = roleWrite
}

func (s *Stream) prepareForWrite() {
	if s.role == roleWrite {
		return
	}
	s.filePos += s.pos
	s.pos, s.windowUsed = 0, 0
	s.dirty = false
	s.role = roleWrite
}
