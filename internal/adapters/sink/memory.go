package sink

import (
	"errors"
)

var errSinkClosed = errors.New("sink is closed")

// MemorySink is a growable in-memory random-access sink. Positioning past
// the current end is allowed; the gap reads as zero bytes until written,
// mirroring a sparse file.
type MemorySink struct {
	buf    []byte
	pos    int64
	closed bool
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Position() (int64, error) {
	if s.closed {
		return 0, errSinkClosed
	}
	return s.pos, nil
}

func (s *MemorySink) SetPosition(offset int64) error {
	if s.closed {
		return errSinkClosed
	}
	if offset < 0 {
		return errors.New("negative sink position")
	}
	s.pos = offset
	return nil
}

func (s *MemorySink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errSinkClosed
	}

	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}

	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *MemorySink) Flush() error {
	if s.closed {
		return errSinkClosed
	}
	return nil
}

func (s *MemorySink) Close() error {
	if s.closed {
		return errSinkClosed
	}
	s.closed = true
	return nil
}

// Bytes returns the sink's contents. The slice aliases internal storage
// and is only valid until the next write.
func (s *MemorySink) Bytes() []byte {
	return s.buf
}

// Len returns the total number of bytes stored.
func (s *MemorySink) Len() int {
	return len(s.buf)
}

// Closed reports whether Close has been called.
func (s *MemorySink) Closed() bool {
	return s.closed
}
