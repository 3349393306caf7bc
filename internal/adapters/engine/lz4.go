package engine

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/Xpl0itR/zra/internal/core/domain"
	"github.com/Xpl0itR/zra/internal/core/ports"
)

// lz4Levels maps the small-integer level range to the codec's match-search
// depths. Level 0 is the fast path without depth search.
var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// lz4Engine creates sessions backed by block-mode LZ4. Each frame is one
// compressed block; blocks the codec cannot shrink are stored raw and
// marked in the frame table, since an LZ4 block is not self-describing.
type lz4Engine struct {
	opts   domain.EngineOptions
	summer ports.ChecksumPort
}

func newLZ4Engine(opts *domain.EngineOptions, summer ports.ChecksumPort) *lz4Engine {
	return &lz4Engine{opts: *opts, summer: summer}
}

func (e *lz4Engine) NewSession(params *ports.SessionParams) (ports.SessionPort, error) {
	base, err := newSession(params, CodecLZ4, e.opts.Level, e.summer)
	if err != nil {
		return nil, err
	}
	return &lz4Session{session: base, level: lz4Levels[e.opts.Level]}, nil
}

type lz4Session struct {
	session
	level lz4.CompressionLevel
}

// MaxOutputSize returns the block compression bound, which is never below
// the input length, covering the stored-raw fallback as well.
func (s *lz4Session) MaxOutputSize(inputLen int) int {
	return lz4.CompressBlockBound(inputLen)
}

func (s *lz4Session) Compress(dst, src []byte) ([]byte, error) {
	if err := s.admit(src); err != nil {
		return nil, err
	}

	bound := lz4.CompressBlockBound(len(src))
	if cap(dst) < bound {
		dst = make([]byte, bound)
	}
	dst = dst[:bound]

	var n int
	var err error
	if s.level == lz4.Fast {
		n, err = lz4.CompressBlock(src, dst, nil)
	} else {
		n, err = lz4.CompressBlockHC(src, dst, s.level, nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// A zero return means the block is incompressible; store the raw
	// bytes so the frame stays decodable.
	if n == 0 || n >= len(src) {
		stored := append(dst[:0], src...)
		s.record(src, len(stored), true)
		return stored, nil
	}

	s.record(src, n, false)
	return dst[:n], nil
}

func (s *lz4Session) Close() error {
	s.closed = true
	return nil
}
