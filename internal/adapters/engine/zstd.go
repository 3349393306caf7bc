package engine

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/Xpl0itR/zra/internal/core/domain"
	"github.com/Xpl0itR/zra/internal/core/ports"
)

// zstdEngine creates sessions backed by the zstd codec. Each frame is an
// independent zstd stream produced by EncodeAll, so frames remain
// independently decodable.
type zstdEngine struct {
	opts   domain.EngineOptions
	summer ports.ChecksumPort
}

func newZstdEngine(opts *domain.EngineOptions, summer ports.ChecksumPort) (*zstdEngine, error) {
	return &zstdEngine{opts: *opts, summer: summer}, nil
}

// NewSession creates the session's own encoder. The encoder holds native
// buffers and worker goroutines, so it is torn down by Session.Close.
func (e *zstdEngine) NewSession(params *ports.SessionParams) (ports.SessionPort, error) {
	base, err := newSession(params, CodecZstd, e.opts.Level, e.summer)
	if err != nil {
		return nil, err
	}

	concurrency := int(e.opts.Concurrency)
	if concurrency == 0 {
		concurrency = 1
	}

	encoder, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderLevel(zstd.EncoderLevel(e.opts.Level)),
		zstd.WithEncoderConcurrency(concurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	return &zstdSession{session: base, encoder: encoder}, nil
}

type zstdSession struct {
	session
	encoder *zstd.Encoder
}

// MaxOutputSize delegates to the encoder's own worst-case bound, which
// accounts for frame headers and incompressible input.
func (s *zstdSession) MaxOutputSize(inputLen int) int {
	return s.encoder.MaxEncodedSize(inputLen)
}

func (s *zstdSession) Compress(dst, src []byte) ([]byte, error) {
	if err := s.admit(src); err != nil {
		return nil, err
	}

	compressed := s.encoder.EncodeAll(src, dst[:0])
	s.record(src, len(compressed), false)
	return compressed, nil
}

func (s *zstdSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.encoder.Close(); err != nil {
		return fmt.Errorf("error closing encoder: %w", err)
	}
	return nil
}
