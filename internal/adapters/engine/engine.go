// Package engine provides the compression engine bindings that produce zra
// container frames and headers. Each engine wraps one codec behind the
// session port; the streaming compressor never touches codec specifics.
package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/Xpl0itR/zra/internal/core/domain"
	"github.com/Xpl0itR/zra/internal/core/ports"
)

const (
	// Zstd selects the zstd codec. This is the default engine.
	Zstd domain.EngineAlgorithm = "zstd"

	// LZ4 selects block-mode LZ4.
	LZ4 domain.EngineAlgorithm = "lz4"
)

// Zstd compression level constants define the trade-off between compression
// ratio and speed. Higher levels provide better compression at the cost of
// increased CPU usage and time.
const (
	FastestLevel uint8 = 1 // Optimized for speed with minimal compression
	DefaultLevel uint8 = 3 // Balanced between speed and compression ratio
	BestLevel    uint8 = 4 // Maximum compression ratio, higher CPU usage
)

// MaxLZ4Level is the deepest match-search level block-mode LZ4 supports.
const MaxLZ4Level uint8 = 9

var (
	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("compression session is closed")

	// ErrChunkTooLarge indicates an input chunk exceeding the session's
	// frame size.
	ErrChunkTooLarge = errors.New("chunk exceeds frame size")

	// ErrFrameTableFull indicates more frames than the header's frame
	// table, sized from the expected input length, can record.
	ErrFrameTableFull = errors.New("frame table is full")
)

// Returns EngineOptions initialized with recommended default values that
// provide a good balance between compression ratio and performance for most
// use cases.
func DefaultOptions() *domain.EngineOptions {
	return &domain.EngineOptions{
		Algorithm:   Zstd,
		Level:       DefaultLevel,
		Concurrency: 1,
	}
}

// Checks if the engine options are valid and returns an error if any option
// is outside acceptable bounds. The level range depends on the selected
// algorithm.
func Validate(input *domain.EngineOptions) error {
	switch input.Algorithm {
	case Zstd:
		if input.Level < FastestLevel || input.Level > BestLevel {
			return fmt.Errorf(
				"zstd compression level must be between %d and %d, got %d",
				FastestLevel, BestLevel, input.Level,
			)
		}
	case LZ4:
		if input.Level > MaxLZ4Level {
			return fmt.Errorf(
				"lz4 compression level must be between 0 and %d, got %d", MaxLZ4Level, input.Level,
			)
		}
	default:
		return fmt.Errorf("unsupported engine algorithm: %s", input.Algorithm)
	}

	if input.Concurrency > uint8(min(runtime.NumCPU(), math.MaxUint8)) {
		return fmt.Errorf(
			"engine concurrency must be between 0 and %d, got %d", runtime.NumCPU(), input.Concurrency,
		)
	}

	return nil
}

// New creates the engine for the configured algorithm. The checksummer is
// used for the per-frame checksums recorded in the frame table; it may be
// nil when checksums are disabled.
func New(opts *domain.EngineOptions, summer ports.ChecksumPort) (ports.EnginePort, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	switch opts.Algorithm {
	case LZ4:
		return newLZ4Engine(opts, summer), nil
	default:
		return newZstdEngine(opts, summer)
	}
}

// session carries the framing state shared by every codec binding: the
// frame table sized at creation, running totals, and the header geometry.
type session struct {
	params  ports.SessionParams
	summer  ports.ChecksumPort
	codec   uint8
	level   uint8
	size    int64
	planned int
	entries []FrameEntry
	raw     uint64
	closed  bool
}

func newSession(params *ports.SessionParams, codec, level uint8, summer ports.ChecksumPort) (session, error) {
	if params.FrameSize == 0 {
		return session{}, errors.New("frame size must be greater than zero")
	}
	if params.Checksum && summer == nil {
		return session{}, errors.New("checksum enabled but no checksummer provided")
	}

	// The header length field is a uint32, so any parameter combination
	// whose frame table would push the header past that limit is invalid
	// at creation. Checked in uint64 before the table is allocated.
	planned := plannedFrames(params.ExpectedLength, params.FrameSize)
	entrySize := uint64(tableEntrySize(params.Checksum))
	metaLen := uint64(len(params.Metadata))
	if metaLen > math.MaxUint32-headerFixedSize ||
		planned > (math.MaxUint32-headerFixedSize-metaLen)/entrySize {
		return session{}, fmt.Errorf(
			"header for expected length %d at frame size %d exceeds format limit",
			params.ExpectedLength, params.FrameSize,
		)
	}

	return session{
		params:  *params,
		summer:  summer,
		codec:   codec,
		level:   level,
		size:    headerSize(params.ExpectedLength, params.FrameSize, params.Checksum, len(params.Metadata)),
		planned: int(planned),
		entries: make([]FrameEntry, 0, int(planned)),
	}, nil
}

func (s *session) HeaderSize() int64 {
	return s.size
}

// admit rejects chunks the frame table or frame size cannot accommodate.
// Zero-length chunks are admitted and consume a table entry, preserving the
// one-write-one-frame mapping.
func (s *session) admit(src []byte) error {
	if s.closed {
		return ErrSessionClosed
	}
	if len(src) > int(s.params.FrameSize) {
		return fmt.Errorf("%w: chunk is %d bytes, frame size is %d",
			ErrChunkTooLarge, len(src), s.params.FrameSize)
	}
	if len(s.entries) >= s.planned {
		return fmt.Errorf("%w: table holds %d frames", ErrFrameTableFull, s.planned)
	}
	return nil
}

// record appends the frame table entry for a compressed chunk.
func (s *session) record(src []byte, compressedSize int, stored bool) {
	entry := FrameEntry{CompressedSize: uint32(compressedSize), Stored: stored}
	if s.params.Checksum {
		entry.Checksum = s.summer.Calculate(src)
	}
	s.entries = append(s.entries, entry)
	s.raw += uint64(len(src))
}

func (s *session) FinalizeHeader() ([]byte, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	header := Header{
		Codec:      s.codec,
		Level:      s.level,
		Checksum:   s.params.Checksum,
		FrameSize:  s.params.FrameSize,
		FrameCount: uint32(len(s.entries)),
		RawLength:  s.raw,
		Metadata:   s.params.Metadata,
		// Unwritten table slots stay zeroed; the full capacity was
		// allocated at session creation, so extending the slice to the
		// planned count never copies.
		Entries: s.entries[:s.planned],
	}

	return header.Encode(), nil
}
