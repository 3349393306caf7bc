package compressor

import (
	"github.com/Xpl0itR/zra/internal/adapters/checksum"
	"github.com/Xpl0itR/zra/internal/adapters/engine"
	"github.com/Xpl0itR/zra/internal/core/domain"
)

const (
	// DefaultFrameSize balances random-access granularity against the
	// per-frame overhead of the frame table and codec headers.
	DefaultFrameSize = 131072 // 128KB

	// MaxFrameSize caps how much raw input a single frame may hold.
	// A frame's compressed size must fit the 31 usable bits of its
	// table entry with room for worst-case codec expansion.
	MaxFrameSize = 268435456 // 256MB

	// MaxMetadataSize caps the opaque metadata blob so the header
	// region stays bounded.
	MaxMetadataSize = 16777216 // 16MB
)

// prepareDefaults fills unset nested options. FrameSize is deliberately
// not defaulted: a zero frame size is rejected at validation, since
// silently picking one would change the container's decodability unit
// behind the caller's back.
func prepareDefaults(opts *domain.CompressorOptions) *domain.CompressorOptions {
	if opts.EngineOptions == nil {
		opts.EngineOptions = engine.DefaultOptions()
	} else {
		if opts.EngineOptions.Algorithm == "" {
			opts.EngineOptions.Algorithm = engine.Zstd
		}
		if opts.EngineOptions.Level == 0 && opts.EngineOptions.Algorithm == engine.Zstd {
			opts.EngineOptions.Level = engine.DefaultLevel
		}
	}

	if opts.ChecksumOptions == nil {
		opts.ChecksumOptions = checksum.DefaultOptions()
	} else if opts.ChecksumOptions.Algorithm == "" && opts.ChecksumOptions.Custom == nil {
		opts.ChecksumOptions.Algorithm = checksum.CRC32IEEE
	}

	return opts
}
