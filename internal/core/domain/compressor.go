// Package domain defines the core types and configurations for the zra container writer.
package domain

// CompressorOptions defines the configuration parameters for a streaming
// container compressor. It provides control over framing, the compression
// engine, integrity checking, and sink ownership.
type CompressorOptions struct {
	// ExpectedLength is the total number of raw input bytes the caller
	// intends to write. The frame table in the container header is sized
	// from this value before any data is compressed, so writing more
	// frames than ExpectedLength/FrameSize allows is rejected by the
	// engine. Writing fewer bytes than expected is permitted; unused
	// frame table entries remain zeroed.
	ExpectedLength uint64

	// FrameSize is the maximum number of raw input bytes per frame and
	// the unit of independent decodability. Each call to Write produces
	// exactly one frame, so callers must chunk their input at or below
	// this size (or use Copy, which chunks for them).
	//
	// Must be set explicitly; zero is rejected at construction.
	FrameSize uint32

	// Metadata is an opaque, caller-supplied blob stored verbatim in the
	// container header. The compressor attaches no semantics to it.
	// May be nil.
	Metadata []byte

	// OwnsSink controls whether the sink is flushed and closed when the
	// compressor is finalized. When false the sink is left open,
	// positioned just past the header, and remains usable by the caller.
	//
	// Default: false
	OwnsSink bool

	// EngineOptions selects and configures the compression engine.
	EngineOptions *EngineOptions

	// ChecksumOptions configures per-frame integrity checksums recorded
	// in the container's frame table.
	ChecksumOptions *ChecksumOptions
}

// CompressorStats is a read-only snapshot of a compressor's progress.
type CompressorStats struct {
	// FramesWritten is the number of frames appended so far, including
	// frames produced by zero-length writes.
	FramesWritten uint64

	// RawBytes is the total raw input consumed so far.
	RawBytes uint64

	// CompressedBytes is the total compressed output appended to the
	// sink so far, excluding the header.
	CompressedBytes uint64

	// HeaderSize is the fixed length of the reserved header region.
	HeaderSize int64

	// StartOffset is the sink position the container begins at.
	StartOffset int64
}
