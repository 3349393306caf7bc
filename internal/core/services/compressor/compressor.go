// Package compressor implements the single-pass streaming container
// writer. It reserves the header region of a zra container up front,
// appends one compressed frame per write, and fills the header in
// retroactively at finalization, so the whole compressed output never has
// to sit in memory.
package compressor

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Xpl0itR/zra/internal/adapters/checksum"
	"github.com/Xpl0itR/zra/internal/adapters/engine"
	"github.com/Xpl0itR/zra/internal/core/domain"
	"github.com/Xpl0itR/zra/internal/core/ports"
	zraerrors "github.com/Xpl0itR/zra/pkg/errors"
	"github.com/Xpl0itR/zra/pkg/pool"
)

var (
	// ErrFinalized indicates a write or second finalize on an already
	// finalized compressor.
	ErrFinalized = errors.New("compressor is finalized")
)

// Compressor writes one zra container to a random-access sink. It exposes
// a write-only, append-style surface: no reads, no seeks, no length
// mutation. The underlying sink, by contrast, must support backward seeks
// (see ports.RandomAccessSink); that requirement lives with the sink, not
// with this type's callers.
//
// A compressor is single-writer: calls are serialized internally so misuse
// is rejected deterministically, but it is not designed for concurrent
// writers and provides no cancellation. Callers needing cancellation or
// timeouts must wrap the sink.
type Compressor struct {
	// Configuration options controlling framing, the engine, checksums,
	// and sink ownership.
	options *domain.CompressorOptions

	// Interfaces for the compression engine and the byte store.
	sink    ports.RandomAccessSink // Destination the container is written to.
	session ports.SessionPort      // Exclusively owned engine session.

	// Scratch buffers for compressed frames, reused across writes.
	bufferPool *pool.BufferPool

	// Container geometry, fixed at construction.
	startOffset int64 // Sink position the container begins at.
	headerSize  int64 // Length of the reserved header region.

	// Progress accounting.
	frames          uint64 // Frames appended so far.
	rawBytes        uint64 // Raw input consumed so far.
	compressedBytes uint64 // Compressed bytes appended so far.

	// State management flags.
	finalized atomic.Bool // Set once Finalize has begun.

	// Serializes writes and finalization.
	mu sync.Mutex
}

// New creates a compressor over the sink's current position. It creates
// the engine session, queries the exact header length this configuration
// will produce, and reserves that span with a pure seek; no bytes are
// written until the first frame. If session creation fails, the sink is
// untouched beyond having read its position.
func New(sink ports.RandomAccessSink, opts *domain.CompressorOptions) (*Compressor, error) {
	if sink == nil {
		return nil, zraerrors.NewValidationError("sink", nil, errors.New("sink is required"))
	}
	if opts == nil {
		return nil, zraerrors.NewValidationError("options", nil, errors.New("options are required"))
	}

	opts = prepareDefaults(opts)
	if err := Validate(opts); err != nil {
		return nil, err
	}

	var summer ports.ChecksumPort
	if opts.ChecksumOptions.Enable {
		if opts.ChecksumOptions.Custom != nil {
			summer = opts.ChecksumOptions.Custom
		} else {
			summer = checksum.NewCheckSummer(opts.ChecksumOptions.Algorithm)
		}
	}

	eng, err := engine.New(opts.EngineOptions, summer)
	if err != nil {
		return nil, zraerrors.NewCompressorError(zraerrors.ErrorParameter, "create", err)
	}

	startOffset, err := sink.Position()
	if err != nil {
		return nil, zraerrors.NewCompressorError(zraerrors.ErrorSink, "create", err)
	}

	session, err := eng.NewSession(&ports.SessionParams{
		ExpectedLength: opts.ExpectedLength,
		FrameSize:      opts.FrameSize,
		Checksum:       opts.ChecksumOptions.Enable,
		Metadata:       opts.Metadata,
	})
	if err != nil {
		return nil, zraerrors.NewCompressorError(zraerrors.ErrorParameter, "create", err)
	}

	headerSize := session.HeaderSize()
	if err := sink.SetPosition(startOffset + headerSize); err != nil {
		session.Close()
		return nil, zraerrors.NewCompressorError(zraerrors.ErrorSink, "create", err)
	}

	return &Compressor{
		sink:        sink,
		options:     opts,
		session:     session,
		startOffset: startOffset,
		headerSize:  headerSize,
		bufferPool:  pool.NewBufferPool(session.MaxOutputSize(int(opts.FrameSize))),
	}, nil
}

// Write compresses one chunk into exactly one frame and appends it to the
// sink. Chunks must not exceed the configured frame size; the engine
// rejects oversize chunks before any sink write, leaving the frames
// written so far valid. A zero-length chunk still round-trips through the
// engine and consumes a frame slot.
//
// The chunk is passed to the engine as-is and never mutated; callers
// compressing a sub-range of a larger buffer pass the sub-slice.
func (c *Compressor) Write(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized.Load() {
		return zraerrors.NewCompressorError(zraerrors.ErrorMisuse, "write", ErrFinalized)
	}

	buf := c.bufferPool.Get(c.session.MaxOutputSize(len(chunk)))
	compressed, err := c.session.Compress(buf, chunk)
	if err != nil {
		c.bufferPool.Put(buf)
		return zraerrors.NewCompressorError(zraerrors.ErrorEngine, "write", err)
	}

	n, err := c.sink.Write(compressed)
	c.bufferPool.Put(compressed)
	if err != nil {
		return zraerrors.NewCompressorError(zraerrors.ErrorSink, "write", err)
	}
	if n != len(compressed) {
		return zraerrors.NewCompressorError(
			zraerrors.ErrorSink, "write", fmt.Errorf("short write: %d != %d", n, len(compressed)),
		)
	}

	c.frames++
	c.rawBytes += uint64(len(chunk))
	c.compressedBytes += uint64(n)
	return nil
}

// Copy reads r in frame-size chunks and writes one frame per chunk until
// EOF, returning the number of raw bytes consumed. It is the convenience
// path for callers that do not want to chunk input themselves.
func (c *Compressor) Copy(r io.Reader) (int64, error) {
	chunk := make([]byte, c.options.FrameSize)

	var total int64
	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			if werr := c.Write(chunk[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Finalize completes the container: it obtains the finished header from
// the engine, seeks back to the recorded start offset, and fills the
// reserved region in. The engine session is released on every path. If
// the compressor owns the sink it is flushed and closed; otherwise the
// sink is left open, positioned just past the header.
//
// Finalize must be called exactly once. A second call, like a write after
// finalization, fails with a misuse error and never mutates sink state.
// A finalized header whose length differs from the reserved region is a
// broken invariant; finalization aborts before any rewind so a corrupt
// container is never emitted silently.
func (c *Compressor) Finalize() (err error) {
	if !c.finalized.CompareAndSwap(false, true) {
		return zraerrors.NewCompressorError(zraerrors.ErrorMisuse, "finalize", ErrFinalized)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if cerr := c.session.Close(); cerr != nil && err == nil {
			err = zraerrors.NewCompressorError(zraerrors.ErrorEngine, "finalize", cerr)
		}
		if c.options.OwnsSink {
			if cerr := c.sink.Close(); cerr != nil && err == nil {
				err = zraerrors.NewCompressorError(zraerrors.ErrorSink, "finalize", cerr)
			}
		}
	}()

	var header []byte
	if header, err = c.session.FinalizeHeader(); err != nil {
		return zraerrors.NewCompressorError(zraerrors.ErrorEngine, "finalize", err)
	}

	if int64(len(header)) != c.headerSize {
		return zraerrors.NewCompressorError(
			zraerrors.ErrorInternal, "finalize",
			fmt.Errorf("finalized header is %d bytes, reserved region is %d", len(header), c.headerSize),
		)
	}

	if err = c.sink.SetPosition(c.startOffset); err != nil {
		return zraerrors.NewCompressorError(zraerrors.ErrorSink, "finalize", err)
	}

	n, werr := c.sink.Write(header)
	if werr != nil {
		return zraerrors.NewCompressorError(zraerrors.ErrorSink, "finalize", werr)
	}
	if n != len(header) {
		return zraerrors.NewCompressorError(
			zraerrors.ErrorSink, "finalize", fmt.Errorf("short header write: %d != %d", n, len(header)),
		)
	}

	if c.options.OwnsSink {
		if err = c.sink.Flush(); err != nil {
			return zraerrors.NewCompressorError(zraerrors.ErrorSink, "finalize", err)
		}
	}

	return nil
}

// Stats returns a snapshot of the compressor's progress.
func (c *Compressor) Stats() domain.CompressorStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.CompressorStats{
		FramesWritten:   c.frames,
		RawBytes:        c.rawBytes,
		CompressedBytes: c.compressedBytes,
		HeaderSize:      c.headerSize,
		StartOffset:     c.startOffset,
	}
}
