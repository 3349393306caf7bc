package compressor

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/Xpl0itR/zra/internal/adapters/engine"
	"github.com/Xpl0itR/zra/internal/adapters/sink"
	"github.com/Xpl0itR/zra/internal/core/domain"
	zraerrors "github.com/Xpl0itR/zra/pkg/errors"
)

func testOptions(expected uint64, frameSize uint32) *domain.CompressorOptions {
	return &domain.CompressorOptions{
		ExpectedLength: expected,
		FrameSize:      frameSize,
	}
}

func decodeContainer(t *testing.T, data []byte) (*engine.Header, [][]byte) {
	t.Helper()

	header, err := engine.DecodeHeader(data)
	if err != nil {
		t.Fatalf("DecodeHeader returned error: %v", err)
	}

	frames := make([][]byte, 0, header.FrameCount)
	offset := header.Size()
	for _, entry := range header.Entries[:header.FrameCount] {
		end := offset + int64(entry.CompressedSize)
		if end > int64(len(data)) {
			t.Fatalf("frame table points past the container: %d > %d", end, len(data))
		}
		frames = append(frames, data[offset:end])
		offset = end
	}
	if offset != int64(len(data)) {
		t.Fatalf("container has %d trailing bytes past the last frame", int64(len(data))-offset)
	}
	return header, frames
}

// The reference scenario: 1024 expected bytes, frame size 256, four full
// chunks. The finished sink must hold header ++ frame_1 .. frame_4 with no
// gaps or overlaps, and every frame must decompress to its input chunk.
func TestRoundTrip(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(1024, 256))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	chunks := make([][]byte, 4)
	for i := range chunks {
		chunks[i] = bytes.Repeat([]byte{byte('a' + i)}, 256)
		if err := zc.Write(chunks[i]); err != nil {
			t.Fatalf("Write %d returned error: %v", i, err)
		}
	}

	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	header, frames := decodeContainer(t, memSink.Bytes())
	if header.FrameCount != 4 || header.RawLength != 1024 {
		t.Fatalf("unexpected header totals: %+v", header)
	}

	stats := zc.Stats()
	if stats.HeaderSize != header.Size() {
		t.Fatalf("reserved span %d does not match header size %d", stats.HeaderSize, header.Size())
	}

	var compressedTotal int64
	for _, entry := range header.Entries {
		compressedTotal += int64(entry.CompressedSize)
	}
	if int64(memSink.Len()) != header.Size()+compressedTotal {
		t.Fatalf("sink is %d bytes, want header %d + frames %d", memSink.Len(), header.Size(), compressedTotal)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader returned error: %v", err)
	}
	defer decoder.Close()

	for i, frame := range frames {
		decompressed, err := decoder.DecodeAll(frame, nil)
		if err != nil {
			t.Fatalf("frame %d DecodeAll returned error: %v", i, err)
		}
		if !bytes.Equal(decompressed, chunks[i]) {
			t.Fatalf("frame %d does not round-trip", i)
		}
	}
}

// The container must start wherever the sink's cursor was at construction,
// not at offset zero.
func TestContainerAtNonZeroOffset(t *testing.T) {
	memSink := sink.NewMemorySink()
	prefix := []byte("existing archive content")
	if _, err := memSink.Write(prefix); err != nil {
		t.Fatalf("prefix write returned error: %v", err)
	}

	zc, err := New(memSink, testOptions(64, 64))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if zc.Stats().StartOffset != int64(len(prefix)) {
		t.Fatalf("start offset %d, want %d", zc.Stats().StartOffset, len(prefix))
	}

	if err := zc.Write(bytes.Repeat([]byte{0x7f}, 64)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	if !bytes.Equal(memSink.Bytes()[:len(prefix)], prefix) {
		t.Fatal("bytes before the start offset were mutated")
	}
	if _, err := engine.DecodeHeader(memSink.Bytes()[len(prefix):]); err != nil {
		t.Fatalf("container at offset does not decode: %v", err)
	}
}

// An oversize chunk must fail inside the engine before any sink write:
// zero bytes appended, cursor unchanged.
func TestOversizeChunkLeavesSinkUntouched(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(1024, 256))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	posBefore, _ := memSink.Position()
	lenBefore := memSink.Len()

	err = zc.Write(make([]byte, 257))
	if !errors.Is(err, engine.ErrChunkTooLarge) {
		t.Fatalf("expected ErrChunkTooLarge, got %v", err)
	}
	if zraerrors.Category(err) != zraerrors.ErrorEngine {
		t.Fatalf("expected engine error category, got %v", zraerrors.Category(err))
	}

	if posAfter, _ := memSink.Position(); posAfter != posBefore {
		t.Fatalf("sink cursor moved from %d to %d", posBefore, posAfter)
	}
	if memSink.Len() != lenBefore {
		t.Fatalf("sink grew from %d to %d bytes", lenBefore, memSink.Len())
	}

	// The container stays consistent: later writes and finalize succeed.
	if err := zc.Write(make([]byte, 256)); err != nil {
		t.Fatalf("Write after failed write returned error: %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
}

// Writing after finalize and finalizing twice are protocol misuse: a
// deterministic error, never sink mutation.
func TestMisuseAfterFinalize(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(256, 256))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := zc.Write(make([]byte, 256)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	snapshot := append([]byte(nil), memSink.Bytes()...)

	err = zc.Write([]byte("late"))
	if !errors.Is(err, ErrFinalized) || zraerrors.Category(err) != zraerrors.ErrorMisuse {
		t.Fatalf("expected misuse error from late write, got %v", err)
	}

	err = zc.Finalize()
	if !errors.Is(err, ErrFinalized) || zraerrors.Category(err) != zraerrors.ErrorMisuse {
		t.Fatalf("expected misuse error from second finalize, got %v", err)
	}

	if !bytes.Equal(memSink.Bytes(), snapshot) {
		t.Fatal("misuse mutated previously written bytes")
	}
}

// With the ownership flag unset the sink stays open after finalize,
// positioned exactly past the header.
func TestFinalizeLeavesUnownedSinkOpen(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(128, 128))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := zc.Write(make([]byte, 128)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	if memSink.Closed() {
		t.Fatal("unowned sink was closed")
	}
	pos, err := memSink.Position()
	if err != nil {
		t.Fatalf("Position returned error: %v", err)
	}
	if pos != zc.Stats().StartOffset+zc.Stats().HeaderSize {
		t.Fatalf("sink positioned at %d, want %d", pos, zc.Stats().StartOffset+zc.Stats().HeaderSize)
	}
}

func TestFinalizeClosesOwnedSink(t *testing.T) {
	memSink := sink.NewMemorySink()
	opts := testOptions(128, 128)
	opts.OwnsSink = true

	zc, err := New(memSink, opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if !memSink.Closed() {
		t.Fatal("owned sink was not closed")
	}
}

// A zero-length chunk round-trips through the engine and consumes a frame
// slot, preserving the one-write-one-frame mapping.
func TestZeroLengthWrite(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(1024, 256))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := zc.Write(bytes.Repeat([]byte{byte(i)}, 256)); err != nil {
			t.Fatalf("Write %d returned error: %v", i, err)
		}
	}
	if err := zc.Write(nil); err != nil {
		t.Fatalf("zero-length Write returned error: %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	header, _ := decodeContainer(t, memSink.Bytes())
	if header.FrameCount != 4 {
		t.Fatalf("expected 4 frames including the empty one, got %d", header.FrameCount)
	}
	if header.RawLength != 768 {
		t.Fatalf("raw length %d, want 768", header.RawLength)
	}
}

func TestCopyChunksAtFrameSize(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(1000, 256))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	input := bytes.Repeat([]byte("0123456789"), 100) // 1000 bytes, 4 frames
	written, err := zc.Copy(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Copy returned error: %v", err)
	}
	if written != 1000 {
		t.Fatalf("Copy consumed %d bytes, want 1000", written)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	header, frames := decodeContainer(t, memSink.Bytes())
	if header.FrameCount != 4 {
		t.Fatalf("expected 4 frames, got %d", header.FrameCount)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader returned error: %v", err)
	}
	defer decoder.Close()

	var rebuilt []byte
	for i, frame := range frames {
		decompressed, err := decoder.DecodeAll(frame, nil)
		if err != nil {
			t.Fatalf("frame %d DecodeAll returned error: %v", i, err)
		}
		rebuilt = append(rebuilt, decompressed...)
	}
	if !bytes.Equal(rebuilt, input) {
		t.Fatal("concatenated frames do not rebuild the input")
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	memSink := sink.NewMemorySink()

	if _, err := New(nil, testOptions(1, 1)); !zraerrors.IsValidationError(err) {
		t.Fatalf("expected validation error for nil sink, got %v", err)
	}
	if _, err := New(memSink, nil); !zraerrors.IsValidationError(err) {
		t.Fatalf("expected validation error for nil options, got %v", err)
	}
	if _, err := New(memSink, testOptions(1024, 0)); !zraerrors.IsValidationError(err) {
		t.Fatalf("expected validation error for zero frame size, got %v", err)
	}

	// Session creation failure must leave the sink at its position.
	if pos, _ := memSink.Position(); pos != 0 {
		t.Fatalf("failed construction moved the sink cursor to %d", pos)
	}
}

// An expected length whose frame table cannot fit the header format must
// fail construction with a parameter error. Extreme values used to wrap
// the planned frame count and panic during session creation.
func TestNewRejectsOverflowingExpectedLength(t *testing.T) {
	memSink := sink.NewMemorySink()

	_, err := New(memSink, testOptions(math.MaxUint64, 1))
	if err == nil {
		t.Fatal("expected error for overflowing expected length")
	}
	if zraerrors.Category(err) != zraerrors.ErrorParameter {
		t.Fatalf("expected parameter error category, got %v", zraerrors.Category(err))
	}
	if pos, _ := memSink.Position(); pos != 0 {
		t.Fatalf("failed construction moved the sink cursor to %d", pos)
	}
}

func TestValidateRejectsNilNestedOptions(t *testing.T) {
	if err := Validate(&domain.CompressorOptions{FrameSize: 256}); !zraerrors.IsValidationError(err) {
		t.Fatalf("expected validation error for nil engine options, got %v", err)
	}

	opts := &domain.CompressorOptions{
		FrameSize:     256,
		EngineOptions: &domain.EngineOptions{Algorithm: "zstd", Level: 3, Concurrency: 1},
	}
	if err := Validate(opts); !zraerrors.IsValidationError(err) {
		t.Fatalf("expected validation error for nil checksum options, got %v", err)
	}
}

// wrongLengthSession hands back a header shorter than the length it
// reported at creation, violating the fixed-header-length contract.
type wrongLengthSession struct {
	headerSize int64
	closed     bool
}

func (s *wrongLengthSession) HeaderSize() int64       { return s.headerSize }
func (s *wrongLengthSession) MaxOutputSize(n int) int { return n }

func (s *wrongLengthSession) FinalizeHeader() ([]byte, error) {
	return make([]byte, s.headerSize-1), nil
}
func (s *wrongLengthSession) Compress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
func (s *wrongLengthSession) Close() error {
	s.closed = true
	return nil
}

// A finalized header whose length differs from the reserved region is a
// broken internal invariant: finalize must fail with the internal category
// before any rewind, leaving the sink's bytes and cursor untouched.
func TestFinalizeAbortsOnHeaderLengthMismatch(t *testing.T) {
	memSink := sink.NewMemorySink()
	if err := memSink.SetPosition(16); err != nil {
		t.Fatalf("SetPosition returned error: %v", err)
	}
	if _, err := memSink.Write([]byte("framedata")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	session := &wrongLengthSession{headerSize: 16}
	zc := &Compressor{
		options:    testOptions(256, 256),
		sink:       memSink,
		session:    session,
		headerSize: session.headerSize,
	}

	snapshot := append([]byte(nil), memSink.Bytes()...)
	posBefore, _ := memSink.Position()

	err := zc.Finalize()
	if err == nil {
		t.Fatal("expected error for header length mismatch")
	}
	if zraerrors.Category(err) != zraerrors.ErrorInternal {
		t.Fatalf("expected internal error category, got %v", zraerrors.Category(err))
	}

	if !bytes.Equal(memSink.Bytes(), snapshot) {
		t.Fatal("aborted finalize mutated the sink")
	}
	if posAfter, _ := memSink.Position(); posAfter != posBefore {
		t.Fatalf("aborted finalize moved the cursor from %d to %d", posBefore, posAfter)
	}
	if !session.closed {
		t.Fatal("aborted finalize did not release the session")
	}
}

func TestWriteBeyondExpectedLength(t *testing.T) {
	memSink := sink.NewMemorySink()
	zc, err := New(memSink, testOptions(256, 256))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := zc.Write(make([]byte, 256)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	err = zc.Write([]byte("overflow"))
	if !errors.Is(err, engine.ErrFrameTableFull) {
		t.Fatalf("expected ErrFrameTableFull, got %v", err)
	}
	if err := zc.Finalize(); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
}
