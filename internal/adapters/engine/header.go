package engine

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic bytes identifying a zra container header.
var Magic = [4]byte{'Z', 'R', 'A', '1'}

const (
	// HeaderVersion is the current container format version.
	HeaderVersion uint8 = 1

	// headerFixedSize is the length of the fixed fields preceding the
	// metadata blob and the frame table.
	headerFixedSize = 32

	// flagChecksum marks headers whose frame table entries carry a
	// 32-bit checksum after the compressed size.
	flagChecksum uint8 = 1 << 0

	// storedBit marks a frame table entry whose payload was stored raw
	// because the codec could not shrink it. The remaining bits hold
	// the frame's byte length.
	storedBit uint32 = 1 << 31
)

// Codec identifiers recorded in the header.
const (
	CodecZstd uint8 = 1
	CodecLZ4  uint8 = 2
)

// FrameEntry describes one frame in the container's frame table.
type FrameEntry struct {
	// CompressedSize is the exact byte length of the frame as written
	// to the sink.
	CompressedSize uint32

	// Checksum is the 32-bit checksum of the frame's raw input.
	// Only meaningful when the header's checksum flag is set.
	Checksum uint32

	// Stored reports that the frame holds the raw input unchanged.
	Stored bool
}

// Header is the decoded form of a container header. Its encoded length is
// fully determined by the session parameters (expected input length, frame
// size, checksum flag, metadata length), so it can be reserved at the start
// of the output before any data is compressed.
type Header struct {
	Codec      uint8
	Level      uint8
	Checksum   bool
	FrameSize  uint32
	FrameCount uint32 // Frames actually written; may be below table capacity.
	RawLength  uint64 // Total raw input bytes actually consumed.
	Metadata   []byte
	Entries    []FrameEntry // Sized to table capacity; unwritten entries are zero.
}

// plannedFrames returns the frame table capacity for an expected input
// length, one entry per full-or-partial frame. The quotient-plus-remainder
// form cannot overflow, unlike the usual rounding-up sum.
func plannedFrames(expectedLength uint64, frameSize uint32) uint64 {
	if frameSize == 0 {
		return 0
	}
	planned := expectedLength / uint64(frameSize)
	if expectedLength%uint64(frameSize) != 0 {
		planned++
	}
	return planned
}

func tableEntrySize(checksum bool) int {
	if checksum {
		return 8
	}
	return 4
}

// headerSize computes the exact encoded header length for the given session
// parameters. The value never changes once a session is created. The
// multiplication is unchecked; callers must bound the planned frame count
// against the format limit first.
func headerSize(expectedLength uint64, frameSize uint32, checksum bool, metaLen int) int64 {
	planned := plannedFrames(expectedLength, frameSize)
	return int64(headerFixedSize + uint64(metaLen) + planned*uint64(tableEntrySize(checksum)))
}

// Size returns the encoded byte length of the header.
func (h *Header) Size() int64 {
	return int64(headerFixedSize + len(h.Metadata) + len(h.Entries)*tableEntrySize(h.Checksum))
}

// Encode serializes the header. The returned slice length always equals
// Size().
func (h *Header) Encode() []byte {
	buf := make([]byte, h.Size())

	copy(buf[0:4], Magic[:])
	buf[4] = HeaderVersion
	buf[5] = h.Codec
	if h.Checksum {
		buf[6] |= flagChecksum
	}
	buf[7] = h.Level
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Size()))
	binary.LittleEndian.PutUint32(buf[12:16], h.FrameSize)
	binary.LittleEndian.PutUint32(buf[16:20], h.FrameCount)
	binary.LittleEndian.PutUint64(buf[20:28], h.RawLength)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(h.Metadata)))

	offset := headerFixedSize + copy(buf[headerFixedSize:], h.Metadata)
	for _, entry := range h.Entries {
		size := entry.CompressedSize
		if entry.Stored {
			size |= storedBit
		}
		binary.LittleEndian.PutUint32(buf[offset:], size)
		offset += 4
		if h.Checksum {
			binary.LittleEndian.PutUint32(buf[offset:], entry.Checksum)
			offset += 4
		}
	}

	return buf
}

// DecodeHeader parses a fully read header. The input must contain the whole
// header region; trailing bytes are ignored.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < headerFixedSize {
		return nil, fmt.Errorf("header too short: need %d bytes, got %d", headerFixedSize, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return nil, fmt.Errorf("invalid magic: expected %x, got %x", Magic, data[0:4])
	}
	if data[4] != HeaderVersion {
		return nil, fmt.Errorf("unsupported header version %d", data[4])
	}

	header := Header{
		Codec:      data[5],
		Checksum:   data[6]&flagChecksum != 0,
		Level:      data[7],
		FrameSize:  binary.LittleEndian.Uint32(data[12:16]),
		FrameCount: binary.LittleEndian.Uint32(data[16:20]),
		RawLength:  binary.LittleEndian.Uint64(data[20:28]),
	}

	length := int(binary.LittleEndian.Uint32(data[8:12]))
	metaLen := int(binary.LittleEndian.Uint32(data[28:32]))
	if length < headerFixedSize+metaLen || length > len(data) {
		return nil, fmt.Errorf("invalid header length %d", length)
	}

	tableLen := length - headerFixedSize - metaLen
	entrySize := tableEntrySize(header.Checksum)
	if tableLen%entrySize != 0 {
		return nil, fmt.Errorf("frame table length %d is not a multiple of entry size %d", tableLen, entrySize)
	}

	if metaLen > 0 {
		header.Metadata = append([]byte(nil), data[headerFixedSize:headerFixedSize+metaLen]...)
	}

	offset := headerFixedSize + metaLen
	header.Entries = make([]FrameEntry, tableLen/entrySize)
	for i := range header.Entries {
		size := binary.LittleEndian.Uint32(data[offset:])
		header.Entries[i].Stored = size&storedBit != 0
		header.Entries[i].CompressedSize = size &^ storedBit
		offset += 4
		if header.Checksum {
			header.Entries[i].Checksum = binary.LittleEndian.Uint32(data[offset:])
			offset += 4
		}
	}

	if int(header.FrameCount) > len(header.Entries) {
		return nil, fmt.Errorf(
			"frame count %d exceeds table capacity %d", header.FrameCount, len(header.Entries),
		)
	}

	return &header, nil
}

// ReadHeader reads and decodes a container header from the start of r.
// It reads exactly the header region and nothing past it.
func ReadHeader(r io.Reader) (*Header, error) {
	fixed := make([]byte, headerFixedSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	length := int(binary.LittleEndian.Uint32(fixed[8:12]))
	if length < headerFixedSize {
		return nil, fmt.Errorf("invalid header length %d", length)
	}

	data := make([]byte, length)
	copy(data, fixed)
	if _, err := io.ReadFull(r, data[headerFixedSize:]); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	return DecodeHeader(data)
}
