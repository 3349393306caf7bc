package ports

// RandomAccessSink is an external byte store supporting positioned writes
// and backward seeks.
//
// The streaming compressor reserves the container header region by seeking
// past it, appends frames at the cursor, and seeks backward at finalization
// to fill the reserved region in. The sink must therefore support seeking
// backward after forward writes: forward-only sinks such as live network
// sockets cannot be used. The reservation is a pure seek, never a zero
// fill, so sparse positioning must be supported too.
type RandomAccessSink interface {
	// Position returns the current absolute write position.
	Position() (int64, error)

	// SetPosition moves the write cursor to an absolute position.
	// Positions past the current end are permitted; the gap is filled
	// when it is later written over.
	SetPosition(offset int64) error

	// Write appends len(p) bytes at the current position and advances
	// the cursor by the amount written.
	Write(p []byte) (int, error)

	// Flush pushes any buffered bytes to the underlying store.
	Flush() error

	// Close releases the sink. Only the owner should call it.
	Close() error
}
