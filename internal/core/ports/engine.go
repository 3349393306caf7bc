package ports

// SessionPort is one live compression session produced by an EnginePort.
// A session owns the full framing state of a single container: it knows the
// exact header length its parameters produce, compresses one frame per call,
// and emits the finished header once all frames are known.
//
// Sessions are stateful and not safe for concurrent use; the streaming
// compressor is their only owner and serializes all calls.
type SessionPort interface {
	// HeaderSize returns the exact byte length of the container header
	// this session will produce. The value is fixed at session creation
	// and never changes for the session's lifetime.
	HeaderSize() int64

	// MaxOutputSize returns a provable upper bound on the compressed
	// size of a chunk of inputLen raw bytes. Destination buffers sized
	// to this bound are never resized by Compress.
	MaxOutputSize(inputLen int) int

	// Compress compresses one input chunk into one frame, appending the
	// result to dst (which must have capacity for MaxOutputSize of the
	// chunk). It returns the compressed frame bytes, which may alias
	// dst's backing array. The input slice is never mutated.
	//
	// Fails if the chunk exceeds the session's frame size, if the frame
	// table sized at creation is already full, or if the session is
	// closed.
	Compress(dst, src []byte) ([]byte, error)

	// FinalizeHeader produces the finished header bytes now that all
	// frames are known. The returned length always equals HeaderSize.
	FinalizeHeader() ([]byte, error)

	// Close releases the session's resources. A closed session rejects
	// all further operations.
	Close() error
}

// EnginePort creates compression sessions. Implementations wrap a concrete
// codec; swapping engines never changes the streaming compressor's logic.
type EnginePort interface {
	// NewSession creates a session for one container with the given
	// parameters. Returns an error for invalid parameter combinations,
	// such as a frame size of zero.
	NewSession(params *SessionParams) (SessionPort, error)
}

// SessionParams carries the per-container parameters a session is created
// with. Together with the engine's own configuration they fully determine
// the header length before any data is compressed.
type SessionParams struct {
	// ExpectedLength is the total raw input length the frame table is
	// sized for.
	ExpectedLength uint64

	// FrameSize is the maximum raw bytes per frame.
	FrameSize uint32

	// Checksum toggles per-frame checksum entries in the frame table.
	Checksum bool

	// Metadata is the opaque blob embedded in the header. May be nil.
	Metadata []byte
}
