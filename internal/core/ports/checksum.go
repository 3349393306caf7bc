package ports

// ChecksumPort calculates and verifies 32-bit frame checksums.
// The width matches the checksum slot of a container frame table entry.
type ChecksumPort interface {
	// Calculate returns the checksum of the provided data.
	Calculate(data []byte) uint32

	// Verify reports whether the data matches the expected checksum.
	Verify(data []byte, expected uint32) bool

	// Name returns the algorithm identifier.
	Name() string
}
