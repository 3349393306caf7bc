package domain

import (
	"github.com/Xpl0itR/zra/internal/core/ports"
)

// ChecksumAlgorithm represents supported frame checksum algorithms.
type ChecksumAlgorithm string

// ChecksumOptions defines configuration for per-frame checksums.
type ChecksumOptions struct {
	// Enable controls whether frame checksums are recorded.
	// When true, a 32-bit checksum of each frame's raw input is stored
	// in the container's frame table alongside the compressed size.
	// When false, table entries carry only the compressed size, making
	// the header smaller at the cost of corruption detection.
	//
	// Default: true
	Enable bool

	// Algorithm specifies which checksum algorithm to use.
	// Defaults to CRC32-IEEE if not specified.
	Algorithm ChecksumAlgorithm

	// Custom allows using a custom ChecksumPort implementation.
	// If provided, it takes precedence over Algorithm.
	Custom ports.ChecksumPort
}
