package checksum

import (
	"github.com/Xpl0itR/zra/internal/core/domain"
	"github.com/Xpl0itR/zra/internal/core/ports"
	"github.com/Xpl0itR/zra/pkg/errors"
)

const (
	// CRC32IEEE uses the IEEE polynomial for CRC32 checksums.
	CRC32IEEE domain.ChecksumAlgorithm = "crc32-ieee"

	// CRC32Castagnoli uses the Castagnoli polynomial, which has hardware
	// support on most modern CPUs.
	CRC32Castagnoli domain.ChecksumAlgorithm = "crc32-castagnoli"

	// Blake3 provides BLAKE3 hashes truncated to 32 bits.
	Blake3 domain.ChecksumAlgorithm = "blake3"
)

// Returns recommended checksum settings.
func DefaultOptions() *domain.ChecksumOptions {
	return &domain.ChecksumOptions{
		Enable:    true,
		Algorithm: CRC32IEEE,
	}
}

func Validate(input *domain.ChecksumOptions) error {
	if input.Custom == nil {
		switch input.Algorithm {
		case CRC32IEEE, CRC32Castagnoli, Blake3:
		default:
			return errors.NewValidationError(
				"checksum.algorithm", input.Algorithm, errUnsupportedAlgorithm,
			)
		}
	}
	return nil
}

// NewCheckSummer returns the ChecksumPort implementation for the given
// algorithm. Callers must validate the algorithm first; unknown values
// fall back to CRC32-IEEE.
func NewCheckSummer(algorithm domain.ChecksumAlgorithm) ports.ChecksumPort {
	switch algorithm {
	case CRC32Castagnoli:
		return NewCRC32Castagnoli()
	case Blake3:
		return NewBlake3()
	default:
		return NewCRC32IEEE()
	}
}
