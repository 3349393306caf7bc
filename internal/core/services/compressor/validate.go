package compressor

import (
	"errors"
	"fmt"

	"github.com/Xpl0itR/zra/internal/adapters/checksum"
	"github.com/Xpl0itR/zra/internal/adapters/engine"
	"github.com/Xpl0itR/zra/internal/core/domain"
	zraerrors "github.com/Xpl0itR/zra/pkg/errors"
)

// Validate checks compressor options against acceptable ranges. Engine
// options get a second, authoritative check inside the engine factory;
// validating here keeps construction failures ahead of any resource
// acquisition. Nested options left nil are rejected rather than defaulted;
// New fills defaults before validating.
func Validate(opts *domain.CompressorOptions) error {
	if opts.EngineOptions == nil {
		return zraerrors.NewValidationError(
			"engine", nil, errors.New("engine options are required"),
		)
	}
	if opts.ChecksumOptions == nil {
		return zraerrors.NewValidationError(
			"checksum", nil, errors.New("checksum options are required"),
		)
	}

	if opts.FrameSize == 0 {
		return zraerrors.NewValidationError(
			"frameSize", opts.FrameSize, errors.New("frame size must be greater than zero"),
		)
	}

	if opts.FrameSize > MaxFrameSize {
		return zraerrors.NewValidationError(
			"frameSize", opts.FrameSize,
			fmt.Errorf("frame size must not exceed %d bytes", MaxFrameSize),
		)
	}

	if len(opts.Metadata) > MaxMetadataSize {
		return zraerrors.NewValidationError(
			"metadata", len(opts.Metadata),
			fmt.Errorf("metadata must not exceed %d bytes", MaxMetadataSize),
		)
	}

	if err := engine.Validate(opts.EngineOptions); err != nil {
		return zraerrors.NewValidationError("engine", opts.EngineOptions.Algorithm, err)
	}

	if opts.ChecksumOptions.Enable {
		if err := checksum.Validate(opts.ChecksumOptions); err != nil {
			return err
		}
	}

	return nil
}
