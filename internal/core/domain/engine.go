package domain

// EngineAlgorithm identifies a supported compression engine.
type EngineAlgorithm string

// EngineOptions configures the compression engine used for frame payloads.
// Engine settings affect both the compression ratio and the CPU cost of
// every Write call.
type EngineOptions struct {
	// Algorithm selects the compression codec. Defaults to zstd if not
	// specified.
	Algorithm EngineAlgorithm

	// Level defines the compression level, in the selected engine's own
	// range. Supported ranges:
	//   - zstd: 1 (fastest) to 4 (best), mapping to the encoder's speed levels
	//   - lz4:  0 (fast path) to 9 (deepest match search)
	// If not specified, the engine's balanced default is used.
	Level uint8

	// Concurrency specifies the number of goroutines the engine may use
	// internally per compress call. Higher values may improve throughput
	// on large frames but increase memory usage. Default is 1, matching
	// the compressor's single-writer model.
	Concurrency uint8
}
