package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Engine      EngineConfig   `yaml:"engine"`
	Checksum    ChecksumConfig `yaml:"checksum"`
	FrameSize   uint32         `yaml:"frame_size"`    // Max raw bytes per frame
	SyncOnFlush bool           `yaml:"sync_on_flush"` // fsync the output on flush
}

// Holds compression-engine configuration.
type EngineConfig struct {
	Algorithm   string `yaml:"algorithm"`   // "zstd" or "lz4"
	Level       uint8  `yaml:"level"`       // Engine-defined level range
	Concurrency uint8  `yaml:"concurrency"` // Goroutines per compress call
}

// Holds frame checksum configuration.
type ChecksumConfig struct {
	Enable    bool   `yaml:"enable"`    // Record per-frame checksums
	Algorithm string `yaml:"algorithm"` // "crc32-ieee", "crc32-castagnoli" or "blake3"
}

// Returns a Config struct with reasonable default values.
func DefaultConfig() *Config {
	return &Config{
		FrameSize:   131072, // 128KB
		SyncOnFlush: false,
		Engine: EngineConfig{
			Algorithm:   "zstd",
			Level:       3,
			Concurrency: 1,
		},
		Checksum: ChecksumConfig{
			Enable:    true,
			Algorithm: "crc32-ieee",
		},
	}
}

// Loads configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.FrameSize == 0 {
		return fmt.Errorf("frame_size must be greater than 0")
	}

	switch config.Engine.Algorithm {
	case "zstd", "lz4":
	default:
		return fmt.Errorf("engine.algorithm must be zstd or lz4, got %q", config.Engine.Algorithm)
	}

	if config.Checksum.Enable {
		switch config.Checksum.Algorithm {
		case "crc32-ieee", "crc32-castagnoli", "blake3":
		default:
			return fmt.Errorf("unsupported checksum.algorithm %q", config.Checksum.Algorithm)
		}
	}

	return nil
}
