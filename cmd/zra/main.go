package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Xpl0itR/zra/config"
	"github.com/Xpl0itR/zra/internal/adapters/engine"
	"github.com/Xpl0itR/zra/internal/adapters/sink"
	"github.com/Xpl0itR/zra/internal/core/domain"
	"github.com/Xpl0itR/zra/internal/core/services/compressor"
	zraerrors "github.com/Xpl0itR/zra/pkg/errors"
	"github.com/Xpl0itR/zra/pkg/logger"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := logger.New("zra")
	defer log.Sync()

	var cfgPath string
	var output string

	root := &cobra.Command{
		Use:          "zra",
		Short:        "Write and inspect zra compressed containers",
		Version:      getVersion(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")

	compressCmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Compress a file into a zra container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(log, cfgPath, args[0], output)
		},
	}
	compressCmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <file>.zra)")

	infoCmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header of a zra container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(log, args[0])
		},
	}

	root.AddCommand(compressCmd, infoCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func runCompress(log *zap.SugaredLogger, cfgPath, input, output string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return err
	}

	metadata, err := sourceMetadata(input, stat)
	if err != nil {
		return err
	}

	if output == "" {
		output = input + ".zra"
	}
	fileSink, err := sink.CreateFileSink(output, cfg.SyncOnFlush)
	if err != nil {
		return err
	}

	zc, err := compressor.New(fileSink, &domain.CompressorOptions{
		ExpectedLength: uint64(stat.Size()),
		FrameSize:      cfg.FrameSize,
		Metadata:       metadata,
		OwnsSink:       true,
		EngineOptions: &domain.EngineOptions{
			Algorithm:   domain.EngineAlgorithm(cfg.Engine.Algorithm),
			Level:       cfg.Engine.Level,
			Concurrency: cfg.Engine.Concurrency,
		},
		ChecksumOptions: &domain.ChecksumOptions{
			Enable:    cfg.Checksum.Enable,
			Algorithm: domain.ChecksumAlgorithm(cfg.Checksum.Algorithm),
		},
	})
	if err != nil {
		fileSink.Close()
		if ve := zraerrors.AsValidationError(err); ve != nil {
			log.Infow("invalid compressor options", "field", ve.Field, "value", ve.Value, "error", ve.Err)
		}
		return err
	}

	_, copyErr := zc.Copy(in)
	if finErr := zc.Finalize(); copyErr == nil {
		copyErr = finErr
	}
	if copyErr != nil {
		return copyErr
	}

	stats := zc.Stats()
	log.Infow("container written",
		"output", output,
		"frames", stats.FramesWritten,
		"raw_bytes", stats.RawBytes,
		"compressed_bytes", stats.CompressedBytes,
		"header_bytes", stats.HeaderSize,
	)
	return nil
}

// sourceMetadata encodes the input file's identity as the container's
// opaque metadata blob.
func sourceMetadata(input string, stat os.FileInfo) ([]byte, error) {
	meta, err := structpb.NewStruct(map[string]any{
		"name":     filepath.Base(input),
		"size":     stat.Size(),
		"mod_time": stat.ModTime().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("error building metadata: %w", err)
	}
	return proto.Marshal(meta)
}

func runInfo(log *zap.SugaredLogger, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	header, err := engine.ReadHeader(file)
	if err != nil {
		return err
	}

	log.Infow("container header",
		"codec", codecName(header.Codec),
		"level", header.Level,
		"checksum", header.Checksum,
		"frame_size", header.FrameSize,
		"frame_count", header.FrameCount,
		"table_capacity", len(header.Entries),
		"raw_length", header.RawLength,
		"metadata_bytes", len(header.Metadata),
	)

	// Metadata is opaque to the format; the compress command happens to
	// store a protobuf struct, so try that before giving up.
	if len(header.Metadata) > 0 {
		var meta structpb.Struct
		if err := proto.Unmarshal(header.Metadata, &meta); err == nil {
			log.Infow("container metadata", "fields", meta.AsMap())
		}
	}

	return nil
}

func codecName(codec uint8) string {
	switch codec {
	case engine.CodecZstd:
		return "zstd"
	case engine.CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", codec)
	}
}
