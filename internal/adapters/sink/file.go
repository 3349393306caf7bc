// Package sink provides random-access sink implementations the streaming
// compressor writes containers to.
package sink

import (
	"fmt"
	"io"
	"os"
)

// FileSink adapts an *os.File to the random-access sink port. Regular
// files support both the backward seek at finalization and the sparse
// forward seek that reserves the header region.
type FileSink struct {
	file        *os.File
	syncOnFlush bool
}

// NewFileSink wraps an open file. The file's current position becomes the
// sink's position; the caller keeps ownership of the handle unless the
// compressor is configured to own the sink.
func NewFileSink(file *os.File, syncOnFlush bool) *FileSink {
	return &FileSink{file: file, syncOnFlush: syncOnFlush}
}

// CreateFileSink creates (or truncates) a file at path and wraps it.
// 0644 permissions: owner can read/write, others can only read.
func CreateFileSink(path string, syncOnFlush bool) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating sink file: %w", err)
	}
	return &FileSink{file: file, syncOnFlush: syncOnFlush}, nil
}

// File returns the underlying handle, for callers that need to reopen or
// stat the finished container.
func (s *FileSink) File() *os.File {
	return s.file
}

func (s *FileSink) Position() (int64, error) {
	return s.file.Seek(0, io.SeekCurrent)
}

func (s *FileSink) SetPosition(offset int64) error {
	_, err := s.file.Seek(offset, io.SeekStart)
	return err
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Flush syncs file contents to stable storage when configured to.
// Writes go straight to the file handle, so there is no userspace buffer
// to drain.
func (s *FileSink) Flush() error {
	if !s.syncOnFlush {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}
	return nil
}
