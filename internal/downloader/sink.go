package downloader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tanq16/redl/internal/utils"
)

// Sink receives the body of the terminal response in order.
type Sink interface {
	io.Writer
	// Reset drops everything written so far; used when a transfer is retried
	// from the start.
	Reset() error
	// Finalize flushes and publishes the file. The download only counts as
	// done once it returns nil.
	Finalize() error
	// Discard releases the sink and removes partial data.
	Discard() error
}

const sinkBufferSize = 256 * 1024

// fileSink writes to "<path>.part" and renames onto path on Finalize.
type fileSink struct {
	path     string
	tempPath string
	file     *os.File
	buf      *bufio.Writer
}

func openFileSink(path string) (Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}
	tempPath := path + utils.TempSuffix
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return &fileSink{
		path:     path,
		tempPath: tempPath,
		file:     file,
		buf:      bufio.NewWriterSize(file, sinkBufferSize),
	}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *fileSink) Reset() error {
	s.buf.Reset(s.file)
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("error truncating output file: %w", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error rewinding output file: %w", err)
	}
	return nil
}

func (s *fileSink) Finalize() error {
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("error flushing output file: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("error syncing output file: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}
	if err := os.Rename(s.tempPath, s.path); err != nil {
		return fmt.Errorf("error renaming (finalizing) output file: %w", err)
	}
	return nil
}

func (s *fileSink) Discard() error {
	if err := s.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	if err := os.Remove(s.tempPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
