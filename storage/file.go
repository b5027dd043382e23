package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

// FileSink implements a report sink using the local file system.
// Reports are stored as individual files under the base directory.
type FileSink struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileSink creates a new file report sink using the specified base
// directory, creating it if it does not exist.
func NewFileSink(baseDir string, log *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &FileSink{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Store writes a report to the file system and returns the path it was
// written to.
func (s *FileSink) Store(ctx context.Context, name string, data []byte) (string, error) {
	filePath := filepath.Join(s.baseDir, filepath.Base(name))

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	s.log.Debug("Stored report in file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return filePath, nil
}

// Fetch reads a report back from the file system by name.
// Returns ErrReportNotFound if the file doesn't exist.
func (s *FileSink) Fetch(ctx context.Context, name string) ([]byte, error) {
	filePath := filepath.Join(s.baseDir, filepath.Base(name))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, interfaces.ErrReportNotFound
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	s.log.Debug("Fetched report from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return data, nil
}

// Available checks if the sink is accessible by verifying the base directory exists.
func (s *FileSink) Available(ctx context.Context) bool {
	_, err := os.Stat(s.baseDir)
	if err != nil {
		s.log.Debug("File sink unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this sink.
func (s *FileSink) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this sink.
func (s *FileSink) LocationURI() string {
	return s.locationURI
}
