package document

import (
	"errors"
	"fmt"
)

var (
	// ErrFileRead is returned when a source file cannot be read.
	ErrFileRead = errors.New("failed to read file")
	// ErrUnsupportedFileType is returned when no parser is registered for an extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrParseFailure is returned when a file of a known format has malformed content.
	ErrParseFailure = errors.New("failed to parse document")
	// ErrDirectoryNotFound is returned when the ingestion root does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrInvalidConfig is returned when the chunking configuration is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigError describes a chunking configuration violation.
// It matches ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// FileReadError wraps an I/O failure for path.
func FileReadError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
}

// ParseError wraps a format-specific failure for path.
func ParseError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrParseFailure, path, err)
}

// UnsupportedError reports that path has no registered parser.
func UnsupportedError(path string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
}
