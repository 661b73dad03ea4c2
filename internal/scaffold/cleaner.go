// Package scaffold removes template variant files that the rendered project did not opt into.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	sampleFileNameConstant            = "hello.go"
	loggerNotConfiguredMessage        = "logger not configured"
	fileSystemNotConfiguredMessage    = "file system not configured"
	sampleRemovedLogMessageConstant   = "Removed sample source file"
	sampleAbsentLogMessageConstant    = "Sample source file already absent"
	sampleRemovalErrorTemplateMessage = "unable to remove sample file %s: %w"
	removedPathLogFieldConstant       = "path"
)

// Configuration errors reported by NewCleaner.
var (
	ErrLoggerNotConfigured     = errors.New(loggerNotConfiguredMessage)
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessage)
)

// FileSystem abstracts the file operations the cleaner performs.
type FileSystem interface {
	Remove(path string) error
}

// OSFileSystem implements FileSystem against the host file system.
type OSFileSystem struct{}

// Remove deletes the file at path.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Options selects which variant files survive cleanup.
type Options struct {
	// ProjectDirectory is the root of the rendered project.
	ProjectDirectory string
	// ModuleName is the project package directory holding the sample source file.
	ModuleName string
	// IncludeSample keeps the sample source file in place when true.
	IncludeSample bool
}

// Cleaner deletes variant scaffold files a rendered project did not select.
type Cleaner struct {
	logger     *zap.Logger
	fileSystem FileSystem
}

// NewCleaner constructs a Cleaner with the supplied logger and file system.
func NewCleaner(logger *zap.Logger, fileSystem FileSystem) (*Cleaner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Cleaner{logger: logger, fileSystem: fileSystem}, nil
}

// Clean removes the sample source file unless the project opted to keep it.
// A file that is already gone is not an error.
func (cleaner *Cleaner) Clean(options Options) error {
	if options.IncludeSample {
		return nil
	}

	samplePath := filepath.Join(options.ProjectDirectory, options.ModuleName, sampleFileNameConstant)
	removalError := cleaner.fileSystem.Remove(samplePath)
	if removalError == nil {
		cleaner.logger.Debug(sampleRemovedLogMessageConstant, zap.String(removedPathLogFieldConstant, samplePath))
		return nil
	}
	if errors.Is(removalError, os.ErrNotExist) {
		cleaner.logger.Debug(sampleAbsentLogMessageConstant, zap.String(removedPathLogFieldConstant, samplePath))
		return nil
	}
	return fmt.Errorf(sampleRemovalErrorTemplateMessage, samplePath, removalError)
}
