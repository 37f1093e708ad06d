// Package fsops provides the filesystem abstraction relkit mutates the
// workspace through.
//
// All filesystem access in relkit goes through the FS interface: the clean
// step deletes build directories through it, receipts are written through
// it, and artifact collection globs through it. The in-memory FakeFS makes
// every failure mode injectable in tests, including the permission errors
// the clean step must surface.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS provides an abstraction for filesystem operations.
type FS interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// AtomicWrite writes data to path atomically using temp file + rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// RemoveAll removes a path and all its contents. Removing a path that
	// does not exist is not an error.
	RemoveAll(path string) error

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// Stat returns file info for the given path.
	Stat(path string) (os.FileInfo, error)

	// Glob returns the paths matching the given pattern, sorted.
	Glob(pattern string) ([]string, error)
}

// RealFS implements FS using the os package.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// ReadFile reads the entire contents of a file.
func (f *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// AtomicWrite writes data to a temp file in the target directory and
// renames it into place.
func (f *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// MkdirAll creates a directory and all parent directories.
func (f *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// RemoveAll removes a path and all its contents.
func (f *RealFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Exists checks if a path exists.
func (f *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Stat returns file info for the given path.
func (f *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Glob returns the paths matching the given pattern, sorted.
func (f *RealFS) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}
