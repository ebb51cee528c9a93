// Package fs provides the filesystem abstraction used by the memo engine.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the engine needs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//
// Tests substitute their own [FS] implementations to inject failures into
// specific operations (for example, a failing atomic write) without touching
// the real filesystem contract.
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// Satisfied by [os.File]; usable with all standard library functions that
// accept [io.Reader] or [io.Closer].
type File interface {
	io.ReadCloser

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations used for memo files and their sources.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so a reader never observes a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
