// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath = errors.New("path cannot be empty")
	ErrNotDir    = errors.New("path exists and is not a directory")
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Exists returns true if anything (file, directory, symlink target) exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates path and its parents if needed.
func EnsureDir(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotDir, path)
		}
		return nil
	}
	if err := os.MkdirAll(path, DirPermissions); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// WriteFile writes content to path, truncating any existing file.
func WriteFile(path, content string) error {
	if path == "" {
		return ErrEmptyPath
	}
	// #nosec G306 -- generated documents are meant to be readable
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// CheckWritable verifies that a file can be created in dir.
// The probe file is removed afterwards.
func CheckWritable(dir string) error {
	if dir == "" {
		return ErrEmptyPath
	}
	probe, err := os.CreateTemp(dir, ".texeqn-probe-*")
	if err != nil {
		return fmt.Errorf("creating probe file: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "_config" -> false (name)
//   - "./_config.yml" -> true (relative path)
//   - "/site/_config.yml" -> true (absolute)
//   - "sub/dir" -> true (contains separator)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
