// Package fileops provides the atomic file operations the rule store and the
// deployment service are built on. Writes go through a temp-file-and-rename
// sequence so a rule file on disk is always either the old version or the new
// one, never a partial write.
package fileops

import (
	"fmt"
	"io"
	"os"
)

// AtomicCopy copies srcPath to destPath, overwriting any existing file.
// The copy is staged in a temporary file next to the destination and renamed
// into place, so readers never observe a partially copied file.
//
// Both paths are used as given; callers are responsible for validating them.
func AtomicCopy(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	return atomicWrite(destPath, func(w io.Writer) error {
		_, err := io.Copy(w, srcFile)
		return err
	})
}

// AtomicWriteFile writes data to path with the same temp-and-rename staging
// as AtomicCopy.
func AtomicWriteFile(path string, data []byte) error {
	return atomicWrite(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func atomicWrite(destPath string, fill func(io.Writer) error) error {
	tempPath := destPath + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	var ok bool
	defer func() {
		tempFile.Close()
		if !ok {
			os.Remove(tempPath)
		}
	}()

	if err := fill(tempFile); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	ok = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parents.
// Safe to call repeatedly.
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
