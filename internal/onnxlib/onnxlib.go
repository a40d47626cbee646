// Package onnxlib unpacks the ONNX Runtime shared library bundled into
// embed_onnx builds, so the audit command works without a system install.
package onnxlib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotEmbedded is returned by builds without a bundled runtime.
var ErrNotEmbedded = errors.New("no embedded ONNX Runtime library for this platform")

// Embedded reports whether this binary carries a runtime library.
func Embedded() bool {
	return len(libraryData) > 0
}

// Extract writes the bundled library into a fresh temporary directory and
// returns the library path.
func Extract() (string, error) {
	if !Embedded() {
		return "", ErrNotEmbedded
	}

	dir, err := os.MkdirTemp("", "slidegen-onnxrt-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp dir: %w", err)
	}

	libPath := filepath.Join(dir, libraryName)
	if err := os.WriteFile(libPath, libraryData, 0755); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("cannot write library: %w", err)
	}
	return libPath, nil
}
