//go:build !embed_onnx

package onnxlib

import (
	"errors"
	"testing"
)

func TestExtractWithoutEmbeddedLibrary(t *testing.T) {
	if Embedded() {
		t.Fatal("plain builds should not embed a runtime")
	}
	if _, err := Extract(); !errors.Is(err, ErrNotEmbedded) {
		t.Fatalf("expected ErrNotEmbedded, got %v", err)
	}
}
