//go:build embed_onnx && linux && amd64

package onnxlib

import _ "embed"

// Copy the linux/amd64 runtime to lib/linux_amd64/ before building with -tags embed_onnx.
//
//go:embed lib/linux_amd64/libonnxruntime.so
var libraryData []byte

const libraryName = "libonnxruntime.so"
