//go:build embed_onnx && darwin && arm64

package onnxlib

import _ "embed"

// Copy the darwin/arm64 runtime to lib/darwin_arm64/ before building with -tags embed_onnx.
//
//go:embed lib/darwin_arm64/libonnxruntime.dylib
var libraryData []byte

const libraryName = "libonnxruntime.dylib"
