//go:build embed_onnx && windows && amd64

package onnxlib

import _ "embed"

// Copy the windows/amd64 runtime to lib/windows_amd64/ before building with -tags embed_onnx.
//
//go:embed lib/windows_amd64/onnxruntime.dll
var libraryData []byte

const libraryName = "onnxruntime.dll"
