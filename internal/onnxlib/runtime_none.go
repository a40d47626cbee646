//go:build !(embed_onnx && ((linux && amd64) || (darwin && arm64) || (windows && amd64)))

package onnxlib

var libraryData []byte

const libraryName = ""
