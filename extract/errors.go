package extract

import "errors"

var (
	// ErrDecodeFailed indicates text content could not be decoded with the
	// requested or detected encoding. Fatal for the file.
	ErrDecodeFailed = errors.New("text decode failed")

	// ErrEmptyDocument indicates a document with no usable content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrUnsupportedType indicates no extractor is registered for the
	// detected file type.
	ErrUnsupportedType = errors.New("unsupported file type")
)
