// Package compress provides whole-payload compression helpers. Datagrams are
// self-contained, so everything here is block-oriented: one buffer in, one
// buffer out, no streaming state between packets.
package compress

import (
	"fmt"
)

// Type represents the compression algorithm type.
type Type string

const (
	// TypeNone means no compression.
	TypeNone Type = "none"
	// TypeSnappy uses Snappy compression (fast, moderate ratio).
	TypeSnappy Type = "snappy"
	// TypeGzip uses Gzip compression (slower, better ratio).
	TypeGzip Type = "gzip"
)

// Compressor compresses and decompresses whole payloads.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Type() Type
}

type snappyCompressor struct{}

func (c snappyCompressor) Compress(src []byte) ([]byte, error) {
	return CompressSnappy(src), nil
}

func (c snappyCompressor) Decompress(src []byte) ([]byte, error) {
	return DecompressSnappy(src)
}

func (c snappyCompressor) Type() Type { return TypeSnappy }

type gzipCompressor struct{}

func (c gzipCompressor) Compress(src []byte) ([]byte, error) {
	return CompressGzip(src)
}

func (c gzipCompressor) Decompress(src []byte) ([]byte, error) {
	return DecompressGzip(src)
}

func (c gzipCompressor) Type() Type { return TypeGzip }

type noneCompressor struct{}

func (c noneCompressor) Compress(src []byte) ([]byte, error)   { return src, nil }
func (c noneCompressor) Decompress(src []byte) ([]byte, error) { return src, nil }
func (c noneCompressor) Type() Type                            { return TypeNone }

// New returns the Compressor for the given type.
func New(t Type) (Compressor, error) {
	switch t {
	case TypeNone:
		return noneCompressor{}, nil
	case TypeSnappy:
		return snappyCompressor{}, nil
	case TypeGzip:
		return gzipCompressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}
