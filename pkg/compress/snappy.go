package compress

import (
	"github.com/golang/snappy"
)

// CompressSnappy compresses data using the Snappy block format.
func CompressSnappy(src []byte) []byte {
	return snappy.Encode(nil, src)
}

// DecompressSnappy decompresses Snappy block-format data.
func DecompressSnappy(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}
