// Package compress transparently decompresses inbound payloads.
package compress

import (
	"github.com/dherrin/packetd/pkg/compress"
	"github.com/dherrin/packetd/pkg/dgram"
)

// Extension rewrites a packet's payload with its snappy-decoded form before
// the handler sees it. Decoding is best-effort: payloads that are not valid
// snappy pass through unchanged, so plain-text clients keep working.
type Extension struct {
	codec compress.Compressor
}

// New creates the decompression extension.
func New() *Extension {
	codec, _ := compress.New(compress.TypeSnappy)
	return &Extension{codec: codec}
}

func (e *Extension) Name() string { return "compress" }

func (e *Extension) OnStart(dgram.Store) error { return nil }

func (e *Extension) Route(ctx *dgram.Context) (bool, error) {
	if decoded, err := e.codec.Decompress(ctx.Payload); err == nil {
		ctx.Payload = decoded
	}
	return true, nil
}

// Clone shares the codec: it is stateless.
func (e *Extension) Clone() dgram.Extension { return e }
