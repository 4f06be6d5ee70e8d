package compress

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgcompress "github.com/dherrin/packetd/pkg/compress"
	"github.com/dherrin/packetd/pkg/dgram"
)

func packetFrom(payload []byte) *dgram.Context {
	return &dgram.Context{
		From:    &net.UDPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 8080},
		Payload: payload,
	}
}

func TestRouteDecodesSnappyPayload(t *testing.T) {
	e := New()

	ctx := packetFrom(pkgcompress.CompressSnappy([]byte("ping")))
	ok, err := e.Route(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ping", string(ctx.Payload))
}

func TestRoutePassesPlainPayloadThrough(t *testing.T) {
	e := New()

	ctx := packetFrom([]byte("just text"))
	ok, err := e.Route(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "just text", string(ctx.Payload))
}
