package dgram

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAndSendTo(t *testing.T) {
	tr, err := Bind("127.0.0.1:0")
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, SendTo(tr.LocalAddr().String(), []byte("hello")))

	buf := make([]byte, 64)
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, _, err := tr.ReadFrom(buf)
		done <- result{n, err}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "hello", string(buf[:r.n]))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}
}

func TestBindBadAddress(t *testing.T) {
	_, err := Bind("not-an-address:xyz")
	assert.Error(t, err)
}

func TestServeOverRealSocket(t *testing.T) {
	reg, err := NewBuilder().
		Handle(func(ctx *Context) error { return ctx.Reply([]byte("pong")) }).
		Build()
	require.NoError(t, err)

	tr, err := Bind("127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- NewServer(tr, reg).Serve() }()

	client, err := net.Dial("udp", tr.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte("ping"))
	require.NoError(t, err)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 64)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(buf[:n]))

	// Closing the socket ends the dispatch loop cleanly.
	require.NoError(t, tr.Close())
	assert.NoError(t, waitServe(t, errCh))
}
