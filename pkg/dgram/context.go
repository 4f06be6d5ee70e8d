package dgram

import (
	"net"

	"github.com/google/uuid"
)

// replySink receives bytes produced by Context.Reply. Inline packets write
// straight to the transport; delegated packets stage into a worker's output
// buffer and are flushed as one datagram after the job completes.
type replySink interface {
	reply(p []byte, to net.Addr) error
}

// transportSink replies directly over the server's transport.
type transportSink struct {
	t Transport
}

func (s transportSink) reply(p []byte, to net.Addr) error {
	_, err := s.t.WriteTo(p, to)
	return err
}

// Context is the per-packet record handed to extensions and handlers. It is
// created fresh for every inbound datagram and discarded once the handler
// returns; the Store it references is the one long-lived server-wide store.
type Context struct {
	// ID identifies the packet in logs.
	ID string
	// From is the sender's address.
	From net.Addr
	// Payload is the raw datagram body. Extensions may rewrite it in place
	// before the handler runs.
	Payload []byte

	store    Store
	handlers []*Handler
	sink     replySink
}

func newContext(payload []byte, from net.Addr, store Store, handlers []*Handler, sink replySink) *Context {
	return &Context{
		ID:       uuid.NewString(),
		From:     from,
		Payload:  payload,
		store:    store,
		handlers: handlers,
		sink:     sink,
	}
}

// Store returns the server-wide shared store.
func (c *Context) Store() Store {
	return c.store
}

// Handler looks up a sibling handler by exact name match, or nil when no
// handler carries that name.
func (c *Context) Handler(name string) *Handler {
	for _, h := range c.handlers {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// Handlers returns all registered handlers in registration order.
func (c *Context) Handlers() []*Handler {
	return c.handlers
}

// Reply sends p back to the packet's sender. When the packet was delegated to
// a worker the bytes are staged and sent as a single datagram once the job is
// done.
func (c *Context) Reply(p []byte) error {
	return c.sink.reply(p, c.From)
}

// Send fires p at an arbitrary address from a throwaway socket.
func (c *Context) Send(addr string, p []byte) error {
	return SendTo(addr, p)
}
