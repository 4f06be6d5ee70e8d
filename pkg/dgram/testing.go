package dgram

import "net"

// funcSink adapts a plain function to a replySink.
type funcSink func(p []byte)

func (f funcSink) reply(p []byte, _ net.Addr) error {
	f(p)
	return nil
}

// NewTestContext builds a Context wired to reg whose replies are delivered to
// reply, for handler tests that bypass the transport. It carries a fresh
// store unless the handlers under test set one up themselves.
func NewTestContext(payload []byte, from net.Addr, reg *Registry, reply func(p []byte)) *Context {
	return newContext(payload, from, NewStore(), reg.handlers, funcSink(reply))
}
