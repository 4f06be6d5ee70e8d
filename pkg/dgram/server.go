package dgram

import (
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
)

const defaultReadBuffer = 64 * 1024

// Server drives the dispatch loop over one bound transport. It alternates
// between exactly two states: blocked on the transport's receive, or
// processing one packet. There is no queueing; the next datagram is not read
// until the current one is fully resolved.
type Server struct {
	transport Transport
	registry  *Registry
	store     Store
	log       *zap.Logger
	pool      *pool
	readBuf   int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithStore replaces the default shared store. The store is never nil: a nil
// argument keeps the default.
func WithStore(store Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkers enables the distribution scheduler over r. Ranges without a
// slot above 1 keep all work inline.
func WithWorkers(r Range) Option {
	return func(s *Server) {
		if r.Pooled() {
			s.pool = newPool(r)
		}
	}
}

// WithReadBuffer sets the receive buffer size in bytes.
func WithReadBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.readBuf = n
		}
	}
}

// NewServer builds a server over t dispatching into reg.
func NewServer(t Transport, reg *Registry, opts ...Option) *Server {
	s := &Server{
		transport: t,
		registry:  reg,
		store:     NewStore(),
		log:       zap.NewNop(),
		readBuf:   defaultReadBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the server-wide shared store.
func (s *Server) Store() Store {
	return s.store
}

// Serve runs the dispatch loop until the transport is closed or a fault is
// raised. Faults are fatal by design: an extension, handler, or worker error
// is returned rather than swallowed, stopping the server. Closing the
// transport makes Serve return nil.
func (s *Server) Serve() error {
	for _, ext := range s.registry.extensions {
		if err := ext.OnStart(s.store); err != nil {
			return fmt.Errorf("extension %s: onstart: %w", ext.Name(), err)
		}
	}

	// Workers clone the extension set after OnStart so seeded state is
	// carried into every copy.
	if s.pool != nil {
		s.pool.spawn(s.registry, s.store, s.transport, s.log)
		defer s.pool.shutdown()
	}

	s.log.Info("dispatch loop listening", zap.String("addr", s.transport.LocalAddr().String()))

	buf := make([]byte, s.readBuf)
	for {
		n, from, err := s.transport.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.log.Info("transport closed, dispatch loop exiting")
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		if s.pool != nil {
			err = s.pool.dispatch(payload, from)
		} else {
			ctx := newContext(payload, from, s.store, s.registry.handlers, transportSink{s.transport})
			err = route(ctx, s.registry)
		}
		if err != nil {
			s.log.Error("packet processing failed", zap.String("from", from.String()), zap.Error(err))
			return err
		}
	}
}

// route runs the extension pipeline in registration order and, unless some
// extension vetoed, falls through to the default handler. Exactly one handler
// executes per packet.
func route(ctx *Context, reg *Registry) error {
	for _, ext := range reg.extensions {
		ok, err := ext.Route(ctx)
		if err != nil {
			return fmt.Errorf("extension %s: %w", ext.Name(), err)
		}
		if !ok {
			return nil
		}
	}
	return reg.Default().Serve(ctx)
}
