package dgram

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHandlers is returned by Build when no handler was registered.
	ErrNoHandlers = errors.New("dgram: registry needs at least one handler")

	// ErrUnknownHandler is raised when a selected handler name has no match
	// in the registry. This is a configuration error, not a runtime
	// condition: it terminates the server.
	ErrUnknownHandler = errors.New("dgram: unknown handler")
)

// Registry is the immutable set of handlers and extensions assembled once at
// startup. The first handler is the default one, invoked when no extension
// redirects the flow.
type Registry struct {
	handlers   []*Handler
	extensions []Extension
}

// Default returns the fallback handler.
func (r *Registry) Default() *Handler {
	return r.handlers[0]
}

// Handler looks up a handler by exact name match, or nil.
func (r *Registry) Handler(name string) *Handler {
	for _, h := range r.handlers {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// Handlers returns all handlers in registration order.
func (r *Registry) Handlers() []*Handler {
	return r.handlers
}

// Extensions returns all extensions in registration order.
func (r *Registry) Extensions() []Extension {
	return r.extensions
}

// clone produces the independently-seeded copy a worker is given at spawn.
// Handlers are immutable and shared; extensions are cloned so worker-side
// state never races with the intake side.
func (r *Registry) clone() *Registry {
	exts := make([]Extension, len(r.extensions))
	for i, ext := range r.extensions {
		exts[i] = ext.Clone()
	}
	return &Registry{handlers: r.handlers, extensions: exts}
}

// Builder assembles a Registry through explicit registration calls, in
// declaration order. It replaces any form of runtime export scanning: the
// host application states exactly what it provides.
type Builder struct {
	handlers   []*Handler
	extensions []Extension
	err        error
}

// NewBuilder returns an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Handle registers the anonymous default handler. Only the first registered
// handler may be unnamed.
func (b *Builder) Handle(fn HandlerFunc) *Builder {
	return b.add(&Handler{Serve: fn})
}

// HandleNamed registers a handler selectable by name.
func (b *Builder) HandleNamed(name string, fn HandlerFunc) *Builder {
	if name == "" {
		b.fail(errors.New("dgram: named handler needs a non-empty name"))
		return b
	}
	return b.add(&Handler{Name: name, Serve: fn})
}

// Use appends an extension to the pipeline.
func (b *Builder) Use(ext Extension) *Builder {
	if ext == nil {
		b.fail(errors.New("dgram: nil extension"))
		return b
	}
	b.extensions = append(b.extensions, ext)
	return b
}

// Build validates the registrations and returns the immutable registry.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.handlers) == 0 {
		return nil, ErrNoHandlers
	}
	return &Registry{handlers: b.handlers, extensions: b.extensions}, nil
}

func (b *Builder) add(h *Handler) *Builder {
	if h.Serve == nil {
		b.fail(errors.New("dgram: nil handler func"))
		return b
	}
	if h.Name == "" && len(b.handlers) > 0 {
		// An unnamed handler past position zero could never be resolved.
		b.fail(errors.New("dgram: only the first handler may be unnamed"))
		return b
	}
	for _, existing := range b.handlers {
		if h.Name != "" && existing.Name == h.Name {
			b.fail(fmt.Errorf("dgram: duplicate handler name %q", h.Name))
			return b
		}
	}
	b.handlers = append(b.handlers, h)
	return b
}

// fail records the first registration error; Build reports it.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
