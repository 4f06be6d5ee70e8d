package dgram

import (
	"fmt"
	"net"
)

// MultiHandler is the named-handler switch: an extension mapping a client
// address to the named handler currently driving its conversation, which
// enables stateful multi-turn exchanges over a stateless transport.
//
// Installed, it becomes the terminal routing step: Route always invokes the
// mapped handler (or the main one when no entry exists) itself and vetoes the
// rest of the pipeline, so the loop's own handler invocation is bypassed.
type MultiHandler struct {
	main     HandlerFunc
	selected map[string]string
}

// NewMultiHandler returns a switch whose fallback is main.
func NewMultiHandler(main HandlerFunc) *MultiHandler {
	return &MultiHandler{
		main:     main,
		selected: make(map[string]string),
	}
}

// Name implements Extension.
func (m *MultiHandler) Name() string {
	return "multihandler"
}

// OnStart implements Extension. The switch keeps its own state and needs
// nothing from the shared store.
func (m *MultiHandler) OnStart(Store) error {
	return nil
}

// Route resolves and runs the handler selected for the packet's sender. A
// selection naming a handler absent from the registry is a configuration
// error and terminates the server.
func (m *MultiHandler) Route(ctx *Context) (bool, error) {
	name, ok := m.selected[ctx.From.String()]
	if !ok {
		return false, m.main(ctx)
	}

	h := ctx.Handler(name)
	if h == nil {
		return false, fmt.Errorf("%w: %q selected for %s", ErrUnknownHandler, name, ctx.From)
	}
	return false, h.Serve(ctx)
}

// Select routes every subsequent packet from addr to the handler named name,
// overwriting any previous selection. addr may be any client address, not
// only the current sender, so one client can redirect another's conversation.
func (m *MultiHandler) Select(addr net.Addr, name string) {
	m.selected[addr.String()] = name
}

// Clear removes addr's selection, reverting it to the main handler on its
// next packet.
func (m *MultiHandler) Clear(addr net.Addr) {
	delete(m.selected, addr.String())
}

// Clone copies the selection map so a worker's switch never races with the
// intake side's.
func (m *MultiHandler) Clone() Extension {
	selected := make(map[string]string, len(m.selected))
	for addr, name := range m.selected {
		selected[addr] = name
	}
	return &MultiHandler{main: m.main, selected: selected}
}
