package dgram

// HandlerFunc processes one packet through its Context. A returned error is
// fatal: the dispatch loop re-raises it instead of swallowing it, so a broken
// handler stops the server rather than silently dropping packets.
type HandlerFunc func(ctx *Context) error

// Handler is a registered payload processor. Name is empty only for the
// default handler; named handlers are looked up by exact name match.
type Handler struct {
	Name  string
	Serve HandlerFunc
}

// Extension is a pluggable pipeline step run on every packet before the
// handler. Extensions are invoked in registration order and may veto further
// processing.
type Extension interface {
	// Name tags the extension for logs and error messages.
	Name() string

	// OnStart runs once per extension before the server starts receiving,
	// with the shared store, so the extension can seed initial state.
	OnStart(store Store) error

	// Route inspects the context. Returning false stops the remaining
	// extensions and skips the handler: the packet counts as fully handled
	// by this extension. Returning an error is fatal to the server.
	Route(ctx *Context) (bool, error)

	// Clone returns the independently-seeded copy a worker receives when it
	// is spawned. Extensions whose state is safe to share across workers may
	// return the receiver.
	Clone() Extension
}
