// Package dgram implements a connectionless packet server: datagrams are
// pulled from a bound transport one at a time, wrapped in a per-packet
// Context, routed through an ordered extension pipeline with early-exit, and
// finally handed to a registered handler. An optional worker pool overlaps
// handler execution with packet intake while preserving strict arrival-order
// processing from the intake goroutine's point of view.
//
// The package is deliberately fail-fast: any extension, handler, or worker
// error terminates the dispatch loop and is returned from Serve. There is no
// framing, retransmission, packet ordering, or encryption; a datagram's whole
// payload is one opaque blob.
package dgram
