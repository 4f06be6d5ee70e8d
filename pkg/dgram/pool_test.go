package dgram

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{in: "", want: Range{Lo: 1, Hi: 1}},
		{in: "1", want: Range{Lo: 1, Hi: 1}},
		// A single value never pools, whatever the value.
		{in: "4", want: Range{Lo: 1, Hi: 1}},
		{in: "1:4", want: Range{Lo: 1, Hi: 4}},
		{in: "-2:3", want: Range{Lo: -2, Hi: 3}},
		{in: " 0 : 2 ", want: Range{Lo: 0, Hi: 2}},
		{in: "0:1", want: Range{Lo: 0, Hi: 1}},
		{in: "3:1", wantErr: true},
		{in: "-5:0", wantErr: true},
		{in: "a:b", wantErr: true},
		{in: "x", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestRangeWorkers(t *testing.T) {
	assert.Equal(t, 3, Range{Lo: 1, Hi: 4}.Workers())
	assert.Equal(t, 2, Range{Lo: -2, Hi: 3}.Workers())
	assert.Equal(t, 1, Range{Lo: 2, Hi: 2}.Workers())
	assert.Equal(t, 0, Range{Lo: -3, Hi: 1}.Workers())
	assert.Equal(t, 0, Range{Lo: 1, Hi: 1}.Workers())
}

func TestAdvanceCyclesThroughEverySlot(t *testing.T) {
	p := newPool(Range{Lo: -1, Hi: 3})

	var got []int
	for i := 0; i < 10; i++ {
		got = append(got, p.advance())
	}
	// One full cycle visits each slot in [lo,hi] exactly once, then repeats.
	assert.Equal(t, []int{-1, 0, 1, 2, 3, -1, 0, 1, 2, 3}, got)
}

func TestPooledRepliesMatchInline(t *testing.T) {
	build := func() *Registry {
		reg, err := NewBuilder().
			Handle(func(ctx *Context) error {
				return ctx.Reply([]byte("echo:" + string(ctx.Payload)))
			}).
			Build()
		require.NoError(t, err)
		return reg
	}

	inline := newFakeTransport()
	_, inlineErr := startServer(inline, build())

	pooled := newFakeTransport()
	_, pooledErr := startServer(pooled, build(), WithWorkers(Range{Lo: -1, Hi: 3}))

	addr := clientAddr(6001)
	for i := 0; i < 10; i++ {
		msg := fmt.Sprintf("packet-%d", i)
		inline.deliver(msg, addr)
		pooled.deliver(msg, addr)

		want := "echo:" + msg
		assert.Equal(t, want, string(recvReply(t, inline).payload))
		// Inline or delegated, the reply is identical and in arrival order.
		assert.Equal(t, want, string(recvReply(t, pooled).payload))
	}

	inline.Close()
	pooled.Close()
	assert.NoError(t, waitServe(t, inlineErr))
	assert.NoError(t, waitServe(t, pooledErr))
}

func TestDelegatedRepliesCoalesceIntoOneDatagram(t *testing.T) {
	reg, err := NewBuilder().
		Handle(func(ctx *Context) error {
			if err := ctx.Reply([]byte("po")); err != nil {
				return err
			}
			return ctx.Reply([]byte("ng"))
		}).
		Build()
	require.NoError(t, err)

	// Range 2:2 sends every packet through the single worker slot.
	tr := newFakeTransport()
	_, errCh := startServer(tr, reg, WithWorkers(Range{Lo: 2, Hi: 2}))

	tr.deliver("ping", clientAddr(6002))
	assert.Equal(t, "pong", string(recvReply(t, tr).payload))

	// Buffer was cleared: the next packet stages from empty again.
	tr.deliver("ping", clientAddr(6002))
	assert.Equal(t, "pong", string(recvReply(t, tr).payload))

	tr.Close()
	assert.NoError(t, waitServe(t, errCh))
}

func TestSilentHandlerSendsNothingWhenDelegated(t *testing.T) {
	var seen int
	reg, err := NewBuilder().
		Handle(func(*Context) error {
			seen++
			return nil
		}).
		Build()
	require.NoError(t, err)

	tr := newFakeTransport()
	_, errCh := startServer(tr, reg, WithWorkers(Range{Lo: 2, Hi: 2}))

	tr.deliver("quiet", clientAddr(6003))
	tr.Close()
	require.NoError(t, waitServe(t, errCh))

	assert.Equal(t, 1, seen)
	assert.Empty(t, tr.sent)
}

func TestWorkerFaultIsFatal(t *testing.T) {
	reg, err := NewBuilder().
		Handle(func(ctx *Context) error {
			return errors.New("worker handler blew up")
		}).
		Build()
	require.NoError(t, err)

	tr := newFakeTransport()
	_, errCh := startServer(tr, reg, WithWorkers(Range{Lo: 2, Hi: 2}))

	tr.deliver("boom", clientAddr(6004))
	err = waitServe(t, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker 2")
}

func TestWorkersInheritStateSeededBeforeSpawn(t *testing.T) {
	mh := NewMultiHandler(func(ctx *Context) error {
		return ctx.Reply([]byte("main"))
	})

	reg, err := NewBuilder().
		Handle(func(ctx *Context) error { return ctx.Reply([]byte("fallback")) }).
		HandleNamed("vip", func(ctx *Context) error { return ctx.Reply([]byte("vip lane")) }).
		Use(mh).
		Build()
	require.NoError(t, err)

	// Selections made before Serve are part of the seed every worker clone
	// inherits.
	addr := clientAddr(6005)
	mh.Select(addr, "vip")

	tr := newFakeTransport()
	_, errCh := startServer(tr, reg, WithWorkers(Range{Lo: 2, Hi: 2}))

	tr.deliver("hello", addr)
	assert.Equal(t, "vip lane", string(recvReply(t, tr).payload))

	tr.Close()
	assert.NoError(t, waitServe(t, errCh))
}

func TestRegistryCloneIsolatesExtensions(t *testing.T) {
	mh := NewMultiHandler(func(*Context) error { return nil })
	reg, err := NewBuilder().
		Handle(func(*Context) error { return nil }).
		Use(mh).
		Build()
	require.NoError(t, err)

	cp := reg.clone()
	require.Len(t, cp.Extensions(), 1)
	assert.NotSame(t, reg.Extensions()[0], cp.Extensions()[0])

	// Handlers are immutable and stay shared.
	assert.Equal(t, len(reg.Handlers()), len(cp.Handlers()))
	assert.Same(t, reg.Handlers()[0], cp.Handlers()[0])
}
