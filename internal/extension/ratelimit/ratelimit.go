// Package ratelimit throttles packet intake with a token bucket.
package ratelimit

import (
	"golang.org/x/time/rate"

	"github.com/dherrin/packetd/pkg/dgram"
)

// Extension vetoes packets once the token bucket is exhausted. Over-limit
// packets are dropped silently; the transport defines no error frame to send
// back.
type Extension struct {
	limiter *rate.Limiter
}

// New creates a rate limiting extension.
// r: limit (packets per second)
// b: burst size
func New(r rate.Limit, b int) *Extension {
	return &Extension{
		limiter: rate.NewLimiter(r, b),
	}
}

func (e *Extension) Name() string { return "ratelimit" }

func (e *Extension) OnStart(dgram.Store) error { return nil }

func (e *Extension) Route(ctx *dgram.Context) (bool, error) {
	if !e.limiter.Allow() {
		return false, nil
	}
	return true, nil
}

// Clone shares the limiter: rate.Limiter is safe for concurrent use, and a
// single bucket is the point of limiting globally.
func (e *Extension) Clone() dgram.Extension { return e }
