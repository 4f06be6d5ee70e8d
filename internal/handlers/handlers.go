// Package handlers supplies the application handlers hosted by packetd: a
// ping responder and a two-step confirmation exchange driven through the
// named-handler switch.
package handlers

import (
	"github.com/dherrin/packetd/internal/core/logger"
	"github.com/dherrin/packetd/pkg/dgram"
)

// Register installs the application's handlers and conversation switch on b,
// in declaration order, and returns the switch. The switch becomes the
// terminal pipeline step, so it must be the last extension used.
func Register(b *dgram.Builder, log logger.Logger) *dgram.MultiHandler {
	var mh *dgram.MultiHandler

	main := func(ctx *dgram.Context) error {
		log.Debug("packet", logger.Any("id", ctx.ID), logger.Any("from", ctx.From.String()))

		switch string(ctx.Payload) {
		case "ping":
			return ctx.Reply([]byte("pong"))
		case "start":
			// Move this client into the confirmation step; its next packets
			// route to the "confirm" handler until it answers.
			mh.Select(ctx.From, "confirm")
			return ctx.Reply([]byte("ok, confirm next"))
		default:
			return ctx.Reply(ctx.Payload)
		}
	}
	mh = dgram.NewMultiHandler(main)

	confirm := func(ctx *dgram.Context) error {
		switch string(ctx.Payload) {
		case "yes":
			mh.Clear(ctx.From)
			return ctx.Reply([]byte("confirmed"))
		case "no":
			mh.Clear(ctx.From)
			return ctx.Reply([]byte("cancelled"))
		default:
			return ctx.Reply([]byte("please answer yes or no"))
		}
	}

	b.Handle(main).
		HandleNamed("confirm", confirm).
		Use(mh)
	return mh
}
