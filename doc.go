// Package switchboard lets many goroutines *call* a single goroutine, with
// typed parameters and typed answers, over plain Go channels.
//
// ## How it works
//
// A *center* is identified by a Go type, usually an empty struct. You
// declare `Operation`s, each with a parameter type and a return type, and
// `Bind` them to the center. The bindings form the *catalog* of the center:
//
//	type Simple struct{}
//
//	var Ping = switchboard.Bind[Simple](
//		switchboard.NewOperation[PingParams, struct{}]("Ping"),
//	)
//
// The center owns a bounded queue. Anybody holding a `Phone` made from it
// can `Call` an operation: the parameters are wrapped in an `Envelope`
// together with a fresh single-slot response channel, and the caller waits
// on that channel. There is no correlation table: each call owns its own
// channel, so an answer can only reach the caller who asked for it.
//
// On the other side, the goroutine owning the center pulls envelopes with
// `Center.HandleRequest`, or lets a `Router` do it: the router matches the
// envelope against its handlers and sends the result back.
//
// ## Broadcast
//
// Phones can be put in a `Group` and called all at once with `Broadcast`.
// `Topics` keys groups by any comparable value, which gives you a
// lightweight in-process pub/sub with answers. Broadcasts are best-effort:
// a center which went away is silently left out of the results.
//
// ## Failures
//
// There is one error worth checking: `ErrClosed`, the peer is gone. It can
// be the center being closed, or a request dropped without an answer.
// Retries and timeouts are yours, pass a `context.Context` with a deadline.
//
// ## Observability
//
// Logs go through `log/slog` (see `WithLog`) and metrics through
// [`hashicorp/go-metrics`][dep-met] (see `WithMetricSink`).
//
// [dep-met]: https://pkg.go.dev/github.com/hashicorp/go-metrics
package switchboard
