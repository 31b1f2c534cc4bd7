package switchboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pingParams struct {
	Message string
}

type helloReply struct {
	Greeting string
	Err      error
}

var (
	pingOp  = NewOperation[pingParams, struct{}]("Ping")
	helloOp = NewOperation[struct{}, helloReply]("HelloWorld")
	echoOp  = NewOperation[int, int]("Echo")
)

// simpleCenter mirrors the ping / hello-world call center of the examples.
type simpleCenter struct{}

var (
	simplePing  = Bind[simpleCenter](pingOp)
	simpleHello = Bind[simpleCenter](helloOp)
)

// echoCenter multiplies what it receives by the router context value.
type echoCenter struct{}

var echoCall = Bind[echoCenter](echoOp)

// bytesCenter upper-cases the first byte of the buffer it receives, in
// place.
type bytesCenter struct{}

var shoutCall = Bind[bytesCenter](NewOperation[[]byte, string]("Shout"))

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func serve[C, X any](t *testing.T, ctx context.Context, center *Center[C], rt *Router[C, X], x X) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- rt.Serve(ctx, center, x)
	}()
	t.Cleanup(func() { _ = center.Close() })
	return errCh
}

func startEcho(t *testing.T, ctx context.Context, multiplier int) *Center[echoCenter] {
	t.Helper()
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)

	rt, err := NewRouter[echoCenter, int](WithMetricSink(nil))
	require.NoError(t, err)
	Handle(rt, echoCall, func(_ context.Context, x int, params int) int {
		return params * x
	})

	serve(t, ctx, center, rt, multiplier)
	return center
}

func startSimple(t *testing.T, ctx context.Context, pings chan<- string) *Center[simpleCenter] {
	t.Helper()
	center, err := NewCenter[simpleCenter](WithMetricSink(nil))
	require.NoError(t, err)

	rt, err := NewRouter[simpleCenter, chan<- string](WithMetricSink(nil))
	require.NoError(t, err)
	Handle(rt, simplePing, func(_ context.Context, seen chan<- string, params pingParams) struct{} {
		seen <- params.Message
		return struct{}{}
	})
	Handle(rt, simpleHello, func(context.Context, chan<- string, struct{}) helloReply {
		return helloReply{Err: errors.New("unimplemented!")}
	})

	serve(t, ctx, center, rt, pings)
	return center
}
