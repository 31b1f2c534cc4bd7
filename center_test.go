package switchboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCenter_DefaultName(t *testing.T) {
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)
	require.Equal(t, "echoCenter", center.Name())
	require.Equal(t, "echoCenter", center.MakePhone().Center())

	named, err := NewCenter[echoCenter](WithName("doubler"), WithMetricSink(nil))
	require.NoError(t, err)
	require.Equal(t, "doubler", named.Name())
}

func TestCenter_CloseResolvesQueuedCalls(t *testing.T) {
	ctx := testContext(t)
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)
	phone := center.MakePhone()

	errCh := make(chan error, 1)
	go func() {
		_, err := Call(ctx, phone, echoCall, 21)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		return center.Pending() == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, center.Close())

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrClosed)
		require.True(t, IsClosedBy(err, ClosedByUnanswered))
	case <-ctx.Done():
		t.Fatal("pending call did not resolve after the center was closed")
	}
}

func TestCenter_ClosedCenterRefusesCalls(t *testing.T) {
	ctx := testContext(t)
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)
	phone := center.MakePhone()

	require.True(t, phone.Alive())
	require.NoError(t, center.Close())
	require.NoError(t, center.Close(), "close must be idempotent")
	require.False(t, phone.Alive())
	require.False(t, phone.Clone().Alive())

	_, err = Call(ctx, phone, echoCall, 1)
	require.ErrorIs(t, err, ErrClosed)
	require.True(t, IsClosedBy(err, ClosedByCenter))

	err = CallNoResponse(ctx, phone, echoCall, 1)
	require.True(t, IsClosedBy(err, ClosedByCenter))

	_, err = center.HandleRequest(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestCenter_CloseReleasesBlockedProducers(t *testing.T) {
	ctx := testContext(t)
	center, err := NewCenter[echoCenter](WithQueueSize(1), WithMetricSink(nil))
	require.NoError(t, err)
	phone := center.MakePhone()

	require.NoError(t, CallNoResponse(ctx, phone, echoCall, 1))

	errCh := make(chan error, 1)
	go func() {
		errCh <- CallNoResponse(ctx, phone, echoCall, 2)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, center.Close())

	select {
	case err := <-errCh:
		require.True(t, IsClosedBy(err, ClosedByCenter))
	case <-ctx.Done():
		t.Fatal("producer still blocked on a closed center")
	}
}

func TestCenter_HandledRequestOutlivesClose(t *testing.T) {
	ctx := testContext(t)
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)
	phone := center.MakePhone()

	type outcome struct {
		result int
		err    error
	}
	outCh := make(chan outcome, 1)
	go func() {
		result, err := Call(ctx, phone, echoCall, 4)
		outCh <- outcome{result, err}
	}()

	env, err := center.HandleRequest(ctx)
	require.NoError(t, err)
	require.NoError(t, center.Close())

	req, ok := echoCall.Match(env)
	require.True(t, ok)
	require.True(t, req.Expected())
	require.NoError(t, req.Reply(req.Params()*10))

	out := <-outCh
	require.NoError(t, out.err)
	require.Equal(t, 40, out.result)
}

func TestCenter_DroppedRequestClosesCaller(t *testing.T) {
	ctx := testContext(t)
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)
	defer center.Close()

	go func() {
		env, err := center.HandleRequest(ctx)
		if err == nil {
			env.Drop()
		}
	}()

	_, err = Call(ctx, center.MakePhone(), echoCall, 1)
	require.ErrorIs(t, err, ErrClosed)
	require.True(t, IsClosedBy(err, ClosedByUnanswered))
}

func TestCenter_HandleRequestHonoursContext(t *testing.T) {
	center, err := NewCenter[echoCenter](WithMetricSink(nil))
	require.NoError(t, err)
	defer center.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = center.HandleRequest(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}
