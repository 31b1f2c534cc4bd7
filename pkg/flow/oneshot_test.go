package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOneshot_SendRecv(t *testing.T) {
	tx, rx := Oneshot[string]()
	require.True(t, tx.Alive())
	require.NoError(t, tx.Send("pong"))
	require.False(t, tx.Alive())

	got, err := rx.Recv(context.Background())
	require.NoError(t, err)
	require.Equal(t, "pong", got)
}

func TestOneshot_SecondSendFails(t *testing.T) {
	tx, _ := Oneshot[int]()
	require.NoError(t, tx.Send(1))
	require.ErrorIs(t, tx.Send(2), ErrSlotSettled)
}

func TestOneshot_DropClosesReceiver(t *testing.T) {
	tx, rx := Oneshot[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		tx.Drop()
	}()

	_, err := rx.Recv(context.Background())
	require.ErrorIs(t, err, ErrFlowClosed)
	require.ErrorIs(t, tx.Send(1), ErrSlotSettled)
}

func TestOneshot_AbandonedReceiver(t *testing.T) {
	tx, rx := Oneshot[int]()
	rx.Abandon()
	require.False(t, tx.Alive())
	require.ErrorIs(t, tx.Send(1), ErrFlowClosed)
}

func TestOneshot_RecvTimeoutAbandons(t *testing.T) {
	tx, rx := Oneshot[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := rx.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, tx.Send(1), ErrFlowClosed)
}
