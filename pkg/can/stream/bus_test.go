package stream

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/canpong/pkg/can"
)

func receive(t *testing.T, b can.Bus) can.Frame {
	var f can.Frame
	require.Eventually(t, func() bool {
		var ok bool
		f, ok = b.TryReceive()
		return ok
	}, time.Second, time.Millisecond)
	return f
}

func TestBusOverPipe(t *testing.T) {
	connA, connB := net.Pipe()
	a, b := NewConn("a", connA, 0), NewConn("b", connB, 0)

	err := a.TrySend(can.MustFrame(0x15, 0x14, 0))
	require.True(t, errors.Is(err, can.ErrNotConnected))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 2)
	go func() { errCh <- a.Run(ctx) }()
	go func() { errCh <- b.Run(ctx) }()
	require.Eventually(t, func() bool { return a.Connected() && b.Connected() }, time.Second, time.Millisecond)

	frames := []can.Frame{
		can.MustFrame(0x64, 1),
		can.MustFrame(0x34, 0x40, 0x00, 0x20, 0x00, 0x19, 0x00),
	}
	for _, f := range frames {
		require.NoError(t, a.TrySend(f))
	}
	for _, f := range frames {
		require.Equal(t, f, receive(t, b))
	}
	require.NoError(t, b.TrySend(can.MustFrame(0x16, 0x20, 0x00)))
	require.Equal(t, "016#2000", receive(t, a).String())

	_, ok := a.TryReceive()
	require.False(t, ok)

	cancel()
	for i := 0; i < 2; i++ {
		select {
		case err := <-errCh:
			require.Error(t, err)
		case <-time.After(time.Second):
			t.Fatal("bus not stopped")
		}
	}
	require.False(t, a.Connected())
}

func TestBusRejectsInvalidFrame(t *testing.T) {
	b := NewConn("x", nil, 0)
	err := b.TrySend(can.Frame{ID: 0x800})
	require.True(t, errors.Is(err, can.ErrInvalidID))
	var se *can.SendError
	require.True(t, errors.As(err, &se))
	require.Equal(t, uint32(0x800), se.ID)
}

func TestBusStopsWhenConnClosed(t *testing.T) {
	connA, connB := net.Pipe()
	b := NewConn("b", connB, 0)
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(context.Background()) }()
	require.Eventually(t, b.Connected, time.Second, time.Millisecond)
	connA.Close()
	select {
	case err := <-errCh:
		require.True(t, errors.Is(err, can.ErrClosed))
	case <-time.After(5 * time.Second):
		t.Fatal("bus not stopped")
	}
}

func TestOpenURLs(t *testing.T) {
	bus, err := can.Open("tcp://127.0.0.1:7421")
	require.NoError(t, err)
	require.Equal(t, "tcp:127.0.0.1:7421", bus.(*Bus).Name)

	bus, err = can.Open("tcp://:7421?listen=true&queue=8")
	require.NoError(t, err)
	require.Equal(t, "tcp-listen::7421", bus.(*Bus).Name)

	bus, err = can.Open("serial:///dev/ttyUSB0")
	require.NoError(t, err)
	require.Equal(t, "serial:/dev/ttyUSB0", bus.(*Bus).Name)

	for _, u := range []string{"tcp://", "serial://", "tcp://h:1?queue=x"} {
		_, err = can.Open(u)
		require.Error(t, err, u)
	}
}
