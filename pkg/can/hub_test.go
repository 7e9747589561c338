package can

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	a, b, c := h.Attach("a"), h.Attach("b"), h.Attach("c")

	require.NoError(t, a.TrySend(MustFrame(0x15, 0x14, 0)))

	_, ok := a.TryReceive()
	require.False(t, ok, "sender must not receive its own frame")
	for _, p := range []*Port{b, c} {
		f, ok := p.TryReceive()
		require.True(t, ok)
		require.Equal(t, "015#1400", f.String())
		_, ok = p.TryReceive()
		require.False(t, ok)
	}
}

func TestHubAtMostOneFramePerPoll(t *testing.T) {
	h := NewHub()
	a, b := h.Attach("a"), h.Attach("b")
	for i := 0; i < 3; i++ {
		require.NoError(t, a.TrySend(MustFrame(uint32(i+1))))
	}
	for i := 0; i < 3; i++ {
		f, ok := b.TryReceive()
		require.True(t, ok)
		require.Equal(t, uint32(i+1), f.ID)
	}
	_, ok := b.TryReceive()
	require.False(t, ok)
}

func TestHubOverflowDrops(t *testing.T) {
	h := NewHub()
	h.QueueSize = 1
	a, b := h.Attach("a"), h.Attach("b")
	require.NoError(t, a.TrySend(MustFrame(1)))
	require.NoError(t, a.TrySend(MustFrame(2)))
	require.Equal(t, uint64(1), b.Dropped())
	f, ok := b.TryReceive()
	require.True(t, ok)
	require.Equal(t, uint32(1), f.ID)
}

func TestHubDropInjection(t *testing.T) {
	h := NewHub()
	h.Drop = func(from, to string, f Frame) bool { return to == "b" }
	a, b, c := h.Attach("a"), h.Attach("b"), h.Attach("c")
	require.NoError(t, a.TrySend(MustFrame(7)))
	_, ok := b.TryReceive()
	require.False(t, ok)
	_, ok = c.TryReceive()
	require.True(t, ok)
}

func TestHubClosedPort(t *testing.T) {
	h := NewHub()
	a, b := h.Attach("a"), h.Attach("b")
	require.NoError(t, b.Close())
	require.NoError(t, a.TrySend(MustFrame(1)))
	_, ok := b.TryReceive()
	require.False(t, ok)

	err := b.TrySend(MustFrame(2))
	require.True(t, errors.Is(err, ErrClosed))
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	require.Equal(t, uint32(2), sendErr.ID)
}

func TestOpenMem(t *testing.T) {
	a, err := Open("mem://open-test?node=a")
	require.NoError(t, err)
	b, err := Open("mem://open-test?node=b")
	require.NoError(t, err)
	require.NoError(t, a.TrySend(MustFrame(0x33, 1, 2, 3, 4)))
	f, ok := b.TryReceive()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, f.Payload())

	_, err = Open("nope://x")
	require.Error(t, err)
	require.Contains(t, Schemes(), "mem")
}

func TestHubRandomLoss(t *testing.T) {
	h := NewHub()
	h.Drop = RandomLoss(0.5, rand.New(rand.NewSource(1)))
	a, b := h.Attach("a"), h.Attach("b")
	for i := 0; i < 200; i++ {
		require.NoError(t, a.TrySend(MustFrame(0x15, byte(i))))
	}
	var received int
	for {
		if _, ok := b.TryReceive(); !ok {
			break
		}
		received++
	}
	require.True(t, received > 50 && received < 150, "received %d", received)

	h.Drop = RandomLoss(0, nil)
	require.NoError(t, a.TrySend(MustFrame(0x15)))
	_, ok := b.TryReceive()
	require.True(t, ok)
	h.Drop = RandomLoss(1, nil)
	require.NoError(t, a.TrySend(MustFrame(0x15)))
	_, ok = b.TryReceive()
	require.False(t, ok)
}
