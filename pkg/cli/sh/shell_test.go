package sh

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/protocol"
)

func TestBusConnSendWatch(t *testing.T) {
	hub := can.MemHub("sh-test")
	peer := hub.Attach("peer")
	conn, err := Dial("mem://sh-test?node=shell")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(protocol.EncodeRole(true), protocol.EncodePaddle(1, 20)))
	f, ok := peer.TryReceive()
	require.True(t, ok)
	require.Equal(t, protocol.EncodeRole(true), f)

	require.NoError(t, peer.TrySend(protocol.EncodeBall(2, 3, 4)))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var got []can.Frame
	require.Error(t, conn.Watch(ctx, func(f can.Frame) { got = append(got, f) }))
	require.Equal(t, []can.Frame{protocol.EncodeBall(2, 3, 4)}, got)

	err = conn.Send(can.Frame{ID: 0x800})
	require.ErrorIs(t, err, can.ErrInvalidID)
}

func TestDialUnknownScheme(t *testing.T) {
	_, err := Dial("nope://x")
	require.Error(t, err)
}

func TestFrameRecord(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := NewFrameRecord(protocol.EncodePaddle(1, 20), at)
	require.Equal(t, "015#1400 paddle group=1 y=20", rec.String())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"time":"2024-01-02T03:04:05Z","id":21,"data":"1400","desc":"paddle group=1 y=20"}`, string(out))
}

func TestParseWatchTime(t *testing.T) {
	testCases := []struct {
		args   []string
		expect time.Duration
		err    bool
	}{
		{nil, DefaultWatchTime, false},
		{[]string{"3"}, 3 * time.Second, false},
		{[]string{"250ms"}, 250 * time.Millisecond, false},
		{[]string{"soon"}, 0, true},
	}
	for _, tc := range testCases {
		d, err := ParseWatchTime(tc.args)
		if tc.err {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.expect, d)
	}
}
