package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/canpong/pkg/can"
)

var testScheme = Scheme{Group: 1, Opponent: 2}

// opponentScheme is how the opponent encodes frames received by testScheme.
var opponentScheme = Scheme{Group: 2, Opponent: 1}

func TestChannelIDs(t *testing.T) {
	require.Equal(t, uint32(21), PaddleID(1))
	require.Equal(t, uint32(51), BallID(1))
	require.Equal(t, uint32(22), PaddleID(2))
	require.Equal(t, uint32(52), BallID(2))
	require.Equal(t, uint32(100), RoleMasterID)
	require.Equal(t, uint32(101), RoleSlaveID)
}

func TestSchemeValidate(t *testing.T) {
	testCases := []struct {
		name   string
		scheme Scheme
		valid  bool
	}{
		{"groups 1 and 2", Scheme{Group: 1, Opponent: 2}, true},
		{"same group", Scheme{Group: 3, Opponent: 3}, false},
		{"paddle collides with opponent ball", Scheme{Group: 30, Opponent: 0}, false},
		{"paddle collides with role", Scheme{Group: 80, Opponent: 1}, false},
		{"ball collides with role", Scheme{Group: 1, Opponent: 51}, false},
		{"negative", Scheme{Group: -1, Opponent: 2}, false},
		{"out of range", Scheme{Group: 2040, Opponent: 1}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.scheme.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestEncodeWireFormat(t *testing.T) {
	testCases := []struct {
		name   string
		frame  can.Frame
		expect string
	}{
		{"paddle", EncodePaddle(1, 20), "015#1400"},
		{"paddle high byte", EncodePaddle(1, 0x1234), "015#3412"},
		{"ball", EncodeBall(1, 64, 32), "033#40002000"},
		{"ball negative", EncodeBall(1, -1, 0), "033#ffff0000"},
		{"ball with paddle", EncodeBallWithPaddle(2, 64, 32, 25), "034#400020001900"},
		{"role master", EncodeRole(true), "064#01"},
		{"role not master", EncodeRole(false), "065#00"},
		{"legacy up", EncodeLegacyPaddle(2, true), "016#01"},
		{"legacy down", EncodeLegacyPaddle(2, false), "016#02"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.frame.String())
		})
	}
}

func TestPaddleRoundTrip(t *testing.T) {
	const height, paddleHeight = 64, 15
	for p := 0; p <= height-paddleHeight; p++ {
		msg, err := testScheme.Decode(opponentScheme.Encode(PaddleUpdate{Y: p}))
		require.NoError(t, err)
		require.Equal(t, PaddleUpdate{Y: p}, msg)
	}
}

func TestBallRoundTrip(t *testing.T) {
	values := []int{-32768, -129, -1, 0, 1, 63, 64, 127, 128, 255, 256, 32767}
	for _, x := range values {
		for _, y := range values {
			msg, err := testScheme.Decode(EncodeBall(2, x, y))
			require.NoError(t, err)
			require.Equal(t, BallState{X: x, Y: y}, msg)
		}
	}
	msg, err := testScheme.Decode(EncodeBallWithPaddle(2, 10, 20, 30))
	require.NoError(t, err)
	require.Equal(t, BallState{X: 10, Y: 20, Paddle: 30, HasPaddle: true}, msg)
}

func TestEncodeSaturates(t *testing.T) {
	msg, err := testScheme.Decode(EncodeBall(2, 40000, -40000))
	require.NoError(t, err)
	require.Equal(t, BallState{X: 32767, Y: -32768}, msg)
}

func TestRoleRoundTrip(t *testing.T) {
	for _, master := range []bool{true, false} {
		msg, err := testScheme.Decode(EncodeRole(master))
		require.NoError(t, err)
		require.Equal(t, RoleAnnouncement{Master: master}, msg)
	}
}

func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name  string
		frame can.Frame
		kind  Kind
		need  int
	}{
		{"ball 1 byte", can.MustFrame(BallID(2), 1), KindBall, BallLen},
		{"ball 3 bytes", can.MustFrame(BallID(2), 1, 2, 3), KindBall, BallLen},
		{"paddle 1 byte", can.MustFrame(PaddleID(2), 5), KindPaddle, PaddleLen},
		{"paddle empty", can.MustFrame(PaddleID(2)), KindPaddle, PaddleLen},
		{"role empty", can.MustFrame(RoleMasterID), KindRole, RoleLen},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := testScheme.Decode(tc.frame)
			require.Nil(t, msg)
			require.True(t, errors.Is(err, ErrMalformedFrame))
			var mfe *MalformedFrameError
			require.True(t, errors.As(err, &mfe))
			require.Equal(t, tc.kind, mfe.Kind)
			require.Equal(t, tc.need, mfe.Need)
			require.Equal(t, len(tc.frame.Payload()), mfe.Len)
		})
	}
}

func TestDecodeUnknownChannelIgnored(t *testing.T) {
	frames := []can.Frame{
		EncodePaddle(1, 20),        // our own paddle channel
		EncodeBall(1, 1, 2),        // our own ball channel
		EncodePaddle(7, 20),        // unrelated group
		can.MustFrame(0x7ff, 1, 2), // unrelated traffic
		can.MustFrame(0x01, 1),     // single-board firmware command id
	}
	for _, f := range frames {
		msg, err := testScheme.Decode(f)
		require.NoError(t, err, f.String())
		require.Nil(t, msg, f.String())
	}
}

func TestDecodeLegacyPaddle(t *testing.T) {
	legacy := Scheme{Group: 1, Opponent: 2, LegacyPaddle: true}
	msg, err := legacy.Decode(EncodeLegacyPaddle(2, true))
	require.NoError(t, err)
	require.Equal(t, PaddleStep{Up: true}, msg)
	msg, err = legacy.Decode(EncodeLegacyPaddle(2, false))
	require.NoError(t, err)
	require.Equal(t, PaddleStep{}, msg)
	msg, err = legacy.Decode(can.MustFrame(PaddleID(2), 9))
	require.NoError(t, err)
	require.Nil(t, msg)
	msg, err = legacy.Decode(EncodePaddle(2, 33))
	require.NoError(t, err)
	require.Equal(t, PaddleUpdate{Y: 33}, msg)

	_, err = testScheme.Decode(EncodeLegacyPaddle(2, true))
	require.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "ball", KindBall.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}

func TestKindOf(t *testing.T) {
	testCases := []struct {
		id       uint32
		inbound  Kind
		outbound Kind
	}{
		{PaddleID(2), KindPaddle, KindUnknown},
		{BallID(2), KindBall, KindUnknown},
		{PaddleID(1), KindUnknown, KindPaddle},
		{BallID(1), KindUnknown, KindBall},
		{RoleMasterID, KindRole, KindRole},
		{RoleSlaveID, KindRole, KindRole},
		{0x7ff, KindUnknown, KindUnknown},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.inbound, testScheme.KindOf(tc.id), "inbound %d", tc.id)
		require.Equal(t, tc.outbound, testScheme.OutboundKindOf(tc.id), "outbound %d", tc.id)
	}
}
