package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/peer"
)

func testSnapshot() peer.Snapshot {
	return peer.Snapshot{
		Tick:         7,
		Role:         peer.Master,
		State:        game.State{BallX: 64.5, BallY: 32, BallVelocityX: -2, BallVelocityY: 1},
		LeftPaddleY:  20,
		RightPaddleY: 0,
	}
}

func TestASCII(t *testing.T) {
	var out bytes.Buffer
	a := NewASCII(&out, game.DefaultConfig())
	a.Cols, a.Rows = 64, 16
	require.False(t, a.Home)
	require.NoError(t, a.Render(testSnapshot()))

	lines := strings.Split(out.String(), "\r\n")
	require.Len(t, lines, 16+3+1)
	require.Equal(t, strings.Repeat("-", 66), lines[0])
	require.Equal(t, strings.Repeat("-", 66), lines[17])
	require.Contains(t, lines[18], "tick 7")
	require.Contains(t, lines[18], "master")
	require.Contains(t, lines[18], "ball (64,32)")

	grid := lines[1:17]
	for y, line := range grid {
		require.Len(t, line, 66)
		row := line[1 : len(line)-1]
		require.Equal(t, y >= 5 && y <= 8, row[0] == '|', "left paddle row %d", y)
		require.Equal(t, y <= 3, row[63] == '|', "right paddle row %d", y)
		require.Equal(t, y == 8, strings.Contains(row, "oo"), "ball row %d", y)
	}
}

func TestASCIIBallOutside(t *testing.T) {
	var out bytes.Buffer
	a := NewASCII(&out, game.DefaultConfig())
	a.Cols, a.Rows = 64, 16
	s := testSnapshot()
	s.State.BallX = -10
	require.NoError(t, a.Render(s))
	lines := strings.Split(out.String(), "\r\n")
	for _, line := range lines[1:17] {
		require.NotContains(t, line, "o")
	}
}

func TestSee(t *testing.T) {
	var out bytes.Buffer
	v := NewSee(&out, game.DefaultConfig())
	decode := func() []Message {
		var msgs []Message
		require.NoError(t, json.Unmarshal(out.Bytes(), &msgs))
		out.Reset()
		return msgs
	}

	s := testSnapshot()
	require.NoError(t, v.Render(s))
	msgs := decode()
	require.Len(t, msgs, 9)
	require.Equal(t, ActionReset, msgs[0].Action)
	require.Equal(t, "corner-rb", msgs[4].Object[PropID])
	require.Equal(t, "ball", msgs[7].Object[PropID])
	require.Equal(t, "master", msgs[7].Object[PropStyle])

	require.NoError(t, v.Render(s))
	require.Zero(t, out.Len())

	s.State.BallX += 2
	s.Tick++
	require.NoError(t, v.Render(s))
	msgs = decode()
	require.Len(t, msgs, 1)
	rc := msgs[0].Object[PropRect].(map[string]interface{})
	require.Equal(t, 66.0, rc["x"])
}

func TestMulti(t *testing.T) {
	var calls int
	ok := Func(func(peer.Snapshot) error { calls++; return nil })
	failed := errors.New("failed")
	bad := Func(func(peer.Snapshot) error { calls++; return failed })

	require.NoError(t, Multi(ok, Discard, ok).Render(testSnapshot()))
	require.Equal(t, 2, calls)
	err := Multi(bad, ok).Render(testSnapshot())
	require.True(t, errors.Is(err, failed))
	require.Equal(t, 4, calls)
}

func TestConfigNewRenderer(t *testing.T) {
	testCases := []struct {
		mode   string
		expect interface{}
	}{
		{"ascii", &ASCII{}},
		{"see", &See{}},
		{"none", Discard},
	}
	for _, tc := range testCases {
		t.Run(tc.mode, func(t *testing.T) {
			c := NewConfig()
			c.Mode = tc.mode
			r, err := c.NewRenderer(&bytes.Buffer{}, game.DefaultConfig())
			require.NoError(t, err)
			require.IsType(t, tc.expect, r)
		})
	}
	c := NewConfig()
	c.Mode = "3d"
	_, err := c.NewRenderer(&bytes.Buffer{}, game.DefaultConfig())
	require.Error(t, err)
}
