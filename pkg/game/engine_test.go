package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedRand int

func (r fixedRand) Intn(int) int { return int(r) }

func newTestEngine() *Engine {
	return New(DefaultConfig(), fixedRand(0))
}

func TestNewState(t *testing.T) {
	s := newTestEngine().NewState()
	require.Equal(t, State{
		PaddleLocalY:  20,
		PaddleRemoteY: 20,
		BallX:         64,
		BallY:         32,
		BallVelocityX: -2,
		BallVelocityY: 1,
	}, s)
}

func TestStep(t *testing.T) {
	testCases := []struct {
		name   string
		state  State
		expect State
		event  Event
	}{
		{
			name:   "free flight",
			state:  State{PaddleLocalY: 20, PaddleRemoteY: 20, BallX: 64, BallY: 32, BallVelocityX: -2, BallVelocityY: 1},
			expect: State{PaddleLocalY: 20, PaddleRemoteY: 20, BallX: 62, BallY: 33, BallVelocityX: -2, BallVelocityY: 1},
		},
		{
			name:   "left paddle hit",
			state:  State{PaddleLocalY: 25, PaddleRemoteY: 0, BallX: 0, BallY: 30, BallVelocityX: -2, BallVelocityY: 1},
			expect: State{PaddleLocalY: 25, PaddleRemoteY: 0, BallX: 2, BallY: 31, BallVelocityX: 2, BallVelocityY: 1},
			event:  EventBouncePaddle,
		},
		{
			name:   "left paddle edge",
			state:  State{PaddleLocalY: 25, BallX: 2, BallY: 40, BallVelocityX: -2, BallVelocityY: -1},
			expect: State{PaddleLocalY: 25, BallX: 4, BallY: 39, BallVelocityX: 2, BallVelocityY: -1},
			event:  EventBouncePaddle,
		},
		{
			name:   "right paddle hit",
			state:  State{PaddleLocalY: 0, PaddleRemoteY: 25, BallX: 122, BallY: 30, BallVelocityX: 2, BallVelocityY: 1},
			expect: State{PaddleLocalY: 0, PaddleRemoteY: 25, BallX: 120, BallY: 31, BallVelocityX: -2, BallVelocityY: 1},
			event:  EventBouncePaddle,
		},
		{
			name:   "top wall",
			state:  State{BallX: 64, BallY: 0, BallVelocityX: -2, BallVelocityY: -1},
			expect: State{BallX: 62, BallY: 1, BallVelocityX: -2, BallVelocityY: 1},
			event:  EventBounceWall,
		},
		{
			name:   "bottom wall",
			state:  State{BallX: 64, BallY: 60, BallVelocityX: -2, BallVelocityY: 1},
			expect: State{BallX: 62, BallY: 59, BallVelocityX: -2, BallVelocityY: -1},
			event:  EventBounceWall,
		},
		{
			name:   "left miss",
			state:  State{PaddleLocalY: 0, PaddleRemoteY: 7, BallX: 0, BallY: 50, BallVelocityX: -2, BallVelocityY: 1},
			expect: State{PaddleLocalY: 0, PaddleRemoteY: 7, BallX: 64, BallY: 32, BallVelocityX: -2, BallVelocityY: 1},
			event:  EventScoreLeft,
		},
		{
			name:   "right miss",
			state:  State{PaddleLocalY: 3, PaddleRemoteY: 0, BallX: 127, BallY: 50, BallVelocityX: 2, BallVelocityY: -1},
			expect: State{PaddleLocalY: 3, PaddleRemoteY: 0, BallX: 64, BallY: 32, BallVelocityX: -2, BallVelocityY: 1},
			event:  EventScoreRight,
		},
		{
			name:   "already past right edge",
			state:  State{PaddleLocalY: 3, PaddleRemoteY: 0, BallX: 129, BallY: 10, BallVelocityX: 2, BallVelocityY: 1},
			expect: State{PaddleLocalY: 3, PaddleRemoteY: 0, BallX: 64, BallY: 32, BallVelocityX: -2, BallVelocityY: 1},
			event:  EventScoreRight,
		},
		{
			name:   "already past left edge",
			state:  State{PaddleLocalY: 0, PaddleRemoteY: 3, BallX: -1, BallY: 10, BallVelocityX: -2, BallVelocityY: 1},
			expect: State{PaddleLocalY: 0, PaddleRemoteY: 3, BallX: 64, BallY: 32, BallVelocityX: -2, BallVelocityY: 1},
			event:  EventScoreLeft,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.state
			ev := newTestEngine().Step(&s)
			require.Equal(t, tc.expect, s)
			require.Equal(t, tc.event, ev)
		})
	}
}

func TestStepReflectsOncePerCrossing(t *testing.T) {
	e := newTestEngine()
	s := State{BallX: 64, BallY: 0, BallVelocityX: -2, BallVelocityY: -1}
	e.Step(&s)
	require.Equal(t, 1.0, s.BallVelocityY)
	for i := 0; i < 5; i++ {
		e.Step(&s)
		require.Equal(t, 1.0, s.BallVelocityY)
	}

	// ball pushed past the wall by a peer keeps moving away once reflected.
	s = State{BallX: 64, BallY: -3, BallVelocityX: -2, BallVelocityY: -1}
	e.Step(&s)
	require.Equal(t, -2.0, s.BallY)
	for i := 0; i < 5; i++ {
		e.Step(&s)
		require.Equal(t, 1.0, s.BallVelocityY)
	}
}

func TestResetDirection(t *testing.T) {
	s := State{}
	New(DefaultConfig(), fixedRand(0)).ResetBall(&s)
	require.Equal(t, 1.0, s.BallVelocityY)
	New(DefaultConfig(), fixedRand(1)).ResetBall(&s)
	require.Equal(t, -1.0, s.BallVelocityY)
	require.Equal(t, -2.0, s.BallVelocityX)
	require.Equal(t, 64.0, s.BallX)
	require.Equal(t, 32.0, s.BallY)
}

func TestMovePaddle(t *testing.T) {
	e := newTestEngine()
	testCases := []struct {
		y        int
		up, down bool
		expect   int
	}{
		{20, false, false, 20},
		{20, true, false, 18},
		{20, false, true, 22},
		{20, true, true, 20},
		{1, true, false, 0},
		{0, true, false, 0},
		{48, false, true, 49},
		{49, false, true, 49},
		{-10, false, false, 0},
		{200, false, false, 49},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, e.MovePaddle(tc.y, tc.up, tc.down), "%+v", tc)
	}
}

func TestLongRunStaysInCourt(t *testing.T) {
	conf := DefaultConfig()
	e := New(conf, rand.New(rand.NewSource(1)))
	s := e.NewState()
	resets := 0
	for i := 0; i < 20000; i++ {
		// paddles sweep so that both hits and misses happen.
		s.PaddleLocalY = e.ClampPaddle(i % 64)
		s.PaddleRemoteY = e.ClampPaddle(63 - i%64)
		if e.Step(&s) >= EventScoreLeft {
			resets++
		}
		require.True(t, s.BallY >= -1 && s.BallY <= float64(conf.Height-conf.BallSize+1), "y=%v", s.BallY)
		require.True(t, s.BallX >= 0 && s.BallX <= float64(conf.Width), "x=%v", s.BallX)
		require.Equal(t, 2.0, abs(s.BallVelocityX))
		require.Equal(t, 1.0, abs(s.BallVelocityY))
	}
	require.NotZero(t, resets)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	bad := []func(*Config){
		func(c *Config) { c.Width = 0 },
		func(c *Config) { c.PaddleHeight = 65 },
		func(c *Config) { c.BallSize = 64 },
		func(c *Config) { c.PaddleWidth = 62 },
		func(c *Config) { c.PaddleStep = 0 },
		func(c *Config) { c.InitialVelocityX = 0 },
	}
	for i, mutate := range bad {
		c := DefaultConfig()
		mutate(&c)
		require.Error(t, c.Validate(), "case %d", i)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 20, W: 2, H: 15}
	require.True(t, r.Contains(0, 20))
	require.True(t, r.Contains(1, 34))
	require.False(t, r.Contains(2, 20))
	require.False(t, r.Contains(0, 35))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
