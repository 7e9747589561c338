package game

import (
	"math"
	"math/rand"
	"time"
)

// Rand is the random source used to pick the vertical direction after a reset.
type Rand interface {
	Intn(n int) int
}

// Event reports what happened in one Step.
type Event int

// Events
const (
	EventNone Event = iota
	EventBounceWall
	EventBouncePaddle
	EventScoreLeft  // ball left the court on the left side
	EventScoreRight // ball left the court on the right side
)

// Engine simulates ball kinematics. Only the master peer steps it.
type Engine struct {
	Config Config
	Rand   Rand
}

// New creates the engine. A nil r uses a time-seeded source.
func New(conf Config, r Rand) *Engine {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{Config: conf, Rand: r}
}

// NewState returns the state at power-on: ball centered, paddles at start.
func (e *Engine) NewState() State {
	s := State{
		PaddleLocalY:  e.ClampPaddle(e.Config.PaddleStart),
		PaddleRemoteY: e.ClampPaddle(e.Config.PaddleStart),
	}
	s.BallX, s.BallY = float64(e.Config.Width/2), float64(e.Config.Height/2)
	s.BallVelocityX, s.BallVelocityY = e.Config.InitialVelocityX, e.Config.InitialVelocityY
	return s
}

// Step advances the ball by one tick.
//
// Reflections are resolved against the position at the start of the tick
// and only when the ball moves towards the wall or paddle, so a ball
// sitting on a boundary reflects exactly once. The ball then moves by its
// velocity, and leaving the court horizontally resets it. A ball which is
// already outside the court, e.g. placed there by a peer, is reset
// without moving.
func (e *Engine) Step(s *State) Event {
	c := &e.Config
	if ev := e.score(s); ev != EventNone {
		return ev
	}
	ev := EventNone

	top, bottom := s.BallY <= 0, s.BallY >= float64(c.Height-c.BallSize)
	if (top && s.BallVelocityY < 0) || (bottom && s.BallVelocityY > 0) {
		s.BallVelocityY = -s.BallVelocityY
		ev = EventBounceWall
	}

	if s.BallX <= float64(c.PaddleWidth) {
		if s.BallVelocityX < 0 && e.overlaps(s.BallY, s.PaddleLocalY) {
			s.BallVelocityX = -s.BallVelocityX
			ev = EventBouncePaddle
		}
	} else if s.BallX >= float64(c.Width-c.PaddleWidth-c.BallSize) {
		if s.BallVelocityX > 0 && e.overlaps(s.BallY, s.PaddleRemoteY) {
			s.BallVelocityX = -s.BallVelocityX
			ev = EventBouncePaddle
		}
	}

	s.BallX += s.BallVelocityX
	s.BallY += s.BallVelocityY

	if scored := e.score(s); scored != EventNone {
		return scored
	}
	return ev
}

func (e *Engine) score(s *State) Event {
	switch {
	case s.BallX < 0:
		e.ResetBall(s)
		return EventScoreLeft
	case s.BallX > float64(e.Config.Width):
		e.ResetBall(s)
		return EventScoreRight
	}
	return EventNone
}

// ResetBall centers the ball with the initial horizontal velocity and a
// vertical direction drawn uniformly from up and down.
func (e *Engine) ResetBall(s *State) {
	c := &e.Config
	s.BallX, s.BallY = float64(c.Width/2), float64(c.Height/2)
	s.BallVelocityX = c.InitialVelocityX
	s.BallVelocityY = math.Abs(c.InitialVelocityY)
	if e.Rand.Intn(2) != 0 {
		s.BallVelocityY = -s.BallVelocityY
	}
}

// MovePaddle applies one tick of discrete input to a paddle coordinate.
func (e *Engine) MovePaddle(y int, up, down bool) int {
	if up {
		y -= e.Config.PaddleStep
	}
	if down {
		y += e.Config.PaddleStep
	}
	return e.ClampPaddle(y)
}

// ClampPaddle limits a paddle coordinate to [0, Height-PaddleHeight].
func (e *Engine) ClampPaddle(y int) int {
	if y < 0 {
		return 0
	}
	if max := e.Config.PaddleMax(); y > max {
		return max
	}
	return y
}

func (e *Engine) overlaps(ballY float64, paddleY int) bool {
	return ballY >= float64(paddleY) && ballY <= float64(paddleY+e.Config.PaddleHeight)
}
