package peer

import (
	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/protocol"
)

// Mirror applies decoded frames to the local state without running kinematics.
type Mirror struct {
	Engine *game.Engine
}

// ApplyBall overwrites the ball position with the received values. A
// trailing paddle coordinate replaces the remote paddle, limited to the court.
func (m Mirror) ApplyBall(s *game.State, msg protocol.BallState) {
	s.BallX, s.BallY = float64(msg.X), float64(msg.Y)
	if msg.HasPaddle {
		s.PaddleRemoteY = m.Engine.ClampPaddle(msg.Paddle)
	}
}

// ApplyPaddle overwrites the remote paddle, limited to the court.
func (m Mirror) ApplyPaddle(s *game.State, msg protocol.PaddleUpdate) {
	s.PaddleRemoteY = m.Engine.ClampPaddle(msg.Y)
}

// ApplyStep moves the remote paddle by one step.
func (m Mirror) ApplyStep(s *game.State, msg protocol.PaddleStep) {
	s.PaddleRemoteY = m.Engine.MovePaddle(s.PaddleRemoteY, msg.Up, !msg.Up)
}
