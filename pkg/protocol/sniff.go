package protocol

import (
	"fmt"

	"github.com/robotalks/canpong/pkg/can"
)

// Sniff decodes a frame without knowing the groups on the bus. It assumes
// group numbers below BallOffset-PaddleOffset so the paddle and ball
// ranges don't overlap. Role frames have group -1, frames outside the
// ranges decode to a nil Message.
func Sniff(f can.Frame) (group int, msg Message, err error) {
	switch {
	case f.ID == RoleMasterID || f.ID == RoleSlaveID:
		group = -1
	case f.ID >= PaddleOffset && f.ID < BallOffset:
		group = int(f.ID) - PaddleOffset
	case f.ID >= BallOffset && f.ID < RoleMasterID:
		group = int(f.ID) - BallOffset
	default:
		return -1, nil, nil
	}
	msg, err = Scheme{Opponent: group, LegacyPaddle: true}.Decode(f)
	return
}

// Describe formats a sniffed frame for humans.
func Describe(f can.Frame) string {
	group, msg, err := Sniff(f)
	if err != nil {
		return err.Error()
	}
	switch m := msg.(type) {
	case PaddleUpdate:
		return fmt.Sprintf("paddle group=%d y=%d", group, m.Y)
	case PaddleStep:
		if m.Up {
			return fmt.Sprintf("paddle group=%d step=up", group)
		}
		return fmt.Sprintf("paddle group=%d step=down", group)
	case BallState:
		if m.HasPaddle {
			return fmt.Sprintf("ball group=%d x=%d y=%d paddle=%d", group, m.X, m.Y, m.Paddle)
		}
		return fmt.Sprintf("ball group=%d x=%d y=%d", group, m.X, m.Y)
	case RoleAnnouncement:
		if m.Master {
			return "role master"
		}
		return "role slave"
	}
	return "unknown"
}
