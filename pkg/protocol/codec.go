package protocol

import (
	"encoding/binary"
	"math"

	"github.com/robotalks/canpong/pkg/can"
)

// Payload lengths.
const (
	PaddleLen         = 2
	BallLen           = 4
	BallWithPaddleLen = 6
	RoleLen           = 1
	LegacyPaddleLen   = 1
)

// Legacy paddle direction bytes.
const (
	LegacyUp   byte = 1
	LegacyDown byte = 2
)

// Message is a decoded frame.
type Message interface {
	Kind() Kind
}

// PaddleUpdate carries the absolute paddle coordinate of the sender.
type PaddleUpdate struct {
	Y int
}

// Kind implements Message.
func (PaddleUpdate) Kind() Kind { return KindPaddle }

// PaddleStep is a relative paddle move decoded from a legacy frame.
type PaddleStep struct {
	Up bool
}

// Kind implements Message.
func (PaddleStep) Kind() Kind { return KindPaddle }

// BallState carries the ball position, optionally with the sender's paddle.
type BallState struct {
	X, Y      int
	Paddle    int
	HasPaddle bool
}

// Kind implements Message.
func (BallState) Kind() Kind { return KindBall }

// RoleAnnouncement carries whether the sender asserts master.
type RoleAnnouncement struct {
	Master bool
}

// Kind implements Message.
func (RoleAnnouncement) Kind() Kind { return KindRole }

// EncodePaddle encodes the paddle coordinate of group.
func EncodePaddle(group, y int) can.Frame {
	f := can.Frame{ID: PaddleID(group), Len: PaddleLen}
	putCoord(f.Data[0:], y)
	return f
}

// EncodeBall encodes the ball position broadcast by group.
func EncodeBall(group, x, y int) can.Frame {
	f := can.Frame{ID: BallID(group), Len: BallLen}
	putCoord(f.Data[0:], x)
	putCoord(f.Data[2:], y)
	return f
}

// EncodeBallWithPaddle encodes the ball position with group's own paddle appended.
func EncodeBallWithPaddle(group, x, y, paddle int) can.Frame {
	f := EncodeBall(group, x, y)
	f.Len = BallWithPaddleLen
	putCoord(f.Data[4:], paddle)
	return f
}

// EncodeRole encodes a role announcement.
func EncodeRole(master bool) can.Frame {
	if master {
		return can.Frame{ID: RoleMasterID, Len: RoleLen, Data: [can.MaxDataLen]byte{1}}
	}
	return can.Frame{ID: RoleSlaveID, Len: RoleLen}
}

// EncodeLegacyPaddle encodes a 1-byte direction command on group's paddle channel.
func EncodeLegacyPaddle(group int, up bool) can.Frame {
	f := can.Frame{ID: PaddleID(group), Len: LegacyPaddleLen, Data: [can.MaxDataLen]byte{LegacyDown}}
	if up {
		f.Data[0] = LegacyUp
	}
	return f
}

// Encode encodes a Message sent by the local group.
func (s Scheme) Encode(msg Message) can.Frame {
	switch m := msg.(type) {
	case PaddleUpdate:
		return EncodePaddle(s.Group, m.Y)
	case PaddleStep:
		return EncodeLegacyPaddle(s.Group, m.Up)
	case BallState:
		if m.HasPaddle {
			return EncodeBallWithPaddle(s.Group, m.X, m.Y, m.Paddle)
		}
		return EncodeBall(s.Group, m.X, m.Y)
	case RoleAnnouncement:
		return EncodeRole(m.Master)
	}
	panic("unknown message type")
}

// Decode decodes a received frame. It returns nil Message and nil error
// for identifiers which don't belong to the opponent or the role channels.
func (s Scheme) Decode(f can.Frame) (Message, error) {
	kind := s.KindOf(f.ID)
	data := f.Payload()
	switch kind {
	case KindPaddle:
		if s.LegacyPaddle && len(data) == LegacyPaddleLen {
			switch data[0] {
			case LegacyUp:
				return PaddleStep{Up: true}, nil
			case LegacyDown:
				return PaddleStep{}, nil
			}
			// other values are commands the legacy firmware ignores too.
			return nil, nil
		}
		if len(data) < PaddleLen {
			return nil, malformed(f, kind, PaddleLen)
		}
		return PaddleUpdate{Y: coord(data[0:])}, nil
	case KindBall:
		if len(data) < BallLen {
			return nil, malformed(f, kind, BallLen)
		}
		msg := BallState{X: coord(data[0:]), Y: coord(data[2:])}
		if len(data) >= BallWithPaddleLen {
			msg.Paddle, msg.HasPaddle = coord(data[4:]), true
		}
		return msg, nil
	case KindRole:
		if len(data) < RoleLen {
			return nil, malformed(f, kind, RoleLen)
		}
		return RoleAnnouncement{Master: data[0] == 1}, nil
	}
	return nil, nil
}

func malformed(f can.Frame, kind Kind, need int) error {
	return &MalformedFrameError{ID: f.ID, Kind: kind, Len: len(f.Payload()), Need: need}
}

// putCoord writes v as int16 little-endian, saturating out-of-range values.
func putCoord(b []byte, v int) {
	if v > math.MaxInt16 {
		v = math.MaxInt16
	} else if v < math.MinInt16 {
		v = math.MinInt16
	}
	binary.LittleEndian.PutUint16(b, uint16(int16(v)))
}

func coord(b []byte) int {
	return int(int16(binary.LittleEndian.Uint16(b)))
}
