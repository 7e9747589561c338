package protocol

import (
	"fmt"

	"github.com/robotalks/canpong/pkg/can"
)

// Channel offsets added to a group number.
const (
	PaddleOffset = 20
	BallOffset   = 50
)

// Fixed role announcement identifiers, shared by all groups.
const (
	RoleMasterID uint32 = 100
	RoleSlaveID  uint32 = 101
)

// Kind identifies the logical message type of a frame.
type Kind int

// Kinds
const (
	KindUnknown Kind = iota
	KindPaddle
	KindBall
	KindRole
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindPaddle:  "paddle",
	KindBall:    "ball",
	KindRole:    "role",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// PaddleID is the channel of paddle updates sent by group.
func PaddleID(group int) uint32 {
	return uint32(group + PaddleOffset)
}

// BallID is the channel of ball state sent by group.
func BallID(group int) uint32 {
	return uint32(group + BallOffset)
}

// Scheme binds the channel identifiers of a local peer and its opponent.
type Scheme struct {
	Group    int
	Opponent int
	// LegacyPaddle accepts 1-byte direction commands (1 up, 2 down) on the
	// opponent paddle channel, as sent by the single-board firmware.
	LegacyPaddle bool
}

// Validate checks that no two message kinds or peers share an identifier.
func (s Scheme) Validate() error {
	if s.Group < 0 || s.Opponent < 0 {
		return fmt.Errorf("group numbers must not be negative: %d, %d", s.Group, s.Opponent)
	}
	if s.Group == s.Opponent {
		return fmt.Errorf("group %d and opponent %d must differ", s.Group, s.Opponent)
	}
	ids := map[uint32]string{
		RoleMasterID: "role master",
		RoleSlaveID:  "role slave",
	}
	for _, ch := range []struct {
		id   uint32
		name string
	}{
		{PaddleID(s.Group), fmt.Sprintf("paddle of group %d", s.Group)},
		{BallID(s.Group), fmt.Sprintf("ball of group %d", s.Group)},
		{PaddleID(s.Opponent), fmt.Sprintf("paddle of group %d", s.Opponent)},
		{BallID(s.Opponent), fmt.Sprintf("ball of group %d", s.Opponent)},
	} {
		if ch.id > can.MaxStandardID {
			return fmt.Errorf("%s: identifier %d out of range", ch.name, ch.id)
		}
		if other, exists := ids[ch.id]; exists {
			return fmt.Errorf("%s collides with %s on identifier %d", ch.name, other, ch.id)
		}
		ids[ch.id] = ch.name
	}
	return nil
}

// KindOf classifies a frame identifier from the local peer's view. Only
// frames sent by the opponent or role announcements are known.
func (s Scheme) KindOf(id uint32) Kind {
	switch id {
	case PaddleID(s.Opponent):
		return KindPaddle
	case BallID(s.Opponent):
		return KindBall
	case RoleMasterID, RoleSlaveID:
		return KindRole
	}
	return KindUnknown
}

// OutboundKindOf classifies a frame identifier sent by the local peer.
func (s Scheme) OutboundKindOf(id uint32) Kind {
	return Scheme{Group: s.Opponent, Opponent: s.Group}.KindOf(id)
}
