package socketcan

import (
	"encoding/binary"
	"fmt"

	"github.com/robotalks/canpong/pkg/can"
)

// frameSize is sizeof(struct can_frame).
const frameSize = 16

// Identifier flags of struct can_frame.
const (
	flagEFF uint32 = 0x80000000
	flagRTR uint32 = 0x40000000
	flagERR uint32 = 0x20000000
)

func marshalFrame(f can.Frame) [frameSize]byte {
	var b [frameSize]byte
	binary.LittleEndian.PutUint32(b[0:], f.ID)
	b[4] = f.Len
	copy(b[8:], f.Payload())
	return b
}

// unmarshalFrame decodes a struct can_frame. Extended, remote and error
// frames are not part of the protocol and are reported as errors.
func unmarshalFrame(b []byte) (can.Frame, error) {
	if len(b) < frameSize {
		return can.Frame{}, fmt.Errorf("short can_frame: %d bytes", len(b))
	}
	id := binary.LittleEndian.Uint32(b[0:])
	if id&(flagEFF|flagRTR|flagERR) != 0 {
		return can.Frame{}, fmt.Errorf("unsupported frame flags %08x", id)
	}
	if b[4] > can.MaxDataLen {
		return can.Frame{}, can.ErrFrameTooLong
	}
	return can.NewFrame(id, b[8:8+b[4]]...)
}
