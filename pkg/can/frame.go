package can

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// MaxDataLen is the largest payload of a classic CAN frame.
const MaxDataLen = 8

// MaxStandardID is the largest 11-bit standard identifier.
const MaxStandardID uint32 = 0x7ff

// Frame is one bounded-size message unit exchanged over the bus.
type Frame struct {
	ID   uint32
	Len  uint8
	Data [MaxDataLen]byte
}

// NewFrame creates a Frame with payload copied from data.
func NewFrame(id uint32, data ...byte) (Frame, error) {
	f := Frame{ID: id}
	if id > MaxStandardID {
		return f, ErrInvalidID
	}
	if len(data) > MaxDataLen {
		return f, ErrFrameTooLong
	}
	f.Len = uint8(copy(f.Data[:], data))
	return f, nil
}

// MustFrame is NewFrame which panics on invalid input.
func MustFrame(id uint32, data ...byte) Frame {
	f, err := NewFrame(id, data...)
	if err != nil {
		panic(err)
	}
	return f
}

// Payload returns the valid bytes of Data.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return f.Data[:n]
}

// Validate checks the identifier range and payload length.
func (f Frame) Validate() error {
	if f.ID > MaxStandardID {
		return ErrInvalidID
	}
	if f.Len > MaxDataLen {
		return ErrFrameTooLong
	}
	return nil
}

// String formats the frame the way candump does, e.g. "033#0a002000".
func (f Frame) String() string {
	return fmt.Sprintf("%03X#%s", f.ID, hex.EncodeToString(f.Payload()))
}

// ParseFrame parses the candump format produced by String.
func ParseFrame(s string) (Frame, error) {
	idStr, dataStr, ok := strings.Cut(s, "#")
	if !ok {
		return Frame{}, fmt.Errorf("invalid frame %q: missing '#'", s)
	}
	id, err := strconv.ParseUint(idStr, 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid frame id %q: %w", idStr, err)
	}
	data, err := hex.DecodeString(strings.ReplaceAll(dataStr, ".", ""))
	if err != nil {
		return Frame{}, fmt.Errorf("invalid frame data %q: %w", dataStr, err)
	}
	return NewFrame(uint32(id), data...)
}
