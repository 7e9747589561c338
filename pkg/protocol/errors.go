package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame indicates a payload too short for its kind.
	ErrMalformedFrame = errors.New("malformed frame")
)

// MalformedFrameError describes which frame failed to decode.
type MalformedFrameError struct {
	ID   uint32
	Kind Kind
	Len  int
	Need int
}

// Error implements error.
func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed %s frame %03X: %d bytes, need %d", e.Kind, e.ID, e.Len, e.Need)
}

// Is makes errors.Is(err, ErrMalformedFrame) hold.
func (e *MalformedFrameError) Is(target error) bool {
	return target == ErrMalformedFrame
}
