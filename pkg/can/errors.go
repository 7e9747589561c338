package can

import (
	"errors"
	"fmt"
)

var (
	// ErrBusFull indicates the transmit path can't take the frame right now.
	ErrBusFull = errors.New("bus full")
	// ErrFrameTooLong indicates the payload exceeds MaxDataLen.
	ErrFrameTooLong = errors.New("frame payload too long")
	// ErrInvalidID indicates the identifier is outside the standard range.
	ErrInvalidID = errors.New("invalid frame identifier")
	// ErrClosed indicates the bus has been closed.
	ErrClosed = errors.New("bus closed")
	// ErrNotConnected indicates the underlying link is not up yet.
	ErrNotConnected = errors.New("bus not connected")
)

// SendError is a transport send failure for a specific frame.
type SendError struct {
	ID  uint32
	Err error
}

// Error implements error.
func (e *SendError) Error() string {
	return fmt.Sprintf("send frame %03X: %v", e.ID, e.Err)
}

// Unwrap returns the transport cause.
func (e *SendError) Unwrap() error {
	return e.Err
}
