package stream

import (
	"io"

	"github.com/robotalks/canpong/pkg/can"
)

// Sync starts every record.
const Sync byte = 0xA5

// MaxRecordLen is the length of a record with a full payload.
const MaxRecordLen = 5 + can.MaxDataLen

// AppendRecord appends the encoded record of f to b.
func AppendRecord(b []byte, f can.Frame) []byte {
	start := len(b)
	b = append(b, Sync, f.Len, byte(f.ID), byte(f.ID>>8))
	b = append(b, f.Payload()...)
	return append(b, checksum(b[start+1:]))
}

// WriteRecord writes f as a single Write call.
func WriteRecord(w io.Writer, f can.Frame) error {
	var buf [MaxRecordLen]byte
	_, err := w.Write(AppendRecord(buf[:0], f))
	return err
}

func checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return ^sum
}

type parseState int

const (
	stateSync parseState = iota
	stateLen
	stateIDLo
	stateIDHi
	stateData
	stateSum
)

// Parser decodes records from a byte stream one byte at a time.
type Parser struct {
	// Dropped counts records discarded for framing or checksum errors.
	Dropped uint64

	state parseState
	frame can.Frame
	recv  uint8
	sum   byte
}

// Parse consumes one byte and returns a frame when a record completes.
func (p *Parser) Parse(c byte) (can.Frame, bool) {
	switch p.state {
	case stateSync:
		if c == Sync {
			p.state, p.sum = stateLen, 0
		}
		return can.Frame{}, false
	case stateLen:
		if c > can.MaxDataLen {
			return p.resync(c)
		}
		p.frame = can.Frame{Len: c}
		p.state = stateIDLo
	case stateIDLo:
		p.frame.ID = uint32(c)
		p.state = stateIDHi
	case stateIDHi:
		if uint32(c)<<8 > can.MaxStandardID {
			return p.resync(c)
		}
		p.frame.ID |= uint32(c) << 8
		p.recv = 0
		if p.state = stateData; p.frame.Len == 0 {
			p.state = stateSum
		}
	case stateData:
		p.frame.Data[p.recv] = c
		if p.recv++; p.recv >= p.frame.Len {
			p.state = stateSum
		}
	case stateSum:
		p.state = stateSync
		if ^p.sum != c {
			p.Dropped++
			return can.Frame{}, false
		}
		return p.frame, true
	}
	p.sum += c
	return can.Frame{}, false
}

func (p *Parser) resync(c byte) (can.Frame, bool) {
	p.Dropped++
	p.state = stateSync
	if c == Sync {
		p.state, p.sum = stateLen, 0
	}
	return can.Frame{}, false
}
