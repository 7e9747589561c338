// Package envelope wraps frames for transports which echo a sender's own
// messages back, such as MQTT topics and UDP multicast groups.
package envelope

import (
	"fmt"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/protobuf/proto"
	"github.com/google/uuid"

	"github.com/robotalks/canpong/pkg/can"
)

// Envelope is a frame tagged with the endpoint which sent it.
type Envelope struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender,omitempty"`
	ID     uint32 `protobuf:"varint,2,opt,name=id,proto3" json:"id,omitempty"`
	Data   []byte `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Envelope) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// Frame extracts the frame.
func (m *Envelope) Frame() (can.Frame, error) {
	if len(m.Data) > can.MaxDataLen {
		return can.Frame{}, can.ErrFrameTooLong
	}
	return can.NewFrame(m.ID, m.Data...)
}

// Seal encodes f sent by sender.
func Seal(sender string, f can.Frame) ([]byte, error) {
	return proto.Marshal(&Envelope{Sender: sender, ID: f.ID, Data: f.Payload()})
}

// Open decodes an envelope.
func Open(payload []byte) (*Envelope, error) {
	var m Envelope
	if err := proto.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("bad envelope: %w", err)
	}
	return &m, nil
}

// NewSender generates a sender id unique to this process. It starts with
// a stable prefix derived from the machine so a sniffer can tell machines
// apart.
func NewSender() string {
	host := "unknown"
	if id, err := machineid.ProtectedID("canpong"); err == nil && len(id) >= 8 {
		host = id[:8]
	}
	return host + "-" + uuid.NewString()[:8]
}
