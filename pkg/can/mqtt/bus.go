// Package mqtt carries frames over an MQTT broker. Each frame is published
// to <prefix>frames/<id> inside an envelope naming the sending endpoint, so
// an endpoint ignores its own frames which the broker echoes back.
package mqtt

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/can/envelope"
)

// FramesTopic is the topic under the prefix where frames are published.
const FramesTopic = "frames"

// DefaultConnectTimeout bounds each initial connection attempt.
const DefaultConnectTimeout = 5 * time.Second

func init() {
	can.Register("mqtt", open)
}

// Bus implements can.Bus over MQTT.
type Bus struct {
	Queue  *Queue
	Sender string

	rx *can.Queue
}

// New creates a Bus, queueSize <= 0 uses can.DefaultQueueSize.
func New(q *Queue, queueSize int) *Bus {
	return &Bus{Queue: q, Sender: envelope.NewSender(), rx: can.NewQueue(queueSize)}
}

// FrameTopic returns the topic of frames with the identifier.
func FrameTopic(id uint32) string {
	return fmt.Sprintf("%s/%03x", FramesTopic, id)
}

// TrySend implements can.Bus.
func (b *Bus) TrySend(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return &can.SendError{ID: f.ID, Err: err}
	}
	if !b.Queue.Client.IsConnectionOpen() {
		return &can.SendError{ID: f.ID, Err: can.ErrNotConnected}
	}
	payload, err := envelope.Seal(b.Sender, f)
	if err != nil {
		return &can.SendError{ID: f.ID, Err: err}
	}
	b.Queue.Pub(FrameTopic(f.ID), payload)
	return nil
}

// TryReceive implements can.Bus.
func (b *Bus) TryReceive() (can.Frame, bool) {
	return b.rx.Pop()
}

// Run implements framework.Runnable.
func (b *Bus) Run(ctx context.Context) error {
	sub := b.Queue.Sub(FramesTopic+"/+", b.handleMsg)
	defer b.Queue.Close()
	defer sub.Close()
	for {
		token := b.Queue.Connect()
		if token.WaitTimeout(DefaultConnectTimeout) && token.Error() == nil {
			break
		}
		glog.Warningf("mqtt: connect failed: %v", token.Error())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (b *Bus) handleMsg(topic string, payload []byte) {
	m, err := envelope.Open(payload)
	if err != nil {
		glog.V(2).Infof("mqtt: %s: %v", topic, err)
		return
	}
	if m.Sender == b.Sender {
		return
	}
	f, err := m.Frame()
	if err != nil {
		glog.V(2).Infof("mqtt: %s: %v", topic, err)
		return
	}
	b.rx.Push(f)
}

func open(u *url.URL) (can.Bus, error) {
	opts, topicPrefix := ClientOptionsFromURL(u)
	queueSize := 0
	if str := u.Query().Get("queue"); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil {
			return nil, fmt.Errorf("invalid queue size %q: %w", str, err)
		}
		queueSize = n
	}
	sender := envelope.NewSender()
	if opts.ClientID == "" {
		opts.SetClientID("canpong-" + sender)
	}
	b := New(NewQueue(opts, topicPrefix), queueSize)
	b.Sender = sender
	return b, nil
}
