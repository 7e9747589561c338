package sh

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/canpong/pkg/can"
	fx "github.com/robotalks/canpong/pkg/framework"
)

// PollInterval is how often Watch polls the bus.
const PollInterval = time.Millisecond

// BusConn is an open bus with its transport running in background.
type BusConn struct {
	URL string
	Bus can.Bus

	cancel context.CancelFunc
	done   chan struct{}
}

// Dial opens a bus by URL and starts its transport if needed.
func Dial(busURL string) (*BusConn, error) {
	bus, err := can.Open(busURL)
	if err != nil {
		return nil, err
	}
	return NewBusConn(busURL, bus), nil
}

// NewBusConn wraps an opened bus.
func NewBusConn(busURL string, bus can.Bus) *BusConn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &BusConn{URL: busURL, Bus: bus, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		if r, ok := bus.(fx.Runnable); ok {
			if err := r.Run(ctx); err != nil && ctx.Err() == nil {
				glog.Errorf("%s: %v", busURL, err)
			}
		}
	}()
	return c
}

// Close stops the transport and releases the bus.
func (c *BusConn) Close() error {
	c.cancel()
	<-c.done
	if closer, ok := c.Bus.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Send sends frames in order, stopping at the first failure.
func (c *BusConn) Send(frames ...can.Frame) error {
	for _, f := range frames {
		if err := c.Bus.TrySend(f); err != nil {
			return err
		}
	}
	return nil
}

// Watch calls fn for every received frame until ctx is done.
func (c *BusConn) Watch(ctx context.Context, fn func(can.Frame)) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		for {
			f, ok := c.Bus.TryReceive()
			if !ok {
				break
			}
			fn(f)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
