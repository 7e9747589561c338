package stream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/canpong/pkg/can"
	fx "github.com/robotalks/canpong/pkg/framework"
)

// ConnectFunc establishes the underlying byte stream. It is called again
// after the previous stream fails.
type ConnectFunc func(ctx context.Context) (io.ReadWriteCloser, error)

// DefaultRetryInterval is the delay between failed connection attempts.
const DefaultRetryInterval = time.Second

// txQueueSize bounds frames waiting for the writer.
const txQueueSize = 16

// Bus implements can.Bus over a byte stream. It must be run as a
// framework.Runnable to move frames.
type Bus struct {
	Name          string
	Connect       ConnectFunc
	RetryInterval time.Duration

	rx        *can.Queue
	tx        chan can.Frame
	connected atomic.Bool
	dropped   atomic.Uint64
}

// New creates a Bus, queueSize <= 0 uses can.DefaultQueueSize.
func New(name string, connect ConnectFunc, queueSize int) *Bus {
	return &Bus{
		Name:          name,
		Connect:       connect,
		RetryInterval: DefaultRetryInterval,
		rx:            can.NewQueue(queueSize),
		tx:            make(chan can.Frame, txQueueSize),
	}
}

// NewConn creates a Bus over an already established stream. The Bus stops
// once the stream fails.
func NewConn(name string, conn io.ReadWriteCloser, queueSize int) *Bus {
	var used atomic.Bool
	return New(name, func(context.Context) (io.ReadWriteCloser, error) {
		if used.Swap(true) {
			return nil, can.ErrClosed
		}
		return conn, nil
	}, queueSize)
}

// Connected reports whether a stream is established.
func (b *Bus) Connected() bool {
	return b.connected.Load()
}

// Dropped returns the number of records dropped on receive.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load() + b.rx.Dropped()
}

// TrySend implements can.Bus.
func (b *Bus) TrySend(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return &can.SendError{ID: f.ID, Err: err}
	}
	if !b.connected.Load() {
		return &can.SendError{ID: f.ID, Err: can.ErrNotConnected}
	}
	select {
	case b.tx <- f:
		return nil
	default:
		return &can.SendError{ID: f.ID, Err: can.ErrBusFull}
	}
}

// TryReceive implements can.Bus.
func (b *Bus) TryReceive() (can.Frame, bool) {
	return b.rx.Pop()
}

// Run implements framework.Runnable.
func (b *Bus) Run(ctx context.Context) error {
	for {
		conn, err := b.Connect(ctx)
		if errors.Is(err, can.ErrClosed) {
			return err
		}
		if err == nil {
			glog.Infof("%s: connected", b.Name)
			err = b.serve(ctx, conn)
			glog.Warningf("%s: disconnected: %v", b.Name, err)
		} else {
			glog.Warningf("%s: connect failed: %v", b.Name, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		interval := b.RetryInterval
		if interval == 0 {
			interval = DefaultRetryInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (b *Bus) serve(ctx context.Context, conn io.ReadWriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.connected.Store(true)
	defer b.connected.Store(false)
	go b.writeLoop(ctx, conn)
	return fx.RunWithContextCloser(ctx, conn, func() error {
		return b.readLoop(conn)
	})
}

func (b *Bus) writeLoop(ctx context.Context, conn io.ReadWriteCloser) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-b.tx:
			if err := WriteRecord(conn, f); err != nil {
				glog.Warningf("%s: write %s: %v", b.Name, f, err)
				conn.Close()
				return
			}
			glog.V(3).Infof("%s: TX %s", b.Name, f)
		}
	}
}

func (b *Bus) readLoop(r io.Reader) error {
	var parser Parser
	reader := bufio.NewReader(r)
	for {
		c, err := reader.ReadByte()
		if err != nil {
			return err
		}
		dropped := parser.Dropped
		f, ok := parser.Parse(c)
		if parser.Dropped != dropped {
			b.dropped.Add(parser.Dropped - dropped)
			glog.V(2).Infof("%s: corrupted record dropped", b.Name)
		}
		if ok {
			glog.V(3).Infof("%s: RX %s", b.Name, f)
			b.rx.Push(f)
		}
	}
}
