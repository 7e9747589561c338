// Package node runs a peer on a bus inside the framework loop: inputs and
// the bus are sensed, the peer advances, frames are sent, then the tick is
// rendered.
package node

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"

	"github.com/robotalks/canpong/pkg/can"
	fx "github.com/robotalks/canpong/pkg/framework"
	"github.com/robotalks/canpong/pkg/input"
	"github.com/robotalks/canpong/pkg/metrics"
	"github.com/robotalks/canpong/pkg/peer"
	"github.com/robotalks/canpong/pkg/protocol"
	"github.com/robotalks/canpong/pkg/render"
)

// WarnInterval limits repeated warnings, e.g. send failures on a
// disconnected bus.
const WarnInterval = time.Second

// DefaultMaxReceive bounds the frames drained from the bus in one tick.
// A peer sends at most three frames per tick.
const DefaultMaxReceive = 64

// Node is a peer attached to a bus.
type Node struct {
	Bus      can.Bus
	Input    input.Source
	Renderer render.Renderer
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// MetricsAddr serves /metrics when not empty.
	MetricsAddr string
	// MaxReceive bounds the frames applied per tick, DefaultMaxReceive
	// when zero. Frames left pending are applied in the next tick.
	MaxReceive int

	peer    *peer.Peer
	scheme  protocol.Scheme
	in      peer.Input
	inbound []can.Frame
	out     peer.Output

	warnLimiter *rate.Limiter
	suppressed  int
}

// New creates a Node.
func New(p *peer.Peer, bus can.Bus, src input.Source, r render.Renderer) *Node {
	if src == nil {
		src = input.None
	}
	if r == nil {
		r = render.Discard
	}
	return &Node{
		Bus:         bus,
		Input:       src,
		Renderer:    r,
		peer:        p,
		scheme:      p.Options().Scheme,
		warnLimiter: rate.NewLimiter(rate.Every(WarnInterval), 1),
	}
}

// Peer returns the peer state machine.
func (n *Node) Peer() *peer.Peer {
	return n.peer
}

// Snapshot returns the snapshot of the last tick.
func (n *Node) Snapshot() peer.Snapshot {
	return n.out.Snapshot
}

// AddToLoop implements framework.LoopAdder.
func (n *Node) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, fx.ControlFunc(n.sense))
	l.AddController(fx.PrLvControl, fx.ControlFunc(n.control))
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(n.acuate))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(n.postProc))
	if r, ok := n.Bus.(fx.Runnable); ok {
		l.AddRunnable(fx.NamedRun("bus", r))
	}
	if r, ok := n.Input.(fx.Runnable); ok {
		l.AddRunnable(fx.NamedRun("input", r))
	}
	if n.MetricsAddr != "" {
		l.AddRunnable(fx.NamedRun("metrics", metrics.NewServer(n.MetricsAddr)))
	}
}

func (n *Node) sense(fx.ControlContext) error {
	n.in = n.Input.Poll()
	max := n.MaxReceive
	if max <= 0 {
		max = DefaultMaxReceive
	}
	n.inbound = n.inbound[:0]
	for len(n.inbound) < max {
		f, ok := n.Bus.TryReceive()
		if !ok {
			break
		}
		glog.V(2).Infof("RX %s", f)
		if n.Metrics != nil {
			n.Metrics.FrameReceived(n.scheme.KindOf(f.ID))
		}
		n.inbound = append(n.inbound, f)
	}
	return nil
}

func (n *Node) control(fx.ControlContext) error {
	n.out = n.peer.Advance(n.in, n.inbound...)
	for _, err := range n.out.Errs {
		var mf *protocol.MalformedFrameError
		if n.Metrics != nil && errors.As(err, &mf) {
			n.Metrics.Malformed(mf.Kind)
		}
		n.warnf("dropped frame: %v", err)
	}
	return nil
}

func (n *Node) acuate(fx.ControlContext) error {
	for _, f := range n.out.Frames {
		if err := n.Bus.TrySend(f); err != nil {
			if n.Metrics != nil {
				n.Metrics.SendFailed()
			}
			n.warnf("send failed: %v", err)
			continue
		}
		glog.V(2).Infof("TX %s", f)
		if n.Metrics != nil {
			n.Metrics.FrameSent(n.scheme.OutboundKindOf(f.ID))
		}
	}
	return nil
}

func (n *Node) postProc(fx.ControlContext) error {
	if n.Metrics != nil {
		n.Metrics.Observe(n.out.Snapshot)
	}
	if err := n.Renderer.Render(n.out.Snapshot); err != nil {
		n.warnf("render: %v", err)
	}
	return nil
}

func (n *Node) warnf(format string, args ...interface{}) {
	if !n.warnLimiter.Allow() {
		n.suppressed++
		return
	}
	msg := fmt.Sprintf(format, args...)
	if n.suppressed > 0 {
		msg = fmt.Sprintf("%s (%d similar suppressed)", msg, n.suppressed)
		n.suppressed = 0
	}
	glog.Warning(msg)
}
