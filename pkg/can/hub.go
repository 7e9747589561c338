package can

import (
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Hub is an in-memory broadcast bus. Every frame sent by a Port is
// delivered to all other attached Ports, never back to the sender,
// which matches CAN controllers without self-reception.
type Hub struct {
	// QueueSize is the receive queue size of newly attached ports.
	QueueSize int
	// Drop, when set, is consulted for every delivery and discards the
	// frame for that receiver when it returns true. Used to inject loss.
	Drop func(from, to string, f Frame) bool

	lock  sync.RWMutex
	ports []*Port
}

// Port is a Hub attachment implementing Bus.
type Port struct {
	hub    *Hub
	name   string
	queue  *Queue
	closed bool
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{QueueSize: DefaultQueueSize}
}

// Attach adds a new node to the hub.
func (h *Hub) Attach(name string) *Port {
	p := &Port{hub: h, name: name, queue: NewQueue(h.QueueSize)}
	h.lock.Lock()
	h.ports = append(h.ports, p)
	h.lock.Unlock()
	glog.V(2).Infof("hub: %q attached", name)
	return p
}

func (h *Hub) detach(p *Port) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for n, port := range h.ports {
		if port == p {
			h.ports = append(h.ports[:n], h.ports[n+1:]...)
			break
		}
	}
	p.closed = true
}

func (h *Hub) broadcast(from *Port, f Frame) error {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if from.closed {
		return ErrClosed
	}
	for _, p := range h.ports {
		if p == from {
			continue
		}
		if drop := h.Drop; drop != nil && drop(from.name, p.name, f) {
			continue
		}
		if !p.queue.Push(f) {
			glog.V(2).Infof("hub: %q rx queue full, dropped %s", p.name, f)
		}
	}
	return nil
}

// Name implements framework.Named.
func (p *Port) Name() string {
	return p.name
}

// TrySend implements Bus.
func (p *Port) TrySend(f Frame) error {
	if err := f.Validate(); err != nil {
		return &SendError{ID: f.ID, Err: err}
	}
	if err := p.hub.broadcast(p, f); err != nil {
		return &SendError{ID: f.ID, Err: err}
	}
	return nil
}

// TryReceive implements Bus.
func (p *Port) TryReceive() (Frame, bool) {
	return p.queue.Pop()
}

// Dropped returns the number of frames dropped on receive.
func (p *Port) Dropped() uint64 {
	return p.queue.Dropped()
}

// Close detaches the port from the hub.
func (p *Port) Close() error {
	p.hub.detach(p)
	return nil
}

// RandomLoss returns a Hub.Drop func discarding the given fraction of
// deliveries. A nil r uses a time-seeded source.
func RandomLoss(rate float64, r *rand.Rand) func(from, to string, f Frame) bool {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var lock sync.Mutex
	return func(string, string, Frame) bool {
		lock.Lock()
		defer lock.Unlock()
		return r.Float64() < rate
	}
}
