// Package input provides the local input of a peer: paddle up and down and
// the "assume master" trigger, polled once per tick.
package input

import (
	"sync"

	"github.com/robotalks/canpong/pkg/peer"
)

// Source is polled once per tick and must not block.
type Source interface {
	Poll() peer.Input
}

// Func is the func form of Source.
type Func func() peer.Input

// Poll implements Source.
func (f Func) Poll() peer.Input {
	return f()
}

// None is a Source without any input.
var None = Func(func() peer.Input { return peer.Input{} })

// Merge combines sources, an input is active when any source reports it.
func Merge(sources ...Source) Source {
	return Func(func() (in peer.Input) {
		for _, src := range sources {
			i := src.Poll()
			in.Up = in.Up || i.Up
			in.Down = in.Down || i.Down
			in.AssumeMaster = in.AssumeMaster || i.AssumeMaster
		}
		return
	})
}

// Scripted replays a fixed sequence of inputs, one per poll, then
// reports no input.
type Scripted struct {
	Inputs []peer.Input
	// Loop restarts the sequence when it ends.
	Loop bool

	lock sync.Mutex
	pos  int
}

// Poll implements Source.
func (s *Scripted) Poll() peer.Input {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.pos >= len(s.Inputs) {
		if !s.Loop || len(s.Inputs) == 0 {
			return peer.Input{}
		}
		s.pos = 0
	}
	in := s.Inputs[s.pos]
	s.pos++
	return in
}

// latch turns asynchronous events into per-tick inputs. Directions stay
// active while held, the master trigger is reported once per press.
type latch struct {
	lock    sync.Mutex
	up      bool
	down    bool
	trigger bool
}

func (l *latch) set(up, down bool) {
	l.lock.Lock()
	l.up, l.down = up, down
	l.lock.Unlock()
}

func (l *latch) fire() {
	l.lock.Lock()
	l.trigger = true
	l.lock.Unlock()
}

func (l *latch) poll() peer.Input {
	l.lock.Lock()
	defer l.lock.Unlock()
	in := peer.Input{Up: l.up, Down: l.down, AssumeMaster: l.trigger}
	l.trigger = false
	return in
}
