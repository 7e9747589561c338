package peer

import (
	"fmt"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/protocol"
)

// PaddleUpdates selects when the local paddle is sent.
type PaddleUpdates int

// Paddle update modes
const (
	PaddleAlways PaddleUpdates = iota
	PaddleOnChange
)

func (m PaddleUpdates) String() string {
	if m == PaddleOnChange {
		return "on-change"
	}
	return "always"
}

// ParsePaddleUpdates parses "always" or "on-change".
func ParsePaddleUpdates(s string) (PaddleUpdates, error) {
	switch s {
	case "", "always":
		return PaddleAlways, nil
	case "on-change":
		return PaddleOnChange, nil
	}
	return PaddleAlways, fmt.Errorf("unknown paddle update mode %q", s)
}

// Options configures a Peer.
type Options struct {
	Scheme     protocol.Scheme
	Assignment Assignment
	Policy     ConflictPolicy
	// CombinedState appends the Master's paddle to ball frames instead of
	// sending a separate paddle frame.
	CombinedState bool
	PaddleUpdates PaddleUpdates
	Game          game.Config
}

// Input is the debounced local input of one tick.
type Input struct {
	Up           bool
	Down         bool
	AssumeMaster bool
}

// Snapshot is the render view of one tick.
type Snapshot struct {
	Tick         uint64
	Role         Role
	PeerIsMaster bool
	State        game.State
	// LeftPaddleY and RightPaddleY place the paddles on the shared court
	// where the Master's own paddle is on the left.
	LeftPaddleY  int
	RightPaddleY int
	Event        game.Event
}

// Output is the result of one tick.
type Output struct {
	Frames   []can.Frame
	Snapshot Snapshot
	// Errs holds one error per dropped inbound frame.
	Errs []error
}

// Peer is the per-tick state machine of one peer. It owns the simulation
// state and is not safe for concurrent use.
type Peer struct {
	opts    Options
	engine  *game.Engine
	arbiter *Arbiter
	mirror  Mirror
	state   game.State
	tick    uint64

	lastPaddle int
	paddleSent bool
}

// New creates a Peer. A nil r uses a time-seeded random source.
func New(opts Options, r game.Rand) (*Peer, error) {
	if err := opts.Scheme.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Game.Validate(); err != nil {
		return nil, err
	}
	engine := game.New(opts.Game, r)
	return &Peer{
		opts:    opts,
		engine:  engine,
		arbiter: NewArbiter(opts.Assignment, opts.Policy, opts.Scheme.Group, opts.Scheme.Opponent),
		mirror:  Mirror{Engine: engine},
		state:   engine.NewState(),
	}, nil
}

// Options returns the options of the peer.
func (p *Peer) Options() Options {
	return p.opts
}

// Role returns the current role.
func (p *Peer) Role() Role {
	return p.arbiter.Role()
}

// State returns a copy of the simulation state.
func (p *Peer) State() game.State {
	return p.state
}

// Advance runs one tick: role update, local paddle, simulation when Master,
// outbound frames, then the inbound frames in arrival order.
func (p *Peer) Advance(in Input, inbound ...can.Frame) Output {
	p.tick++
	var out Output

	role, announce := p.arbiter.Tick(in.AssumeMaster)
	p.state.PaddleLocalY = p.engine.MovePaddle(p.state.PaddleLocalY, in.Up, in.Down)
	if role == Master {
		out.Snapshot.Event = p.engine.Step(&p.state)
	}

	if announce {
		out.Frames = append(out.Frames, protocol.EncodeRole(role == Master))
	}
	out.Frames = p.appendState(out.Frames, role)

	for _, f := range inbound {
		if err := p.apply(f); err != nil {
			out.Errs = append(out.Errs, err)
		}
	}

	out.Snapshot = p.snapshot(out.Snapshot.Event)
	return out
}

func (p *Peer) appendState(frames []can.Frame, role Role) []can.Frame {
	group, paddle := p.opts.Scheme.Group, p.state.PaddleLocalY
	if role == Master {
		x, y := p.state.BallPos()
		if p.opts.CombinedState {
			p.markPaddleSent()
			return append(frames, protocol.EncodeBallWithPaddle(group, x, y, paddle))
		}
		frames = append(frames, protocol.EncodeBall(group, x, y))
	}
	if p.opts.PaddleUpdates == PaddleOnChange && p.paddleSent && p.lastPaddle == paddle {
		return frames
	}
	p.markPaddleSent()
	return append(frames, protocol.EncodePaddle(group, paddle))
}

func (p *Peer) markPaddleSent() {
	p.lastPaddle, p.paddleSent = p.state.PaddleLocalY, true
}

func (p *Peer) apply(f can.Frame) error {
	msg, err := p.opts.Scheme.Decode(f)
	if err != nil {
		return err
	}
	switch m := msg.(type) {
	case protocol.RoleAnnouncement:
		p.arbiter.Observe(m)
	case protocol.BallState:
		p.mirror.ApplyBall(&p.state, m)
	case protocol.PaddleUpdate:
		p.mirror.ApplyPaddle(&p.state, m)
	case protocol.PaddleStep:
		p.mirror.ApplyStep(&p.state, m)
	}
	return nil
}

func (p *Peer) snapshot(ev game.Event) Snapshot {
	s := Snapshot{
		Tick:         p.tick,
		Role:         p.arbiter.Role(),
		PeerIsMaster: p.arbiter.PeerIsMaster(),
		State:        p.state,
		LeftPaddleY:  p.state.PaddleLocalY,
		RightPaddleY: p.state.PaddleRemoteY,
		Event:        ev,
	}
	if s.Role == Slave {
		s.LeftPaddleY, s.RightPaddleY = s.RightPaddleY, s.LeftPaddleY
	}
	return s
}
