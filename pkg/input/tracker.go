package input

import (
	"sync"

	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/peer"
)

// DefaultDeadband is how far the ball may be off the paddle center
// before a Tracker moves.
const DefaultDeadband = 2

// Tracker is a bot which moves the local paddle towards the ball. It
// learns the ball position by being rendered to.
type Tracker struct {
	Game     game.Config
	Deadband int
	// AssumeMaster triggers master once on the first poll.
	AssumeMaster bool

	lock  sync.Mutex
	snap  peer.Snapshot
	valid bool
	fired bool
}

// NewTracker creates a Tracker.
func NewTracker(conf game.Config, assumeMaster bool) *Tracker {
	return &Tracker{Game: conf, Deadband: DefaultDeadband, AssumeMaster: assumeMaster}
}

// Render receives the latest snapshot.
func (t *Tracker) Render(s peer.Snapshot) error {
	t.lock.Lock()
	t.snap, t.valid = s, true
	t.lock.Unlock()
	return nil
}

// Poll implements Source.
func (t *Tracker) Poll() (in peer.Input) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.AssumeMaster && !t.fired {
		in.AssumeMaster, t.fired = true, true
	}
	if !t.valid {
		return
	}
	target := int(t.snap.State.BallY) + t.Game.BallSize/2
	center := t.snap.State.PaddleLocalY + t.Game.PaddleHeight/2
	switch {
	case target < center-t.Deadband:
		in.Up = true
	case target > center+t.Deadband:
		in.Down = true
	}
	return
}
