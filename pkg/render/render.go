// Package render draws peer snapshots. Renderers never feed back into
// the peer state.
package render

import (
	fx "github.com/robotalks/canpong/pkg/framework"
	"github.com/robotalks/canpong/pkg/peer"
)

// Renderer receives the snapshot of every tick.
type Renderer interface {
	Render(peer.Snapshot) error
}

// Func is the func form of Renderer.
type Func func(peer.Snapshot) error

// Render implements Renderer.
func (f Func) Render(s peer.Snapshot) error {
	return f(s)
}

// Discard drops all snapshots.
var Discard = Func(func(peer.Snapshot) error { return nil })

// Multi renders to all renderers, returning the collected errors.
func Multi(renderers ...Renderer) Renderer {
	return Func(func(s peer.Snapshot) error {
		var errs fx.AggregatedError
		for _, r := range renderers {
			errs.Add(r.Render(s))
		}
		return errs.Aggregate()
	})
}
