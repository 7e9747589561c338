package render

import (
	"encoding/json"
	"io"
	"reflect"

	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/peer"
)

// Object is the data model of a visualized object.
type Object map[string]interface{}

// Rect is object rect area.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Pos is a position.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Message is one visualization update.
type Message struct {
	Action   string `json:"action"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Properties
const (
	PropID     = "id"
	PropType   = "type"
	PropRect   = "rect"
	PropOrigin = "origin"
	PropRadius = "radius"
	PropStyle  = "style"
)

// NewObject creates Object.
func NewObject(typ, id string) Object {
	return Object{PropID: id, PropType: typ}
}

// Rc sets rect.
func (o Object) Rc(x, y, w, h float64) Object {
	o[PropRect] = &Rect{X: x, Y: y, W: w, H: h}
	return o
}

// At sets origin.
func (o Object) At(x, y float64) Object {
	o[PropOrigin] = &Pos{X: x, Y: y}
	return o
}

// Radius sets radius.
func (o Object) Radius(r float64) Object {
	o[PropRadius] = r
	return o
}

// Style sets style.
func (o Object) Style(style string) Object {
	o[PropStyle] = style
	return o
}

// With sets a custom property.
func (o Object) With(prop string, val interface{}) Object {
	o[prop] = val
	return o
}

// See writes one JSON array of messages per tick for a web visualizer,
// containing only the objects which changed.
type See struct {
	Out  io.Writer
	Game game.Config

	sent map[string]Object
}

// NewSee creates a See renderer.
func NewSee(out io.Writer, conf game.Config) *See {
	return &See{Out: out, Game: conf}
}

// Render implements Renderer.
func (v *See) Render(s peer.Snapshot) error {
	var msgs []Message
	c := &v.Game
	w, h := float64(c.Width), float64(c.Height)
	if v.sent == nil {
		v.sent = make(map[string]Object)
		msgs = append(msgs,
			Message{Action: ActionReset},
			Message{Action: ActionObject, Object: NewObject("corner", "corner-lt").With("loc", "lt").At(0, 0).Radius(1)},
			Message{Action: ActionObject, Object: NewObject("corner", "corner-lb").With("loc", "lb").At(0, h).Radius(1)},
			Message{Action: ActionObject, Object: NewObject("corner", "corner-rt").With("loc", "rt").At(w, 0).Radius(1)},
			Message{Action: ActionObject, Object: NewObject("corner", "corner-rb").With("loc", "rb").At(w, h).Radius(1)},
		)
	}

	pw, ph, bs := float64(c.PaddleWidth), float64(c.PaddleHeight), float64(c.BallSize)
	x, y := s.State.BallPos()
	for _, obj := range []Object{
		NewObject("paddle", "paddle-left").Rc(0, float64(s.LeftPaddleY), pw, ph),
		NewObject("paddle", "paddle-right").Rc(w-pw, float64(s.RightPaddleY), pw, ph),
		NewObject("ball", "ball").Rc(float64(x), float64(y), bs, bs).Style(s.Role.String()),
		NewObject("status", "status").With("role", s.Role.String()).With("peer_master", s.PeerIsMaster),
	} {
		id := obj[PropID].(string)
		if reflect.DeepEqual(v.sent[id], obj) {
			continue
		}
		v.sent[id] = obj
		msgs = append(msgs, Message{Action: ActionObject, Object: obj})
	}
	if len(msgs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	_, err = v.Out.Write(append(encoded, '\n'))
	return err
}
