package input

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/canpong/pkg/peer"
)

// ErrNoJoystick indicates no joystick device was found.
var ErrNoJoystick = errors.New("no joystick detected")

// jsEvent is struct js_event of the Linux joystick API.
type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

const (
	jsEventButton uint8 = 0x01
	jsEventAxis   uint8 = 0x02
	jsEventInit   uint8 = 0x80
)

type jsDevice interface {
	io.Closer
	Name() string
	ReadEvent() (jsEvent, error)
}

// Joystick reads a game controller. The vertical axis moves the paddle,
// a button press assumes master.
type Joystick struct {
	// DeviceIndex selects /dev/input/jsN, -1 detects the first device.
	DeviceIndex int
	Axis        int
	Deadzone    int
	Button      int

	latch latch
}

// NewJoystick creates a Joystick with the usual left stick and first button.
func NewJoystick(index int) *Joystick {
	return &Joystick{DeviceIndex: index, Axis: 1, Deadzone: 8000}
}

// Poll implements Source.
func (j *Joystick) Poll() peer.Input {
	return j.latch.poll()
}

// Run implements framework.Runnable. The device is reopened when it is
// unplugged.
func (j *Joystick) Run(ctx context.Context) error {
	retry := time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retry:
		}
		dev, err := openJoystick(j.DeviceIndex)
		if err != nil {
			glog.V(1).Infof("joystick: %v", err)
			retry = time.After(time.Second)
			continue
		}
		glog.Infof("joystick: %q opened", dev.Name())
		err = j.poll(ctx, dev)
		glog.Warningf("joystick: %q closed: %v", dev.Name(), err)
		j.latch.set(false, false)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		retry = time.After(time.Second)
	}
}

func (j *Joystick) poll(ctx context.Context, dev jsDevice) error {
	errCh := make(chan error, 1)
	go func() {
		for {
			ev, err := dev.ReadEvent()
			if err != nil {
				errCh <- err
				return
			}
			j.handle(ev)
		}
	}()
	defer dev.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (j *Joystick) handle(ev jsEvent) {
	switch ev.Type &^ jsEventInit {
	case jsEventAxis:
		if int(ev.Number) == j.Axis {
			v := int(ev.Value)
			j.latch.set(v < -j.Deadzone, v > j.Deadzone)
		}
	case jsEventButton:
		if int(ev.Number) == j.Button && ev.Value != 0 && ev.Type&jsEventInit == 0 {
			j.latch.fire()
		}
	}
}
