package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/term"

	"github.com/robotalks/canpong/pkg/peer"
)

// DefaultHoldTime is how long a key press counts as held. Terminals only
// report key repeats, never releases.
const DefaultHoldTime = 150 * time.Millisecond

// Key bindings.
const (
	KeyUp     = 'w'
	KeyDown   = 's'
	KeyMaster = 'm'
	KeyQuit   = 'q'
	keyCtrlC  = 0x03
)

// Keyboard reads keys from a terminal in raw mode.
// Arrow keys, w/s, k/j move the paddle, m or space assumes master,
// q or Ctrl-C calls OnQuit.
type Keyboard struct {
	In       *os.File
	HoldTime time.Duration
	OnQuit   func()
	// Now is the clock, time.Now when nil.
	Now func() time.Time

	lock      sync.Mutex
	upUntil   time.Time
	downUntil time.Time
	trigger   bool
}

// NewKeyboard creates a Keyboard reading stdin.
func NewKeyboard(onQuit func()) *Keyboard {
	return &Keyboard{In: os.Stdin, HoldTime: DefaultHoldTime, OnQuit: onQuit}
}

// Poll implements Source.
func (k *Keyboard) Poll() peer.Input {
	now := k.now()
	k.lock.Lock()
	defer k.lock.Unlock()
	in := peer.Input{
		Up:           now.Before(k.upUntil),
		Down:         now.Before(k.downUntil),
		AssumeMaster: k.trigger,
	}
	k.trigger = false
	return in
}

// Run implements framework.Runnable.
func (k *Keyboard) Run(ctx context.Context) error {
	fd := int(k.In.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, state)
	} else {
		glog.Warning("keyboard: input is not a terminal, keys need Enter")
	}
	// a read on stdin can't be interrupted, the reader is left behind
	// when ctx is done.
	errCh := make(chan error, 1)
	go func() {
		errCh <- k.read(k.In)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err == io.EOF {
			return nil
		}
		return err
	}
}

func (k *Keyboard) read(r io.Reader) error {
	reader := bufio.NewReader(r)
	var esc []byte
	for {
		c, err := reader.ReadByte()
		if err != nil {
			return err
		}
		// arrow keys arrive as ESC [ A / ESC [ B.
		if len(esc) > 0 || c == 0x1b {
			esc = append(esc, c)
			if len(esc) < 3 {
				continue
			}
			switch string(esc) {
			case "\x1b[A":
				c = KeyUp
			case "\x1b[B":
				c = KeyDown
			}
			esc = esc[:0]
		}
		k.key(c)
	}
}

func (k *Keyboard) key(c byte) {
	now := k.now()
	k.lock.Lock()
	defer k.lock.Unlock()
	hold := k.HoldTime
	if hold == 0 {
		hold = DefaultHoldTime
	}
	switch c {
	case KeyUp, 'k', 'W':
		k.upUntil, k.downUntil = now.Add(hold), time.Time{}
	case KeyDown, 'j', 'S':
		k.downUntil, k.upUntil = now.Add(hold), time.Time{}
	case KeyMaster, ' ', 'M':
		k.trigger = true
	case KeyQuit, keyCtrlC:
		if k.OnQuit != nil {
			go k.OnQuit()
		}
	}
}

func (k *Keyboard) now() time.Time {
	if k.Now != nil {
		return k.Now()
	}
	return time.Now()
}
