//go:build linux

package socketcan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"

	"github.com/robotalks/canpong/pkg/can"
)

// pollInterval bounds how long a blocked read delays shutdown.
const pollInterval = 100 * time.Millisecond

func init() {
	can.Register("can", open)
}

// Bus implements can.Bus on a SocketCAN interface.
type Bus struct {
	Interface string

	fd int
	rx *can.Queue
	// open is cleared once Run exits.
	open atomic.Bool
}

// Open binds a raw CAN socket to the interface.
func Open(ifname string, queueSize int) (*Bus, error) {
	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	tv := unix.NsecToTimeval(pollInterval.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", ifname, err)
	}
	b := &Bus{Interface: ifname, fd: fd, rx: can.NewQueue(queueSize)}
	b.open.Store(true)
	return b, nil
}

// TrySend implements can.Bus.
func (b *Bus) TrySend(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return &can.SendError{ID: f.ID, Err: err}
	}
	if !b.open.Load() {
		return &can.SendError{ID: f.ID, Err: can.ErrClosed}
	}
	buf := marshalFrame(f)
	err := unix.Sendto(b.fd, buf[:], unix.MSG_DONTWAIT, nil)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.ENOBUFS):
		err = can.ErrBusFull
	}
	return &can.SendError{ID: f.ID, Err: err}
}

// TryReceive implements can.Bus.
func (b *Bus) TryReceive() (can.Frame, bool) {
	return b.rx.Pop()
}

// Run implements framework.Runnable.
func (b *Bus) Run(ctx context.Context) error {
	defer unix.Close(b.fd)
	defer b.open.Store(false)
	glog.Infof("socketcan: %s up", b.Interface)
	buf := make([]byte, frameSize)
	for ctx.Err() == nil {
		n, _, err := unix.Recvfrom(b.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("socketcan %s: %w", b.Interface, err)
		}
		f, err := unmarshalFrame(buf[:n])
		if err != nil {
			glog.V(2).Infof("socketcan %s: %v", b.Interface, err)
			continue
		}
		b.rx.Push(f)
	}
	return ctx.Err()
}

func open(u *url.URL) (can.Bus, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("can bus requires an interface, e.g. can://can0")
	}
	return Open(u.Host, 0)
}
