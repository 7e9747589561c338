// Package udp carries enveloped frames over an IPv4 multicast group, so
// any number of peers on a LAN share one bus without a broker.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/ipv4"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/can/envelope"
	fx "github.com/robotalks/canpong/pkg/framework"
)

// DefaultTTL keeps frames on the local network.
const DefaultTTL = 1

func init() {
	can.Register("udp", open)
}

// Bus implements can.Bus over UDP multicast.
type Bus struct {
	Group     *net.UDPAddr
	Interface *net.Interface
	TTL       int
	Sender    string

	rx   *can.Queue
	conn atomic.Pointer[ipv4.PacketConn]
}

// New creates a Bus on the multicast group address host:port. An empty
// ifname lets the system pick the interface.
func New(group, ifname string, queueSize int) (*Bus, error) {
	addr, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, err
	}
	if !addr.IP.IsMulticast() {
		return nil, fmt.Errorf("%s is not a multicast address", addr.IP)
	}
	b := &Bus{
		Group:  addr,
		TTL:    DefaultTTL,
		Sender: envelope.NewSender(),
		rx:     can.NewQueue(queueSize),
	}
	if ifname != "" {
		if b.Interface, err = net.InterfaceByName(ifname); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// TrySend implements can.Bus.
func (b *Bus) TrySend(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return &can.SendError{ID: f.ID, Err: err}
	}
	conn := b.conn.Load()
	if conn == nil {
		return &can.SendError{ID: f.ID, Err: can.ErrNotConnected}
	}
	payload, err := envelope.Seal(b.Sender, f)
	if err == nil {
		_, err = conn.WriteTo(payload, nil, b.Group)
	}
	if err != nil {
		return &can.SendError{ID: f.ID, Err: err}
	}
	return nil
}

// TryReceive implements can.Bus.
func (b *Bus) TryReceive() (can.Frame, bool) {
	return b.rx.Pop()
}

// Run implements framework.Runnable.
func (b *Bus) Run(ctx context.Context) error {
	c, err := net.ListenPacket("udp4", fmt.Sprintf("0.0.0.0:%d", b.Group.Port))
	if err != nil {
		return err
	}
	conn := ipv4.NewPacketConn(c)
	if err := b.setup(conn); err != nil {
		c.Close()
		return err
	}
	b.conn.Store(conn)
	defer b.conn.Store(nil)
	glog.Infof("udp: joined %s", b.Group)
	return fx.RunWithContextCloser(ctx, c, func() error {
		return b.readLoop(conn)
	})
}

func (b *Bus) setup(conn *ipv4.PacketConn) error {
	if err := conn.JoinGroup(b.Interface, &net.UDPAddr{IP: b.Group.IP}); err != nil {
		return fmt.Errorf("join %s: %w", b.Group.IP, err)
	}
	if b.Interface != nil {
		if err := conn.SetMulticastInterface(b.Interface); err != nil {
			return err
		}
	}
	// peers on the same host receive through loopback, own frames are
	// filtered by the envelope sender.
	if err := conn.SetMulticastLoopback(true); err != nil {
		return err
	}
	if err := conn.SetMulticastTTL(b.TTL); err != nil {
		return err
	}
	// not every platform supports control messages.
	if err := conn.SetControlMessage(ipv4.FlagDst, true); err != nil {
		glog.V(2).Infof("udp: control message: %v", err)
	}
	return nil
}

func (b *Bus) readLoop(conn *ipv4.PacketConn) error {
	buf := make([]byte, 1500)
	for {
		n, cm, _, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return can.ErrClosed
			}
			return err
		}
		if cm != nil && cm.Dst != nil && !cm.Dst.IsMulticast() {
			continue
		}
		b.handlePacket(buf[:n])
	}
}

func (b *Bus) handlePacket(payload []byte) {
	m, err := envelope.Open(payload)
	if err != nil {
		glog.V(2).Infof("udp: %v", err)
		return
	}
	if m.Sender == b.Sender {
		return
	}
	f, err := m.Frame()
	if err != nil {
		glog.V(2).Infof("udp: %v", err)
		return
	}
	b.rx.Push(f)
}

// udp://239.0.0.42:7420?iface=eth0&ttl=1&queue=256
func open(u *url.URL) (can.Bus, error) {
	query := u.Query()
	queueSize, err := intParam(query, "queue", 0)
	if err != nil {
		return nil, err
	}
	b, err := New(u.Host, query.Get("iface"), queueSize)
	if err != nil {
		return nil, err
	}
	if b.TTL, err = intParam(query, "ttl", DefaultTTL); err != nil {
		return nil, err
	}
	return b, nil
}

func intParam(query url.Values, name string, def int) (int, error) {
	str := query.Get(name)
	if str == "" {
		return def, nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, str, err)
	}
	return n, nil
}
