package stream

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/term"

	"github.com/robotalks/canpong/pkg/can"
)

func init() {
	can.Register("tcp", openTCP)
	can.Register("serial", openSerial)
}

// Dial connects to a TCP endpoint.
func Dial(addr string) ConnectFunc {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}
}

// Listen accepts TCP connections one at a time on addr.
func Listen(addr string) ConnectFunc {
	var (
		ln   net.Listener
		once sync.Once
	)
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		if ln == nil {
			l, err := net.Listen("tcp", addr)
			if err != nil {
				return nil, err
			}
			glog.Infof("listening on %s", l.Addr())
			ln = l
		}
		once.Do(func() {
			go func() {
				<-ctx.Done()
				ln.Close()
			}()
		})
		return ln.Accept()
	}
}

// OpenDevice opens a character device such as a USB serial adapter and
// switches it to raw mode when it's a terminal.
func OpenDevice(path string) ConnectFunc {
	return func(context.Context) (io.ReadWriteCloser, error) {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return nil, err
		}
		if fd := int(f.Fd()); term.IsTerminal(fd) {
			if _, err := term.MakeRaw(fd); err != nil {
				f.Close()
				return nil, fmt.Errorf("%s: raw mode: %w", path, err)
			}
		}
		return f, nil
	}
}

// tcp://host:port dials, tcp://:port?listen=true accepts.
func openTCP(u *url.URL) (can.Bus, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("tcp bus requires host:port")
	}
	queueSize, err := queueSizeOf(u)
	if err != nil {
		return nil, err
	}
	if listen, _ := strconv.ParseBool(u.Query().Get("listen")); listen {
		return New("tcp-listen:"+u.Host, Listen(u.Host), queueSize), nil
	}
	return New("tcp:"+u.Host, Dial(u.Host), queueSize), nil
}

// serial:///dev/ttyUSB0
func openSerial(u *url.URL) (can.Bus, error) {
	if u.Path == "" {
		return nil, fmt.Errorf("serial bus requires a device path")
	}
	queueSize, err := queueSizeOf(u)
	if err != nil {
		return nil, err
	}
	return New("serial:"+u.Path, OpenDevice(u.Path), queueSize), nil
}

func queueSizeOf(u *url.URL) (int, error) {
	str := u.Query().Get("queue")
	if str == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid queue size %q: %w", str, err)
	}
	return n, nil
}
