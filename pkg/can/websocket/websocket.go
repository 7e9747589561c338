// Package websocket carries stream records over websocket connections
// and provides a relay which acts as a software bus for its clients.
package websocket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/can/stream"
)

func init() {
	can.Register("ws", open)
	can.Register("wss", open)
}

// Dial connects to a relay. Every record is sent as one binary message.
func Dial(wsURL, origin string) stream.ConnectFunc {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		conf, err := websocket.NewConfig(wsURL, origin)
		if err != nil {
			return nil, err
		}
		conn, err := conf.DialContext(ctx)
		if err != nil {
			return nil, err
		}
		conn.PayloadType = websocket.BinaryFrame
		return conn, nil
	}
}

func open(u *url.URL) (can.Bus, error) {
	origin := u.Query().Get("origin")
	if origin == "" {
		scheme := "http"
		if u.Scheme == "wss" {
			scheme = "https"
		}
		origin = scheme + "://" + u.Host
	}
	return stream.New("ws:"+u.Host+u.Path, Dial(u.String(), origin), 0), nil
}

// Relay forwards every message received from a client to all other
// clients. Messages are not inspected.
type Relay struct {
	lock    sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewRelay creates a Relay.
func NewRelay() *Relay {
	return &Relay{clients: make(map[*websocket.Conn]struct{})}
}

// Handler returns the http.Handler accepting websocket clients.
func (r *Relay) Handler() http.Handler {
	return websocket.Server{Handler: r.serve}
}

// Clients returns the number of connected clients.
func (r *Relay) Clients() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.clients)
}

func (r *Relay) serve(conn *websocket.Conn) {
	addr := conn.Request().RemoteAddr
	glog.Infof("relay: %s connected", addr)
	r.lock.Lock()
	r.clients[conn] = struct{}{}
	r.lock.Unlock()
	defer func() {
		r.lock.Lock()
		delete(r.clients, conn)
		r.lock.Unlock()
		conn.Close()
		glog.Infof("relay: %s disconnected", addr)
	}()

	for {
		var msg []byte
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			if err != io.EOF {
				glog.Warningf("relay: %s: %v", addr, err)
			}
			return
		}
		r.broadcast(conn, msg)
	}
}

func (r *Relay) broadcast(from *websocket.Conn, msg []byte) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for conn := range r.clients {
		if conn == from {
			continue
		}
		if err := websocket.Message.Send(conn, msg); err != nil {
			glog.V(2).Infof("relay: send to %s: %v", conn.Request().RemoteAddr, err)
		}
	}
}

// URL converts an http listen address into the ws URL clients dial.
func URL(addr, path string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return fmt.Sprintf("ws://%s%s", addr, path)
}
