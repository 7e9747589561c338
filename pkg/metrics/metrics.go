// Package metrics exposes bus and role counters of a node to Prometheus.
package metrics

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/peer"
	"github.com/robotalks/canpong/pkg/protocol"
)

const namespace = "canpong"

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Metrics holds the collectors of one node.
type Metrics struct {
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	sendFailures   prometheus.Counter
	malformed      *prometheus.CounterVec
	role           prometheus.Gauge
	peerIsMaster   prometheus.Gauge
	resets         prometheus.Counter
}

// New creates Metrics registered on reg, which may be nil to skip
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "frames_sent_total",
			Help:      "Frames handed to the bus by kind.",
		}, []string{"kind"}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "frames_received_total",
			Help:      "Frames taken from the bus by kind.",
		}, []string{"kind"}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "send_failures_total",
			Help:      "Frames the bus refused to send.",
		}),
		malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "malformed_frames_total",
			Help:      "Received frames dropped because the payload was too short.",
		}, []string{"kind"}),
		role: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peer",
			Name:      "role",
			Help:      "Current role: 0 undetermined, 1 master, 2 slave.",
		}),
		peerIsMaster: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peer",
			Name:      "peer_is_master",
			Help:      "1 when the opponent last announced Master.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "resets_total",
			Help:      "Ball resets after a miss.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.framesSent, m.framesReceived, m.sendFailures,
			m.malformed, m.role, m.peerIsMaster, m.resets)
	}
	return m
}

// ForPeer creates Metrics registered on reg with a constant peer label.
// Nodes sharing a process and a registry each use their own peer name.
func ForPeer(reg prometheus.Registerer, name string) *Metrics {
	return New(prometheus.WrapRegistererWith(prometheus.Labels{"peer": name}, reg))
}

// Default returns the Metrics registered on the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// FrameSent counts an outbound frame.
func (m *Metrics) FrameSent(kind protocol.Kind) {
	m.framesSent.WithLabelValues(kind.String()).Inc()
}

// FrameReceived counts an inbound frame.
func (m *Metrics) FrameReceived(kind protocol.Kind) {
	m.framesReceived.WithLabelValues(kind.String()).Inc()
}

// SendFailed counts a refused frame.
func (m *Metrics) SendFailed() {
	m.sendFailures.Inc()
}

// Malformed counts a dropped malformed frame.
func (m *Metrics) Malformed(kind protocol.Kind) {
	m.malformed.WithLabelValues(kind.String()).Inc()
}

// Observe updates the gauges from the snapshot of a tick.
func (m *Metrics) Observe(s peer.Snapshot) {
	m.role.Set(float64(s.Role))
	if s.PeerIsMaster {
		m.peerIsMaster.Set(1)
	} else {
		m.peerIsMaster.Set(0)
	}
	if s.Event == game.EventScoreLeft || s.Event == game.EventScoreRight {
		m.resets.Inc()
	}
}

// Server serves /metrics of a Gatherer.
type Server struct {
	Addr     string
	Gatherer prometheus.Gatherer
}

// NewServer creates a Server for the default registry.
func NewServer(addr string) *Server {
	return &Server{Addr: addr, Gatherer: prometheus.DefaultGatherer}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	glog.Infof("metrics: serving on %s", ln.Addr())
	if err := srv.Serve(ln); err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}
