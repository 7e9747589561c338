package node

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/canpong/pkg/can"
	fx "github.com/robotalks/canpong/pkg/framework"
	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/input"
	"github.com/robotalks/canpong/pkg/metrics"
	"github.com/robotalks/canpong/pkg/peer"
	"github.com/robotalks/canpong/pkg/protocol"
	"github.com/robotalks/canpong/pkg/render"
)

// Config defines the options of a node.
type Config struct {
	// BusURL selects the transport, see can.Open.
	BusURL        string        `toml:"bus"`
	Group         int           `toml:"group"`
	Opponent      int           `toml:"opponent"`
	Role          string        `toml:"role"`
	Conflict      string        `toml:"conflict"`
	CombinedState bool          `toml:"combined-state"`
	PaddleUpdates string        `toml:"paddle-updates"`
	LegacyPaddle  bool          `toml:"legacy-paddle"`
	Interval      time.Duration `toml:"interval"`
	MetricsAddr   string        `toml:"metrics-addr"`
	Game          game.Config   `toml:"game"`
}

var defaultConfig = Config{
	BusURL:        "mem://canpong",
	Group:         1,
	Opponent:      2,
	Role:          peer.Negotiated.String(),
	Conflict:      peer.Race.String(),
	CombinedState: true,
	PaddleUpdates: peer.PaddleAlways.String(),
	Interval:      fx.DefaultInterval,
	Game:          game.DefaultConfig(),
}

func init() {
	if val := os.Getenv("CANPONG_BUS"); val != "" {
		defaultConfig.BusURL = val
	}
	if n, err := strconv.Atoi(os.Getenv("CANPONG_GROUP")); err == nil {
		defaultConfig.Group = n
	}
	if n, err := strconv.Atoi(os.Getenv("CANPONG_OPPONENT")); err == nil {
		defaultConfig.Opponent = n
	}
}

// flagFields copies the field bound to a flag, so explicitly given flags
// can be restored after loading a config file.
var flagFields = map[string]func(dst, src *Config){
	"bus":            func(d, s *Config) { d.BusURL = s.BusURL },
	"group":          func(d, s *Config) { d.Group = s.Group },
	"opponent":       func(d, s *Config) { d.Opponent = s.Opponent },
	"role":           func(d, s *Config) { d.Role = s.Role },
	"conflict":       func(d, s *Config) { d.Conflict = s.Conflict },
	"combined-state": func(d, s *Config) { d.CombinedState = s.CombinedState },
	"paddle-updates": func(d, s *Config) { d.PaddleUpdates = s.PaddleUpdates },
	"legacy-paddle":  func(d, s *Config) { d.LegacyPaddle = s.LegacyPaddle },
	"interval":       func(d, s *Config) { d.Interval = s.Interval },
	"metrics-addr":   func(d, s *Config) { d.MetricsAddr = s.MetricsAddr },
	"width":          func(d, s *Config) { d.Game.Width = s.Game.Width },
	"height":         func(d, s *Config) { d.Game.Height = s.Game.Height },
	"paddle-height":  func(d, s *Config) { d.Game.PaddleHeight = s.Game.PaddleHeight },
	"paddle-width":   func(d, s *Config) { d.Game.PaddleWidth = s.Game.PaddleWidth },
	"ball-size":      func(d, s *Config) { d.Game.BallSize = s.Game.BallSize },
}

// SetupFlags sets command line flags.
func SetupFlags() {
	setupFlagSet(flag.CommandLine, &defaultConfig)
}

func setupFlagSet(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.BusURL, "bus", c.BusURL, "Bus URL: mem://, tcp://, serial://, ws://, mqtt://, udp://, can://")
	fs.IntVar(&c.Group, "group", c.Group, "Group number of this peer")
	fs.IntVar(&c.Opponent, "opponent", c.Opponent, "Group number of the opponent")
	fs.StringVar(&c.Role, "role", c.Role, "Role assignment: negotiated, master or slave")
	fs.StringVar(&c.Conflict, "conflict", c.Conflict, "Dual master policy: race, yield or lowest-group")
	fs.BoolVar(&c.CombinedState, "combined-state", c.CombinedState, "Append the master paddle to ball frames")
	fs.StringVar(&c.PaddleUpdates, "paddle-updates", c.PaddleUpdates, "Paddle frames: always or on-change")
	fs.BoolVar(&c.LegacyPaddle, "legacy-paddle", c.LegacyPaddle, "Accept 1-byte up/down paddle frames")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Tick interval")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.IntVar(&c.Game.Width, "width", c.Game.Width, "Court width")
	fs.IntVar(&c.Game.Height, "height", c.Game.Height, "Court height")
	fs.IntVar(&c.Game.PaddleHeight, "paddle-height", c.Game.PaddleHeight, "Paddle height")
	fs.IntVar(&c.Game.PaddleWidth, "paddle-width", c.Game.PaddleWidth, "Paddle width")
	fs.IntVar(&c.Game.BallSize, "ball-size", c.Game.BallSize, "Ball size")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile loads a TOML config file. Flags given on the command line win
// over the file.
func (c *Config) LoadFile(path string) error {
	return c.loadFile(path, flag.CommandLine, &defaultConfig)
}

func (c *Config) loadFile(path string, fs *flag.FlagSet, flags *Config) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	fs.Visit(func(f *flag.Flag) {
		if restore, ok := flagFields[f.Name]; ok {
			restore(c, flags)
		}
	})
	return nil
}

// PeerOptions converts the config into peer options.
func (c *Config) PeerOptions() (opts peer.Options, err error) {
	opts.Scheme = protocol.Scheme{Group: c.Group, Opponent: c.Opponent, LegacyPaddle: c.LegacyPaddle}
	opts.CombinedState = c.CombinedState
	opts.Game = c.Game
	if opts.Assignment, err = peer.ParseAssignment(c.Role); err != nil {
		return
	}
	if opts.Policy, err = peer.ParseConflictPolicy(c.Conflict); err != nil {
		return
	}
	opts.PaddleUpdates, err = peer.ParsePaddleUpdates(c.PaddleUpdates)
	return
}

// OpenBus opens the configured bus.
func (c *Config) OpenBus() (can.Bus, error) {
	return can.Open(c.BusURL)
}

// NewNode creates a node from the config.
func (c *Config) NewNode(bus can.Bus, src input.Source, r render.Renderer) (*Node, error) {
	return c.newNode(bus, src, r, metrics.Default())
}

// NewNamedNode is NewNode for processes running more than one node. Its
// metrics are registered on reg with the peer label name.
func (c *Config) NewNamedNode(reg prometheus.Registerer, name string, bus can.Bus, src input.Source, r render.Renderer) (*Node, error) {
	return c.newNode(bus, src, r, metrics.ForPeer(reg, name))
}

func (c *Config) newNode(bus can.Bus, src input.Source, r render.Renderer, m *metrics.Metrics) (*Node, error) {
	opts, err := c.PeerOptions()
	if err != nil {
		return nil, err
	}
	p, err := peer.New(opts, nil)
	if err != nil {
		return nil, err
	}
	n := New(p, bus, src, r)
	n.Metrics = m
	n.MetricsAddr = c.MetricsAddr
	return n, nil
}

// NewLoop creates a loop ticking at the configured interval.
func (c *Config) NewLoop() *fx.Loop {
	loop := fx.NewLoop()
	if c.Interval > 0 {
		loop.Interval = c.Interval
	}
	return loop
}
