package sh

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/node"
	"github.com/robotalks/canpong/pkg/protocol"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *node.Config
	Conn   *BusConn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// DefaultWatchTime is how long watch runs without an argument.
const DefaultWatchTime = 5 * time.Second

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&SendCmd,
		&WatchCmd,
	}

	// ErrNotConnected is reported by commands requiring a bus.
	ErrNotConnected = errors.New("not connected")
)

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *node.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// FrameRecord is the JSON form of a printed frame.
type FrameRecord struct {
	Time        time.Time `json:"time"`
	ID          uint32    `json:"id"`
	Data        string    `json:"data"`
	Description string    `json:"desc"`
}

// NewFrameRecord decodes a frame for printing.
func NewFrameRecord(f can.Frame, at time.Time) FrameRecord {
	return FrameRecord{
		Time:        at,
		ID:          f.ID,
		Data:        hex.EncodeToString(f.Payload()),
		Description: protocol.Describe(f),
	}
}

// String formats the record in candump style followed by the decoded message.
func (r FrameRecord) String() string {
	return fmt.Sprintf("%03X#%s %s", r.ID, r.Data, r.Description)
}

// PrintFrame prints a frame in the output format of the shell.
func (s *Shell) PrintFrame(c *ishell.Context, f can.Frame) {
	rec := NewFrameRecord(f, time.Now())
	if s.OutputJSON {
		out, err := json.Marshal(rec)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(rec.String())
}

// SendFrames sends frames on the current bus.
func SendFrames(c *ishell.Context, frames ...can.Frame) error {
	s := ShellFrom(c)
	if s.Conn == nil {
		c.Err(ErrNotConnected)
		return ErrNotConnected
	}
	if err := s.Conn.Send(frames...); err != nil {
		c.Err(err)
		return err
	}
	for _, f := range frames {
		s.PrintFrame(c, f)
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens a bus, replacing the current one.
func (s *Shell) Connect(busURL string) error {
	conn, err := Dial(busURL)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", busURL))
	return nil
}

// Disconnect closes the current bus.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.BusURL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.BusURL)
		}
		if err := s.Connect(s.Config.BusURL); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.BusURL, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// ParseWatchTime parses the optional watch duration argument.
func ParseWatchTime(args []string) (time.Duration, error) {
	if len(args) == 0 {
		return DefaultWatchTime, nil
	}
	if secs, err := strconv.Atoi(args[0]); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(args[0])
}

var (
	// ConnectCmd opens a bus.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[BUS_URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			busURL := s.Config.BusURL
			if len(c.Args) > 0 {
				busURL = c.Args[0]
			}
			if err := s.Connect(busURL); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes the current bus.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// SendCmd sends raw frames in candump format.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "ID#DATA ...",
		Func: MustBeConnected(func(c *ishell.Context) {
			frames := make([]can.Frame, 0, len(c.Args))
			for _, arg := range c.Args {
				f, err := can.ParseFrame(arg)
				if err != nil {
					c.Err(err)
					return
				}
				frames = append(frames, f)
			}
			SendFrames(c, frames...)
		}),
	}

	// WatchCmd prints received frames.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[SECONDS|DURATION]",
		Func: MustBeConnected(func(c *ishell.Context) {
			d, err := ParseWatchTime(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			ctx, cancel := context.WithTimeout(context.Background(), d)
			defer cancel()
			s.Conn.Watch(ctx, func(f can.Frame) { s.PrintFrame(c, f) })
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(node.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
