package input

import (
	"flag"
	"fmt"
	"time"

	"github.com/robotalks/canpong/pkg/game"
)

// Config selects and configures the input source.
type Config struct {
	// Source is one of keyboard, joystick, bot or none.
	Source        string
	JoystickIndex int
	HoldTime      time.Duration
	// BotMaster makes the bot trigger master on start.
	BotMaster bool
}

var defaultConfig = Config{
	Source:        "keyboard",
	JoystickIndex: -1,
	HoldTime:      DefaultHoldTime,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Source, "input", defaultConfig.Source, "Input source: keyboard, joystick, bot or none")
	flag.IntVar(&defaultConfig.JoystickIndex, "js-device", defaultConfig.JoystickIndex, "Joystick device index, -1 for auto detection")
	flag.DurationVar(&defaultConfig.HoldTime, "key-hold", defaultConfig.HoldTime, "How long a key press keeps the paddle moving")
	flag.BoolVar(&defaultConfig.BotMaster, "bot-master", defaultConfig.BotMaster, "Bot input assumes master on start")
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

// NewSource creates the configured source. onQuit is called when the
// keyboard asks to quit.
func (c *Config) NewSource(conf game.Config, onQuit func()) (Source, error) {
	switch c.Source {
	case "keyboard":
		kb := NewKeyboard(onQuit)
		if c.HoldTime > 0 {
			kb.HoldTime = c.HoldTime
		}
		return kb, nil
	case "joystick":
		return NewJoystick(c.JoystickIndex), nil
	case "bot":
		return NewTracker(conf, c.BotMaster), nil
	case "", "none":
		return None, nil
	}
	return nil, fmt.Errorf("unknown input source %q", c.Source)
}
