package render

import (
	"flag"
	"fmt"
	"io"

	"github.com/robotalks/canpong/pkg/game"
)

// Config selects the renderer.
type Config struct {
	// Mode is one of ascii, see or none.
	Mode string
	Cols int
	Rows int
}

var defaultConfig = Config{Mode: "ascii"}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Mode, "render", defaultConfig.Mode, "Renderer: ascii, see (JSON objects) or none")
	flag.IntVar(&defaultConfig.Cols, "render-cols", defaultConfig.Cols, "ASCII court columns, 0 fits the terminal")
	flag.IntVar(&defaultConfig.Rows, "render-rows", defaultConfig.Rows, "ASCII court rows, 0 fits the terminal")
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

// NewRenderer creates the configured renderer writing to out.
func (c *Config) NewRenderer(out io.Writer, conf game.Config) (Renderer, error) {
	switch c.Mode {
	case "ascii":
		a := NewASCII(out, conf)
		a.Cols, a.Rows = c.Cols, c.Rows
		return a, nil
	case "see":
		return NewSee(out, conf), nil
	case "", "none":
		return Discard, nil
	}
	return nil, fmt.Errorf("unknown renderer %q", c.Mode)
}
