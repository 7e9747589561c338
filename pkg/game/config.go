package game

import "fmt"

// Config defines the court geometry and kinematic constants.
type Config struct {
	Width        int `toml:"width"`
	Height       int `toml:"height"`
	PaddleHeight int `toml:"paddle-height"`
	PaddleWidth  int `toml:"paddle-width"`
	BallSize     int `toml:"ball-size"`
	// PaddleStep is how far a paddle moves per tick per active input.
	PaddleStep int `toml:"paddle-step"`
	// PaddleStart is the initial Y of both paddles.
	PaddleStart int `toml:"paddle-start"`
	// InitialVelocityX is the horizontal velocity after every reset.
	InitialVelocityX float64 `toml:"initial-velocity-x"`
	// InitialVelocityY is the vertical speed after every reset, its sign is random.
	InitialVelocityY float64 `toml:"initial-velocity-y"`
}

// Defaults of the 128x64 OLED carrier board.
const (
	DefaultWidth            = 128
	DefaultHeight           = 64
	DefaultPaddleHeight     = 15
	DefaultPaddleWidth      = 2
	DefaultBallSize         = 4
	DefaultPaddleStep       = 2
	DefaultPaddleStart      = 20
	DefaultInitialVelocityX = -2.0
	DefaultInitialVelocityY = 1.0
)

// DefaultConfig returns the default geometry.
func DefaultConfig() Config {
	return Config{
		Width:            DefaultWidth,
		Height:           DefaultHeight,
		PaddleHeight:     DefaultPaddleHeight,
		PaddleWidth:      DefaultPaddleWidth,
		BallSize:         DefaultBallSize,
		PaddleStep:       DefaultPaddleStep,
		PaddleStart:      DefaultPaddleStart,
		InitialVelocityX: DefaultInitialVelocityX,
		InitialVelocityY: DefaultInitialVelocityY,
	}
}

// Validate checks the geometry is playable.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid court size %dx%d", c.Width, c.Height)
	}
	if c.PaddleHeight <= 0 || c.PaddleHeight > c.Height {
		return fmt.Errorf("paddle height %d must be in (0, %d]", c.PaddleHeight, c.Height)
	}
	if c.PaddleWidth <= 0 || c.BallSize <= 0 || 2*c.PaddleWidth+c.BallSize >= c.Width {
		return fmt.Errorf("paddle width %d and ball size %d don't fit width %d", c.PaddleWidth, c.BallSize, c.Width)
	}
	if c.BallSize >= c.Height {
		return fmt.Errorf("ball size %d must be less than height %d", c.BallSize, c.Height)
	}
	if c.PaddleStep <= 0 {
		return fmt.Errorf("paddle step must be positive")
	}
	if c.InitialVelocityX == 0 {
		return fmt.Errorf("initial horizontal velocity must not be zero")
	}
	return nil
}

// PaddleMax is the largest valid paddle Y.
func (c Config) PaddleMax() int {
	return c.Height - c.PaddleHeight
}
