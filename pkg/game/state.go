package game

// State is the shared simulation state of one peer.
type State struct {
	PaddleLocalY  int
	PaddleRemoteY int
	BallX         float64
	BallY         float64
	BallVelocityX float64
	BallVelocityY float64
}

// BallPos returns the ball position in whole court units as sent on the bus.
func (s State) BallPos() (int, int) {
	return int(s.BallX), int(s.BallY)
}

// Rect is an axis-aligned rectangle in court units.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
