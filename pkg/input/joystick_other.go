//go:build !linux

package input

func openJoystick(int) (jsDevice, error) {
	return nil, ErrNoJoystick
}
