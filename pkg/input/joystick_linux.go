package input

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const jsIOCGNAME = 0x80ff6a13

type linuxJoystick struct {
	file *os.File
	name string
}

func openJoystick(index int) (jsDevice, error) {
	if index >= 0 {
		return openJoystickDevice(index)
	}
	for index = 0; index < 32; index++ {
		dev, err := openJoystickDevice(index)
		if os.IsNotExist(err) {
			continue
		}
		return dev, err
	}
	return nil, ErrNoJoystick
}

func openJoystickDevice(index int) (jsDevice, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	var buf [256]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), jsIOCGNAME, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		f.Close()
		return nil, errno
	}
	name := buf[:]
	if pos := bytes.IndexByte(name, 0); pos >= 0 {
		name = name[:pos]
	}
	return &linuxJoystick{file: f, name: string(name)}, nil
}

func (d *linuxJoystick) Close() error {
	return d.file.Close()
}

func (d *linuxJoystick) Name() string {
	return d.name
}

func (d *linuxJoystick) ReadEvent() (ev jsEvent, err error) {
	var buf [8]byte
	if _, err = d.file.Read(buf[:]); err != nil {
		return
	}
	err = binary.Read(bytes.NewReader(buf[:]), binary.LittleEndian, &ev)
	return
}
