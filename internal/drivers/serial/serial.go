// Package serial opens a USB-CDC serial port on Linux in raw mode at a
// fixed baud rate with a kernel-enforced read timeout, using termios ioctls
// via golang.org/x/sys/unix. The shape follows github.com/daedaluz/goserial
// (raw syscall + ioctl port handle, Termios.MakeRaw-style flag clearing) but
// is rebuilt on the vetted x/sys/unix wrappers instead of hand-rolled
// syscall numbers.
package serial

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Port is an open, raw-mode serial line.
type Port struct {
	fd int
}

// Open opens path, puts it into raw mode at baud, and arms a read timeout of
// readTimeout (rounded down to deciseconds, the termios VTIME granularity).
func Open(path string, baud uint32, readTimeout time.Duration) (*Port, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}
	p := &Port{fd: fd}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: get termios: %w", err)
	}
	makeRaw(t)
	setSpeed(t, baud)
	p.applyReadTimeout(t, readTimeout)

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: set termios: %w", err)
	}
	return p, nil
}

func makeRaw(t *unix.Termios) {
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
}

func setSpeed(t *unix.Termios, baud uint32) {
	speed := baudConst(baud)
	t.Cflag &^= unix.CBAUD
	t.Cflag |= speed
	t.Ispeed = baud
	t.Ospeed = baud
}

func baudConst(baud uint32) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	default:
		return unix.B9600
	}
}

func (p *Port) applyReadTimeout(t *unix.Termios, d time.Duration) {
	deci := d.Milliseconds() / 100
	if deci < 1 {
		deci = 1
	}
	if deci > 255 {
		deci = 255
	}
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = uint8(deci)
}

// Write sends bytes down the link.
func (p *Port) Write(b []byte) (int, error) {
	return unix.Write(p.fd, b)
}

// Read blocks for up to the configured timeout and returns whatever the
// kernel has buffered, or (0, nil) on a bare timeout (VMIN=0 semantics).
func (p *Port) Read(b []byte) (int, error) {
	return unix.Read(p.fd, b)
}

// SetReadTimeout re-arms VTIME without otherwise touching the port's mode.
func (p *Port) SetReadTimeout(d time.Duration) {
	t, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return
	}
	p.applyReadTimeout(t, d)
	_ = unix.IoctlSetTermios(p.fd, unix.TCSETS, t)
}

// Close releases the file descriptor.
func (p *Port) Close() error {
	return unix.Close(p.fd)
}
