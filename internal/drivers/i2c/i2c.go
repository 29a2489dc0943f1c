// Package i2c implements the hwio.I2CBus contract over Linux's /dev/i2c-N
// character device, using the I2C_RDWR ioctl to perform a write-then-read
// combined transaction as a single bus operation. The struct layout and
// ioctl wiring follow periph.io's sysfs-i2c driver, rebuilt on
// golang.org/x/sys/unix instead of raw syscall numbers.
package i2c

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	i2cRDWR = 0x0707
	i2cMRD  = 0x0001 // message is a read
)

// Bus is an open /dev/i2c-N device.
type Bus struct {
	fd int
}

// Open opens the I²C bus at the given device path (e.g. "/dev/i2c-1").
func Open(path string) (*Bus, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", path, err)
	}
	return &Bus{fd: fd}, nil
}

// i2cMsg mirrors struct i2c_msg from linux/i2c-dev.h.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	pad   uint16 //nolint:unused // keeps the struct 8-byte aligned like the kernel layout
	buf   uintptr
}

// rdwrIoctlData mirrors struct i2c_rdwr_ioctl_data.
type rdwrIoctlData struct {
	msgs  uintptr
	nmsgs uint32
}

// Tx performs addr.Write(w) followed by addr.Read(len(r)) as one bus
// transaction, via I2C_RDWR. If w is empty the write message is omitted; if
// r is empty the read message is omitted.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	var msgs []i2cMsg
	if len(w) != 0 {
		msgs = append(msgs, i2cMsg{addr: addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) != 0 {
		msgs = append(msgs, i2cMsg{addr: addr, flags: i2cMRD, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return nil
	}
	data := rdwrIoctlData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), uintptr(i2cRDWR), uintptr(unsafe.Pointer(&data))); errno != 0 {
		return fmt.Errorf("i2c: transaction with 0x%02x: %w", addr, errno)
	}
	return nil
}

// Close releases the underlying file descriptor.
func (b *Bus) Close() error {
	return unix.Close(b.fd)
}
