// Package gpio implements the hwio.GPIOLine contract over the Linux sysfs
// GPIO interface (/sys/class/gpio). It follows the export/direction/value
// attribute dance periph's sysfs drivers use, kept minimal since spine only
// ever needs plain digital in/out, never edge-triggered interrupts.
package gpio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"spine/internal/hwio"
)

const sysfsRoot = "/sys/class/gpio"

// Line is one exported sysfs GPIO line.
type Line struct {
	offset uint64
	dir    string // path to /sys/class/gpio/gpioN
}

// New returns a Line for the given offset. It does not touch sysfs until
// Export is called.
func New(offset uint64) *Line {
	return &Line{offset: offset, dir: fmt.Sprintf("%s/gpio%d", sysfsRoot, offset)}
}

// Export creates the sysfs attribute nodes for this line. Idempotent: if the
// line is already exported, the "export" write's EBUSY/EEXIST is ignored.
//
// Setup is mandatory and ordered per spec §4.4: export, then settle, then
// set direction. Skipping the settling sleep is a known race (the kernel's
// udev rule needs a moment to chmod the new sysfs nodes) and constitutes an
// incorrect implementation — callers MUST NOT skip it.
func (l *Line) Export() error {
	if _, err := os.Stat(l.dir); err == nil {
		return nil
	}
	f, err := os.OpenFile(sysfsRoot+"/export", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("gpio: open export: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(strconv.FormatUint(l.offset, 10)); err != nil {
		if !os.IsExist(err) && !errors.Is(err, syscall.EBUSY) {
			return fmt.Errorf("gpio: export %d: %w", l.offset, err)
		}
	}
	// Allow udev to create the sysfs attribute nodes before any caller
	// tries to open direction/value.
	time.Sleep(100 * time.Millisecond)
	return nil
}

// SetDirection sets the line to input or output.
func (l *Line) SetDirection(d hwio.Direction) error {
	v := "in"
	if d == hwio.DirOut {
		v = "out"
	}
	return os.WriteFile(l.dir+"/direction", []byte(v), 0644)
}

// Read returns the line's current logic level.
func (l *Line) Read() (bool, error) {
	b, err := os.ReadFile(l.dir + "/value")
	if err != nil {
		return false, fmt.Errorf("gpio: read %d: %w", l.offset, err)
	}
	return len(b) > 0 && b[0] == '1', nil
}

// Write drives an output line.
func (l *Line) Write(level bool) error {
	v := []byte("0")
	if level {
		v = []byte("1")
	}
	if err := os.WriteFile(l.dir+"/value", v, 0644); err != nil {
		return fmt.Errorf("gpio: write %d: %w", l.offset, err)
	}
	return nil
}

// Close unexports the line. Unused in spine's process-lifetime-owned model
// (actors never release hardware before shutdown) but kept for symmetry and
// tests that want a clean sysfs namespace afterwards.
func (l *Line) Close() error {
	f, err := os.OpenFile(sysfsRoot+"/unexport", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(strconv.FormatUint(l.offset, 10))
	return err
}

var _ hwio.GPIOLine = (*Line)(nil)
