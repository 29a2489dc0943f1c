package serial

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FindByVIDPID walks /sys/class/tty looking for a USB-CDC ACM device whose
// parent USB interface reports the given vendor/product ID, returning the
// /dev/ttyACM* (or ttyUSB*) node path for the first match.
//
// There is no vetted ecosystem USB-serial enumeration library in this
// module's dependency set (go-serial's enumerator package is not among
// them), so this walks sysfs directly — the same style periph's sysfs
// drivers use to resolve device nodes.
func FindByVIDPID(vid, pid uint16) (string, error) {
	entries, err := os.ReadDir("/sys/class/tty")
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "ttyACM") && !strings.HasPrefix(name, "ttyUSB") {
			continue
		}
		devLink := filepath.Join("/sys/class/tty", name, "device")
		usbDir, ok := findUSBInterfaceDir(devLink)
		if !ok {
			continue
		}
		gotVID, ok := readHexAttr(filepath.Join(usbDir, "idVendor"))
		if !ok || gotVID != vid {
			continue
		}
		gotPID, ok := readHexAttr(filepath.Join(usbDir, "idProduct"))
		if !ok || gotPID != pid {
			continue
		}
		return filepath.Join("/dev", name), nil
	}
	return "", os.ErrNotExist
}

// findUSBInterfaceDir walks up from a tty's sysfs device symlink until it
// finds a directory carrying idVendor/idProduct attributes (the USB device
// node, one or two levels above the ACM interface).
func findUSBInterfaceDir(devLink string) (string, bool) {
	dir, err := filepath.EvalSymlinks(devLink)
	if err != nil {
		return "", false
	}
	for i := 0; i < 4 && dir != "/" && dir != "."; i++ {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			return dir, true
		}
		dir = filepath.Dir(dir)
	}
	return "", false
}

func readHexAttr(path string) (uint16, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}
