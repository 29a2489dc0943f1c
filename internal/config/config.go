// Package config discovers and loads spine's TOML configuration, then
// validates it into the immutable hwreq.Configuration value the resolver and
// both actors are built from. Loading is the one place a malformed or
// missing file is fatal — see spec §6/§7.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"spine/errcode"
	"spine/internal/hwreq"
)

const (
	configDirName  = "spine"
	configFileName = "config.toml"
)

// fileFormat mirrors the TOML structure from spec §6 before it is lowered
// into hwreq.Configuration.
type fileFormat struct {
	Pad struct {
		Motors   map[string]uint8 `toml:"motors"`
		Encoders map[string]uint8 `toml:"encoders"`
		Servos   map[string]uint8 `toml:"servos"`
	} `toml:"pad"`
	System struct {
		PCA9685Path   string               `toml:"pca9685_path"`
		Motors        map[string][2]uint64 `toml:"motors"`
		LimitSwitches map[string]uint64     `toml:"limit_switches"`
		StatusLEDs    map[string]uint64     `toml:"status_leds"`
		Servos        map[string]uint8      `toml:"servos"`
	} `toml:"system"`
}

// DiscoverPath locates config.toml under the standard per-user config
// search path, in a "spine" subdirectory.
func DiscoverPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve user config dir: %v", errcode.ConfigError, err)
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// Load discovers and parses config.toml, returning a validated
// hwreq.Configuration. Any failure — missing file, malformed TOML, or a
// validation error — is a ConfigError and is fatal at startup.
func Load() (*hwreq.Configuration, error) {
	path, err := DiscoverPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile parses and validates the config file at path. Exposed separately
// so tests can point at a fixture without touching
// os.UserConfigDir.
func LoadFile(path string) (*hwreq.Configuration, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", errcode.ConfigError, path, err)
	}

	cfg := &hwreq.Configuration{
		Pad: hwreq.PadConfig{
			Motors:   ff.Pad.Motors,
			Encoders: ff.Pad.Encoders,
			Servos:   ff.Pad.Servos,
		},
		System: hwreq.SystemConfig{
			PCA9685Path:   ff.System.PCA9685Path,
			Motors:        ff.System.Motors,
			LimitSwitches: ff.System.LimitSwitches,
			StatusLEDs:    ff.System.StatusLEDs,
			Servos:        ff.System.Servos,
		},
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the invariants spec §3 states but a TOML decode alone
// cannot: PCA9685 servo channels must fall in 0..15, and the device path
// must be set whenever any local servo is configured.
func Validate(cfg *hwreq.Configuration) error {
	for name, ch := range cfg.System.Servos {
		if ch > 15 {
			return fmt.Errorf("%w: system.servos.%s channel %d out of range [0,15]", errcode.ConfigError, name, ch)
		}
	}
	if len(cfg.System.Servos) > 0 && cfg.System.PCA9685Path == "" {
		return fmt.Errorf("%w: system.pca9685_path is required when system.servos is non-empty", errcode.ConfigError)
	}
	for name, pair := range cfg.System.Motors {
		if pair[0] == pair[1] {
			return fmt.Errorf("%w: system.motors.%s uses the same GPIO line for both pins (%d)", errcode.ConfigError, name, pair[0])
		}
	}
	return checkGPIOLineReuse(cfg)
}

// checkGPIOLineReuse rejects a config where two different peripherals
// (switches, LEDs, H-bridge pins) are wired to the same GPIO offset — each
// line is owned exclusively by one localactor.Connections entry, so a
// collision would mean two names silently fighting over one physical pin.
// Error text lists offending names in sorted order so it's stable across
// runs, since map iteration order is not.
func checkGPIOLineReuse(cfg *hwreq.Configuration) error {
	owners := make(map[uint64][]string)
	add := func(line uint64, name string) {
		owners[line] = append(owners[line], name)
	}
	for name, line := range cfg.System.LimitSwitches {
		add(line, "limit_switches."+name)
	}
	for name, line := range cfg.System.StatusLEDs {
		add(line, "status_leds."+name)
	}
	for name, pair := range cfg.System.Motors {
		add(pair[0], fmt.Sprintf("motors.%s[0]", name))
		add(pair[1], fmt.Sprintf("motors.%s[1]", name))
	}

	lines := maps.Keys(owners)
	slices.Sort(lines)
	for _, line := range lines {
		names := owners[line]
		if len(names) < 2 {
			continue
		}
		slices.Sort(names)
		return fmt.Errorf("%w: GPIO line %d claimed by multiple entries: %s", errcode.ConfigError, line, strings.Join(names, ", "))
	}
	return nil
}
