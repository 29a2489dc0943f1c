package hwreq

// Configuration is the immutable, shared-read-only mapping from symbolic
// hardware names to concrete back-end ports/channels/lines. It is built once
// at startup (see internal/config) and never mutated afterwards — any number
// of readers, no writers, so no lock guards it.
type Configuration struct {
	Pad    PadConfig
	System SystemConfig
}

// PadConfig is the [pad] section: name -> 8-bit port index, per variant.
type PadConfig struct {
	Motors   map[string]uint8
	Encoders map[string]uint8
	Servos   map[string]uint8
}

// SystemConfig is the [system] section: GPIO lines, H-bridge pairs and the
// PCA9685 channel table, plus the I2C device path.
type SystemConfig struct {
	PCA9685Path   string
	Motors        map[string][2]uint64 // GPIO pair, pinA/pinB
	LimitSwitches map[string]uint64    // GPIO line
	StatusLEDs    map[string]uint64    // GPIO line
	Servos        map[string]uint8     // PCA9685 channel, 0..15
}
