package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable). Every value here has at least one call
// site in internal/.
const (
	// Unsupported: request kind the actor has no handling for.
	Unsupported Code = "unsupported"

	// ConfigError: missing/malformed configuration. Fatal at startup.
	ConfigError Code = "config_error"
	// ResolveMiss: unknown motor/encoder/servo/switch/LED name. Logged, not propagated.
	ResolveMiss Code = "resolve_miss"
	// WireDecodeError: malformed client record. The record is skipped.
	WireDecodeError Code = "wire_decode_error"
	// IoFailure: GPIO/I2C/socket write error. Request's reply slot is dropped.
	IoFailure Code = "io_failure"
	// PadLinkDown: serial handle absent or a write/read against it failed.
	PadLinkDown Code = "pad_link_down"
	// InvalidCommand: MotorWrite payload length not in {1,5}.
	InvalidCommand Code = "invalid_command"
)
