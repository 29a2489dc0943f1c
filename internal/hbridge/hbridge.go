// Package hbridge implements the discrete forward/reverse/stop decode for
// H-bridge-driven DC motors wired directly to two host GPIO lines (spec
// §4.4). There is no PWM speed control on this path — only a boolean state
// per pin.
package hbridge

// Drive decodes an 8-bit Sabertooth-shaped signed-magnitude command byte into
// the pin levels for an H-bridge pair. The table partitions [0,255] exactly:
// every byte falls into exactly one of stop, reverse or forward.
//
// The 191/192 stop band is deliberate: upstream tooling produces commands
// whose neutral value is 192, and this accepts +/-1 rounding either side.
func Drive(cmd byte) (pinA, pinB bool) {
	switch {
	case cmd == 0 || cmd == 64 || cmd == 191 || cmd == 192:
		return false, false // stop / rest
	case (cmd >= 1 && cmd <= 63) || (cmd >= 128 && cmd <= 190):
		return false, true // reverse
	default: // 65..127, 193..255
		return true, false // forward
	}
}
