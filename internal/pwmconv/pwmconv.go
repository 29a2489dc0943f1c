// Package pwmconv holds the microsecond-to-duty-cycle conversion shared by
// the PAD actor (hardware PWM channels) and the LOCAL actor (PCA9685
// channels) — both servo back-ends use the same 60 Hz / 12-bit ADC scaling.
package pwmconv

const (
	// PWMFreqHz is the fixed PWM frequency both back-ends drive servos at.
	PWMFreqHz = 60
	// ADCMax is the full-scale count of the 12-bit duty counter (2^12 - 1).
	ADCMax = 4095
)

// MicrosToDuty converts a servo pulse width in microseconds to a duty count,
// using duty = floor(us * 1e-6 * PWMFreqHz * ADCMax).
//
// Monotonically non-decreasing in us over its whole domain. Values above
// 16 bits are not clamped here — clamping servo overflow is explicitly left
// to the caller, per the wire contract's documented undefined behaviour for
// out-of-range input.
func MicrosToDuty(us uint16) uint64 {
	return (uint64(us) * uint64(PWMFreqHz) * uint64(ADCMax)) / 1_000_000
}
