package pca9685

import "testing"

// recordingBus captures every register written via Tx, keyed by register
// address, so Init can be checked without real I²C hardware.
type recordingBus struct {
	writes map[byte]byte
	reads  map[byte]byte
}

func newRecordingBus() *recordingBus {
	return &recordingBus{writes: make(map[byte]byte), reads: make(map[byte]byte)}
}

func (b *recordingBus) Tx(addr uint16, w, r []byte) error {
	if len(w) >= 2 {
		b.writes[w[0]] = w[1]
	}
	if len(w) == 1 && len(r) == 1 {
		r[0] = b.reads[w[0]]
	}
	return nil
}

func (b *recordingBus) Close() error { return nil }

func TestInit_ProgramsFixedPrescale(t *testing.T) {
	bus := newRecordingBus()
	d := New(bus, 0x40)
	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got := bus.writes[regPrescale]; got != 100 {
		t.Errorf("PRE_SCALE register = %d, want 100 per the configured hardware", got)
	}
}

func TestSetChannel_RejectsOutOfRangeChannel(t *testing.T) {
	d := New(nil, 0x40)
	if err := d.SetChannel(16, 0, 0); err == nil {
		t.Error("SetChannel(16, ...) should reject channel out of [0,15]")
	}
	if err := d.SetChannel(-1, 0, 0); err == nil {
		t.Error("SetChannel(-1, ...) should reject channel out of [0,15]")
	}
}
