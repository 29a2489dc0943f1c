package localactor

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"spine/internal/drivers/pca9685"
	"spine/internal/hwio"
	"spine/internal/hwreq"
)

type fakeLine struct {
	exported  bool
	dir       hwio.Direction
	value     bool
	writeErr  error
}

func (l *fakeLine) Export() error                    { l.exported = true; return nil }
func (l *fakeLine) SetDirection(d hwio.Direction) error { l.dir = d; return nil }
func (l *fakeLine) Read() (bool, error)              { return l.value, nil }
func (l *fakeLine) Write(v bool) error {
	if l.writeErr != nil {
		return l.writeErr
	}
	l.value = v
	return nil
}
func (l *fakeLine) Close() error { return nil }

type fakeBus struct {
	lastAddr uint16
	lastW    []byte
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.lastAddr = addr
	b.lastW = append([]byte(nil), w...)
	return nil
}
func (b *fakeBus) Close() error { return nil }

func newTestActor() (*Actor, *bytes.Buffer, map[string]*fakeLine, *fakeBus) {
	var logBuf bytes.Buffer
	logger := log.New(&logBuf, "", 0)

	sw := &fakeLine{}
	ledLine := &fakeLine{}
	motorA, motorB := &fakeLine{}, &fakeLine{}
	bus := &fakeBus{}
	dev := pca9685.New(bus, 0x40)

	conns := Connections{
		Switches:      map[string]hwio.GPIOLine{"home": sw},
		LEDs:          map[string]hwio.GPIOLine{"status": ledLine},
		Motors:        map[string][2]hwio.GPIOLine{"belt": {motorA, motorB}},
		PCA9685:       dev,
		ServoChannels: map[string]uint8{"grip": 4},
	}
	a := New(logger, conns)
	lines := map[string]*fakeLine{"home": sw, "status": ledLine, "motorA": motorA, "motorB": motorB}
	return a, &logBuf, lines, bus
}

func TestHandleSwitchRead(t *testing.T) {
	a, _, lines, _ := newTestActor()
	lines["home"].value = true
	slot := hwreq.NewReplySlot()
	a.respond(hwreq.LocalRequest{Req: hwreq.HardwareRequest{Kind: hwreq.SwitchRead, Name: "home"}, Reply: slot})

	select {
	case resp := <-slot:
		if resp.Kind != hwreq.SwitchOn || !resp.Switch {
			t.Errorf("got %+v, want SwitchOn(true)", resp)
		}
	default:
		t.Fatal("expected a reply")
	}
}

func TestHandleSwitchRead_UnknownName(t *testing.T) {
	a, logBuf, _, _ := newTestActor()
	slot := hwreq.NewReplySlot()
	a.respond(hwreq.LocalRequest{Req: hwreq.HardwareRequest{Kind: hwreq.SwitchRead, Name: "nope"}, Reply: slot})

	select {
	case resp := <-slot:
		t.Fatalf("expected no reply for unknown switch, got %+v", resp)
	default:
	}
	if !strings.Contains(logBuf.String(), "resolve_miss") {
		t.Errorf("expected resolve_miss logged, got %q", logBuf.String())
	}
}

func TestHandleLedWrite(t *testing.T) {
	a, _, lines, _ := newTestActor()
	a.respond(hwreq.LocalRequest{Req: hwreq.HardwareRequest{Kind: hwreq.LedWrite, Name: "status", State: 1}})
	if !lines["status"].value {
		t.Error("expected LED line driven high")
	}
}

func TestHandleMotorWrite_Reverse(t *testing.T) {
	a, _, lines, _ := newTestActor()
	a.respond(hwreq.LocalRequest{Req: hwreq.HardwareRequest{Kind: hwreq.MotorWrite, Name: "belt", Command: []byte{50}}})
	if lines["motorA"].value != false || lines["motorB"].value != true {
		t.Errorf("got A=%v B=%v, want A=false B=true (reverse)", lines["motorA"].value, lines["motorB"].value)
	}
}

func TestHandleServoWrite(t *testing.T) {
	a, _, _, bus := newTestActor()
	a.respond(hwreq.LocalRequest{Req: hwreq.HardwareRequest{Kind: hwreq.ServoWrite, Name: "grip", Position: 1500}})
	if bus.lastAddr != 0x40 {
		t.Errorf("got addr 0x%x, want 0x40", bus.lastAddr)
	}
	// LED0_ON_L + 4*4 = 0x06 + 16 = 0x16, ON=0, OFF=368 (0x70, 0x01).
	want := []byte{0x16, 0x00, 0x00, 0x70, 0x01}
	if !bytes.Equal(bus.lastW, want) {
		t.Errorf("got % x, want % x", bus.lastW, want)
	}
}
