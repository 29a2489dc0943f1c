// Package localactor implements the LOCAL Actor: the single task that owns
// every host-local peripheral — limit-switch and LED GPIO lines, H-bridge
// motor pairs, and the PCA9685 servo expander. Like padactor, it serialises
// every operation through one inbound channel; the shape is grounded on the
// teacher's hal service's single applyConfig/loop ownership of its adaptors
// (services/hal/hal.go).
package localactor

import (
	"log"

	"spine/errcode"
	"spine/internal/drivers/pca9685"
	"spine/internal/hbridge"
	"spine/internal/hwio"
	"spine/internal/hwreq"
	"spine/internal/pwmconv"
)

const inboxCapacity = 100

// Connections holds every exclusively-owned local peripheral handle,
// constructed once at startup from Configuration and never rebuilt.
type Connections struct {
	Switches map[string]hwio.GPIOLine
	Motors   map[string][2]hwio.GPIOLine
	LEDs     map[string]hwio.GPIOLine

	PCA9685       *pca9685.Device
	ServoChannels map[string]uint8
}

// Actor owns a Connections value for the process lifetime.
type Actor struct {
	logger *log.Logger
	conns  Connections
	inbox  chan hwreq.LocalRequest
}

// New constructs an Actor. conns must already have completed its setup
// sequence (Setup) before Run is started.
func New(logger *log.Logger, conns Connections) *Actor {
	return &Actor{
		logger: logger,
		conns:  conns,
		inbox:  make(chan hwreq.LocalRequest, inboxCapacity),
	}
}

// Submit enqueues a request, blocking if the inbound channel is full.
func (a *Actor) Submit(req hwreq.LocalRequest) {
	a.inbox <- req
}

// Run processes exactly one request at a time until done is closed.
func (a *Actor) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case req := <-a.inbox:
			a.respond(req)
		}
	}
}

// Setup runs the mandatory, ordered setup sequence from spec §4.4 for each
// GPIO line in turn: export it, let udev settle, then fix its direction. Each
// driver's Export already performs the ≥100ms settling sleep — skipping it
// is a known race and is never done here.
func Setup(conns Connections) error {
	for _, line := range conns.Switches {
		if err := line.Export(); err != nil {
			return errcode.IoFailure
		}
		if err := line.SetDirection(hwio.DirIn); err != nil {
			return errcode.IoFailure
		}
	}
	for _, pair := range conns.Motors {
		for _, line := range pair {
			if err := line.Export(); err != nil {
				return errcode.IoFailure
			}
			if err := line.SetDirection(hwio.DirOut); err != nil {
				return errcode.IoFailure
			}
		}
	}
	for _, line := range conns.LEDs {
		if err := line.Export(); err != nil {
			return errcode.IoFailure
		}
		if err := line.SetDirection(hwio.DirOut); err != nil {
			return errcode.IoFailure
		}
	}
	return nil
}

// respond translates a LocalRequest per spec §4.4. Unknown names and I/O
// errors are surfaced by logging and dropping the reply slot — no retry, the
// actor continues serving the next request.
func (a *Actor) respond(req hwreq.LocalRequest) {
	switch req.Req.Kind {
	case hwreq.SwitchRead:
		a.handleSwitchRead(req)
	case hwreq.LedWrite:
		a.handleLedWrite(req)
	case hwreq.ServoWrite:
		a.handleServoWrite(req)
	case hwreq.MotorWrite:
		a.handleMotorWrite(req)
	default:
		a.logger.Printf("local: %v: request kind %v cannot be handled locally", errcode.Unsupported, req.Req.Kind)
	}
}

func (a *Actor) handleSwitchRead(req hwreq.LocalRequest) {
	line, ok := a.conns.Switches[req.Req.Name]
	if !ok {
		a.logger.Printf("local: %v: unknown switch %q", errcode.ResolveMiss, req.Req.Name)
		return
	}
	v, err := line.Read()
	if err != nil {
		a.logger.Printf("local: %v: switch %q: %v", errcode.IoFailure, req.Req.Name, err)
		return
	}
	req.Reply.Send(hwreq.HardwareResponse{Kind: hwreq.SwitchOn, Switch: v})
}

func (a *Actor) handleLedWrite(req hwreq.LocalRequest) {
	line, ok := a.conns.LEDs[req.Req.Name]
	if !ok {
		a.logger.Printf("local: %v: unknown LED %q", errcode.ResolveMiss, req.Req.Name)
		return
	}
	// Only 0/1 are meaningful per spec §9; any other value is normalised to
	// a boolean by treating non-zero as on.
	if err := line.Write(req.Req.State != 0); err != nil {
		a.logger.Printf("local: %v: LED %q: %v", errcode.IoFailure, req.Req.Name, err)
	}
}

func (a *Actor) handleServoWrite(req hwreq.LocalRequest) {
	channel, ok := a.conns.ServoChannels[req.Req.Name]
	if !ok {
		a.logger.Printf("local: %v: unknown servo %q", errcode.ResolveMiss, req.Req.Name)
		return
	}
	duty := pwmconv.MicrosToDuty(req.Req.Position)
	if err := a.conns.PCA9685.SetChannel(int(channel), 0, uint16(duty)); err != nil {
		a.logger.Printf("local: %v: servo %q channel %d: %v", errcode.IoFailure, req.Req.Name, channel, err)
	}
}

func (a *Actor) handleMotorWrite(req hwreq.LocalRequest) {
	pair, ok := a.conns.Motors[req.Req.Name]
	if !ok {
		a.logger.Printf("local: %v: unknown motor %q", errcode.ResolveMiss, req.Req.Name)
		return
	}
	if len(req.Req.Command) != 1 {
		a.logger.Printf("local: %v: motor %q command length %d, want 1", errcode.InvalidCommand, req.Req.Name, len(req.Req.Command))
		return
	}
	pinA, pinB := hbridge.Drive(req.Req.Command[0])
	if err := pair[0].Write(pinA); err != nil {
		a.logger.Printf("local: %v: motor %q pin A: %v", errcode.IoFailure, req.Req.Name, err)
		return
	}
	if err := pair[1].Write(pinB); err != nil {
		a.logger.Printf("local: %v: motor %q pin B: %v", errcode.IoFailure, req.Req.Name, err)
	}
}
