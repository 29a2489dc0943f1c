// Package padactor implements the PAD Actor: the single task that owns the
// USB-CDC serial link to the auxiliary microcontroller. It serialises every
// outbound operation (motor writes, servo writes, encoder reads, keep-alive,
// reset) through one goroutine fed by a request channel and a control
// channel, the same confinement pattern the
// teacher's bridge service uses for its framed link — see
// services/bridge/bridge.go's runLink/handleLink for the shape this is
// grounded on.
package padactor

import (
	"context"
	"fmt"
	"log"
	"time"

	"spine/errcode"
	"spine/internal/drivers/serial"
	"spine/internal/hwio"
	"spine/internal/hwreq"
	"spine/internal/pwmconv"
	"spine/internal/wire"
)

const (
	padVID = 0x2E8A
	padPID = 0x000A

	baudRate    = 9600
	readTimeout = 1 * time.Second

	inboxCapacity = 100
)

// ctrlKind tags a supervisor-issued control message.
type ctrlKind int

const (
	ctrlConnect ctrlKind = iota
	ctrlKeepAlive
)

type ctrlMsg struct {
	kind ctrlKind
	done chan error
}

// Actor owns the PAD serial handle for the process lifetime. Zero or one
// goroutine ever touches port: the one running Run.
type Actor struct {
	logger *log.Logger

	inbox chan hwreq.PadRequest
	ctrl  chan ctrlMsg

	port hwio.SerialPort // nil when disconnected
}

// New constructs an Actor with its channel capacities fixed per spec §4.5
// (inbound request capacity 100).
func New(logger *log.Logger) *Actor {
	return &Actor{
		logger: logger,
		inbox:  make(chan hwreq.PadRequest, inboxCapacity),
		ctrl:   make(chan ctrlMsg),
	}
}

// Submit enqueues a request for the actor to service. It blocks if the
// inbound channel is full — that backpressure is intentional, propagating up
// to the session handler's read loop per spec §4.5 step 3.
func (a *Actor) Submit(req hwreq.PadRequest) {
	a.inbox <- req
}

// Connect asks the actor to run connect_device() on its own goroutine and
// reports whether it succeeded. Called by the supervisor, never by a session
// handler.
func (a *Actor) Connect(ctx context.Context) error {
	return a.callCtrl(ctx, ctrlConnect)
}

// KeepAlive asks the actor to send one KeepAlive frame. A non-nil return
// means the link is down and the supervisor should reconnect.
func (a *Actor) KeepAlive(ctx context.Context) error {
	return a.callCtrl(ctx, ctrlKeepAlive)
}

func (a *Actor) callCtrl(ctx context.Context, kind ctrlKind) error {
	done := make(chan error, 1)
	select {
	case a.ctrl <- ctrlMsg{kind: kind, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the actor's single cooperative task: it processes exactly one
// message — request or control — at a time. Requests are taken from the
// inbox in FIFO order; when a request and a control message are both
// waiting, either may be served first. It returns when ctx is cancelled.
func (a *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if a.port != nil {
				a.port.Close()
			}
			return
		case req := <-a.inbox:
			a.respond(req)
		case c := <-a.ctrl:
			var err error
			switch c.kind {
			case ctrlConnect:
				err = a.connectDevice()
			case ctrlKeepAlive:
				err = a.keepAliveOnce()
			}
			c.done <- err
		}
	}
}

// connectDevice enumerates serial ports for the PAD's USB VID/PID, opens the
// first match, and performs a VersionReport handshake. Every failure mode
// (no ports, no match, open error) leaves the handle absent and returns —
// the supervisor retries on the next keep-alive failure.
func (a *Actor) connectDevice() error {
	path, err := serial.FindByVIDPID(padVID, padPID)
	if err != nil {
		a.logger.Printf("pad: no matching device (VID=0x%04x PID=0x%04x): %v", padVID, padPID, err)
		return errcode.PadLinkDown
	}
	p, err := serialOpen(path)
	if err != nil {
		a.logger.Printf("pad: open %s: %v", path, err)
		return errcode.PadLinkDown
	}
	a.port = p

	if err := a.writeOp(wire.PadOperation{Kind: wire.OpVersionReport}); err != nil {
		a.logger.Printf("pad: version report write failed: %v", err)
		a.port.Close()
		a.port = nil
		return errcode.PadLinkDown
	}
	version := a.readUntilNewlineOrTimeout()
	a.logger.Printf("pad: connected at %s, reported version %q", path, version)
	return nil
}

var serialOpen = func(path string) (hwio.SerialPort, error) {
	return serial.Open(path, baudRate, readTimeout)
}

func (a *Actor) readUntilNewlineOrTimeout() string {
	buf := make([]byte, 0, 64)
	tmp := make([]byte, 64)
	for len(buf) < 256 {
		n, err := a.port.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			if idx := indexByte(buf, '\n'); idx >= 0 {
				return string(buf[:idx])
			}
		}
		if err != nil || n == 0 {
			break
		}
	}
	return string(buf)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// keepAliveOnce sends one KeepAlive frame. An absent handle or a write error
// both report PadLinkDown and leave reconnect to the supervisor.
func (a *Actor) keepAliveOnce() error {
	if a.port == nil {
		return errcode.PadLinkDown
	}
	if err := a.writeOp(wire.PadOperation{Kind: wire.OpKeepAlive}); err != nil {
		a.port.Close()
		a.port = nil
		return errcode.PadLinkDown
	}
	return nil
}

// respond translates and forwards a PadRequest per the table in spec §4.3,
// delivering a reply into req.Reply only for EncoderValue responses — Ok
// responses are absorbed silently, matching the client's "no read" contract.
func (a *Actor) respond(req hwreq.PadRequest) {
	switch req.Req.Kind {
	case hwreq.ServoWrite:
		duty := pwmconv.MicrosToDuty(req.Req.Position)
		a.fireAndForget(wire.PadOperation{Kind: wire.OpPwmWrite, Port: req.Port, Duty: uint16(duty)})

	case hwreq.MotorWrite:
		switch len(req.Req.Command) {
		case 1:
			a.fireAndForget(wire.PadOperation{Kind: wire.OpSabertoothWrite, Port: req.Port, Cmd: req.Req.Command[0]})
		case 5:
			var payload [5]byte
			copy(payload[:], req.Req.Command)
			a.fireAndForget(wire.PadOperation{Kind: wire.OpSmartelexWrite, Port: req.Port, Payload: payload})
		default:
			// InvalidCommand: fatal to this request only — log and drop the
			// reply slot, the actor and session continue.
			a.logger.Printf("pad: %v: motor command length %d not in {1,5}", errcode.InvalidCommand, len(req.Req.Command))
		}

	case hwreq.EncoderRead:
		a.respondEncoder(req)

	case hwreq.PadReset:
		a.fireAndForget(wire.PadOperation{Kind: wire.OpReset})

	default:
		a.logger.Printf("pad: unsupported request kind %v, no-op", req.Req.Kind)
	}
}

func (a *Actor) fireAndForget(op wire.PadOperation) {
	if err := a.writeOp(op); err != nil {
		a.logger.Printf("pad: write failed, link considered down: %v", err)
		if a.port != nil {
			a.port.Close()
		}
		a.port = nil
	}
}

func (a *Actor) respondEncoder(req hwreq.PadRequest) {
	if err := a.writeOp(wire.PadOperation{Kind: wire.OpEncoderRead}); err != nil {
		a.logger.Printf("pad: encoder read write failed: %v", err)
		if a.port != nil {
			a.port.Close()
		}
		a.port = nil
		return
	}
	raw, err := a.readExact(wire.EncoderReplyWireLen)
	if err != nil {
		a.logger.Printf("pad: encoder reply read failed: %v", err)
		return
	}
	reply, err := wire.DecodeEncoderReply(raw)
	if err != nil {
		a.logger.Printf("pad: encoder reply decode failed: %v", err)
		return
	}
	if int(req.Port) >= len(reply) {
		// Bounds must be validated defensively per spec §9: a misconfigured
		// port >= 5 would index past the fixed [i32;5] array.
		a.logger.Printf("pad: encoder port %d out of range [0,%d)", req.Port, len(reply))
		return
	}
	req.Reply.Send(hwreq.HardwareResponse{Kind: hwreq.EncoderValue, Encoder: reply[req.Port]})
}

func (a *Actor) writeOp(op wire.PadOperation) error {
	if a.port == nil {
		return errcode.PadLinkDown
	}
	_, err := a.port.Write(wire.EncodePadOp(op))
	if err != nil {
		return fmt.Errorf("%w: %v", errcode.PadLinkDown, err)
	}
	return nil
}

func (a *Actor) readExact(n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	tmp := make([]byte, n)
	for len(buf) < n {
		read, err := a.port.Read(tmp[:n-len(buf)])
		if read > 0 {
			buf = append(buf, tmp[:read]...)
		}
		if err != nil {
			return nil, err
		}
		if read == 0 {
			return nil, fmt.Errorf("pad: read timed out with %d/%d bytes", len(buf), n)
		}
	}
	return buf, nil
}
