package session

import (
	"bufio"
	"log"
	"net"
	"testing"
	"time"

	"spine/internal/hwreq"
)

type fakePad struct {
	got []hwreq.PadRequest
}

func (f *fakePad) Submit(req hwreq.PadRequest) {
	f.got = append(f.got, req)
	if req.Reply != nil {
		req.Reply.Send(hwreq.HardwareResponse{Kind: hwreq.EncoderValue, Encoder: 300})
	}
}

type fakeLocal struct {
	got []hwreq.LocalRequest
}

func (f *fakeLocal) Submit(req hwreq.LocalRequest) {
	f.got = append(f.got, req)
	if req.Reply != nil {
		req.Reply.Send(hwreq.HardwareResponse{Kind: hwreq.SwitchOn, Switch: true})
	}
}

func discardLogger() *log.Logger {
	return log.New(discardWriter{}, "", 0)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testConfig() *hwreq.Configuration {
	return &hwreq.Configuration{
		Pad: hwreq.PadConfig{
			Motors:   map[string]uint8{"left": 3},
			Encoders: map[string]uint8{"wrist": 2},
		},
		System: hwreq.SystemConfig{
			LimitSwitches: map[string]uint64{"home": 5},
		},
	}
}

func TestHandle_EncoderRead_WritesReply(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	pad := &fakePad{}
	local := &fakeLocal{}
	h := New(discardLogger(), testConfig(), pad, local)
	go h.Handle(serverConn)

	if _, err := clientConn.Write([]byte("ENCODER wrist\n")); err != nil {
		t.Fatal(err)
	}
	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(clientConn).ReadString('\n')
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if line != "300\n" {
		t.Errorf("got %q, want \"300\\n\"", line)
	}
	if len(pad.got) != 1 || pad.got[0].Port != 2 {
		t.Errorf("pad actor got %+v, want one request at port 2", pad.got)
	}
}

func TestHandle_MotorWrite_NoReply(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	pad := &fakePad{}
	local := &fakeLocal{}
	h := New(discardLogger(), testConfig(), pad, local)
	go h.Handle(serverConn)

	if _, err := clientConn.Write([]byte("MOTOR left 192\n")); err != nil {
		t.Fatal(err)
	}
	// Give the dispatcher a moment to process; no reply is expected so there
	// is nothing to read back — just confirm the actor was reached.
	deadline := time.Now().Add(time.Second)
	for len(pad.got) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(pad.got) != 1 || pad.got[0].Port != 3 {
		t.Errorf("pad actor got %+v, want one request at port 3", pad.got)
	}
}

func TestHandle_UnresolvedRequest_NoCrash(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	pad := &fakePad{}
	local := &fakeLocal{}
	h := New(discardLogger(), testConfig(), pad, local)
	go h.Handle(serverConn)

	if _, err := clientConn.Write([]byte("ENCODER ghost\n")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if len(pad.got) != 0 {
		t.Errorf("expected no dispatch for an unresolved name, got %+v", pad.got)
	}
}
