package wire

import (
	"reflect"
	"testing"

	"spine/internal/hwreq"
)

func TestClientRecord_RoundTrip(t *testing.T) {
	cases := []hwreq.HardwareRequest{
		{Kind: hwreq.MotorWrite, Name: "left", Command: []byte{192}},
		{Kind: hwreq.MotorWrite, Name: "belt", Command: []byte{1, 2, 3, 4, 5}},
		{Kind: hwreq.ServoWrite, Name: "grip", Position: 1500},
		{Kind: hwreq.EncoderRead, Name: "wrist"},
		{Kind: hwreq.SwitchRead, Name: "home"},
		{Kind: hwreq.LedWrite, Name: "status", State: 1},
		{Kind: hwreq.PadReset},
	}
	for _, want := range cases {
		rec := EncodeRequest(want)
		got, err := DecodeRecord(string(rec[:len(rec)-1])) // strip trailing \n
		if err != nil {
			t.Fatalf("decode %q: %v", rec, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip mismatch: want %+v got %+v", want, got)
		}
	}
}

func TestDecoder_BuffersPartialRecordAcrossReads(t *testing.T) {
	var warned []string
	d := &Decoder{Warn: func(rec string, err error) { warned = append(warned, rec) }}

	reqs := d.Feed([]byte("ENCODER wri"))
	if len(reqs) != 0 {
		t.Fatalf("expected no decoded requests yet, got %v", reqs)
	}
	reqs = d.Feed([]byte("st\nSWITCH home\n"))
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d: %v", len(reqs), reqs)
	}
	if reqs[0].Kind != hwreq.EncoderRead || reqs[0].Name != "wrist" {
		t.Errorf("first request mismatch: %+v", reqs[0])
	}
	if reqs[1].Kind != hwreq.SwitchRead || reqs[1].Name != "home" {
		t.Errorf("second request mismatch: %+v", reqs[1])
	}
	if len(warned) != 0 {
		t.Errorf("expected no warnings, got %v", warned)
	}
}

func TestDecoder_SkipsBadRecordsButContinues(t *testing.T) {
	var warned []string
	d := &Decoder{Warn: func(rec string, err error) { warned = append(warned, rec) }}

	reqs := d.Feed([]byte("GARBAGE\nSWITCH home\n"))
	if len(reqs) != 1 || reqs[0].Name != "home" {
		t.Fatalf("expected only the valid record to decode, got %v", reqs)
	}
	if len(warned) != 1 || warned[0] != "GARBAGE" {
		t.Errorf("expected one warning for GARBAGE, got %v", warned)
	}
}

func TestEncodeResponse_OkIsAbsorbedSilently(t *testing.T) {
	if got := EncodeResponse(hwreq.HardwareResponse{Kind: hwreq.Ok}); got != nil {
		t.Errorf("Ok response must encode to nil, got %q", got)
	}
}

func TestEncodeResponse_Scalars(t *testing.T) {
	if got := string(EncodeResponse(hwreq.HardwareResponse{Kind: hwreq.EncoderValue, Encoder: 300})); got != "300\n" {
		t.Errorf("encoder response = %q, want %q", got, "300\n")
	}
	if got := string(EncodeResponse(hwreq.HardwareResponse{Kind: hwreq.SwitchOn, Switch: true})); got != "true\n" {
		t.Errorf("switch response = %q, want %q", got, "true\n")
	}
}

func TestPadOp_RoundTrip(t *testing.T) {
	cases := []PadOperation{
		{Kind: OpKeepAlive},
		{Kind: OpSabertoothWrite, Port: 3, Cmd: 192},
		{Kind: OpSmartelexWrite, Port: 1, Payload: [5]byte{1, 2, 3, 4, 5}},
		{Kind: OpEncoderRead},
		{Kind: OpPwmWrite, Port: 4, Duty: 368},
		{Kind: OpVersionReport},
		{Kind: OpReset},
	}
	for _, want := range cases {
		frame := EncodePadOp(want)
		got, n, err := DecodePadOp(frame)
		if err != nil {
			t.Fatalf("decode %+v: %v", want, err)
		}
		if n != len(frame) {
			t.Errorf("consumed %d bytes, want %d", n, len(frame))
		}
		if got != want {
			t.Errorf("round trip mismatch: want %+v got %+v", want, got)
		}
	}
}

func TestEncoderReply_RoundTrip(t *testing.T) {
	want := EncoderReply{100, 200, 300, 400, 500}
	got, err := DecodeEncoderReply(EncodeEncoderReply(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: want %+v got %+v", want, got)
	}
}

func TestDecodePadOp_ShortFrameErrors(t *testing.T) {
	if _, _, err := DecodePadOp([]byte{byte(OpSabertoothWrite), 1}); err == nil {
		t.Error("expected error for truncated SabertoothWrite frame")
	}
	if _, _, err := DecodePadOp(nil); err == nil {
		t.Error("expected error for empty frame")
	}
}
