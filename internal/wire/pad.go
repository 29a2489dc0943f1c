package wire

import (
	"encoding/binary"
	"fmt"
)

// PadOpKind tags the PadOperation union carried over the serial link.
type PadOpKind byte

const (
	OpKeepAlive PadOpKind = iota + 1
	OpSabertoothWrite
	OpSmartelexWrite
	OpEncoderRead
	OpPwmWrite
	OpVersionReport
	OpReset
)

// PadOperation is the tagged union encoded as a compact binary frame and
// sent down the PAD serial link. Only the fields relevant to Kind are used.
type PadOperation struct {
	Kind PadOpKind

	Port    uint8
	Cmd     uint8    // SabertoothWrite
	Payload [5]uint8 // SmartelexWrite
	Duty    uint16   // PwmWrite
}

// EncodePadOp renders a PadOperation as its wire frame: one opcode byte
// followed by the variant's fixed-width payload. There is no length prefix —
// each opcode implies its payload length, so framing is self-delimiting by
// construction.
func EncodePadOp(op PadOperation) []byte {
	switch op.Kind {
	case OpKeepAlive, OpEncoderRead, OpVersionReport, OpReset:
		return []byte{byte(op.Kind)}
	case OpSabertoothWrite:
		return []byte{byte(op.Kind), op.Port, op.Cmd}
	case OpSmartelexWrite:
		b := make([]byte, 2+5)
		b[0] = byte(op.Kind)
		b[1] = op.Port
		copy(b[2:], op.Payload[:])
		return b
	case OpPwmWrite:
		b := make([]byte, 4)
		b[0] = byte(op.Kind)
		b[1] = op.Port
		binary.LittleEndian.PutUint16(b[2:], op.Duty)
		return b
	default:
		return nil
	}
}

// DecodePadOp parses a single wire frame back into a PadOperation. It
// returns the number of bytes consumed so callers reading from a stream can
// advance past exactly one frame.
func DecodePadOp(b []byte) (PadOperation, int, error) {
	if len(b) < 1 {
		return PadOperation{}, 0, fmt.Errorf("short frame: no opcode")
	}
	kind := PadOpKind(b[0])
	switch kind {
	case OpKeepAlive, OpEncoderRead, OpVersionReport, OpReset:
		return PadOperation{Kind: kind}, 1, nil
	case OpSabertoothWrite:
		if len(b) < 3 {
			return PadOperation{}, 0, fmt.Errorf("short SabertoothWrite frame")
		}
		return PadOperation{Kind: kind, Port: b[1], Cmd: b[2]}, 3, nil
	case OpSmartelexWrite:
		if len(b) < 7 {
			return PadOperation{}, 0, fmt.Errorf("short SmartelexWrite frame")
		}
		var op PadOperation
		op.Kind = kind
		op.Port = b[1]
		copy(op.Payload[:], b[2:7])
		return op, 7, nil
	case OpPwmWrite:
		if len(b) < 4 {
			return PadOperation{}, 0, fmt.Errorf("short PwmWrite frame")
		}
		return PadOperation{Kind: kind, Port: b[1], Duty: binary.LittleEndian.Uint16(b[2:4])}, 4, nil
	default:
		return PadOperation{}, 0, fmt.Errorf("unknown opcode 0x%02x", b[0])
	}
}

// EncoderReply is the PAD's fixed-width response to an EncoderRead op: one
// signed 32-bit value per encoder slot.
type EncoderReply [5]int32

const EncoderReplyWireLen = 4 * 5

// EncodeEncoderReply renders the PAD's encoder reply frame. Used by test
// fakes that stand in for the microcontroller.
func EncodeEncoderReply(r EncoderReply) []byte {
	b := make([]byte, EncoderReplyWireLen)
	for i, v := range r {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(v))
	}
	return b
}

// DecodeEncoderReply parses the PAD's fixed-width [i32;5] response.
func DecodeEncoderReply(b []byte) (EncoderReply, error) {
	var r EncoderReply
	if len(b) < EncoderReplyWireLen {
		return r, fmt.Errorf("short encoder reply: got %d bytes, want %d", len(b), EncoderReplyWireLen)
	}
	for i := range r {
		r[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return r, nil
}
