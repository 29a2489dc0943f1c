// Package wire implements the two framing/serialisation formats used by
// spine: self-delimiting text records on the client socket (see
// Decoder/EncodeResponse below) and compact binary frames on the PAD serial
// link (pad.go).
package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"spine/internal/hwreq"
)

// Decoder accumulates raw socket bytes across reads and yields zero or more
// complete HardwareRequest records per Feed call. A record that straddles a
// read boundary is buffered rather than lost (see spec §9's "must buffer
// unparsed bytes across reads").
type Decoder struct {
	buf bytes.Buffer
	// Warn is called for each record that fails to decode; the record is
	// skipped and decoding continues with the next one. May be nil.
	Warn func(record string, err error)
}

// Feed appends p to the internal buffer, splits out every complete
// newline-terminated record, and returns the successfully decoded requests.
// Any trailing partial record remains buffered for the next call.
func (d *Decoder) Feed(p []byte) []hwreq.HardwareRequest {
	d.buf.Write(p)

	var out []hwreq.HardwareRequest
	for {
		data := d.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := string(data[:i])
		d.buf.Next(i + 1)

		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		req, err := decodeRecord(line)
		if err != nil {
			if d.Warn != nil {
				d.Warn(line, err)
			}
			continue
		}
		out = append(out, req)
	}
	return out
}

// DecodeRecord parses a single textual record (without trailing newline).
// Exposed for round-trip tests and cmd/spinectl; Decoder.Feed is the path
// session handlers use.
func DecodeRecord(line string) (hwreq.HardwareRequest, error) {
	return decodeRecord(line)
}

// decodeRecord parses one textual record. Records are whitespace-separated
// tokens: VERB followed by variant-specific fields.
func decodeRecord(line string) (hwreq.HardwareRequest, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return hwreq.HardwareRequest{}, fmt.Errorf("empty record")
	}
	verb := strings.ToUpper(fields[0])
	args := fields[1:]

	switch verb {
	case "MOTOR":
		if len(args) < 2 {
			return hwreq.HardwareRequest{}, fmt.Errorf("MOTOR: want name + 1 or 5 bytes, got %d args", len(args))
		}
		name := args[0]
		bs := args[1:]
		if len(bs) != 1 && len(bs) != 5 {
			return hwreq.HardwareRequest{}, fmt.Errorf("MOTOR: command must be 1 or 5 bytes, got %d", len(bs))
		}
		cmd := make([]byte, len(bs))
		for i, s := range bs {
			v, err := strconv.ParseUint(s, 10, 8)
			if err != nil {
				return hwreq.HardwareRequest{}, fmt.Errorf("MOTOR: bad command byte %q: %w", s, err)
			}
			cmd[i] = byte(v)
		}
		return hwreq.HardwareRequest{Kind: hwreq.MotorWrite, Name: name, Command: cmd}, nil

	case "SERVO":
		if len(args) != 2 {
			return hwreq.HardwareRequest{}, fmt.Errorf("SERVO: want name + position, got %d args", len(args))
		}
		pos, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return hwreq.HardwareRequest{}, fmt.Errorf("SERVO: bad position %q: %w", args[1], err)
		}
		return hwreq.HardwareRequest{Kind: hwreq.ServoWrite, Name: args[0], Position: uint16(pos)}, nil

	case "ENCODER":
		if len(args) != 1 {
			return hwreq.HardwareRequest{}, fmt.Errorf("ENCODER: want exactly a name, got %d args", len(args))
		}
		return hwreq.HardwareRequest{Kind: hwreq.EncoderRead, Name: args[0]}, nil

	case "SWITCH":
		if len(args) != 1 {
			return hwreq.HardwareRequest{}, fmt.Errorf("SWITCH: want exactly a name, got %d args", len(args))
		}
		return hwreq.HardwareRequest{Kind: hwreq.SwitchRead, Name: args[0]}, nil

	case "LED":
		if len(args) != 2 {
			return hwreq.HardwareRequest{}, fmt.Errorf("LED: want name + state, got %d args", len(args))
		}
		st, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return hwreq.HardwareRequest{}, fmt.Errorf("LED: bad state %q: %w", args[1], err)
		}
		return hwreq.HardwareRequest{Kind: hwreq.LedWrite, Name: args[0], State: byte(st)}, nil

	case "PADRESET":
		return hwreq.HardwareRequest{Kind: hwreq.PadReset}, nil

	default:
		return hwreq.HardwareRequest{}, fmt.Errorf("unknown verb %q", verb)
	}
}

// EncodeRequest renders a HardwareRequest back to its textual record form
// (newline-terminated). Used by cmd/spinectl and round-trip tests.
func EncodeRequest(req hwreq.HardwareRequest) []byte {
	var sb strings.Builder
	switch req.Kind {
	case hwreq.MotorWrite:
		sb.WriteString("MOTOR ")
		sb.WriteString(req.Name)
		for _, b := range req.Command {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Itoa(int(b)))
		}
	case hwreq.ServoWrite:
		fmt.Fprintf(&sb, "SERVO %s %d", req.Name, req.Position)
	case hwreq.EncoderRead:
		fmt.Fprintf(&sb, "ENCODER %s", req.Name)
	case hwreq.SwitchRead:
		fmt.Fprintf(&sb, "SWITCH %s", req.Name)
	case hwreq.LedWrite:
		fmt.Fprintf(&sb, "LED %s %d", req.Name, req.State)
	case hwreq.PadReset:
		sb.WriteString("PADRESET")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

// EncodeResponse renders a HardwareResponse as the single textual scalar
// written back to the client. Ok responses encode to nil, so nothing is
// written for them.
func EncodeResponse(resp hwreq.HardwareResponse) []byte {
	switch resp.Kind {
	case hwreq.EncoderValue:
		return []byte(strconv.Itoa(int(resp.Encoder)) + "\n")
	case hwreq.SwitchOn:
		return []byte(strconv.FormatBool(resp.Switch) + "\n")
	default:
		return nil
	}
}

// DecodeResponse parses a textual scalar response. It is used by
// cmd/spinectl; it cannot distinguish an encoder value
// from a switch value on its own, so callers supply which is expected.
func DecodeResponse(line string, wantEncoder bool) (hwreq.HardwareResponse, error) {
	line = strings.TrimSpace(line)
	if wantEncoder {
		v, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			return hwreq.HardwareResponse{}, err
		}
		return hwreq.HardwareResponse{Kind: hwreq.EncoderValue, Encoder: int32(v)}, nil
	}
	b, err := strconv.ParseBool(line)
	if err != nil {
		return hwreq.HardwareResponse{}, err
	}
	return hwreq.HardwareResponse{Kind: hwreq.SwitchOn, Switch: b}, nil
}
