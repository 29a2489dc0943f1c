// Package resolver maps a semantic HardwareRequest to a back-end target,
// purely from the loaded Configuration. It holds no state of its own and
// performs no I/O — see spec §4.2.
package resolver

import "spine/internal/hwreq"

// Resolve is total and deterministic over (cfg, req): repeated calls with the
// same arguments always return the same Resolution.
func Resolve(cfg *hwreq.Configuration, req hwreq.HardwareRequest) hwreq.Resolution {
	switch req.Kind {
	case hwreq.ServoWrite:
		if port, ok := cfg.Pad.Servos[req.Name]; ok {
			return hwreq.Resolution{Target: hwreq.TargetPad, Port: port}
		}
		if _, ok := cfg.System.Servos[req.Name]; ok {
			return hwreq.Resolution{Target: hwreq.TargetSystem}
		}
		return hwreq.Resolution{Target: hwreq.TargetNone}

	case hwreq.MotorWrite:
		// Names declared under [pad] shadow identically named [system]
		// entries: this is deliberate, allowing a single config to override
		// part of the hardware topology without touching the rest.
		if port, ok := cfg.Pad.Motors[req.Name]; ok {
			return hwreq.Resolution{Target: hwreq.TargetPad, Port: port}
		}
		if _, ok := cfg.System.Motors[req.Name]; ok {
			return hwreq.Resolution{Target: hwreq.TargetSystem}
		}
		return hwreq.Resolution{Target: hwreq.TargetNone}

	case hwreq.EncoderRead:
		if port, ok := cfg.Pad.Encoders[req.Name]; ok {
			return hwreq.Resolution{Target: hwreq.TargetPad, Port: port}
		}
		return hwreq.Resolution{Target: hwreq.TargetNone}

	case hwreq.SwitchRead:
		return hwreq.Resolution{Target: hwreq.TargetSystem}

	case hwreq.LedWrite:
		return hwreq.Resolution{Target: hwreq.TargetSystem}

	case hwreq.PadReset:
		return hwreq.Resolution{Target: hwreq.TargetPad, Port: 0}

	default:
		return hwreq.Resolution{Target: hwreq.TargetNone}
	}
}
