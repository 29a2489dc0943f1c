// Package supervisor owns the PAD link's liveness: a periodic keep-alive
// tick and reconnect-on-failure state machine. It is the only component
// that drives PAD Actor reconnection; the actor itself never self-heals
// mid-request (spec §4.3, §9 "Reconnect decoupling"). The periodic-ticker
// shape follows the teacher's heartbeat service
// (services/heartbeat/service.go); the reconnect-on-failure flow follows
// its bridge service's runLink (services/bridge/bridge.go), without its
// backoff: a failed reconnect is retried on the next 800ms tick.
package supervisor

import (
	"context"
	"log"
	"time"
)

const keepAliveInterval = 800 * time.Millisecond

// padLink is the narrow contract the supervisor needs from the PAD actor.
type padLink interface {
	Connect(ctx context.Context) error
	KeepAlive(ctx context.Context) error
}

// linkState mirrors the PAD link's Disconnected/Connected state machine
// from spec §4.3. It decides whether a tick sends a keep-alive (Connected)
// or attempts a reconnect (Disconnected).
type linkState int

const (
	stateDisconnected linkState = iota
	stateConnected
)

// Supervisor drives the PAD actor's keep-alive ticker and reconnect.
type Supervisor struct {
	logger *log.Logger
	pad    padLink
	state  linkState
}

// New constructs a Supervisor for the given PAD actor.
func New(logger *log.Logger, pad padLink) *Supervisor {
	return &Supervisor{logger: logger, pad: pad, state: stateDisconnected}
}

// Run attempts an initial connect, then ticks keep-alive every 800ms until
// ctx is cancelled, reconnecting whenever a tick reports link failure.
func (s *Supervisor) Run(ctx context.Context) {
	s.tryConnect(ctx)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	if s.state == stateDisconnected {
		s.tryConnect(ctx)
		return
	}
	if err := s.pad.KeepAlive(ctx); err != nil {
		s.logger.Printf("supervisor: keep-alive failed, link down: %v", err)
		s.state = stateDisconnected
		s.tryConnect(ctx)
	}
}

func (s *Supervisor) tryConnect(ctx context.Context) {
	if err := s.pad.Connect(ctx); err != nil {
		s.logger.Printf("supervisor: connect_device failed, will retry on next tick: %v", err)
		s.state = stateDisconnected
		return
	}
	s.state = stateConnected
}
