// Package session implements the per-client dispatcher: it decodes the
// client's textual request stream, resolves each request to a back-end,
// forwards it to the owning actor, and writes back any reply. One Handle
// call services exactly one connected client for its lifetime.
package session

import (
	"errors"
	"io"
	"log"
	"net"

	"spine/errcode"
	"spine/internal/hwreq"
	"spine/internal/resolver"
	"spine/internal/wire"
)

const readBufSize = 1024

// PadSubmitter is the narrow contract the dispatcher needs from the PAD
// actor: enqueue a request, possibly blocking if the actor's inbound
// channel is full (the backpressure spec §4.5 calls for).
type PadSubmitter interface {
	Submit(hwreq.PadRequest)
}

// LocalSubmitter is the equivalent contract for the LOCAL actor.
type LocalSubmitter interface {
	Submit(hwreq.LocalRequest)
}

// Handler wires a resolved Configuration to the two actors it dispatches
// into.
type Handler struct {
	logger *log.Logger
	cfg    *hwreq.Configuration
	pad    PadSubmitter
	local  LocalSubmitter
}

// New constructs a Handler shared across all client connections — it holds
// no per-client state itself.
func New(logger *log.Logger, cfg *hwreq.Configuration, pad PadSubmitter, local LocalSubmitter) *Handler {
	return &Handler{logger: logger, cfg: cfg, pad: pad, local: local}
}

// Handle services one client connection until it disconnects or a socket
// error occurs, per spec §4.5.
func (h *Handler) Handle(conn net.Conn) {
	defer conn.Close()

	dec := &wire.Decoder{Warn: func(record string, err error) {
		h.logger.Printf("session: %v: %q: %v", errcode.WireDecodeError, record, err)
	}}

	buf := make([]byte, readBufSize)
	for {
		n, err := conn.Read(buf)
		if n == 0 {
			return
		}
		for _, req := range dec.Feed(buf[:n]) {
			h.dispatch(conn, req)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Printf("session: read error: %v", err)
			}
			return
		}
	}
}

// dispatch resolves one request, forwards it to the owning actor, and
// writes back a reply if one is expected.
func (h *Handler) dispatch(conn net.Conn, req hwreq.HardwareRequest) {
	res := resolver.Resolve(h.cfg, req)

	var slot hwreq.ReplySlot
	if req.ExpectsReply() {
		slot = hwreq.NewReplySlot()
	}

	switch res.Target {
	case hwreq.TargetPad:
		h.pad.Submit(hwreq.PadRequest{Req: req, Port: res.Port, Reply: slot})
	case hwreq.TargetSystem:
		h.local.Submit(hwreq.LocalRequest{Req: req, Reply: slot})
	case hwreq.TargetNone:
		h.logger.Printf("session: %v: no mapping for %v %q", errcode.ResolveMiss, req.Kind, req.Name)
		return
	}

	if slot == nil {
		return
	}
	resp := <-slot
	if b := wire.EncodeResponse(resp); b != nil {
		if _, err := conn.Write(b); err != nil {
			h.logger.Printf("session: %v: write reply: %v", errcode.IoFailure, err)
		}
	}
}
