// Command spine is the hardware-mediation daemon: it loads configuration,
// constructs the PAD and LOCAL actors and their supervisor, and accepts
// client connections on a Unix socket until told to shut down.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"spine/internal/config"
	"spine/internal/drivers/gpio"
	"spine/internal/drivers/i2c"
	"spine/internal/drivers/pca9685"
	"spine/internal/hwio"
	"spine/internal/hwreq"
	"spine/internal/localactor"
	"spine/internal/padactor"
	"spine/internal/session"
	"spine/internal/supervisor"
)

const (
	socketPath = "/tmp/hardware.sock"

	// pca9685Addr is the PCA9685's default I2C address (all ADDR pins low).
	pca9685Addr = 0x40
)

func main() {
	logger := log.New(os.Stderr, "spine: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	conns, err := buildConnections(cfg)
	if err != nil {
		logger.Fatalf("build local connections: %v", err)
	}
	if err := localactor.Setup(conns); err != nil {
		logger.Fatalf("local setup sequence: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pad := padactor.New(logger)
	local := localactor.New(logger, conns)
	sup := supervisor.New(logger, pad)

	go pad.Run(ctx)
	go local.Run(ctx.Done())
	go sup.Run(ctx)

	handler := session.New(logger, cfg, pad, local)

	if err := os.RemoveAll(socketPath); err != nil && !os.IsNotExist(err) {
		logger.Fatalf("remove stale socket: %v", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		logger.Fatalf("listen on %s: %v", socketPath, err)
	}
	defer ln.Close()
	logger.Printf("listening on %s", socketPath)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Printf("shutting down")
				return
			default:
				logger.Printf("accept: %v", err)
				continue
			}
		}
		go handler.Handle(conn)
	}
}

// buildConnections constructs every host-local GPIO line, the PCA9685
// handle, and the channel tables localactor.Connections needs, from the
// loaded [system] configuration.
func buildConnections(cfg *hwreq.Configuration) (localactor.Connections, error) {
	conns := localactor.Connections{
		Switches:      make(map[string]hwio.GPIOLine, len(cfg.System.LimitSwitches)),
		Motors:        make(map[string][2]hwio.GPIOLine, len(cfg.System.Motors)),
		LEDs:          make(map[string]hwio.GPIOLine, len(cfg.System.StatusLEDs)),
		ServoChannels: cfg.System.Servos,
	}
	for name, line := range cfg.System.LimitSwitches {
		conns.Switches[name] = gpio.New(line)
	}
	for name, pair := range cfg.System.Motors {
		conns.Motors[name] = [2]hwio.GPIOLine{gpio.New(pair[0]), gpio.New(pair[1])}
	}
	for name, line := range cfg.System.StatusLEDs {
		conns.LEDs[name] = gpio.New(line)
	}

	if len(cfg.System.Servos) > 0 {
		bus, err := i2c.Open(cfg.System.PCA9685Path)
		if err != nil {
			return conns, err
		}
		dev := pca9685.New(bus, pca9685Addr)
		if err := dev.Init(); err != nil {
			return conns, err
		}
		conns.PCA9685 = dev
	}
	return conns, nil
}
