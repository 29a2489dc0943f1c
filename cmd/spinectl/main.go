// Command spinectl is an interactive diagnostic client for spine: it reads
// operator commands from stdin, tokenizes them with shell-style quoting,
// encodes them onto the Unix socket, and prints back any reply.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"spine/internal/hwreq"
	"spine/internal/wire"
)

func main() {
	sockPath := flag.String("sock", "/tmp/hardware.sock", "path to spine's Unix socket")
	flag.Parse()

	conn, err := net.Dial("unix", *sockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spinectl: connect %s: %v\n", *sockPath, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("spinectl — MOTOR/SERVO/ENCODER/SWITCH/LED/PADRESET, Ctrl-D to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runCommand(conn, line); err != nil {
			fmt.Fprintf(os.Stderr, "spinectl: %v\n", err)
		}
	}
}

func runCommand(conn net.Conn, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}
	req, err := wire.DecodeRecord(strings.Join(tokens, " "))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if _, err := conn.Write(wire.EncodeRequest(req)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if !req.ExpectsReply() {
		return nil
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	replyLine, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("no reply (device may be offline): %w", err)
	}
	resp, err := wire.DecodeResponse(replyLine, req.Kind == hwreq.EncoderRead)
	if err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	switch resp.Kind {
	case hwreq.EncoderValue:
		fmt.Println(resp.Encoder)
	case hwreq.SwitchOn:
		fmt.Println(resp.Switch)
	}
	return nil
}
