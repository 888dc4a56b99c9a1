// Package server implements the control bus's TCP front end: a single
// accept loop, per-connection auth gate with a 3-attempt lockout, and a
// read-line/dispatch loop delegating to package protocol.
package server

import (
	"bufio"
	"fmt"
	"net"
	"sync/atomic"

	"titi/internal/auth"
	"titi/internal/channels"
	"titi/internal/eventlog"
	"titi/internal/protocol"
	"titi/internal/registry"
)

const maxAuthAttempts = 3

// Server owns the listener and the shared registry/channel/auth state
// every connection dispatches against.
type Server struct {
	addr       string
	auth       *auth.TokenAuth
	registry   *registry.Registry
	channels   *channels.Manager
	dispatcher *protocol.Dispatcher
	log        *eventlog.Logger

	nextConnID int64
}

// New constructs a Server bound to addr (not yet listening) backed by a
// fresh registry and channel manager.
func New(addr string, tokenAuth *auth.TokenAuth, log *eventlog.Logger) *Server {
	reg := registry.New()
	ch := channels.NewManager()
	if log == nil {
		log = eventlog.Nop()
	}
	return &Server{
		addr:       addr,
		auth:       tokenAuth,
		registry:   reg,
		channels:   ch,
		dispatcher: protocol.NewDispatcher(reg, ch, log),
		log:        log,
	}
}

// Run binds the listener and serves connections until it fails or the
// listener is closed. Each connection is handled on its own goroutine.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	defer ln.Close()

	s.log.Listen(ln.Addr().String(), s.auth.TokenPath())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("server: accept: %w", err)
		}
		connID := channels.ConnID(atomic.AddInt64(&s.nextConnID, 1))
		s.log.ConnectionAccepted(int64(connID), conn.RemoteAddr().String())
		go s.handleConnection(conn, connID)
	}
}

func (s *Server) handleConnection(conn net.Conn, connID channels.ConnID) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	authenticated := false
	attempts := 0

	for {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			break
		}

		command, args, parseErr := protocol.ParseCommand(line)
		if parseErr != nil {
			writeResponse(conn, protocol.Errorf("%s", parseErr.Error()))
			if err != nil {
				break
			}
			continue
		}

		if !authenticated {
			if command == "AUTH" {
				if len(args) == 0 {
					writeResponse(conn, protocol.Errorf("AUTH requires token"))
				} else if s.auth.Validate(args[0]) {
					authenticated = true
					s.log.AuthResult(int64(connID), true, attempts+1)
					writeResponse(conn, protocol.OK())
				} else {
					attempts++
					s.log.AuthResult(int64(connID), false, attempts)
					writeResponse(conn, protocol.Errorf("Invalid token"))
					if attempts >= maxAuthAttempts {
						break
					}
				}
			} else {
				writeResponse(conn, protocol.Errorf("Not authenticated. Use AUTH command first"))
			}
			if err != nil {
				break
			}
			continue
		}

		resp := s.dispatcher.Handle(command, args, connID)
		if writeErr := writeResponse(conn, resp); writeErr != nil {
			break
		}
		if err != nil {
			break
		}
	}

	s.channels.UnsubscribeAll(connID)
	s.log.ConnectionClosed(int64(connID))
}

func writeResponse(conn net.Conn, resp protocol.Response) error {
	_, err := conn.Write([]byte(resp.Serialize()))
	return err
}

// Registry exposes the server's registry, e.g. for the CLI's
// in-process headless-bridge wiring.
func (s *Server) Registry() *registry.Registry { return s.registry }

// Channels exposes the server's channel manager.
func (s *Server) Channels() *channels.Manager { return s.channels }
