// Package tcpserver accepts TCP clients and bridges each connection to
// the lobby: one reader loop decoding command lines, one writer
// goroutine draining the lobby outbox.
package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/DoyleJ11/dice-game-backend/internal/lobby"
)

type Server struct {
	lobby *lobby.Lobby
	log   *zap.Logger
	ln    net.Listener
}

func New(lb *lobby.Lobby, log *zap.Logger) *Server {
	return &Server{lobby: lb, log: log}
}

// Listen binds the listener. A bind failure is fatal to startup and is
// returned to the caller; no handler state is created.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.ln = ln
	s.log.Info("tcp listener started", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address; useful when listening on port 0.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve accepts connections until ctx is canceled. Each connection gets
// its own handler goroutine; a handler failure never reaches this loop.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go handle(conn, s.lobby, s.log)
	}
}
