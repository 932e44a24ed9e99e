package fwsim

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// Server accepts host connections and serves each one on its own goroutine.
// Requests on one connection are answered in order.
type Server struct {
	handler  *Handler
	listener net.Listener
	logger   zerolog.Logger

	mu     sync.Mutex
	conns  map[string]net.Conn
	closed bool
	wg     sync.WaitGroup
}

// Listen binds addr. Call Serve to start accepting.
func Listen(addr string, handler *Handler, logger zerolog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		handler:  handler,
		listener: listener,
		logger:   logger,
		conns:    make(map[string]net.Conn),
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until Close. It returns nil after Close.
func (s *Server) Serve() error {
	s.logger.Info().Str("addr", s.Addr().String()).Msg("firmware simulator listening")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}

		id := ksuid.New().String()
		if !s.track(id, conn) {
			conn.Close()
			return nil
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(id)
			s.serveConn(id, conn)
		}()
	}
}

// Close stops accepting, closes every open connection and waits for their
// goroutines to return.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	err := s.listener.Close()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(id string, conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[id] = conn
	return true
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn, ok := s.conns[id]; ok {
		conn.Close()
		delete(s.conns, id)
	}
}

func (s *Server) serveConn(id string, conn net.Conn) {
	logger := s.logger.With().
		Str("conn", id).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	logger.Debug().Msg("host connected")

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	for {
		req, err := mib.ReadRequest(r)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				logger.Debug().Msg("host disconnected")
			default:
				logger.Warn().Err(err).Msg("dropping connection")
			}
			return
		}

		resp, err := s.handler.Handle(req)
		if err != nil {
			logger.Error().Err(err).Str("signal", req.Signal.String()).Msg("request failed")
			return
		}

		logger.Debug().
			Str("signal", req.Signal.String()).
			Uint16("tag", req.Tag).
			Str("status", resp.Status.String()).
			Int("payload", len(req.Payload)).
			Msg("request served")

		if err := mib.WriteResponse(w, resp); err != nil {
			logger.Warn().Err(err).Msg("write failed")
			return
		}
	}
}
