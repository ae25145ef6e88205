// Package metrics_server serves a freshly rendered metrics document to every
// TCP connection as a fixed HTTP/1.1 response. Requests are never parsed.
package metrics_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// DefaultAddr is the exporter's well-known listen address.
const DefaultAddr = ":9256"

// Accept failures back off from minAcceptDelay, doubling up to maxAcceptDelay.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// ErrNotListening is returned by Serve before a successful Listen.
var ErrNotListening = errors.New("server is not listening")

// Renderer produces the response body. It is called once per connection.
type Renderer interface {
	Render() []byte
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func() []byte

func (f RendererFunc) Render() []byte { return f() }

// StateHook observes connection state transitions. remote is the listener
// address for StateListening.
type StateHook func(remote net.Addr, state ConnState)

// Server accepts TCP connections and answers each with one response.
type Server struct {
	addr     string
	renderer Renderer
	hook     StateHook
	log      *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithStateHook registers h to be called on every state transition.
func WithStateHook(h StateHook) Option {
	return func(s *Server) {
		s.hook = h
	}
}

// WithLogger replaces the server's logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New creates a Server for addr. Nothing is bound until Listen.
func New(addr string, renderer Renderer, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		renderer: renderer,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "metrics-server")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the TCP listener. A failure here is meant to be fatal.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Infoln("Listening on", ln.Addr())
	s.notify(ln.Addr(), StateListening)
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or Close is called, then
// returns nil. Each connection is handled on its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Infoln("Stopped accepting connections")
				return nil
			}
			delay = acceptBackoff(delay)
			s.log.Warn("Accept failed: ", err, "; retrying in ", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(conn)
		}()
	}
}

// Close stops the listener. In-flight connections keep running.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Drain waits for in-flight connections to reach StateClosed or for ctx to
// end, whichever comes first.
func (s *Server) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acceptBackoff returns the wait after an Accept failure that followed a wait
// of prev. A zero prev means the previous Accept succeeded.
func acceptBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptDelay
	}
	return min(prev*2, maxAcceptDelay)
}

func (s *Server) handle(conn net.Conn) {
	c := &connection{srv: s, conn: conn, remote: conn.RemoteAddr()}
	c.run()
}

func (s *Server) notify(remote net.Addr, state ConnState) {
	if s.hook != nil {
		s.hook(remote, state)
	}
}
