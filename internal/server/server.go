package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	cfg      Config
	logger   Logger
	metrics  *Metrics
	registry *prometheus.Registry

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   atomic.Bool
	wg       sync.WaitGroup
}

// New creates a server. A nil Logger discards logs; a nil Registry gets a
// fresh one so several servers can live in one process.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = &NullLogger{}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	return &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		metrics:  NewMetrics(cfg.Registry),
		registry: cfg.Registry,
		conns:    make(map[net.Conn]struct{}),
	}
}

// ListenAndServe binds the configured address (with fallback) and serves.
func (s *Server) ListenAndServe() error {
	ln, err := Listen(s.cfg, s.logger)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and handles each on its own goroutine.
// It returns ErrServerClosed after Close or Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("server listening", Field{"addr", ln.Addr().String()})

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			// Accept errors only affect the connection being accepted
			s.metrics.recordError(errKindAccept)
			backoff = nextBackoff(backoff)
			s.logger.Error("error accepting connection",
				Field{"error", err.Error()},
				Field{"retry_in", backoff.String()},
			)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.trackConn(conn, true) {
			conn.Close()
			return ErrServerClosed
		}
		go s.serveConn(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

func (s *Server) trackConn(conn net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if add {
		if s.closed.Load() {
			return false
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		return true
	}

	delete(s.conns, conn)
	s.wg.Done()
	return true
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Registry returns the Prometheus registry holding the server metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Shutdown stops accepting and waits for in-flight connections. When ctx
// ends first, the remaining connections are closed and ctx.Err returned.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.closeListener()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		s.closeConns()
		return ctx.Err()
	}
}

// Close stops accepting and closes every open connection immediately.
func (s *Server) Close() error {
	err := s.closeListener()
	s.closeConns()
	return err
}

func (s *Server) closeListener() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed.Store(true)
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
