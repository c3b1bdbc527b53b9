package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// Listen binds cfg.Addr. A privileged port that cannot be bound falls back
// to cfg.FallbackAddr with a warning.
func Listen(cfg Config, logger Logger) (net.Listener, error) {
	if logger == nil {
		logger = &NullLogger{}
	}

	ln, err := listenTCP(cfg.Addr)
	if err == nil {
		return ln, nil
	}

	if !errors.Is(err, ErrBindPermission) || cfg.FallbackAddr == "" {
		return nil, err
	}

	logger.Warn("address not permitted, starting on fallback address instead",
		Field{"addr", cfg.Addr},
		Field{"fallback", cfg.FallbackAddr},
	)

	return listenTCP(cfg.FallbackAddr)
}

func listenTCP(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}

	switch {
	case errors.Is(err, syscall.EACCES), errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %s: %w", ErrBindPermission, addr, err)
	case errors.Is(err, syscall.EADDRINUSE):
		return nil, fmt.Errorf("%w: %s: stop the program using it and try again: %w", ErrAddrInUse, addr, err)
	default:
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
}
