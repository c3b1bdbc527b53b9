package server

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Brownie44l1/scoreserver/internal/request"
)

// Config holds everything the server needs. There are no flags or
// environment variables; callers start from DefaultConfig and override.
type Config struct {
	// Addr is the preferred listen address.
	Addr string
	// FallbackAddr is bound when Addr is refused for lack of permission.
	FallbackAddr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxLineBytes   int
	MaxHeaderLines int

	// MetricsAddr serves the Prometheus registry at MetricsPath.
	// Empty disables the metrics listener.
	MetricsAddr string

	Logger   Logger
	Registry *prometheus.Registry
}

func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8000",
		FallbackAddr:   "127.0.0.1:8000",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxLineBytes:   request.DefaultMaxLineBytes,
		MaxHeaderLines: request.DefaultMaxHeaderLines,
		MetricsAddr:    "127.0.0.1:9464",
		Logger:         NewDefaultLogger(os.Stdout),
	}
}
