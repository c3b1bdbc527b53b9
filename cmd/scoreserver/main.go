package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Brownie44l1/scoreserver/internal/server"
)

func main() {
	logger := server.NewDefaultLogger(os.Stdout)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	config := server.DefaultConfig()
	config.Logger = logger
	config.Registry = registry

	ln, err := server.Listen(config, logger)
	if err != nil {
		logger.Error("could not start server", server.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	srv := server.New(config)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, server.ErrServerClosed) {
			logger.Error("server error", server.Field{Key: "error", Value: err.Error()})
			os.Exit(1)
		}
	}()

	var metricsSrv *http.Server
	if config.MetricsAddr != "" {
		metricsSrv = server.NewMetricsServer(config.MetricsAddr, registry)
		go func() {
			logger.Info("metrics listening",
				server.Field{Key: "addr", Value: config.MetricsAddr},
				server.Field{Key: "path", Value: server.MetricsPath},
			)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", server.Field{Key: "error", Value: err.Error()})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("metrics shutdown error", server.Field{Key: "error", Value: err.Error()})
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", server.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	logger.Info("server stopped")
}
