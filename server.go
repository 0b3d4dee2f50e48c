// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultMetricsPath = "/metrics"
	defaultHealthPath  = "/health"

	defaultReadHeaderTimeout = 10 * time.Second
)

// ServerConfig configures one HTTP listener. A server without an address is
// not started.
type ServerConfig struct {
	Address           string
	Path              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration

	// WriteTimeout also bounds widget streams.
	WriteTimeout time.Duration
}

type Servers struct {
	Primary ServerConfig
	Metrics ServerConfig
	Health  ServerConfig
}

func (c ServerConfig) path(fallback string) string {
	if len(c.Path) > 0 {
		return c.Path
	}
	return fallback
}

func (c ServerConfig) newServer(h http.Handler, logger *zap.Logger) *http.Server {
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	return &http.Server{
		Addr:              c.Address,
		Handler:           h,
		ReadHeaderTimeout: c.ReadHeaderTimeout,
		IdleTimeout:       c.IdleTimeout,
		WriteTimeout:      c.WriteTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}
}

// serve binds the server to the application lifecycle.
func serve(lc fx.Lifecycle, logger *zap.Logger, name string, c ServerConfig, h http.Handler) error {
	logger = logger.With(zap.String("server", name))
	if len(c.Address) == 0 {
		logger.Info("server disabled")
		return nil
	}

	s := c.newServer(h, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", s.Addr)
			if err != nil {
				return err
			}
			logger.Info("starting server", zap.Stringer("address", l.Addr()))
			go func() {
				if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return s.Shutdown(ctx)
		},
	})
	return nil
}
