// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	RequestCounter = "server_requests_total"
	RequestLatency = "server_request_duration_seconds_total"
)

// Labels
const (
	ServerLabel = "server"
	CodeLabel   = "code"
	MethodLabel = "method"
)

// provideMetrics builds the application metrics and makes them available to the container
func provideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestCounter,
				Help: "total incoming HTTP requests",
			},
			CodeLabel, MethodLabel, ServerLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestLatency,
				Help: "accumulated time spent serving incoming HTTP requests",
			},
			CodeLabel, MethodLabel, ServerLabel,
		),
	)
}

type ServerMeasures struct {
	fx.In
	Requests *prometheus.CounterVec `name:"server_requests_total"`
	Latency  *prometheus.CounterVec `name:"server_request_duration_seconds_total"`
}

// Instrument returns the middleware counting the requests served by server.
func (m ServerMeasures) Instrument(server string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics := httpsnoop.CaptureMetrics(next, w, r)
			labels := prometheus.Labels{
				CodeLabel:   strconv.Itoa(metrics.Code),
				MethodLabel: r.Method,
				ServerLabel: server,
			}
			m.Requests.With(labels).Inc()
			m.Latency.With(labels).Add(metrics.Duration.Seconds())
		})
	}
}
