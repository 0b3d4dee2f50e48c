// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Route", name)
	})
}

func TestMountRoutes(t *testing.T) {
	router := mux.NewRouter()
	mountAssets(router, StoreHandlersIn{
		Set:             named("setAsset"),
		Get:             named("getAsset"),
		GetAll:          named("getAllAssets"),
		Delete:          named("deleteAsset"),
		UpdateAttribute: named("updateAttribute"),
	})
	mountWidgets(router, WidgetHandlersIn{
		Create:      named("create"),
		List:        named("list"),
		Kinds:       named("kinds"),
		Get:         named("get"),
		Delete:      named("delete"),
		Settings:    named("settings"),
		Reconfigure: named("reconfigure"),
		Action:      named("action"),
		Refresh:     named("refresh"),
		Stream:      named("stream"),
	})

	tcs := []struct {
		method string
		target string
		route  string
	}{
		{method: http.MethodGet, target: "/api/v1/assets", route: "getAllAssets"},
		{method: http.MethodPut, target: "/api/v1/assets/a1", route: "setAsset"},
		{method: http.MethodGet, target: "/api/v1/assets/a1", route: "getAsset"},
		{method: http.MethodDelete, target: "/api/v1/assets/a1", route: "deleteAsset"},
		{method: http.MethodPut, target: "/api/v1/assets/a1/attributes/temp", route: "updateAttribute"},
		{method: http.MethodGet, target: "/api/v1/kinds", route: "kinds"},
		{method: http.MethodPost, target: "/api/v1/widgets", route: "create"},
		{method: http.MethodGet, target: "/api/v1/widgets", route: "list"},
		{method: http.MethodGet, target: "/api/v1/widgets/w1", route: "get"},
		{method: http.MethodDelete, target: "/api/v1/widgets/w1", route: "delete"},
		{method: http.MethodGet, target: "/api/v1/widgets/w1/settings", route: "settings"},
		{method: http.MethodPut, target: "/api/v1/widgets/w1/config", route: "reconfigure"},
		{method: http.MethodPost, target: "/api/v1/widgets/w1/actions/showLegend", route: "action"},
		{method: http.MethodPost, target: "/api/v1/widgets/w1/refresh", route: "refresh"},
		{method: http.MethodGet, target: "/api/v1/widgets/w1/stream", route: "stream"},
	}
	for _, tc := range tcs {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(tc.method, tc.target, nil))
			assert.Equal(t, tc.route, recorder.Header().Get("X-Route"))
		})
	}
}

func TestInstrument(t *testing.T) {
	measures := ServerMeasures{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "testRequests"}, []string{CodeLabel, MethodLabel, ServerLabel}),
		Latency:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "testLatency"}, []string{CodeLabel, MethodLabel, ServerLabel}),
	}
	h := measures.Instrument("primary")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, recorder.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(measures.Requests.With(prometheus.Labels{
		CodeLabel: "418", MethodLabel: http.MethodGet, ServerLabel: "primary",
	})))
}

func TestServe(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		require.NoError(t, serve(lc, zap.NewNop(), "health", ServerConfig{}, http.NotFoundHandler()))
		lc.RequireStart().RequireStop()
	})

	t.Run("StartStop", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		require.NoError(t, serve(lc, zap.NewNop(), "health", ServerConfig{Address: "127.0.0.1:0"}, http.NotFoundHandler()))
		require.NoError(t, lc.Start(context.Background()))
		require.NoError(t, lc.Stop(context.Background()))
	})
}

func TestServerConfigPath(t *testing.T) {
	assert.Equal(t, defaultHealthPath, ServerConfig{}.path(defaultHealthPath))
	assert.Equal(t, "/ready", ServerConfig{Path: "/ready"}.path(defaultHealthPath))
}
