// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/mohammadbaghban/openremote/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type PrimaryRouterIn struct {
	fx.In
	Servers  Servers
	Measures ServerMeasures
	Tracing  candlelight.Tracing
	Store    StoreHandlersIn
	Widgets  WidgetHandlersIn
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

type StoreHandlersIn struct {
	fx.In
	Set             store.Handler `name:"set_asset_handler"`
	Get             store.Handler `name:"get_asset_handler"`
	GetAll          store.Handler `name:"get_all_assets_handler"`
	Delete          store.Handler `name:"delete_asset_handler"`
	UpdateAttribute store.Handler `name:"update_attribute_handler"`
}

type WidgetHandlersIn struct {
	fx.In
	Create      widget.Handler `name:"create_widget_handler"`
	List        widget.Handler `name:"list_widgets_handler"`
	Kinds       widget.Handler `name:"list_kinds_handler"`
	Get         widget.Handler `name:"get_widget_handler"`
	Delete      widget.Handler `name:"delete_widget_handler"`
	Settings    widget.Handler `name:"widget_settings_handler"`
	Reconfigure widget.Handler `name:"reconfigure_widget_handler"`
	Action      widget.Handler `name:"widget_action_handler"`
	Refresh     widget.Handler `name:"refresh_widget_handler"`
	Stream      widget.Handler `name:"widget_stream_handler"`
}

// BuildPrimaryRoutes mounts the asset and widget APIs on the primary server.
func BuildPrimaryRoutes(in PrimaryRouterIn) error {
	router := mux.NewRouter()
	mountAssets(router, in.Store)
	mountWidgets(router, in.Widgets)

	chain := alice.New(
		alice.Constructor(recovery.Middleware(recovery.WithStatusCode(555))),
		in.Measures.Instrument("primary"),
		alice.Constructor(otelmux.Middleware("server_primary",
			otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
			otelmux.WithPropagators(in.Tracing.Propagator()),
		)),
	)
	return serve(in.LC, in.Logger, "primary", in.Servers.Primary, chain.Then(router))
}

func mountAssets(router *mux.Router, h StoreHandlersIn) {
	assetsPath := fmt.Sprintf("/%s/assets", apiBase)
	assetPath := fmt.Sprintf("%s/{assetId}", assetsPath)
	router.Handle(assetsPath, h.GetAll).Methods(http.MethodGet)
	router.Handle(assetPath, h.Set).Methods(http.MethodPut)
	router.Handle(assetPath, h.Get).Methods(http.MethodGet)
	router.Handle(assetPath, h.Delete).Methods(http.MethodDelete)
	router.Handle(assetPath+"/attributes/{name}", h.UpdateAttribute).Methods(http.MethodPut)
}

func mountWidgets(router *mux.Router, h WidgetHandlersIn) {
	widgetsPath := fmt.Sprintf("/%s/widgets", apiBase)
	widgetPath := fmt.Sprintf("%s/{id}", widgetsPath)
	router.Handle(fmt.Sprintf("/%s/kinds", apiBase), h.Kinds).Methods(http.MethodGet)
	router.Handle(widgetsPath, h.Create).Methods(http.MethodPost)
	router.Handle(widgetsPath, h.List).Methods(http.MethodGet)
	router.Handle(widgetPath, h.Get).Methods(http.MethodGet)
	router.Handle(widgetPath, h.Delete).Methods(http.MethodDelete)
	router.Handle(widgetPath+"/settings", h.Settings).Methods(http.MethodGet)
	router.Handle(widgetPath+"/config", h.Reconfigure).Methods(http.MethodPut)
	router.Handle(widgetPath+"/actions/{action}", h.Action).Methods(http.MethodPost)
	router.Handle(widgetPath+"/refresh", h.Refresh).Methods(http.MethodPost)
	router.Handle(widgetPath+"/stream", h.Stream).Methods(http.MethodGet)
}

type MetricsRouterIn struct {
	fx.In
	Servers  Servers
	Gatherer prometheus.Gatherer
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func BuildMetricsRoutes(in MetricsRouterIn) error {
	router := mux.NewRouter()
	router.Handle(in.Servers.Metrics.path(defaultMetricsPath), promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{})).
		Methods(http.MethodGet)
	return serve(in.LC, in.Logger, "metrics", in.Servers.Metrics, router)
}

type HealthRouterIn struct {
	fx.In
	Servers  Servers
	Measures ServerMeasures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func BuildHealthRoutes(in HealthRouterIn) error {
	router := mux.NewRouter()
	router.Handle(in.Servers.Health.path(defaultHealthPath), httpaux.ConstantHandler{
		StatusCode: http.StatusOK,
	}).Methods(http.MethodGet)
	return serve(in.LC, in.Logger, "health", in.Servers.Health, in.Measures.Instrument("health")(router))
}
