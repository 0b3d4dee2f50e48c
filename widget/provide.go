// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"context"
	"time"

	"github.com/mohammadbaghban/openremote/binding"
	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/mutator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options configures the widget kinds and their dashboard.
type Options struct {
	SamplingOptions []mutator.SamplingOption
	TimePresets     []string
	FetchTimeout    time.Duration
}

type registryIn struct {
	fx.In
	Options   Options
	Formatter format.Formatter `optional:"true"`
}

type dashboardIn struct {
	fx.In
	Options   Options
	Channel   binding.EventChannel      `optional:"true"`
	Provider  binding.AssetDataProvider `optional:"true"`
	Formatter format.Formatter          `optional:"true"`
	Measures  Measures
	LC        fx.Lifecycle
	Logger    *zap.Logger
}

type handlersIn struct {
	fx.In
	Dashboard *Dashboard
	Registry  *Registry
	Logger    *zap.Logger
}

// Handlers are the widget API handlers.
type Handlers struct {
	fx.Out
	Create      Handler `name:"create_widget_handler"`
	List        Handler `name:"list_widgets_handler"`
	Kinds       Handler `name:"list_kinds_handler"`
	Get         Handler `name:"get_widget_handler"`
	Delete      Handler `name:"delete_widget_handler"`
	Settings    Handler `name:"widget_settings_handler"`
	Reconfigure Handler `name:"reconfigure_widget_handler"`
	Action      Handler `name:"widget_action_handler"`
	Refresh     Handler `name:"refresh_widget_handler"`
	Stream      Handler `name:"widget_stream_handler"`
}

// Provide builds the widget registry, the dashboard and the handlers
// serving them.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			newRegistry,
			newDashboard,
			newHandlers,
		),
	)
}

func newRegistry(in registryIn) (*Registry, error) {
	return NewRegistry(
		NewChart(Config{
			SamplingOptions: in.Options.SamplingOptions,
			TimePresets:     in.Options.TimePresets,
			Formatter:       in.Formatter,
		}),
		NewImage(in.Formatter),
		NewWeb(in.Formatter),
	)
}

func newDashboard(in dashboardIn, registry *Registry) (*Dashboard, error) {
	d, err := NewDashboard(DashboardConfig{
		Registry:     registry,
		Channel:      in.Channel,
		Provider:     in.Provider,
		Formatter:    in.Formatter,
		FetchTimeout: in.Options.FetchTimeout,
		Logger:       in.Logger,
	}, &in.Measures)
	if err != nil {
		return nil, err
	}
	in.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			d.Close()
			return nil
		},
	})
	return d, nil
}

func newHandlers(in handlersIn) Handlers {
	return Handlers{
		Create:      newCreateWidgetHandler(in.Dashboard),
		List:        newListWidgetsHandler(in.Dashboard),
		Kinds:       newListKindsHandler(in.Registry),
		Get:         newGetWidgetHandler(in.Dashboard),
		Delete:      newDeleteWidgetHandler(in.Dashboard),
		Settings:    newGetSettingsHandler(in.Dashboard),
		Reconfigure: newReconfigureHandler(in.Dashboard),
		Action:      newActionHandler(in.Dashboard),
		Refresh:     newRefreshHandler(in.Dashboard),
		Stream:      newStreamHandler(in.Dashboard, in.Logger),
	}
}
