// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mohammadbaghban/openremote/binding"
	"github.com/mohammadbaghban/openremote/eventhub"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/mohammadbaghban/openremote/store/db"
	"github.com/mohammadbaghban/openremote/store/watch"
	"github.com/mohammadbaghban/openremote/widget"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	applicationName = "widgetd"
	apiBase         = "api/v1"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
		fx.Supply(logger, v),
		touchstone.Provide(),
		provideMetrics(),
		eventhub.ProvideMetrics(),
		db.Provide(),
		store.ProvideHandlers(),
		watch.Provide(),
		widget.Provide(),
		fx.Provide(
			unmarshal[touchstone.Config]("prometheus"),
			unmarshal[eventhub.Config]("eventhub"),
			unmarshal[store.UserInputValidationConfig]("userInputValidation"),
			unmarshal[watch.Options]("store.watch"),
			unmarshal[widget.Options]("widgets"),
			unmarshal[Servers]("servers"),
			provideStoreConfigs,
			provideTracingConfig,
			candlelight.New,
			provideHub,
		),
		fx.Invoke(
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
			BuildHealthRoutes,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// unmarshal returns an fx constructor reading key into a T. A missing key
// yields the zero value.
func unmarshal[T any](key string) func(*viper.Viper) (T, error) {
	return func(v *viper.Viper) (T, error) {
		var t T
		if err := v.UnmarshalKey(key, &t); err != nil {
			return t, fmt.Errorf("failed to unmarshal %s: %w", key, err)
		}
		return t, nil
	}
}

func provideStoreConfigs(v *viper.Viper) (db.Configs, error) {
	var c db.Configs
	if v.IsSet("store.dynamo") {
		if err := v.UnmarshalKey("store.dynamo", &c.Dynamo); err != nil {
			return c, fmt.Errorf("failed to unmarshal store.dynamo: %w", err)
		}
	}
	if v.IsSet("store.yugabyte") {
		if err := v.UnmarshalKey("store.yugabyte", &c.Yugabyte); err != nil {
			return c, fmt.Errorf("failed to unmarshal store.yugabyte: %w", err)
		}
	}
	return c, nil
}

func provideTracingConfig(v *viper.Viper) (candlelight.Config, error) {
	var config candlelight.Config
	if err := v.UnmarshalKey("tracing", &config); err != nil {
		return candlelight.Config{}, err
	}
	config.ApplicationName = applicationName
	return config, nil
}

type hubOut struct {
	fx.Out
	Hub       *eventhub.Hub
	Channel   binding.EventChannel
	Publisher store.Publisher
	Provider  binding.AssetDataProvider
}

// provideHub builds the event hub that pushes stored attribute updates to
// widgets, with the asset provider answering for values the hub has not seen.
func provideHub(config eventhub.Config, provider *store.Provider, measures eventhub.Measures, lc fx.Lifecycle, logger *zap.Logger) (hubOut, error) {
	hub, err := eventhub.New(config, provider, logger, &measures)
	if err != nil {
		return hubOut{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hubOut{
		Hub:       hub,
		Channel:   hub,
		Publisher: hub,
		Provider:  provider,
	}, nil
}
