// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"time"

	"github.com/mohammadbaghban/openremote/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options enables polling the store. Polling is off unless Enabled is set.
type Options struct {
	Enabled      bool
	PullInterval time.Duration
	PollTimeout  time.Duration
}

type decorateIn struct {
	fx.In
	Publisher store.Publisher
	Options   Options
	Store     store.S
	Measures  Measures
	LC        fx.Lifecycle
	Logger    *zap.Logger
}

// Provide wraps the store.Publisher in a Differ fed by a Watcher when polling
// is enabled. The watcher runs with the application lifecycle.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Decorate(decoratePublisher),
	)
}

func decoratePublisher(in decorateIn) (store.Publisher, error) {
	if !in.Options.Enabled {
		return in.Publisher, nil
	}

	differ := NewDiffer(in.Publisher)
	w, err := New(Config{
		Listener:     differ,
		PullInterval: in.Options.PullInterval,
		PollTimeout:  in.Options.PollTimeout,
		Logger:       in.Logger.Named("watch"),
	}, in.Store, &in.Measures)
	if err != nil {
		return nil, err
	}
	in.LC.Append(fx.Hook{
		OnStart: w.Start,
		OnStop:  w.Stop,
	})
	return differ, nil
}
