// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"github.com/mohammadbaghban/openremote/binding"
	"github.com/mohammadbaghban/openremote/marker"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	LifecycleCounter = "widget_lifecycle_total"
)

// Labels
const (
	KindLabel  = "kind"
	EventLabel = "event"
)

// Label Values
const (
	CreatedEvent       = "created"
	DeletedEvent       = "deleted"
	ConfigChangedEvent = "config_changed"
)

// ProvideMetrics returns the Metrics relevant to this package and the
// packages every widget instance is built from.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: LifecycleCounter,
				Help: "Counter for widget instance lifecycle events by widget kind.",
			},
			KindLabel, EventLabel,
		),
		binding.ProvideMetrics(),
		mutator.ProvideMetrics(),
		marker.ProvideMetrics(),
	)
}

type Measures struct {
	fx.In
	Lifecycle *prometheus.CounterVec `name:"widget_lifecycle_total"`

	Binding binding.Measures
	Mutator mutator.Measures
	Marker  marker.Measures
}
