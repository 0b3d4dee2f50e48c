// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package marker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	ConsistencyErrorCounter = "marker_consistency_errors_total"
)

// Labels
const (
	KindLabel = "kind"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return touchstone.CounterVec(
		prometheus.CounterOpts{
			Name: ConsistencyErrorCounter,
			Help: "Counter for attribute refs rendered without a matching marker.",
		},
		KindLabel,
	)
}

type Measures struct {
	fx.In
	ConsistencyErrors *prometheus.CounterVec `name:"marker_consistency_errors_total"`
}
