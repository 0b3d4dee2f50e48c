// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package eventhub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	DeliveryCounter     = "eventhub_deliveries_total"
	SubscriptionCounter = "eventhub_subscriptions_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
)

// Label Values
const (
	DeliveredOutcome    = "delivered"
	DroppedOutcome      = "dropped"
	SubscribedOutcome   = "subscribed"
	UnsubscribedOutcome = "unsubscribed"
	RejectedOutcome     = "rejected"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: DeliveryCounter,
				Help: "Counter for attribute events queued to subscribers, by outcome. Events are dropped when a subscriber queue is full.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: SubscriptionCounter,
				Help: "Counter for subscribe and unsubscribe requests against the event hub.",
			},
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Deliveries    *prometheus.CounterVec `name:"eventhub_deliveries_total"`
	Subscriptions *prometheus.CounterVec `name:"eventhub_subscriptions_total"`
}
