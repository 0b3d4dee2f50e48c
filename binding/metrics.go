// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package binding

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	SubscriptionCounter = "binding_subscriptions_total"
	EventCounter        = "binding_events_total"
	FetchCounter        = "binding_fetches_total"
	VersionBumpCounter  = "resource_version_bumps_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
	SourceLabel  = "source"
)

// Label Values
const (
	SuccessOutcome      = "success"
	FailureOutcome      = "failure"
	UnavailableOutcome  = "unavailable"
	SkippedOutcome      = "skipped"
	AppliedOutcome      = "applied"
	UnknownAssetOutcome = "unknown_asset"
	StaleOutcome        = "stale"

	EventSource = "event"
	PathSource  = "path"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: SubscriptionCounter,
				Help: "Counter for widget subscription attempts by outcome.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: EventCounter,
				Help: "Counter for inbound attribute events by outcome. Stale events arrived after teardown or resubscription.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: FetchCounter,
				Help: "Counter for asset fetches by outcome.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: VersionBumpCounter,
				Help: "Counter for resource cache-busting version increments by source.",
			},
			SourceLabel,
		),
	)
}

type Measures struct {
	fx.In
	Subscriptions *prometheus.CounterVec `name:"binding_subscriptions_total"`
	Events        *prometheus.CounterVec `name:"binding_events_total"`
	Fetches       *prometheus.CounterVec `name:"binding_fetches_total"`
	VersionBumps  *prometheus.CounterVec `name:"resource_version_bumps_total"`
}
