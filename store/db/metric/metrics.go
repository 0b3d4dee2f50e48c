// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"errors"

	"github.com/mohammadbaghban/openremote/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Generic Metrics
const (
	QueryCounter = "store_queries_total"
)

// DynamoDB metrics
const (
	CapacityUnitConsumedCounter = "dynamodb_consumed_capacity_total"
)

// Labels
const (
	OutcomeLabel  = "outcome"
	CapacityLabel = "capacity"
)

// Label Values
const (
	SuccessOutcome  = "success"
	FailureOutcome  = "failure"
	NotFoundOutcome = "not_found"

	TotalCapacity = "total"
	ReadCapacity  = "read"
	WriteCapacity = "write"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QueryCounter,
				Help: "The total number of asset store queries by type and outcome.",
			},
			store.TypeLabel, OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: CapacityUnitConsumedCounter,
				Help: "The number of capacity units consumed by dynamodb operations.",
			},
			store.TypeLabel, CapacityLabel,
		),
	)
}

type Measures struct {
	fx.In
	Queries *prometheus.CounterVec `name:"store_queries_total"`

	// DynamoDB Metrics
	CapacityUnitConsumed *prometheus.CounterVec `name:"dynamodb_consumed_capacity_total"`
}

// Query counts a finished query of the given type.
func (m Measures) Query(queryType string, err error) {
	outcome := SuccessOutcome
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAssetNotFound):
		outcome = NotFoundOutcome
	default:
		outcome = FailureOutcome
	}
	m.Queries.With(prometheus.Labels{store.TypeLabel: queryType, OutcomeLabel: outcome}).Inc()
}
