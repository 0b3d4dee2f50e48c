// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutator

import (
	"errors"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"
	"github.com/xmidt-org/sallust"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	// ErrInvalidNumericInput marks input that was replaced by a default. The
	// edit still applies.
	ErrInvalidNumericInput = errors.New("invalid numeric input")

	// ErrUnknownOption marks input outside the allowed options. The edit is dropped.
	ErrUnknownOption = errors.New("unknown option")

	ErrNilHost     = errors.New("host cannot be nil")
	ErrNilMeasures = errors.New("measures cannot be nil")
)

// Host owns a widget configuration and is told whenever it was mutated.
type Host interface {
	NotifyConfigChanged()
}

// HostFunc is a function type that implements the Host interface.
type HostFunc func()

func (f HostFunc) NotifyConfigChanged() {
	f()
}

// Edit is a pure transform of a configuration. It returns a new value and
// never modifies its argument.
type Edit[C any] func(C) (C, error)

// Names
const (
	MutationCounter = "config_mutations_total"
)

// Labels
const (
	KindLabel    = "kind"
	OutcomeLabel = "outcome"
)

// Label Values
const (
	AppliedOutcome   = "applied"
	RecoveredOutcome = "recovered"
	RejectedOutcome  = "rejected"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: MutationCounter,
				Help: "Counter for widget configuration edits by widget kind and outcome.",
			},
			KindLabel, OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Mutations *prometheus.CounterVec `name:"config_mutations_total"`
}

// Mutator applies edits to one widget's configuration and signals its host.
type Mutator struct {
	host     Host
	kind     string
	logger   *zap.Logger
	measures *Measures
}

func New(host Host, kind string, logger *zap.Logger, measures *Measures) (*Mutator, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if logger == nil {
		logger = sallust.Default()
	}
	return &Mutator{
		host:     host,
		kind:     kind,
		logger:   logger.With(zap.String("kind", kind)),
		measures: measures,
	}, nil
}

// Commit applies the edits in order and notifies the host once if any of
// them applied. Rejected edits are logged and skipped, recovered ones apply
// with their substituted default.
func Commit[C any](m *Mutator, config C, edits ...Edit[C]) (C, bool) {
	applied := false
	for _, edit := range edits {
		next, err := edit(config)
		switch {
		case err == nil:
			m.count(AppliedOutcome)
		case Recovered(err):
			m.count(RecoveredOutcome)
			m.logger.Warn("substituted default for invalid input", zap.Error(err))
		default:
			m.count(RejectedOutcome)
			m.logger.Debug("configuration edit dropped", zap.Error(err))
			continue
		}
		config = next
		applied = true
	}
	if applied {
		m.host.NotifyConfigChanged()
	}
	return config, applied
}

func (m *Mutator) count(outcome string) {
	m.measures.Mutations.With(prometheus.Labels{KindLabel: m.kind, OutcomeLabel: outcome}).Inc()
}

// Recovered reports whether err only marks input that was replaced by a
// default, leaving the edit applicable.
func Recovered(err error) bool {
	return errors.Is(err, ErrInvalidNumericInput)
}

// ParseNumber converts UI input to a finite number.
func ParseNumber(v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errors.Join(ErrInvalidNumericInput, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidNumericInput
	}
	return f, nil
}

// round rounds half up like the rendering layer does.
func round(f float64) float64 {
	return math.Floor(f + 0.5)
}
