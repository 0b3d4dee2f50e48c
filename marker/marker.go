// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package marker

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	// ErrConsistency is reported when an attribute ref has no marker to render.
	ErrConsistency = errors.New("no marker for attribute reference")

	ErrUnknownAxis = errors.New("unknown coordinate axis")
	ErrNilMeasures = errors.New("measures cannot be nil")
)

// DefaultCoordinate places new markers in the centre of the container.
const DefaultCoordinate = 50.0

// Axis selects a marker coordinate.
type Axis string

const (
	X Axis = "x"
	Y Axis = "y"
)

// Sync returns a copy of the configuration holding a marker for every
// attribute ref. Missing markers are appended at the centre; markers of refs
// that are no longer selected are kept.
func Sync(c model.OverlayConfig) model.OverlayConfig {
	next := c.Clone()
	for _, ref := range c.AttributeRefs {
		if _, ok := Lookup(next.Markers, ref); !ok {
			next.Markers = append(next.Markers, model.Marker{
				AttributeRef: ref,
				Coordinates:  model.Coordinates{DefaultCoordinate, DefaultCoordinate},
			})
		}
	}
	return next
}

// Lookup finds the marker of ref by structural equality, not by position.
func Lookup(markers []model.Marker, ref model.AttributeRef) (model.Marker, bool) {
	i := slices.IndexFunc(markers, func(m model.Marker) bool { return m.AttributeRef.Equal(ref) })
	if i < 0 {
		return model.Marker{}, false
	}
	return markers[i], true
}

// SetCoordinate moves the marker of ref along one axis. Values are clamped to
// [0, 100]; invalid input centres the marker on that axis.
func SetCoordinate(ref model.AttributeRef, axis Axis, value any) mutator.Edit[model.OverlayConfig] {
	return func(c model.OverlayConfig) (model.OverlayConfig, error) {
		if axis != X && axis != Y {
			return c, fmt.Errorf("%q: %w", axis, ErrUnknownAxis)
		}
		i := slices.IndexFunc(c.Markers, func(m model.Marker) bool { return m.AttributeRef.Equal(ref) })
		if i < 0 {
			return c, fmt.Errorf("%s: %w", ref, ErrConsistency)
		}

		v, err := mutator.ParseNumber(value)
		if err != nil {
			v = DefaultCoordinate
			err = fmt.Errorf("marker %s %s %v: %w", ref, axis, value, err)
		}
		v = math.Max(0, math.Min(100, v))

		next := c.Clone()
		if axis == X {
			next.Markers[i].Coordinates[0] = v
		} else {
			next.Markers[i].Coordinates[1] = v
		}
		return next, err
	}
}

// Placement is a marker ready to draw: where it goes and what it shows.
type Placement struct {
	AttributeRef model.AttributeRef `json:"attributeRef"`
	X            float64            `json:"x"`
	Y            float64            `json:"y"`
	Label        string             `json:"label"`
	Value        string             `json:"value"`

	// Swatch is set for colour values; Value then holds the colour.
	Swatch bool `json:"swatch,omitempty"`
}

// Resolver computes placements for overlay widgets of one kind.
type Resolver struct {
	kind      string
	formatter format.Formatter
	logger    *zap.Logger
	measures  *Measures
}

func NewResolver(kind string, f format.Formatter, logger *zap.Logger, measures *Measures) (*Resolver, error) {
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if f == nil {
		f = format.Default{}
	}
	if logger == nil {
		logger = sallust.Default()
	}
	return &Resolver{
		kind:      kind,
		formatter: f,
		logger:    logger.With(zap.String("kind", kind)),
		measures:  measures,
	}, nil
}

// Resolve places a marker for every attribute ref in order. A configuration
// without markers renders none. Refs without a marker are logged and
// skipped.
func (r *Resolver) Resolve(c model.OverlayConfig, assets []model.Asset) []Placement {
	if len(c.Markers) == 0 {
		return nil
	}

	placements := make([]Placement, 0, len(c.AttributeRefs))
	for _, ref := range c.AttributeRefs {
		m, ok := Lookup(c.Markers, ref)
		if !ok {
			r.measures.ConsistencyErrors.With(prometheus.Labels{KindLabel: r.kind}).Inc()
			r.logger.Error("omitting marker", zap.Stringer("ref", ref), zap.Error(ErrConsistency))
			continue
		}
		placements = append(placements, r.place(m, assets))
	}
	return placements
}

func (r *Resolver) place(m model.Marker, assets []model.Asset) Placement {
	p := Placement{
		AttributeRef: m.AttributeRef,
		X:            m.Coordinates.X(),
		Y:            m.Coordinates.Y(),
		Label:        m.AttributeRef.Name,
		Value:        format.Placeholder,
	}

	i := model.IndexOfAsset(assets, m.AttributeRef.ID)
	if i < 0 {
		return p
	}
	asset := assets[i]
	attr, ok := asset.Attribute(m.AttributeRef.Name)
	if !ok {
		return p
	}
	d := r.formatter.Describe(asset, m.AttributeRef.Name, attr)
	p.Label = d.Label
	p.Swatch = d.Swatch()
	p.Value = r.formatter.Format(attr, d, asset.Type, true, format.Placeholder)
	return p
}
