// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package marker

import (
	"errors"
	"testing"

	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	temp   = model.AttributeRef{ID: "a1", Name: "temp"}
	colour = model.AttributeRef{ID: "a1", Name: "colour"}
	power  = model.AttributeRef{ID: "a2", Name: "power"}
)

func newMeasures() *Measures {
	return &Measures{
		ConsistencyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "testConsistencyErrors"}, []string{KindLabel}),
	}
}

func assets() []model.Asset {
	return []model.Asset{
		{ID: "a1", Type: "ThingAsset", Attributes: map[string]model.Attribute{
			"temp": {Name: "temp", Type: "number", Value: 21.5, Meta: map[string]any{
				"label": "Temperature",
				"units": "°C",
			}},
			"colour": {Name: "colour", Type: format.ValueTypeColourRGB, Value: "#ff0000"},
		}},
	}
}

func TestSyncAddsCentredMarkers(t *testing.T) {
	assert := assert.New(t)
	c := model.OverlayConfig{AttributeRefs: []model.AttributeRef{temp, power}}

	next := Sync(c)
	assert.Equal([]model.Marker{
		{AttributeRef: temp, Coordinates: model.Coordinates{50, 50}},
		{AttributeRef: power, Coordinates: model.Coordinates{50, 50}},
	}, next.Markers)
	assert.Empty(c.Markers)
	assert.Equal(next, Sync(next))
}

func TestSyncKeepsExistingAndStale(t *testing.T) {
	assert := assert.New(t)
	c := model.OverlayConfig{
		AttributeRefs: []model.AttributeRef{power, temp},
		Markers: []model.Marker{
			{AttributeRef: colour, Coordinates: model.Coordinates{1, 2}},
			{AttributeRef: temp, Coordinates: model.Coordinates{10, 90}},
		},
	}

	next := Sync(c)
	require.Len(t, next.Markers, 3)
	assert.Equal(c.Markers, next.Markers[:2])
	assert.Equal(model.Marker{AttributeRef: power, Coordinates: model.Coordinates{50, 50}}, next.Markers[2])

	for _, ref := range next.AttributeRefs {
		_, ok := Lookup(next.Markers, ref)
		assert.True(ok)
	}
}

func TestSetCoordinate(t *testing.T) {
	tcs := []struct {
		desc        string
		ref         model.AttributeRef
		axis        Axis
		value       any
		expected    model.Coordinates
		expectedErr error
	}{
		{desc: "X", ref: temp, axis: X, value: 12, expected: model.Coordinates{12, 50}},
		{desc: "Y string", ref: temp, axis: Y, value: "75.5", expected: model.Coordinates{50, 75.5}},
		{desc: "Clamped", ref: temp, axis: X, value: 140, expected: model.Coordinates{100, 50}},
		{desc: "Negative", ref: temp, axis: Y, value: -3, expected: model.Coordinates{50, 0}},
		{desc: "Invalid", ref: temp, axis: X, value: "left", expected: model.Coordinates{50, 50}, expectedErr: mutator.ErrInvalidNumericInput},
		{desc: "No marker", ref: power, axis: X, value: 1, expectedErr: ErrConsistency},
		{desc: "Bad axis", ref: temp, axis: "z", value: 1, expectedErr: ErrUnknownAxis},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)
			c := Sync(model.OverlayConfig{AttributeRefs: []model.AttributeRef{temp}})

			next, err := SetCoordinate(tc.ref, tc.axis, tc.value)(c)
			assert.True(errors.Is(err, tc.expectedErr))
			if tc.expected == (model.Coordinates{}) {
				assert.Equal(c, next)
				return
			}
			m, ok := Lookup(next.Markers, tc.ref)
			require.True(t, ok)
			assert.Equal(tc.expected, m.Coordinates)
			assert.Equal(model.Coordinates{50, 50}, c.Markers[0].Coordinates)
		})
	}
}

func TestResolve(t *testing.T) {
	assert := assert.New(t)
	measures := newMeasures()
	r, err := NewResolver("image", nil, zap.NewNop(), measures)
	require.NoError(t, err)

	c := model.OverlayConfig{
		AttributeRefs: []model.AttributeRef{temp, colour, power},
		Markers: []model.Marker{
			{AttributeRef: colour, Coordinates: model.Coordinates{5, 6}},
			{AttributeRef: temp, Coordinates: model.Coordinates{1, 2}},
		},
	}

	placements := r.Resolve(c, assets())
	assert.Equal([]Placement{
		{AttributeRef: temp, X: 1, Y: 2, Label: "Temperature", Value: "21.5 °C"},
		{AttributeRef: colour, X: 5, Y: 6, Label: "colour", Value: "#ff0000", Swatch: true},
	}, placements)
	assert.Equal(1.0, testutil.ToFloat64(measures.ConsistencyErrors.With(prometheus.Labels{KindLabel: "image"})))
}

func TestResolveWithoutMarkers(t *testing.T) {
	measures := newMeasures()
	r, err := NewResolver("web", format.Default{}, nil, measures)
	require.NoError(t, err)

	c := model.OverlayConfig{AttributeRefs: []model.AttributeRef{temp}}
	assert.Empty(t, r.Resolve(c, assets()))
	assert.Zero(t, testutil.ToFloat64(measures.ConsistencyErrors.With(prometheus.Labels{KindLabel: "web"})))
}

func TestResolveMissingAsset(t *testing.T) {
	r, err := NewResolver("image", nil, nil, newMeasures())
	require.NoError(t, err)

	c := Sync(model.OverlayConfig{AttributeRefs: []model.AttributeRef{power}})
	placements := r.Resolve(c, assets())
	require.Len(t, placements, 1)
	assert.Equal(t, format.Placeholder, placements[0].Value)
	assert.Equal(t, 50.0, placements[0].X)
}

func TestNewResolver(t *testing.T) {
	_, err := NewResolver("image", nil, nil, nil)
	assert.True(t, errors.Is(err, ErrNilMeasures))
}
