// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAttributeValue(t *testing.T) {
	assert := assert.New(t)
	original := Asset{
		ID:   "a1",
		Type: "ThingAsset",
		Attributes: map[string]Attribute{
			"temp": {Name: "temp", Type: "number", Value: 20.0, Timestamp: 1},
		},
	}

	updated := original.WithAttributeValue(AttributeEvent{
		Ref:       AttributeRef{ID: "a1", Name: "temp"},
		Value:     21.5,
		Timestamp: 2,
	})

	assert.Equal(20.0, original.Attributes["temp"].Value)
	assert.Equal(int64(1), original.Attributes["temp"].Timestamp)
	assert.Equal(21.5, updated.Attributes["temp"].Value)
	assert.Equal(int64(2), updated.Attributes["temp"].Timestamp)
	assert.Equal("number", updated.Attributes["temp"].Type)

	added := updated.WithAttributeValue(AttributeEvent{Ref: AttributeRef{ID: "a1", Name: "humidity"}, Value: 40})
	assert.Len(updated.Attributes, 1)
	assert.Len(added.Attributes, 2)
	assert.Equal("humidity", added.Attributes["humidity"].Name)
}

func TestAllAttributeRefs(t *testing.T) {
	a := AttributeRef{ID: "a1", Name: "x"}
	b := AttributeRef{ID: "a2", Name: "url"}
	tcs := []struct {
		desc     string
		config   WidgetConfig
		expected []AttributeRef
	}{
		{
			desc:     "Chart",
			config:   ChartWidgetConfig{AttributeRefs: []AttributeRef{a}},
			expected: []AttributeRef{a},
		},
		{
			desc:     "Image without override",
			config:   ImageWidgetConfig{OverlayConfig: OverlayConfig{AttributeRefs: []AttributeRef{a}}},
			expected: []AttributeRef{a},
		},
		{
			desc: "Image with override",
			config: ImageWidgetConfig{
				OverlayConfig:        OverlayConfig{AttributeRefs: []AttributeRef{a}},
				ImageURLAttributeRef: &b,
			},
			expected: []AttributeRef{a, b},
		},
		{
			desc: "Web with override already referenced",
			config: WebWidgetConfig{
				OverlayConfig:       OverlayConfig{AttributeRefs: []AttributeRef{a, b}},
				PageURLAttributeRef: &AttributeRef{ID: "a2", Name: "url"},
			},
			expected: []AttributeRef{a, b},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, AllAttributeRefs(tc.config))
		})
	}
}

func TestChartOptionsDefaulted(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var empty ChartOptions
	d := empty.Defaulted()
	require.NotNil(d.Scales)
	require.NotNil(d.Scales.X)
	assert.NotNil(d.Scales.X.Grid)
	assert.NotNil(d.Scales.X.Ticks)
	assert.NotNil(d.Scales.X.Time)
	require.NotNil(d.Scales.Y)
	assert.Nil(d.Scales.Y.Min)
	assert.Nil(d.Scales.Y.Max)
	require.NotNil(d.Scales.Y1)
	assert.Nil(empty.Scales)

	withMin := ChartOptions{Scales: &Scales{Y: &ValueScale{Min: Ptr(0.0)}}}
	d = withMin.Defaulted()
	require.NotNil(d.Scales.Y.Min)
	assert.Equal(0.0, *d.Scales.Y.Min)
	*d.Scales.Y.Min = 5
	assert.Equal(0.0, *withMin.Scales.Y.Min)
}

func TestChartConfigClone(t *testing.T) {
	assert := assert.New(t)
	c := ChartWidgetConfig{
		AttributeRefs:       []AttributeRef{{ID: "a", Name: "b"}},
		RightAxisAttributes: []AttributeRef{{ID: "a", Name: "b"}},
		GridXDensity:        Ptr(3.0),
	}
	n := c.Clone()
	n.AttributeRefs[0].Name = "changed"
	n.RightAxisAttributes = append(n.RightAxisAttributes, AttributeRef{ID: "c", Name: "d"})
	*n.GridXDensity = 7

	assert.Equal("b", c.AttributeRefs[0].Name)
	assert.Len(c.RightAxisAttributes, 1)
	assert.Equal(3.0, *c.GridXDensity)
}
