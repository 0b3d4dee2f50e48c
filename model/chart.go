// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "slices"

// Datapoint query types.
const (
	QueryTypeAll      = "all"
	QueryTypeInterval = "interval"
	QueryTypeLTTB     = "lttb"
)

// Aggregation formulas of an interval query.
const (
	FormulaAvg = "AVG"
	FormulaMin = "MIN"
	FormulaMax = "MAX"
)

// DatapointQuery is tagged by Type. Formula and Interval only apply to
// interval queries, AmountOfPoints only to lttb.
type DatapointQuery struct {
	Type           string `json:"type" validate:"required,oneof=all interval lttb"`
	Formula        string `json:"formula,omitempty" validate:"omitempty,oneof=AVG MIN MAX"`
	Interval       string `json:"interval,omitempty"`
	AmountOfPoints int    `json:"amountOfPoints,omitempty" validate:"gte=0"`
}

// ChartWidgetConfig configures a line chart.
type ChartWidgetConfig struct {
	AttributeRefs []AttributeRef `json:"attributeRefs" validate:"dive"`

	// RightAxisAttributes is the set of refs drawn against the secondary axis.
	// Membership carries meaning, order is insertion order.
	RightAxisAttributes []AttributeRef `json:"rightAxisAttributes" validate:"dive"`

	DatapointQuery        DatapointQuery `json:"datapointQuery"`
	ChartOptions          ChartOptions   `json:"chartOptions"`
	ShowTimestampControls bool           `json:"showTimestampControls"`
	DefaultTimePresetKey  string         `json:"defaultTimePresetKey,omitempty"`
	ShowLegend            bool           `json:"showLegend"`

	// ShowGrid is tri-state: unset behaves like true.
	ShowGrid       *bool    `json:"showGrid,omitempty"`
	GridXIntensity *float64 `json:"gridXIntensity,omitempty"`
	GridYIntensity *float64 `json:"gridYIntensity,omitempty"`
	GridXDensity   *float64 `json:"gridXDensity,omitempty"`
	GridYDensity   *float64 `json:"gridYDensity,omitempty"`
}

// Refs returns the attribute refs of the chart.
func (c ChartWidgetConfig) Refs() []AttributeRef {
	return c.AttributeRefs
}

// Clone returns a deep copy of the config.
func (c ChartWidgetConfig) Clone() ChartWidgetConfig {
	next := c
	next.AttributeRefs = slices.Clone(c.AttributeRefs)
	next.RightAxisAttributes = slices.Clone(c.RightAxisAttributes)
	next.ChartOptions = c.ChartOptions.Clone()
	next.ShowGrid = clonePtr(c.ShowGrid)
	next.GridXIntensity = clonePtr(c.GridXIntensity)
	next.GridYIntensity = clonePtr(c.GridYIntensity)
	next.GridXDensity = clonePtr(c.GridXDensity)
	next.GridYDensity = clonePtr(c.GridYDensity)
	return next
}

// ChartOptions mirrors the rendering options tree. Every node is optional;
// Defaulted fills the tree in so readers never branch on partial presence.
type ChartOptions struct {
	Scales *Scales `json:"scales,omitempty"`
}

type Scales struct {
	X  *TimeScale  `json:"x,omitempty"`
	Y  *ValueScale `json:"y,omitempty"`
	Y1 *ValueScale `json:"y1,omitempty"`
}

type TimeScale struct {
	Grid  *Grid        `json:"grid,omitempty"`
	Ticks *Ticks       `json:"ticks,omitempty"`
	Time  *TimeOptions `json:"time,omitempty"`
}

// ValueScale is a numeric axis. A nil Min or Max means automatic scaling.
type ValueScale struct {
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Grid  *Grid    `json:"grid,omitempty"`
	Ticks *Ticks   `json:"ticks,omitempty"`
}

type Grid struct {
	Display *bool  `json:"display,omitempty"`
	Color   string `json:"color,omitempty"`
}

type Ticks struct {
	MaxTicksLimit *int `json:"maxTicksLimit,omitempty"`
}

type TimeOptions struct {
	Unit     string `json:"unit,omitempty"`
	StepSize *int   `json:"stepSize,omitempty"`
}

// Clone returns a deep copy, preserving absent nodes.
func (o ChartOptions) Clone() ChartOptions {
	if o.Scales == nil {
		return ChartOptions{}
	}
	s := &Scales{}
	if o.Scales.X != nil {
		s.X = &TimeScale{
			Grid:  o.Scales.X.Grid.clone(),
			Ticks: o.Scales.X.Ticks.clone(),
		}
		if o.Scales.X.Time != nil {
			t := *o.Scales.X.Time
			t.StepSize = clonePtr(t.StepSize)
			s.X.Time = &t
		}
	}
	s.Y = o.Scales.Y.clone()
	s.Y1 = o.Scales.Y1.clone()
	return ChartOptions{Scales: s}
}

// Defaulted returns a deep copy with every intermediate node present. Leaf
// values are left as they are.
func (o ChartOptions) Defaulted() ChartOptions {
	next := o.Clone()
	if next.Scales == nil {
		next.Scales = &Scales{}
	}
	s := next.Scales
	if s.X == nil {
		s.X = &TimeScale{}
	}
	if s.X.Grid == nil {
		s.X.Grid = &Grid{}
	}
	if s.X.Ticks == nil {
		s.X.Ticks = &Ticks{}
	}
	if s.X.Time == nil {
		s.X.Time = &TimeOptions{}
	}
	for _, v := range []**ValueScale{&s.Y, &s.Y1} {
		if *v == nil {
			*v = &ValueScale{}
		}
		if (*v).Grid == nil {
			(*v).Grid = &Grid{}
		}
		if (*v).Ticks == nil {
			(*v).Ticks = &Ticks{}
		}
	}
	return next
}

func (v *ValueScale) clone() *ValueScale {
	if v == nil {
		return nil
	}
	return &ValueScale{
		Min:   clonePtr(v.Min),
		Max:   clonePtr(v.Max),
		Grid:  v.Grid.clone(),
		Ticks: v.Ticks.clone(),
	}
}

func (g *Grid) clone() *Grid {
	if g == nil {
		return nil
	}
	return &Grid{Display: clonePtr(g.Display), Color: g.Color}
}

func (t *Ticks) clone() *Ticks {
	if t == nil {
		return nil
	}
	return &Ticks{MaxTicksLimit: clonePtr(t.MaxTicksLimit)}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
