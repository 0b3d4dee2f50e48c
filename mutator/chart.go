// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutator

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/spf13/cast"
)

// GridAxis selects the x (time) or y (value) grid.
type GridAxis string

const (
	GridX GridAxis = "x"
	GridY GridAxis = "y"
)

const (
	DefaultGridIntensity = 0.2
	DefaultGridDensity   = 10.0
	DefaultTimeUnit      = "second"
	DefaultStepSize      = 1

	minTicks              = 2
	maxTicks              = 100
	densityBase           = 10
	defaultDensityOnError = 1.0
)

// TimeUnits are the x axis tick units.
var TimeUnits = []string{"millisecond", "second", "minute", "hour"}

// SamplingOption maps a display label to a datapoint query type.
type SamplingOption struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// DefaultSamplingOptions are offered when none are configured.
var DefaultSamplingOptions = []SamplingOption{
	{Label: "algorithmAll", Type: model.QueryTypeAll},
	{Label: "algorithmInterval", Type: model.QueryTypeInterval},
	{Label: "algorithmLttb", Type: model.QueryTypeLTTB},
}

// IntervalFormulas are the aggregations of an interval query.
var IntervalFormulas = []string{model.FormulaAvg, model.FormulaMin, model.FormulaMax}

const defaultLTTBPoints = 100

// EffectiveDensity maps a raw grid density to a tick limit in [2, 100]. Raw
// values below one scale a baseline of ten ticks.
func EffectiveDensity(raw float64) int {
	var effective float64
	switch {
	case math.IsNaN(raw) || raw <= 0:
		effective = minTicks
	case raw < 1:
		effective = math.Max(minTicks, round(densityBase*raw))
	default:
		effective = math.Max(minTicks, round(raw))
	}
	return int(math.Min(maxTicks, effective))
}

// GridColor is the grid line colour for an intensity.
func GridColor(alpha float64) string {
	return "rgba(0,0,0," + strconv.FormatFloat(alpha, 'f', -1, 64) + ")"
}

// GridIntensity returns the stored intensity of an axis or the default.
func GridIntensity(c model.ChartWidgetConfig, axis GridAxis) float64 {
	p := c.GridYIntensity
	if axis == GridX {
		p = c.GridXIntensity
	}
	if p == nil {
		return DefaultGridIntensity
	}
	return *p
}

// GridDensity returns the stored raw density of an axis or the default.
func GridDensity(c model.ChartWidgetConfig, axis GridAxis) float64 {
	p := c.GridYDensity
	if axis == GridX {
		p = c.GridXDensity
	}
	if p == nil {
		return DefaultGridDensity
	}
	return *p
}

// SetShowGrid toggles both grids and writes their colours from the stored
// intensities in one step.
func SetShowGrid(show bool) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		next := c.Clone()
		next.ShowGrid = model.Ptr(show)
		next.ChartOptions = next.ChartOptions.Defaulted()
		s := next.ChartOptions.Scales
		s.X.Grid.Display = model.Ptr(show)
		s.Y.Grid.Display = model.Ptr(show)
		s.X.Grid.Color = GridColor(GridIntensity(next, GridX))
		s.Y.Grid.Color = GridColor(GridIntensity(next, GridY))
		return next, nil
	}
}

// SetGridIntensity stores an intensity clamped to [0, 1] and recolours the
// axis grid. Invalid input becomes the default intensity.
func SetGridIntensity(axis GridAxis, value any) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		v, err := ParseNumber(value)
		if err != nil {
			v = DefaultGridIntensity
			err = fmt.Errorf("grid %s intensity %v: %w", axis, value, err)
		}
		v = math.Max(0, math.Min(1, v))

		next := c.Clone()
		next.ChartOptions = next.ChartOptions.Defaulted()
		grid := next.ChartOptions.Scales.Y.Grid
		if axis == GridX {
			next.GridXIntensity = model.Ptr(v)
			grid = next.ChartOptions.Scales.X.Grid
		} else {
			next.GridYIntensity = model.Ptr(v)
		}
		grid.Color = GridColor(v)
		if next.ShowGrid == nil || *next.ShowGrid {
			grid.Display = model.Ptr(true)
		}
		return next, err
	}
}

// SetGridDensity stores the raw density and writes its effective tick limit.
// Invalid input is treated as a raw density of one.
func SetGridDensity(axis GridAxis, value any) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		raw, err := ParseNumber(value)
		if err != nil {
			raw = defaultDensityOnError
			err = fmt.Errorf("grid %s density %v: %w", axis, value, err)
		}

		next := c.Clone()
		next.ChartOptions = next.ChartOptions.Defaulted()
		ticks := next.ChartOptions.Scales.Y.Ticks
		if axis == GridX {
			next.GridXDensity = model.Ptr(raw)
			ticks = next.ChartOptions.Scales.X.Ticks
		} else {
			next.GridYDensity = model.Ptr(raw)
		}
		ticks.MaxTicksLimit = model.Ptr(EffectiveDensity(raw))
		return next, err
	}
}

// SetXAxisUnit sets the x axis tick unit. Empty input selects the default unit.
func SetXAxisUnit(value any) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		unit := cast.ToString(value)
		if unit == "" {
			unit = DefaultTimeUnit
		}
		if !slices.Contains(TimeUnits, unit) {
			return c, fmt.Errorf("time unit %q: %w", unit, ErrUnknownOption)
		}
		next := c.Clone()
		next.ChartOptions = next.ChartOptions.Defaulted()
		next.ChartOptions.Scales.X.Time.Unit = unit
		return next, nil
	}
}

// SetXAxisStepSize sets a whole, positive tick step. Invalid or non-positive
// input becomes one.
func SetXAxisStepSize(value any) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		step, err := ParseNumber(value)
		if err == nil && step <= 0 {
			err = ErrInvalidNumericInput
		}
		if err != nil {
			step = DefaultStepSize
			err = fmt.Errorf("step size %v: %w", value, err)
		}

		next := c.Clone()
		next.ChartOptions = next.ChartOptions.Defaulted()
		next.ChartOptions.Scales.X.Time.StepSize = model.Ptr(int(math.Max(DefaultStepSize, round(step))))
		return next, err
	}
}

func SetShowLegend(show bool) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		next := c.Clone()
		next.ShowLegend = show
		return next, nil
	}
}

// SetAllowTimerangeSelect is the inverse of showing the timestamp controls.
func SetAllowTimerangeSelect(allow bool) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		next := c.Clone()
		next.ShowTimestampControls = !allow
		return next, nil
	}
}

// SetTimePreset selects the default time preset. With no presets given any
// non-empty key is accepted.
func SetTimePreset(key string, presets []string) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		if key == "" || (len(presets) > 0 && !slices.Contains(presets, key)) {
			return c, fmt.Errorf("time preset %q: %w", key, ErrUnknownOption)
		}
		next := c.Clone()
		next.DefaultTimePresetKey = key
		return next, nil
	}
}

// SetSamplingType switches the datapoint query to the type of the labelled
// option, resetting fields that belong to other query types.
func SetSamplingType(label string, options []SamplingOption) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		i := slices.IndexFunc(options, func(o SamplingOption) bool { return o.Label == label })
		if i < 0 {
			return c, fmt.Errorf("sampling option %q: %w", label, ErrUnknownOption)
		}

		next := c.Clone()
		q := model.DatapointQuery{Type: options[i].Type}
		switch q.Type {
		case model.QueryTypeInterval:
			q.Formula = model.FormulaAvg
			q.Interval = c.DatapointQuery.Interval
			if c.DatapointQuery.Type == model.QueryTypeInterval && c.DatapointQuery.Formula != "" {
				q.Formula = c.DatapointQuery.Formula
			}
		case model.QueryTypeLTTB:
			q.AmountOfPoints = c.DatapointQuery.AmountOfPoints
			if q.AmountOfPoints <= 0 {
				q.AmountOfPoints = defaultLTTBPoints
			}
		}
		next.DatapointQuery = q
		return next, nil
	}
}

// SamplingLabel returns the label of the option matching the query type.
func SamplingLabel(c model.ChartWidgetConfig, options []SamplingOption) (string, bool) {
	i := slices.IndexFunc(options, func(o SamplingOption) bool { return o.Type == c.DatapointQuery.Type })
	if i < 0 {
		return "", false
	}
	return options[i].Label, true
}

// SetIntervalFormula sets the aggregation of an interval query.
func SetIntervalFormula(formula string) Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		if c.DatapointQuery.Type != model.QueryTypeInterval {
			return c, fmt.Errorf("formula on %q query: %w", c.DatapointQuery.Type, ErrUnknownOption)
		}
		if !slices.Contains(IntervalFormulas, formula) {
			return c, fmt.Errorf("formula %q: %w", formula, ErrUnknownOption)
		}
		next := c.Clone()
		next.DatapointQuery.Formula = formula
		return next, nil
	}
}
