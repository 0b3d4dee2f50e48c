// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"fmt"
	"slices"

	"github.com/mohammadbaghban/openremote/axis"
	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/spf13/cast"
)

// ChartableTypes are the attribute value types a chart can plot.
var ChartableTypes = []string{
	"boolean", "positiveInteger", "positiveNumber", "number", "long", "integer",
	"bigInteger", "negativeInteger", "negativeNumber", "bigNumber", "integerByte", "direction",
}

// Chart actions.
const (
	ActionShowGrid             = "showGrid"
	ActionGridIntensity        = "gridIntensity"
	ActionGridDensity          = "gridDensity"
	ActionXAxisUnit            = "xAxisUnit"
	ActionXAxisStepSize        = "xAxisStepSize"
	ActionShowLegend           = "showLegend"
	ActionAllowTimerangeSelect = "allowTimerangeSelect"
	ActionTimePreset           = "timePreset"
	ActionSamplingType         = "samplingType"
	ActionIntervalFormula      = "intervalFormula"
	ActionToggleRightAxis      = "toggleRightAxis"
	ActionToggleBound          = "toggleBound"
	ActionSetBound             = "setBound"
)

// ActionSelectAttributes replaces the attribute selection of any widget kind.
const ActionSelectAttributes = "selectAttributes"

const (
	defaultTimePreset = "last24Hours"
	boundPlaceholder  = "auto"
)

// Config holds the options offered to chart settings.
type Config struct {
	// SamplingOptions maps sampling labels to datapoint query types.
	// (Optional). Defaults to mutator.DefaultSamplingOptions.
	SamplingOptions []mutator.SamplingOption

	// TimePresets are the selectable default time ranges.
	// (Optional). Any preset key is accepted when empty.
	TimePresets []string

	// Formatter labels the attribute rows of the settings.
	// (Optional). Defaults to format.Default.
	Formatter format.Formatter
}

// Chart is the line chart manifest.
type Chart struct {
	samplingOptions []mutator.SamplingOption
	timePresets     []string
	formatter       format.Formatter
}

var _ Manifest = Chart{}

func NewChart(config Config) Chart {
	if len(config.SamplingOptions) == 0 {
		config.SamplingOptions = mutator.DefaultSamplingOptions
	}
	return Chart{
		samplingOptions: config.SamplingOptions,
		timePresets:     config.TimePresets,
		formatter:       orDefault(config.Formatter),
	}
}

func (Chart) Kind() Kind { return KindChart }
func (Chart) DisplayName() string { return "Line chart" }
func (Chart) DisplayIcon() string { return "chart-line" }
func (Chart) MinColumnWidth() int { return 2 }
func (Chart) MinColumnHeight() int { return 2 }

func (c Chart) DefaultConfig() model.WidgetConfig {
	preset := defaultTimePreset
	if len(c.timePresets) > 0 && !slices.Contains(c.timePresets, preset) {
		preset = c.timePresets[0]
	}
	return model.ChartWidgetConfig{
		AttributeRefs:        []model.AttributeRef{},
		RightAxisAttributes:  []model.AttributeRef{},
		DatapointQuery:       model.DatapointQuery{Type: model.QueryTypeLTTB, AmountOfPoints: 100},
		ChartOptions:         model.ChartOptions{}.Defaulted(),
		ShowLegend:           true,
		DefaultTimePresetKey: preset,
	}
}

func (Chart) DecodeConfig(data []byte) (model.WidgetConfig, error) {
	c, err := decode[model.ChartWidgetConfig](data)
	if err != nil {
		return nil, err
	}
	for _, ref := range c.RightAxisAttributes {
		if !model.ContainsRef(c.AttributeRefs, ref) {
			return nil, fmt.Errorf("%w: right axis attribute %s is not selected", ErrInvalidConfig, ref)
		}
	}
	return c, nil
}

func (c Chart) Apply(m *mutator.Mutator, wc model.WidgetConfig, a Action) (model.WidgetConfig, bool, error) {
	cfg, err := configAs[model.ChartWidgetConfig](KindChart, wc)
	if err != nil {
		return wc, false, err
	}
	edit, err := c.edit(a)
	if err != nil {
		return wc, false, err
	}
	next, ok := mutator.Commit(m, cfg, edit)
	return next, ok, nil
}

func (c Chart) edit(a Action) (mutator.Edit[model.ChartWidgetConfig], error) {
	switch a.Name {
	case ActionShowGrid:
		return mutator.SetShowGrid(a.On), nil
	case ActionGridIntensity:
		return mutator.SetGridIntensity(mutator.GridAxis(a.Axis), a.Value), gridAxis(a)
	case ActionGridDensity:
		return mutator.SetGridDensity(mutator.GridAxis(a.Axis), a.Value), gridAxis(a)
	case ActionXAxisUnit:
		return mutator.SetXAxisUnit(a.Value), nil
	case ActionXAxisStepSize:
		return mutator.SetXAxisStepSize(a.Value), nil
	case ActionShowLegend:
		return mutator.SetShowLegend(a.On), nil
	case ActionAllowTimerangeSelect:
		return mutator.SetAllowTimerangeSelect(a.On), nil
	case ActionTimePreset:
		return mutator.SetTimePreset(cast.ToString(a.Value), c.timePresets), nil
	case ActionSamplingType:
		return mutator.SetSamplingType(cast.ToString(a.Value), c.samplingOptions), nil
	case ActionIntervalFormula:
		return mutator.SetIntervalFormula(cast.ToString(a.Value)), nil
	case ActionToggleRightAxis:
		if a.Ref == nil {
			return nil, fmt.Errorf("%w: %s requires a ref", ErrInvalidAction, a.Name)
		}
		return axis.ToggleRightAxis(*a.Ref), nil
	case ActionSelectAttributes:
		return axis.SelectAttributes(a.Refs), nil
	case ActionToggleBound:
		return axis.ToggleBound(axis.Side(a.Axis), axis.Bound(a.Bound), a.On), nil
	case ActionSetBound:
		return axis.SetBound(axis.Side(a.Axis), axis.Bound(a.Bound), a.Value), nil
	}
	return nil, fmt.Errorf("%q: %w", a.Name, ErrUnknownAction)
}

func gridAxis(a Action) error {
	if a.Axis != string(mutator.GridX) && a.Axis != string(mutator.GridY) {
		return fmt.Errorf("%w: grid axis %q", ErrInvalidAction, a.Axis)
	}
	return nil
}

// Chartable reports whether an attribute's values can be plotted.
func Chartable(attr model.Attribute) bool {
	return slices.Contains(ChartableTypes, attr.Type)
}

type ChartAttribute struct {
	Ref       model.AttributeRef `json:"ref"`
	AssetName string             `json:"assetName"`
	Label     string             `json:"label"`
	RightAxis bool               `json:"rightAxis"`
	Chartable bool               `json:"chartable"`
}

// BoundSetting is one min/max input. An unset bound shows the placeholder.
type BoundSetting struct {
	Side        axis.Side  `json:"side"`
	Bound       axis.Bound `json:"bound"`
	Set         bool       `json:"set"`
	Value       *float64   `json:"value,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
}

type ChartSettings struct {
	MultiAxis  bool             `json:"multiAxis"`
	Attributes []ChartAttribute `json:"attributes"`
	Bounds     []BoundSetting   `json:"bounds"`

	ShowGrid       bool    `json:"showGrid"`
	GridXIntensity float64 `json:"gridXIntensity"`
	GridYIntensity float64 `json:"gridYIntensity"`
	GridXDensity   float64 `json:"gridXDensity"`
	GridYDensity   float64 `json:"gridYDensity"`
	XAxisUnit      string  `json:"xAxisUnit"`
	XAxisStepSize  int     `json:"xAxisStepSize"`

	ShowLegend           bool     `json:"showLegend"`
	AllowTimerangeSelect bool     `json:"allowTimerangeSelect"`
	TimePreset           string   `json:"timePreset"`
	TimePresets          []string `json:"timePresets,omitempty"`

	Sampling         string   `json:"sampling"`
	SamplingOptions  []string `json:"samplingOptions"`
	IntervalFormula  string   `json:"intervalFormula,omitempty"`
	IntervalFormulas []string `json:"intervalFormulas,omitempty"`
}

func (c Chart) Settings(wc model.WidgetConfig, assets []model.Asset) any {
	cfg, err := configAs[model.ChartWidgetConfig](KindChart, wc)
	if err != nil {
		return nil
	}

	s := ChartSettings{
		MultiAxis:            axis.IsMultiAxis(cfg),
		ShowGrid:             cfg.ShowGrid != nil && *cfg.ShowGrid,
		GridXIntensity:       mutator.GridIntensity(cfg, mutator.GridX),
		GridYIntensity:       mutator.GridIntensity(cfg, mutator.GridY),
		GridXDensity:         mutator.GridDensity(cfg, mutator.GridX),
		GridYDensity:         mutator.GridDensity(cfg, mutator.GridY),
		XAxisUnit:            mutator.DefaultTimeUnit,
		XAxisStepSize:        mutator.DefaultStepSize,
		ShowLegend:           cfg.ShowLegend,
		AllowTimerangeSelect: !cfg.ShowTimestampControls,
		TimePreset:           cfg.DefaultTimePresetKey,
		TimePresets:          c.timePresets,
	}

	if x := cfg.ChartOptions.Defaulted().Scales.X.Time; x != nil {
		if x.Unit != "" {
			s.XAxisUnit = x.Unit
		}
		if x.StepSize != nil {
			s.XAxisStepSize = *x.StepSize
		}
	}

	for _, ref := range cfg.AttributeRefs {
		row := ChartAttribute{Ref: ref, Label: ref.Name, RightAxis: axis.OnRightAxis(cfg, ref)}
		if i := model.IndexOfAsset(assets, ref.ID); i >= 0 {
			row.AssetName = assets[i].Name
			if attr, ok := assets[i].Attribute(ref.Name); ok {
				row.Label = c.formatter.Describe(assets[i], ref.Name, attr).Label
				row.Chartable = Chartable(attr)
			}
		}
		s.Attributes = append(s.Attributes, row)
	}

	sides := []axis.Side{axis.Left}
	if s.MultiAxis {
		sides = append(sides, axis.Right)
	}
	for _, side := range sides {
		for _, bound := range []axis.Bound{axis.Max, axis.Min} {
			b := BoundSetting{Side: side, Bound: bound, Placeholder: boundPlaceholder}
			if v, ok := axis.Value(cfg, side, bound); ok {
				b.Set, b.Value, b.Placeholder = true, model.Ptr(v), ""
			}
			s.Bounds = append(s.Bounds, b)
		}
	}

	for _, o := range c.samplingOptions {
		s.SamplingOptions = append(s.SamplingOptions, o.Label)
	}
	s.Sampling, _ = mutator.SamplingLabel(cfg, c.samplingOptions)
	if cfg.DatapointQuery.Type == model.QueryTypeInterval {
		s.IntervalFormula = cfg.DatapointQuery.Formula
		s.IntervalFormulas = mutator.IntervalFormulas
	}
	return s
}
