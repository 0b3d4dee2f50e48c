// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package axis

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
)

var (
	ErrUnknownSide  = errors.New("unknown axis side")
	ErrUnknownBound = errors.New("unknown axis bound")
	ErrNotSelected  = errors.New("attribute is not selected")
)

// Side selects the primary (left, y) or secondary (right, y1) value axis.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Bound selects the lower or upper end of a value axis.
type Bound string

const (
	Min Bound = "min"
	Max Bound = "max"
)

// Default bound values used when a bound is switched on without a value.
const (
	DefaultMin = 0.0
	DefaultMax = 100.0
)

// IsMultiAxis reports whether any attribute is drawn against the right axis.
func IsMultiAxis(c model.ChartWidgetConfig) bool {
	return len(c.RightAxisAttributes) > 0
}

// OnRightAxis reports whether ref is assigned to the right axis.
func OnRightAxis(c model.ChartWidgetConfig, ref model.AttributeRef) bool {
	return model.ContainsRef(c.RightAxisAttributes, ref)
}

// ToggleRightAxis flips the axis assignment of a selected attribute. Applying
// it twice restores the original assignment.
func ToggleRightAxis(ref model.AttributeRef) mutator.Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		if !model.ContainsRef(c.AttributeRefs, ref) {
			return c, fmt.Errorf("%s: %w", ref, ErrNotSelected)
		}
		next := c.Clone()
		if i := model.IndexOfRef(next.RightAxisAttributes, ref); i >= 0 {
			next.RightAxisAttributes = slices.Delete(next.RightAxisAttributes, i, i+1)
		} else {
			next.RightAxisAttributes = append(next.RightAxisAttributes, ref)
		}
		return next, nil
	}
}

// SelectAttributes replaces the chart's attribute selection. Deselected
// attributes also lose their right axis assignment.
func SelectAttributes(refs []model.AttributeRef) mutator.Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		next := c.Clone()
		next.AttributeRefs = slices.Clone(refs)
		next.RightAxisAttributes = slices.DeleteFunc(next.RightAxisAttributes, func(r model.AttributeRef) bool {
			return !model.ContainsRef(refs, r)
		})
		return next, nil
	}
}

// Value returns a bound of an axis and whether it is set. An unset bound means
// automatic scaling and is distinct from a bound set to zero.
func Value(c model.ChartWidgetConfig, side Side, bound Bound) (float64, bool) {
	s := scale(c.ChartOptions.Scales, side)
	if s == nil {
		return 0, false
	}
	p := s.Min
	if bound == Max {
		p = s.Max
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// ToggleBound switches a bound on or off. Switching on keeps a present value
// and otherwise writes the default; switching off unsets it.
func ToggleBound(side Side, bound Bound, on bool) mutator.Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		if err := check(side, bound); err != nil {
			return c, err
		}
		var v *float64
		if on {
			current, ok := Value(c, side, bound)
			if !ok {
				current = defaultFor(bound)
			}
			v = model.Ptr(current)
		}
		return write(c, side, bound, v), nil
	}
}

// SetBound writes a bound value. Invalid input becomes the default of the
// bound and is reported as recovered.
func SetBound(side Side, bound Bound, value any) mutator.Edit[model.ChartWidgetConfig] {
	return func(c model.ChartWidgetConfig) (model.ChartWidgetConfig, error) {
		if err := check(side, bound); err != nil {
			return c, err
		}
		v, err := mutator.ParseNumber(value)
		if err != nil {
			v = defaultFor(bound)
			err = fmt.Errorf("%s axis %s %v: %w", side, bound, value, err)
		}
		return write(c, side, bound, model.Ptr(v)), err
	}
}

func write(c model.ChartWidgetConfig, side Side, bound Bound, v *float64) model.ChartWidgetConfig {
	next := c.Clone()
	next.ChartOptions = next.ChartOptions.Defaulted()
	s := scale(next.ChartOptions.Scales, side)
	if bound == Min {
		s.Min = v
	} else {
		s.Max = v
	}
	return next
}

func scale(s *model.Scales, side Side) *model.ValueScale {
	if s == nil {
		return nil
	}
	if side == Right {
		return s.Y1
	}
	return s.Y
}

func defaultFor(bound Bound) float64 {
	if bound == Max {
		return DefaultMax
	}
	return DefaultMin
}

func check(side Side, bound Bound) error {
	if side != Left && side != Right {
		return fmt.Errorf("%q: %w", side, ErrUnknownSide)
	}
	if bound != Min && bound != Max {
		return fmt.Errorf("%q: %w", bound, ErrUnknownBound)
	}
	return nil
}
