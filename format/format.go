// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/json"
	"strconv"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/spf13/cast"
)

// Placeholder is rendered in place of an absent value.
const Placeholder = "-"

// ValueTypeColourRGB is the value type rendered as a colour swatch instead of text.
const ValueTypeColourRGB = "colourRGB"

const (
	metaLabel = "label"
	metaUnits = "units"
)

// Descriptor describes how an attribute is presented.
type Descriptor struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Units string `json:"units,omitempty"`
}

// Swatch reports whether values of the descriptor render as a colour swatch.
func (d Descriptor) Swatch() bool {
	return d.Type == ValueTypeColourRGB
}

// Formatter turns attribute values into display strings.
type Formatter interface {
	Describe(asset model.Asset, attributeName string, attribute model.Attribute) Descriptor
	Format(attribute model.Attribute, d Descriptor, assetType string, withUnits bool, placeholder string) string
}

// Default is the stock Formatter. Labels and units come from attribute meta.
type Default struct{}

var _ Formatter = Default{}

func (Default) Describe(asset model.Asset, attributeName string, attribute model.Attribute) Descriptor {
	d := Descriptor{
		Name:  attributeName,
		Label: attributeName,
		Type:  attribute.Type,
	}
	if l, err := cast.ToStringE(attribute.Meta[metaLabel]); err == nil && l != "" {
		d.Label = l
	}
	if u, err := cast.ToStringE(attribute.Meta[metaUnits]); err == nil {
		d.Units = u
	} else if us, err := cast.ToStringSliceE(attribute.Meta[metaUnits]); err == nil && len(us) > 0 {
		d.Units = us[0]
	}
	return d
}

func (Default) Format(attribute model.Attribute, d Descriptor, _ string, withUnits bool, placeholder string) string {
	if attribute.Value == nil {
		return placeholder
	}

	var s string
	switch v := attribute.Value.(type) {
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		var err error
		if s, err = cast.ToStringE(v); err != nil {
			b, jerr := json.Marshal(v)
			if jerr != nil {
				return placeholder
			}
			s = string(b)
		}
	}

	if s == "" {
		return placeholder
	}
	if withUnits && d.Units != "" && !d.Swatch() {
		s += " " + d.Units
	}
	return s
}
