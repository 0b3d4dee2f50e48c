// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "slices"

// WidgetConfig is implemented by every widget configuration variant.
type WidgetConfig interface {
	Refs() []AttributeRef
}

// ResourceConfig is a widget configuration displaying an external resource
// whose path may be overridden by a live attribute value.
type ResourceConfig interface {
	WidgetConfig
	StaticPath() string
	OverrideRef() *AttributeRef
}

// AllAttributeRefs returns every attribute the widget depends on: its
// attribute refs plus the resource override ref, if any.
func AllAttributeRefs(c WidgetConfig) []AttributeRef {
	refs := slices.Clone(c.Refs())
	if rc, ok := c.(ResourceConfig); ok {
		if o := rc.OverrideRef(); o != nil && !ContainsRef(refs, *o) {
			refs = append(refs, *o)
		}
	}
	return refs
}

// Coordinates are percentages of the container, x first.
type Coordinates [2]float64

func (c Coordinates) X() float64 { return c[0] }
func (c Coordinates) Y() float64 { return c[1] }

// Marker anchors one attribute's value on top of the widget's resource.
type Marker struct {
	AttributeRef AttributeRef `json:"attributeRef"`
	Coordinates  Coordinates  `json:"coordinates" validate:"dive,gte=0,lte=100"`
}

// OverlayConfig holds the fields image and web widgets share.
type OverlayConfig struct {
	AttributeRefs         []AttributeRef `json:"attributeRefs" validate:"dive"`
	ShowTimestampControls bool           `json:"showTimestampControls"`
	Markers               []Marker       `json:"markers" validate:"dive"`
}

func (c OverlayConfig) Refs() []AttributeRef {
	return c.AttributeRefs
}

func (c OverlayConfig) Clone() OverlayConfig {
	return OverlayConfig{
		AttributeRefs:         slices.Clone(c.AttributeRefs),
		ShowTimestampControls: c.ShowTimestampControls,
		Markers:               slices.Clone(c.Markers),
	}
}

type ImageWidgetConfig struct {
	OverlayConfig
	ImagePath            string        `json:"imagePath"`
	ImageURLAttributeRef *AttributeRef `json:"imageUrlAttributeRef,omitempty"`
}

func (c ImageWidgetConfig) StaticPath() string         { return c.ImagePath }
func (c ImageWidgetConfig) OverrideRef() *AttributeRef { return c.ImageURLAttributeRef }

func (c ImageWidgetConfig) Clone() ImageWidgetConfig {
	next := c
	next.OverlayConfig = c.OverlayConfig.Clone()
	next.ImageURLAttributeRef = clonePtr(c.ImageURLAttributeRef)
	return next
}

type WebWidgetConfig struct {
	OverlayConfig
	PagePath            string        `json:"pagePath"`
	PageURLAttributeRef *AttributeRef `json:"pageUrlAttributeRef,omitempty"`
}

func (c WebWidgetConfig) StaticPath() string         { return c.PagePath }
func (c WebWidgetConfig) OverrideRef() *AttributeRef { return c.PageURLAttributeRef }

func (c WebWidgetConfig) Clone() WebWidgetConfig {
	next := c
	next.OverlayConfig = c.OverlayConfig.Clone()
	next.PageURLAttributeRef = clonePtr(c.PageURLAttributeRef)
	return next
}
