// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"fmt"

	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/marker"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/mohammadbaghban/openremote/resource"
	"github.com/spf13/cast"
)

// Image and web page actions.
const (
	ActionSyncMarkers           = "syncMarkers"
	ActionMarkerCoordinate      = "markerCoordinate"
	ActionResourcePath          = "resourcePath"
	ActionSelectOverride        = "selectOverride"
	ActionShowTimestampControls = "showTimestampControls"
)

// Overlay is the manifest of a widget showing a resource with attribute
// markers on top. Image and web page widgets differ only in their
// configuration type.
type Overlay[C model.ResourceConfig] struct {
	kind      Kind
	name      string
	icon      string
	formatter format.Formatter

	defaults    func() C
	overlay     func(C) model.OverlayConfig
	withOverlay func(C, model.OverlayConfig) C
	withPath    func(C, string) C
	withRef     func(C, *model.AttributeRef) C
}

var (
	_ Manifest = Overlay[model.ImageWidgetConfig]{}
	_ Manifest = Overlay[model.WebWidgetConfig]{}
)

// NewImage returns the image widget manifest.
func NewImage(f format.Formatter) Overlay[model.ImageWidgetConfig] {
	return Overlay[model.ImageWidgetConfig]{
		kind:      KindImage,
		name:      "Image",
		icon:      "file-image-marker",
		formatter: orDefault(f),
		defaults: func() model.ImageWidgetConfig {
			return model.ImageWidgetConfig{OverlayConfig: emptyOverlay()}
		},
		overlay: func(c model.ImageWidgetConfig) model.OverlayConfig { return c.OverlayConfig },
		withOverlay: func(c model.ImageWidgetConfig, o model.OverlayConfig) model.ImageWidgetConfig {
			next := c.Clone()
			next.OverlayConfig = o
			return next
		},
		withPath: func(c model.ImageWidgetConfig, p string) model.ImageWidgetConfig {
			next := c.Clone()
			next.ImagePath = p
			return next
		},
		withRef: func(c model.ImageWidgetConfig, r *model.AttributeRef) model.ImageWidgetConfig {
			next := c.Clone()
			next.ImageURLAttributeRef = r
			return next
		},
	}
}

// NewWeb returns the web page widget manifest.
func NewWeb(f format.Formatter) Overlay[model.WebWidgetConfig] {
	return Overlay[model.WebWidgetConfig]{
		kind:      KindWeb,
		name:      "Web page",
		icon:      "web",
		formatter: orDefault(f),
		defaults: func() model.WebWidgetConfig {
			return model.WebWidgetConfig{OverlayConfig: emptyOverlay()}
		},
		overlay: func(c model.WebWidgetConfig) model.OverlayConfig { return c.OverlayConfig },
		withOverlay: func(c model.WebWidgetConfig, o model.OverlayConfig) model.WebWidgetConfig {
			next := c.Clone()
			next.OverlayConfig = o
			return next
		},
		withPath: func(c model.WebWidgetConfig, p string) model.WebWidgetConfig {
			next := c.Clone()
			next.PagePath = p
			return next
		},
		withRef: func(c model.WebWidgetConfig, r *model.AttributeRef) model.WebWidgetConfig {
			next := c.Clone()
			next.PageURLAttributeRef = r
			return next
		},
	}
}

func (o Overlay[C]) Kind() Kind { return o.kind }
func (o Overlay[C]) DisplayName() string { return o.name }
func (o Overlay[C]) DisplayIcon() string { return o.icon }
func (o Overlay[C]) MinColumnWidth() int { return 1 }
func (o Overlay[C]) MinColumnHeight() int { return 1 }

func (o Overlay[C]) DefaultConfig() model.WidgetConfig {
	return o.defaults()
}

func (o Overlay[C]) DecodeConfig(data []byte) (model.WidgetConfig, error) {
	c, err := decode[C](data)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (o Overlay[C]) Apply(m *mutator.Mutator, wc model.WidgetConfig, a Action) (model.WidgetConfig, bool, error) {
	cfg, err := configAs[C](o.kind, wc)
	if err != nil {
		return wc, false, err
	}
	edit, err := o.edit(a)
	if err != nil {
		return wc, false, err
	}
	next, ok := mutator.Commit(m, cfg, edit)
	return next, ok, nil
}

func (o Overlay[C]) edit(a Action) (mutator.Edit[C], error) {
	switch a.Name {
	case ActionSelectAttributes:
		return o.lift(func(c model.OverlayConfig) (model.OverlayConfig, error) {
			next := c.Clone()
			next.AttributeRefs = append([]model.AttributeRef{}, a.Refs...)
			return marker.Sync(next), nil
		}), nil
	case ActionSyncMarkers:
		return o.lift(func(c model.OverlayConfig) (model.OverlayConfig, error) {
			return marker.Sync(c), nil
		}), nil
	case ActionMarkerCoordinate:
		if a.Ref == nil {
			return nil, fmt.Errorf("%w: %s requires a ref", ErrInvalidAction, a.Name)
		}
		return o.lift(marker.SetCoordinate(*a.Ref, marker.Axis(a.Axis), a.Value)), nil
	case ActionShowTimestampControls:
		return o.lift(func(c model.OverlayConfig) (model.OverlayConfig, error) {
			next := c.Clone()
			next.ShowTimestampControls = a.On
			return next, nil
		}), nil
	case ActionResourcePath:
		path := cast.ToString(a.Value)
		return func(c C) (C, error) {
			return o.withPath(c, path), nil
		}, nil
	case ActionSelectOverride:
		return func(c C) (C, error) {
			ref, err := resource.SelectOverride(c.OverrideRef(), a.Refs)
			if err != nil {
				return c, err
			}
			return o.withRef(c, ref), nil
		}, nil
	}
	return nil, fmt.Errorf("%q: %w", a.Name, ErrUnknownAction)
}

func (o Overlay[C]) lift(e mutator.Edit[model.OverlayConfig]) mutator.Edit[C] {
	return func(c C) (C, error) {
		next, err := e(o.overlay(c))
		if err != nil && !mutator.Recovered(err) {
			return c, err
		}
		return o.withOverlay(c, next), err
	}
}

type MarkerRow struct {
	Ref       model.AttributeRef `json:"ref"`
	AssetName string             `json:"assetName,omitempty"`
	Label     string             `json:"label,omitempty"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
}

type OverlaySettings struct {
	Path                  string               `json:"path"`
	OverrideRef           *model.AttributeRef  `json:"overrideRef,omitempty"`
	OverridePath          string               `json:"overridePath,omitempty"`
	ShowTimestampControls bool                 `json:"showTimestampControls"`
	Attributes            []model.AttributeRef `json:"attributes"`

	// Markers has a row per attribute ref with a marker. It is empty when the
	// widget has no markers at all.
	Markers []MarkerRow `json:"markers"`
}

func (o Overlay[C]) Settings(wc model.WidgetConfig, assets []model.Asset) any {
	cfg, err := configAs[C](o.kind, wc)
	if err != nil {
		return nil
	}
	ov := o.overlay(cfg)
	s := OverlaySettings{
		Path:                  cfg.StaticPath(),
		OverrideRef:           cfg.OverrideRef(),
		ShowTimestampControls: ov.ShowTimestampControls,
		Attributes:            ov.AttributeRefs,
	}
	s.OverridePath, _ = resource.AttributePath(cfg, assets, o.formatter)

	if len(ov.Markers) == 0 {
		return s
	}
	for _, ref := range ov.AttributeRefs {
		m, ok := marker.Lookup(ov.Markers, ref)
		if !ok {
			continue
		}
		row := MarkerRow{Ref: ref, X: m.Coordinates.X(), Y: m.Coordinates.Y()}
		if i := model.IndexOfAsset(assets, ref.ID); i >= 0 {
			row.AssetName = assets[i].Name
			if attr, ok := assets[i].Attribute(ref.Name); ok {
				row.Label = o.formatter.Describe(assets[i], ref.Name, attr).Label
			}
		}
		s.Markers = append(s.Markers, row)
	}
	return s
}

func emptyOverlay() model.OverlayConfig {
	return model.OverlayConfig{
		AttributeRefs: []model.AttributeRef{},
		Markers:       []model.Marker{},
	}
}

func orDefault(f format.Formatter) format.Formatter {
	if f == nil {
		return format.Default{}
	}
	return f
}
