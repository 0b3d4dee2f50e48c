// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"context"
	"sync"

	"github.com/mohammadbaghban/openremote/axis"
	"github.com/mohammadbaghban/openremote/binding"
	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/marker"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/mohammadbaghban/openremote/resource"
	"go.uber.org/zap"
)

// Instance is one widget on a dashboard: its configuration plus the binding
// keeping its assets live.
type Instance struct {
	id        string
	manifest  Manifest
	binding   *binding.Manager
	mutator   *mutator.Mutator
	resolver  *marker.Resolver
	formatter format.Formatter
	host      mutator.Host
	logger    *zap.Logger

	// op serializes configuration changes with their rebinding.
	op sync.Mutex

	mu     sync.Mutex
	config model.WidgetConfig
	dirty  bool

	watchMu   sync.Mutex
	watchers  map[int]chan struct{}
	nextWatch int
	closed    bool
}

func (i *Instance) ID() string {
	return i.id
}

func (i *Instance) Kind() Kind {
	return i.manifest.Kind()
}

func (i *Instance) Manifest() Manifest {
	return i.manifest
}

// Config returns the current configuration. Configurations are replaced,
// never modified.
func (i *Instance) Config() model.WidgetConfig {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.config
}

// Configure replaces the configuration and rebinds the widget.
func (i *Instance) Configure(ctx context.Context, c model.WidgetConfig) {
	i.op.Lock()
	defer i.op.Unlock()

	i.mu.Lock()
	i.config = c
	i.mu.Unlock()

	i.binding.Bind(ctx, c)
	i.host.NotifyConfigChanged()
}

// Update applies a settings action. It reports whether the configuration
// changed; edits that were dropped leave the widget untouched.
func (i *Instance) Update(ctx context.Context, a Action) (bool, error) {
	i.op.Lock()
	defer i.op.Unlock()

	i.mu.Lock()
	i.dirty = false
	next, ok, err := i.manifest.Apply(i.mutator, i.config, a)
	if err != nil || !ok {
		i.mu.Unlock()
		return false, err
	}
	i.config = next
	dirty := i.dirty
	i.mu.Unlock()

	i.binding.Bind(ctx, next)
	if dirty {
		i.host.NotifyConfigChanged()
	}
	return true, nil
}

// Refresh refetches every asset the widget depends on.
func (i *Instance) Refresh(ctx context.Context) {
	i.binding.Fetch(ctx, model.AllAttributeRefs(i.Config()))
}

// Dataset is one plotted attribute.
type Dataset struct {
	Ref       model.AttributeRef `json:"ref"`
	AssetName string             `json:"assetName,omitempty"`
	Label     string             `json:"label"`
	Units     string             `json:"units,omitempty"`
	YAxisID   string             `json:"yAxisID"`
	Value     string             `json:"value"`
}

type ChartView struct {
	Options               model.ChartOptions   `json:"options"`
	Datasets              []Dataset            `json:"datasets"`
	DatapointQuery        model.DatapointQuery `json:"datapointQuery"`
	ShowLegend            bool                 `json:"showLegend"`
	ShowTimestampControls bool                 `json:"showTimestampControls"`
	TimePreset            string               `json:"timePreset,omitempty"`
}

// View is the render state of a widget.
type View struct {
	ID     string             `json:"id"`
	Kind   Kind               `json:"kind"`
	Config model.WidgetConfig `json:"config"`
	Assets []model.Asset      `json:"assets"`

	// Path is the effective, cache-busted resource path of image and web page widgets.
	Path       string             `json:"path,omitempty"`
	Version    uint64             `json:"version"`
	Placements []marker.Placement `json:"placements,omitempty"`

	Chart *ChartView `json:"chart,omitempty"`
}

// View computes the widget's current render state.
func (i *Instance) View() View {
	c := i.Config()
	assets := i.binding.Assets()
	v := View{
		ID:      i.id,
		Kind:    i.Kind(),
		Config:  c,
		Assets:  assets,
		Version: i.binding.Version().Current(),
	}

	if rc, ok := c.(model.ResourceConfig); ok {
		v.Path = resource.Resolve(rc, assets, i.formatter, v.Version)
	}

	switch c := c.(type) {
	case model.ImageWidgetConfig:
		v.Placements = i.resolver.Resolve(c.OverlayConfig, assets)
	case model.WebWidgetConfig:
		v.Placements = i.resolver.Resolve(c.OverlayConfig, assets)
	case model.ChartWidgetConfig:
		v.Chart = i.chartView(c, assets)
	}
	return v
}

func (i *Instance) chartView(c model.ChartWidgetConfig, assets []model.Asset) *ChartView {
	cv := &ChartView{
		Options:               c.ChartOptions.Defaulted(),
		DatapointQuery:        c.DatapointQuery,
		ShowLegend:            c.ShowLegend,
		ShowTimestampControls: c.ShowTimestampControls,
		TimePreset:            c.DefaultTimePresetKey,
	}
	if !axis.IsMultiAxis(c) {
		// the secondary scale only exists in multi-axis mode
		cv.Options.Scales.Y1 = nil
	}

	for _, ref := range c.AttributeRefs {
		ds := Dataset{Ref: ref, Label: ref.Name, YAxisID: "y", Value: format.Placeholder}
		if axis.OnRightAxis(c, ref) {
			ds.YAxisID = "y1"
		}
		if idx := model.IndexOfAsset(assets, ref.ID); idx >= 0 {
			asset := assets[idx]
			ds.AssetName = asset.Name
			if attr, ok := asset.Attribute(ref.Name); ok {
				d := i.formatter.Describe(asset, ref.Name, attr)
				ds.Label, ds.Units = d.Label, d.Units
				ds.Value = i.formatter.Format(attr, d, asset.Type, false, format.Placeholder)
			}
		}
		cv.Datasets = append(cv.Datasets, ds)
	}
	return cv
}

// Settings returns the settings view of the widget's kind.
func (i *Instance) Settings() any {
	return i.manifest.Settings(i.Config(), i.binding.Assets())
}

// Watch returns a channel signalled whenever the widget's view may have
// changed. Signals coalesce; the channel is closed when the widget closes or
// cancel is called.
func (i *Instance) Watch() (<-chan struct{}, func()) {
	i.watchMu.Lock()
	defer i.watchMu.Unlock()

	ch := make(chan struct{}, 1)
	if i.closed {
		close(ch)
		return ch, func() {}
	}
	id := i.nextWatch
	i.nextWatch++
	i.watchers[id] = ch
	return ch, func() {
		i.watchMu.Lock()
		defer i.watchMu.Unlock()
		if w, ok := i.watchers[id]; ok {
			delete(i.watchers, id)
			close(w)
		}
	}
}

func (i *Instance) changed() {
	i.watchMu.Lock()
	defer i.watchMu.Unlock()
	for _, ch := range i.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears the widget down. Late events are ignored and every watcher is
// released.
func (i *Instance) Close() {
	i.binding.Close()

	i.watchMu.Lock()
	defer i.watchMu.Unlock()
	i.closed = true
	for id, ch := range i.watchers {
		delete(i.watchers, id)
		close(ch)
	}
}
