// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohammadbaghban/openremote/binding"
	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/marker"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

type DashboardConfig struct {
	Registry *Registry

	// Channel pushes live attribute values to widgets.
	// (Optional). Widgets serve fetched data only without it.
	Channel binding.EventChannel

	// Provider hydrates the assets widgets refer to.
	// (Optional).
	Provider binding.AssetDataProvider

	// Formatter renders attribute values.
	// (Optional). Defaults to format.Default.
	Formatter format.Formatter

	// FetchTimeout bounds asset hydration.
	// (Optional).
	FetchTimeout time.Duration

	// Logger to be used by the dashboard and its widgets.
	// (Optional). By default the sallust default logger will be used.
	Logger *zap.Logger
}

// Dashboard owns the live widget instances and is the host every widget
// reports configuration changes to.
type Dashboard struct {
	registry     *Registry
	channel      binding.EventChannel
	provider     binding.AssetDataProvider
	formatter    format.Formatter
	fetchTimeout time.Duration
	logger       *zap.Logger
	measures     *Measures

	mu      sync.RWMutex
	widgets map[string]*Instance
}

func NewDashboard(config DashboardConfig, measures *Measures) (*Dashboard, error) {
	if config.Registry == nil {
		return nil, ErrNilRegistry
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if config.Formatter == nil {
		config.Formatter = format.Default{}
	}
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	return &Dashboard{
		registry:     config.Registry,
		channel:      config.Channel,
		provider:     config.Provider,
		formatter:    config.Formatter,
		fetchTimeout: config.FetchTimeout,
		logger:       config.Logger,
		measures:     measures,
		widgets:      map[string]*Instance{},
	}, nil
}

func (d *Dashboard) Registry() *Registry {
	return d.registry
}

// Create adds a widget of the given kind. A nil document creates the kind's
// default configuration.
func (d *Dashboard) Create(ctx context.Context, kind Kind, document []byte) (*Instance, error) {
	manifest, err := d.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	config := manifest.DefaultConfig()
	if len(document) > 0 {
		if config, err = manifest.DecodeConfig(document); err != nil {
			return nil, err
		}
	}

	i, err := d.newInstance(uuid.NewString(), manifest)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.widgets[i.id] = i
	d.mu.Unlock()

	d.count(kind, CreatedEvent)
	i.logger.Info("widget created")
	i.Configure(ctx, config)
	return i, nil
}

func (d *Dashboard) Get(id string) (*Instance, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.widgets[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrWidgetNotFound)
	}
	return i, nil
}

// List returns every widget ordered by id.
func (d *Dashboard) List() []*Instance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := make([]*Instance, 0, len(d.widgets))
	for _, i := range d.widgets {
		list = append(list, i)
	}
	slices.SortFunc(list, func(a, b *Instance) int {
		return strings.Compare(a.id, b.id)
	})
	return list
}

// Reconfigure replaces a widget's configuration with a decoded document.
func (d *Dashboard) Reconfigure(ctx context.Context, id string, document []byte) (*Instance, error) {
	i, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	config, err := i.manifest.DecodeConfig(document)
	if err != nil {
		return nil, err
	}
	i.Configure(ctx, config)
	return i, nil
}

// Delete removes a widget and tears it down.
func (d *Dashboard) Delete(id string) error {
	d.mu.Lock()
	i, ok := d.widgets[id]
	delete(d.widgets, id)
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrWidgetNotFound)
	}

	i.Close()
	d.count(i.Kind(), DeletedEvent)
	i.logger.Info("widget deleted")
	return nil
}

// Watch returns the change signal of a widget. See Instance.Watch.
func (d *Dashboard) Watch(id string) (<-chan struct{}, func(), error) {
	i, err := d.Get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := i.Watch()
	return ch, cancel, nil
}

// Close tears down every widget.
func (d *Dashboard) Close() {
	d.mu.Lock()
	widgets := d.widgets
	d.widgets = map[string]*Instance{}
	d.mu.Unlock()
	for _, i := range widgets {
		i.Close()
	}
}

func (d *Dashboard) newInstance(id string, manifest Manifest) (*Instance, error) {
	kind := string(manifest.Kind())
	logger := d.logger.With(zap.String("widget", id), zap.String("kind", kind))
	i := &Instance{
		id:        id,
		manifest:  manifest,
		formatter: d.formatter,
		logger:    logger,
		watchers:  map[int]chan struct{}{},
	}
	i.host = mutator.HostFunc(func() { d.configChanged(i) })

	var err error
	i.binding, err = binding.NewManager(binding.Config{
		Channel:      d.channel,
		Provider:     d.provider,
		Listener:     binding.ListenerFunc(func([]model.Asset) { i.changed() }),
		FetchTimeout: d.fetchTimeout,
		Logger:       logger,
	}, &d.measures.Binding)
	if err != nil {
		return nil, err
	}
	i.mutator, err = mutator.New(mutator.HostFunc(func() { i.dirty = true }), kind, logger, &d.measures.Mutator)
	if err != nil {
		return nil, err
	}
	i.resolver, err = marker.NewResolver(kind, d.formatter, logger, &d.measures.Marker)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// configChanged is where a widget's host learns about a new configuration.
func (d *Dashboard) configChanged(i *Instance) {
	d.count(i.Kind(), ConfigChangedEvent)
	i.logger.Debug("widget configuration changed")
	i.changed()
}

func (d *Dashboard) count(kind Kind, event string) {
	d.measures.Lifecycle.With(prometheus.Labels{KindLabel: string(kind), EventLabel: event}).Inc()
}
