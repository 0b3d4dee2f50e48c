// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package binding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors that can be returned by this package. Since some of these errors are returned wrapped, it
// is safest to use errors.Is() to check for them.
var (
	ErrBindingUnavailable = errors.New("no event channel available")
	ErrNilMeasures        = errors.New("measures cannot be nil")
	ErrManagerClosed      = errors.New("binding manager is closed")
)

const defaultFetchTimeout = 10 * time.Second

// EventChannel pushes attribute value changes.
type EventChannel interface {
	Subscribe(ctx context.Context, refs []model.AttributeRef, pushCurrent bool, onEvent func(model.AttributeEvent)) (string, error)
	Unsubscribe(id string)
}

// AssetDataProvider hydrates assets for a set of refs in bulk.
type AssetDataProvider interface {
	Fetch(ctx context.Context, refs []model.AttributeRef) ([]model.Asset, error)
}

// Listener is notified with the new cached asset collection after each change.
type Listener interface {
	OnAssetsChanged(assets []model.Asset)
}

// ListenerFunc is a function type that implements the Listener interface.
type ListenerFunc func(assets []model.Asset)

func (l ListenerFunc) OnAssetsChanged(assets []model.Asset) {
	l(assets)
}

type Config struct {
	// Channel provides live updates.
	// (Optional). Without it the manager only serves fetched data.
	Channel EventChannel

	// Provider hydrates assets.
	// (Optional). Without it the cache only fills from events on known assets.
	Provider AssetDataProvider

	// Listener is told about every new asset collection.
	// (Optional).
	Listener Listener

	// Version is bumped on events for the resource attribute.
	// (Optional). A private counter is used if not provided.
	Version *resource.Version

	// FetchTimeout bounds a single hydration.
	// (Optional). Defaults to 10 seconds.
	FetchTimeout time.Duration

	// Logger to be used by the manager.
	// (Optional). By default the sallust default logger will be used.
	Logger *zap.Logger
}

// Manager keeps one widget's cached assets converged with the event channel.
// It holds at most one live subscription at a time.
type Manager struct {
	channel      EventChannel
	provider     AssetDataProvider
	listener     Listener
	version      *resource.Version
	tracker      *resource.Tracker
	fetchTimeout time.Duration
	logger       *zap.Logger
	measures     *Measures

	mu           sync.Mutex
	subscription string
	generation   uint64
	closed       bool
	assets       []model.Asset
	resourceRef  *model.AttributeRef

	// fetching counts hydrations in flight. Events applied meanwhile are kept
	// in pending and replayed over the fetched snapshot.
	fetching int
	pending  []model.AttributeEvent
}

func NewManager(config Config, measures *Measures) (*Manager, error) {
	if measures == nil {
		return nil, ErrNilMeasures
	}
	validateConfig(&config)
	return &Manager{
		channel:      config.Channel,
		provider:     config.Provider,
		listener:     config.Listener,
		version:      config.Version,
		tracker:      resource.NewTracker(config.Version),
		fetchTimeout: config.FetchTimeout,
		logger:       config.Logger,
		measures:     measures,
	}, nil
}

// Subscribe replaces the current subscription with one for refs. The previous
// subscription is unsubscribed first. It returns false, and creates nothing,
// when refs is empty, no channel is configured or the channel fails.
func (m *Manager) Subscribe(ctx context.Context, refs []model.AttributeRef, pushCurrent bool) (string, bool) {
	m.mu.Lock()
	prev := m.takeSubscription()
	closed := m.closed
	gen := m.generation
	m.mu.Unlock()

	if prev != "" {
		m.channel.Unsubscribe(prev)
	}

	switch {
	case closed:
		return "", false
	case len(refs) == 0:
		m.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: SkippedOutcome}).Inc()
		return "", false
	case m.channel == nil:
		m.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: UnavailableOutcome}).Inc()
		m.logger.Warn("live updates disabled, serving fetched data only", zap.Error(ErrBindingUnavailable))
		return "", false
	}

	id, err := m.channel.Subscribe(ctx, refs, pushCurrent, func(e model.AttributeEvent) {
		m.handleEvent(gen, e)
	})
	if err != nil {
		m.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: FailureOutcome}).Inc()
		m.logger.Warn("failed to subscribe, serving fetched data only",
			zap.Error(errors.Join(ErrBindingUnavailable, err)))
		return "", false
	}

	m.mu.Lock()
	if m.closed || m.generation != gen || m.subscription != "" {
		// torn down or resubscribed while the channel was subscribing
		m.mu.Unlock()
		m.channel.Unsubscribe(id)
		return "", false
	}
	m.subscription = id
	m.mu.Unlock()

	m.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: SuccessOutcome}).Inc()
	m.logger.Debug("subscribed to attribute events", zap.String("subscription", id), zap.Int("refs", len(refs)))
	return id, true
}

// Unsubscribe drops the current subscription, if any. Events still in flight
// for it are ignored.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	prev := m.takeSubscription()
	m.mu.Unlock()
	if prev != "" {
		m.channel.Unsubscribe(prev)
	}
}

// Bind makes the manager serve the given widget configuration: it records the
// resource attribute, bumps the version when the static resource path was
// edited, hydrates assets not yet cached and resubscribes to every referenced
// attribute with current values pushed.
func (m *Manager) Bind(ctx context.Context, config model.WidgetConfig) (string, bool) {
	refs := model.AllAttributeRefs(config)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", false
	}
	m.resourceRef = nil
	pathEdited := false
	if rc, ok := config.(model.ResourceConfig); ok {
		if o := rc.OverrideRef(); o != nil {
			ref := *o
			m.resourceRef = &ref
		}
		pathEdited = m.tracker.Observe(rc)
	}
	missing := m.missingLocked(refs)
	m.mu.Unlock()

	if pathEdited {
		m.measures.VersionBumps.With(prometheus.Labels{SourceLabel: PathSource}).Inc()
	}

	if missing {
		m.Fetch(ctx, refs)
	}
	return m.Subscribe(ctx, refs, true)
}

// Fetch replaces the cached assets with a fresh hydration of refs. Events
// applied while the hydration was in flight are replayed over its result.
// Failures are logged and leave the cache untouched.
func (m *Manager) Fetch(ctx context.Context, refs []model.AttributeRef) {
	if m.provider == nil || len(refs) == 0 {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.fetching++
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()
	assets, err := m.provider.Fetch(ctx, refs)

	m.mu.Lock()
	var replay []model.AttributeEvent
	m.fetching--
	if m.fetching == 0 {
		replay = m.pending
		m.pending = nil
	} else {
		replay = append([]model.AttributeEvent(nil), m.pending...)
	}
	if err != nil || m.closed {
		m.mu.Unlock()
		if err != nil {
			m.measures.Fetches.With(prometheus.Labels{OutcomeLabel: FailureOutcome}).Inc()
			m.logger.Error("failed to fetch assets", zap.Error(err))
		}
		return
	}
	next := make([]model.Asset, len(assets))
	copy(next, assets)
	for _, e := range replay {
		if i := model.IndexOfAsset(next, e.Ref.ID); i >= 0 {
			next[i] = next[i].WithAttributeValue(e)
		}
	}
	m.assets = next
	m.mu.Unlock()

	m.measures.Fetches.With(prometheus.Labels{OutcomeLabel: SuccessOutcome}).Inc()
	if len(replay) > 0 {
		m.logger.Debug("replayed events received during fetch", zap.Int("events", len(replay)))
	}
	m.notify(next)
}

// Assets returns the current cached asset collection. The collection is
// replaced, never modified, so callers may hold on to it.
func (m *Manager) Assets() []model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assets
}

// Version returns the resource cache-busting counter.
func (m *Manager) Version() *resource.Version {
	return m.version
}

// Close tears the manager down: the subscription is dropped, cached assets are
// discarded and any later callback is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	prev := m.takeSubscription()
	m.closed = true
	m.assets = nil
	m.pending = nil
	m.mu.Unlock()
	if prev != "" {
		m.channel.Unsubscribe(prev)
	}
}

func (m *Manager) handleEvent(gen uint64, e model.AttributeEvent) {
	m.mu.Lock()
	if m.closed || gen != m.generation {
		m.mu.Unlock()
		m.measures.Events.With(prometheus.Labels{OutcomeLabel: StaleOutcome}).Inc()
		return
	}

	bumped := m.resourceRef != nil && m.resourceRef.Equal(e.Ref)
	if bumped {
		m.version.Bump()
	}
	if m.fetching > 0 {
		m.pending = append(m.pending, e)
	}

	i := model.IndexOfAsset(m.assets, e.Ref.ID)
	if i < 0 {
		m.mu.Unlock()
		m.measures.Events.With(prometheus.Labels{OutcomeLabel: UnknownAssetOutcome}).Inc()
		if bumped {
			m.measures.VersionBumps.With(prometheus.Labels{SourceLabel: EventSource}).Inc()
		}
		m.logger.Debug("event for an asset that is not cached", zap.Stringer("ref", e.Ref))
		return
	}

	next := make([]model.Asset, len(m.assets))
	copy(next, m.assets)
	next[i] = m.assets[i].WithAttributeValue(e)
	m.assets = next
	m.mu.Unlock()

	m.measures.Events.With(prometheus.Labels{OutcomeLabel: AppliedOutcome}).Inc()
	if bumped {
		m.measures.VersionBumps.With(prometheus.Labels{SourceLabel: EventSource}).Inc()
	}
	m.notify(next)
}

// takeSubscription clears the current subscription and invalidates callbacks
// issued for it. Callers must hold mu.
func (m *Manager) takeSubscription() string {
	prev := m.subscription
	m.subscription = ""
	m.generation++
	return prev
}

func (m *Manager) missingLocked(refs []model.AttributeRef) bool {
	for _, ref := range refs {
		if model.IndexOfAsset(m.assets, ref.ID) < 0 {
			return true
		}
	}
	return false
}

func (m *Manager) notify(assets []model.Asset) {
	if m.listener != nil {
		m.listener.OnAssetsChanged(assets)
	}
}

func validateConfig(config *Config) {
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaultFetchTimeout
	}
	if config.Version == nil {
		config.Version = new(resource.Version)
	}
}
