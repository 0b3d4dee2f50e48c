// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package eventhub

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNoRefs      = errors.New("no attribute refs to subscribe to")
	ErrNoCallback  = errors.New("no event callback provided")
	ErrHubClosed   = errors.New("event hub is closed")
	ErrNilMeasures = errors.New("measures cannot be nil")
)

const defaultQueueSize = 16

// CurrentValuer supplies the current value of attributes. When present it is
// the source of truth for values pushed on subscribe.
type CurrentValuer interface {
	CurrentValues(ctx context.Context, refs []model.AttributeRef) ([]model.AttributeEvent, error)
}

type Config struct {
	// QueueSize bounds each subscriber's pending events. Events beyond it are dropped.
	// (Optional). Defaults to 16.
	QueueSize int
}

// Hub is an in-process push channel for attribute events. Each subscriber
// gets its own queue and delivery goroutine so Publish never blocks.
type Hub struct {
	mu   sync.Mutex
	subs map[string]*subscriber
	next uint64

	// last holds published values and is only kept without a CurrentValuer.
	last      map[model.AttributeRef]model.AttributeEvent
	closed    bool
	queueSize int

	current  CurrentValuer
	logger   *zap.Logger
	measures *Measures
}

type subscriber struct {
	refs      []model.AttributeRef
	ch        chan model.AttributeEvent
	cancelled atomic.Bool

	// Until ready, live events are held in pending so current values read
	// during subscribe go out first. Guarded by the hub's mu.
	ready   bool
	pending []model.AttributeEvent
}

// New builds a Hub. current may be nil, in which case only values already
// published through the hub are pushed on subscribe.
func New(config Config, current CurrentValuer, logger *zap.Logger, measures *Measures) (*Hub, error) {
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if logger == nil {
		logger = sallust.Default()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}
	return &Hub{
		subs:      map[string]*subscriber{},
		last:      map[model.AttributeRef]model.AttributeEvent{},
		queueSize: config.QueueSize,
		current:   current,
		logger:    logger,
		measures:  measures,
	}, nil
}

// Subscribe registers onEvent for events on refs. With pushCurrent set, the
// current value of each ref is queued ahead of any later live event. A live
// event published while current values are read wins over the value read.
func (h *Hub) Subscribe(ctx context.Context, refs []model.AttributeRef, pushCurrent bool, onEvent func(model.AttributeEvent)) (string, error) {
	if len(refs) == 0 {
		h.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: RejectedOutcome}).Inc()
		return "", ErrNoRefs
	}
	if onEvent == nil {
		h.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: RejectedOutcome}).Inc()
		return "", ErrNoCallback
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: RejectedOutcome}).Inc()
		return "", ErrHubClosed
	}

	id := strconv.FormatUint(h.next, 10)
	h.next++
	s := &subscriber{
		refs:  append([]model.AttributeRef(nil), refs...),
		ch:    make(chan model.AttributeEvent, h.queueSize),
		ready: !pushCurrent || h.current == nil,
	}
	if pushCurrent && h.current == nil {
		for _, ref := range s.refs {
			if e, ok := h.last[ref]; ok {
				h.enqueue(s, e)
			}
		}
	}
	h.subs[id] = s
	go s.deliver(onEvent)
	h.mu.Unlock()

	if !s.ready {
		h.pushCurrent(ctx, id, s)
	}

	h.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: SubscribedOutcome}).Inc()
	h.logger.Debug("subscribed to attribute events", zap.String("subscription", id), zap.Int("refs", len(refs)))
	return id, nil
}

// Unsubscribe stops delivery to the subscription. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	s.cancelled.Store(true)
	close(s.ch)
	h.measures.Subscriptions.With(prometheus.Labels{OutcomeLabel: UnsubscribedOutcome}).Inc()
	h.logger.Debug("unsubscribed from attribute events", zap.String("subscription", id))
}

// Publish queues the event for every subscriber of its ref. Without a
// CurrentValuer the event is also remembered as the ref's current value.
func (h *Hub) Publish(e model.AttributeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.current == nil {
		h.last[e.Ref] = e
	}
	for _, s := range h.subs {
		if model.ContainsRef(s.refs, e.Ref) {
			h.enqueue(s, e)
		}
	}
}

// Forget drops the remembered values of every attribute of the asset. It is
// called when the asset is replaced or deleted outside the hub.
func (h *Hub) Forget(assetID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ref := range h.last {
		if ref.ID == assetID {
			delete(h.last, ref)
		}
	}
}

// Close unsubscribes everyone. Later subscribes fail with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, s := range h.subs {
		delete(h.subs, id)
		s.cancelled.Store(true)
		close(s.ch)
	}
}

// enqueue holds the event while s is reading current values. Callers must
// hold mu.
func (h *Hub) enqueue(s *subscriber, e model.AttributeEvent) {
	if !s.ready {
		if len(s.pending) < h.queueSize {
			s.pending = append(s.pending, e)
			return
		}
		h.measures.Deliveries.With(prometheus.Labels{OutcomeLabel: DroppedOutcome}).Inc()
		h.logger.Warn("subscriber queue full, dropping attribute event", zap.Stringer("ref", e.Ref))
		return
	}
	h.send(s, e)
}

func (h *Hub) send(s *subscriber, e model.AttributeEvent) {
	select {
	case s.ch <- e:
		h.measures.Deliveries.With(prometheus.Labels{OutcomeLabel: DeliveredOutcome}).Inc()
	default:
		h.measures.Deliveries.With(prometheus.Labels{OutcomeLabel: DroppedOutcome}).Inc()
		h.logger.Warn("subscriber queue full, dropping attribute event", zap.Stringer("ref", e.Ref))
	}
}

// pushCurrent reads the current value of every ref of s and queues those no
// live event arrived for in the meantime, followed by the held live events.
func (h *Hub) pushCurrent(ctx context.Context, id string, s *subscriber) {
	events, err := h.current.CurrentValues(ctx, s.refs)
	if err != nil {
		h.logger.Warn("failed to read current attribute values", zap.Error(err))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[id] != s {
		// unsubscribed or closed while reading
		return
	}
	live := make(map[model.AttributeRef]bool, len(s.pending))
	for _, e := range s.pending {
		live[e.Ref] = true
	}
	for _, e := range events {
		if model.ContainsRef(s.refs, e.Ref) && !live[e.Ref] {
			h.send(s, e)
		}
	}
	for _, e := range s.pending {
		h.send(s, e)
	}
	s.pending = nil
	s.ready = true
}

func (s *subscriber) deliver(onEvent func(model.AttributeEvent)) {
	for e := range s.ch {
		if s.cancelled.Load() {
			return
		}
		onEvent(e)
	}
}
