// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var ErrNilStore = errors.New("asset store cannot be nil")

// Publisher pushes attribute events to live subscribers. Forget is called
// after an asset was replaced or deleted so values remembered for it are not
// pushed again.
type Publisher interface {
	Publish(e model.AttributeEvent)
	Forget(assetID string)
}

// Provider serves assets out of an S. It hydrates widgets in bulk and
// supplies the current value of attributes no event was seen for yet.
type Provider struct {
	s      S
	logger *zap.Logger
	now    func() time.Time

	// mu serializes attribute read-modify-write cycles.
	mu sync.Mutex
}

func NewProvider(s S, logger *zap.Logger) (*Provider, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = sallust.Default()
	}
	return &Provider{
		s:      s,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Fetch returns the assets referenced by refs, each at most once and in the
// order they are first referenced. Unknown assets are skipped.
func (p *Provider) Fetch(ctx context.Context, refs []model.AttributeRef) ([]model.Asset, error) {
	seen := make(map[string]bool, len(refs))
	var assets []model.Asset
	for _, ref := range refs {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true

		asset, err := p.s.Get(ctx, ref.ID)
		switch {
		case errors.Is(err, ErrAssetNotFound):
			p.logger.Debug("skipping unknown asset", zap.String("assetId", ref.ID))
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to fetch asset %s: %w", ref.ID, err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// CurrentValues returns an event per ref whose attribute exists.
func (p *Provider) CurrentValues(ctx context.Context, refs []model.AttributeRef) ([]model.AttributeEvent, error) {
	assets, err := p.Fetch(ctx, refs)
	if err != nil {
		return nil, err
	}

	var events []model.AttributeEvent
	for _, ref := range refs {
		i := model.IndexOfAsset(assets, ref.ID)
		if i < 0 {
			continue
		}
		if attr, ok := assets[i].Attribute(ref.Name); ok {
			events = append(events, model.AttributeEvent{Ref: ref, Value: attr.Value, Timestamp: attr.Timestamp})
		}
	}
	return events, nil
}

// UpdateAttribute stores a new attribute value and returns the event
// describing it. A zero timestamp is replaced with the current time.
func (p *Provider) UpdateAttribute(ctx context.Context, e model.AttributeEvent) (model.AttributeEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	asset, err := p.s.Get(ctx, e.Ref.ID)
	if err != nil {
		return model.AttributeEvent{}, err
	}
	if e.Timestamp == 0 {
		e.Timestamp = p.now().UnixMilli()
	}
	if err := p.s.Push(ctx, asset.WithAttributeValue(e)); err != nil {
		return model.AttributeEvent{}, err
	}
	p.logger.Debug("attribute updated", zap.Stringer("ref", e.Ref))
	return e, nil
}
