// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"reflect"
	"sync"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
)

type observed struct {
	value     any
	timestamp int64
}

// Differ turns asset snapshots into attribute events. The first snapshot only
// seeds its state; later snapshots publish an event for every attribute whose
// value or timestamp moved.
//
// Differ is also a store.Publisher, so events published through it are not
// reported again when the next snapshot contains them.
type Differ struct {
	publisher store.Publisher

	mu     sync.Mutex
	seeded bool
	last   map[model.AttributeRef]observed
}

var (
	_ Listener        = (*Differ)(nil)
	_ store.Publisher = (*Differ)(nil)
)

func NewDiffer(publisher store.Publisher) *Differ {
	return &Differ{
		publisher: publisher,
		last:      map[model.AttributeRef]observed{},
	}
}

// Publish records the event and forwards it.
func (d *Differ) Publish(e model.AttributeEvent) {
	d.mu.Lock()
	d.last[e.Ref] = observed{value: e.Value, timestamp: e.Timestamp}
	d.mu.Unlock()
	d.publisher.Publish(e)
}

// Forget drops the state kept for the asset, so its attributes are reported
// by the next snapshot, and forwards the call.
func (d *Differ) Forget(assetID string) {
	d.mu.Lock()
	for ref := range d.last {
		if ref.ID == assetID {
			delete(d.last, ref)
		}
	}
	d.mu.Unlock()
	d.publisher.Forget(assetID)
}

func (d *Differ) Update(assets []model.Asset) {
	var events []model.AttributeEvent

	d.mu.Lock()
	seeded := d.seeded
	d.seeded = true
	for _, asset := range assets {
		for name, attr := range asset.Attributes {
			ref := model.AttributeRef{ID: asset.ID, Name: name}
			next := observed{value: attr.Value, timestamp: attr.Timestamp}
			prev, ok := d.last[ref]
			d.last[ref] = next
			if !seeded || (ok && prev.timestamp == next.timestamp && reflect.DeepEqual(prev.value, next.value)) {
				continue
			}
			events = append(events, model.AttributeEvent{Ref: ref, Value: attr.Value, Timestamp: attr.Timestamp})
		}
	}
	d.mu.Unlock()

	for _, e := range events {
		d.publisher.Publish(e)
	}
}
