// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"sync"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
)

type InMem struct {
	data map[string]model.Asset
	lock sync.Mutex
}

func NewInMem() store.S {
	return &InMem{
		data: map[string]model.Asset{},
	}
}

func (i *InMem) Push(_ context.Context, asset model.Asset) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.data[asset.ID] = clone(asset)
	return nil
}

func (i *InMem) Get(_ context.Context, id string) (model.Asset, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	asset, ok := i.data[id]
	if !ok {
		return model.Asset{}, store.NotFoundError{ID: id}
	}
	return clone(asset), nil
}

func (i *InMem) GetAll(_ context.Context) (map[string]model.Asset, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	result := make(map[string]model.Asset, len(i.data))
	for id, asset := range i.data {
		result[id] = clone(asset)
	}
	return result, nil
}

func (i *InMem) Delete(_ context.Context, id string) (model.Asset, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	asset, ok := i.data[id]
	if !ok {
		return model.Asset{}, store.NotFoundError{ID: id}
	}
	delete(i.data, id)
	return asset, nil
}

// clone copies the attribute map so callers never share state with the store.
func clone(asset model.Asset) model.Asset {
	if asset.Attributes == nil {
		return asset
	}
	attributes := make(map[string]model.Attribute, len(asset.Attributes))
	for name, attr := range asset.Attributes {
		attributes[name] = attr
	}
	asset.Attributes = attributes
	return asset
}
