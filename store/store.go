// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sort"

	"github.com/mohammadbaghban/openremote/model"
)

const (
	// TypeLabel is for labeling metrics; if there is a single metric for
	// successful queries, the typeLabel and corresponding type can be used
	// when incrementing the metric.
	TypeLabel  = "type"
	InsertType = "insert"
	DeleteType = "delete"
	ReadType   = "read"
	PingType   = "ping"
)

// S is the asset storage layer behind the data provider.
type S interface {
	Push(ctx context.Context, asset model.Asset) error
	Get(ctx context.Context, id string) (model.Asset, error)
	Delete(ctx context.Context, id string) (model.Asset, error)
	GetAll(ctx context.Context) (map[string]model.Asset, error)
}

// AssetList returns the assets of the map ordered by id.
func AssetList(assets map[string]model.Asset) []model.Asset {
	list := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}
