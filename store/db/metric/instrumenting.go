// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"context"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
)

type instrumentingStore struct {
	store.S
	measures Measures
}

// Instrument counts every query s answers.
func Instrument(s store.S, measures Measures) store.S {
	return &instrumentingStore{S: s, measures: measures}
}

func (s *instrumentingStore) Push(ctx context.Context, asset model.Asset) error {
	err := s.S.Push(ctx, asset)
	s.measures.Query(store.InsertType, err)
	return err
}

func (s *instrumentingStore) Get(ctx context.Context, id string) (model.Asset, error) {
	asset, err := s.S.Get(ctx, id)
	s.measures.Query(store.ReadType, err)
	return asset, err
}

func (s *instrumentingStore) Delete(ctx context.Context, id string) (model.Asset, error) {
	asset, err := s.S.Delete(ctx, id)
	s.measures.Query(store.DeleteType, err)
	return asset, err
}

func (s *instrumentingStore) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	assets, err := s.S.GetAll(ctx)
	s.measures.Query(store.ReadType, err)
	return assets, err
}
