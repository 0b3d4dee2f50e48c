// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/stretchr/testify/assert"
)

var GenericTestAsset = model.Asset{
	ID:   "earth",
	Name: "Louis Armstrong",
	Type: "ThingAsset",
	Attributes: map[string]model.Attribute{
		"year": {
			Name:  "year",
			Type:  "number",
			Value: float64(1967),
		},
		"words": {
			Name:  "words",
			Type:  "text",
			Value: "What a Wonderful World",
		},
	},
}

// StoreTest validates that a given store implementation works.
func StoreTest(s store.S, t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Log("Basic Test")
	err := s.Push(ctx, GenericTestAsset)
	assert.NoError(err)
	retVal, err := s.Get(ctx, GenericTestAsset.ID)
	assert.NoError(err)
	assert.Equal(GenericTestAsset, retVal)

	assets, err := s.GetAll(ctx)
	assert.NoError(err)
	assert.Equal(map[string]model.Asset{"earth": GenericTestAsset}, assets)

	retVal, err = s.Delete(ctx, GenericTestAsset.ID)
	assert.NoError(err)
	assert.Equal(GenericTestAsset, retVal)

	assets, err = s.GetAll(ctx)
	assert.NoError(err)
	assert.Empty(assets)

	t.Log("Missing asset")
	_, err = s.Get(ctx, GenericTestAsset.ID)
	assert.True(errors.Is(err, store.ErrAssetNotFound), "Expected '%v' to match store.ErrAssetNotFound", err)
	_, err = s.Delete(ctx, GenericTestAsset.ID)
	assert.True(errors.Is(err, store.ErrAssetNotFound), "Expected '%v' to match store.ErrAssetNotFound", err)
}
