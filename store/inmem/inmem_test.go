// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"fmt"
	"testing"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMem(t *testing.T) {
	storetest.StoreTest(NewInMem(), t)
}

func TestInMemIsolation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	storage := NewInMem()

	asset := model.Asset{
		ID:         "a1",
		Attributes: map[string]model.Attribute{"temp": {Name: "temp", Value: 20.0}},
	}
	require.NoError(storage.Push(ctx, asset))
	asset.Attributes["temp"] = model.Attribute{Name: "temp", Value: 99.0}

	stored, err := storage.Get(ctx, "a1")
	require.NoError(err)
	assert.Equal(20.0, stored.Attributes["temp"].Value)

	stored.Attributes["temp"] = model.Attribute{Name: "temp", Value: 50.0}
	again, err := storage.Get(ctx, "a1")
	require.NoError(err)
	assert.Equal(20.0, again.Attributes["temp"].Value)
}

func TestInMemConcurrent(t *testing.T) {
	storage := NewInMem()
	asset := model.Asset{
		ID:         "a1",
		Attributes: map[string]model.Attribute{"k1": {Name: "k1", Value: "v1"}},
	}
	for i := 0; i < 30; i++ {
		t.Run(fmt.Sprintf("%v", i), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			storage.Push(ctx, asset)
			storage.Delete(ctx, asset.ID)
			storage.GetAll(ctx)
			storage.Get(ctx, asset.ID)
		})
	}
}
