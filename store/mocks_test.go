// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/stretchr/testify/mock"
)

type MockDAO struct {
	mock.Mock
}

func (m *MockDAO) Push(ctx context.Context, asset model.Asset) error {
	args := m.Called(asset)
	return args.Error(0)
}

func (m *MockDAO) Get(ctx context.Context, id string) (model.Asset, error) {
	args := m.Called(id)
	return args.Get(0).(model.Asset), args.Error(1)
}

func (m *MockDAO) Delete(ctx context.Context, id string) (model.Asset, error) {
	args := m.Called(id)
	return args.Get(0).(model.Asset), args.Error(1)
}

func (m *MockDAO) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	args := m.Called()
	return args.Get(0).(map[string]model.Asset), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(e model.AttributeEvent) {
	m.Called(e)
}

func (m *mockPublisher) Forget(assetID string) {
	m.Called(assetID)
}
