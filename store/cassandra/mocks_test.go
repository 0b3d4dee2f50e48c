// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/stretchr/testify/mock"
)

type mockDB struct {
	mock.Mock
}

func (s *mockDB) Push(ctx context.Context, asset model.Asset) error {
	args := s.Called(asset)
	return args.Error(0)
}

func (s *mockDB) Get(ctx context.Context, id string) (model.Asset, error) {
	args := s.Called(id)
	return args.Get(0).(model.Asset), args.Error(1)
}

func (s *mockDB) Delete(ctx context.Context, id string) (model.Asset, error) {
	args := s.Called(id)
	return args.Get(0).(model.Asset), args.Error(1)
}

func (s *mockDB) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	args := s.Called()
	return args.Get(0).(map[string]model.Asset), args.Error(1)
}

func (s *mockDB) Close() {
	s.Called()
}

func (s *mockDB) Ping() error {
	args := s.Called()
	return args.Error(0)
}
