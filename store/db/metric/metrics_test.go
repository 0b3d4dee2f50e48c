// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Push(ctx context.Context, asset model.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *mockStore) Get(ctx context.Context, id string) (model.Asset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Asset), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id string) (model.Asset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Asset), args.Error(1)
}

func (m *mockStore) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]model.Asset), args.Error(1)
}

func newTestMeasures() Measures {
	return Measures{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testQueries"},
			[]string{store.TypeLabel, OutcomeLabel},
		),
		CapacityUnitConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testCapacity"},
			[]string{store.TypeLabel, CapacityLabel},
		),
	}
}

func queries(m Measures, queryType, outcome string) float64 {
	return testutil.ToFloat64(m.Queries.With(prometheus.Labels{store.TypeLabel: queryType, OutcomeLabel: outcome}))
}

func TestInstrument(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	measures := newTestMeasures()

	m := new(mockStore)
	m.On("Push", ctx, mock.Anything).Return(nil)
	m.On("Get", ctx, "a1").Return(model.Asset{ID: "a1"}, nil)
	m.On("Get", ctx, "missing").Return(model.Asset{}, store.NotFoundError{ID: "missing"})
	m.On("Delete", ctx, "a1").Return(model.Asset{}, errors.New("connection reset"))
	m.On("GetAll", ctx).Return(map[string]model.Asset{}, nil)

	s := Instrument(m, measures)
	assert.NoError(s.Push(ctx, model.Asset{ID: "a1"}))
	asset, err := s.Get(ctx, "a1")
	assert.NoError(err)
	assert.Equal("a1", asset.ID)
	_, err = s.Get(ctx, "missing")
	assert.True(errors.Is(err, store.ErrAssetNotFound))
	_, err = s.Delete(ctx, "a1")
	assert.Error(err)
	_, err = s.GetAll(ctx)
	assert.NoError(err)

	assert.Equal(1.0, queries(measures, store.InsertType, SuccessOutcome))
	assert.Equal(2.0, queries(measures, store.ReadType, SuccessOutcome))
	assert.Equal(1.0, queries(measures, store.ReadType, NotFoundOutcome))
	assert.Equal(1.0, queries(measures, store.DeleteType, FailureOutcome))
	m.AssertExpectations(t)
}
