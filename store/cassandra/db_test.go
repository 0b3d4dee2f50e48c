// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/mohammadbaghban/openremote/store/db/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testAsset = model.Asset{
	ID:   "earth",
	Name: "Louis Armstrong",
	Attributes: map[string]model.Attribute{
		"year": {Name: "year", Type: "number", Value: float64(1967)},
	},
}

func newTestClient(db dbStore) (*CassandraClient, metric.Measures) {
	measures := metric.Measures{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testQueries"},
			[]string{store.TypeLabel, metric.OutcomeLabel},
		),
	}
	return &CassandraClient{client: db, logger: zap.NewNop(), measures: measures}, measures
}

func TestCassandra(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	connErr := errors.New("connection reset")

	mockDB := &mockDB{}
	mockDB.On("Push", testAsset).Return(nil).Once()
	mockDB.On("Push", testAsset).Return(connErr).Once()
	mockDB.On("Get", "earth").Return(testAsset, nil).Once()
	mockDB.On("Get", "earth").Return(model.Asset{}, errNoDataResponse).Once()
	mockDB.On("Delete", "earth").Return(testAsset, nil).Once()
	mockDB.On("GetAll").Return(map[string]model.Asset{"earth": testAsset}, nil).Once()

	client, _ := newTestClient(mockDB)

	assert.NoError(client.Push(ctx, testAsset))
	err := client.Push(ctx, testAsset)
	var sErr store.SanitizedError
	assert.True(errors.As(err, &sErr))
	assert.Equal(http.StatusInternalServerError, sErr.StatusCode())
	assert.True(errors.Is(err, connErr))

	asset, err := client.Get(ctx, "earth")
	assert.NoError(err)
	assert.Equal(testAsset, asset)
	_, err = client.Get(ctx, "earth")
	assert.True(errors.Is(err, store.ErrAssetNotFound))

	asset, err = client.Delete(ctx, "earth")
	assert.NoError(err)
	assert.Equal(testAsset, asset)

	assets, err := client.GetAll(ctx)
	assert.NoError(err)
	assert.Equal(map[string]model.Asset{"earth": testAsset}, assets)
	mockDB.AssertExpectations(t)
}

func TestPing(t *testing.T) {
	assert := assert.New(t)
	mockDB := &mockDB{}
	mockDB.On("Ping").Return(nil).Once()
	mockDB.On("Ping").Return(errServerClosed).Once()

	client, measures := newTestClient(mockDB)
	assert.NoError(client.Ping())
	err := client.Ping()
	assert.True(errors.Is(err, errServerClosed))

	pings := func(outcome string) float64 {
		return testutil.ToFloat64(measures.Queries.With(prometheus.Labels{store.TypeLabel: store.PingType, metric.OutcomeLabel: outcome}))
	}
	assert.Equal(1.0, pings(metric.SuccessOutcome))
	assert.Equal(1.0, pings(metric.FailureOutcome))
}

func TestPingEvery(t *testing.T) {
	pinged := make(chan struct{}, 1)
	mockDB := &mockDB{}
	mockDB.On("Ping").Return(nil).Run(func(mock.Arguments) {
		select {
		case pinged <- struct{}{}:
		default:
		}
	})

	client, _ := newTestClient(mockDB)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		client.pingEvery(time.Millisecond, done)
		close(stopped)
	}()

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("connection was never pinged")
	}
	close(done)
	<-stopped
}

func TestCreateCassandraClientNoHosts(t *testing.T) {
	_, err := CreateCassandraClient(Config{}, metric.Measures{}, zap.NewNop())
	assert.Equal(t, errNoHosts, err)
}

func TestValidateConfig(t *testing.T) {
	assert := assert.New(t)
	config := Config{NumRetries: -1}
	validateConfig(&config)
	assert.Equal(defaultOpTimeout, config.OpTimeout)
	assert.Equal(defaultDatabase, config.Database)
	assert.Equal(defaultNumRetries, config.NumRetries)
	assert.Equal(time.Duration(defaultWaitTimeMult), config.WaitTimeMult)
	assert.Equal(defaultMaxNumberConnsPerHost, config.MaxConnsPerHost)
	assert.Equal(defaultPingInterval, config.PingInterval)
}
