// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"

	"github.com/mohammadbaghban/openremote/store"
	"github.com/mohammadbaghban/openremote/store/cassandra"
	"github.com/mohammadbaghban/openremote/store/db/metric"
	"github.com/mohammadbaghban/openremote/store/dynamodb"
	"github.com/mohammadbaghban/openremote/store/inmem"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Configs struct {
	Dynamo   *dynamodb.Config
	Yugabyte *cassandra.Config
}

type SetupIn struct {
	fx.In
	Configs  Configs
	Measures metric.Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		metric.ProvideMetrics(),
		fx.Provide(
			SetupStore,
		),
	)
}

// SetupStore picks the backend from configuration: dynamodb, then yugabyte,
// then the in memory store. Every backend is instrumented.
func SetupStore(in SetupIn) (store.S, error) {
	s, err := newBackend(in)
	if err != nil {
		return nil, err
	}
	return metric.Instrument(s, in.Measures), nil
}

func newBackend(in SetupIn) (store.S, error) {
	if in.Configs.Dynamo != nil {
		in.Logger.Info("using dynamodb store implementation")
		return dynamodb.NewDynamoDB(context.Background(), *in.Configs.Dynamo, in.Measures, in.Logger)
	}
	if in.Configs.Yugabyte != nil {
		in.Logger.Info("using yugabyte store implementation")
		return cassandra.NewCassandra(*in.Configs.Yugabyte, in.Measures, in.LC, in.Logger)
	}
	in.Logger.Info("using in memory store implementation")
	return inmem.NewInMem(), nil
}
