// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"go.uber.org/zap"
)

type dbStore interface {
	store.S
	Close()
	Ping() error
}

var (
	errNoDataResponse = errors.New("no data from query")
	errServerClosed   = errors.New("server is closed")
)

type cassandraExecutor struct {
	session *gocql.Session
	logger  *zap.Logger
}

func connect(clusterConfig *gocql.ClusterConfig, logger *zap.Logger) (dbStore, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{session: session, logger: logger}, nil
}

func (s *cassandraExecutor) Push(ctx context.Context, asset model.Asset) error {
	data, err := json.Marshal(&asset)
	if err != nil {
		return err
	}

	return s.session.Query("INSERT INTO assets (id, data) VALUES (?,?)", asset.ID, data).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) Get(ctx context.Context, id string) (model.Asset, error) {
	var data []byte
	iter := s.session.Query("SELECT data from assets WHERE id = ?", id).WithContext(ctx).Iter()
	defer func() {
		if err := iter.Close(); err != nil {
			s.logger.Error("failed to close iter", zap.String("assetId", id), zap.Error(err))
		}
	}()
	for iter.Scan(&data) {
		asset := model.Asset{}
		err := json.Unmarshal(data, &asset)
		return asset, err
	}
	return model.Asset{}, errNoDataResponse
}

func (s *cassandraExecutor) Delete(ctx context.Context, id string) (model.Asset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return asset, err
	}
	err = s.session.Query("DELETE from assets WHERE id = ?", id).WithContext(ctx).Exec()
	return asset, err
}

func (s *cassandraExecutor) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	result := map[string]model.Asset{}
	var (
		id   string
		data []byte
	)
	iter := s.session.Query("SELECT id, data from assets").WithContext(ctx).Iter()
	for iter.Scan(&id, &data) {
		asset := model.Asset{}
		if err := json.Unmarshal(data, &asset); err != nil {
			s.logger.Error("failed to unmarshal data", zap.String("assetId", id), zap.Error(err))
			continue
		}
		result[id] = asset
	}
	err := iter.Close()
	return result, err
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return errServerClosed
	}
	return nil
}
