// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mohammadbaghban/openremote/model"
	"go.uber.org/zap"
)

type loggingService struct {
	service
	logger *zap.Logger
}

func newLoggingService(logger *zap.Logger, s service) service {
	return &loggingService{service: s, logger: logger}
}

func (s *loggingService) GetAll(ctx context.Context) (assets map[string]model.Asset, consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() {
		s.logger.Debug("scanned asset table", zap.Int("assets", len(assets)), zap.Error(err))
	}()
	assets, consumedCapacity, err = s.service.GetAll(ctx)
	return
}
