// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (s *mockService) Push(ctx context.Context, asset model.Asset) (*types.ConsumedCapacity, error) {
	args := s.Called(ctx, asset)
	return args.Get(0).(*types.ConsumedCapacity), args.Error(1)
}

func (s *mockService) Get(ctx context.Context, id string) (model.Asset, *types.ConsumedCapacity, error) {
	args := s.Called(ctx, id)
	return args.Get(0).(model.Asset), args.Get(1).(*types.ConsumedCapacity), args.Error(2)
}

func (s *mockService) Delete(ctx context.Context, id string) (model.Asset, *types.ConsumedCapacity, error) {
	args := s.Called(ctx, id)
	return args.Get(0).(model.Asset), args.Get(1).(*types.ConsumedCapacity), args.Error(2)
}

func (s *mockService) GetAll(ctx context.Context) (map[string]model.Asset, *types.ConsumedCapacity, error) {
	args := s.Called(ctx)
	return args.Get(0).(map[string]model.Asset), args.Get(1).(*types.ConsumedCapacity), args.Error(2)
}

type mockClient struct {
	mock.Mock
}

func (c *mockClient) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (c *mockClient) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (c *mockClient) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func (c *mockClient) Scan(ctx context.Context, input *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}
