// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/mohammadbaghban/openremote/store/db/metric"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	DynamoDB = "dynamo"

	defaultTable      = "assets"
	defaultMaxRetries = 3
)

type Config struct {
	// Table is the name of the asset table. Its partition key must be the string attribute "id".
	// (Optional). Defaults to "assets".
	Table string

	// Endpoint overrides the AWS resolved endpoint, e.g. for dynamodb-local.
	// (Optional).
	Endpoint string

	Region string

	// MaxRetries is the maximum number of attempts per request.
	// (Optional). Defaults to 3.
	MaxRetries int

	// AccessKey and SecretKey are static credentials. When unset the
	// default AWS credential chain is used.
	AccessKey string
	SecretKey string
}

// DynamoClient adapts the dynamodb service to the asset store interface and
// accounts for consumed capacity.
type DynamoClient struct {
	s        service
	logger   *zap.Logger
	measures metric.Measures
}

func NewDynamoDB(ctx context.Context, config Config, measures metric.Measures, logger *zap.Logger) (store.S, error) {
	validateConfig(&config)

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
		awsconfig.WithRetryMaxAttempts(config.MaxRetries),
	}
	if config.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		))
	}
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	c := dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	return &DynamoClient{
		s:        newLoggingService(logger, newService(c, config.Table)),
		logger:   logger,
		measures: measures,
	}, nil
}

func (d *DynamoClient) Push(ctx context.Context, asset model.Asset) error {
	consumedCapacity, err := d.s.Push(ctx, asset)
	d.measureCapacity(consumedCapacity, store.InsertType)
	return err
}

func (d *DynamoClient) Get(ctx context.Context, id string) (model.Asset, error) {
	asset, consumedCapacity, err := d.s.Get(ctx, id)
	d.measureCapacity(consumedCapacity, store.ReadType)
	return asset, err
}

func (d *DynamoClient) Delete(ctx context.Context, id string) (model.Asset, error) {
	asset, consumedCapacity, err := d.s.Delete(ctx, id)
	d.measureCapacity(consumedCapacity, store.DeleteType)
	return asset, err
}

func (d *DynamoClient) GetAll(ctx context.Context) (map[string]model.Asset, error) {
	assets, consumedCapacity, err := d.s.GetAll(ctx)
	d.measureCapacity(consumedCapacity, store.ReadType)
	return assets, err
}

func (d *DynamoClient) measureCapacity(consumedCapacity *types.ConsumedCapacity, action string) {
	if consumedCapacity == nil {
		return
	}
	d.logger.Debug("updating consumed capacity", zap.String("action", action))
	add := func(capacity string, units *float64) {
		if units != nil {
			d.measures.CapacityUnitConsumed.With(prometheus.Labels{
				store.TypeLabel:      action,
				metric.CapacityLabel: capacity,
			}).Add(*units)
		}
	}
	add(metric.TotalCapacity, consumedCapacity.CapacityUnits)
	add(metric.ReadCapacity, consumedCapacity.ReadCapacityUnits)
	add(metric.WriteCapacity, consumedCapacity.WriteCapacityUnits)
}

func validateConfig(config *Config) {
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
}
