// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/store"
	"github.com/xmidt-org/httpaux/erraux"
)

// client captures the methods of interest from the dynamoDB API. This
// should help mock API calls as well.
type client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// service defines the dynamodb specific DAO interface. It helps keeping middleware
// such as logging and instrumentation orthogonal to business logic.
type service interface {
	Push(ctx context.Context, asset model.Asset) (*types.ConsumedCapacity, error)
	Get(ctx context.Context, id string) (model.Asset, *types.ConsumedCapacity, error)
	Delete(ctx context.Context, id string) (model.Asset, *types.ConsumedCapacity, error)
	GetAll(ctx context.Context) (map[string]model.Asset, *types.ConsumedCapacity, error)
}

// executor satisfies the service interface so DynamoClient can then adapt the
// outputs to match the asset store interface.
type executor struct {
	// c is the dynamodb client
	c client

	// tableName is the name of the dynamodb table
	tableName string
}

type storableAsset struct {
	ID         string                     `dynamodbav:"id"`
	Name       string                     `dynamodbav:"name"`
	Type       string                     `dynamodbav:"type"`
	Attributes map[string]model.Attribute `dynamodbav:"attributes"`
}

// Dynamo DB attribute keys
const (
	idAttributeKey = "id"
)

var (
	errDefaultDynamoDBFailure = &erraux.Error{
		Err:  errors.New("dynamodb operation failed"),
		Code: http.StatusInternalServerError,
	}
	errBadRequest = &erraux.Error{
		Err:  errors.New("bad request to dynamodb"),
		Code: http.StatusBadRequest,
	}
)

func handleClientError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		return store.SanitizedError{Err: err, ErrHTTP: errBadRequest}
	}
	return store.SanitizedError{Err: err, ErrHTTP: errDefaultDynamoDBFailure}
}

func toStorable(asset model.Asset) storableAsset {
	return storableAsset{
		ID:         asset.ID,
		Name:       asset.Name,
		Type:       asset.Type,
		Attributes: asset.Attributes,
	}
}

func (s storableAsset) asset() model.Asset {
	return model.Asset{
		ID:         s.ID,
		Name:       s.Name,
		Type:       s.Type,
		Attributes: s.Attributes,
	}
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		idAttributeKey: &types.AttributeValueMemberS{Value: id},
	}
}

func (d *executor) Push(ctx context.Context, asset model.Asset) (*types.ConsumedCapacity, error) {
	av, err := attributevalue.MarshalMap(toStorable(asset))
	if err != nil {
		return nil, err
	}
	input := &dynamodb.PutItemInput{
		Item:                   av,
		TableName:              aws.String(d.tableName),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}

	result, err := d.c.PutItem(ctx, input)
	var consumedCapacity *types.ConsumedCapacity
	if result != nil {
		consumedCapacity = result.ConsumedCapacity
	}

	if err != nil {
		return consumedCapacity, handleClientError(err)
	}
	return consumedCapacity, nil
}

func (d *executor) executeGetOrDelete(ctx context.Context, id string, delete bool) (*types.ConsumedCapacity, map[string]types.AttributeValue, error) {
	if delete {
		deleteOutput, err := d.c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:              aws.String(d.tableName),
			Key:                    keyOf(id),
			ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
			ReturnValues:           types.ReturnValueAllOld,
		})
		if err != nil {
			return nil, nil, err
		}
		return deleteOutput.ConsumedCapacity, deleteOutput.Attributes, nil
	}
	getOutput, err := d.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    keyOf(id),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, nil, err
	}
	return getOutput.ConsumedCapacity, getOutput.Item, nil
}

func (d *executor) getOrDelete(ctx context.Context, id string, delete bool) (model.Asset, *types.ConsumedCapacity, error) {
	consumedCapacity, attributes, err := d.executeGetOrDelete(ctx, id, delete)
	if err != nil {
		return model.Asset{}, consumedCapacity, handleClientError(err)
	}
	if len(attributes) == 0 {
		return model.Asset{}, consumedCapacity, store.NotFoundError{ID: id}
	}

	var stored storableAsset
	if err := attributevalue.UnmarshalMap(attributes, &stored); err != nil {
		return model.Asset{}, consumedCapacity, err
	}
	if stored.ID == "" {
		return model.Asset{}, consumedCapacity, store.NotFoundError{ID: id}
	}
	return stored.asset(), consumedCapacity, nil
}

func (d *executor) Get(ctx context.Context, id string) (model.Asset, *types.ConsumedCapacity, error) {
	return d.getOrDelete(ctx, id, false)
}

func (d *executor) Delete(ctx context.Context, id string) (model.Asset, *types.ConsumedCapacity, error) {
	return d.getOrDelete(ctx, id, true)
}

// GetAll scans the whole table, following LastEvaluatedKey across pages.
func (d *executor) GetAll(ctx context.Context) (map[string]model.Asset, *types.ConsumedCapacity, error) {
	var (
		result           = map[string]model.Asset{}
		consumedCapacity *types.ConsumedCapacity
		startKey         map[string]types.AttributeValue
	)
	for {
		output, err := d.c.Scan(ctx, &dynamodb.ScanInput{
			TableName:              aws.String(d.tableName),
			ExclusiveStartKey:      startKey,
			ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
		})
		if output != nil {
			consumedCapacity = addCapacity(consumedCapacity, output.ConsumedCapacity)
		}
		if err != nil {
			return map[string]model.Asset{}, consumedCapacity, handleClientError(err)
		}

		for _, item := range output.Items {
			var stored storableAsset
			if err := attributevalue.UnmarshalMap(item, &stored); err != nil || stored.ID == "" {
				continue
			}
			result[stored.ID] = stored.asset()
		}

		if len(output.LastEvaluatedKey) == 0 {
			return result, consumedCapacity, nil
		}
		startKey = output.LastEvaluatedKey
	}
}

func addCapacity(total, page *types.ConsumedCapacity) *types.ConsumedCapacity {
	if page == nil {
		return total
	}
	if total == nil {
		total = &types.ConsumedCapacity{TableName: page.TableName}
	}
	total.CapacityUnits = sum(total.CapacityUnits, page.CapacityUnits)
	total.ReadCapacityUnits = sum(total.ReadCapacityUnits, page.ReadCapacityUnits)
	total.WriteCapacityUnits = sum(total.WriteCapacityUnits, page.WriteCapacityUnits)
	return total
}

func sum(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return aws.Float64(*a + *b)
}

func newService(c client, tableName string) service {
	return &executor{
		c:         c,
		tableName: tableName,
	}
}
