// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

func newGetAssetEndpoint(s S) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		assetRequest := request.(*getOrDeleteAssetRequest)
		asset, err := s.Get(ctx, assetRequest.id)
		if err != nil {
			return nil, err
		}
		return &asset, nil
	}
}

func newDeleteAssetEndpoint(s S, publisher Publisher) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		assetRequest := request.(*getOrDeleteAssetRequest)
		asset, err := s.Delete(ctx, assetRequest.id)
		if err != nil {
			return nil, err
		}
		if publisher != nil {
			publisher.Forget(assetRequest.id)
		}
		return &asset, nil
	}
}

func newGetAllAssetsEndpoint(s S) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return s.GetAll(ctx)
	}
}

func newSetAssetEndpoint(s S, publisher Publisher) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		setRequest := request.(*setAssetRequest)
		_, err := s.Get(ctx, setRequest.asset.ID)
		existing := err == nil
		if err != nil && !errors.Is(err, ErrAssetNotFound) {
			return nil, err
		}

		if err := s.Push(ctx, setRequest.asset); err != nil {
			return nil, err
		}
		if publisher != nil {
			publisher.Forget(setRequest.asset.ID)
		}
		return &setAssetResponse{existingResource: existing}, nil
	}
}

// newUpdateAttributeEndpoint stores the value and then pushes it to live
// subscribers.
func newUpdateAttributeEndpoint(p *Provider, publisher Publisher) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		updateRequest := request.(*updateAttributeRequest)
		e, err := p.UpdateAttribute(ctx, updateRequest.event)
		if err != nil {
			return nil, err
		}
		if publisher != nil {
			publisher.Publish(e)
		}
		return &e, nil
	}
}
