// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
)

type Handler http.Handler

func newSetAssetHandler(s S, publisher Publisher, config *transportConfig) Handler {
	return kithttp.NewServer(
		newSetAssetEndpoint(s, publisher),
		setAssetRequestDecoder(config),
		encodeSetAssetResponse,
		kithttp.ServerErrorEncoder(EncodeError),
	)
}

func newGetAssetHandler(s S, config *transportConfig) Handler {
	return kithttp.NewServer(
		newGetAssetEndpoint(s),
		getOrDeleteAssetRequestDecoder(config),
		encodeGetOrDeleteAssetResponse,
		kithttp.ServerErrorEncoder(EncodeError),
	)
}

func newGetAllAssetsHandler(s S) Handler {
	return kithttp.NewServer(
		newGetAllAssetsEndpoint(s),
		decodeGetAllAssetsRequest,
		encodeGetAllAssetsResponse,
		kithttp.ServerErrorEncoder(EncodeError),
	)
}

func newDeleteAssetHandler(s S, publisher Publisher, config *transportConfig) Handler {
	return kithttp.NewServer(
		newDeleteAssetEndpoint(s, publisher),
		getOrDeleteAssetRequestDecoder(config),
		encodeGetOrDeleteAssetResponse,
		kithttp.ServerErrorEncoder(EncodeError),
	)
}

func newUpdateAttributeHandler(p *Provider, publisher Publisher, config *transportConfig) Handler {
	return kithttp.NewServer(
		newUpdateAttributeEndpoint(p, publisher),
		updateAttributeRequestDecoder(config),
		encodeUpdateAttributeResponse,
		kithttp.ServerErrorEncoder(EncodeError),
	)
}
