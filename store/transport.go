// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/mohammadbaghban/openremote/model"
)

const (
	assetIDVarKey       = "assetId"
	attributeNameVarKey = "name"
)

const (
	assetIDVarMissingMsg       = "{assetId} URL path parameter missing"
	attributeNameVarMissingMsg = "{name} URL path parameter missing"
)

// Response Headers
const (
	ErrorHeaderKey = "X-Widget-Error"
)

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

type transportConfig struct {
	AssetIDFormatRegex       *regexp.Regexp
	AttributeNameFormatRegex *regexp.Regexp
}

type getOrDeleteAssetRequest struct {
	id string
}

type setAssetRequest struct {
	asset model.Asset
}

type setAssetResponse struct {
	existingResource bool
}

type updateAttributeRequest struct {
	event model.AttributeEvent
}

// attributeValue is the body of an attribute update.
type attributeValue struct {
	Value     any   `json:"value"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

func assetID(config *transportConfig, r *http.Request) (string, error) {
	id, ok := mux.Vars(r)[assetIDVarKey]
	if !ok {
		return "", &BadRequestErr{Message: assetIDVarMissingMsg}
	}
	if err := validateAssetPathVars(config, id); err != nil {
		return "", err
	}
	return id, nil
}

func getOrDeleteAssetRequestDecoder(config *transportConfig) kithttp.DecodeRequestFunc {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		id, err := assetID(config, r)
		if err != nil {
			return nil, err
		}
		return &getOrDeleteAssetRequest{id: id}, nil
	}
}

func decodeGetAllAssetsRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

func setAssetRequestDecoder(config *transportConfig) kithttp.DecodeRequestFunc {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		id, err := assetID(config, r)
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &BadRequestErr{Message: "failed to read body"}
		}

		asset := model.Asset{}
		if err := json.Unmarshal(data, &asset); err != nil {
			return nil, &BadRequestErr{Message: "failed to unmarshal json"}
		}

		if err := validateAsset(config, &asset, id); err != nil {
			return nil, err
		}
		return &setAssetRequest{asset: asset}, nil
	}
}

func updateAttributeRequestDecoder(config *transportConfig) kithttp.DecodeRequestFunc {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		id, err := assetID(config, r)
		if err != nil {
			return nil, err
		}
		name, ok := mux.Vars(r)[attributeNameVarKey]
		if !ok {
			return nil, &BadRequestErr{Message: attributeNameVarMissingMsg}
		}
		if err := validateAttributeName(config, name); err != nil {
			return nil, err
		}

		var body attributeValue
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, &BadRequestErr{Message: "failed to unmarshal json"}
		}
		return &updateAttributeRequest{
			event: model.AttributeEvent{
				Ref:       model.AttributeRef{ID: id, Name: name},
				Value:     body.Value,
				Timestamp: body.Timestamp,
			},
		}, nil
	}
}

func encodeSetAssetResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(*setAssetResponse)
	if !ok {
		return ErrCasting
	}
	if r.existingResource {
		rw.WriteHeader(http.StatusOK)
	} else {
		rw.WriteHeader(http.StatusCreated)
	}
	return nil
}

func encodeGetAllAssetsResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	assets, ok := response.(map[string]model.Asset)
	if !ok {
		return ErrCasting
	}
	return encodeJSON(rw, AssetList(assets))
}

func encodeGetOrDeleteAssetResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	asset, ok := response.(*model.Asset)
	if !ok {
		return ErrCasting
	}
	return encodeJSON(rw, asset)
}

func encodeUpdateAttributeResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	e, ok := response.(*model.AttributeEvent)
	if !ok {
		return ErrCasting
	}
	return encodeJSON(rw, e)
}

func encodeJSON(rw http.ResponseWriter, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rw.Header().Add("Content-Type", "application/json")
	_, err = rw.Write(data)
	return err
}

// EncodeError writes err's status code and message. Errors carrying a
// sanitized message never leak the underlying cause.
func EncodeError(ctx context.Context, err error, w http.ResponseWriter) {
	message := err.Error()
	var sanitized interface{ Sanitized() string }
	if errors.As(err, &sanitized) {
		message = sanitized.Sanitized()
	}
	w.Header().Set(ErrorHeaderKey, message)

	var headerer kithttp.Headerer
	if errors.As(err, &headerer) {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	w.WriteHeader(code)
}
