// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errRegexCompilation = errors.New("regex could not be compiled")

type UserInputValidationConfig struct {
	AssetIDFormatRegex       string
	AttributeNameFormatRegex string
}

type handlersIn struct {
	fx.In
	Store     S
	Provider  *Provider
	Publisher Publisher `optional:"true"`
	Config    *transportConfig
}

// Handlers are the asset API handlers.
type Handlers struct {
	fx.Out
	Set             Handler `name:"set_asset_handler"`
	Get             Handler `name:"get_asset_handler"`
	GetAll          Handler `name:"get_all_assets_handler"`
	Delete          Handler `name:"delete_asset_handler"`
	UpdateAttribute Handler `name:"update_attribute_handler"`
}

// ProvideHandlers fetches all dependencies and builds the asset provider
// and the handlers of the asset API.
func ProvideHandlers() fx.Option {
	return fx.Provide(
		newTransportConfig,
		func(s S, logger *zap.Logger) (*Provider, error) {
			return NewProvider(s, logger)
		},
		newHandlers,
	)
}

func newHandlers(in handlersIn) Handlers {
	return Handlers{
		Set:             newSetAssetHandler(in.Store, in.Publisher, in.Config),
		Get:             newGetAssetHandler(in.Store, in.Config),
		GetAll:          newGetAllAssetsHandler(in.Store),
		Delete:          newDeleteAssetHandler(in.Store, in.Publisher, in.Config),
		UpdateAttribute: newUpdateAttributeHandler(in.Provider, in.Publisher, in.Config),
	}
}

func newTransportConfig(v UserInputValidationConfig) (*transportConfig, error) {
	idRegex, err := compile(v.AssetIDFormatRegex, AssetIDFormatRegexSource)
	if err != nil {
		return nil, fmt.Errorf("Asset ID %w: %v", errRegexCompilation, err)
	}
	nameRegex, err := compile(v.AttributeNameFormatRegex, AttributeNameFormatRegexSource)
	if err != nil {
		return nil, fmt.Errorf("Attribute name %w: %v", errRegexCompilation, err)
	}
	return &transportConfig{
		AssetIDFormatRegex:       idRegex,
		AttributeNameFormatRegex: nameRegex,
	}, nil
}
