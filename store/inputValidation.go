// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/mohammadbaghban/openremote/model"
)

// Default values for user input validation. Override them through
// UserInputValidationConfig.
const (
	AssetIDFormatRegexSource       = "^[0-9A-Za-z_-]{1,64}$"
	AttributeNameFormatRegexSource = "^[0-9A-Za-z_.-]{1,128}$"
)

var (
	errInvalidID            = BadRequestErr{Message: "Invalid asset ID format."}
	errIDMismatch           = BadRequestErr{Message: "IDs must match between the URL and payload."}
	errInvalidAttributeName = BadRequestErr{Message: "Invalid attribute name format."}
	errAttributeNameMatch   = BadRequestErr{Message: "Attribute names must match their keys."}
)

var validate = validator.New()

// validateAssetPathVars returns a pertinent HTTP-coded error if any of the
// input variables are invalid, nil otherwise.
func validateAssetPathVars(config *transportConfig, id string) error {
	if !config.AssetIDFormatRegex.MatchString(id) {
		return errInvalidID
	}
	return nil
}

func validateAttributeName(config *transportConfig, name string) error {
	if !config.AttributeNameFormatRegex.MatchString(name) {
		return errInvalidAttributeName
	}
	return nil
}

// validateAsset checks a decoded asset against the URL id. A payload without
// an id takes the URL's. Attributes without a name take their key.
func validateAsset(config *transportConfig, asset *model.Asset, id string) error {
	if asset.ID == "" {
		asset.ID = id
	}
	if asset.ID != id {
		return errIDMismatch
	}
	if err := validate.Struct(asset); err != nil {
		return BadRequestErr{Message: err.Error()}
	}
	for name, attr := range asset.Attributes {
		if err := validateAttributeName(config, name); err != nil {
			return err
		}
		switch attr.Name {
		case "":
			attr.Name = name
			asset.Attributes[name] = attr
		case name:
		default:
			return errAttributeNameMatch
		}
	}
	return nil
}

func compile(source, fallback string) (*regexp.Regexp, error) {
	if len(source) == 0 {
		source = fallback
	}
	return regexp.Compile(source)
}
