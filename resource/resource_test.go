// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"testing"

	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/stretchr/testify/assert"
)

var urlRef = model.AttributeRef{ID: "cam", Name: "snapshotUrl"}

func assetWithURL(value any) model.Asset {
	return model.Asset{
		ID:   "cam",
		Type: "CameraAsset",
		Attributes: map[string]model.Attribute{
			"snapshotUrl": {Name: "snapshotUrl", Type: "text", Value: value},
		},
	}
}

func TestWithCacheBust(t *testing.T) {
	tcs := []struct {
		desc     string
		path     string
		version  uint64
		expected string
	}{
		{desc: "No query", path: "https://x/img.png", version: 3, expected: "https://x/img.png?v=3"},
		{desc: "Existing query", path: "https://x/img.png?a=1", version: 4, expected: "https://x/img.png?a=1&v=4"},
		{desc: "Zero version", path: "/img.png", expected: "/img.png?v=0"},
		{desc: "Empty", path: "", version: 9, expected: ""},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, WithCacheBust(tc.path, tc.version))
		})
	}
}

func TestResolve(t *testing.T) {
	tcs := []struct {
		desc     string
		config   model.ResourceConfig
		assets   []model.Asset
		expected string
	}{
		{
			desc:     "Static path",
			config:   model.ImageWidgetConfig{ImagePath: "/static.png"},
			expected: "/static.png?v=2",
		},
		{
			desc:     "Override value wins",
			config:   model.ImageWidgetConfig{ImagePath: "/static.png", ImageURLAttributeRef: &urlRef},
			assets:   []model.Asset{assetWithURL("https://cam/now.jpg")},
			expected: "https://cam/now.jpg?v=2",
		},
		{
			desc:     "Empty override value falls back",
			config:   model.WebWidgetConfig{PagePath: "https://example.com", PageURLAttributeRef: &urlRef},
			assets:   []model.Asset{assetWithURL("")},
			expected: "https://example.com?v=2",
		},
		{
			desc:     "Missing override value falls back",
			config:   model.WebWidgetConfig{PagePath: "https://example.com", PageURLAttributeRef: &urlRef},
			assets:   []model.Asset{assetWithURL(nil)},
			expected: "https://example.com?v=2",
		},
		{
			desc:     "Override asset not loaded",
			config:   model.WebWidgetConfig{PagePath: "https://example.com", PageURLAttributeRef: &urlRef},
			expected: "https://example.com?v=2",
		},
		{
			desc:   "Nothing to show",
			config: model.ImageWidgetConfig{},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.config, tc.assets, format.Default{}, 2))
		})
	}
}

func TestVersion(t *testing.T) {
	var v Version
	assert.Equal(t, uint64(0), v.Current())
	assert.Equal(t, uint64(1), v.Bump())
	assert.Equal(t, uint64(2), v.Bump())
	assert.Equal(t, uint64(2), v.Current())
}

func TestTracker(t *testing.T) {
	assert := assert.New(t)
	var v Version
	tr := NewTracker(&v)

	assert.False(tr.Observe(model.ImageWidgetConfig{ImagePath: "/a.png"}))
	assert.False(tr.Observe(model.ImageWidgetConfig{ImagePath: "/a.png"}))
	assert.True(tr.Observe(model.ImageWidgetConfig{ImagePath: "/b.png"}))
	assert.Equal(uint64(1), v.Current())

	assert.False(tr.Observe(model.ImageWidgetConfig{ImagePath: "/c.png", ImageURLAttributeRef: &urlRef}))
	assert.Equal(uint64(1), v.Current())

	assert.True(tr.Observe(model.ImageWidgetConfig{ImagePath: "/d.png"}))
	assert.Equal(uint64(2), v.Current())
}

func TestSelectOverride(t *testing.T) {
	other := model.AttributeRef{ID: "cam", Name: "other"}
	tcs := []struct {
		desc        string
		current     *model.AttributeRef
		selected    []model.AttributeRef
		expected    *model.AttributeRef
		expectedErr error
	}{
		{desc: "None to none", expectedErr: ErrRedundantSelection},
		{desc: "Select", selected: []model.AttributeRef{urlRef}, expected: &urlRef},
		{desc: "Same", current: &urlRef, selected: []model.AttributeRef{{ID: "cam", Name: "snapshotUrl"}}, expected: &urlRef, expectedErr: ErrRedundantSelection},
		{desc: "Change", current: &urlRef, selected: []model.AttributeRef{other}, expected: &other},
		{desc: "Clear", current: &urlRef},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)
			next, err := SelectOverride(tc.current, tc.selected)
			assert.True(errors.Is(err, tc.expectedErr))
			assert.Equal(tc.expected, next)
		})
	}
}
