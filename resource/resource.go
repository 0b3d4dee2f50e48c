// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/mohammadbaghban/openremote/format"
	"github.com/mohammadbaghban/openremote/model"
)

// ErrRedundantSelection is reported when the selected override attribute is
// already the bound one. Such selections change nothing and notify no one.
var ErrRedundantSelection = errors.New("override attribute already selected")

// Version is a monotonically increasing cache-busting counter.
type Version struct {
	n atomic.Uint64
}

// Bump increments the version and returns the new value.
func (v *Version) Bump() uint64 {
	return v.n.Add(1)
}

func (v *Version) Current() uint64 {
	return v.n.Load()
}

// WithCacheBust appends the version as the "v" query parameter. Empty paths
// stay empty.
func WithCacheBust(path string, version uint64) string {
	if path == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "v=" + strconv.FormatUint(version, 10)
}

// AttributePath returns the formatted value of the override attribute when it
// is a usable path: non-empty and not the placeholder.
func AttributePath(c model.ResourceConfig, assets []model.Asset, f format.Formatter) (string, bool) {
	ref := c.OverrideRef()
	if ref == nil {
		return "", false
	}
	i := model.IndexOfAsset(assets, ref.ID)
	if i < 0 {
		return "", false
	}
	asset := assets[i]
	attr, ok := asset.Attribute(ref.Name)
	if !ok {
		return "", false
	}
	d := f.Describe(asset, ref.Name, attr)
	value := f.Format(attr, d, asset.Type, true, format.Placeholder)
	if value == "" || value == format.Placeholder {
		return "", false
	}
	return value, true
}

// Resolve returns the effective, cache-busted path of the resource, or the
// empty string when neither an attribute value nor a static path is set.
func Resolve(c model.ResourceConfig, assets []model.Asset, f format.Formatter, version uint64) string {
	path, ok := AttributePath(c, assets, f)
	if !ok {
		path = c.StaticPath()
	}
	return WithCacheBust(path, version)
}

// Tracker bumps a Version when the static path of a configuration is edited
// while no override attribute is bound.
type Tracker struct {
	version *Version
	last    string
	seen    bool
}

func NewTracker(v *Version) *Tracker {
	return &Tracker{version: v}
}

// Observe records the configuration's static path and reports whether the
// version was bumped.
func (t *Tracker) Observe(c model.ResourceConfig) bool {
	path := c.StaticPath()
	defer func() {
		t.last = path
		t.seen = true
	}()
	if !t.seen || path == t.last || c.OverrideRef() != nil {
		return false
	}
	t.version.Bump()
	return true
}

// SelectOverride returns the override ref a selection of refs results in. An
// empty selection clears the override. ErrRedundantSelection is returned when
// the selection equals the current override, including none for none.
func SelectOverride(current *model.AttributeRef, selected []model.AttributeRef) (*model.AttributeRef, error) {
	if len(selected) == 0 {
		if current == nil {
			return nil, ErrRedundantSelection
		}
		return nil, nil
	}
	next := selected[0]
	if current != nil && current.Equal(next) {
		return current, ErrRedundantSelection
	}
	return &next, nil
}
