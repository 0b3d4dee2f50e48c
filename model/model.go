// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

// AttributeRef identifies one live data point.
type AttributeRef struct {
	// ID is the id of the asset owning the attribute.
	ID string `json:"id" validate:"required"`

	// Name is the attribute name within the asset.
	Name string `json:"name" validate:"required"`
}

// Equal reports whether both refs point at the same attribute.
func (r AttributeRef) Equal(o AttributeRef) bool {
	return r.ID == o.ID && r.Name == o.Name
}

func (r AttributeRef) String() string {
	return r.ID + ":" + r.Name
}

// ContainsRef reports whether refs holds a ref structurally equal to ref.
func ContainsRef(refs []AttributeRef, ref AttributeRef) bool {
	return IndexOfRef(refs, ref) >= 0
}

// IndexOfRef returns the position of ref in refs or -1.
func IndexOfRef(refs []AttributeRef, ref AttributeRef) int {
	for i, r := range refs {
		if r.Equal(ref) {
			return i
		}
	}
	return -1
}

// Attribute is a typed, named data point belonging to an asset.
type Attribute struct {
	Name string `json:"name"`

	// Type is the value type name, e.g. "number" or "colourRGB".
	Type string `json:"type"`

	Value any `json:"value,omitempty"`

	// Timestamp is the unix time in milliseconds of the last value change.
	Timestamp int64 `json:"timestamp,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`
}

// Asset is an immutable snapshot of a named entity and its attributes as last
// observed. Updates produce new snapshots through WithAttributeValue.
type Asset struct {
	ID         string               `json:"id" validate:"required"`
	Name       string               `json:"name"`
	Type       string               `json:"type"`
	Attributes map[string]Attribute `json:"attributes"`
}

// Attribute returns the named attribute of the asset.
func (a Asset) Attribute(name string) (Attribute, bool) {
	attr, ok := a.Attributes[name]
	return attr, ok
}

// WithAttributeValue returns a copy of the asset with the event's value merged
// into the referenced attribute. The receiver is left untouched.
func (a Asset) WithAttributeValue(e AttributeEvent) Asset {
	next := a
	next.Attributes = make(map[string]Attribute, len(a.Attributes)+1)
	for k, v := range a.Attributes {
		next.Attributes[k] = v
	}

	attr, ok := next.Attributes[e.Ref.Name]
	if !ok {
		attr = Attribute{Name: e.Ref.Name}
	}
	attr.Value = e.Value
	attr.Timestamp = e.Timestamp
	next.Attributes[e.Ref.Name] = attr
	return next
}

// IndexOfAsset returns the position of the asset with the given id or -1.
func IndexOfAsset(assets []Asset, id string) int {
	for i, a := range assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// AttributeEvent is a pushed attribute value change.
type AttributeEvent struct {
	Ref       AttributeRef `json:"ref"`
	Value     any          `json:"value,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
}
