// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mohammadbaghban/openremote/model"
	"github.com/mohammadbaghban/openremote/mutator"
)

// Errors that can be returned by this package. Since some of these errors are returned wrapped, it
// is safest to use errors.Is() to check for them.
var (
	ErrUnknownKind    = errors.New("unknown widget kind")
	ErrDuplicateKind  = errors.New("widget kind already registered")
	ErrWidgetNotFound = errors.New("widget not found")
	ErrInvalidConfig  = errors.New("invalid widget configuration")
	ErrUnknownAction  = errors.New("unknown widget action")
	ErrInvalidAction  = errors.New("invalid widget action")
	ErrNilRegistry    = errors.New("registry cannot be nil")
	ErrNilMeasures    = errors.New("measures cannot be nil")
)

// Kind identifies a widget type.
type Kind string

const (
	KindChart Kind = "linechart"
	KindImage Kind = "image"
	KindWeb   Kind = "webpage"
)

// Action is a single settings edit requested by a client. Which fields are
// read depends on Name.
type Action struct {
	Name  string               `json:"-"`
	Ref   *model.AttributeRef  `json:"ref,omitempty"`
	Refs  []model.AttributeRef `json:"refs,omitempty"`
	Axis  string               `json:"axis,omitempty"`
	Bound string               `json:"bound,omitempty"`
	On    bool                 `json:"on,omitempty"`
	Value any                  `json:"value,omitempty"`
}

// Manifest describes a widget kind: how it is listed, its default and
// accepted configuration, the edits it supports and its settings view.
type Manifest interface {
	Kind() Kind
	DisplayName() string
	DisplayIcon() string
	MinColumnWidth() int
	MinColumnHeight() int

	// DefaultConfig returns the configuration of a newly added widget.
	DefaultConfig() model.WidgetConfig

	// DecodeConfig parses and validates a configuration document.
	DecodeConfig(data []byte) (model.WidgetConfig, error)

	// Apply commits the action's edits to c through m.
	Apply(m *mutator.Mutator, c model.WidgetConfig, a Action) (model.WidgetConfig, bool, error)

	// Settings returns what a settings panel needs to show c.
	Settings(c model.WidgetConfig, assets []model.Asset) any
}

// Registry maps widget kinds to their manifests.
type Registry struct {
	mu        sync.RWMutex
	manifests map[Kind]Manifest
}

func NewRegistry(manifests ...Manifest) (*Registry, error) {
	r := &Registry{manifests: make(map[Kind]Manifest, len(manifests))}
	for _, m := range manifests {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(m Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.manifests[m.Kind()]; ok {
		return fmt.Errorf("%s: %w", m.Kind(), ErrDuplicateKind)
	}
	r.manifests[m.Kind()] = m
	return nil
}

func (r *Registry) Lookup(k Kind) (Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.manifests[k]
	if !ok {
		return nil, fmt.Errorf("%q: %w", k, ErrUnknownKind)
	}
	return m, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.manifests))
	for k := range r.manifests {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

var validate = validator.New()

func decode[C any](data []byte) (C, error) {
	var c C
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validate.Struct(c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, nil
}

func configAs[C model.WidgetConfig](k Kind, c model.WidgetConfig) (C, error) {
	typed, ok := c.(C)
	if !ok {
		return typed, fmt.Errorf("%T is not a %s configuration: %w", c, k, ErrInvalidConfig)
	}
	return typed, nil
}
