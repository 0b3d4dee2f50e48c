// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"testing"

	"github.com/mohammadbaghban/openremote/model"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	events    []model.AttributeEvent
	forgotten []string
}

func (r *recorder) Publish(e model.AttributeEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) Forget(assetID string) {
	r.forgotten = append(r.forgotten, assetID)
}

func snapshot(value any, timestamp int64) []model.Asset {
	return []model.Asset{
		{ID: "a1", Attributes: map[string]model.Attribute{
			"temp": {Name: "temp", Value: value, Timestamp: timestamp},
		}},
	}
}

func TestDiffer(t *testing.T) {
	assert := assert.New(t)
	temp := model.AttributeRef{ID: "a1", Name: "temp"}
	r := new(recorder)
	d := NewDiffer(r)

	d.Update(snapshot(20.0, 1))
	assert.Empty(r.events, "the first snapshot only seeds")

	d.Update(snapshot(20.0, 1))
	assert.Empty(r.events)

	d.Update(snapshot(21.0, 2))
	assert.Equal([]model.AttributeEvent{{Ref: temp, Value: 21.0, Timestamp: 2}}, r.events)

	// same value written again
	d.Update(snapshot(21.0, 3))
	assert.Len(r.events, 2)

	d.Publish(model.AttributeEvent{Ref: temp, Value: 22.0, Timestamp: 4})
	assert.Len(r.events, 3)
	d.Update(snapshot(22.0, 4))
	assert.Len(r.events, 3, "published events are not reported again")

	d.Update(append(snapshot(22.0, 4), model.Asset{ID: "a2", Attributes: map[string]model.Attribute{
		"url": {Name: "url", Value: "https://x"},
	}}))
	assert.Len(r.events, 4)
	assert.Equal(model.AttributeRef{ID: "a2", Name: "url"}, r.events[3].Ref)
}

func TestDifferForget(t *testing.T) {
	assert := assert.New(t)
	temp := model.AttributeRef{ID: "a1", Name: "temp"}
	r := new(recorder)
	d := NewDiffer(r)

	d.Update(snapshot(20.0, 1))
	d.Update(snapshot(20.0, 1))
	assert.Empty(r.events)

	// the asset was replaced with the same value
	d.Forget("a1")
	assert.Equal([]string{"a1"}, r.forgotten)
	d.Update(snapshot(20.0, 1))
	assert.Equal([]model.AttributeEvent{{Ref: temp, Value: 20.0, Timestamp: 1}}, r.events)

	d.Update(snapshot(20.0, 1))
	assert.Len(r.events, 1)
}
