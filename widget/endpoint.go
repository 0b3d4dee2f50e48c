// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"context"

	"github.com/go-kit/kit/endpoint"
)

func newCreateWidgetEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		createRequest := request.(*createWidgetRequest)
		i, err := d.Create(ctx, createRequest.kind, createRequest.document)
		if err != nil {
			return nil, err
		}
		v := i.View()
		return &v, nil
	}
}

func newListWidgetsEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(_ context.Context, _ interface{}) (interface{}, error) {
		list := d.List()
		views := make([]View, 0, len(list))
		for _, i := range list {
			views = append(views, i.View())
		}
		return views, nil
	}
}

func newListKindsEndpoint(r *Registry) endpoint.Endpoint {
	return func(_ context.Context, _ interface{}) (interface{}, error) {
		kinds := r.Kinds()
		descriptors := make([]KindDescriptor, 0, len(kinds))
		for _, k := range kinds {
			m, err := r.Lookup(k)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, KindDescriptor{
				Kind:            m.Kind(),
				DisplayName:     m.DisplayName(),
				DisplayIcon:     m.DisplayIcon(),
				MinColumnWidth:  m.MinColumnWidth(),
				MinColumnHeight: m.MinColumnHeight(),
			})
		}
		return descriptors, nil
	}
}

func newGetWidgetEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		i, err := d.Get(request.(*widgetRequest).id)
		if err != nil {
			return nil, err
		}
		v := i.View()
		return &v, nil
	}
}

func newDeleteWidgetEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		return nil, d.Delete(request.(*widgetRequest).id)
	}
}

func newGetSettingsEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		i, err := d.Get(request.(*widgetRequest).id)
		if err != nil {
			return nil, err
		}
		return i.Settings(), nil
	}
}

func newReconfigureEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		reconfigureRequest := request.(*reconfigureRequest)
		i, err := d.Reconfigure(ctx, reconfigureRequest.id, reconfigureRequest.document)
		if err != nil {
			return nil, err
		}
		v := i.View()
		return &v, nil
	}
}

func newActionEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		actionRequest := request.(*actionRequest)
		i, err := d.Get(actionRequest.id)
		if err != nil {
			return nil, err
		}
		changed, err := i.Update(ctx, actionRequest.action)
		if err != nil {
			return nil, err
		}
		return &actionResponse{Changed: changed, View: i.View()}, nil
	}
}

func newRefreshEndpoint(d *Dashboard) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		i, err := d.Get(request.(*widgetRequest).id)
		if err != nil {
			return nil, err
		}
		i.Refresh(ctx)
		v := i.View()
		return &v, nil
	}
}
