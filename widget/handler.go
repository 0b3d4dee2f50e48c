// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	ds "github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

type Handler http.Handler

func newCreateWidgetHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newCreateWidgetEndpoint(d),
		decodeCreateWidgetRequest,
		encodeCreateWidgetResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newListWidgetsHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newListWidgetsEndpoint(d),
		decodeNoRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newListKindsHandler(r *Registry) Handler {
	return kithttp.NewServer(
		newListKindsEndpoint(r),
		decodeNoRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newGetWidgetHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newGetWidgetEndpoint(d),
		decodeWidgetRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newDeleteWidgetHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newDeleteWidgetEndpoint(d),
		decodeWidgetRequest,
		encodeDeleteWidgetResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newGetSettingsHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newGetSettingsEndpoint(d),
		decodeWidgetRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newReconfigureHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newReconfigureEndpoint(d),
		decodeReconfigureRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newActionHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newActionEndpoint(d),
		decodeActionRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newRefreshHandler(d *Dashboard) Handler {
	return kithttp.NewServer(
		newRefreshEndpoint(d),
		decodeWidgetRequest,
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

// streamHandler pushes a widget's view as datastar signals each time it
// changes, until the client goes away or the widget is deleted.
type streamHandler struct {
	dashboard *Dashboard
	logger    *zap.Logger
}

func newStreamHandler(d *Dashboard, logger *zap.Logger) Handler {
	return &streamHandler{dashboard: d, logger: logger}
}

func (h *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		encodeError(r.Context(), err, w)
		return
	}
	i, err := h.dashboard.Get(id)
	if err != nil {
		encodeError(r.Context(), err, w)
		return
	}
	watch, cancel := i.Watch()
	defer cancel()

	logger := h.logger.With(zap.String("widget", id))
	sse := ds.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(i.View()); err != nil {
		logger.Debug("failed to push widget view", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-watch:
			if !ok {
				logger.Debug("widget stream closed")
				return
			}
			if err := sse.MarshalAndPatchSignals(i.View()); err != nil {
				logger.Debug("failed to push widget view", zap.Error(err))
				return
			}
		}
	}
}

