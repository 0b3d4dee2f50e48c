// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package widget

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
)

const (
	widgetIDVarKey = "id"
	actionVarKey   = "action"
)

const (
	widgetIDVarMissingMsg = "{id} URL path parameter missing"
	actionVarMissingMsg   = "{action} URL path parameter missing"
)

// ErrorHeaderKey carries the error message of failed requests.
const ErrorHeaderKey = "X-Widget-Error"

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

type BadRequestErr struct {
	Message string
}

func (bre BadRequestErr) Error() string {
	return bre.Message
}

func (bre BadRequestErr) StatusCode() int {
	return http.StatusBadRequest
}

type createWidgetRequest struct {
	kind     Kind
	document []byte
}

// createWidgetBody is the payload of a widget creation. A missing config
// creates the kind's default configuration.
type createWidgetBody struct {
	Kind   Kind            `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

type widgetRequest struct {
	id string
}

type reconfigureRequest struct {
	id       string
	document []byte
}

type actionRequest struct {
	id     string
	action Action
}

type actionResponse struct {
	Changed bool `json:"changed"`
	View    View `json:"view"`
}

// KindDescriptor lists a registered widget kind.
type KindDescriptor struct {
	Kind            Kind   `json:"kind"`
	DisplayName     string `json:"displayName"`
	DisplayIcon     string `json:"displayIcon"`
	MinColumnWidth  int    `json:"minColumnWidth"`
	MinColumnHeight int    `json:"minColumnHeight"`
}

func widgetID(r *http.Request) (string, error) {
	id, ok := mux.Vars(r)[widgetIDVarKey]
	if !ok {
		return "", &BadRequestErr{Message: widgetIDVarMissingMsg}
	}
	return id, nil
}

func decodeNoRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

func decodeWidgetRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := widgetID(r)
	if err != nil {
		return nil, err
	}
	return &widgetRequest{id: id}, nil
}

func decodeCreateWidgetRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body createWidgetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, &BadRequestErr{Message: "failed to unmarshal json"}
	}
	if body.Kind == "" {
		return nil, &BadRequestErr{Message: "kind field must be set"}
	}
	return &createWidgetRequest{kind: body.Kind, document: body.Config}, nil
}

func decodeReconfigureRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := widgetID(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &BadRequestErr{Message: "failed to read body"}
	}
	return &reconfigureRequest{id: id, document: data}, nil
}

func decodeActionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := widgetID(r)
	if err != nil {
		return nil, err
	}
	name, ok := mux.Vars(r)[actionVarKey]
	if !ok {
		return nil, &BadRequestErr{Message: actionVarMissingMsg}
	}

	var a Action
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil && !errors.Is(err, io.EOF) {
			return nil, &BadRequestErr{Message: "failed to unmarshal json"}
		}
	}
	a.Name = name
	return &actionRequest{id: id, action: a}, nil
}

func encodeJSONResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	if response == nil {
		return ErrCasting
	}
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	rw.Header().Add("Content-Type", "application/json")
	_, err = rw.Write(data)
	return err
}

func encodeCreateWidgetResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	v, ok := response.(*View)
	if !ok {
		return ErrCasting
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(http.StatusCreated)
	_, err = rw.Write(data)
	return err
}

func encodeDeleteWidgetResponse(_ context.Context, rw http.ResponseWriter, _ interface{}) error {
	rw.WriteHeader(http.StatusNoContent)
	return nil
}

// statusCode maps the package's errors onto HTTP status codes.
func statusCode(err error) int {
	var sc kithttp.StatusCoder
	switch {
	case errors.Is(err, ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnknownAction),
		errors.Is(err, ErrInvalidAction):
		return http.StatusBadRequest
	case errors.As(err, &sc):
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(ErrorHeaderKey, err.Error())
	w.WriteHeader(statusCode(err))
}
