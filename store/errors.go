// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/xmidt-org/httpaux/erraux"
)

// ErrAssetNotFound is matched by every not-found error the backends return.
var ErrAssetNotFound = errors.New("asset not found")

var errInternal = &erraux.Error{
	Err:  errors.New("asset store operation failed"),
	Code: http.StatusInternalServerError,
}

type BadRequestErr struct {
	Message string
}

func (bre BadRequestErr) Error() string {
	return bre.Message
}

func (bre BadRequestErr) StatusCode() int {
	return http.StatusBadRequest
}

// NotFoundError reports an asset id that has no stored asset.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("asset %q not found", e.ID)
}

func (e NotFoundError) Unwrap() error {
	return ErrAssetNotFound
}

func (e NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// SanitizedError keeps a backend error for logging while only ErrHTTP is
// shown to API clients.
type SanitizedError struct {
	Err     error
	ErrHTTP error
}

func (s SanitizedError) Error() string {
	return s.Err.Error()
}

func (s SanitizedError) Unwrap() error {
	return s.Err
}

// Sanitized is the client facing message.
func (s SanitizedError) Sanitized() string {
	if s.ErrHTTP == nil {
		return errInternal.Error()
	}
	return s.ErrHTTP.Error()
}

func (s SanitizedError) StatusCode() int {
	var sc kithttp.StatusCoder
	if errors.As(s.ErrHTTP, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// SanitizeError hides backend details behind a generic 500, leaving errors
// that already carry a status code untouched.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		return err
	}
	return SanitizedError{Err: err, ErrHTTP: errInternal}
}
