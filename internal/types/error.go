// error.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for callers and for the HTTP error envelope
type ErrorKind string

const (
	KindNotFound              ErrorKind = "not_found"
	KindConflict              ErrorKind = "conflict"
	KindTransientStoreFailure ErrorKind = "transient_store_failure"
	KindUpstreamUnavailable   ErrorKind = "upstream_unavailable"
	KindRenderingFailed       ErrorKind = "rendering_failed"
	KindStorageFailed         ErrorKind = "storage_failed"
	KindInvalidInput          ErrorKind = "invalid_input"
	KindInternal              ErrorKind = "internal"
)

// statusByKind maps each kind onto the HTTP status the handlers answer with
var statusByKind = map[ErrorKind]int{
	KindNotFound:              http.StatusNotFound,
	KindConflict:              http.StatusConflict,
	KindTransientStoreFailure: http.StatusServiceUnavailable,
	KindUpstreamUnavailable:   http.StatusBadGateway,
	KindRenderingFailed:       http.StatusBadGateway,
	KindStorageFailed:         http.StatusInsufficientStorage,
	KindInvalidInput:          http.StatusBadRequest,
	KindInternal:              http.StatusInternalServerError,
}

// CustomError is the single structured error surfaced to callers
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Detail  string `json:"detail,omitempty"`

	cause error
}

func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.cause)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unwrap exposes the underlying cause
func (e *CustomError) Unwrap() error {
	return e.cause
}

// Kind returns the classification of the error
func (e *CustomError) Kind() ErrorKind {
	return ErrorKind(e.Type)
}

// NewError builds a CustomError of the given kind. cause may be nil.
func NewError(kind ErrorKind, message string, cause error) *CustomError {
	code, ok := statusByKind[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &CustomError{
		Code:    code,
		Message: message,
		Type:    string(kind),
		cause:   cause,
	}
}

// WithDetail attaches diagnostic detail, such as an upstream response body
func (e *CustomError) WithDetail(detail string) *CustomError {
	e.Detail = detail
	return e
}

// KindOf reports the kind of err, looking through wrapping.
// Errors that were never classified report KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind()
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
