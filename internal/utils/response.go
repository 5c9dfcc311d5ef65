// response.go
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

package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// KindErrorResponse sends the error envelope for err, taking status and type from its kind.
// Errors that were never classified are reported as internal without their text.
func KindErrorResponse(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if !errors.As(err, &ce) {
		return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, string(types.KindInternal))
	}
	return c.Status(ce.Code).JSON(ErrorResponseStruct{
		Status:       ce.Code,
		Message:      ce.Message,
		Ok:           false,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		URL:          c.OriginalURL(),
		Type:         ce.Type,
		Detail:       ce.Detail,
		VersionError: ce.Kind() == types.KindConflict,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, string(types.KindNotFound))
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int    `json:"status"`
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	URL          string `json:"url"`
	Type         string `json:"type,omitempty"`
	Detail       string `json:"detail,omitempty"`
	VersionError bool   `json:"versionError,omitempty"`
}

// MutationResponseStruct defines the schema for pipeline success responses
type MutationResponseStruct struct {
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	Timestamp string      `json:"timestamp"`
	Result    interface{} `json:"result"`
}

// MutationSuccessResponse sends a success response carrying the new identifiers
func MutationSuccessResponse(c *fiber.Ctx, status int, result interface{}) error {
	return c.Status(status).JSON(MutationResponseStruct{
		Message:   "Success",
		Ok:        true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Result:    result,
	})
}
