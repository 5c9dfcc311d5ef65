// common.go
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

package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/localnerve/docanalysis/internal/types"
	"github.com/localnerve/docanalysis/internal/utils"
	"go.uber.org/zap"
)

// Handlers holds the collaborators shared by every route
type Handlers struct {
	Chain    *services.ChainManager
	Pipeline *services.Pipeline
	Log      *zap.Logger
}

// ErrorHandler renders every error returned by a route or middleware as the standard envelope
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.ErrorResponse(c, fe.Message, fe.Code, "http")
		}

		kind := types.KindOf(err)
		if kind == types.KindInternal {
			log.Error("Request failed",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Error(err))
		}
		return utils.KindErrorResponse(c, err)
	}
}

// NotFoundHandler answers routes that do not exist
func NotFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// bindJSON parses the request body, reporting malformed bodies as invalid input
func bindJSON(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return types.NewError(types.KindInvalidInput, "Request body is required", nil)
	}
	if err := c.BodyParser(out); err != nil {
		return types.NewError(types.KindInvalidInput, "Malformed request body", err).WithDetail(err.Error())
	}
	return nil
}

// param returns a trimmed, required path parameter
func param(c *fiber.Ctx, name string) (string, error) {
	value := strings.TrimSpace(c.Params(name))
	if value == "" {
		return "", types.NewError(types.KindInvalidInput, "Path parameter '"+name+"' is required", nil)
	}
	return value, nil
}
