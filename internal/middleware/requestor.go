// requestor.go
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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/types"
)

// RequestorHeader carries the caller identity; authentication happens upstream
const RequestorHeader = "X-Requestor-Id"

// requestorKey is the fiber Locals key holding the requestor id
const requestorKey = "requestor"

// Requestor stores the requestor identity, when present, in context
func Requestor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := strings.TrimSpace(c.Get(RequestorHeader)); id != "" {
			c.Locals(requestorKey, id)
		}
		return c.Next()
	}
}

// RequireRequestor rejects requests that do not identify a requestor
func RequireRequestor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if RequestorID(c) == "" {
			return types.NewError(types.KindInvalidInput, "Header \""+RequestorHeader+"\" is required", nil)
		}
		return c.Next()
	}
}

// RequestorID returns the requestor stored by Requestor, or ""
func RequestorID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestorKey).(string)
	return id
}
