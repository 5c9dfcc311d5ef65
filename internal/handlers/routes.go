// routes.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/middleware"
)

// Register mounts the API routes on router, which is expected to be the /api group
func Register(router fiber.Router, h *Handlers) {
	router.Use(middleware.VersionMiddleware())
	router.Use(middleware.Requestor())

	// Entry adapters
	router.Post("/events/storage", h.HandleStorageEvent)
	router.Post("/documents/generate", middleware.RequireRequestor(), h.GenerateDocument)
	router.Post("/documents/:documentId/regenerate", h.RegenerateAnalysis)

	// Reads and reviews
	router.Get("/documents", middleware.RequireRequestor(), h.ListDocuments)
	router.Get("/documents/:documentId", h.GetDocument)
	router.Get("/documents/:documentId/analyses", h.GetAnalysisChain)
	router.Get("/analyses/:analysisId", h.GetAnalysis)
	router.Patch("/analyses/:analysisId/review", h.ReviewAnalysis)
}
