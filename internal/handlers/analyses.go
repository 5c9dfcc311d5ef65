// analyses.go
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
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/localnerve/docanalysis/internal/utils"
)

// GetAnalysis handles GET /api/analyses/:analysisId
// @Summary Get an analysis
// @Tags Analyses
// @Produce json
// @Param analysisId path string true "Analysis ID"
// @Success 200 {object} models.Analysis
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /analyses/{analysisId} [get]
func (h *Handlers) GetAnalysis(c *fiber.Ctx) error {
	analysisID, err := param(c, "analysisId")
	if err != nil {
		return err
	}

	analysis, err := h.Chain.GetAnalysis(c.UserContext(), analysisID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, analysis, fiber.StatusOK)
}

// ReviewAnalysis handles PATCH /api/analyses/:analysisId/review
// @Summary Review an analysis
// @Description Record a reviewer rating (1-5) and comment
// @Tags Analyses
// @Accept json
// @Produce json
// @Param analysisId path string true "Analysis ID"
// @Param body body services.Review true "Rating and comment"
// @Success 200 {object} models.Analysis
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /analyses/{analysisId}/review [patch]
func (h *Handlers) ReviewAnalysis(c *fiber.Ctx) error {
	analysisID, err := param(c, "analysisId")
	if err != nil {
		return err
	}

	var review services.Review
	if err := bindJSON(c, &review); err != nil {
		return err
	}

	analysis, err := h.Chain.ReviewAnalysis(c.UserContext(), analysisID, review)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, analysis, fiber.StatusOK)
}
