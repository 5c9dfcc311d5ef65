// documents.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/middleware"
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/localnerve/docanalysis/internal/types"
	"github.com/localnerve/docanalysis/internal/utils"
)

// GenerateRequest is the body of POST /api/documents/generate
type GenerateRequest struct {
	DocumentID string                `json:"documentId,omitempty"`
	Title      string                `json:"title"`
	Sections   []services.Section    `json:"sections"`
	Render     *config.RenderOptions `json:"render,omitempty"`
	Lineage    *services.LineageHint `json:"lineage,omitempty"`
}

// RegenerateRequest is the body of POST /api/documents/:documentId/regenerate
type RegenerateRequest struct {
	AnalysisID string `json:"analysisId"`
	Feedback   string `json:"feedback"`
}

// GenerateDocument handles POST /api/documents/generate
// @Summary Generate a document
// @Description Enhance, render and store a document from structured fields, then analyze it
// @Tags Documents
// @Accept json
// @Produce json
// @Param X-Requestor-Id header string true "Requestor identity"
// @Param body body GenerateRequest true "Document fields"
// @Success 201 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Failure 507 {object} utils.ErrorResponseStruct
// @Router /documents/generate [post]
func (h *Handlers) GenerateDocument(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.Pipeline.Run(c.UserContext(), services.Input{
		RequestorID: middleware.RequestorID(c),
		Generate: &services.GenerateInput{
			Title:    req.Title,
			Sections: req.Sections,
			Render:   req.Render,
			Lineage:  req.Lineage,
		},
		Chain: services.ChainOptions{DocumentID: strings.TrimSpace(req.DocumentID)},
	})
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, result)
}

// RegenerateAnalysis handles POST /api/documents/:documentId/regenerate
// @Summary Regenerate an analysis
// @Description Produce a new analysis that supersedes the given head analysis, guided by feedback
// @Tags Documents
// @Accept json
// @Produce json
// @Param documentId path string true "Document ID"
// @Param body body RegenerateRequest true "Predecessor and feedback"
// @Success 201 {object} utils.MutationResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /documents/{documentId}/regenerate [post]
func (h *Handlers) RegenerateAnalysis(c *fiber.Ctx) error {
	documentID, err := param(c, "documentId")
	if err != nil {
		return err
	}

	var req RegenerateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.AnalysisID) == "" {
		return types.NewError(types.KindInvalidInput, "analysisId is required", nil)
	}

	result, err := h.Pipeline.Run(c.UserContext(), services.Input{
		RequestorID: middleware.RequestorID(c),
		Chain: services.ChainOptions{
			DocumentID:            documentID,
			PredecessorAnalysisID: strings.TrimSpace(req.AnalysisID),
			Feedback:              strings.TrimSpace(req.Feedback),
		},
	})
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, result)
}

// GetDocument handles GET /api/documents/:documentId
// @Summary Get a document
// @Description Get a document and its version index
// @Tags Documents
// @Produce json
// @Param documentId path string true "Document ID"
// @Success 200 {object} models.Document
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/{documentId} [get]
func (h *Handlers) GetDocument(c *fiber.Ctx) error {
	documentID, err := param(c, "documentId")
	if err != nil {
		return err
	}

	doc, err := h.Chain.GetDocument(c.UserContext(), documentID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}

// GetAnalysisChain handles GET /api/documents/:documentId/analyses
// @Summary Get the analysis chain
// @Description Get every analysis of a document in chain order
// @Tags Documents
// @Produce json
// @Param documentId path string true "Document ID"
// @Success 200 {array} models.Analysis
// @Success 204 "Document has no analyses"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/{documentId}/analyses [get]
func (h *Handlers) GetAnalysisChain(c *fiber.Ctx) error {
	documentID, err := param(c, "documentId")
	if err != nil {
		return err
	}

	chain, err := h.Chain.GetChain(c.UserContext(), documentID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return utils.SuccessResponse(c, chain, fiber.StatusOK)
}

// ListDocuments handles GET /api/documents
// @Summary List the requestor's documents
// @Tags Documents
// @Produce json
// @Param X-Requestor-Id header string true "Requestor identity"
// @Success 200 {array} models.Document
// @Success 204 "No documents"
// @Router /documents [get]
func (h *Handlers) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.Chain.ListOwnerDocuments(c.UserContext(), middleware.RequestorID(c))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return utils.SuccessResponse(c, docs, fiber.StatusOK)
}
