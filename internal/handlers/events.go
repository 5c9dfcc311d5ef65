// events.go
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
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/middleware"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/localnerve/docanalysis/internal/types"
	"github.com/localnerve/docanalysis/internal/utils"
	"go.uber.org/zap"
)

// StorageEvent is the notification sent when a document artifact lands in storage
type StorageEvent struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	Name        string `json:"name,omitempty"` // object name, accepted in place of path
	ContentType string `json:"contentType,omitempty"`
	Metadata    struct {
		DocumentID string `json:"documentId"`
		Owner      string `json:"owner,omitempty"`
		Title      string `json:"title,omitempty"`
	} `json:"metadata"`
}

// Location is the blob path the event refers to
func (e StorageEvent) Location() string {
	object := e.Path
	if object == "" {
		object = e.Name
	}
	object = strings.TrimPrefix(strings.TrimSpace(object), "/")
	if object == "" {
		return ""
	}
	if e.Bucket == "" {
		return object
	}
	return path.Join(e.Bucket, object)
}

// HandleStorageEvent handles POST /api/events/storage
// @Summary Analyze an uploaded document
// @Description Register the uploaded document named by the event and append its first analysis
// @Tags Events
// @Accept json
// @Produce json
// @Param body body StorageEvent true "Storage event"
// @Success 201 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /events/storage [post]
func (h *Handlers) HandleStorageEvent(c *fiber.Ctx) error {
	var event StorageEvent
	if err := bindJSON(c, &event); err != nil {
		return err
	}

	location := event.Location()
	if location == "" {
		return types.NewError(types.KindInvalidInput, "Event path is required", nil)
	}
	documentID := strings.TrimSpace(event.Metadata.DocumentID)
	if documentID == "" {
		return types.NewError(types.KindInvalidInput, "Event metadata.documentId is required", nil)
	}
	owner := event.Metadata.Owner
	if owner == "" {
		owner = middleware.RequestorID(c)
	}

	if _, err := h.Chain.RegisterDocument(c.UserContext(), models.Document{
		DocumentID:     documentID,
		Owner:          owner,
		SourceLocation: location,
		Title:          event.Metadata.Title,
		ContentType:    event.ContentType,
	}); err != nil {
		return err
	}

	h.Log.Info("Storage event received",
		zap.String("documentId", documentID),
		zap.String("location", location))

	result, err := h.Pipeline.Run(c.UserContext(), services.Input{
		RequestorID: owner,
		Source:      &services.SourceInput{Location: location, ContentType: event.ContentType},
		Chain:       services.ChainOptions{DocumentID: documentID},
	})
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, result)
}
