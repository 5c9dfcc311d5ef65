// review.go
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

package services

import (
	"context"
	"fmt"

	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/types"
)

// Review is a reviewer's verdict on one analysis
type Review struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// ReviewAnalysis records a reviewer rating and comment.
// Only the review columns are written; content and chain pointers are untouched.
func (m *ChainManager) ReviewAnalysis(ctx context.Context, analysisID string, review Review) (*models.Analysis, error) {
	if review.Rating == nil && review.Comment == nil {
		return nil, types.NewError(types.KindInvalidInput, "rating or comment is required", nil)
	}
	if review.Rating != nil && (*review.Rating < 1 || *review.Rating > 5) {
		return nil, types.NewError(types.KindInvalidInput, "rating must be between 1 and 5", nil)
	}

	updates := map[string]interface{}{}
	if review.Rating != nil {
		updates["user_rating"] = *review.Rating
	}
	if review.Comment != nil {
		updates["user_comment"] = *review.Comment
	}

	res := m.DB.WithContext(ctx).Model(&models.Analysis{}).
		Where("analysis_id = ?", analysisID).
		Updates(updates)
	if res.Error != nil {
		return nil, types.NewError(types.KindInternal, "failed to record review", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows for an unchanged row, so confirm existence before reporting not found
		return m.GetAnalysis(ctx, analysisID)
	}

	m.logger().Sugar().Infof("Recorded review for analysis %s", analysisID)
	return m.GetAnalysis(ctx, analysisID)
}

// ListOwnerDocuments returns the documents an owner has created, newest first
func (m *ChainManager) ListOwnerDocuments(ctx context.Context, owner string) ([]models.Document, error) {
	if owner == "" {
		return nil, types.NewError(types.KindInvalidInput, "owner is required", nil)
	}
	var docs []models.Document
	err := m.DB.WithContext(ctx).
		Joins("JOIN owner_documents ON owner_documents.document_id = documents.document_id").
		Where("owner_documents.owner = ?", owner).
		Order("documents.created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, types.NewError(types.KindInternal, fmt.Sprintf("failed to list documents of %s", owner), err)
	}
	return docs, nil
}
