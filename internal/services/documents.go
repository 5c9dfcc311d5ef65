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

package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/localnerve/docanalysis/internal/database"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// LineageHint asks the metadata commit to record a generated document under a caller lineage
type LineageHint struct {
	LineageID string         `json:"lineageId"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RegisterDocument returns the document with the given id, creating it and its owner
// index entry when it does not exist yet. Storage events use it for uploaded artifacts.
func (m *ChainManager) RegisterDocument(ctx context.Context, doc models.Document) (*models.Document, error) {
	if doc.DocumentID == "" {
		return nil, types.NewError(types.KindInvalidInput, "document id is required", nil)
	}
	if doc.Owner == "" {
		return nil, types.NewError(types.KindInvalidInput, "document owner is required", nil)
	}

	var stored models.Document
	err := m.Retry.Do(ctx, func() error {
		return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			candidate := doc
			if err := tx.Clauses(hints.Comment("select", "docanalysis:register")).
				Where(models.Document{DocumentID: doc.DocumentID}).
				FirstOrCreate(&candidate).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.OwnerDocument{
				Owner:      candidate.Owner,
				DocumentID: candidate.DocumentID,
			}).Error; err != nil {
				return err
			}
			stored = candidate
			return nil
		})
	}, isRetryable)
	if err != nil {
		return nil, classifyStoreError(ctx, err, fmt.Sprintf("document %s registration is contended", doc.DocumentID))
	}
	return &stored, nil
}

// commitDocument is the must-succeed metadata step of the generate path: the document,
// its owner index entry and the optional lineage merge land in one transaction.
func (m *ChainManager) commitDocument(ctx context.Context, doc *models.Document, lineage *LineageHint) error {
	err := m.Retry.Do(ctx, func() error {
		return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := checkDocumentFree(tx, doc.DocumentID); err != nil {
				return err
			}
			if err := tx.Create(doc).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.OwnerDocument{
				Owner:      doc.Owner,
				DocumentID: doc.DocumentID,
			}).Error; err != nil {
				return err
			}
			if lineage != nil && lineage.LineageID != "" {
				return mergeLineage(tx, doc, lineage)
			}
			return nil
		})
	}, isRetryable)
	if err != nil {
		m.logger().Error("Metadata commit failed", zap.String("documentId", doc.DocumentID), zap.Error(err))
		return classifyStoreError(ctx, err, fmt.Sprintf("metadata commit for document %s is contended", doc.DocumentID))
	}
	return nil
}

// precheckCommit rejects a generate request whose metadata commit is already known to
// conflict, before any rendering or storage work. commitDocument repeats the checks
// inside its transaction.
func (m *ChainManager) precheckCommit(ctx context.Context, documentID, owner string, lineage *LineageHint) error {
	db := m.DB.WithContext(ctx)
	if err := checkDocumentFree(db, documentID); err != nil {
		return classifyStoreError(ctx, err, "document precheck failed")
	}
	if lineage == nil || lineage.LineageID == "" {
		return nil
	}

	var existing models.LineageVersion
	err := db.Select("lineage_id", "owner").Where("lineage_id = ?", lineage.LineageID).First(&existing).Error
	switch {
	case database.IsNotFound(err):
		return nil
	case err != nil:
		return classifyStoreError(ctx, err, "lineage precheck failed")
	case existing.Owner != owner:
		return lineageOwnerConflict(lineage.LineageID)
	}
	return nil
}

func checkDocumentFree(db *gorm.DB, documentID string) error {
	if documentID == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.Document{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return types.NewError(types.KindConflict, fmt.Sprintf("document %s already exists", documentID), nil)
	}
	return nil
}

func lineageOwnerConflict(lineageID string) error {
	return types.NewError(types.KindConflict, fmt.Sprintf("lineage %s belongs to another owner", lineageID), nil)
}

// mergeLineage upserts a lineage row: metadata keys are overwritten by the new hint
// and the document id is added once.
func mergeLineage(tx *gorm.DB, doc *models.Document, hint *LineageHint) error {
	var lineage models.LineageVersion
	err := database.ForUpdate(tx).Where("lineage_id = ?", hint.LineageID).First(&lineage).Error
	if err != nil && !database.IsNotFound(err) {
		return err
	}

	if database.IsNotFound(err) {
		return tx.Create(&models.LineageVersion{
			LineageID:   hint.LineageID,
			Owner:       doc.Owner,
			Metadata:    models.NewJSONDoc(mergeMetadata(nil, hint.Metadata)),
			DocumentIDs: models.NewJSONDoc([]string{doc.DocumentID}),
		}).Error
	}

	if lineage.Owner != doc.Owner {
		return lineageOwnerConflict(hint.LineageID)
	}

	ids := addUnique(lineage.DocumentIDs.Data(), doc.DocumentID)
	return tx.Model(&models.LineageVersion{}).
		Where("lineage_id = ?", lineage.LineageID).
		Updates(map[string]interface{}{
			"metadata":     models.NewJSONDoc(mergeMetadata(lineage.Metadata.Data(), hint.Metadata)),
			"document_ids": models.NewJSONDoc(ids),
			"updated_at":   time.Now().UTC(),
		}).Error
}

func mergeMetadata(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

func addUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	ids = append(ids, id)
	sort.Strings(ids)
	return ids
}

// GetLineage loads a lineage record
func (m *ChainManager) GetLineage(ctx context.Context, lineageID string) (*models.LineageVersion, error) {
	var lineage models.LineageVersion
	if err := m.DB.WithContext(ctx).Where("lineage_id = ?", lineageID).First(&lineage).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, types.NewError(types.KindNotFound, fmt.Sprintf("lineage %s not found", lineageID), nil)
		}
		return nil, types.NewError(types.KindInternal, "failed to load lineage", err)
	}
	return &lineage, nil
}
