// document.go
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

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is one ingested or generated artifact and the index of its analyses
type Document struct {
	DocumentID     string            `gorm:"primaryKey;size:64" json:"documentId"`
	Owner          string            `gorm:"size:255;not null;index" json:"owner"`
	SourceLocation string            `gorm:"size:1024;not null" json:"sourceLocation"`
	Title          string            `gorm:"size:255" json:"title,omitempty"`
	ContentType    string            `gorm:"size:127" json:"contentType,omitempty"`
	AnalysisCount  uint64            `gorm:"not null;default:0" json:"analysisCount"`
	HeadAnalysisID *string           `gorm:"size:96" json:"headAnalysisId,omitempty"`
	LastUpdate     time.Time         `gorm:"not null" json:"lastUpdate"`
	CreatedAt      time.Time         `json:"createdAt"`
	Versions       []DocumentVersion `gorm:"foreignKey:DocumentID;references:DocumentID" json:"versionIndex,omitempty"`
}

// DocumentVersion is one entry of a document's version index.
// Rows are insert-only; the composite key forbids two analyses in one slot.
type DocumentVersion struct {
	DocumentID string    `gorm:"primaryKey;size:64" json:"-"`
	Position   uint64    `gorm:"primaryKey;autoIncrement:false" json:"position"`
	AnalysisID string    `gorm:"size:96;not null;uniqueIndex" json:"analysisId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OwnerDocument lists the documents belonging to an owner
type OwnerDocument struct {
	Owner      string `gorm:"primaryKey;size:255"`
	DocumentID string `gorm:"primaryKey;size:64"`
	CreatedAt  time.Time
}

// LineageVersion holds merged version metadata for a caller-defined lineage
type LineageVersion struct {
	LineageID   string                  `gorm:"primaryKey;size:255" json:"lineageId"`
	Owner       string                  `gorm:"size:255;not null;index" json:"owner"`
	Metadata    JSONDoc[map[string]any] `json:"metadata"`
	DocumentIDs JSONDoc[[]string]       `json:"documentIds"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// BeforeCreate assigns the document identity when the caller did not supply one
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == "" {
		d.DocumentID = uuid.NewString()
	}
	if d.LastUpdate.IsZero() {
		d.LastUpdate = time.Now().UTC()
	}
	return nil
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// TableName overrides the table name for DocumentVersion
func (DocumentVersion) TableName() string {
	return "document_versions"
}

// TableName overrides the table name for OwnerDocument
func (OwnerDocument) TableName() string {
	return "owner_documents"
}

// TableName overrides the table name for LineageVersion
func (LineageVersion) TableName() string {
	return "lineage_versions"
}
