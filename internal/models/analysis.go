// analysis.go
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
	"fmt"
	"time"

	"github.com/localnerve/docanalysis/internal/parser"
)

// Analysis is one versioned model commentary on a document.
// NextAnalysisID is written once, by the transaction that appends the successor.
type Analysis struct {
	AnalysisID      string                 `gorm:"primaryKey;size:96" json:"analysisId"`
	DocumentID      string                 `gorm:"size:64;not null;index:idx_analysis_document_position,unique" json:"documentId"`
	Position        uint64                 `gorm:"not null;index:idx_analysis_document_position,unique" json:"position"`
	Owner           string                 `gorm:"size:255;not null" json:"owner"`
	Content         JSONDoc[parser.Result] `json:"content"`
	ModelIdentifier string                 `gorm:"size:128" json:"modelIdentifier"`
	GenerationTime  time.Time              `json:"generationTime"`
	Feedback        *string                `gorm:"type:text" json:"feedback,omitempty"`
	UserRating      *int                   `json:"userRating,omitempty"`
	UserComment     *string                `gorm:"type:text" json:"userComment,omitempty"`
	NextAnalysisID  *string                `gorm:"size:96;index" json:"nextAnalysisId,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// AnalysisID derives the identity of the analysis at a position of a document
func AnalysisID(documentID string, position uint64) string {
	return fmt.Sprintf("%s-%d", documentID, position)
}

// IsHead reports whether no successor has been linked yet
func (a *Analysis) IsHead() bool {
	return a.NextAnalysisID == nil
}

// TableName overrides the table name for Analysis
func (Analysis) TableName() string {
	return "analyses"
}
