// versioning.go
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
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/docanalysis/internal/database"
	"github.com/localnerve/docanalysis/internal/metrics"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/parser"
	"github.com/localnerve/docanalysis/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// errContention marks a transaction that lost a compare-and-swap to a concurrent writer
var errContention = errors.New("concurrent modification")

// AppendInput describes a new analysis for a document
type AppendInput struct {
	DocumentID      string
	Content         parser.Result
	ModelIdentifier string
	// PredecessorAnalysisID, when set, must be the document's current head.
	// When empty the current head (if any) is linked automatically.
	PredecessorAnalysisID string
	Feedback              string
	GenerationTime        time.Time
}

// AppendResult identifies the slot an analysis was written to
type AppendResult struct {
	AnalysisID    string `json:"analysisId"`
	DocumentID    string `json:"documentId"`
	Position      uint64 `json:"position"`
	PredecessorID string `json:"predecessorId,omitempty"`
	Attempts      int    `json:"-"`
}

// ChainManager owns the document version index and the analysis chain
type ChainManager struct {
	DB    *gorm.DB
	Retry RetryPolicy
	Log   *zap.Logger
}

// NewChainManager creates a ChainManager
func NewChainManager(db *gorm.DB, retry RetryPolicy, log *zap.Logger) *ChainManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChainManager{DB: db, Retry: retry, Log: log}
}

func (m *ChainManager) logger() *zap.Logger {
	if m.Log == nil {
		return zap.NewNop()
	}
	return m.Log
}

// AppendAnalysis allocates the next version slot of a document, writes the analysis
// into it and links it behind the previous head, all in one transaction.
// Lost races are re-executed under the retry policy.
func (m *ChainManager) AppendAnalysis(ctx context.Context, in AppendInput) (*AppendResult, error) {
	if in.DocumentID == "" {
		return nil, types.NewError(types.KindInvalidInput, "document id is required", nil)
	}
	if in.GenerationTime.IsZero() {
		in.GenerationTime = time.Now().UTC()
	}

	var result *AppendResult
	attempts := 0
	err := m.Retry.Do(ctx, func() error {
		attempts++
		r, err := m.appendOnce(ctx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	}, isRetryable)

	if err != nil {
		err = classifyStoreError(ctx, err, fmt.Sprintf("document %s is contended, gave up after %d attempts", in.DocumentID, attempts))
		metrics.AnalysisAppends.WithLabelValues(string(types.KindOf(err))).Inc()
		m.logger().Warn("Append analysis failed",
			zap.String("documentId", in.DocumentID),
			zap.String("predecessorId", in.PredecessorAnalysisID),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return nil, err
	}

	result.Attempts = attempts
	metrics.AnalysisAppends.WithLabelValues("ok").Inc()
	m.logger().Info("Appended analysis",
		zap.String("documentId", result.DocumentID),
		zap.String("analysisId", result.AnalysisID),
		zap.Uint64("position", result.Position),
		zap.Int("attempts", attempts))
	return result, nil
}

func (m *ChainManager) appendOnce(ctx context.Context, in AppendInput) (*AppendResult, error) {
	var result AppendResult

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock and re-read the document; the counter is only trusted from inside the transaction
		var doc models.Document
		if err := database.ForUpdate(tx.Clauses(hints.Comment("select", "docanalysis:append"))).
			Where("document_id = ?", in.DocumentID).
			First(&doc).Error; err != nil {
			if database.IsNotFound(err) {
				return types.NewError(types.KindNotFound, fmt.Sprintf("document %s not found", in.DocumentID), nil)
			}
			return err
		}

		position := doc.AnalysisCount + 1
		analysisID := models.AnalysisID(doc.DocumentID, position)

		predecessorID, err := resolvePredecessor(tx, &doc, in.PredecessorAnalysisID)
		if err != nil {
			return err
		}

		analysis := models.Analysis{
			AnalysisID:      analysisID,
			DocumentID:      doc.DocumentID,
			Position:        position,
			Owner:           doc.Owner,
			Content:         models.NewJSONDoc(in.Content),
			ModelIdentifier: in.ModelIdentifier,
			GenerationTime:  in.GenerationTime,
		}
		if in.Feedback != "" {
			feedback := in.Feedback
			analysis.Feedback = &feedback
		}
		if err := tx.Create(&analysis).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.DocumentVersion{
			DocumentID: doc.DocumentID,
			Position:   position,
			AnalysisID: analysisID,
		}).Error; err != nil {
			return err
		}

		// Compare-and-swap the counter against the value read above
		res := tx.Model(&models.Document{}).
			Where("document_id = ? AND analysis_count = ?", doc.DocumentID, doc.AnalysisCount).
			Updates(map[string]interface{}{
				"analysis_count":   position,
				"head_analysis_id": analysisID,
				"last_update":      time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errContention
		}

		// Link the previous head; a pointer is only ever written while it is still null
		if predecessorID != "" {
			res := tx.Model(&models.Analysis{}).
				Where("analysis_id = ? AND document_id = ? AND next_analysis_id IS NULL", predecessorID, doc.DocumentID).
				Update("next_analysis_id", analysisID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				if in.PredecessorAnalysisID != "" {
					return staleHead(predecessorID)
				}
				return errContention
			}
		}

		result = AppendResult{
			AnalysisID:    analysisID,
			DocumentID:    doc.DocumentID,
			Position:      position,
			PredecessorID: predecessorID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// resolvePredecessor validates an explicit predecessor against the locked document,
// or falls back to the document's current head.
func resolvePredecessor(tx *gorm.DB, doc *models.Document, requested string) (string, error) {
	if requested == "" {
		if doc.HeadAnalysisID != nil {
			return *doc.HeadAnalysisID, nil
		}
		return "", nil
	}

	var pred models.Analysis
	if err := database.ForUpdate(tx).Where("analysis_id = ?", requested).First(&pred).Error; err != nil {
		if database.IsNotFound(err) {
			return "", types.NewError(types.KindConflict, fmt.Sprintf("predecessor analysis %s not found", requested), nil)
		}
		return "", err
	}
	if err := checkPredecessor(doc, &pred); err != nil {
		return "", err
	}
	return pred.AnalysisID, nil
}

// checkPredecessor reports a Conflict unless pred is the current head of doc
func checkPredecessor(doc *models.Document, pred *models.Analysis) error {
	if pred.DocumentID != doc.DocumentID {
		return types.NewError(types.KindConflict,
			fmt.Sprintf("predecessor analysis %s belongs to another document", pred.AnalysisID), nil)
	}
	if !pred.IsHead() || (doc.HeadAnalysisID != nil && *doc.HeadAnalysisID != pred.AnalysisID) {
		return staleHead(pred.AnalysisID)
	}
	return nil
}

func staleHead(analysisID string) error {
	return types.NewError(types.KindConflict,
		fmt.Sprintf("analysis %s is not the current head; refresh and retry", analysisID), nil)
}

func isRetryable(err error) bool {
	return errors.Is(err, errContention) || database.IsContention(err)
}

// classifyStoreError turns an error escaping a retried transaction into a CustomError
func classifyStoreError(ctx context.Context, err error, contendedMessage string) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return err
	}
	if isRetryable(err) {
		return types.NewError(types.KindTransientStoreFailure, contendedMessage, err)
	}
	if ctx.Err() != nil {
		return types.NewError(types.KindTransientStoreFailure, "store transaction cancelled", err)
	}
	return types.NewError(types.KindInternal, "store transaction failed", err)
}

// GetDocument loads a document with its version index in position order
func (m *ChainManager) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	var doc models.Document
	err := m.DB.WithContext(ctx).
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Where("document_id = ?", documentID).
		First(&doc).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, types.NewError(types.KindNotFound, fmt.Sprintf("document %s not found", documentID), nil)
		}
		return nil, types.NewError(types.KindInternal, "failed to load document", err)
	}
	return &doc, nil
}

// GetAnalysis loads one analysis
func (m *ChainManager) GetAnalysis(ctx context.Context, analysisID string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := m.DB.WithContext(ctx).Where("analysis_id = ?", analysisID).First(&analysis).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, types.NewError(types.KindNotFound, fmt.Sprintf("analysis %s not found", analysisID), nil)
		}
		return nil, types.NewError(types.KindInternal, "failed to load analysis", err)
	}
	return &analysis, nil
}

// GetChain returns a document's analyses in chain order, starting at position 1
// and following the forward pointers. A chain that skips or revisits a record is an error.
func (m *ChainManager) GetChain(ctx context.Context, documentID string) ([]models.Analysis, error) {
	if _, err := m.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	var rows []models.Analysis
	if err := m.DB.WithContext(ctx).
		Clauses(hints.Comment("select", "docanalysis:chain")).
		Where("document_id = ?", documentID).
		Order("position").
		Find(&rows).Error; err != nil {
		return nil, types.NewError(types.KindInternal, "failed to load analyses", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	byID := make(map[string]models.Analysis, len(rows))
	for _, a := range rows {
		byID[a.AnalysisID] = a
	}

	chain := make([]models.Analysis, 0, len(rows))
	visited := make(map[string]bool, len(rows))
	current, ok := byID[models.AnalysisID(documentID, 1)]
	for ok {
		if visited[current.AnalysisID] {
			return nil, brokenChain(documentID, current.AnalysisID)
		}
		visited[current.AnalysisID] = true
		chain = append(chain, current)
		if current.NextAnalysisID == nil {
			break
		}
		current, ok = byID[*current.NextAnalysisID]
		if !ok {
			return nil, brokenChain(documentID, *chain[len(chain)-1].NextAnalysisID)
		}
	}
	if len(chain) != len(rows) {
		return nil, brokenChain(documentID, "head")
	}
	return chain, nil
}

func brokenChain(documentID, at string) error {
	return types.NewError(types.KindInternal, fmt.Sprintf("analysis chain of document %s is broken at %s", documentID, at), nil)
}

// GetHead returns the most recent analysis of a document
func (m *ChainManager) GetHead(ctx context.Context, documentID string) (*models.Analysis, error) {
	doc, err := m.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.HeadAnalysisID == nil {
		return nil, types.NewError(types.KindNotFound, fmt.Sprintf("document %s has no analyses", documentID), nil)
	}
	return m.GetAnalysis(ctx, *doc.HeadAnalysisID)
}
