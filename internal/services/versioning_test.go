// versioning_test.go
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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/parser"
	"github.com/localnerve/docanalysis/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func appendN(t *testing.T, m *ChainManager, documentID string, n int) []*AppendResult {
	t.Helper()
	var out []*AppendResult
	prev := ""
	for i := 0; i < n; i++ {
		res, err := m.AppendAnalysis(context.Background(), AppendInput{
			DocumentID:            documentID,
			Content:               parser.Parse(fmt.Sprintf(`{"summary":"v%d"}`, i+1)),
			ModelIdentifier:       "m",
			PredecessorAnalysisID: prev,
		})
		require.NoError(t, err)
		prev = res.AnalysisID
		out = append(out, res)
	}
	return out
}

func TestAppendKeepsInvalidUTF8Output(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")
	raw := "not json \xff\xfe"

	res, err := m.AppendAnalysis(context.Background(), AppendInput{
		DocumentID: doc.DocumentID,
		Content:    parser.Parse(raw),
	})
	require.NoError(t, err)

	stored, err := m.GetAnalysis(context.Background(), res.AnalysisID)
	require.NoError(t, err)
	content := stored.Content.Data()
	assert.Equal(t, parser.KindUnstructured, content.Kind)
	assert.Equal(t, raw, content.Raw())
}

func TestAppendFirstAnalysis(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")

	res, err := m.AppendAnalysis(context.Background(), AppendInput{
		DocumentID:      doc.DocumentID,
		Content:         parser.Parse(structuredReply),
		ModelIdentifier: "m",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Position)
	assert.Equal(t, doc.DocumentID+"-1", res.AnalysisID)
	assert.Empty(t, res.PredecessorID)

	stored, err := m.GetDocument(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.AnalysisCount)
	require.NotNil(t, stored.HeadAnalysisID)
	assert.Equal(t, res.AnalysisID, *stored.HeadAnalysisID)
	require.Len(t, stored.Versions, 1)
	assert.Equal(t, res.AnalysisID, stored.Versions[0].AnalysisID)

	analysis, err := m.GetAnalysis(context.Background(), res.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, "u1", analysis.Owner)
	assert.True(t, analysis.IsHead())
	content := analysis.Content.Data()
	require.True(t, content.IsStructured())
	assert.Equal(t, "Solid", content.Structured.Summary)
	assert.Equal(t, []string{"go", "sql"}, content.Structured.Keywords["skills"])
}

func TestAppendRegenerationChain(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")

	appended := appendN(t, m, doc.DocumentID, 5)
	for i, res := range appended {
		assert.Equal(t, uint64(i+1), res.Position)
	}

	chain, err := m.GetChain(context.Background(), doc.DocumentID)
	require.NoError(t, err)

	var positions []uint64
	heads := 0
	for _, a := range chain {
		positions = append(positions, a.Position)
		if a.IsHead() {
			heads++
		}
	}
	if diff := cmp.Diff([]uint64{1, 2, 3, 4, 5}, positions); diff != "" {
		t.Errorf("chain positions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, heads)
	assert.Equal(t, appended[4].AnalysisID, chain[4].AnalysisID)

	head, err := m.GetHead(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, appended[4].AnalysisID, head.AnalysisID)
}

func TestAppendLinksHeadWithoutPredecessor(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")
	first := appendN(t, m, doc.DocumentID, 1)[0]

	second, err := m.AppendAnalysis(context.Background(), AppendInput{DocumentID: doc.DocumentID, Content: parser.Unstructured("retry")})
	require.NoError(t, err)
	assert.Equal(t, first.AnalysisID, second.PredecessorID)

	prev, err := m.GetAnalysis(context.Background(), first.AnalysisID)
	require.NoError(t, err)
	require.NotNil(t, prev.NextAnalysisID)
	assert.Equal(t, second.AnalysisID, *prev.NextAnalysisID)
}

func TestAppendConcurrent(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")

	const n = 20
	var g errgroup.Group
	results := make([]*AppendResult, n)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			res, err := m.AppendAnalysis(context.Background(), AppendInput{
				DocumentID: doc.DocumentID,
				Content:    parser.Unstructured(fmt.Sprintf("writer %d", i)),
			})
			results[i] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	positions := make([]uint64, 0, n)
	for _, res := range results {
		positions = append(positions, res.Position)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	for i, p := range positions {
		assert.Equal(t, uint64(i+1), p)
	}

	stored, err := m.GetDocument(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), stored.AnalysisCount)
	assert.Len(t, stored.Versions, n)

	chain, err := m.GetChain(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Len(t, chain, n)
}

func TestAppendStalePredecessor(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")
	appended := appendN(t, m, doc.DocumentID, 2)

	_, err := m.AppendAnalysis(context.Background(), AppendInput{
		DocumentID:            doc.DocumentID,
		Content:               parser.Unstructured("late"),
		PredecessorAnalysisID: appended[0].AnalysisID,
	})
	require.Error(t, err)
	assert.Equal(t, types.KindConflict, types.KindOf(err))

	stored, err := m.GetDocument(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stored.AnalysisCount)
	assert.Equal(t, appended[1].AnalysisID, *stored.HeadAnalysisID)

	var count int64
	require.NoError(t, m.DB.Model(&models.Analysis{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAppendPredecessorErrors(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")
	other := createDocument(t, m.DB, "u1")
	otherHead := appendN(t, m, other.DocumentID, 1)[0]

	tests := []struct {
		name        string
		documentID  string
		predecessor string
		kind        types.ErrorKind
	}{
		{name: "missing document", documentID: "nope", kind: types.KindNotFound},
		{name: "missing predecessor", documentID: doc.DocumentID, predecessor: "nope-1", kind: types.KindConflict},
		{name: "predecessor of another document", documentID: doc.DocumentID, predecessor: otherHead.AnalysisID, kind: types.KindConflict},
		{name: "empty document id", documentID: "", kind: types.KindInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.AppendAnalysis(context.Background(), AppendInput{
				DocumentID:            tc.documentID,
				Content:               parser.Unstructured("x"),
				PredecessorAnalysisID: tc.predecessor,
			})
			assert.Equal(t, tc.kind, types.KindOf(err))
		})
	}

	stored, err := m.GetDocument(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Zero(t, stored.AnalysisCount)
}

func TestAppendContentionExhausted(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")

	// every counter update reports a lost race
	require.NoError(t, m.DB.Callback().Update().Before("gorm:update").Register("test:contend", func(tx *gorm.DB) {
		if tx.Statement.Table == "documents" {
			_ = tx.AddError(gorm.ErrDuplicatedKey)
		}
	}))

	res, err := m.AppendAnalysis(context.Background(), AppendInput{DocumentID: doc.DocumentID, Content: parser.Unstructured("x")})
	assert.Nil(t, res)
	assert.Equal(t, types.KindTransientStoreFailure, types.KindOf(err))

	var count int64
	require.NoError(t, m.DB.Model(&models.Analysis{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetChainEmptyAndMissing(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")

	chain, err := m.GetChain(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, chain)

	_, err = m.GetChain(context.Background(), "missing")
	assert.Equal(t, types.KindNotFound, types.KindOf(err))

	_, err = m.GetHead(context.Background(), doc.DocumentID)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestGetChainDetectsBrokenLink(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")
	appended := appendN(t, m, doc.DocumentID, 3)

	require.NoError(t, m.DB.Model(&models.Analysis{}).
		Where("analysis_id = ?", appended[0].AnalysisID).
		Update("next_analysis_id", appended[2].AnalysisID).Error)

	_, err := m.GetChain(context.Background(), doc.DocumentID)
	assert.Equal(t, types.KindInternal, types.KindOf(err))
}

func TestReviewAnalysis(t *testing.T) {
	m := setupChain(t)
	doc := createDocument(t, m.DB, "u1")
	head := appendN(t, m, doc.DocumentID, 1)[0]

	rating, comment := 4, "useful"
	reviewed, err := m.ReviewAnalysis(context.Background(), head.AnalysisID, Review{Rating: &rating, Comment: &comment})
	require.NoError(t, err)
	require.NotNil(t, reviewed.UserRating)
	assert.Equal(t, 4, *reviewed.UserRating)
	assert.Equal(t, "useful", *reviewed.UserComment)
	assert.True(t, reviewed.IsHead())

	bad := 6
	_, err = m.ReviewAnalysis(context.Background(), head.AnalysisID, Review{Rating: &bad})
	assert.Equal(t, types.KindInvalidInput, types.KindOf(err))

	_, err = m.ReviewAnalysis(context.Background(), "missing-1", Review{Comment: &comment})
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}
