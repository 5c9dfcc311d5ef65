// helpers_test.go
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
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/localnerve/docanalysis/internal/blobstore"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/database"
	"github.com/localnerve/docanalysis/internal/extract"
	"github.com/localnerve/docanalysis/internal/llm"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/render"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const structuredReply = "```json\n" + `{"summary":"Solid","strengths":["clear"],"gaps":[],"suggestedImprovements":["add metrics"],"roleSuggestions":[],"keywords":{"Skills":["Go"," go ","SQL"]}}` + "\n```"

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialInterval: 0, MaxInterval: 0}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBType:               "sqlite-go",
		DBAppDatabase:        filepath.Join(t.TempDir(), "docanalysis.db"),
		DBAppConnectionLimit: 1,
		DBLogLevel:           "silent",
	}
	db, err := database.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

func setupChain(t *testing.T) *ChainManager {
	t.Helper()
	return NewChainManager(setupDB(t), testPolicy(), zap.NewNop())
}

func createDocument(t *testing.T, db *gorm.DB, owner string) *models.Document {
	t.Helper()
	doc := &models.Document{Owner: owner, SourceLocation: owner + "/source.txt", ContentType: "text/plain"}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

// fakeModel answers enhancement requests and JSON analysis requests separately.
// Like GenAIClient it rejects requests without user content.
type fakeModel struct {
	mu          sync.Mutex
	enhanced    string
	enhanceErr  error
	analysis    string
	analysisErr error
	requests    []llm.Request
}

func (f *fakeModel) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := req.Validate(); err != nil {
		return "", err
	}
	if req.JSON {
		return f.analysis, f.analysisErr
	}
	return f.enhanced, f.enhanceErr
}

func (f *fakeModel) Model() string { return "fake-model" }

func (f *fakeModel) calls() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

// fakeRenderer returns a fixed artifact
type fakeRenderer struct {
	renderErr error
	fetchErr  error
	data      []byte
	rendered  []string
}

func (f *fakeRenderer) Render(_ context.Context, text string, _ config.RenderOptions) (*render.Artifact, error) {
	f.rendered = append(f.rendered, text)
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return &render.Artifact{URL: "http://render/artifacts/1", Bytes: int64(len(f.data)), Pages: 2}, nil
}

func (f *fakeRenderer) Fetch(_ context.Context, _ *render.Artifact) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.data, nil
}

// failingBlobs fails every write
type failingBlobs struct{ blobstore.Store }

func (failingBlobs) Put(context.Context, string, []byte, map[string]string) error {
	return errors.New("disk full")
}

func setupPipeline(t *testing.T, model *fakeModel, renderer *fakeRenderer, log *zap.Logger) *Pipeline {
	t.Helper()
	blobs, err := blobstore.Open(blobstore.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		Chain:         NewChainManager(setupDB(t), testPolicy(), log),
		Model:         model,
		Extractor:     extract.New("pdftotext"),
		Renderer:      renderer,
		Blobs:         blobs,
		Profile:       config.DefaultProfile(),
		MinTextLength: 20,
		Log:           log,
	}
}

func longText() string {
	return strings.Repeat("Experienced engineer building storage systems. ", 4)
}
