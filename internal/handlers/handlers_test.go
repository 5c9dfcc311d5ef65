// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/blobstore"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/database"
	"github.com/localnerve/docanalysis/internal/extract"
	"github.com/localnerve/docanalysis/internal/handlers"
	"github.com/localnerve/docanalysis/internal/llm"
	"github.com/localnerve/docanalysis/internal/middleware"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/render"
	"github.com/localnerve/docanalysis/internal/services"
	"github.com/localnerve/docanalysis/internal/types"
	"github.com/localnerve/docanalysis/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const reply = `{"summary":"Strong profile","strengths":["depth"],"keywords":{"skills":["go"]}}`

type stubModel struct{}

func (stubModel) Generate(_ context.Context, req llm.Request) (string, error) {
	if req.JSON {
		return reply, nil
	}
	return strings.Repeat("Enhanced document text. ", 5), nil
}

func (stubModel) Model() string { return "stub" }

type stubRenderer struct{ err error }

func (r stubRenderer) Render(context.Context, string, config.RenderOptions) (*render.Artifact, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &render.Artifact{URL: "http://render/a.pdf", Pages: 1}, nil
}

func (stubRenderer) Fetch(context.Context, *render.Artifact) ([]byte, error) {
	return []byte("%PDF"), nil
}

type testEnv struct {
	app   *fiber.App
	chain *services.ChainManager
	blobs *blobstore.BadgerStore
}

func setup(t *testing.T, model llm.Client, renderer render.Renderer) *testEnv {
	t.Helper()
	db, err := database.Connect(&config.Config{
		DBType:               "sqlite-go",
		DBAppDatabase:        filepath.Join(t.TempDir(), "handlers.db"),
		DBAppConnectionLimit: 1,
		DBLogLevel:           "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { database.Close(db) })

	blobs, err := blobstore.Open(blobstore.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	chain := services.NewChainManager(db, services.RetryPolicy{MaxAttempts: 3}, zap.NewNop())
	h := &handlers.Handlers{
		Chain: chain,
		Pipeline: &services.Pipeline{
			Chain:     chain,
			Model:     model,
			Extractor: extract.New("pdftotext"),
			Renderer:  renderer,
			Blobs:     blobs,
			Profile:   config.DefaultProfile(),
			Log:       zap.NewNop(),
		},
		Log: zap.NewNop(),
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(zap.NewNop())})
	handlers.Register(app.Group("/api"), h)
	app.Use(handlers.NotFoundHandler)
	return &testEnv{app: app, chain: chain, blobs: blobs}
}

func (e *testEnv) do(t *testing.T, method, url string, body interface{}, requestor string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if requestor != "" {
		req.Header.Set(middleware.RequestorHeader, requestor)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type mutation struct {
	Ok     bool            `json:"ok"`
	Result services.Result `json:"result"`
}

func decodeMutation(t *testing.T, data []byte) services.Result {
	t.Helper()
	var m mutation
	require.NoError(t, json.Unmarshal(data, &m))
	require.True(t, m.Ok)
	return m.Result
}

func decodeError(t *testing.T, data []byte) utils.ErrorResponseStruct {
	t.Helper()
	var e utils.ErrorResponseStruct
	require.NoError(t, json.Unmarshal(data, &e))
	assert.False(t, e.Ok)
	return e
}

func TestStorageEventThenRegenerate(t *testing.T) {
	env := setup(t, stubModel{}, stubRenderer{})
	ctx := context.Background()
	require.NoError(t, env.blobs.Put(ctx, "uploads/u1/cv.txt", []byte(strings.Repeat("Ten years of Go. ", 20)), nil))

	event := map[string]interface{}{
		"bucket":      "uploads",
		"path":        "u1/cv.txt",
		"contentType": "text/plain",
		"metadata":    map[string]string{"documentId": "doc-1", "owner": "u1"},
	}
	resp, data := env.do(t, "POST", "/api/events/storage", event, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(data))
	first := decodeMutation(t, data)
	assert.Equal(t, "doc-1", first.DocumentID)
	assert.Equal(t, "doc-1-1", first.AnalysisID)

	resp, data = env.do(t, "POST", "/api/documents/doc-1/regenerate",
		handlers.RegenerateRequest{AnalysisID: "doc-1-1", Feedback: "shorter"}, "u1")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(data))
	second := decodeMutation(t, data)
	assert.Equal(t, uint64(2), second.Position)

	// the superseded analysis is no longer a valid predecessor
	resp, data = env.do(t, "POST", "/api/documents/doc-1/regenerate",
		handlers.RegenerateRequest{AnalysisID: "doc-1-1"}, "u1")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	e := decodeError(t, data)
	assert.Equal(t, string(types.KindConflict), e.Type)
	assert.True(t, e.VersionError)

	resp, data = env.do(t, "GET", "/api/documents/doc-1/analyses", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var chain []models.Analysis
	require.NoError(t, json.Unmarshal(data, &chain))
	require.Len(t, chain, 2)
	assert.Equal(t, "doc-1-2", *chain[0].NextAnalysisID)
	assert.Equal(t, "Strong profile", chain[1].Content.Data().Structured.Summary)

	resp, data = env.do(t, "GET", "/api/documents/doc-1", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var doc models.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, uint64(2), doc.AnalysisCount)
	assert.Len(t, doc.Versions, 2)
}

func TestStorageEventValidation(t *testing.T) {
	env := setup(t, stubModel{}, stubRenderer{})

	tests := []struct {
		name  string
		event interface{}
	}{
		{name: "no path", event: map[string]interface{}{"metadata": map[string]string{"documentId": "d", "owner": "u"}}},
		{name: "no document id", event: map[string]interface{}{"path": "a.txt", "metadata": map[string]string{"owner": "u"}}},
		{name: "no owner", event: map[string]interface{}{"path": "a.txt", "metadata": map[string]string{"documentId": "d"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := env.do(t, "POST", "/api/events/storage", tc.event, "")
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, string(types.KindInvalidInput), decodeError(t, data).Type)
		})
	}

	resp, _ := env.do(t, "POST", "/api/events/storage", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateDocument(t *testing.T) {
	env := setup(t, stubModel{}, stubRenderer{})

	body := map[string]interface{}{
		"title":    "Platform Engineer",
		"sections": []map[string]interface{}{{"heading": "Summary", "body": "Builds platforms"}},
		"lineage":  map[string]interface{}{"lineageId": "pe-1", "metadata": map[string]string{"target": "infra"}},
	}

	resp, _ := env.do(t, "POST", "/api/documents/generate", body, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, data := env.do(t, "POST", "/api/documents/generate", body, "u1")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(data))
	result := decodeMutation(t, data)
	assert.NotEmpty(t, result.DocumentID)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, services.StatusSucceeded, result.Analysis.Status)
	require.NotNil(t, result.Artifact)
	assert.True(t, strings.HasPrefix(result.Artifact.Path, "u1/platform-engineer-"))

	resp, data = env.do(t, "GET", "/api/documents", nil, "u1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(data, &docs))
	assert.Len(t, docs, 1)
}

func TestGenerateRenderingFailure(t *testing.T) {
	failure := types.NewError(types.KindRenderingFailed, "rendering service returned 500", nil).WithDetail("upstream exploded")
	env := setup(t, stubModel{}, stubRenderer{err: failure})

	resp, data := env.do(t, "POST", "/api/documents/generate", map[string]interface{}{"title": "T"}, "u1")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	e := decodeError(t, data)
	assert.Equal(t, string(types.KindRenderingFailed), e.Type)
	assert.Equal(t, "upstream exploded", e.Detail)
	assert.Equal(t, "/api/documents/generate", e.URL)

	resp, _ = env.do(t, "GET", "/api/documents", nil, "u1")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestReadsAndReview(t *testing.T) {
	env := setup(t, stubModel{}, stubRenderer{})
	ctx := context.Background()

	_, err := env.chain.RegisterDocument(ctx, models.Document{DocumentID: "doc-9", Owner: "u1", SourceLocation: "x"})
	require.NoError(t, err)

	resp, _ := env.do(t, "GET", "/api/documents/doc-9/analyses", nil, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, err = env.chain.AppendAnalysis(ctx, services.AppendInput{DocumentID: "doc-9"})
	require.NoError(t, err)

	resp, data := env.do(t, "PATCH", "/api/analyses/doc-9-1/review", map[string]interface{}{"rating": 5, "comment": "great"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var analysis models.Analysis
	require.NoError(t, json.Unmarshal(data, &analysis))
	assert.Equal(t, 5, *analysis.UserRating)

	resp, _ = env.do(t, "PATCH", "/api/analyses/doc-9-1/review", map[string]interface{}{"rating": 0}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, data = env.do(t, "GET", "/api/analyses/missing-1", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(types.KindNotFound), decodeError(t, data).Type)

	resp, _ = env.do(t, "GET", "/api/documents/missing", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/api/nothing-here", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// toggleModel fails while down is set
type toggleModel struct {
	stubModel
	down bool
}

func (m *toggleModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	if m.down {
		return "", assert.AnError
	}
	return m.stubModel.Generate(ctx, req)
}

func TestUpstreamUnavailable(t *testing.T) {
	model := &toggleModel{down: true}
	env := setup(t, model, stubRenderer{})
	ctx := context.Background()
	require.NoError(t, env.blobs.Put(ctx, "a.txt", []byte("some text to analyze"), nil))

	event := map[string]interface{}{"path": "a.txt", "metadata": map[string]string{"documentId": "d1", "owner": "u1"}}
	resp, data := env.do(t, "POST", "/api/events/storage", event, "")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, string(types.KindUpstreamUnavailable), decodeError(t, data).Type)

	// the registered document stays without analyses until the event is redelivered
	registered, err := env.chain.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), registered.AnalysisCount)
	assert.Nil(t, registered.HeadAnalysisID)

	model.down = false
	resp, data = env.do(t, "POST", "/api/events/storage", event, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(data))
	redelivered := decodeMutation(t, data)
	assert.Equal(t, "d1", redelivered.DocumentID)
	assert.Equal(t, "d1-1", redelivered.AnalysisID)
	assert.Equal(t, uint64(1), redelivered.Position)
}
