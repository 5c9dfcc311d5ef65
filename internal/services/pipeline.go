// pipeline.go
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
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/docanalysis/internal/blobstore"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/extract"
	"github.com/localnerve/docanalysis/internal/llm"
	"github.com/localnerve/docanalysis/internal/metrics"
	"github.com/localnerve/docanalysis/internal/models"
	"github.com/localnerve/docanalysis/internal/parser"
	"github.com/localnerve/docanalysis/internal/render"
	"github.com/localnerve/docanalysis/internal/types"
	"go.uber.org/zap"
)

// Warnings attached to a Result
const (
	WarningShortText        = "short_text"
	WarningEnhancementEmpty = "enhancement_empty"
)

// Best-effort step statuses
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Timeouts bound the pipeline's calls to external collaborators.
// Render and fetch timeouts live on the render client.
type Timeouts struct {
	Model time.Duration
	Blob  time.Duration
}

// SourceInput is the document to analyze: inline text, inline bytes, or a blob location
type SourceInput struct {
	Location    string
	Name        string
	ContentType string
	Data        []byte
	Text        string
}

// Section is one titled block of a generated document
type Section struct {
	Heading string         `json:"heading"`
	Body    types.FlexText `json:"body"`
}

// GenerateInput holds the structured fields of a document to generate
type GenerateInput struct {
	Title    string                `json:"title"`
	Sections []Section             `json:"sections"`
	Render   *config.RenderOptions `json:"render,omitempty"`
	Lineage  *LineageHint          `json:"lineage,omitempty"`
}

// ChainOptions place the produced analysis in a document's chain
type ChainOptions struct {
	DocumentID            string
	PredecessorAnalysisID string
	Feedback              string
}

// Input is one pipeline request. Generate selects the generate path; otherwise the
// analyze path runs against Source, or against the document's stored source when Source is nil.
type Input struct {
	RequestorID string
	Source      *SourceInput
	Generate    *GenerateInput
	Chain       ChainOptions
}

// StepStatus reports the outcome of a best-effort step
type StepStatus struct {
	Status     string `json:"status"`
	AnalysisID string `json:"analysisId,omitempty"`
	Position   uint64 `json:"position,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ArtifactInfo describes the stored rendering of a generated document
type ArtifactInfo struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
	Pages int    `json:"pages,omitempty"`
}

// Result is the outcome of a successful pipeline run
type Result struct {
	DocumentID string        `json:"documentId"`
	AnalysisID string        `json:"analysisId,omitempty"`
	Position   uint64        `json:"position,omitempty"`
	Analysis   *StepStatus   `json:"analysis,omitempty"`
	Artifact   *ArtifactInfo `json:"artifact,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

func (r *Result) warn(w string) {
	for _, existing := range r.Warnings {
		if existing == w {
			return
		}
	}
	r.Warnings = append(r.Warnings, w)
}

// Pipeline coordinates extraction, model calls, rendering, storage and versioning
type Pipeline struct {
	Chain         *ChainManager
	Model         llm.Client
	Extractor     extract.Extractor
	Renderer      render.Renderer
	Blobs         blobstore.Store
	Profile       config.Profile
	Timeouts      Timeouts
	MinTextLength int
	Log           *zap.Logger
	Now           func() time.Time
}

// Run executes one request. Every fatal step reports a *types.CustomError.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if in.Generate != nil {
		return p.generate(ctx, in)
	}
	return p.analyze(ctx, in)
}

// analyze extracts text, asks the model for commentary and appends it to the document's chain
func (p *Pipeline) analyze(ctx context.Context, in Input) (*Result, error) {
	if in.Chain.DocumentID == "" {
		return nil, types.NewError(types.KindInvalidInput, "document id is required", nil)
	}

	doc, err := p.Chain.GetDocument(ctx, in.Chain.DocumentID)
	if err != nil {
		return nil, err
	}

	var prior *models.Analysis
	if in.Chain.PredecessorAnalysisID != "" {
		prior, err = p.Chain.GetAnalysis(ctx, in.Chain.PredecessorAnalysisID)
		if err != nil {
			if types.IsKind(err, types.KindNotFound) {
				return nil, types.NewError(types.KindConflict,
					fmt.Sprintf("predecessor analysis %s not found", in.Chain.PredecessorAnalysisID), nil)
			}
			return nil, err
		}
		// fail fast before the model call; the append transaction re-validates
		if err := checkPredecessor(doc, prior); err != nil {
			return nil, err
		}
	}

	result := &Result{DocumentID: doc.DocumentID}

	text, err := p.sourceText(ctx, doc, in.Source)
	metrics.Step("extract", err)
	if err != nil {
		return nil, err
	}
	if p.isShort(text) {
		result.warn(WarningShortText)
	}

	appended, err := p.analyzeText(ctx, doc.DocumentID, text, prior, in.Chain)
	if err != nil {
		return nil, err
	}
	result.AnalysisID = appended.AnalysisID
	result.Position = appended.Position
	result.Analysis = &StepStatus{Status: StatusSucceeded, AnalysisID: appended.AnalysisID, Position: appended.Position}
	return result, nil
}

// generate renders a new document from structured fields, stores it, commits its
// metadata and then attempts a best-effort first analysis.
func (p *Pipeline) generate(ctx context.Context, in Input) (*Result, error) {
	gen := in.Generate
	if in.RequestorID == "" {
		return nil, types.NewError(types.KindInvalidInput, "requestor id is required", nil)
	}
	if strings.TrimSpace(gen.Title) == "" {
		return nil, types.NewError(types.KindInvalidInput, "title is required", nil)
	}
	if gen.Lineage != nil && gen.Lineage.LineageID == "" {
		return nil, types.NewError(types.KindInvalidInput, "lineage id is required when lineage is given", nil)
	}

	if err := p.Chain.precheckCommit(ctx, in.Chain.DocumentID, in.RequestorID, gen.Lineage); err != nil {
		return nil, err
	}

	result := &Result{}

	// 1. Assemble
	text := assemble(gen)
	if p.isShort(text) {
		result.warn(WarningShortText)
	}

	// 2. Enhance
	enhanced, err := p.callModel(ctx, llm.Request{
		Parts: []llm.Part{llm.System(p.Profile.Prompts.Enhancement), llm.User(text)},
	})
	metrics.Step("enhance", err)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(enhanced) == "" {
		enhanced = text
		result.warn(WarningEnhancementEmpty)
	}

	// 3. Render
	opts := p.Profile.Render
	if gen.Render != nil {
		opts = mergeRenderOptions(opts, *gen.Render)
	}
	start := time.Now()
	artifact, err := p.Renderer.Render(ctx, enhanced, opts)
	metrics.ObserveCall("render", start)
	metrics.Step("render", err)
	if err != nil {
		return nil, asKind(err, types.KindRenderingFailed, "rendering failed")
	}

	// 4. Fetch and store
	start = time.Now()
	data, err := p.Renderer.Fetch(ctx, artifact)
	metrics.ObserveCall("fetch", start)
	if err != nil {
		metrics.Step("store", err)
		return nil, asKind(err, types.KindStorageFailed, "artifact fetch failed")
	}

	blobPath := p.blobPath(in.RequestorID, gen.Title)
	err = p.putBlob(ctx, blobPath, data, map[string]string{
		"owner":       in.RequestorID,
		"title":       gen.Title,
		"contentType": "application/pdf",
		"pages":       fmt.Sprint(artifact.Pages),
	})
	metrics.Step("store", err)
	if err != nil {
		return nil, err
	}
	result.Artifact = &ArtifactInfo{Path: blobPath, Bytes: len(data), Pages: artifact.Pages}

	// 5. Metadata commit
	doc := &models.Document{
		DocumentID:     in.Chain.DocumentID,
		Owner:          in.RequestorID,
		SourceLocation: blobPath,
		Title:          gen.Title,
		ContentType:    "application/pdf",
		LastUpdate:     p.now(),
	}
	err = p.Chain.commitDocument(ctx, doc, gen.Lineage)
	metrics.Step("commit", err)
	if err != nil {
		return nil, err
	}
	result.DocumentID = doc.DocumentID

	// 6. Best-effort analysis of the rendered text
	appended, err := p.analyzeText(ctx, doc.DocumentID, enhanced, nil, ChainOptions{DocumentID: doc.DocumentID})
	if err != nil {
		p.log().Error("secondary analysis failed",
			zap.String("documentId", doc.DocumentID),
			zap.String("kind", string(types.KindOf(err))),
			zap.Error(err))
		result.Analysis = &StepStatus{Status: StatusFailed, Error: err.Error()}
		return result, nil
	}
	result.AnalysisID = appended.AnalysisID
	result.Position = appended.Position
	result.Analysis = &StepStatus{Status: StatusSucceeded, AnalysisID: appended.AnalysisID, Position: appended.Position}
	return result, nil
}

// analyzeText runs the model over text, parses the reply and appends it to the chain
func (p *Pipeline) analyzeText(ctx context.Context, documentID, text string, prior *models.Analysis, chain ChainOptions) (*AppendResult, error) {
	raw, err := p.callModel(ctx, analysisRequest(p.Profile.Prompts.Analysis, text, prior, chain.Feedback))
	metrics.Step("analyze", err)
	if err != nil {
		return nil, err
	}

	content := parser.Parse(raw)
	if !content.IsStructured() {
		p.log().Warn("Model returned unstructured commentary", zap.String("documentId", documentID))
	}

	appended, err := p.Chain.AppendAnalysis(ctx, AppendInput{
		DocumentID:            documentID,
		Content:               content,
		ModelIdentifier:       p.Model.Model(),
		PredecessorAnalysisID: chain.PredecessorAnalysisID,
		Feedback:              chain.Feedback,
		GenerationTime:        p.now(),
	})
	metrics.Step("append", err)
	return appended, err
}

// blankTextNotice replaces blank document text in analysis requests
const blankTextNotice = "[No text could be extracted from this document.]"

func analysisRequest(prompt, text string, prior *models.Analysis, feedback string) llm.Request {
	if strings.TrimSpace(text) == "" {
		text = blankTextNotice
	}
	parts := []llm.Part{llm.System(prompt), llm.User(text)}
	if prior != nil {
		parts = append(parts, llm.Part{Role: llm.RoleModel, Text: prior.Content.Data().Text()})
	}
	if feedback != "" {
		parts = append(parts, llm.User("Revise the previous analysis using this reviewer feedback:\n"+feedback))
	}
	return llm.Request{Parts: parts, JSON: true}
}

func (p *Pipeline) callModel(ctx context.Context, req llm.Request) (string, error) {
	if p.Timeouts.Model > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeouts.Model)
		defer cancel()
	}

	start := time.Now()
	out, err := p.Model.Generate(ctx, req)
	metrics.ObserveCall("model", start)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyRequest) {
			return "", types.NewError(types.KindInvalidInput, "document has no text to send to the model", err)
		}
		return "", types.NewError(types.KindUpstreamUnavailable, "generative model call failed", err)
	}
	return out, nil
}

// sourceText resolves the text of the analyze path's source
func (p *Pipeline) sourceText(ctx context.Context, doc *models.Document, src *SourceInput) (string, error) {
	if src != nil && src.Text != "" {
		return src.Text, nil
	}

	var source extract.Source
	switch {
	case src != nil && len(src.Data) > 0:
		source = extract.Source{Name: src.Name, ContentType: src.ContentType, Data: src.Data}
	default:
		location, contentType := doc.SourceLocation, doc.ContentType
		if src != nil && src.Location != "" {
			location = src.Location
			if src.ContentType != "" {
				contentType = src.ContentType
			}
		}
		blob, err := p.getBlob(ctx, location)
		if err != nil {
			return "", err
		}
		if contentType == "" {
			contentType = blob.Metadata["contentType"]
		}
		source = extract.Source{Name: path.Base(location), ContentType: contentType, Data: blob.Data}
	}

	text, err := p.Extractor.Extract(ctx, source)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return "", types.NewError(types.KindInvalidInput, "unsupported document type", err)
		}
		return "", types.NewError(types.KindInvalidInput, "text extraction failed", err)
	}
	return text, nil
}

func (p *Pipeline) getBlob(ctx context.Context, location string) (*blobstore.Blob, error) {
	ctx, cancel := p.blobContext(ctx)
	defer cancel()

	start := time.Now()
	blob, err := p.Blobs.Get(ctx, location)
	metrics.ObserveCall("blob_get", start)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, types.NewError(types.KindNotFound, fmt.Sprintf("source %s not found", location), err)
		}
		return nil, types.NewError(types.KindStorageFailed, "failed to read source", err)
	}
	return blob, nil
}

func (p *Pipeline) putBlob(ctx context.Context, location string, data []byte, meta map[string]string) error {
	ctx, cancel := p.blobContext(ctx)
	defer cancel()

	start := time.Now()
	err := p.Blobs.Put(ctx, location, data, meta)
	metrics.ObserveCall("blob_put", start)
	if err != nil {
		return types.NewError(types.KindStorageFailed, "failed to store artifact", err)
	}
	return nil
}

func (p *Pipeline) blobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeouts.Blob > 0 {
		return context.WithTimeout(ctx, p.Timeouts.Blob)
	}
	return context.WithCancel(ctx)
}

// blobPath names a generated artifact {owner}/{slug(title)}-{UTC timestamp}-{uuid8}.pdf
func (p *Pipeline) blobPath(owner, title string) string {
	return fmt.Sprintf("%s/%s-%s-%s.pdf",
		slug(owner, "anonymous"),
		slug(title, "document"),
		p.now().UTC().Format("20060102T150405Z"),
		uuid.NewString()[:8])
}

// isShort flags blank text regardless of the configured minimum
func (p *Pipeline) isShort(text string) bool {
	n := len([]rune(strings.TrimSpace(text)))
	return n == 0 || n < p.MinTextLength
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Pipeline) log() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// assemble joins title and sections into the plain text sent for enhancement
func assemble(gen *GenerateInput) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(gen.Title))
	b.WriteString("\n")
	for _, s := range gen.Sections {
		b.WriteString("\n")
		if heading := strings.TrimSpace(s.Heading); heading != "" {
			b.WriteString(heading)
			b.WriteString("\n")
		}
		for _, line := range s.Body.Lines() {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// mergeRenderOptions overlays the non-zero request options on the profile defaults
func mergeRenderOptions(base, override config.RenderOptions) config.RenderOptions {
	if override.PageSize != "" {
		base.PageSize = override.PageSize
	}
	if override.MarginMM != 0 {
		base.MarginMM = override.MarginMM
	}
	if override.Font != "" {
		base.Font = override.Font
	}
	if override.HeaderHTML != "" {
		base.HeaderHTML = override.HeaderHTML
	}
	if override.FooterHTML != "" {
		base.FooterHTML = override.FooterHTML
	}
	if override.PageNumbers {
		base.PageNumbers = true
	}
	return base
}

// asKind keeps an already classified error, otherwise classifies it as kind
func asKind(err error, kind types.ErrorKind, message string) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return types.NewError(kind, message, err)
}

func slug(s, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 60 {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 60 {
		out = strings.Trim(out[:60], "-")
	}
	if out == "" {
		return fallback
	}
	return out
}
