// app.go
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

// Package app wires configuration into the store, the collaborators and the pipeline.
package app

import (
	"context"
	"fmt"

	"github.com/localnerve/docanalysis/internal/blobstore"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/database"
	"github.com/localnerve/docanalysis/internal/extract"
	"github.com/localnerve/docanalysis/internal/llm"
	"github.com/localnerve/docanalysis/internal/render"
	"github.com/localnerve/docanalysis/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the long-lived resources of a process
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Chain    *services.ChainManager
	Blobs    *blobstore.BadgerStore
	Pipeline *services.Pipeline
}

// Open connects to the record store. Read-only commands need nothing more.
func Open(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}

	retry := services.DefaultRetryPolicy()
	if cfg.StoreRetryAttempts > 0 {
		retry.MaxAttempts = cfg.StoreRetryAttempts
	}

	return &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Chain:  services.NewChainManager(db, retry, log.Named("versions")),
	}, nil
}

// EnablePipeline opens the blob store and builds the model and rendering clients
func (a *App) EnablePipeline(ctx context.Context) error {
	cfg := a.Config
	if err := cfg.RequirePipeline(); err != nil {
		return err
	}

	profile, err := config.LoadProfile(cfg.RenderProfilePath)
	if err != nil {
		return err
	}

	model, err := llm.NewGenAIClient(ctx, llm.GenAIConfig{
		APIKey: cfg.GenAIAPIKey,
		Model:  cfg.GenAIModel,
		RPS:    cfg.ModelRPS,
		Burst:  cfg.ModelBurst,
	})
	if err != nil {
		return err
	}

	blobs, err := blobstore.Open(blobstore.Config{Path: cfg.BlobPath, Logger: a.Log.Named("blobs")})
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}
	a.Blobs = blobs

	a.Pipeline = &services.Pipeline{
		Chain:         a.Chain,
		Model:         model,
		Extractor:     extract.New(cfg.PDFToTextPath),
		Renderer:      render.NewClient(cfg.RenderURL, cfg.RenderTimeout, cfg.FetchTimeout),
		Blobs:         blobs,
		Profile:       profile,
		Timeouts:      services.Timeouts{Model: cfg.ModelTimeout, Blob: cfg.BlobTimeout},
		MinTextLength: cfg.MinTextLength,
		Log:           a.Log.Named("pipeline"),
	}
	return nil
}

// Close releases the blob store and the database pool
func (a *App) Close() {
	if a.Blobs != nil {
		if err := a.Blobs.Close(); err != nil {
			a.Log.Warn("Failed to close blob store", zap.Error(err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.Log.Warn("Failed to close database", zap.Error(err))
	}
}
