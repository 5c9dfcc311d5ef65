// main.go
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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/docanalysis/internal/app"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/database"
	"github.com/localnerve/docanalysis/internal/handlers"
	"github.com/localnerve/docanalysis/internal/logging"
	"github.com/localnerve/docanalysis/internal/services"
	"go.uber.org/zap"

	_ "github.com/localnerve/docanalysis/docs/api" // Swagger docs
)

// @title Document Analysis API
// @version 1.0.0
// @description Versioned document analyses with provenance, plus document generation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/docanalysis
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer a.Close()

	// Run auto-migrations
	if err := database.AutoMigrate(a.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := a.EnablePipeline(ctx); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	// Create Fiber app
	server := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		ReadTimeout:  30 * time.Second,
		// Generation waits on the model and the renderer
		WriteTimeout:          cfg.ModelTimeout*2 + cfg.RenderTimeout + cfg.FetchTimeout,
		DisableStartupMessage: true,
	})

	// Global middleware
	server.Use(recover.New())
	server.Use(logger.New())
	server.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("docanalysis")
	prometheus.RegisterAt(server, "/metrics")
	server.Use(prometheus.Middleware)

	// Swagger documentation
	server.Get("/swagger/*", swagger.HandlerDefault)

	// Health
	server.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(c.UserContext(), cfg, a.DB, log)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	handlers.Register(server.Group("/api"), &handlers.Handlers{
		Chain:    a.Chain,
		Pipeline: a.Pipeline,
		Log:      log.Named("http"),
	})

	// 404 handler
	server.Use(handlers.NotFoundHandler)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("Gracefully shutting down...")
		_ = server.ShutdownWithTimeout(30 * time.Second)
	}()

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Port), zap.String("db", cfg.DBType))
	return server.Listen(":" + cfg.Port)
}
