// config.go
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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType               string // mysql, postgres, sqlite, sqlite-go, sqlserver
	DBHost               string
	DBPort               string
	DBAppDatabase        string
	DBAppUser            string
	DBAppPassword        string
	DBAppConnectionLimit int
	DBLogLevel           string

	// Logging
	LogLevel  string
	LogFormat string // json or console

	// Blob storage
	BlobPath    string
	BlobTimeout time.Duration

	// Generative model
	GenAIAPIKey  string
	GenAIModel   string
	ModelRPS     float64
	ModelBurst   int
	ModelTimeout time.Duration

	// External rendering service
	RenderURL     string
	RenderTimeout time.Duration
	FetchTimeout  time.Duration

	// Versioning and pipeline behaviour
	StoreRetryAttempts int
	MinTextLength      int
	PDFToTextPath      string
	RenderProfilePath  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		DBType:               getEnv("DB_TYPE", "mysql"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBAppDatabase:        getEnv("DB_DATABASE", ""),
		DBAppUser:            getEnv("DB_APP_USER", ""),
		DBAppPassword:        getEnv("DB_APP_PASSWORD", ""),
		DBAppConnectionLimit: getEnvAsInt("DB_APP_CONNECTION_LIMIT", 5),
		DBLogLevel:           getEnv("DB_LOG_LEVEL", "warn"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		BlobPath:             getEnv("BLOB_PATH", "./blobs"),
		BlobTimeout:          getEnvAsDuration("BLOB_TIMEOUT", 10*time.Second),
		GenAIAPIKey:          getEnv("GENAI_API_KEY", ""),
		GenAIModel:           getEnv("GENAI_MODEL", "gemini-2.5-flash"),
		ModelRPS:             getEnvAsFloat("MODEL_RPS", 2),
		ModelBurst:           getEnvAsInt("MODEL_BURST", 4),
		ModelTimeout:         getEnvAsDuration("MODEL_TIMEOUT", 90*time.Second),
		RenderURL:            getEnv("RENDER_URL", ""),
		RenderTimeout:        getEnvAsDuration("RENDER_TIMEOUT", 60*time.Second),
		FetchTimeout:         getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
		StoreRetryAttempts:   getEnvAsInt("STORE_RETRY_ATTEMPTS", 5),
		MinTextLength:        getEnvAsInt("MIN_TEXT_LENGTH", 200),
		PDFToTextPath:        getEnv("PDFTOTEXT_PATH", "pdftotext"),
		RenderProfilePath:    getEnv("RENDER_PROFILE", ""),
	}

	// Validate required fields
	if cfg.DBAppDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if !isFileDB(cfg.DBType) && cfg.DBAppUser == "" {
		return nil, fmt.Errorf("DB_APP_USER is required")
	}
	if cfg.StoreRetryAttempts < 1 {
		return nil, fmt.Errorf("STORE_RETRY_ATTEMPTS must be at least 1")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// RequirePipeline checks the settings only the generation pipeline needs,
// so read-only tools can run without model or renderer credentials.
func (c *Config) RequirePipeline() error {
	if c.GenAIAPIKey == "" {
		return fmt.Errorf("GENAI_API_KEY is required")
	}
	if c.RenderURL == "" {
		return fmt.Errorf("RENDER_URL is required")
	}
	return nil
}

func isFileDB(dbType string) bool {
	return dbType == "sqlite" || dbType == "sqlite-go"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
