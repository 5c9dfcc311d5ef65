// genai.go
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

package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GenAIClient calls Gemini through google.golang.org/genai, throttled by a token bucket.
type GenAIClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// GenAIConfig configures NewGenAIClient
type GenAIConfig struct {
	APIKey string
	Model  string
	RPS    float64
	Burst  int
}

// NewGenAIClient creates a Gemini client
func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client:  client,
		model:   cfg.Model,
		limiter: NewLimiter(cfg.RPS, cfg.Burst),
	}, nil
}

// NewLimiter builds the request throttle. rps <= 0 disables throttling.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Model returns the model identifier recorded on analyses
func (c *GenAIClient) Model() string {
	return c.model
}

// Generate sends the request and returns the concatenated response text
func (c *GenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("GenAI rate limit wait: %w", err)
	}

	contents, config := buildRequest(req)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return result.Text(), nil
}

// buildRequest maps system parts onto the system instruction and the rest onto contents
func buildRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	var system []string
	var contents []*genai.Content
	for _, p := range req.Parts {
		switch p.Role {
		case RoleSystem:
			system = append(system, p.Text)
		case RoleModel:
			contents = append(contents, genai.NewContentFromText(p.Text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(p.Text, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return contents, config
}
