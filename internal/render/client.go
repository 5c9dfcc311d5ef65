// client.go
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

// Package render is the adapter for the external rendering service.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/types"
)

// maxDetail bounds the upstream body copied into error details
const maxDetail = 2048

// Request is the body sent to POST /render
type Request struct {
	Text    string               `json:"text"`
	Options config.RenderOptions `json:"options"`
}

// Artifact is the rendering service's reference to the produced document
type Artifact struct {
	URL   string `json:"artifactUrl"`
	Bytes int64  `json:"bytes"`
	Pages int    `json:"pages"`
}

// Renderer renders text and retrieves the resulting artifact
type Renderer interface {
	Render(ctx context.Context, text string, opts config.RenderOptions) (*Artifact, error)
	Fetch(ctx context.Context, artifact *Artifact) ([]byte, error)
}

// Client talks to the rendering service over HTTP
type Client struct {
	BaseURL       string
	RenderTimeout time.Duration
	FetchTimeout  time.Duration
}

// NewClient creates a rendering client
func NewClient(baseURL string, renderTimeout, fetchTimeout time.Duration) *Client {
	return &Client{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		RenderTimeout: renderTimeout,
		FetchTimeout:  fetchTimeout,
	}
}

// Render sends text and options to the rendering service.
// Every failure, including timeouts, is reported as rendering_failed.
func (c *Client) Render(ctx context.Context, text string, opts config.RenderOptions) (*Artifact, error) {
	timeout, err := boundedTimeout(ctx, c.RenderTimeout)
	if err != nil {
		return nil, types.NewError(types.KindRenderingFailed, "rendering cancelled", err)
	}

	agent := fiber.Post(c.BaseURL + "/render")
	agent.JSON(Request{Text: text, Options: opts})
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, types.NewError(types.KindRenderingFailed, "rendering service unreachable", errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return nil, types.NewError(types.KindRenderingFailed,
			fmt.Sprintf("rendering service returned %d", code), nil).WithDetail(truncate(body))
	}

	var artifact Artifact
	if err := json.Unmarshal(body, &artifact); err != nil {
		return nil, types.NewError(types.KindRenderingFailed, "rendering service returned an invalid body", err).
			WithDetail(truncate(body))
	}
	if artifact.URL == "" {
		return nil, types.NewError(types.KindRenderingFailed, "rendering service returned no artifact reference", nil).
			WithDetail(truncate(body))
	}
	if strings.HasPrefix(artifact.URL, "/") {
		artifact.URL = c.BaseURL + artifact.URL
	}
	return &artifact, nil
}

// Fetch downloads a rendered artifact. Failures are reported as storage_failed,
// since the artifact never reaches durable storage.
func (c *Client) Fetch(ctx context.Context, artifact *Artifact) ([]byte, error) {
	timeout, err := boundedTimeout(ctx, c.FetchTimeout)
	if err != nil {
		return nil, types.NewError(types.KindStorageFailed, "artifact fetch cancelled", err)
	}

	agent := fiber.Get(artifact.URL)
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, types.NewError(types.KindStorageFailed, "artifact fetch failed", errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return nil, types.NewError(types.KindStorageFailed,
			fmt.Sprintf("artifact fetch returned %d", code), nil).WithDetail(truncate(body))
	}
	if len(body) == 0 {
		return nil, types.NewError(types.KindStorageFailed, "artifact is empty", nil)
	}
	return body, nil
}

// boundedTimeout returns the smaller of the configured timeout and the context's remaining time
func boundedTimeout(ctx context.Context, configured time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := configured
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return timeout, nil
}

func truncate(body []byte) string {
	if len(body) > maxDetail {
		return string(body[:maxDetail])
	}
	return string(body)
}
