// client_test.go
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

package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localnerve/docanalysis/internal/config"
	"github.com/localnerve/docanalysis/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", 2*time.Second, 2*time.Second)
}

func TestRenderAndFetch(t *testing.T) {
	var received Request
	client := newRenderServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/render":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"artifactUrl":"/artifacts/1.pdf","bytes":8,"pages":1}`))
		case "/artifacts/1.pdf":
			_, _ = w.Write([]byte("%PDF-1.7"))
		default:
			http.NotFound(w, r)
		}
	})

	opts := config.RenderOptions{PageSize: "A4", MarginMM: 10, PageNumbers: true}
	artifact, err := client.Render(context.Background(), "hello", opts)
	require.NoError(t, err)
	assert.Equal(t, "hello", received.Text)
	assert.Equal(t, opts, received.Options)
	assert.Equal(t, client.BaseURL+"/artifacts/1.pdf", artifact.URL)
	assert.Equal(t, 1, artifact.Pages)

	data, err := client.Fetch(context.Background(), artifact)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestRenderNon2xx(t *testing.T) {
	client := newRenderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad margins"}`))
	})

	_, err := client.Render(context.Background(), "hello", config.RenderOptions{})
	require.Error(t, err)
	assert.Equal(t, types.KindRenderingFailed, types.KindOf(err))

	var ce *types.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Detail, "bad margins")
}

func TestRenderMissingReference(t *testing.T) {
	client := newRenderServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bytes":1}`))
	})

	_, err := client.Render(context.Background(), "hello", config.RenderOptions{})
	assert.Equal(t, types.KindRenderingFailed, types.KindOf(err))
}

func TestRenderTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newRenderServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	})
	defer close(release)
	client.RenderTimeout = 50 * time.Millisecond

	_, err := client.Render(context.Background(), "hello", config.RenderOptions{})
	assert.Equal(t, types.KindRenderingFailed, types.KindOf(err))
}

func TestRenderCancelledContext(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Render(ctx, "hello", config.RenderOptions{})
	assert.Equal(t, types.KindRenderingFailed, types.KindOf(err))
}

func TestFetchFailure(t *testing.T) {
	client := newRenderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})

	_, err := client.Fetch(context.Background(), &Artifact{URL: client.BaseURL + "/artifacts/gone.pdf"})
	assert.Equal(t, types.KindStorageFailed, types.KindOf(err))
}

func TestBoundedTimeout(t *testing.T) {
	d, err := boundedTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d, err = boundedTimeout(ctx, time.Minute)
	require.NoError(t, err)
	assert.LessOrEqual(t, d, 100*time.Millisecond)
}
