// health_test.go
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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localnerve/docanalysis/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHealthCheck(t *testing.T) {
	db := setupDB(t)
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer renderer.Close()

	cfg := &config.Config{DBType: "sqlite-go", DBAppDatabase: "docanalysis.db", RenderURL: renderer.URL}
	result := HealthCheck(context.Background(), cfg, db, zap.NewNop())
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.Renderer)

	cfg.RenderURL = ""
	result = HealthCheck(context.Background(), cfg, db, zap.NewNop())
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "unconfigured", result.Renderer)

	// nothing listens on port 1
	cfg.RenderURL = "http://127.0.0.1:1"
	result = HealthCheck(context.Background(), cfg, db, zap.NewNop())
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Renderer)
	assert.Contains(t, result.ErrorMessage, "Renderer ping failed")
}
