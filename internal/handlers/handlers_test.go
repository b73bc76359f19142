// handlers_test.go
//
// Personal portfolio site service: public content pages and a single-admin content API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of portfolio-site.
// portfolio-site is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// portfolio-site is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with portfolio-site.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/admin"
	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/cache"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/forms"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/handlers"
	"github.com/localnerve/portfolio-site/internal/middleware"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/localnerve/portfolio-site/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	owner    = testutil.FakeUser{ID: "user-owner", Email: "owner@example.com", Password: "owner-pass"}
	stranger = testutil.FakeUser{ID: "user-stranger", Email: "stranger@example.com", Password: "stranger-pass"}
)

// setupApp wires the full route table over db.
func setupApp(t *testing.T, db *gorm.DB, limiter *middleware.RateLimiter) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		DBType:        "sqlite-pure",
		DBDatabase:    "site.db",
		AuthzURL:      "http://authorizer.local:8080",
		AuthzClientID: "client",
	}
	gw := gateway.New(db)
	content := services.NewContentService(gw, cache.New(cache.NewMemory(nil)), services.Options{})
	store := auth.NewStore(testutil.NewFakeProvider(owner, stranger), nil)
	validator := forms.MustNew()
	if limiter == nil {
		limiter = middleware.NewRateLimiter(1000, 1000)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Register(app, handlers.Routes{
		Public: &handlers.PublicHandler{Content: content, Forms: validator},
		Admin: &handlers.AdminHandler{
			Gates:   admin.NewRegistry(admin.NewGatewayBackend(cfg, content), store, time.Minute, nil),
			Store:   store,
			Content: content,
			Forms:   validator,
		},
		Tokens:  auth.NewTokens("test-secret", time.Hour, nil),
		Admins:  gw,
		Limiter: limiter,
	})
	return app
}

// browser carries the session cookie between requests.
type browser struct {
	t      *testing.T
	app    *fiber.App
	cookie *http.Cookie
}

func (b *browser) do(method, path string, body any) (int, map[string]any) {
	b.t.Helper()
	var r io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			buf, err := json.Marshal(body)
			require.NoError(b.t, err)
			raw = string(buf)
		}
		r = bytes.NewReader([]byte(raw))
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	resp, err := b.app.Test(req, 10000)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			b.cookie = c
		}
	}

	data, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(b.t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func stateOf(t *testing.T, body map[string]any) string {
	t.Helper()
	st, ok := body["state"].(map[string]any)
	require.True(t, ok, "no state in %v", body)
	s, _ := st["state"].(string)
	return s
}

func TestPublicPages(t *testing.T) {
	app := setupApp(t, testutil.OpenTestDB(t), nil)
	b := &browser{t: t, app: app}

	for path, page := range map[string]string{
		"/":         services.PageHome,
		"/about":    services.PageAbout,
		"/projects": services.PageProjects,
		"/writing":  services.PageWriting,
		"/resume":   services.PageResume,
		"/contact":  services.PageContact,
	} {
		status, body := b.do("GET", path, nil)
		assert.Equal(t, fiber.StatusOK, status, path)
		assert.Equal(t, page, body["page"], path)
		assert.Equal(t, false, body["degraded"], path)
	}

	status, body := b.do("GET", "/projects/no-such-project", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["ok"])

	status, body = b.do("GET", "/definitely/not/here", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "[404] Resource Not Found", body["message"])
}

func TestPublicPagesWithoutSchemaDegrade(t *testing.T) {
	app := setupApp(t, testutil.OpenBareDB(t), nil)
	b := &browser{t: t, app: app}

	status, body := b.do("GET", "/", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["degraded"])
	assert.Equal(t, services.DegradedNotice, body["notice"])

	// Backend detail never reaches visitors
	status, body = b.do("GET", "/api/public/projects/anything", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.NotContains(t, body["message"], "site_settings")
}

func TestRecordEvent(t *testing.T) {
	app := setupApp(t, testutil.OpenTestDB(t), nil)
	b := &browser{t: t, app: app}

	status, body := b.do("POST", "/api/public/events", map[string]any{"kind": "page_view", "path": "/projects"})
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.NotEmpty(t, body["sessionId"])

	status, body = b.do("POST", "/api/public/events", map[string]any{"kind": "hover", "path": "projects"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Len(t, errs, 2)

	status, _ = b.do("POST", "/api/public/events", `{"kind":`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestAdminFreshDeploymentFlow(t *testing.T) {
	app := setupApp(t, testutil.OpenTestDB(t), nil)
	b := &browser{t: t, app: app}

	status, body := b.do("GET", "/api/admin/state", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, string(admin.StateUnauthenticated), stateOf(t, body))
	require.NotNil(t, b.cookie)

	// Content API needs a session
	status, _ = b.do("GET", "/api/admin/settings", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = b.do("POST", "/api/admin/session", map[string]any{"email": owner.Email, "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = b.do("POST", "/api/admin/session", map[string]any{"email": owner.Email, "password": owner.Password})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, string(admin.StateClaimAvailable), stateOf(t, body))

	// Signed in but not the admin yet
	status, _ = b.do("GET", "/api/admin/settings", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = b.do("POST", "/api/admin/claim", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, string(admin.StateAuthorized), stateOf(t, body))
	assert.Equal(t, true, body["result"].(map[string]any)["success"])

	status, body = b.do("GET", "/admin", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin", body["page"])
	assert.Equal(t, string(admin.StateAuthorized), stateOf(t, body))

	status, settings := b.do("GET", "/api/admin/settings", nil)
	require.Equal(t, fiber.StatusOK, status)
	// version is omitted from the JSON while zero
	v, _ := settings["version"].(float64)
	version := int(v)

	status, _ = b.do("PUT", "/api/admin/settings", map[string]any{
		"version": version,
		"pages":   map[string]any{"resume": map[string]any{"enabled": false}, "contact": map[string]any{"enabled": true}},
	})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = b.do("GET", "/resume", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	// Same version again is stale
	status, body = b.do("PUT", "/api/admin/settings", map[string]any{
		"version": version,
		"seo":     map[string]any{"title": "Stale", "description": "Edit"},
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, true, body["versionError"])
}

func TestAdminProjectCRUD(t *testing.T) {
	db := testutil.OpenTestDB(t)
	_, err := gateway.New(db).ClaimAdmin(t.Context(), owner.ID)
	require.NoError(t, err)

	app := setupApp(t, db, nil)
	b := &browser{t: t, app: app}
	status, _ := b.do("POST", "/api/admin/session", map[string]any{"email": owner.Email, "password": owner.Password})
	require.Equal(t, fiber.StatusOK, status)

	status, body := b.do("POST", "/api/admin/projects", map[string]any{"summary": "no title", "status": "SECRET"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Len(t, body["errors"], 2)

	status, body = b.do("POST", "/api/admin/projects", map[string]any{
		"title":       "Cache gateway",
		"summary":     "Edge caching",
		"tags":        []string{"go"},
		"status":      "PUBLIC",
		"detailLevel": "STANDARD",
		"published":   true,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	created := body["data"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "cache-gateway", created["slug"])

	status, body = b.do("GET", "/api/public/projects?tag=go", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["projects"], 1)

	status, body = b.do("GET", "/projects/cache-gateway", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "project", body["page"])

	status, _ = b.do("DELETE", "/api/admin/projects/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = b.do("GET", "/api/admin/projects/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminWritingAndSeed(t *testing.T) {
	db := testutil.OpenTestDB(t)
	_, err := gateway.New(db).ClaimAdmin(t.Context(), owner.ID)
	require.NoError(t, err)

	app := setupApp(t, db, nil)
	b := &browser{t: t, app: app}
	b.do("POST", "/api/admin/session", map[string]any{"email": owner.Email, "password": owner.Password})

	status, body := b.do("POST", "/api/admin/seed", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	counts := body["data"].(map[string]any)
	assert.NotZero(t, counts["projects"])

	status, body = b.do("POST", "/api/admin/seed", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["data"].(map[string]any)["projects"])

	status, body = b.do("POST", "/api/admin/writing/items", map[string]any{"title": "Post", "url": "javascript:alert(1)"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Len(t, body["errors"], 1)

	status, _ = b.do("DELETE", "/api/admin/writing/items/abc", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, body = b.do("GET", "/api/public/writing", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["groups"])

	status, _ = b.do("GET", "/api/admin/analytics?days=7", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminWrongUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	_, err := gateway.New(db).ClaimAdmin(t.Context(), owner.ID)
	require.NoError(t, err)

	b := &browser{t: t, app: setupApp(t, db, nil)}
	status, body := b.do("POST", "/api/admin/session", map[string]any{"email": stranger.Email, "password": stranger.Password})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, string(admin.StateNotAuthorized), stateOf(t, body))

	status, _ = b.do("GET", "/api/admin/projects", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = b.do("DELETE", "/api/admin/session", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, string(admin.StateUnauthenticated), stateOf(t, body))
}

func TestSignInRateLimited(t *testing.T) {
	b := &browser{t: t, app: setupApp(t, testutil.OpenTestDB(t), middleware.NewRateLimiter(1, 1))}
	creds := map[string]any{"email": owner.Email, "password": "wrong"}

	status, _ := b.do("POST", "/api/admin/session", creds)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, body := b.do("POST", "/api/admin/session", creds)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limit", body["type"])
}
