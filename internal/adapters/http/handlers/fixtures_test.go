package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/alasharulary/alash/internal/adapters/content"
	"github.com/alasharulary/alash/internal/adapters/gmaps"
	"github.com/alasharulary/alash/internal/adapters/http/middleware"
	"github.com/alasharulary/alash/internal/app"
)

const testCookie = "alash_session"

type stubFetcher struct {
	err error
}

func (f stubFetcher) FetchScript(context.Context, string) error { return f.err }

// testEnv wires the real content, catalog, loaders and session store behind
// a gin engine carrying every handler in this package.
type testEnv struct {
	router   *gin.Engine
	catalog  *app.CatalogService
	sessions *app.SessionStore
	loaders  app.MapLoaders
	cookie   *http.Cookie
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv builds the environment. An empty key leaves maps in no-key; a
// non-nil fetchErr makes the script load fail.
func newTestEnv(t *testing.T, key string, fetchErr error) *testEnv {
	t.Helper()

	store, err := content.Load()
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

	catalog := app.NewCatalogService(app.CatalogServiceConfig{Store: store, Logger: discardLogger(), Now: now})

	registry := app.NewScriptRegistry(stubFetcher{err: fetchErr}, discardLogger())
	loaders := app.NewMapLoaders(app.MapLoaderConfig{APIKey: key, Registry: registry, Logger: discardLogger()})
	loaders.StartAll(context.Background())
	registry.Wait()
	t.Cleanup(loaders.CloseAll)

	sessions := app.NewSessionStore(app.SessionStoreConfig{
		Content:       store,
		Loaders:       loaders,
		NewSurface:    gmaps.NewSceneSurface,
		TTL:           time.Minute,
		QuoteInterval: time.Hour,
		Logger:        discardLogger(),
		Now:           now,
	})
	t.Cleanup(sessions.CloseAll)

	router := gin.New()
	router.SetHTMLTemplate(Templates())

	withSession := middleware.Session(middleware.SessionConfig{
		Store:  sessions,
		Cookie: testCookie,
		MaxAge: time.Minute,
	})

	api := router.Group("/api/v1")
	NewCatalogHandler(catalog, loaders, gmaps.NewSceneSurface).RegisterRoutes(api)
	NewSessionHandler(catalog).RegisterRoutes(api.Group("/session", withSession))

	NewPageHandler(catalog, 20*time.Second).RegisterRoutes(router.Group("", withSession))

	return &testEnv{router: router, catalog: catalog, sessions: sessions, loaders: loaders}
}

// do sends a request, carrying and updating the session cookie.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return e.send(req)
}

// form posts url-encoded values like a browser form.
func (e *testEnv) form(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return e.send(req)
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func (e *testEnv) send(req *http.Request) *httptest.ResponseRecorder {
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			e.cookie = c
		}
	}

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}
