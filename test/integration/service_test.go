//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/alasharulary/alash/internal/adapters/clients"
	"github.com/alasharulary/alash/internal/adapters/clients/acl"
	"github.com/alasharulary/alash/internal/adapters/content"
	"github.com/alasharulary/alash/internal/adapters/gmaps"
	apphttp "github.com/alasharulary/alash/internal/adapters/http"
	"github.com/alasharulary/alash/internal/adapters/http/handlers"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/config"
	"github.com/alasharulary/alash/internal/platform/metrics"
	"github.com/alasharulary/alash/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptHost serves a fake maps loader script and counts the fetches.
type scriptHost struct {
	*httptest.Server
	hits   atomic.Int32
	status int

	mu      sync.Mutex
	queries []string
}

func (h *scriptHost) Queries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.queries...)
}

func newScriptHost(t *testing.T, status int) *scriptHost {
	t.Helper()

	h := &scriptHost{status: status}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		h.mu.Lock()
		h.queries = append(h.queries, r.URL.RawQuery)
		h.mu.Unlock()

		w.Header().Set("Content-Type", "text/javascript")
		w.WriteHeader(h.status)
		_, _ = w.Write([]byte("window.google = {maps: {}};"))
	}))
	t.Cleanup(h.Close)

	return h
}

func newScriptClient(t *testing.T, timeout time.Duration) *acl.ScriptClient {
	t.Helper()

	client, err := clients.New(&clients.Config{
		ServiceName: "maps-script",
		Timeout:     timeout,
		UserAgent:   "alash-integration",
		Logger:      discardLogger(),
	})
	require.NoError(t, err)

	return acl.NewScriptClient(client, discardLogger())
}

// startService wires the whole service the way cmd/service does, with a maps
// key and a local script host, and returns its base URL.
func startService(t *testing.T) string {
	t.Helper()

	gin.SetMode(gin.TestMode)

	host := newScriptHost(t, http.StatusOK)

	store, err := content.Load()
	require.NoError(t, err)

	recorder, err := metrics.NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	catalog := app.NewCatalogService(app.CatalogServiceConfig{Store: store, Recorder: recorder, Logger: discardLogger()})

	registry := app.NewScriptRegistry(newScriptClient(t, 2*time.Second), discardLogger())
	loaders := app.NewMapLoaders(app.MapLoaderConfig{
		APIKey:    "integration-key",
		ScriptURL: host.URL + "/maps/api/js",
		Registry:  registry,
		Recorder:  recorder,
		Logger:    discardLogger(),
	})

	health := ports.NewHealthRegistry()
	require.NoError(t, health.Register(catalog))
	for _, lang := range domain.Languages {
		require.NoError(t, health.Register(loaders.For(lang)))
	}

	sessions := app.NewSessionStore(app.SessionStoreConfig{
		Content:       store,
		Quotes:        app.NewQuoteService(app.QuoteServiceConfig{Store: store, Recorder: recorder}),
		Loaders:       loaders,
		NewSurface:    gmaps.NewSceneSurface,
		TTL:           time.Minute,
		QuoteInterval: time.Hour,
		Recorder:      recorder,
		Logger:        discardLogger(),
	})

	engine := gin.New()
	apphttp.SetupRouter(engine, apphttp.RouterConfig{
		Logger:    discardLogger(),
		AppConfig: &config.AppConfig{Name: "alash-integration"},
		Session:   &config.SessionConfig{Cookie: config.DefaultSessionCookie, TTL: time.Minute},
		Sessions:  sessions,
		HealthHandler: handlers.NewHealthHandler(health,
			handlers.NewBuildInfo("integration", "none", "now"), recorder.Handler()),
		CatalogHandler: handlers.NewCatalogHandler(catalog, loaders, gmaps.NewSceneSurface),
		SessionHandler: handlers.NewSessionHandler(catalog),
		PageHandler:    handlers.NewPageHandler(catalog, 20*time.Second),
		Timeout:        5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	loaders.StartAll(ctx)
	registry.Wait()

	server := httptest.NewServer(engine)

	t.Cleanup(func() {
		server.Close()
		cancel()
		sessions.CloseAll()
		loaders.CloseAll()
	})

	return server.URL
}
