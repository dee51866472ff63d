package benchmark

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/content"
	"github.com/alasharulary/alash/internal/adapters/gmaps"
	apphttp "github.com/alasharulary/alash/internal/adapters/http"
	"github.com/alasharulary/alash/internal/adapters/http/handlers"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/config"
	"github.com/alasharulary/alash/internal/ports"
)

func init() {
	// Release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadStore(b *testing.B) *content.Store {
	b.Helper()

	store, err := content.Load()
	if err != nil {
		b.Fatal(err)
	}

	return store
}

type noFetch struct{}

func (noFetch) FetchScript(context.Context, string) error { return nil }

// setupRouter wires the full route table with no maps key.
func setupRouter(b *testing.B) *gin.Engine {
	b.Helper()

	store := loadStore(b)
	catalog := app.NewCatalogService(app.CatalogServiceConfig{Store: store, Logger: discardLogger()})

	registry := app.NewScriptRegistry(noFetch{}, discardLogger())
	loaders := app.NewMapLoaders(app.MapLoaderConfig{Registry: registry, Logger: discardLogger()})
	loaders.StartAll(context.Background())
	b.Cleanup(loaders.CloseAll)

	sessions := app.NewSessionStore(app.SessionStoreConfig{
		Content:       store,
		Loaders:       loaders,
		NewSurface:    gmaps.NewSceneSurface,
		TTL:           time.Hour,
		QuoteInterval: time.Hour,
		Logger:        discardLogger(),
	})
	b.Cleanup(sessions.CloseAll)

	health := ports.NewHealthRegistry()
	_ = health.Register(catalog)
	for _, lang := range domain.Languages {
		_ = health.Register(loaders.For(lang))
	}

	engine := gin.New()
	apphttp.SetupRouter(engine, apphttp.RouterConfig{
		Logger:         discardLogger(),
		AppConfig:      &config.AppConfig{Name: "alash-bench"},
		Session:        &config.SessionConfig{Cookie: config.DefaultSessionCookie, TTL: time.Hour},
		Sessions:       sessions,
		HealthHandler:  handlers.NewHealthHandler(health, handlers.NewBuildInfo("1.0.0", "abc123", "2026-01-01T00:00:00Z"), nil),
		CatalogHandler: handlers.NewCatalogHandler(catalog, loaders, gmaps.NewSceneSurface),
		SessionHandler: handlers.NewSessionHandler(catalog),
		PageHandler:    handlers.NewPageHandler(catalog, 20*time.Second),
		Timeout:        apphttp.DefaultRequestTimeout,
	})

	return engine
}

// BenchmarkFilterPeople measures the dashboard search over the bundled records.
func BenchmarkFilterPeople(b *testing.B) {
	people := loadStore(b).People()

	queries := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "latin", query: "journalism"},
		{name: "cyrillic", query: "ұстаз"},
		{name: "no match", query: "zzzz"},
	}

	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				_ = app.FilterPeople(people, q.query)
			}
		})
	}
}

// BenchmarkFilterPlaces measures the map side list search.
func BenchmarkFilterPlaces(b *testing.B) {
	people := loadStore(b).People()

	b.ReportAllocs()

	for b.Loop() {
		_ = app.FilterPlaces(people, "торғай")
	}
}

// BenchmarkSearchPeopleLocalized includes localization of every match.
func BenchmarkSearchPeopleLocalized(b *testing.B) {
	catalog := app.NewCatalogService(app.CatalogServiceConfig{Store: loadStore(b), Logger: discardLogger()})
	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		_ = catalog.SearchPeople(ctx, "education", domain.LangEnglish)
	}
}

// BenchmarkLiveness is the probe path through the full middleware chain.
func BenchmarkLiveness(b *testing.B) {
	router := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}

// BenchmarkReadiness runs the content and map loader checks.
func BenchmarkReadiness(b *testing.B) {
	router := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}

// BenchmarkListPeopleAPI measures a paginated catalog read.
func BenchmarkListPeopleAPI(b *testing.B) {
	router := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/people?limit=5&lang=en", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}

// BenchmarkDashboardPage renders the dashboard for an existing session.
func BenchmarkDashboardPage(b *testing.B) {
	router := setupRouter(b)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", http.NoBody))

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		b.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", http.NoBody)
	req.AddCookie(cookies[0])

	b.ReportAllocs()

	for b.Loop() {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
