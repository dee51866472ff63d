//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

func startLoaders(t *testing.T, scriptURL string, timeout time.Duration) (app.MapLoaders, *ports.DefaultHealthRegistry) {
	t.Helper()

	registry := app.NewScriptRegistry(newScriptClient(t, timeout), discardLogger())
	loaders := app.NewMapLoaders(app.MapLoaderConfig{
		APIKey:    "integration-key",
		ScriptURL: scriptURL,
		Registry:  registry,
		Logger:    discardLogger(),
	})
	t.Cleanup(loaders.CloseAll)

	health := ports.NewHealthRegistry()
	for _, lang := range domain.Languages {
		require.NoError(t, health.Register(loaders.For(lang)))
	}

	loaders.StartAll(context.Background())
	registry.Wait()

	return loaders, health
}

// TestMapsScript_LoadOutcomes drives the real HTTP client, the script ACL
// and the loader state machine against a local script host.
func TestMapsScript_LoadOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus domain.MapStatus
		wantHealth ports.HealthStatus
	}{
		{name: "script served", status: http.StatusOK, wantStatus: domain.MapStatusReady, wantHealth: ports.HealthStatusHealthy},
		{name: "key rejected", status: http.StatusForbidden, wantStatus: domain.MapStatusError, wantHealth: ports.HealthStatusDegraded},
		{name: "host failing", status: http.StatusBadGateway, wantStatus: domain.MapStatusError, wantHealth: ports.HealthStatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newScriptHost(t, tt.status)

			loaders, health := startLoaders(t, host.URL+"/maps/api/js", 2*time.Second)

			for _, lang := range domain.Languages {
				assert.Equal(t, tt.wantStatus, loaders.For(lang).Status(), "lang %s", lang)
			}

			assert.Equal(t, int32(1), host.hits.Load(), "languages share one script and never retry")
			assert.Equal(t, tt.wantHealth, health.CheckAll(context.Background()).Status)
		})
	}
}

func TestMapsScript_FirstLanguageWins(t *testing.T) {
	host := newScriptHost(t, http.StatusOK)

	loaders, _ := startLoaders(t, host.URL+"/maps/api/js", 2*time.Second)

	assert.Contains(t, loaders.For(domain.LangEnglish).ScriptURL(), "language=en")

	queries := host.Queries()
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "language=kk", "the script registered first serves every language")
	assert.Contains(t, queries[0], "key=integration-key")
}

func TestMapsScript_SlowHostTimesOut(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(slow.Close)

	loaders, health := startLoaders(t, slow.URL+"/maps/api/js", 100*time.Millisecond)

	assert.Equal(t, domain.MapStatusError, loaders.For(domain.LangKazakh).Status())
	assert.Equal(t, ports.HealthStatusDegraded, health.CheckAll(context.Background()).Status)
}

func TestMapsScript_NoKeyNeverFetches(t *testing.T) {
	host := newScriptHost(t, http.StatusOK)

	registry := app.NewScriptRegistry(newScriptClient(t, time.Second), discardLogger())
	loaders := app.NewMapLoaders(app.MapLoaderConfig{
		ScriptURL: host.URL,
		Registry:  registry,
		Logger:    discardLogger(),
	})
	t.Cleanup(loaders.CloseAll)

	loaders.StartAll(context.Background())
	registry.Wait()

	assert.Equal(t, domain.MapStatusNoKey, loaders.For(domain.LangEnglish).Status())
	assert.Empty(t, loaders.For(domain.LangEnglish).ScriptURL())
	assert.Zero(t, host.hits.Load())
}
