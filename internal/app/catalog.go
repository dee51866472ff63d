package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/logging"
	"github.com/alasharulary/alash/internal/ports"
)

// Search kinds, used as metric labels.
const (
	SearchKindPeople = "people"
	SearchKindPlaces = "places"
)

// CatalogService answers read-only content queries in a given language.
type CatalogService struct {
	store    ports.ContentStore
	recorder ports.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// CatalogServiceConfig contains configuration for the catalog service.
type CatalogServiceConfig struct {
	Store    ports.ContentStore
	Recorder ports.Recorder
	Logger   *slog.Logger

	// Now defaults to time.Now. Used for lifespans of living people.
	Now func() time.Time
}

// NewCatalogService creates a catalog service.
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	if cfg.Store == nil {
		panic("app: ContentStore is required")
	}

	if cfg.Recorder == nil {
		cfg.Recorder = ports.NopRecorder{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &CatalogService{
		store:    cfg.Store,
		recorder: cfg.Recorder,
		logger:   cfg.Logger.With(slog.String("component", "app.CatalogService")),
		now:      cfg.Now,
	}
}

// SearchPeople filters every person by query and localizes the result.
func (s *CatalogService) SearchPeople(ctx context.Context, query string, lang domain.Language) []LocalizedPerson {
	matches := FilterPeople(s.store.People(), query)
	s.recordSearch(ctx, SearchKindPeople, query, len(matches))

	return LocalizeAll(matches, lang, s.now())
}

// SearchPlaces filters location-bearing people by query and localizes the result.
func (s *CatalogService) SearchPlaces(ctx context.Context, query string, lang domain.Language) []LocalizedPerson {
	matches := FilterPlaces(s.store.People(), query)
	s.recordSearch(ctx, SearchKindPlaces, query, len(matches))

	return LocalizeAll(matches, lang, s.now())
}

// PlacesScene lays out the markers for a place query on surface.
func (s *CatalogService) PlacesScene(
	ctx context.Context,
	query string,
	lang domain.Language,
	surface ports.SceneSurface,
) ports.MapScene {
	matches := FilterPlaces(s.store.People(), query)

	adapter := NewMapAdapter(surface, nil)
	adapter.Sync(matches, lang, s.Strings(lang)["open_bio"])

	logging.FromContext(ctx).DebugContext(ctx, "built map scene",
		slog.Int("markers", adapter.Len()),
	)

	return surface.Scene()
}

// Person returns one localized person.
func (s *CatalogService) Person(_ context.Context, id string, lang domain.Language) (*LocalizedPerson, error) {
	p, err := s.store.Person(id)
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}

	lp := Localize(p, lang, s.now())

	return &lp, nil
}

// Quotes returns the quote list for lang.
func (s *CatalogService) Quotes(lang domain.Language) []domain.Quote {
	return s.store.Quotes(lang)
}

// Strings returns the UI string table for lang.
func (s *CatalogService) Strings(lang domain.Language) map[string]string {
	return s.store.Strings(lang)
}

// Check implements ports.HealthChecker. The content is embedded, so this only
// fails if the store came up empty.
func (s *CatalogService) Check(_ context.Context) error {
	if len(s.store.People()) == 0 {
		return domain.NewUnavailableError("content", "no people loaded")
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *CatalogService) Name() string {
	return "content"
}

func (s *CatalogService) recordSearch(ctx context.Context, kind, query string, results int) {
	s.recorder.SearchPerformed(kind, results)

	logging.FromContext(ctx).DebugContext(ctx, "search",
		slog.String("kind", kind),
		slog.String("query", query),
		slog.Int("results", results),
	)
}
