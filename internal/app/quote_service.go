package app

import (
	"context"
	"log/slog"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/logging"
	"github.com/alasharulary/alash/internal/ports"
)

// Quote advance sources, used as metric labels.
const (
	QuoteSourceTimer  = "timer"
	QuoteSourceManual = "manual"
)

// QuoteService owns the quote index arithmetic shared by the timer and the
// manual "next" action.
type QuoteService struct {
	store    ports.ContentStore
	recorder ports.Recorder
	logger   *slog.Logger
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store    ports.ContentStore
	Recorder ports.Recorder
	Logger   *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app: ContentStore is required")
	}

	if cfg.Recorder == nil {
		cfg.Recorder = ports.NopRecorder{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &QuoteService{
		store:    cfg.Store,
		recorder: cfg.Recorder,
		logger:   cfg.Logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Quotes returns the quote list for lang.
func (s *QuoteService) Quotes(lang domain.Language) []domain.Quote {
	return s.store.Quotes(lang)
}

// Len returns the length of the quote list for lang.
func (s *QuoteService) Len(lang domain.Language) int {
	return len(s.store.Quotes(lang))
}

// Reconcile returns index when it is valid for lang's list, otherwise 0.
func (s *QuoteService) Reconcile(lang domain.Language, index int) int {
	if index < 0 || index >= s.Len(lang) {
		return 0
	}

	return index
}

// At returns the quote at index in lang's list after reconciling the index.
func (s *QuoteService) At(lang domain.Language, index int) (domain.Quote, int) {
	quotes := s.store.Quotes(lang)
	if len(quotes) == 0 {
		return domain.Quote{}, 0
	}

	index = s.Reconcile(lang, index)

	return quotes[index], index
}

// Advance returns the index after index in lang's list, wrapping around.
func (s *QuoteService) Advance(ctx context.Context, lang domain.Language, index int, source string) int {
	n := s.Len(lang)
	if n == 0 {
		return 0
	}

	next := (s.Reconcile(lang, index) + 1) % n

	s.recorder.QuoteAdvanced(source)

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}

	logger.Log(ctx, logging.LevelTrace, "quote advanced",
		slog.String("lang", lang.String()),
		slog.String("source", source),
		slog.Int("index", next),
	)

	return next
}
