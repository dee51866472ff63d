package app

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alasharulary/alash/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixturePeople() []domain.Person {
	return []domain.Person{
		{
			ID:         "akbota",
			Name:       domain.Localized[string]{Default: "Ақбота", Override: ptr("Akbota")},
			Categories: domain.Localized[[]string]{Default: []string{"Медицина"}, Override: &[]string{"Medicine"}},
			Bio:        domain.Localized[string]{Default: "Дәрігер.", Override: ptr("A physician.")},
			BirthYear:  1890,
			DeathYear:  ptr(1950),
			Coordinates: &domain.Coordinates{
				Lat: 43.2, Lng: 76.9,
			},
			Place: "Алматы",
		},
		{
			ID:   "bekzat",
			Name: domain.Localized[string]{Default: "Бекзат", Override: ptr("Bekzat")},
			Categories: domain.Localized[[]string]{
				Default:  []string{"Журналистика", "Саясат"},
				Override: &[]string{"Journalism", "Politics"},
			},
			BirthYear:   1885,
			DeathYear:   ptr(1938),
			Coordinates: &domain.Coordinates{Lat: 50.3, Lng: 57.2},
			Place:       "Ақтөбе",
		},
		{
			ID:         "saule",
			Name:       domain.Localized[string]{Default: "Сәуле"},
			Categories: domain.Localized[[]string]{Default: []string{"Әдебиет"}},
			BirthYear:  1900,
		},
		{
			ID:          "dana",
			Name:        domain.Localized[string]{Default: "Дана", Override: ptr("Dana")},
			Categories:  domain.Localized[[]string]{Default: []string{"Білім"}, Override: &[]string{"Education"}},
			BirthYear:   1895,
			Coordinates: &domain.Coordinates{Lat: 51.1, Lng: 71.4},
			Place:       "Астана",
		},
	}
}

type fakeStore struct {
	people []domain.Person
	quotes map[domain.Language][]domain.Quote
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		people: fixturePeople(),
		quotes: map[domain.Language][]domain.Quote{
			domain.LangKazakh: {
				{Text: "бір", Author: "A"},
				{Text: "екі", Author: "B"},
				{Text: "үш", Author: "C"},
			},
			domain.LangEnglish: {
				{Text: "one", Author: "A"},
				{Text: "two", Author: "B"},
			},
		},
	}
}

func (f *fakeStore) People() []domain.Person { return slices.Clone(f.people) }

func (f *fakeStore) Person(id string) (*domain.Person, error) {
	for i := range f.people {
		if f.people[i].ID == id {
			p := f.people[i]
			return &p, nil
		}
	}

	return nil, domain.NewNotFoundError("person", id)
}

func (f *fakeStore) Quotes(lang domain.Language) []domain.Quote { return slices.Clone(f.quotes[lang]) }

func (f *fakeStore) Strings(lang domain.Language) map[string]string {
	if lang == domain.LangEnglish {
		return map[string]string{"open_bio": "Open biography"}
	}

	return map[string]string{"open_bio": "Өмірбаянды ашу"}
}

// mockFetcher is a testify mock of ports.ScriptFetcher.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchScript(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// gatedFetcher blocks every fetch until release is called.
type gatedFetcher struct {
	gate  chan struct{}
	err   error
	mu    sync.Mutex
	calls []string
}

func newGatedFetcher(err error) *gatedFetcher {
	return &gatedFetcher{gate: make(chan struct{}), err: err}
}

func (g *gatedFetcher) FetchScript(ctx context.Context, url string) error {
	g.mu.Lock()
	g.calls = append(g.calls, url)
	g.mu.Unlock()

	select {
	case <-g.gate:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gatedFetcher) release() { close(g.gate) }

func (g *gatedFetcher) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.calls)
}

// manualTicker is a Ticker driven by the test.
type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *tickerFactory) New(time.Duration) Ticker {
	t := &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}

	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()

	return t
}

func (f *tickerFactory) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.tickers[len(f.tickers)-1]
}

func (f *tickerFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.tickers)
}
