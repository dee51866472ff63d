// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
package ports

import (
	"context"

	"github.com/alasharulary/alash/internal/domain"
)

// ContentStore gives read-only access to the static content tables.
type ContentStore interface {
	// People returns every person in table order.
	People() []domain.Person

	// Person returns domain.ErrNotFound when the id is unknown.
	Person(id string) (*domain.Person, error)

	Quotes(lang domain.Language) []domain.Quote
	Strings(lang domain.Language) map[string]string
}

// ScriptFetcher retrieves the mapping script.
// A nil return means the script is reachable and can be executed by the browser.
type ScriptFetcher interface {
	FetchScript(ctx context.Context, url string) error
}

// Recorder receives domain counters. Implementations must be safe for concurrent use.
type Recorder interface {
	SearchPerformed(kind string, results int)
	MapStatusChanged(status domain.MapStatus)
	QuoteAdvanced(source string)
	SessionsActive(n int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) SearchPerformed(string, int)        {}
func (NopRecorder) MapStatusChanged(domain.MapStatus) {}
func (NopRecorder) QuoteAdvanced(string)              {}
func (NopRecorder) SessionsActive(int)                {}
