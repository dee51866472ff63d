package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// googleKeyPattern matches a Google API key by shape.
var googleKeyPattern = regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`)

// DefaultRedactOptions returns the masq options for secret redaction.
// The maps credential is covered both by field name and by value shape, so a
// key that ends up in an unexpected attribute is still masked.
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("credential"),
		masq.WithFieldName("credentials"),

		// Maps credential under the names config and clients use.
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("apikey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("APIKey"),
		masq.WithFieldName("maps_api_key"),
		masq.WithFieldName("mapsKey"),

		// The session cookie value is enough to take over a visitor's state.
		masq.WithFieldName("cookie"),
		masq.WithFieldName("session"),

		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),

		masq.WithRegex(googleKeyPattern),
	}
}

// NewReplaceAttr creates a ReplaceAttr function for slog.HandlerOptions
// that redacts sensitive data. Extra options extend DefaultRedactOptions.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	allOpts := append(DefaultRedactOptions(), opts...)
	return masq.New(allOpts...)
}
