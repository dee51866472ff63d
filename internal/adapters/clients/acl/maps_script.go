package acl

import (
	"context"
	"io"
	"log/slog"

	"github.com/alasharulary/alash/internal/adapters/clients"
	"github.com/alasharulary/alash/internal/platform/logging"
	"github.com/alasharulary/alash/internal/ports"
)

// maxScriptBytes caps how much of the script body is read before it is discarded.
const maxScriptBytes = 4 << 20

// ScriptClient fetches the mapping library script. It implements ports.ScriptFetcher.
type ScriptClient struct {
	client *clients.Client
	name   string
	logger *slog.Logger
}

var _ ports.ScriptFetcher = (*ScriptClient)(nil)

// NewScriptClient creates a ScriptClient. It panics when client is nil.
func NewScriptClient(client *clients.Client, logger *slog.Logger) *ScriptClient {
	if client == nil {
		panic("acl: http client is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ScriptClient{
		client: client,
		name:   "maps-script",
		logger: logger.With(slog.String("component", "acl.ScriptClient")),
	}
}

// FetchScript downloads the script once. Any transport error or non-2xx status
// is reported as a domain error; the body itself is discarded.
func (c *ScriptClient) FetchScript(ctx context.Context, url string) error {
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return MapHTTPError(nil, err, c.name, "load script", "")
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logging.FromContext(ctx).DebugContext(ctx, "failed to close script body", slog.Any("error", closeErr))
		}
	}()

	if err := MapHTTPError(resp, nil, c.name, "load script", "maps-js"); err != nil {
		return err
	}

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return MapHTTPError(nil, err, c.name, "read script", "")
	}

	c.logger.DebugContext(ctx, "script fetched", slog.Int64("bytes", n))

	return nil
}
