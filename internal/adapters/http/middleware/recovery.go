package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/alasharulary/alash/internal/adapters/http/dto"
	"github.com/alasharulary/alash/internal/platform/logging"
)

// Recovery returns middleware that turns a panic into a logged stack trace
// and a 500 error envelope. HTML pages get a plain text body instead of JSON.
// It must be first in the chain.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				// Get stack trace
				stack := debug.Stack()

				ctxLogger := logging.FromContextOr(c.Request.Context(), logger)

				// Extract trace ID for response
				var traceID string
				if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
					traceID = span.SpanContext().TraceID().String()
				}

				// Log the panic with full context
				ctxLogger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(stack)),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
					slog.String("trace_id", traceID),
				)

				// Build error response
				errResp := dto.NewErrorResponse(
					dto.ErrorCodeInternal,
					"an internal error occurred",
				)
				if traceID != "" {
					errResp.TraceID = traceID
				}

				switch {
				case c.Writer.Written():
					c.Abort()
				case wantsHTML(c):
					c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(errResp.Error.Message))
					c.Abort()
				default:
					c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
				}
			}
		}()

		c.Next()
	}
}

// wantsHTML reports whether the request is a page navigation rather than an
// API call.
func wantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
