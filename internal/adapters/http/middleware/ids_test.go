package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const uuidV4Pattern = `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	type idCase struct {
		name       string
		middleware gin.HandlerFunc
		header     string
		fromGin    func(*gin.Context) string
		fromCtx    func(*gin.Context) string
	}

	kinds := []idCase{
		{
			name:       "request",
			middleware: RequestID(),
			header:     HeaderRequestID,
			fromGin:    GetRequestID,
			fromCtx:    func(c *gin.Context) string { return RequestIDFromContext(c.Request.Context()) },
		},
		{
			name:       "correlation",
			middleware: CorrelationID(),
			header:     HeaderCorrelationID,
			fromGin:    GetCorrelationID,
			fromCtx:    func(c *gin.Context) string { return CorrelationIDFromContext(c.Request.Context()) },
		},
	}

	inputs := []struct {
		name         string
		incoming     string
		wantIncoming bool
	}{
		{name: "generates UUID when header missing", incoming: ""},
		{name: "passes through caller ID", incoming: "caller-id-123", wantIncoming: true},
		{name: "replaces oversized ID", incoming: strings.Repeat("x", maxIDLength+1)},
	}

	for _, kind := range kinds {
		for _, in := range inputs {
			t.Run(kind.name+"/"+in.name, func(t *testing.T) {
				t.Parallel()

				var ginID, ctxID string

				router := gin.New()
				router.Use(kind.middleware)
				router.GET("/test", func(c *gin.Context) {
					ginID = kind.fromGin(c)
					ctxID = kind.fromCtx(c)
					c.Status(http.StatusOK)
				})

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				if in.incoming != "" {
					req.Header.Set(kind.header, in.incoming)
				}

				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, w.Header().Get(kind.header), ginID)
				assert.Equal(t, ginID, ctxID, "ID must reach context.Context for outbound clients")

				if in.wantIncoming {
					assert.Equal(t, in.incoming, ginID)
				} else {
					assert.Regexp(t, uuidV4Pattern, ginID)
				}
			})
		}
	}
}

func TestGetIDFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    func(*gin.Context)
		expected string
	}{
		{
			name:     "string value",
			setup:    func(c *gin.Context) { c.Set(ContextKeyRequestID, "abc") },
			expected: "abc",
		},
		{
			name:     "missing key",
			setup:    func(*gin.Context) {},
			expected: "",
		},
		{
			name:     "non-string value",
			setup:    func(c *gin.Context) { c.Set(ContextKeyRequestID, 42) },
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setup(c)

			assert.Equal(t, tt.expected, getIDFromContext(c, ContextKeyRequestID))
			assert.Equal(t, tt.expected, GetRequestID(c))
		})
	}
}

func TestGetCorrelationID_NotSet(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCorrelationID(c))
}
