package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/http/dto"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/logging"
)

// ContextKeySession is the gin context key for the visitor session.
const ContextKeySession = "session"

// SessionProvider finds or creates visitor sessions.
type SessionProvider interface {
	Get(id string) (*app.Session, bool)
	Create(ctx context.Context, lang domain.Language) *app.Session
}

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Store  SessionProvider
	Cookie string
	// MaxAge is the cookie lifetime; it should match the store's idle TTL.
	MaxAge time.Duration
	Secure bool
}

// Session returns middleware that attaches the visitor session named by the
// cookie, creating one when the cookie is missing, malformed or expired. A new
// session starts in the language given by ?lang= or else negotiated from
// Accept-Language.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		panic("middleware: session store is required")
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		s := lookupSession(c, cfg)
		if s == nil {
			s = cfg.Store.Create(ctx, initialLanguage(c))
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.Cookie, s.ID(), int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		c.Set(ContextKeySession, s)
		c.Request = c.Request.WithContext(logging.WithSessionID(ctx, s.ID()))

		c.Next()
	}
}

// AttachSession returns middleware that attaches the visitor session named by
// the cookie when it is live. It never creates a session or sets a cookie.
func AttachSession(cfg SessionConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		panic("middleware: session store is required")
	}

	return func(c *gin.Context) {
		if s := lookupSession(c, cfg); s != nil {
			c.Set(ContextKeySession, s)
			c.Request = c.Request.WithContext(logging.WithSessionID(c.Request.Context(), s.ID()))
		}

		c.Next()
	}
}

// GetSession returns the session attached by Session or AttachSession, or nil.
func GetSession(c *gin.Context) *app.Session {
	if v, ok := c.Get(ContextKeySession); ok {
		if s, ok := v.(*app.Session); ok {
			return s
		}
	}
	return nil
}

func lookupSession(c *gin.Context, cfg SessionConfig) *app.Session {
	id, err := c.Cookie(cfg.Cookie)
	if err != nil {
		return nil
	}

	if dto.Validator().Var(id, "required,uuid") != nil {
		return nil
	}

	s, ok := cfg.Store.Get(id)
	if !ok {
		return nil
	}

	return s
}

func initialLanguage(c *gin.Context) domain.Language {
	if q := c.Query("lang"); q != "" {
		if lang, err := domain.ParseLanguage(q); err == nil {
			return lang
		}
	}

	return app.NegotiateLanguage(c.GetHeader("Accept-Language"))
}
