package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/http/dto"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/platform/logging"
	"github.com/alasharulary/alash/internal/ports"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

// Template names.
const (
	templatePage  = "page.html"
	templateError = "error.html"
)

// Templates parses the embedded page templates. It panics on a malformed
// template since they are compiled into the binary.
func Templates() *template.Template {
	return template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(webFS, "web/templates/*.html"),
	)
}

// StaticFS returns the embedded static assets rooted at their directory.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		return template.JS(b), err //nolint:gosec // marshalled server data
	},
	"years": func(birth int, death *int, present string) string {
		if death == nil {
			return strconv.Itoa(birth) + " - " + present
		}
		return strconv.Itoa(birth) + " - " + strconv.Itoa(*death)
	},
}

// PageHandler renders the HTML pages and applies the form actions posted
// from them. Actions redirect back to the current view (303 See Other).
type PageHandler struct {
	catalog       *app.CatalogService
	quoteInterval time.Duration
}

// NewPageHandler creates a page handler. quoteInterval is only shown to the
// browser so it knows how often to refresh the quote.
func NewPageHandler(catalog *app.CatalogService, quoteInterval time.Duration) *PageHandler {
	return &PageHandler{catalog: catalog, quoteInterval: quoteInterval}
}

// navItem is one sidebar entry.
type navItem struct {
	Route  domain.Route
	Label  string
	Path   string
	Active bool
}

// pageView is the data handed to page.html.
type pageView struct {
	T         map[string]string
	Lang      domain.Language
	Languages []domain.Language
	Nav       []navItem
	Session   SessionResponse

	// People is the dashboard grid filtered by the session search text.
	People []app.LocalizedPerson
	// Places is the map side list filtered by the place search text.
	Places []app.LocalizedPerson

	QuoteIntervalMs int64
}

func (h *PageHandler) render(c *gin.Context, s *app.Session) {
	ctx := c.Request.Context()
	sess := buildSessionResponse(ctx, s, h.catalog)
	lang := sess.Language
	t := h.catalog.Strings(lang)

	view := pageView{
		T:               t,
		Lang:            lang,
		Languages:       domain.Languages,
		Session:         sess,
		QuoteIntervalMs: h.quoteInterval.Milliseconds(),
	}

	for _, r := range domain.Routes {
		view.Nav = append(view.Nav, navItem{
			Route:  r,
			Label:  t["nav_"+string(r)],
			Path:   r.Path(),
			Active: r == sess.Route,
		})
	}

	switch sess.Route {
	case domain.RouteDashboard:
		view.People = h.catalog.SearchPeople(ctx, sess.Search, lang)
	case domain.RouteMap:
		view.Places = h.catalog.SearchPlaces(ctx, sess.PlaceSearch, lang)
	}

	// Only the map view draws the scene.
	if sess.Route != domain.RouteMap {
		view.Session.Map.Scene = ports.MapScene{}
	}

	c.HTML(http.StatusOK, templatePage, view)
}

// renderError shows a failed action on an HTML page instead of a JSON envelope.
func (h *PageHandler) renderError(c *gin.Context, err error) {
	status, resp := dto.MapDomainError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "page action failed",
			slog.Any("error", err))
	}

	c.HTML(status, templateError, gin.H{
		"Status":  status,
		"Message": resp.Error.Message,
		"Back":    "/",
	})
}

func (h *PageHandler) back(c *gin.Context, s *app.Session) {
	c.Redirect(http.StatusSeeOther, s.Snapshot().Route.Path())
}

// Index handles GET / by redirecting to the current view.
func (h *PageHandler) Index(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	c.Redirect(http.StatusFound, s.Snapshot().Route.Path())
}

// View returns the handler of GET /{route}. Visiting a view switches the
// session to it, except while a detail is open; then the visitor is sent
// back to the view the detail was opened from.
func (h *PageHandler) View(route domain.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}

		if err := s.SetRoute(route); err != nil {
			if domain.IsForbidden(err) {
				c.Redirect(http.StatusFound, s.Snapshot().Route.Path())
				return
			}

			h.renderError(c, err)

			return
		}

		h.render(c, s)
	}
}

// SetLanguage handles POST /ui/lang.
func (h *PageHandler) SetLanguage(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	lang, err := domain.ParseLanguage(c.PostForm("lang"))
	if err == nil {
		err = s.SetLanguage(c.Request.Context(), lang)
	}

	if err != nil {
		h.renderError(c, err)
		return
	}

	h.back(c, s)
}

// SetSearch handles POST /ui/search.
func (h *PageHandler) SetSearch(c *gin.Context) {
	h.searchAction(c, (*app.Session).SetSearch)
}

// SetPlaceSearch handles POST /ui/places/search.
func (h *PageHandler) SetPlaceSearch(c *gin.Context) {
	h.searchAction(c, (*app.Session).SetPlaceSearch)
}

func (h *PageHandler) searchAction(c *gin.Context, apply func(*app.Session, string)) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, domain.NewValidationError("q", "malformed search"))
		return
	}

	if err := dto.Validate(&req); err != nil {
		h.renderError(c, domain.NewValidationError("q", "search text is too long"))
		return
	}

	apply(s, req.Query)
	h.back(c, s)
}

// FocusPlace handles POST /ui/places/:id/focus.
func (h *PageHandler) FocusPlace(c *gin.Context) {
	h.idAction(c, (*app.Session).FocusPlace)
}

// ClickMarker handles POST /ui/markers/:id/click.
func (h *PageHandler) ClickMarker(c *gin.Context) {
	h.idAction(c, (*app.Session).ClickMarker)
}

// OpenDetail handles POST /ui/people/:id/open.
func (h *PageHandler) OpenDetail(c *gin.Context) {
	h.idAction(c, (*app.Session).OpenDetail)
}

func (h *PageHandler) idAction(c *gin.Context, apply func(*app.Session, string) error) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if err := apply(s, c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}

	h.back(c, s)
}

// ActivateOverlay handles POST /ui/overlay/activate.
func (h *PageHandler) ActivateOverlay(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if _, err := s.ActivateOverlay(); err != nil {
		h.renderError(c, err)
		return
	}

	h.back(c, s)
}

// CloseDetail handles POST /ui/detail/close.
func (h *PageHandler) CloseDetail(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	s.CloseDetail()
	h.back(c, s)
}

// NextQuote handles POST /ui/quotes/next.
func (h *PageHandler) NextQuote(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	s.NextQuote(c.Request.Context())
	h.back(c, s)
}

// SetMapExpanded returns the handler of POST /ui/map/expand and /ui/map/collapse.
func (h *PageHandler) SetMapExpanded(expanded bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}

		s.SetMapExpanded(expanded)
		h.back(c, s)
	}
}

// RegisterRoutes registers the pages and form actions on rg, which must run
// the Session middleware.
func (h *PageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Index)

	for _, r := range domain.Routes {
		rg.GET(r.Path(), h.View(r))
	}

	ui := rg.Group("/ui")
	ui.POST("/lang", h.SetLanguage)
	ui.POST("/search", h.SetSearch)
	ui.POST("/places/search", h.SetPlaceSearch)
	ui.POST("/places/:id/focus", h.FocusPlace)
	ui.POST("/markers/:id/click", h.ClickMarker)
	ui.POST("/overlay/activate", h.ActivateOverlay)
	ui.POST("/people/:id/open", h.OpenDetail)
	ui.POST("/detail/close", h.CloseDetail)
	ui.POST("/quotes/next", h.NextQuote)
	ui.POST("/map/expand", h.SetMapExpanded(true))
	ui.POST("/map/collapse", h.SetMapExpanded(false))
}
