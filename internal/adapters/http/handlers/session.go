package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/http/dto"
	"github.com/alasharulary/alash/internal/adapters/http/middleware"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

// SessionHandler exposes the visitor's UI state as a JSON API. Every mutating
// call answers with the full updated state.
type SessionHandler struct {
	catalog *app.CatalogService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(catalog *app.CatalogService) *SessionHandler {
	return &SessionHandler{catalog: catalog}
}

// MapView is the map part of a session: loader state plus the current scene.
type MapView struct {
	Status    domain.MapStatus `json:"status"`
	Degraded  bool             `json:"degraded"`
	ScriptURL string           `json:"scriptUrl,omitempty"`
	Scene     ports.MapScene   `json:"scene"`
}

// SessionResponse is the visitor state as sent to clients.
type SessionResponse struct {
	ID string `json:"id"`
	app.State

	NavigationDisabled bool                 `json:"navigation_disabled"`
	Quote              QuoteResponse        `json:"quote"`
	Detail             *app.LocalizedPerson `json:"detail,omitempty"`
	Map                MapView              `json:"map"`
}

// buildSessionResponse snapshots s. A detail whose person vanished is
// dropped rather than failing the whole response.
func buildSessionResponse(ctx context.Context, s *app.Session, catalog *app.CatalogService) SessionResponse {
	st := s.Snapshot()
	status := s.MapStatus()

	resp := SessionResponse{
		ID:                 s.ID(),
		State:              st,
		NavigationDisabled: st.NavigationDisabled(),
		Quote:              toQuoteResponse(s.Quote()),
		Map: MapView{
			Status:    status,
			Degraded:  status.Degraded(),
			ScriptURL: s.MapScriptURL(),
			Scene:     s.MapScene(),
		},
	}

	if st.OpenPersonID != "" {
		if p, err := catalog.Person(ctx, st.OpenPersonID, st.Language); err == nil {
			resp.Detail = p
		}
	}

	return resp
}

// currentSession returns the attached session or aborts with SESSION_REQUIRED.
func currentSession(c *gin.Context) (*app.Session, bool) {
	s := middleware.GetSession(c)
	if s == nil {
		dto.AbortWithErrorCode(c, dto.ErrorCodeSessionRequired, "no session attached to request")
		return nil, false
	}

	return s, true
}

func (h *SessionHandler) respond(c *gin.Context, s *app.Session) {
	c.JSON(http.StatusOK, buildSessionResponse(c.Request.Context(), s, h.catalog))
}

// GetSession handles GET /api/v1/session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	h.respond(c, s)
}

// SetLanguage handles PUT /api/v1/session/lang.
func (h *SessionHandler) SetLanguage(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.SetLanguageRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if err := s.SetLanguage(c.Request.Context(), domain.Language(req.Lang)); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respond(c, s)
}

// SetRoute handles PUT /api/v1/session/route. It is refused while a detail
// view is open.
func (h *SessionHandler) SetRoute(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.SetRouteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if err := s.SetRoute(domain.Route(req.Route)); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respond(c, s)
}

// SetSearch handles PUT /api/v1/session/search.
func (h *SessionHandler) SetSearch(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	s.SetSearch(req.Query)
	h.respond(c, s)
}

// SetPlaceSearch handles PUT /api/v1/session/places/search.
func (h *SessionHandler) SetPlaceSearch(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	s.SetPlaceSearch(req.Query)
	h.respond(c, s)
}

// FocusPlace handles POST /api/v1/session/places/:id/focus.
func (h *SessionHandler) FocusPlace(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if err := s.FocusPlace(c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respond(c, s)
}

// ClickMarker handles POST /api/v1/session/markers/:id/click.
func (h *SessionHandler) ClickMarker(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if err := s.ClickMarker(c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respond(c, s)
}

// ActivateOverlay handles POST /api/v1/session/overlay/activate: the open
// overlay's action opens the person's detail view.
func (h *SessionHandler) ActivateOverlay(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	if _, err := s.ActivateOverlay(); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respond(c, s)
}

// OpenDetail handles POST /api/v1/session/detail.
func (h *SessionHandler) OpenDetail(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.OpenDetailRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if err := s.OpenDetail(req.PersonID); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respond(c, s)
}

// CloseDetail handles DELETE /api/v1/session/detail.
func (h *SessionHandler) CloseDetail(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	s.CloseDetail()
	h.respond(c, s)
}

// NextQuote handles POST /api/v1/session/quotes/next.
func (h *SessionHandler) NextQuote(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	s.NextQuote(c.Request.Context())
	h.respond(c, s)
}

// SetMapExpanded handles PUT /api/v1/session/map/expanded.
func (h *SessionHandler) SetMapExpanded(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req dto.MapExpandedRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	s.SetMapExpanded(*req.Expanded)
	h.respond(c, s)
}

// RegisterRoutes registers the session routes on rg, the /api/v1/session
// group. The group must run the Session middleware.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GetSession)
	rg.PUT("/lang", h.SetLanguage)
	rg.PUT("/route", h.SetRoute)
	rg.PUT("/search", h.SetSearch)
	rg.PUT("/places/search", h.SetPlaceSearch)
	rg.POST("/places/:id/focus", h.FocusPlace)
	rg.POST("/markers/:id/click", h.ClickMarker)
	rg.POST("/overlay/activate", h.ActivateOverlay)
	rg.POST("/detail", h.OpenDetail)
	rg.DELETE("/detail", h.CloseDetail)
	rg.POST("/quotes/next", h.NextQuote)
	rg.PUT("/map/expanded", h.SetMapExpanded)
}
