package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/http/dto"
	"github.com/alasharulary/alash/internal/adapters/http/middleware"
	"github.com/alasharulary/alash/internal/app"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

// CatalogHandler serves the read-only content API. It keeps no per-visitor
// state: the language comes from ?lang=, then the session when one is
// attached, then Accept-Language.
type CatalogHandler struct {
	catalog    *app.CatalogService
	loaders    app.MapLoaders
	newSurface func() ports.SceneSurface
}

// NewCatalogHandler creates a catalog handler. newSurface creates the
// throwaway map surface used to lay out a places scene.
func NewCatalogHandler(
	catalog *app.CatalogService,
	loaders app.MapLoaders,
	newSurface func() ports.SceneSurface,
) *CatalogHandler {
	return &CatalogHandler{
		catalog:    catalog,
		loaders:    loaders,
		newSurface: newSurface,
	}
}

// QuoteResponse is one quote as sent to clients.
type QuoteResponse struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func toQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Author: q.Author}
}

// QuotesResponse is the quote list of one language.
type QuotesResponse struct {
	Lang   domain.Language `json:"lang"`
	Quotes []QuoteResponse `json:"quotes"`
}

// PlacesResponse is the place list together with the map picture for it.
type PlacesResponse struct {
	Lang   domain.Language       `json:"lang"`
	Count  int                   `json:"count"`
	Places []app.LocalizedPerson `json:"places"`
	Scene  ports.MapScene        `json:"scene"`
}

// StringsResponse is the UI string table of one language.
type StringsResponse struct {
	Lang    domain.Language   `json:"lang"`
	Strings map[string]string `json:"strings"`
}

// MapStatusResponse reports the map script state for one language.
type MapStatusResponse struct {
	Lang      domain.Language  `json:"lang"`
	Status    domain.MapStatus `json:"status"`
	Degraded  bool             `json:"degraded"`
	ScriptURL string           `json:"scriptUrl,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// ListPeople handles GET /api/v1/people.
func (h *CatalogHandler) ListPeople(c *gin.Context) {
	var q dto.PeopleQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	people := h.catalog.SearchPeople(c.Request.Context(), q.Query, requestLanguage(c, q.Lang))

	page, err := dto.Page(people, &q.PaginationRequest, func(p app.LocalizedPerson) string { return p.ID })
	if err != nil {
		if errors.Is(err, dto.ErrInvalidCursor) {
			dto.AbortWithErrorCode(c, dto.ErrorCodeBadRequest, "invalid cursor")
			return
		}

		dto.HandleError(c, err)

		return
	}

	c.JSON(http.StatusOK, page)
}

// GetPerson handles GET /api/v1/people/:id.
func (h *CatalogHandler) GetPerson(c *gin.Context) {
	var q dto.LanguageQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	person, err := h.catalog.Person(c.Request.Context(), c.Param("id"), requestLanguage(c, q.Lang))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, person)
}

// ListPlaces handles GET /api/v1/places.
func (h *CatalogHandler) ListPlaces(c *gin.Context) {
	var q dto.PlacesQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	lang := requestLanguage(c, q.Lang)
	places := h.catalog.SearchPlaces(ctx, q.Query, lang)

	c.JSON(http.StatusOK, PlacesResponse{
		Lang:   lang,
		Count:  len(places),
		Places: places,
		Scene:  h.catalog.PlacesScene(ctx, q.Query, lang, h.newSurface()),
	})
}

// ListQuotes handles GET /api/v1/quotes.
func (h *CatalogHandler) ListQuotes(c *gin.Context) {
	var q dto.LanguageQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	lang := requestLanguage(c, q.Lang)
	quotes := h.catalog.Quotes(lang)

	resp := QuotesResponse{Lang: lang, Quotes: make([]QuoteResponse, 0, len(quotes))}
	for _, quote := range quotes {
		resp.Quotes = append(resp.Quotes, toQuoteResponse(quote))
	}

	c.JSON(http.StatusOK, resp)
}

// GetStrings handles GET /api/v1/i18n/:lang.
func (h *CatalogHandler) GetStrings(c *gin.Context) {
	lang, err := domain.ParseLanguage(c.Param("lang"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, StringsResponse{Lang: lang, Strings: h.catalog.Strings(lang)})
}

// GetMapStatus handles GET /api/v1/map/status.
func (h *CatalogHandler) GetMapStatus(c *gin.Context) {
	var q dto.LanguageQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	lang := requestLanguage(c, q.Lang)
	resp := MapStatusResponse{Lang: lang, Status: domain.MapStatusIdle}

	if l := h.loaders.For(lang); l != nil {
		resp.Status = l.Status()
		resp.ScriptURL = l.ScriptURL()
	}

	resp.Degraded = resp.Status.Degraded()
	if resp.Degraded {
		resp.Message = h.catalog.Strings(lang)["map_missing_key"]
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the catalog routes on the /api/v1 group.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/people", h.ListPeople)
	rg.GET("/people/:id", h.GetPerson)
	rg.GET("/places", h.ListPlaces)
	rg.GET("/quotes", h.ListQuotes)
	rg.GET("/i18n/:lang", h.GetStrings)
	rg.GET("/map/status", h.GetMapStatus)
}

// requestLanguage picks the response language. raw has already passed the
// "lang" validator, so a parse failure only happens when it is empty.
func requestLanguage(c *gin.Context, raw string) domain.Language {
	if lang, err := domain.ParseLanguage(raw); err == nil {
		return lang
	}

	if s := middleware.GetSession(c); s != nil {
		return s.Snapshot().Language
	}

	return app.NegotiateLanguage(c.GetHeader("Accept-Language"))
}
