package dto

// MaxQueryLength bounds free-text search input.
const MaxQueryLength = 200

// LanguageQuery selects the response language. Empty means the session or
// default language.
type LanguageQuery struct {
	Lang string `form:"lang" json:"lang" validate:"omitempty,lang"`
}

// PeopleQuery is the query string of the people listing.
type PeopleQuery struct {
	PaginationRequest
	LanguageQuery

	Query string `form:"q" json:"q" validate:"max=200"`
}

// PlacesQuery is the query string of the places listing.
type PlacesQuery struct {
	LanguageQuery

	Query string `form:"q" json:"q" validate:"max=200"`
}

// SetLanguageRequest switches the session language.
type SetLanguageRequest struct {
	Lang string `form:"lang" json:"lang" validate:"required,oneof=kk en"`
}

// SetRouteRequest switches the session view.
type SetRouteRequest struct {
	Route string `form:"route" json:"route" validate:"required,oneof=map dashboard quotes"`
}

// SearchRequest updates a search field. An empty query clears the filter.
type SearchRequest struct {
	Query string `form:"q" json:"q" validate:"max=200"`
}

// OpenDetailRequest opens the detail view of a person.
type OpenDetailRequest struct {
	PersonID string `form:"person_id" json:"person_id" validate:"required,notempty,max=100"`
}

// MapExpandedRequest sets the map panel size.
type MapExpandedRequest struct {
	Expanded *bool `form:"expanded" json:"expanded" validate:"required"`
}
