package domain

import "strings"

// Route is one of the three top-level views.
type Route string

const (
	RouteMap       Route = "map"
	RouteDashboard Route = "dashboard"
	RouteQuotes    Route = "quotes"
)

// DefaultRoute is the view a new session opens on.
const DefaultRoute = RouteDashboard

// Routes lists the navigable views in sidebar order.
var Routes = []Route{RouteMap, RouteDashboard, RouteQuotes}

// ParseRoute converts a route name to a Route.
func ParseRoute(s string) (Route, error) {
	switch Route(strings.ToLower(strings.TrimSpace(s))) {
	case RouteMap:
		return RouteMap, nil
	case RouteDashboard:
		return RouteDashboard, nil
	case RouteQuotes:
		return RouteQuotes, nil
	default:
		return "", NewValidationErrorWithValue("route", "must be one of: map dashboard quotes", s)
	}
}

// Path returns the page path serving this route.
func (r Route) Path() string {
	return "/" + string(r)
}
