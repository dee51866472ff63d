package app

import (
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

const (
	// InitialZoom is the zoom of a freshly created map.
	InitialZoom = 5

	// FocusZoom is applied when a place is focused from the list.
	FocusZoom = 7
)

// InitialCenter is the center of a freshly created map.
var InitialCenter = domain.Coordinates{Lat: 48, Lng: 66}

// MapAdapter keeps the markers of a MapSurface in step with a list of people.
// It is not safe for concurrent use; the owner serializes calls.
type MapAdapter struct {
	surface ports.MapSurface
	onOpen  func(personID string)

	markers   map[string]ports.MarkerID
	positions map[string]domain.Coordinates
	open      *domain.Overlay
}

// NewMapAdapter binds an adapter to surface. onOpen runs when the overlay
// action is invoked and may be nil.
func NewMapAdapter(surface ports.MapSurface, onOpen func(personID string)) *MapAdapter {
	if surface == nil {
		panic("app: MapSurface is required")
	}

	surface.SetCenter(InitialCenter)
	surface.SetZoom(InitialZoom)

	return &MapAdapter{
		surface:   surface,
		onOpen:    onOpen,
		markers:   make(map[string]ports.MarkerID),
		positions: make(map[string]domain.Coordinates),
	}
}

// BuildOverlay returns the overlay content for a person.
func BuildOverlay(p *domain.Person, lang domain.Language, actionLabel string) domain.Overlay {
	return domain.Overlay{
		PersonID:    p.ID,
		Name:        Resolve(p.Name, lang),
		Place:       p.Place,
		Categories:  Resolve(p.Categories, lang),
		ActionLabel: actionLabel,
	}
}

// Sync replaces every marker with one per location-bearing person and
// adjusts the viewport. It returns the number of markers created.
func (a *MapAdapter) Sync(people []domain.Person, lang domain.Language, actionLabel string) int {
	a.Clear()

	var bounds domain.Bounds

	for i := range people {
		p := &people[i]
		if !p.HasLocation() {
			continue
		}

		id := a.surface.AddMarker(ports.MarkerOptions{
			Key:      p.ID,
			Position: *p.Coordinates,
			Color:    domain.PersonMarkerColor(p),
			Title:    Resolve(p.Name, lang),
		})

		a.markers[p.ID] = id
		a.positions[p.ID] = *p.Coordinates
		bounds.Extend(*p.Coordinates)

		overlay := BuildOverlay(p, lang, actionLabel)
		a.surface.OnClick(id, func() {
			a.surface.OpenOverlay(id, overlay)
			a.open = &overlay
		})
	}

	switch n := len(a.markers); {
	case n > 1:
		a.surface.FitBounds(bounds)
	case n == 1:
		a.surface.SetCenter(bounds.Center())
	}

	return len(a.markers)
}

// Clear removes every marker created by an earlier Sync.
func (a *MapAdapter) Clear() {
	for _, id := range a.markers {
		a.surface.RemoveMarker(id)
	}

	clear(a.markers)
	clear(a.positions)
	a.open = nil
}

// Click simulates a user click on the person's marker.
func (a *MapAdapter) Click(personID string) bool {
	id, ok := a.markers[personID]
	if !ok {
		return false
	}

	a.surface.Trigger(id, ports.EventClick)

	return true
}

// Focus clicks the person's marker, then pans and zooms to it.
// Unknown ids are ignored.
func (a *MapAdapter) Focus(personID string) bool {
	if !a.Click(personID) {
		return false
	}

	a.surface.PanTo(a.positions[personID])
	a.surface.SetZoom(FocusZoom)

	return true
}

// Overlay returns the open overlay, or nil.
func (a *MapAdapter) Overlay() *domain.Overlay {
	return a.open
}

// Activate invokes the open overlay's action and returns the person it targets.
func (a *MapAdapter) Activate() (string, bool) {
	if a.open == nil {
		return "", false
	}

	if a.onOpen != nil {
		a.onOpen(a.open.PersonID)
	}

	return a.open.PersonID, true
}

// Has reports whether a marker exists for the person.
func (a *MapAdapter) Has(personID string) bool {
	_, ok := a.markers[personID]
	return ok
}

// Len returns the number of markers.
func (a *MapAdapter) Len() int {
	return len(a.markers)
}
