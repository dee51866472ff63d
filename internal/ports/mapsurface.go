package ports

import "github.com/alasharulary/alash/internal/domain"

// MarkerID identifies a marker created on a MapSurface.
type MarkerID int

// MarkerOptions describes a point marker.
type MarkerOptions struct {
	// Key is an opaque caller identifier echoed back in scenes.
	Key      string
	Position domain.Coordinates
	Color    string
	Title    string
}

// MapSurface is the narrow boundary to the mapping widget.
// All methods are called from a single goroutine at a time.
type MapSurface interface {
	// AddMarker places a marker and returns its handle.
	AddMarker(opts MarkerOptions) MarkerID

	// RemoveMarker detaches a marker. Unknown or already removed ids are ignored.
	RemoveMarker(id MarkerID)

	// OnClick registers the handler run when the marker is clicked.
	OnClick(id MarkerID, fn func())

	// Trigger dispatches a named event on the marker, as if the user caused it.
	Trigger(id MarkerID, event string)

	// OpenOverlay shows overlay content anchored to the marker, replacing any open overlay.
	OpenOverlay(id MarkerID, overlay domain.Overlay)

	FitBounds(b domain.Bounds)
	SetCenter(c domain.Coordinates)
	PanTo(c domain.Coordinates)
	SetZoom(zoom int)
}

// EventClick is the marker click event name.
const EventClick = "click"

// SceneSurface is a MapSurface whose current picture can be handed to the browser.
type SceneSurface interface {
	MapSurface
	Scene() MapScene
}

// MapScene is a serializable picture of a map surface.
type MapScene struct {
	Center  domain.Coordinates `json:"center"`
	Zoom    int                `json:"zoom"`
	Fit     *domain.Bounds     `json:"fit,omitempty"`
	Markers []SceneMarker      `json:"markers"`
	Overlay *SceneOverlay      `json:"overlay,omitempty"`
}

// SceneMarker is one marker of a MapScene.
type SceneMarker struct {
	ID       MarkerID           `json:"id"`
	Key      string             `json:"key"`
	Position domain.Coordinates `json:"position"`
	Color    string             `json:"color"`
	Title    string             `json:"title"`
}

// SceneOverlay is the open overlay and the marker it is anchored to.
type SceneOverlay struct {
	Anchor MarkerID `json:"anchor"`
	domain.Overlay
}
