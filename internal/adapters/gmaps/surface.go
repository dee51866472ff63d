// Package gmaps implements the map surface the browser script renders.
// Surface records every marker, overlay and viewport change so the current
// picture can be sent to the page as a scene.
package gmaps

import (
	"slices"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

type marker struct {
	opts    ports.MarkerOptions
	onClick func()
}

// Surface is an in-memory ports.SceneSurface. It is not safe for concurrent use.
type Surface struct {
	nextID  ports.MarkerID
	markers map[ports.MarkerID]*marker
	order   []ports.MarkerID

	overlay *ports.SceneOverlay
	center  domain.Coordinates
	zoom    int
	fit     *domain.Bounds

	removed int
}

var _ ports.SceneSurface = (*Surface)(nil)

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{
		nextID:  1,
		markers: make(map[ports.MarkerID]*marker),
	}
}

// NewSceneSurface is NewSurface typed for dependency injection.
func NewSceneSurface() ports.SceneSurface {
	return NewSurface()
}

func (s *Surface) AddMarker(opts ports.MarkerOptions) ports.MarkerID {
	id := s.nextID
	s.nextID++

	s.markers[id] = &marker{opts: opts}
	s.order = append(s.order, id)

	return id
}

// RemoveMarker detaches a marker and closes an overlay anchored to it.
func (s *Surface) RemoveMarker(id ports.MarkerID) {
	if _, ok := s.markers[id]; !ok {
		return
	}

	delete(s.markers, id)
	s.order = slices.DeleteFunc(s.order, func(m ports.MarkerID) bool { return m == id })
	s.removed++

	if s.overlay != nil && s.overlay.Anchor == id {
		s.overlay = nil
	}
}

func (s *Surface) OnClick(id ports.MarkerID, fn func()) {
	if m, ok := s.markers[id]; ok {
		m.onClick = fn
	}
}

func (s *Surface) Trigger(id ports.MarkerID, event string) {
	m, ok := s.markers[id]
	if !ok || event != ports.EventClick || m.onClick == nil {
		return
	}

	m.onClick()
}

func (s *Surface) OpenOverlay(id ports.MarkerID, overlay domain.Overlay) {
	if _, ok := s.markers[id]; !ok {
		return
	}

	s.overlay = &ports.SceneOverlay{Anchor: id, Overlay: overlay}
}

func (s *Surface) FitBounds(b domain.Bounds) {
	if b.IsEmpty() {
		return
	}

	s.fit = &b
	s.center = b.Center()
}

func (s *Surface) SetCenter(c domain.Coordinates) {
	s.center = c
	s.fit = nil
}

func (s *Surface) PanTo(c domain.Coordinates) {
	s.SetCenter(c)
}

func (s *Surface) SetZoom(zoom int) {
	s.zoom = zoom
}

// Scene returns a copy of the current picture.
func (s *Surface) Scene() ports.MapScene {
	scene := ports.MapScene{
		Center:  s.center,
		Zoom:    s.zoom,
		Markers: make([]ports.SceneMarker, 0, len(s.order)),
	}

	if s.fit != nil {
		fit := *s.fit
		scene.Fit = &fit
	}

	for _, id := range s.order {
		m := s.markers[id]
		scene.Markers = append(scene.Markers, ports.SceneMarker{
			ID:       id,
			Key:      m.opts.Key,
			Position: m.opts.Position,
			Color:    m.opts.Color,
			Title:    m.opts.Title,
		})
	}

	if s.overlay != nil {
		o := *s.overlay
		o.Categories = slices.Clone(o.Categories)
		scene.Overlay = &o
	}

	return scene
}

// Removed returns how many markers have been detached.
func (s *Surface) Removed() int {
	return s.removed
}
