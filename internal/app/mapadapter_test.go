package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alasharulary/alash/internal/adapters/gmaps"
	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

func TestNewMapAdapter_InitialViewport(t *testing.T) {
	surface := gmaps.NewSurface()
	NewMapAdapter(surface, nil)

	scene := surface.Scene()
	assert.Equal(t, InitialCenter, scene.Center)
	assert.Equal(t, InitialZoom, scene.Zoom)
	assert.Empty(t, scene.Markers)
}

func TestMapAdapter_Sync(t *testing.T) {
	surface := gmaps.NewSurface()
	adapter := NewMapAdapter(surface, nil)

	n := adapter.Sync(fixturePeople(), domain.LangKazakh, "Ашу")

	require.Equal(t, 3, n, "unlocated people get no marker")

	scene := surface.Scene()
	require.Len(t, scene.Markers, 3)
	assert.Equal(t, "akbota", scene.Markers[0].Key)
	assert.Equal(t, "#dc2626", scene.Markers[0].Color)
	assert.Equal(t, "#2563eb", scene.Markers[1].Color, "politics outranks journalism")
	assert.Equal(t, "#16a34a", scene.Markers[2].Color)
	assert.Equal(t, "Ақбота", scene.Markers[0].Title)

	require.NotNil(t, scene.Fit, "more than one marker fits bounds")
	assert.InDelta(t, 43.2, scene.Fit.South, 1e-9)
	assert.InDelta(t, 51.1, scene.Fit.North, 1e-9)
	assert.InDelta(t, 57.2, scene.Fit.West, 1e-9)
	assert.InDelta(t, 76.9, scene.Fit.East, 1e-9)
}

func TestMapAdapter_SyncReplacesMarkers(t *testing.T) {
	surface := gmaps.NewSurface()
	adapter := NewMapAdapter(surface, nil)

	adapter.Sync(fixturePeople(), domain.LangKazakh, "")
	adapter.Sync(fixturePeople(), domain.LangEnglish, "")

	scene := surface.Scene()
	assert.Len(t, scene.Markers, 3)
	assert.Equal(t, 3, surface.Removed())
	assert.Equal(t, "Akbota", scene.Markers[0].Title)
}

func TestMapAdapter_Viewport(t *testing.T) {
	people := fixturePeople()

	t.Run("one marker centers", func(t *testing.T) {
		surface := gmaps.NewSurface()
		adapter := NewMapAdapter(surface, nil)

		adapter.Sync(people[:1], domain.LangKazakh, "")

		scene := surface.Scene()
		assert.Nil(t, scene.Fit)
		assert.Equal(t, *people[0].Coordinates, scene.Center)
		assert.Equal(t, InitialZoom, scene.Zoom)
	})

	t.Run("zero markers leave viewport", func(t *testing.T) {
		surface := gmaps.NewSurface()
		adapter := NewMapAdapter(surface, nil)
		surface.SetCenter(domain.Coordinates{Lat: 10, Lng: 10})

		adapter.Sync(people[2:3], domain.LangKazakh, "")

		assert.Equal(t, domain.Coordinates{Lat: 10, Lng: 10}, surface.Scene().Center)
		assert.Equal(t, 0, adapter.Len())
	})
}

func TestMapAdapter_ClickOpensOverlay(t *testing.T) {
	surface := gmaps.NewSurface()
	adapter := NewMapAdapter(surface, nil)
	adapter.Sync(fixturePeople(), domain.LangEnglish, "Open biography")

	require.True(t, adapter.Click("bekzat"))

	want := domain.Overlay{
		PersonID:    "bekzat",
		Name:        "Bekzat",
		Place:       "Ақтөбе",
		Categories:  []string{"Journalism", "Politics"},
		ActionLabel: "Open biography",
	}

	require.NotNil(t, adapter.Overlay())
	assert.Equal(t, want, *adapter.Overlay())

	scene := surface.Scene()
	require.NotNil(t, scene.Overlay)
	assert.Equal(t, want, scene.Overlay.Overlay)
	assert.Equal(t, scene.Markers[1].ID, scene.Overlay.Anchor)
}

func TestMapAdapter_Focus(t *testing.T) {
	surface := gmaps.NewSurface()
	adapter := NewMapAdapter(surface, nil)
	adapter.Sync(fixturePeople(), domain.LangKazakh, "")

	require.True(t, adapter.Focus("dana"))

	scene := surface.Scene()
	assert.Equal(t, FocusZoom, scene.Zoom)
	assert.Equal(t, domain.Coordinates{Lat: 51.1, Lng: 71.4}, scene.Center)
	assert.Nil(t, scene.Fit)
	require.NotNil(t, scene.Overlay)
	assert.Equal(t, "dana", scene.Overlay.PersonID)
}

func TestMapAdapter_FocusUnknownIsNoop(t *testing.T) {
	surface := gmaps.NewSurface()
	adapter := NewMapAdapter(surface, nil)
	adapter.Sync(fixturePeople(), domain.LangKazakh, "")
	before := surface.Scene()

	assert.False(t, adapter.Focus("nobody"))
	assert.False(t, adapter.Focus("saule"), "person without a marker")

	assert.Equal(t, before, surface.Scene())
}

func TestMapAdapter_ListAndMarkerClickAgree(t *testing.T) {
	var fromMarker, fromList []string

	markerSurface := gmaps.NewSurface()
	viaMarker := NewMapAdapter(markerSurface, func(id string) { fromMarker = append(fromMarker, id) })
	viaMarker.Sync(fixturePeople(), domain.LangKazakh, "Ашу")

	listSurface := gmaps.NewSurface()
	viaList := NewMapAdapter(listSurface, func(id string) { fromList = append(fromList, id) })
	viaList.Sync(fixturePeople(), domain.LangKazakh, "Ашу")

	viaMarker.Click("akbota")
	viaList.Focus("akbota")

	assert.Equal(t, viaMarker.Overlay(), viaList.Overlay())
	assert.Equal(t, markerSurface.Scene().Overlay, listSurface.Scene().Overlay)

	_, ok := viaMarker.Activate()
	require.True(t, ok)
	_, ok = viaList.Activate()
	require.True(t, ok)

	assert.Equal(t, []string{"akbota"}, fromMarker)
	assert.Equal(t, fromMarker, fromList)
}

func TestMapAdapter_ActivateWithoutOverlay(t *testing.T) {
	adapter := NewMapAdapter(gmaps.NewSurface(), func(string) { t.Fatal("must not open") })

	_, ok := adapter.Activate()
	assert.False(t, ok)
}

func TestMapAdapter_ClearIsIdempotent(t *testing.T) {
	surface := gmaps.NewSurface()
	adapter := NewMapAdapter(surface, nil)
	adapter.Sync(fixturePeople(), domain.LangKazakh, "")
	adapter.Click("akbota")

	adapter.Clear()
	adapter.Clear()

	assert.Equal(t, 0, adapter.Len())
	assert.Nil(t, adapter.Overlay())
	assert.Equal(t, []ports.SceneMarker{}, surface.Scene().Markers)
	assert.Nil(t, surface.Scene().Overlay)
}
