package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

// State is the UI selection state of one visitor.
type State struct {
	Language       domain.Language `json:"lang"`
	Route          domain.Route    `json:"route"`
	Search         string          `json:"search"`
	OpenPersonID   string          `json:"open_person_id,omitempty"`
	QuoteIndex     int             `json:"quote_index"`
	MapExpanded    bool            `json:"map_expanded"`
	PlaceSearch    string          `json:"place_search"`
	FocusedPlaceID string          `json:"focused_place_id,omitempty"`
}

// NavigationDisabled reports whether primary navigation is locked by an open detail view.
func (s State) NavigationDisabled() bool {
	return s.OpenPersonID != ""
}

// Session holds one visitor's state together with its quote rotator and map view.
// All methods are safe for concurrent use.
type Session struct {
	id    string
	store *SessionStore

	mu          sync.Mutex
	state       State
	lastSeen    time.Time
	rotator     *Rotator
	surface     ports.SceneSurface
	mapView     *MapAdapter
	unsubscribe func()
	closed      bool
}

func newSession(id string, store *SessionStore, lang domain.Language) *Session {
	s := &Session{
		id:    id,
		store: store,
		state: State{
			Language: lang,
			Route:    domain.DefaultRoute,
		},
		lastSeen: store.now(),
		surface:  store.newSurface(),
	}

	s.mapView = NewMapAdapter(s.surface, s.openDetailLocked)
	s.rotator = NewRotator(store.quoteInterval, store.newTicker, s.tick)

	s.mu.Lock()
	s.watchLoaderLocked()
	s.syncMapLocked()
	s.mu.Unlock()

	s.rotator.Start()

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// SetLanguage switches the display language. An open detail view stays open
// and the quote index is reset when it does not fit the new list.
func (s *Session) SetLanguage(ctx context.Context, lang domain.Language) error {
	if !lang.Valid() {
		return domain.NewValidationErrorWithValue("lang", "must be one of: kk en", lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Language == lang {
		return nil
	}

	s.state.Language = lang
	s.state.QuoteIndex = s.store.quotes.Reconcile(lang, s.state.QuoteIndex)

	if !s.closed {
		s.rotator.Restart()
	}

	s.watchLoaderLocked()
	s.syncMapLocked()

	s.store.logger.DebugContext(ctx, "session language changed",
		slog.String("session_id", s.id),
		slog.String("lang", lang.String()),
	)

	return nil
}

// SetRoute changes the current view. Changing to another route fails with a
// forbidden error while a detail view is open; staying on the current one
// never does.
func (s *Session) SetRoute(route domain.Route) error {
	if _, err := domain.ParseRoute(string(route)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if route == s.state.Route {
		return nil
	}

	if s.state.NavigationDisabled() {
		return domain.NewForbiddenError("change route", "a detail view is open")
	}

	s.state.Route = route

	return nil
}

// SetSearch sets the people search text.
func (s *Session) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Search = query
}

// SetPlaceSearch sets the place search text and rebuilds the markers.
func (s *Session) SetPlaceSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PlaceSearch = query
	s.syncMapLocked()
}

// SetMapExpanded toggles the expanded map dialog.
func (s *Session) SetMapExpanded(expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.MapExpanded = expanded
}

// OpenDetail opens the detail view for a person, replacing any open one.
func (s *Session) OpenDetail(personID string) error {
	if _, err := s.store.content.Person(personID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.openDetailLocked(personID)

	return nil
}

// CloseDetail closes the detail view. Closing when nothing is open is a no-op.
func (s *Session) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.OpenPersonID = ""
}

// FocusPlace selects a place from the list: the marker is clicked, and the
// viewport pans and zooms to it.
func (s *Session) FocusPlace(personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inPlacesLocked(personID) {
		return domain.NewNotFoundError("place", personID)
	}

	s.state.FocusedPlaceID = personID
	s.mapView.Focus(personID)

	return nil
}

// ClickMarker simulates a click on the person's marker without moving the viewport.
func (s *Session) ClickMarker(personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mapView.Click(personID) {
		return domain.NewNotFoundError("marker", personID)
	}

	return nil
}

// ActivateOverlay runs the open overlay's action, opening that person's detail view.
func (s *Session) ActivateOverlay() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.mapView.Activate()
	if !ok {
		return "", domain.NewNotFoundError("overlay", "open")
	}

	return id, nil
}

// NextQuote advances the quote immediately and returns the new index.
func (s *Session) NextQuote(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.QuoteIndex = s.store.quotes.Advance(ctx, s.state.Language, s.state.QuoteIndex, QuoteSourceManual)

	return s.state.QuoteIndex
}

// Quote returns the current quote.
func (s *Session) Quote() domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, _ := s.store.quotes.At(s.state.Language, s.state.QuoteIndex)

	return q
}

// MapStatus returns the loader state for the session language.
func (s *Session) MapStatus() domain.MapStatus {
	s.mu.Lock()
	lang := s.state.Language
	s.mu.Unlock()

	if l := s.store.loaders.For(lang); l != nil {
		return l.Status()
	}

	return domain.MapStatusIdle
}

// MapScriptURL returns the script URL for the session language, empty without a key.
func (s *Session) MapScriptURL() string {
	s.mu.Lock()
	lang := s.state.Language
	s.mu.Unlock()

	if l := s.store.loaders.For(lang); l != nil {
		return l.ScriptURL()
	}

	return ""
}

// MapScene returns the current map picture.
func (s *Session) MapScene() ports.MapScene {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.surface.Scene()
}

// Overlay returns the open map overlay, or nil.
func (s *Session) Overlay() *domain.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o := s.mapView.Overlay(); o != nil {
		cp := *o
		return &cp
	}

	return nil
}

// RotatorRunning reports whether the quote timer is active.
func (s *Session) RotatorRunning() bool {
	return s.rotator.Running()
}

// Close stops the quote timer, detaches from the map loader and removes all markers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.rotator.Stop()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	s.mapView.Clear()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSeen
}

func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.state.QuoteIndex = s.store.quotes.Advance(context.Background(), s.state.Language, s.state.QuoteIndex, QuoteSourceTimer)
}

func (s *Session) onMapStatus(status domain.MapStatus) {
	if status != domain.MapStatusReady {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncMapLocked()
}

func (s *Session) openDetailLocked(personID string) {
	s.state.OpenPersonID = personID
}

func (s *Session) watchLoaderLocked() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	if s.closed {
		return
	}

	if l := s.store.loaders.For(s.state.Language); l != nil {
		s.unsubscribe = l.Subscribe(s.onMapStatus)
	}
}

func (s *Session) mapReadyLocked() bool {
	l := s.store.loaders.For(s.state.Language)
	return l != nil && l.Status() == domain.MapStatusReady
}

func (s *Session) placesLocked() []domain.Person {
	return FilterPlaces(s.store.content.People(), s.state.PlaceSearch)
}

func (s *Session) inPlacesLocked(personID string) bool {
	for _, p := range s.placesLocked() {
		if p.ID == personID {
			return true
		}
	}

	return false
}

// syncMapLocked runs the marker lifecycle when the map is ready and keeps a
// focused place focused while it stays in the filtered set.
func (s *Session) syncMapLocked() {
	if s.closed {
		return
	}

	if !s.inPlacesLocked(s.state.FocusedPlaceID) {
		s.state.FocusedPlaceID = ""
	}

	if !s.mapReadyLocked() {
		s.mapView.Clear()
		return
	}

	label := s.store.content.Strings(s.state.Language)["open_bio"]
	s.mapView.Sync(s.placesLocked(), s.state.Language, label)

	if s.state.FocusedPlaceID != "" {
		s.mapView.Focus(s.state.FocusedPlaceID)
	}
}
