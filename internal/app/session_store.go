package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// DefaultMaxSessions caps the number of live sessions.
const DefaultMaxSessions = 10000

// SessionStoreConfig configures a SessionStore.
type SessionStoreConfig struct {
	Content ports.ContentStore
	Quotes  *QuoteService
	Loaders MapLoaders

	// NewSurface creates the map surface of each session.
	NewSurface func() ports.SceneSurface

	TTL           time.Duration
	QuoteInterval time.Duration
	NewTicker     TickerFactory

	// MaxSessions caps live sessions. Creating one past the cap evicts the
	// longest idle session. Zero means DefaultMaxSessions.
	MaxSessions int

	Recorder ports.Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// SessionStore keeps sessions in memory and expires idle ones.
type SessionStore struct {
	content       ports.ContentStore
	quotes        *QuoteService
	loaders       MapLoaders
	newSurface    func() ports.SceneSurface
	ttl           time.Duration
	quoteInterval time.Duration
	newTicker     TickerFactory
	maxSessions   int
	recorder      ports.Recorder
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	if cfg.Content == nil {
		panic("app: ContentStore is required")
	}

	if cfg.NewSurface == nil {
		panic("app: NewSurface is required")
	}

	if cfg.Recorder == nil {
		cfg.Recorder = ports.NopRecorder{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Quotes == nil {
		cfg.Quotes = NewQuoteService(QuoteServiceConfig{
			Store:    cfg.Content,
			Recorder: cfg.Recorder,
			Logger:   cfg.Logger,
		})
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}

	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &SessionStore{
		content:       cfg.Content,
		quotes:        cfg.Quotes,
		loaders:       cfg.Loaders,
		newSurface:    cfg.NewSurface,
		ttl:           cfg.TTL,
		quoteInterval: cfg.QuoteInterval,
		newTicker:     cfg.NewTicker,
		maxSessions:   cfg.MaxSessions,
		recorder:      cfg.Recorder,
		logger:        cfg.Logger.With(slog.String("component", "app.SessionStore")),
		now:           cfg.Now,
		sessions:      make(map[string]*Session),
	}
}

// Create starts a new session in lang.
func (st *SessionStore) Create(ctx context.Context, lang domain.Language) *Session {
	if !lang.Valid() {
		lang = domain.DefaultLanguage
	}

	s := newSession(uuid.NewString(), st, lang)

	st.mu.Lock()

	var evicted *Session
	if len(st.sessions) >= st.maxSessions {
		evicted = st.oldestLocked()
		delete(st.sessions, evicted.id)
	}

	st.sessions[s.id] = s
	n := len(st.sessions)
	st.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		st.logger.DebugContext(ctx, "idle session evicted",
			slog.String("session_id", evicted.id),
			slog.Int("max_sessions", st.maxSessions),
		)
	}

	st.recorder.SessionsActive(n)
	st.logger.DebugContext(ctx, "session created",
		slog.String("session_id", s.id),
		slog.String("lang", lang.String()),
	)

	return s
}

// oldestLocked returns the session idle the longest. The store must hold at
// least one session.
func (st *SessionStore) oldestLocked() *Session {
	var oldest *Session
	var oldestIdle time.Time

	for _, s := range st.sessions {
		idle := s.idleSince()
		if oldest == nil || idle.Before(oldestIdle) {
			oldest, oldestIdle = s, idle
		}
	}

	return oldest
}

// Get returns a live session and marks it as used. Expired sessions are closed
// and reported as missing.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, false
	}

	now := st.now()
	if now.Sub(s.idleSince()) > st.ttl {
		st.Delete(id)
		return nil, false
	}

	s.touch(now)

	return s, true
}

// Delete closes and forgets a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if ok {
		s.Close()
		st.recorder.SessionsActive(n)
	}
}

// Sweep closes every session idle for longer than the TTL and returns how many were removed.
func (st *SessionStore) Sweep(ctx context.Context) int {
	now := st.now()

	st.mu.Lock()

	var expired []*Session

	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}

	n := len(st.sessions)
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}

	if len(expired) > 0 {
		st.recorder.SessionsActive(n)
		st.logger.DebugContext(ctx, "expired sessions swept",
			slog.Int("expired", len(expired)),
			slog.Int("active", n),
		)
	}

	return len(expired)
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// Run sweeps expired sessions until ctx is done, then closes every session.
func (st *SessionStore) Run(ctx context.Context) error {
	interval := max(st.ttl/4, time.Second)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.CloseAll()
			return nil
		case <-ticker.C:
			st.Sweep(ctx)
		}
	}
}

// CloseAll closes and forgets every session.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	st.recorder.SessionsActive(0)
}
