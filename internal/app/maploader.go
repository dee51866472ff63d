package app

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/alasharulary/alash/internal/domain"
	"github.com/alasharulary/alash/internal/ports"
)

// MapsScriptName is the registry key of the mapping library script.
// Every loader shares it, so the library is fetched at most once per process.
const MapsScriptName = "gmaps"

// DefaultMapsScriptURL is the base URL of the mapping library.
const DefaultMapsScriptURL = "https://maps.googleapis.com/maps/api/js"

// ErrScriptLoadFailed is reported by the loader's health check after a failed load.
var ErrScriptLoadFailed = errors.New("maps script failed to load")

// BuildScriptURL returns the script URL for a key and language.
func BuildScriptURL(base, key string, lang domain.Language) string {
	if base == "" {
		base = DefaultMapsScriptURL
	}

	q := url.Values{}
	q.Set("key", key)

	if lang != "" {
		q.Set("language", lang.String())
	}

	return base + "?" + q.Encode()
}

// ScriptListener receives the outcome of a script load.
// At most one of the callbacks fires, at most once.
type ScriptListener struct {
	OnLoad  func()
	OnError func(error)
}

type scriptState int

const (
	scriptPending scriptState = iota
	scriptLoaded
	scriptFailed
)

// Script is a registered script and its load outcome.
type Script struct {
	name string
	src  string

	mu        sync.Mutex
	state     scriptState
	err       error
	listeners map[int]ScriptListener
	nextID    int
}

// Src returns the URL the script was registered with.
func (s *Script) Src() string {
	return s.src
}

// Listen attaches l and returns a function that detaches it.
// When the script has already settled, l fires immediately on the calling goroutine.
func (s *Script) Listen(l ScriptListener) (detach func()) {
	s.mu.Lock()

	switch s.state {
	case scriptLoaded:
		s.mu.Unlock()

		if l.OnLoad != nil {
			l.OnLoad()
		}

		return func() {}
	case scriptFailed:
		err := s.err
		s.mu.Unlock()

		if l.OnError != nil {
			l.OnError(err)
		}

		return func() {}
	}

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Listeners returns the number of attached listeners.
func (s *Script) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.listeners)
}

func (s *Script) settle(err error) {
	s.mu.Lock()
	if s.state != scriptPending {
		s.mu.Unlock()
		return
	}

	s.state = scriptLoaded
	if err != nil {
		s.state = scriptFailed
		s.err = err
	}

	listeners := make([]ScriptListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}

	clear(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		if err != nil {
			if l.OnError != nil {
				l.OnError(err)
			}

			continue
		}

		if l.OnLoad != nil {
			l.OnLoad()
		}
	}
}

// ScriptRegistry owns the scripts injected into the page. Registration is
// idempotent: a second Ensure for the same name returns the existing script.
type ScriptRegistry struct {
	fetcher ports.ScriptFetcher
	logger  *slog.Logger

	mu      sync.Mutex
	scripts map[string]*Script
	wg      sync.WaitGroup
}

// NewScriptRegistry creates a registry that loads scripts through fetcher.
func NewScriptRegistry(fetcher ports.ScriptFetcher, logger *slog.Logger) *ScriptRegistry {
	if fetcher == nil {
		panic("app: ScriptFetcher is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ScriptRegistry{
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "app.ScriptRegistry")),
		scripts: make(map[string]*Script),
	}
}

// Ensure returns the script registered under name. When none exists, it registers
// one for src and starts loading it in the background.
func (r *ScriptRegistry) Ensure(ctx context.Context, name, src string) (script *Script, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.scripts[name]; ok {
		return s, false
	}

	s := &Script{name: name, src: src, listeners: make(map[int]ScriptListener)}
	r.scripts[name] = s

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		err := r.fetcher.FetchScript(ctx, src)
		if err != nil {
			r.logger.WarnContext(ctx, "script load failed",
				slog.String("script", name),
				slog.Any("error", err),
			)
		} else {
			r.logger.InfoContext(ctx, "script loaded", slog.String("script", name))
		}

		s.settle(err)
	}()

	return s, true
}

// Loaded reports whether the named script has finished loading successfully.
func (r *ScriptRegistry) Loaded(name string) bool {
	r.mu.Lock()
	s, ok := r.scripts[name]
	r.mu.Unlock()

	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == scriptLoaded
}

// Wait blocks until every background load has settled.
func (r *ScriptRegistry) Wait() {
	r.wg.Wait()
}

// MapLoaderConfig configures a MapLoader.
type MapLoaderConfig struct {
	// APIKey is the mapping service credential. Empty means no-key.
	APIKey string

	// ScriptURL overrides DefaultMapsScriptURL.
	ScriptURL string

	Language domain.Language
	Registry *ScriptRegistry
	Recorder ports.Recorder
	Logger   *slog.Logger
}

// MapLoader drives the script load state machine for one display language:
// idle to loading to ready or error, idle to no-key, or idle to ready when the
// library is already present. It never retries.
type MapLoader struct {
	apiKey    string
	scriptURL string
	lang      domain.Language
	registry  *ScriptRegistry
	recorder  ports.Recorder
	logger    *slog.Logger

	mu      sync.Mutex
	status  domain.MapStatus
	subs    map[int]func(domain.MapStatus)
	nextSub int
	detach  func()
	closed  bool
}

// NewMapLoader creates an idle loader.
func NewMapLoader(cfg MapLoaderConfig) *MapLoader {
	if cfg.Registry == nil {
		panic("app: ScriptRegistry is required")
	}

	if cfg.Recorder == nil {
		cfg.Recorder = ports.NopRecorder{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Language == "" {
		cfg.Language = domain.DefaultLanguage
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return &MapLoader{
		apiKey:    cfg.APIKey,
		scriptURL: BuildScriptURL(cfg.ScriptURL, cfg.APIKey, cfg.Language),
		lang:      cfg.Language,
		registry:  cfg.Registry,
		recorder:  cfg.Recorder,
		logger: cfg.Logger.With(
			slog.String("component", "app.MapLoader"),
			slog.String("lang", cfg.Language.String()),
		),
		status: domain.MapStatusIdle,
		subs:   make(map[int]func(domain.MapStatus)),
	}
}

// Status returns the current load state.
func (l *MapLoader) Status() domain.MapStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.status
}

// ScriptURL returns the script URL the browser should load. Empty when there is no key.
func (l *MapLoader) ScriptURL() string {
	if l.apiKey == "" {
		return ""
	}

	return l.scriptURL
}

// Subscribe registers fn to be called on every later state change.
func (l *MapLoader) Subscribe(fn func(domain.MapStatus)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return func() {}
	}

	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Start leaves the idle state. Calling it again has no effect.
func (l *MapLoader) Start(ctx context.Context) {
	if l.apiKey == "" {
		l.transition(ctx, domain.MapStatusIdle, domain.MapStatusNoKey)
		return
	}

	if l.registry.Loaded(MapsScriptName) {
		l.transition(ctx, domain.MapStatusIdle, domain.MapStatusReady)
		return
	}

	if !l.transition(ctx, domain.MapStatusIdle, domain.MapStatusLoading) {
		return
	}

	script, created := l.registry.Ensure(ctx, MapsScriptName, l.scriptURL)
	if !created {
		l.logger.DebugContext(ctx, "attaching to existing script", slog.String("src", script.Src()))
	}

	detach := script.Listen(ScriptListener{
		OnLoad: func() {
			l.transition(ctx, domain.MapStatusLoading, domain.MapStatusReady)
		},
		OnError: func(error) {
			l.transition(ctx, domain.MapStatusLoading, domain.MapStatusError)
		},
	})

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		detach()

		return
	}

	l.detach = detach
	l.mu.Unlock()
}

// Close detaches from the script and drops every subscriber.
// No callback runs after Close returns.
func (l *MapLoader) Close() {
	l.mu.Lock()
	l.closed = true
	detach := l.detach
	l.detach = nil
	clear(l.subs)
	l.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Name implements ports.HealthChecker.
func (l *MapLoader) Name() string {
	return "maps-script-" + l.lang.String()
}

// Check implements ports.HealthChecker. Missing credentials are not a failure.
func (l *MapLoader) Check(_ context.Context) error {
	if l.Status() == domain.MapStatusError {
		return ErrScriptLoadFailed
	}

	return nil
}

// Optional implements ports.OptionalChecker.
func (l *MapLoader) Optional() bool {
	return true
}

func (l *MapLoader) transition(ctx context.Context, from, to domain.MapStatus) bool {
	l.mu.Lock()
	if l.closed || l.status != from {
		l.mu.Unlock()
		return false
	}

	l.status = to

	subs := make([]func(domain.MapStatus), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "map status changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	l.recorder.MapStatusChanged(to)

	for _, fn := range subs {
		fn(to)
	}

	return true
}

// MapLoaders holds one loader per display language.
type MapLoaders map[domain.Language]*MapLoader

// NewMapLoaders creates a loader for every supported language.
// All of them share registry and therefore a single script.
func NewMapLoaders(cfg MapLoaderConfig) MapLoaders {
	loaders := make(MapLoaders, len(domain.Languages))

	for _, lang := range domain.Languages {
		c := cfg
		c.Language = lang
		loaders[lang] = NewMapLoader(c)
	}

	return loaders
}

// For returns the loader for lang.
func (m MapLoaders) For(lang domain.Language) *MapLoader {
	return m[lang]
}

// StartAll starts every loader in language order.
func (m MapLoaders) StartAll(ctx context.Context) {
	for _, lang := range domain.Languages {
		if l, ok := m[lang]; ok {
			l.Start(ctx)
		}
	}
}

// CloseAll closes every loader.
func (m MapLoaders) CloseAll() {
	for _, l := range m {
		l.Close()
	}
}
