package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"

	"evenex/internal/adapters/email"
	"evenex/internal/adapters/http/middleware"
	"evenex/internal/adapters/http/perf"
	eventStore "evenex/internal/adapters/storage/event"
	"evenex/internal/domain/calendar"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps holds everything the handlers need. It is built once in main.
type Deps struct {
	Events      eventStore.Store
	Sender      email.Sender
	Encoder     *calendar.Encoder
	DisplayZone *time.Location
	Perf        *perf.Collector // optional

	// PublicBaseURL replaces the request origin in event URLs when set.
	PublicBaseURL string
	// TrustProxy honours X-Forwarded-Proto; enable only behind a proxy that sets it.
	TrustProxy  bool
	FromAddress string
	DebugPerf   bool

	GenerateID func() string
	Now        func() time.Time
}

// Options configures the middleware chain around the routes.
type Options struct {
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      int
	RateInterval   time.Duration
	SlowRequestMs  int
}

// Handler serves the calendar, event API and event pages.
type Handler struct {
	deps  Deps
	pages map[string]*template.Template
}

// NewHandler validates deps and parses the embedded templates.
// PRE: deps.Events, deps.Sender and deps.Encoder are set
// POST: returns a ready handler; GenerateID, Now and DisplayZone get defaults when nil
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Events == nil || deps.Sender == nil || deps.Encoder == nil {
		return nil, fmt.Errorf("web: events, sender and encoder are required")
	}
	if deps.GenerateID == nil {
		deps.GenerateID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DisplayZone == nil {
		deps.DisplayZone = time.UTC
	}

	pages, err := parsePages(deps.DisplayZone)
	if err != nil {
		return nil, err
	}
	return &Handler{deps: deps, pages: pages}, nil
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("GET /calendar/{slug}", h.handleCalendar)
	mux.HandleFunc("GET /api/calendar/{slug}", h.handleCalendar)

	mux.HandleFunc("GET /api/events", h.handleListEvents)
	mux.HandleFunc("POST /api/events", h.handleCreateEvent)
	mux.HandleFunc("GET /api/events/{slug}", h.handleGetEvent)
	mux.HandleFunc("POST /api/events/{slug}/invite", h.handleInviteAPI)

	mux.HandleFunc("GET /{$}", h.handleIndexPage)
	mux.HandleFunc("GET /events/{slug}", h.handleEventPage)
	mux.HandleFunc("POST /events/{slug}/invite", h.handleInviteForm)

	if h.deps.DebugPerf {
		mux.HandleFunc("GET /debug/perf", h.handlePerf)
	}
	return mux
}

// NewMux wires the routes behind the middleware chain.
// Order, outermost first: SecurityHeaders, Gzip, RateLimit, CSRF, Timing, mux.
// ctx bounds the rate limiter's background sweep.
func NewMux(ctx context.Context, deps Deps, opts Options) (http.Handler, error) {
	h, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	if len(opts.CSRFKey) != 32 {
		return nil, fmt.Errorf("web: csrf key must be 32 bytes, got %d", len(opts.CSRFKey))
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 60
	}
	if opts.RateInterval <= 0 {
		opts.RateInterval = time.Minute
	}
	limiter := middleware.NewRateLimiter(ctx, opts.RateLimit, opts.RateInterval)

	return middleware.Chain(h.Routes(),
		middleware.Timing(deps.Perf, opts.SlowRequestMs),
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.Gzip,
		middleware.SecurityHeaders,
	), nil
}

func parsePages(zone *time.Location) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"formatWhen": func(t time.Time) string {
			return t.In(zone).Format("Mon 2 Jan 2006, 3:04 PM")
		},
		"formatTime": func(t time.Time) string {
			return t.In(zone).Format("3:04 PM")
		},
		"sameDay": func(a, b time.Time) bool {
			a, b = a.In(zone), b.In(zone)
			return a.Year() == b.Year() && a.YearDay() == b.YearDay()
		},
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "event.html", "not_found.html"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
