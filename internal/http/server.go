package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"spesedash/internal/backend"
	"spesedash/internal/cache"
	"spesedash/internal/core"
	"spesedash/internal/dashboard"
	applog "spesedash/internal/log"
	"spesedash/internal/middleware/ratelimit"
	"spesedash/internal/middleware/security"
	"spesedash/internal/middleware/trace"
	appweb "spesedash/web"
)

const (
	defaultCacheTTL       = 2 * time.Minute
	defaultCacheSize      = 64
	defaultBackendTimeout = 7 * time.Second
	cacheSweepInterval    = 5 * time.Minute
	staticMaxAge          = 3600
)

// reservedRoutes are owned by the server; the see-all path may not shadow them.
var reservedRoutes = []string{
	"/",
	"/expenses",
	"/healthz",
	"/readyz",
	"/ui/recent-expenses",
	dashboard.SeeAllRoute,
}

// Options configures NewServer. Zero durations and sizes fall back to
// defaults.
type Options struct {
	Addr           string
	Backend        backend.Backend
	Renderer       *dashboard.Renderer
	CacheTTL       time.Duration
	CacheSize      int
	BackendTimeout time.Duration
	RateLimit      ratelimit.Config
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	backend   backend.Backend
	renderer  *dashboard.Renderer

	recentCache *cache.LRUCache[[]core.Expense]
	recent      *cache.Loader[[]core.Expense]
	janitor     *cache.Janitor

	limiter  *ratelimit.Limiter
	clientIP *security.ClientIPResolver
	tracer   *trace.Middleware

	logger         *applog.Logger
	events         *applog.StructuredLogger
	backendTimeout time.Duration
	started        time.Time
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if err := checkSeeAllPath(opts.Renderer.SeeAllPath()); err != nil {
		return nil, err
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = defaultBackendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	clientIP, err := security.NewClientIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	recentCache := cache.NewLRUCache[[]core.Expense](opts.CacheSize, opts.CacheTTL)

	s := &Server{
		templates:      t,
		backend:        opts.Backend,
		renderer:       opts.Renderer,
		recentCache:    recentCache,
		recent:         cache.NewLoader[[]core.Expense](recentCache, opts.BackendTimeout),
		janitor:        cache.NewJanitor(recentCache),
		limiter:        ratelimit.NewLimiter(opts.RateLimit),
		clientIP:       clientIP,
		tracer:         trace.NewMiddleware(opts.Logger, clientIP.Resolve),
		logger:         logger,
		events:         applog.NewStructuredLogger(logger),
		backendTimeout: opts.BackendTimeout,
		started:        time.Now(),
	}

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		return nil, err
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))

	limited := s.limiter.Middleware(s.clientIP.Resolve, s.onRateLimit)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /ui/recent-expenses", s.handleRecentExpenses)
	mux.Handle("POST /ui/recent-expenses", limited(http.HandlerFunc(s.handleRecentExpensesFromBody)))
	mux.HandleFunc("GET "+dashboard.SeeAllRoute, s.handleSeeAll)

	mux.HandleFunc("GET "+s.renderer.SeeAllPath(), s.handleExpenseList)
	mux.Handle("POST /expenses", limited(http.HandlerFunc(s.handleCreateExpense)))
	return nil
}

// middleware wraps h with tracing, security headers and the request logger.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(h)
	h = applog.Middleware(s.logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.tracer.Middleware(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.Resolve(r),
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Too many requests, try again later").Write(w)
}

// RunBackground runs the cache janitor and the rate limiter pruning until
// ctx is done.
func (s *Server) RunBackground(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.janitor.Run(ctx, cacheSweepInterval) })
	g.Go(func() error { return s.limiter.Run(ctx) })
	return g.Wait()
}

// InvalidateRecent drops every cached recent-expenses result.
func (s *Server) InvalidateRecent() {
	s.recent.Invalidate()
}

func checkSeeAllPath(path string) error {
	if strings.ContainsAny(path, "{} \t") {
		return fmt.Errorf("see-all path %q contains characters not allowed in a route", path)
	}
	if strings.HasPrefix(path, "/static/") {
		return fmt.Errorf("see-all path %q collides with static assets", path)
	}
	for _, reserved := range reservedRoutes {
		if path == reserved {
			return fmt.Errorf("see-all path %q collides with a built-in route", path)
		}
	}
	return nil
}
