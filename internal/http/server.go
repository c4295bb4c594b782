package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"salesboard/internal/cache"
	applog "salesboard/internal/log"
	"salesboard/internal/middleware/ratelimit"
	"salesboard/internal/middleware/security"
	"salesboard/internal/middleware/trace"
	"salesboard/internal/services"
	"salesboard/internal/store"
)

const readyTimeout = 2 * time.Second

// Dependencies are the services the handlers call.
type Dependencies struct {
	Stats  *services.StatsService
	Seeder *services.SeedService
	Pinger store.Pinger
	// Janitor, when set, is stopped on Shutdown.
	Janitor *cache.Janitor
}

// Options tune the middleware chain.
type Options struct {
	Logger             *applog.Logger
	CORSOrigins        []string
	RateLimitPerMinute int
}

// Server wraps http.Server with the sales API routes and middleware.
type Server struct {
	http.Server

	stats    *services.StatsService
	seeder   *services.SeedService
	pinger   store.Pinger
	janitor  *cache.Janitor
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer registers routes and returns a server ready to ListenAndServe.
func NewServer(addr string, deps Dependencies, opts Options) *Server {
	s := &Server{
		stats:    deps.Stats,
		seeder:   deps.Seeder,
		pinger:   deps.Pinger,
		janitor:  deps.Janitor,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusTooManyRequests, msgTooManyRequest)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /home", s.handleHome)
	mux.Handle("POST /search/{monthName}", limited(http.HandlerFunc(s.handleSearch)))
	mux.HandleFunc("GET /data/{monthName}", s.handleData)
	mux.HandleFunc("GET /bar-chart/{monthName}", s.handleBarChart)
	mux.HandleFunc("GET /pie-chart/{monthName}", s.handlePieChart)
	mux.HandleFunc("GET /statistic/{monthName}", s.handleStatistic)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	cors := security.NewCORS(security.CORSConfig{AllowedOrigins: opts.CORSOrigins})

	var h http.Handler = mux
	h = cors(h)
	h = headers.Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines and drains the HTTP server. Safe to
// call more than once; later calls return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.janitor != nil {
			s.janitor.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
