package dashboard

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/log"
	"github.com/smallnest/collabwalk/store"
	"github.com/smallnest/collabwalk/walk"
)

//go:embed web/index.html
var indexHTML []byte

// DefaultSeeds are the artists offered by the seed dropdown.
var DefaultSeeds = []string{"Drake", "Snoop Dogg", "Elton John", "Kendrick Lamar", "Britney Spears"}

// Options configures a Server.
type Options struct {
	// Seeds populate the dropdown. Defaults to DefaultSeeds.
	Seeds []string

	// Defaults fill in walk parameters a request leaves out.
	// Seed defaults to the first of Seeds.
	Defaults walk.Request

	// MaxSteps caps the steps a request may ask for. Defaults to 200.
	MaxSteps int

	// Market is passed to every walk.
	Market string

	Logger  log.Logger
	Metrics *Metrics

	// NewRandom returns the random source for one walk.
	// Defaults to a time seeded math/rand source.
	NewRandom func() walk.RandomSource

	// Debug puts gin in debug mode. Otherwise the process wide gin mode is kept.
	Debug bool
}

// Server is the collaboration walk dashboard.
type Server struct {
	client   catalog.Client
	store    store.WalkStore
	opts     Options
	logger   log.Logger
	metrics  *Metrics
	sessions *sessionGuard
	engine   *gin.Engine
}

// New builds the dashboard over a shared catalog client and walk store.
// Both must be safe for concurrent use.
func New(client catalog.Client, walks store.WalkStore, opts Options) *Server {
	if len(opts.Seeds) == 0 {
		opts.Seeds = DefaultSeeds
	}
	if opts.Defaults.Seed == "" {
		opts.Defaults.Seed = opts.Seeds[0]
	}
	if opts.Defaults.Steps == 0 {
		opts.Defaults.Steps = 20
	}
	if opts.Defaults.QueryLimit == 0 {
		opts.Defaults.QueryLimit = 20
	}
	if opts.Defaults.ReleaseType == "" {
		opts.Defaults.ReleaseType = catalog.ReleaseSingle
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 200
	}
	if opts.Logger == nil {
		opts.Logger = log.GetDefaultLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.NewRandom == nil {
		opts.NewRandom = func() walk.RandomSource {
			//nolint:gosec // Walk choices are not security sensitive
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}

	s := &Server{
		client:   client,
		store:    walks,
		opts:     opts,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		sessions: newSessionGuard(),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving the dashboard.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	if s.opts.Debug {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), sessionMiddleware())

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/seeds", s.handleSeeds)
		api.GET("/stylesheet", s.handleStylesheet)
		api.GET("/walk", s.handleWalk)
		api.GET("/walks", s.handleListWalks)
		api.GET("/walks/:id", s.handleGetWalk)
		api.DELETE("/walks/:id", s.handleDeleteWalk)
	}
	return r
}

// requestLogger logs every request and counts it by route.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		s.metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		s.logger.Debug("dashboard: %s %s -> %d in %v", c.Request.Method, c.Request.URL.Path, code, time.Since(start))
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("dashboard: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("dashboard shutdown failed: %w", err)
		}
		return nil
	}
}

// statusFor maps walk, catalog and store errors to HTTP status codes.
func statusFor(err error) int {
	var nf *catalog.NotFoundError
	switch {
	case errors.Is(err, walk.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &nf), errors.Is(err, store.ErrWalkNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if ce, ok := catalog.AsCatalogError(err); ok {
		if ce.RateLimited() {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, status int, err error) {
	if ce, ok := catalog.AsCatalogError(err); ok && status == http.StatusTooManyRequests && ce.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(ce.RetryAfter.Round(time.Second)/time.Second)))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
