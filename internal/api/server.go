// Package api exposes the extraction pipeline over HTTP: repository search,
// contributor listing with optional enrichment, CSV export, and email lookup.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contriblens/contriblens/pkg/cache"
	"github.com/contriblens/contriblens/pkg/github"
)

// Server hosts the HTTP API. Clients are pooled per credential so every
// request with the same token shares one quota tracker; hammering the API
// from several tabs still respects a single safety buffer.
type Server struct {
	addr       string
	log        *log.Logger
	cache      cache.Cache
	token      string
	clientOpts []github.Option

	mu      sync.Mutex
	clients map[string]*github.Client
}

// Config holds server construction parameters.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Token is the fallback credential for requests without their own
	// Authorization header. Optional.
	Token string

	// Cache is the shared response cache. Defaults to a null cache.
	Cache cache.Cache

	// Logger receives request logs. Defaults to the standard logger.
	Logger *log.Logger

	// ClientOpts are applied to every GitHub client the server creates.
	ClientOpts []github.Option
}

// NewServer creates a server from config.
func NewServer(cfg Config) *Server {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		addr:       cfg.Addr,
		log:        cfg.Logger,
		cache:      cfg.Cache,
		token:      cfg.Token,
		clientOpts: cfg.ClientOpts,
		clients:    make(map[string]*github.Client),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/repos/{owner}/{repo}/contributors", s.handleContributors)
		r.Get("/repos/{owner}/{repo}/contributors.csv", s.handleContributorsCSV)
		r.Get("/users/{login}/email", s.handleEmail)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("listening", "addr", s.addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// clientFor returns the pooled client for a credential, creating it on
// first use. The empty credential shares one unauthenticated pool.
func (s *Server) clientFor(token string) *github.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[token]; ok {
		return c
	}
	opts := append([]github.Option{github.WithCache(s.cache)}, s.clientOpts...)
	c := github.NewClient(token, opts...)
	s.clients[token] = c
	return c
}

// requestToken resolves the credential for a request: its own bearer token
// if present, otherwise the server default.
func (s *Server) requestToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return s.token
}

// httpStatus maps domain errors to response codes. Both the self-imposed
// guard and an upstream rejection read as 429 to API consumers.
func httpStatus(err error) int {
	if github.IsGuard(err) || github.IsRateLimited(err) {
		return http.StatusTooManyRequests
	}
	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
