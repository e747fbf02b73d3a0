package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"golang.org/x/sync/errgroup"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/graphql"
	"github.com/Alp4ka/quizhub/internal/rest"
)

const shutdownTimeout = 10 * time.Second

// Relay runs alongside the server, e.g. the redis subscription of a
// RedisBroker.
type Relay interface {
	Run(ctx context.Context) error
}

type Options struct {
	ListenAddr  string
	MetricsAddr string

	Schema  *graphqlgo.Schema
	Signer  *auth.Signer
	REST    *rest.Handler
	Sweeper *audit.Sweeper
	Relay   Relay

	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type Server struct {
	opts    Options
	handler http.Handler
	metrics http.Handler
}

func New(opts Options) *Server {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	recorder := httpmetrics.New(httpmetrics.Config{
		Recorder: metrics.NewRecorder(metrics.Config{Registry: opts.Registerer}),
	})

	return &Server{
		opts:    opts,
		handler: newRouter(opts, recorder),
		metrics: promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}),
	}
}

func newRouter(opts Options, recorder httpmetrics.Middleware) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(opts.Signer))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Subscriptions hijack the connection and are not measured.
	gql := graphql.NewHandler(opts.Schema, opts.Signer)
	measured := std.Handler("graphql", recorder, gql)
	r.Handle("/graphql", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			gql.ServeHTTP(w, r)
			return
		}
		measured.ServeHTTP(w, r)
	}))

	if opts.REST != nil {
		r.Group(func(r chi.Router) {
			r.Use(std.HandlerProvider("rest", recorder))
			opts.REST.Routes(r)
		})
	}

	return r
}

// Handler serves the public routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MetricsHandler serves the prometheus scrape endpoint.
func (s *Server) MetricsHandler() http.Handler {
	return s.metrics
}

// Run serves until ctx is done or a listener fails, then shuts the listeners
// down and waits for the background workers.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{{Addr: s.opts.ListenAddr, Handler: s.handler}}
	if s.opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics)
		servers = append(servers, &http.Server{Addr: s.opts.MetricsAddr, Handler: mux})
	}

	for _, srv := range servers {
		g.Go(func() error {
			log.WithField("addr", srv.Addr).Info("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if s.opts.Sweeper != nil {
		g.Go(func() error {
			s.opts.Sweeper.Run(ctx)
			return nil
		})
	}

	if s.opts.Relay != nil {
		g.Go(func() error {
			return s.opts.Relay.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		log.Info("server stopped")

		return errors.Join(errs...)
	})

	return g.Wait()
}
