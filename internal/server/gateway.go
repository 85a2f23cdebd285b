package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodmix/internal/tasks"
)

// ShutdownTimeout bounds graceful shutdown in [Serve].
const ShutdownTimeout = 10 * time.Second

// Options configures a [Gateway].
type Options struct {
	Engine      *tasks.Engine
	Auth        TokenExchanger // nil disables the /auth routes
	FrontendURL string         // redirect target after consent; also the CORS origin
	StaticDir   string         // optional built front end
	Logger      *log.Logger
	Metrics     *Metrics // nil creates a fresh registry
}

// Gateway is the relay's HTTP surface.
type Gateway struct {
	router  *BasicRouter
	metrics *Metrics
	logger  *log.Logger
}

// NewGateway wires every handler and middleware into one router.
func NewGateway(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	r := NewBasicRouter()
	r.Use(RequestID, Logging(logger), Recover(logger), CORS(opts.FrontendURL), metrics.Middleware)

	r.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle(http.MethodGet, "/metrics", metrics.Handler())

	if opts.Auth != nil {
		r.Handler(NewAuthHandler(opts.Auth, opts.FrontendURL, logger.WithPrefix("auth")))
	}
	r.Handler(NewAPIHandler(opts.Engine, metrics, logger.WithPrefix("api")))
	if opts.StaticDir != "" {
		r.Handler(NewSPAHandler(opts.StaticDir))
	}

	return &Gateway{router: r, metrics: metrics, logger: logger}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

// Metrics returns the gateway's collectors.
func (g *Gateway) Metrics() *Metrics { return g.metrics }

// Server returns an [http.Server] for the gateway listening on addr.
func (g *Gateway) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           g,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
