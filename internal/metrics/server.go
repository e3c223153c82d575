package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	recentDownloadsLimit = 20
	shutdownTimeout      = 5 * time.Second
)

// HistoryReader reads the download ledger.
type HistoryReader interface {
	RecentDownloads(ctx context.Context, limit int) ([]models.DownloadRecord, error)
	CountSuccessful(ctx context.Context) (int64, error)
}

// StatusResponse is the body served on /status.
type StatusResponse struct {
	Stats           models.RunStats         `json:"stats"`
	UptimeSeconds   int64                   `json:"uptime_seconds"`
	Resources       ResourceUsage           `json:"resources"`
	Indices         []models.IndexRecord    `json:"indices,omitempty"`
	RecentDownloads []models.DownloadRecord `json:"recent_downloads,omitempty"`

	SuccessfulDownloadsAllRuns int64 `json:"successful_downloads_all_runs"`
}

// ServerOptions wires the data sources exposed over HTTP.
type ServerOptions struct {
	ListenAddr string
	Collector  *Collector
	Stats      func() models.RunStats
	Indices    func() []models.IndexRecord
	History    HistoryReader
}

// Server exposes /metrics, /healthz and /status.
type Server struct {
	opts       ServerOptions
	router     *mux.Router
	httpServer *http.Server
	logger     zerolog.Logger
	now        func() time.Time
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// NewServer builds the router. Nothing listens until Start.
func NewServer(opts ServerOptions, logger zerolog.Logger) (*Server, error) {
	if opts.Collector == nil {
		return nil, errorwrapper.NewValidationError("collector", "", "metrics collector is required")
	}
	if opts.Stats == nil {
		return nil, errorwrapper.NewValidationError("stats", "", "stats provider is required")
	}

	s := &Server{
		opts:   opts,
		logger: logger.With().Str("component", "MetricsServer").Logger(),
		now:    time.Now,
	}

	router := mux.NewRouter()
	router.Handle("/metrics", opts.Collector.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.withErrorHandle(s.handleHealth)).Methods(http.MethodGet)
	router.HandleFunc("/status", s.withErrorHandle(s.handleStatus)).Methods(http.MethodGet)
	s.router = router

	s.httpServer = &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on ListenAddr and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to listen on "+s.opts.ListenAddr)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("Metrics server listening")
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errorwrapper.WrapError(err, "metrics server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("Metrics server shutdown incomplete")
		return errorwrapper.WrapError(err, "failed to shut down metrics server")
	}
	s.logger.Info().Msg("Metrics server stopped")
	return nil
}

func (s *Server) withErrorHandle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte("ok"))
	return err
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) error {
	stats := s.opts.Stats()
	resp := StatusResponse{
		Stats:         stats,
		UptimeSeconds: int64(stats.Runtime(s.now()).Seconds()),
		Resources:     GetResourceUsage(0),
	}
	if s.opts.Indices != nil {
		resp.Indices = s.opts.Indices()
	}

	if s.opts.History != nil {
		records, err := s.opts.History.RecentDownloads(r.Context(), recentDownloadsLimit)
		if err != nil {
			return errorwrapper.WrapError(err, "failed to read download history")
		}
		resp.RecentDownloads = records

		count, err := s.opts.History.CountSuccessful(r.Context())
		if err != nil {
			return errorwrapper.WrapError(err, "failed to count downloads")
		}
		resp.SuccessfulDownloadsAllRuns = count
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to encode status")
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(body)
	return err
}
