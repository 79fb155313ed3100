package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/pipeline"
	"github.com/nao1215/phishscan/internal/reputation"
)

// Defaults used when no option overrides them.
const (
	DefaultMaxRequestBytes = 64 << 10
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 45 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCheckTimeout    = 30 * time.Second
)

// Recorder persists a finished check. Errors are logged and never reach
// the client.
type Recorder func(ctx context.Context, report *model.CheckReport) error

// Server serves predictions over HTTP.
type Server struct {
	extractor  *feature.Extractor
	classifier classifier.Classifier
	reputation reputation.Service
	recorder   Recorder
	logger     *slog.Logger

	maxRequestBytes int64
	checkTimeout    time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithExtractor sets the feature extractor. nil keeps the default.
func WithExtractor(e *feature.Extractor) Option {
	return func(s *Server) {
		s.extractor = e
	}
}

// WithReputation enables reputation lookups for requests that ask for
// them with reputation=true.
func WithReputation(service reputation.Service) Option {
	return func(s *Server) {
		s.reputation = service
	}
}

// WithRecorder stores every successful check through r.
func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithMaxRequestBytes limits the size of request bodies.
func WithMaxRequestBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRequestBytes = n
		}
	}
}

// WithCheckTimeout bounds a single check.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// WithTimeouts sets the read, write and shutdown timeouts of the
// underlying http.Server. Non-positive values keep the defaults.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// New creates a Server that classifies with c.
func New(c classifier.Classifier, opts ...Option) *Server {
	s := &Server{
		classifier:      c,
		maxRequestBytes: DefaultMaxRequestBytes,
		checkTimeout:    DefaultCheckTimeout,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("GET /schema", s.handleSchema)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRecovery(s.withAccessLog(mux))
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts
// down gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// predictRequest is the JSON body accepted by /predict.
type predictRequest struct {
	URL        string `json:"url"`
	InputData  string `json:"input_data"`
	Reputation bool   `json:"reputation"`
}

// predictResponse is the success body of /predict.
type predictResponse struct {
	Prediction model.Label         `json:"prediction"`
	Score      float64             `json:"score"`
	Report     *model.SimpleReport `json:"report,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestBytes)
	req, err := parsePredictRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgTooLarge})
			return
		}
		s.logger.Debug("rejected predict request", "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoInput})
		return
	}

	report, err := s.check(r.Context(), req)
	if err != nil {
		s.logger.Error("prediction failed", "url", req.URL, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgProcessing})
		return
	}

	if s.recorder != nil {
		if err := s.recorder(r.Context(), report); err != nil {
			s.logger.Warn("failed to record verdict", "url", report.URL, "error", err)
		}
	}

	resp := predictResponse{Prediction: report.Label, Score: report.Score}
	if req.Reputation {
		resp.Report = model.NewSimpleReport(report)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// check runs one check and fails when no verdict was produced.
func (s *Server) check(ctx context.Context, req predictRequest) (*model.CheckReport, error) {
	var service reputation.Service
	if req.Reputation {
		service = s.reputation
	}

	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	p := pipeline.NewCheckPipeline(s.extractor, s.classifier, service, pipeline.WithLogger(s.logger))
	report, err := p.Run(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if !report.Label.Known() {
		if report.Error != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoVerdict, report.Error)
		}
		return nil, ErrNoVerdict
	}
	return report, nil
}

// parsePredictRequest reads the URL from a JSON body or from the
// input_data form field.
func parsePredictRequest(r *http.Request) (predictRequest, error) {
	var req predictRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("failed to decode request body: %w", err)
		}
		if req.URL == "" {
			req.URL = req.InputData
		}
	} else {
		if err := parseForm(r, mediaType); err != nil {
			return req, err
		}
		req.URL = r.PostForm.Get("input_data")
		req.Reputation = parseBool(r.PostForm.Get("reputation"))
	}

	if !req.Reputation {
		req.Reputation = parseBool(r.URL.Query().Get("reputation"))
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return req, ErrNoInput
	}
	return req, nil
}

func parseForm(r *http.Request, mediaType string) error {
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(DefaultMaxRequestBytes); err != nil {
			return fmt.Errorf("failed to parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

type schemaResponse struct {
	Features []string `json:"features"`
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, schemaResponse{Features: feature.Schema()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", v)
				s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgProcessing})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
