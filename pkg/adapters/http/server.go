package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/checker"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/sanitize"
	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checker is what the server needs from the checking core.
type Checker interface {
	ports.Checker
	Signatures() ([]string, error)
}

// Server exposes a Checker over HTTP.
type Server struct {
	Checker  Checker
	Sink     ports.ReportSink
	Streams  *StreamManager
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the server built by NewHandler.
type Option func(*Server)

// WithSink serves stored reports under /v1/reports.
func WithSink(sink ports.ReportSink) Option {
	return func(s *Server) {
		s.Sink = sink
	}
}

// WithStreams serves live reports under /v1/events. The manager's Hooks must
// be attached to the checker.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithGatherer serves metrics from g under /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the checker.
func NewHandler(c Checker, opts ...Option) http.Handler {
	server := &Server{
		Checker: c,
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", server.Validate)
		r.Post("/check", server.Check)
		r.Get("/signatures", server.ListSignatures)
		if server.Sink != nil {
			r.Get("/reports", server.ListReports)
			r.Get("/reports/{id}", server.GetReport)
		}
		if server.Streams != nil {
			r.Get("/events", server.SubscribeEvents)
		}
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ReportResponse is the body of a successful check.
type ReportResponse struct {
	OK     bool             `json:"ok"`
	Report violation.Report `json:"report"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Validate handles the POST /v1/validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, err := checker.DecodeValueRequest(doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	report, err := s.Checker.CheckValue(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ReportResponse{OK: report.OK(), Report: report})
}

// Check handles the POST /v1/check request.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, err := checker.DecodeCallRequest(doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	report, err := s.Checker.CheckCall(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ReportResponse{OK: report.OK(), Report: report})
}

// ListSignatures handles the GET /v1/signatures request.
func (s *Server) ListSignatures(w http.ResponseWriter, r *http.Request) {
	names, err := s.Checker.Signatures()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// ListReports handles the GET /v1/reports request.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		limit = n
	}
	reports, err := s.Sink.Recent(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

// GetReport handles the GET /v1/reports/{id} request.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.Sink.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "typeguard-http",
		"version": strings.TrimSpace(typeguard.Version),
	})
}

// SubscribeEvents handles the GET /v1/events request (SSE). The optional
// subject query parameter narrows the stream to one subject.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	topic := r.URL.Query().Get("subject")
	if topic == "" {
		topic = AllSubjects
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	s.Logger.Info("SSE: client subscribed", "topic", topic)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: report\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

// readBody decodes a JSON (or YAML) body with the value decoder, so integers
// stay integers.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	limit := int64(sanitize.MaxInputSize())
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		s.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	body, err := sanitize.Input(string(data))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return nil, false
	}
	doc, err := schema.ParseValue([]byte(body))
	if err != nil {
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return nil, false
	}
	return doc, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrSignatureNotFound), errors.Is(err, ports.ErrReportNotFound):
		status = http.StatusNotFound
	case checker.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Warn("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}
