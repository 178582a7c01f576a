// Package server exposes the diagnostic agent over HTTP: a JSON chat
// endpoint, a step-streaming websocket, and the usual health, info, and
// metrics surfaces.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kubesleuth/kubesleuth/internal/agent"
	"github.com/kubesleuth/kubesleuth/internal/tools"
	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// Diagnoser is the agent surface the server depends on.
type Diagnoser interface {
	Diagnose(ctx context.Context, message, namespace string) (*agent.Result, error)
	DiagnoseStream(ctx context.Context, message, namespace string, onStep func(models.ReasoningStep)) (*agent.Result, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	Agent          Diagnoser
	Registry       *tools.Registry
	ModelName      string
	Version        string
	Logger         *zap.Logger
}

// Server is the HTTP front end for the diagnostic agent.
type Server struct {
	opts       Options
	logger     *zap.Logger
	httpServer *http.Server
}

// New builds the server. A nil Agent is allowed; chat endpoints answer 503
// until one is set, so the service can come up and report unhealthy rather
// than crash on missing credentials.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	return &Server{opts: opts, logger: opts.Logger}
}

// Handler assembles the full route table with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleInfo)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/ws/chat", s.handleChatWS)
	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return s.logRequests(c.Handler(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.opts.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var toolNames []string
	if s.opts.Registry != nil {
		toolNames = s.opts.Registry.List()
	}
	writeJSON(w, http.StatusOK, models.InfoResponse{
		Name:    "kubesleuth",
		Version: s.opts.Version,
		Model:   s.opts.ModelName,
		Pattern: "ReAct (Reasoning + Acting)",
		Tools:   toolNames,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.opts.Agent != nil
	status := "healthy"
	if !ready {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:     status,
		AgentReady: ready,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.opts.Agent == nil {
		writeError(w, http.StatusServiceUnavailable, "agent not initialized: set GROQ_API_KEY")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Namespace == "" {
		req.Namespace = "default"
	}

	result, err := s.opts.Agent.Diagnose(r.Context(), req.Message, req.Namespace)
	if err != nil {
		// Loop-level failures are model transport problems; tool failures
		// never surface here.
		s.logger.Error("diagnosis failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:       result.Answer,
		ToolsUsed:      result.ToolsUsed,
		ReasoningSteps: result.Steps,
	})
}

// logRequests tags each request with an id and logs its outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
