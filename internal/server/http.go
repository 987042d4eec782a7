package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dolphinbot/dolphin/internal/infra/line"
	"github.com/dolphinbot/dolphin/internal/observability"
	"github.com/dolphinbot/dolphin/internal/service"
)

// maxBodyBytes caps webhook request bodies
const maxBodyBytes = 1 << 20

// EventHandler processes parsed webhook events
type EventHandler interface {
	HandleEvents(ctx context.Context, events []line.Event) []service.EventResult
}

// Options configures the HTTP server
type Options struct {
	Addr                      string
	ChannelSecret             string
	SkipSignatureVerification bool
	Version                   string
}

// Server receives LINE webhooks over HTTP
type Server struct {
	handler EventHandler
	opts    Options

	server *http.Server
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// NewServer creates a new webhook server
func NewServer(handler EventHandler, opts Options) *Server {
	return &Server{
		handler: handler,
		opts:    opts,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/debug", s.handleDebug)

	return chainMiddlewares(mux, withLogging, withRequestID)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	observability.Logger().Info("Starting HTTP server", "addr", s.opts.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the HTTP server down
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeHealth(w)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeHealth(w)
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log := observability.LoggerFromContext(r.Context())

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if !s.opts.SkipSignatureVerification {
		signature := r.Header.Get(line.SignatureHeader)
		if signature == "" {
			log.Warn("Missing signature header")
			http.Error(w, "missing signature", http.StatusUnauthorized)
			return
		}
		if !line.VerifySignature(body, signature, s.opts.ChannelSecret) {
			log.Warn("Invalid signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var webhook line.Webhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		log.Warn("Failed to parse webhook body", "error", err)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	log.Info("Webhook received", "events", len(webhook.Events))

	// Processing runs to completion even if the platform drops the connection
	ctx := context.WithoutCancel(r.Context())
	s.handler.HandleEvents(ctx, webhook.Events)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log := observability.LoggerFromContext(r.Context())

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	log.Debug("Debug payload", "body", string(body))

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("Debug payload is not JSON", "error", err)
		http.Error(w, "unprocessable JSON", http.StatusUnprocessableEntity)
		return
	}

	s.writeJSON(w, map[string]interface{}{"received": payload})
}

// readBody reads the request body up to maxBodyBytes, answering 413 when it is larger
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *Server) writeHealth(w http.ResponseWriter) {
	s.writeJSON(w, HealthResponse{Status: "ok", Version: s.opts.Version})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
