// Package api exposes the classifier over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"sms-classifier/internal/models"
)

// Classifier is what the server needs from the parser
type Classifier interface {
	IsTransactionMessage(sender, body string) bool
	Classify(body, sender string) (models.ClassificationResult, bool)
	Categories() []string
}

// Config holds the API server configuration
type Config struct {
	Port string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{Port: ":8080"}
}

// Server represents the HTTP API server
type Server struct {
	config     Config
	classifier Classifier
	mux        *http.ServeMux
}

// ClassifyRequest is the body of POST /classify
type ClassifyRequest struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

// ClassifyResponse is returned by POST /classify. Result is nil when the
// message is not a transaction.
type ClassifyResponse struct {
	Transaction bool                         `json:"transaction"`
	Result      *models.ClassificationResult `json:"result,omitempty"`
}

// New creates a new API server
func New(cfg Config, classifier Classifier) *Server {
	s := &Server{
		config:     cfg,
		classifier: classifier,
		mux:        http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/classify", s.handleClassify)
	s.mux.HandleFunc("/categories", s.handleCategories)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	slog.Info("Starting server", "addr", s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": s.classifier.Categories()})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Received request", "remote", r.RemoteAddr, "path", r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ClassifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		http.Error(w, "Could not decode request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Sender) == "" || strings.TrimSpace(req.Body) == "" {
		http.Error(w, "sender and body are required", http.StatusBadRequest)
		return
	}

	resp := ClassifyResponse{}
	if s.classifier.IsTransactionMessage(req.Sender, req.Body) {
		if res, ok := s.classifier.Classify(req.Body, req.Sender); ok {
			resp.Transaction = true
			resp.Result = &res
		}
	}

	slog.Info("Classified message", "sender", req.Sender, "transaction", resp.Transaction)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
