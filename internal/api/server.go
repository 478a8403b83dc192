// Package api is the HTTP host for the trial engines: it renders
// snapshots and forwards the start/respond/reset commands, nothing
// more.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/perceptlab/brain-trainer-go/internal/games"
)

// Server handles HTTP requests.
type Server struct {
	sessions  *SessionManager
	logger    *log.Logger
	upgrader  websocket.Upgrader
	startTime time.Time
}

// NewServer creates a new API server.
func NewServer() *Server {
	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("server_init games_available=%d", len(games.List()))

	return &Server{
		sessions: NewSessionManager(),
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The host UI is same-machine; the API binds to localhost.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// The watch stream stays open indefinitely, so it sits outside
		// the request timeout.
		r.Get("/sessions/{sessionID}/watch", s.handleWatch)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/games", s.handleListGames)
			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/{sessionID}", s.handleGetSession)
			r.Post("/sessions/{sessionID}/start", s.handleStart)
			r.Post("/sessions/{sessionID}/respond", s.handleRespond)
			r.Post("/sessions/{sessionID}/reset", s.handleReset)
			r.Post("/sessions/{sessionID}/share", s.handleShare)
			r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// apiError is the structured error envelope.
type apiError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	errTypeValidation = "validation"
	errTypeNotFound   = "not_found"
	errTypeInternal   = "internal"
)

// writeError writes a structured error response and logs it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	requestID := middleware.GetReqID(r.Context())
	s.logger.Printf("error_occurred type=%s status=%d request_id=%s path=%s message=%q",
		errType, status, requestID, r.URL.Path, message)

	s.writeJSON(w, status, apiError{
		Type:      errType,
		Message:   message,
		RequestID: requestID,
	})
}

// recoverer converts panics into structured 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				requestID := middleware.GetReqID(r.Context())
				s.logger.Printf("panic_recovered request_id=%s path=%s panic=%v", requestID, r.URL.Path, rvr)
				s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, fmt.Sprintf("%v", rvr))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
