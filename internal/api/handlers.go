package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/perceptlab/brain-trainer-go/internal/engine"
	"github.com/perceptlab/brain-trainer-go/internal/games"
	"github.com/perceptlab/brain-trainer-go/internal/share"
)

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"sessions":       s.sessions.Count(),
	})
}

// handleListGames lists every registered game with its metadata.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"games": games.List()})
}

type createSessionRequest struct {
	Game  string `json:"game"`
	Pairs int    `json:"pairs,omitempty"`
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// handleCreateSession mounts a game and returns the new session in its
// idle state. Play begins with an explicit start.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid JSON body")
		return
	}
	if req.Game == "" {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "game is required")
		return
	}

	sess, err := s.sessions.Create(req.Game, req.Pairs)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, err.Error())
		return
	}

	s.logger.Printf("session_created id=%s game=%s", sess.id, req.Game)
	s.writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.id, Snapshot: sess.eng.Snapshot()})
}

// getSession resolves the session from the URL, writing a 404 on miss.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, errTypeNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

// handleGetSession returns the current snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Snapshot: sess.eng.Snapshot()})
}

// handleStart begins a run. Valid from idle or after a completed run;
// anything else is left untouched and the current snapshot is returned.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	snap, err := sess.eng.Start()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Snapshot: snap})
}

// handleRespond submits a response against the outstanding stimulus.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	var resp games.Response
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid JSON body")
		return
	}

	snap := sess.eng.Respond(resp)
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Snapshot: snap})
}

// handleReset abandons the run and returns the session to idle.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Snapshot: sess.eng.Reset()})
}

type shareRequest struct {
	URL string `json:"url"`
}

type shareResponse struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Fallback string `json:"fallback,omitempty"`
}

// handleShare formats the session's result into share text. The HTTP
// host has no native share sheet, so the response always carries the
// copy-link fallback alongside the formatted message.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "invalid JSON body")
		return
	}
	if req.URL == "" {
		s.writeError(w, r, http.StatusBadRequest, errTypeValidation, "url is required")
		return
	}

	snap := sess.eng.Snapshot()
	title, text := share.Text(snap)
	fallback := share.Deliver(r.Context(), nil, snap, req.URL)
	s.writeJSON(w, http.StatusOK, shareResponse{Title: title, Text: text, Fallback: fallback})
}

// handleDeleteSession unmounts the session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	s.sessions.Delete(sess.id)
	s.logger.Printf("session_deleted id=%s", sess.id)
	w.WriteHeader(http.StatusNoContent)
}
