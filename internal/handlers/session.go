// internal/handlers/session.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/brokeio/brokeio/internal/models"
	"github.com/brokeio/brokeio/internal/registry"
)

// ListBoardsHandler returns the enabled board catalog.
func (s *Server) ListBoardsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Registry.Boards())
}

type createSessionRequest struct {
	BoardID     uuid.UUID          `json:"board_id"`
	Name        string             `json:"name"`
	Mode        models.SessionMode `json:"mode"`
	MaxPlayers  int                `json:"max_players"`
	DisplayName string             `json:"display_name"`
}

// CreateSessionHandler creates a lobby session with the caller seated as
// owner.
func (s *Server) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := ensureGuest(w, r)
	if err != nil {
		http.Error(w, "auth failure", http.StatusInternalServerError)
		return
	}
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "Guest"
	}

	sess, err := s.Registry.CreateSession(r.Context(), userID, registry.CreateParams{
		BoardID:     req.BoardID,
		Name:        req.Name,
		Mode:        req.Mode,
		MaxPlayers:  req.MaxPlayers,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// ListSessionsHandler returns joinable public lobbies.
func (s *Server) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := ensureGuest(w, r); err != nil {
		http.Error(w, "auth failure", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Registry.List())
}

// StateHandler returns a full snapshot of the session.
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// ActionsHandler returns the action log from an optional ?from= index.
func (s *Server) ActionsHandler(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.session(w, r)
	if !ok {
		return
	}
	from, _ := strconv.Atoi(r.URL.Query().Get("from"))
	writeJSON(w, http.StatusOK, sess.Actions(from))
}

type joinRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) JoinHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := ensureGuest(w, r)
	if err != nil {
		http.Error(w, "auth failure", http.StatusInternalServerError)
		return
	}
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "Guest"
	}
	sess, seat, err := s.Registry.Join(r.PathValue("id"), userID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": sess.Snapshot(),
		"seat":    seat,
	})
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req readyRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := sess.SetReady(userID, req.Ready); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": req.Ready})
}

func (s *Server) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := ensureGuest(w, r)
	if err != nil {
		http.Error(w, "auth failure", http.StatusInternalServerError)
		return
	}
	sess, err := s.Registry.Start(r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Leave(userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) PauseHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Pause(userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusPaused)})
}

func (s *Server) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Resume(userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusActive)})
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *Server) ChatHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil || req.Text == "" {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := sess.SendChat(userID, req.Text); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
