// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/registry"
)

// Server binds the session registry to HTTP and WebSocket transport. It owns
// one hub per live session, fanning engine events out to subscribed sockets.
type Server struct {
	Registry *registry.Registry
	Logger   *logrus.Logger

	mu   sync.Mutex
	hubs map[uuid.UUID]*hub
}

func NewServer(reg *registry.Registry, logger *logrus.Logger) *Server {
	s := &Server{
		Registry: reg,
		Logger:   logger,
		hubs:     make(map[uuid.UUID]*hub),
	}
	reg.OnCreate = s.attach
	return s
}

// attach installs the broadcast hook on a fresh session before it becomes
// visible. Events fire under the session lock, so the hub sends must never
// block; slow subscribers drop frames.
func (s *Server) attach(sess *engine.Session) {
	h := newHub()
	s.mu.Lock()
	s.hubs[sess.ID] = h
	s.mu.Unlock()

	sessionID := sess.ID
	sess.BroadcastFn = func(ev engine.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			s.Logger.WithError(err).Warn("event marshal failed")
			return
		}
		h.broadcast(data)
		if ev.Type == engine.EventSessionFinished {
			go s.closeHub(sessionID)
		}
	}
}

func (s *Server) hubFor(sessionID uuid.UUID) *hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hubs[sessionID]
}

func (s *Server) closeHub(sessionID uuid.UUID) {
	s.mu.Lock()
	h := s.hubs[sessionID]
	delete(s.hubs, sessionID)
	s.mu.Unlock()
	if h != nil {
		h.closeAll()
	}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /boards", s.ListBoardsHandler)
	mux.HandleFunc("POST /sessions", s.CreateSessionHandler)
	mux.HandleFunc("GET /sessions", s.ListSessionsHandler)

	mux.HandleFunc("GET /session/{id}", s.StateHandler)
	mux.HandleFunc("GET /session/{id}/actions", s.ActionsHandler)
	mux.HandleFunc("POST /session/{id}/join", s.JoinHandler)
	mux.HandleFunc("POST /session/{id}/ready", s.ReadyHandler)
	mux.HandleFunc("POST /session/{id}/start", s.StartHandler)
	mux.HandleFunc("POST /session/{id}/leave", s.LeaveHandler)
	mux.HandleFunc("POST /session/{id}/pause", s.PauseHandler)
	mux.HandleFunc("POST /session/{id}/resume", s.ResumeHandler)
	mux.HandleFunc("POST /session/{id}/chat", s.ChatHandler)

	mux.HandleFunc("POST /session/{id}/roll", s.RollHandler)
	mux.HandleFunc("POST /session/{id}/end-turn", s.EndTurnHandler)
	mux.HandleFunc("POST /session/{id}/buy", s.BuyHandler)
	mux.HandleFunc("POST /session/{id}/mortgage", s.MortgageHandler)
	mux.HandleFunc("POST /session/{id}/unmortgage", s.UnmortgageHandler)
	mux.HandleFunc("POST /session/{id}/develop", s.DevelopHandler)
	mux.HandleFunc("POST /session/{id}/transfer", s.TransferHandler)

	mux.HandleFunc("POST /session/{id}/trade", s.ProposeTradeHandler)
	mux.HandleFunc("POST /session/{id}/trade/{tradeID}/respond", s.RespondTradeHandler)
	mux.HandleFunc("POST /session/{id}/trade/{tradeID}/cancel", s.CancelTradeHandler)

	mux.HandleFunc("POST /session/{id}/auction", s.StartAuctionHandler)
	mux.HandleFunc("POST /session/{id}/auction/{auctionID}/bid", s.PlaceBidHandler)
	mux.HandleFunc("POST /session/{id}/auction/{auctionID}/end", s.EndAuctionHandler)
	mux.HandleFunc("POST /session/{id}/auction/{auctionID}/cancel", s.CancelAuctionHandler)

	mux.HandleFunc("GET /session/{id}/ws", s.SessionWSHandler)

	return mux
}

// session resolves the {id} path value and authenticates the caller.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*engine.Session, uuid.UUID, bool) {
	userID, err := ensureGuest(w, r)
	if err != nil {
		http.Error(w, "auth failure", http.StatusInternalServerError)
		return nil, uuid.Nil, false
	}
	sess, err := s.Registry.Resolve(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, uuid.Nil, false
	}
	return sess, userID, true
}
