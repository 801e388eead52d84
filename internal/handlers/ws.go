// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/middleware"
)

// wsInbound is the small command surface accepted over the socket. All
// state-changing play goes through the HTTP endpoints; the socket only
// carries chat upstream and the event feed downstream.
type wsInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// SessionWSHandler upgrades to a WebSocket and streams session events until
// the client disconnects or the session finishes.
func (s *Server) SessionWSHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := ensureGuest(w, r)
	if err != nil {
		http.Error(w, "auth failure", http.StatusInternalServerError)
		return
	}
	sess, err := s.Registry.Resolve(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"brokeio"},
		OriginPatterns: []string{"*"}, // tighten in production deployments
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != "brokeio" {
		c.Close(BadSubprotocolError, "client must speak the brokeio subprotocol")
		return
	}

	h := s.hubFor(sess.ID)
	if h == nil {
		c.Close(InvalidSessionIDError, "session event stream unavailable")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := h.subscribe()
	defer h.unsubscribe(sub)

	go s.writePump(ctx, c, sub)
	err = s.readPump(ctx, c, sess, userID)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
	c.Close(websocket.StatusNormalClosure, "bye")
}

// writePump forwards hub frames to the socket until the subscriber channel
// closes or the context is done.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, sub *subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-sub.out:
			if !ok {
				c.Close(SessionFinishedClosure, "session event stream closed")
				return
			}
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames. Only chat is accepted; anything else is
// ignored so a misbehaving client cannot mutate state over the socket.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, sess *engine.Session, userID uuid.UUID) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		var in wsInbound
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}
		if in.Type == "chat" && in.Text != "" {
			if err := sess.SendChat(userID, in.Text); err != nil {
				s.Logger.WithError(err).Debug("ws chat rejected")
			}
		}
	}
}
