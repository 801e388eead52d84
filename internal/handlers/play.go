// internal/handlers/play.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/models"
)

func (s *Server) RollHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.RollDice(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) EndTurnHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	turn, err := sess.EndTurn(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Registry.PersistTurn(sess.ID, *turn)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type tileRequest struct {
	Position int `json:"position"`
}

func (s *Server) BuyHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req tileRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	balance, err := sess.PurchaseTile(userID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (s *Server) MortgageHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req tileRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	balance, err := sess.Mortgage(userID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (s *Server) UnmortgageHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req tileRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	balance, err := sess.Unmortgage(userID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

type developRequest struct {
	Position int `json:"position"`
	Delta    int `json:"delta"`
}

func (s *Server) DevelopHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req developRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	balance, err := sess.Develop(userID, req.Position, req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

type transferRequest struct {
	From   *uuid.UUID `json:"from,omitempty"` // nil means the bank
	To     *uuid.UUID `json:"to,omitempty"`
	Amount int64      `json:"amount"`
}

// TransferHandler moves cash directly. Only the session owner may invoke the
// raw transfer surface; regular payments happen through game actions.
func (s *Server) TransferHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if userID != sess.OwnerID {
		writeError(w, engine.ErrPermission)
		return
	}
	if err := sess.Transfer(req.From, req.To, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type proposeTradeRequest struct {
	ToSeat  *int              `json:"to_seat,omitempty"`
	Offer   models.TradeTerms `json:"offer"`
	Request models.TradeTerms `json:"request"`
}

func (s *Server) ProposeTradeHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req proposeTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	trade, err := sess.ProposeTrade(userID, req.ToSeat, req.Offer, req.Request)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Registry.PersistTrade(sess.ID, *trade)
	writeJSON(w, http.StatusCreated, trade)
}

type respondTradeRequest struct {
	Accept bool `json:"accept"`
}

func (s *Server) RespondTradeHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	tradeID, err := uuid.Parse(r.PathValue("tradeID"))
	if err != nil {
		http.Error(w, "invalid trade id", http.StatusBadRequest)
		return
	}
	var req respondTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	trade, err := sess.RespondTrade(userID, tradeID, req.Accept)
	if trade != nil {
		s.Registry.PersistTrade(sess.ID, *trade)
	}
	if err != nil {
		if trade != nil {
			// acceptance failed validation; the trade carries its terminal status
			writeJSON(w, httpStatus(err), trade)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) CancelTradeHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	tradeID, err := uuid.Parse(r.PathValue("tradeID"))
	if err != nil {
		http.Error(w, "invalid trade id", http.StatusBadRequest)
		return
	}
	trade, err := sess.CancelTrade(userID, tradeID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Registry.PersistTrade(sess.ID, *trade)
	writeJSON(w, http.StatusOK, trade)
}

type startAuctionRequest struct {
	Position      int   `json:"position"`
	StartingPrice int64 `json:"starting_price"`
}

func (s *Server) StartAuctionHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	var req startAuctionRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	a, err := sess.StartAuction(userID, req.Position, req.StartingPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type bidRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	auctionID, err := uuid.Parse(r.PathValue("auctionID"))
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}
	var req bidRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	a, err := sess.PlaceBid(userID, auctionID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Registry.PersistBid(sess.ID, a.ID, a.Position, a.Bids[len(a.Bids)-1])
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) EndAuctionHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	auctionID, err := uuid.Parse(r.PathValue("auctionID"))
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}
	a, err := sess.EndAuction(userID, auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) CancelAuctionHandler(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := s.session(w, r)
	if !ok {
		return
	}
	auctionID, err := uuid.Parse(r.PathValue("auctionID"))
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}
	a, err := sess.CancelAuction(userID, auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
