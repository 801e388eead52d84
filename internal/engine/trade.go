// internal/engine/trade.go
package engine

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/models"
)

// ProposeTrade opens a trade from userID offering terms in exchange for the
// requested terms. A nil counterparty makes the offer open to any active
// player. The proposal is validated loosely on creation; legs are only
// enforced atomically at acceptance time.
func (s *Session) ProposeTrade(userID uuid.UUID, to *int, offer, request models.TradeTerms) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != models.StatusActive {
		return nil, ErrInvalidState
	}
	p := s.seatedBy(userID)
	if p == nil || !p.IsActive {
		return nil, ErrNotSeated
	}
	if offer.Cash < 0 || request.Cash < 0 {
		return nil, ErrInvalidTrade
	}
	if to != nil {
		cp := s.playerAtSeat(*to)
		if cp == nil || !cp.IsActive || cp.SeatIndex == p.SeatIndex {
			return nil, ErrInvalidTrade
		}
	}
	for _, pos := range append(append([]int{}, offer.Tiles...), request.Tiles...) {
		if c := s.Board.ContentAt(pos); c == nil || c.Type != models.TileProperty {
			return nil, ErrInvalidTrade
		}
	}

	t := &models.Trade{
		ID:            uuid.New(),
		OfferedBySeat: p.SeatIndex,
		OfferedToSeat: to,
		Offer:         offer,
		Request:       request,
		Status:        models.TradePending,
		CreatedAt:     s.Now(),
	}
	s.Trades[t.ID] = t

	out := copyTrade(t)
	eff := models.TradeEffect{TradeID: t.ID, Status: t.Status}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionTradeProposed, Payload: eff, TargetSeat: to, Succeeded: true})
	s.fire(Event{Type: EventTradeProposed, Seat: seatRef(p.SeatIndex), Payload: out})
	return out, nil
}

// copyTrade returns a detached copy of t, safe to read and serialize after
// the lock is released.
func copyTrade(t *models.Trade) *models.Trade {
	c := *t
	c.Offer.Tiles = append([]int(nil), t.Offer.Tiles...)
	c.Request.Tiles = append([]int(nil), t.Request.Tiles...)
	if t.OfferedToSeat != nil {
		seat := *t.OfferedToSeat
		c.OfferedToSeat = &seat
	}
	if t.ResolvedAt != nil {
		at := *t.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

// RespondTrade accepts or rejects a pending trade as userID. Acceptance
// validates every leg under the lock and applies the whole exchange
// atomically; if any leg is invalid the trade is cancelled and no state
// changes.
func (s *Session) RespondTrade(userID uuid.UUID, tradeID uuid.UUID, accept bool) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != models.StatusActive {
		return nil, ErrInvalidState
	}
	t, ok := s.Trades[tradeID]
	if !ok {
		return nil, ErrTradeNotFound
	}
	if t.Status != models.TradePending {
		return nil, ErrTradeNotPending
	}
	p := s.seatedBy(userID)
	if p == nil || !p.IsActive {
		return nil, ErrNotSeated
	}
	if p.SeatIndex == t.OfferedBySeat {
		return nil, ErrPermission
	}
	if t.OfferedToSeat != nil && *t.OfferedToSeat != p.SeatIndex {
		return nil, ErrPermission
	}

	if !accept {
		s.resolveTrade(t, models.TradeRejected)
		return copyTrade(t), nil
	}

	proposer := s.playerAtSeat(t.OfferedBySeat)
	if proposer == nil || !proposer.IsActive {
		s.resolveTrade(t, models.TradeCancelled)
		return copyTrade(t), ErrInvalidTrade
	}
	if err := s.checkTradeLegs(proposer, p, t); err != nil {
		s.resolveTrade(t, models.TradeCancelled)
		return copyTrade(t), err
	}

	proposer.Cash += t.Request.Cash - t.Offer.Cash
	p.Cash += t.Offer.Cash - t.Request.Cash
	for _, pos := range t.Offer.Tiles {
		seat := p.SeatIndex
		s.Tiles[pos].OwnerSeat = &seat
	}
	for _, pos := range t.Request.Tiles {
		seat := proposer.SeatIndex
		s.Tiles[pos].OwnerSeat = &seat
	}
	s.resolveTrade(t, models.TradeCompleted)
	log.WithFields(log.Fields{"session": s.PublicID, "trade": t.ID, "by": t.OfferedBySeat, "with": p.SeatIndex}).Debug("trade completed")
	return copyTrade(t), nil
}

// CancelTrade withdraws a pending trade. Only the proposer may cancel.
func (s *Session) CancelTrade(userID uuid.UUID, tradeID uuid.UUID) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.Trades[tradeID]
	if !ok {
		return nil, ErrTradeNotFound
	}
	if t.Status != models.TradePending {
		return nil, ErrTradeNotPending
	}
	p := s.seatedBy(userID)
	if p == nil {
		return nil, ErrNotSeated
	}
	if p.SeatIndex != t.OfferedBySeat {
		return nil, ErrPermission
	}
	s.resolveTrade(t, models.TradeCancelled)
	return copyTrade(t), nil
}

// checkTradeLegs verifies ownership, development and cash for both sides of
// the exchange without mutating anything. Assumes lock is held.
func (s *Session) checkTradeLegs(proposer, acceptor *models.SeatedPlayer, t *models.Trade) error {
	if proposer.Cash < t.Offer.Cash || acceptor.Cash < t.Request.Cash {
		return ErrInvalidTrade
	}
	check := func(tiles []int, seat int) error {
		for _, pos := range tiles {
			st := &s.Tiles[pos]
			if st.OwnerSeat == nil || *st.OwnerSeat != seat {
				return ErrInvalidTrade
			}
			if st.Level > 0 {
				return ErrDevelopedTile
			}
		}
		return nil
	}
	if err := check(t.Offer.Tiles, proposer.SeatIndex); err != nil {
		return err
	}
	return check(t.Request.Tiles, acceptor.SeatIndex)
}

// resolveTrade moves a pending trade to a terminal status and records it.
// Assumes lock is held.
func (s *Session) resolveTrade(t *models.Trade, status models.TradeStatus) {
	t.Status = status
	now := s.Now()
	t.ResolvedAt = &now

	eff := models.TradeEffect{TradeID: t.ID, Status: status}
	s.record(models.ActionRecord{Seat: t.OfferedBySeat, Type: models.ActionTradeResolved, Payload: eff, TargetSeat: t.OfferedToSeat, Succeeded: status == models.TradeCompleted})
	s.fire(Event{Type: EventTradeResolved, Seat: seatRef(t.OfferedBySeat), Payload: eff})
}
