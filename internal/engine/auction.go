// internal/engine/auction.go
package engine

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/models"
)

// StartAuction opens bidding on an unowned property. At most one auction
// runs per session at a time.
func (s *Session) StartAuction(userID uuid.UUID, position int, startingPrice int64) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, state, err := s.requireProperty(userID, position)
	if err != nil {
		return nil, err
	}
	if state.OwnerSeat != nil {
		return nil, ErrAlreadyOwned
	}
	if s.Auction != nil && s.Auction.Status == models.AuctionActive {
		return nil, ErrAuctionInProgress
	}
	if startingPrice < 0 {
		return nil, ErrInvalidAmount
	}

	a := &models.Auction{
		ID:            uuid.New(),
		Position:      position,
		Status:        models.AuctionActive,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		StartedAt:     s.Now(),
	}
	s.Auction = a

	out := s.copyAuction()
	eff := models.AuctionEffect{AuctionID: a.ID, Position: position, Price: startingPrice}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionAuctionStart, Payload: eff, TargetTile: &position, Amount: startingPrice, Succeeded: true})
	s.fire(Event{Type: EventAuctionStarted, Seat: seatRef(p.SeatIndex), Payload: out})
	return out, nil
}

// copyAuction returns a detached copy of the session's auction, safe to read
// and serialize after the lock is released. Assumes lock is held.
func (s *Session) copyAuction() *models.Auction {
	a := *s.Auction
	a.Bids = append([]models.Bid(nil), s.Auction.Bids...)
	if s.Auction.HighestSeat != nil {
		seat := *s.Auction.HighestSeat
		a.HighestSeat = &seat
	}
	if s.Auction.EndedAt != nil {
		at := *s.Auction.EndedAt
		a.EndedAt = &at
	}
	return &a
}

// PlaceBid records a bid on the running auction. A bid must strictly exceed
// both the starting price and the current high bid, and the bidder must be
// able to cover it at bid time.
func (s *Session) PlaceBid(userID uuid.UUID, auctionID uuid.UUID, amount int64) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != models.StatusActive {
		return nil, ErrInvalidState
	}
	a := s.Auction
	if a == nil {
		return nil, ErrNoAuction
	}
	if a.ID != auctionID {
		return nil, ErrWrongGame
	}
	if a.Status != models.AuctionActive {
		return nil, ErrAuctionNotActive
	}
	p := s.seatedBy(userID)
	if p == nil || !p.IsActive {
		return nil, ErrNotSeated
	}
	floor := a.StartingPrice
	if a.HighestSeat != nil && a.CurrentPrice > floor {
		floor = a.CurrentPrice
	}
	if amount <= floor {
		return nil, ErrBidTooLow
	}
	if p.Cash < amount {
		return nil, ErrInsufficientFunds
	}

	seat := p.SeatIndex
	a.CurrentPrice = amount
	a.HighestSeat = &seat
	a.Bids = append(a.Bids, models.Bid{Seat: seat, Amount: amount, PlacedAt: s.Now()})

	eff := models.AuctionEffect{AuctionID: a.ID, Position: a.Position, Price: amount, BidderSeat: &seat}
	s.record(models.ActionRecord{Seat: seat, Type: models.ActionBid, Payload: eff, TargetTile: &a.Position, Amount: amount, Succeeded: true})
	s.fire(Event{Type: EventBidPlaced, Seat: &seat, Payload: eff})
	return s.copyAuction(), nil
}

// EndAuction closes bidding and settles with the highest bidder. Settlement
// is skipped, with the auction still ending, when the winner can no longer
// pay, is no longer active, or the tile gained an owner meanwhile. Ending an
// already ended auction is a no-op.
func (s *Session) EndAuction(userID uuid.UUID, auctionID uuid.UUID) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.Auction
	if a == nil || a.ID != auctionID {
		return nil, ErrNoAuction
	}
	if a.Status != models.AuctionActive {
		return s.copyAuction(), nil
	}
	if p := s.seatedBy(userID); p == nil {
		return nil, ErrNotSeated
	}

	a.Status = models.AuctionEnded
	now := s.Now()
	a.EndedAt = &now

	settled := false
	if a.HighestSeat != nil {
		winner := s.playerAtSeat(*a.HighestSeat)
		state := &s.Tiles[a.Position]
		if winner != nil && winner.IsActive && winner.Cash >= a.CurrentPrice && state.OwnerSeat == nil {
			winner.Cash -= a.CurrentPrice
			seat := winner.SeatIndex
			state.OwnerSeat = &seat
			settled = true
		}
	}

	eff := models.AuctionEffect{AuctionID: a.ID, Position: a.Position, Price: a.CurrentPrice, BidderSeat: a.HighestSeat, Settled: settled}
	s.record(models.ActionRecord{Seat: -1, Type: models.ActionAuctionEnd, Payload: eff, TargetTile: &a.Position, Amount: a.CurrentPrice, Succeeded: settled})
	s.fire(Event{Type: EventAuctionEnded, Seat: a.HighestSeat, Payload: eff})
	log.WithFields(log.Fields{"session": s.PublicID, "auction": a.ID, "settled": settled}).Debug("auction ended")
	return s.copyAuction(), nil
}

// CancelAuction aborts a running auction without a sale. Only the session
// owner or the current turn holder may cancel.
func (s *Session) CancelAuction(userID uuid.UUID, auctionID uuid.UUID) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.Auction
	if a == nil || a.ID != auctionID {
		return nil, ErrNoAuction
	}
	if a.Status != models.AuctionActive {
		return nil, ErrAuctionNotActive
	}
	p := s.seatedBy(userID)
	if p == nil {
		return nil, ErrNotSeated
	}
	isTurnHolder := s.Turn != nil && !s.Turn.Complete && s.Turn.Seat == p.SeatIndex
	if p.UserID != s.OwnerID && !isTurnHolder {
		return nil, ErrPermission
	}

	a.Status = models.AuctionCancelled
	now := s.Now()
	a.EndedAt = &now

	eff := models.AuctionEffect{AuctionID: a.ID, Position: a.Position, Price: a.CurrentPrice, BidderSeat: a.HighestSeat}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionAuctionEnd, Payload: eff, TargetTile: &a.Position, Succeeded: false})
	s.fire(Event{Type: EventAuctionEnded, Seat: seatRef(p.SeatIndex), Payload: eff})
	return s.copyAuction(), nil
}
