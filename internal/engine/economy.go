// internal/engine/economy.go
package engine

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/models"
)

// Transfer moves cash between two parties. A nil party is the bank, an
// unlimited unowned sink/source. The transfer itself never fails on balance:
// a player's balance may go negative; bankruptcy is the turn machine's job.
func (s *Session) Transfer(from, to *uuid.UUID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return ErrInvalidAmount
	}
	if s.Status != models.StatusActive {
		return ErrInvalidState
	}

	var fromSeat, toSeat *int
	var payer, payee *models.SeatedPlayer
	if from != nil {
		if payer = s.seatedBy(*from); payer == nil {
			return ErrNotSeated
		}
		fromSeat = seatRef(payer.SeatIndex)
	}
	if to != nil {
		if payee = s.seatedBy(*to); payee == nil {
			return ErrNotSeated
		}
		toSeat = seatRef(payee.SeatIndex)
	}

	if payer != nil {
		payer.Cash -= amount
	}
	if payee != nil {
		payee.Cash += amount
	}

	seat := -1
	if fromSeat != nil {
		seat = *fromSeat
	}
	eff := models.TransferEffect{Amount: amount, FromSeat: fromSeat, ToSeat: toSeat}
	s.record(models.ActionRecord{Seat: seat, Type: models.ActionTransfer, Payload: eff, TargetSeat: toSeat, Amount: amount, Succeeded: true})
	return nil
}

// PurchaseTile sells an unowned property to the buyer at list price.
// Returns the buyer's updated balance.
func (s *Session) PurchaseTile(userID uuid.UUID, position int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, info, state, err := s.requireProperty(userID, position)
	if err != nil {
		return 0, err
	}
	if state.OwnerSeat != nil {
		return 0, ErrAlreadyOwned
	}
	if s.Auction != nil && s.Auction.Status == models.AuctionActive && s.Auction.Position == position {
		return 0, ErrAuctionInProgress
	}
	if p.Cash < info.Price {
		return 0, ErrInsufficientFunds
	}

	p.Cash -= info.Price
	seat := p.SeatIndex
	state.OwnerSeat = &seat

	eff := models.PurchaseEffect{Position: position, Price: info.Price, BuyerSeat: seat}
	s.record(models.ActionRecord{Seat: seat, Type: models.ActionPurchase, Payload: eff, TargetTile: &position, Amount: info.Price, Succeeded: true})
	s.fire(Event{Type: EventTilePurchased, Seat: seatRef(seat), Payload: eff})
	log.WithFields(log.Fields{"session": s.PublicID, "seat": seat, "position": position}).Debug("tile purchased")
	return p.Cash, nil
}

// Mortgage pledges an owned, undeveloped tile to the bank for its mortgage
// value.
func (s *Session) Mortgage(userID uuid.UUID, position int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, info, state, err := s.requireOwned(userID, position)
	if err != nil {
		return 0, err
	}
	if state.Mortgaged {
		return 0, ErrMortgageState
	}
	if state.Level > 0 {
		return 0, ErrDevelopedTile
	}

	state.Mortgaged = true
	p.Cash += info.MortgageValue

	eff := models.MortgageEffect{Position: position, Amount: info.MortgageValue, Mortgaged: true}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionMortgage, Payload: eff, TargetTile: &position, Amount: info.MortgageValue, Succeeded: true})
	s.fire(Event{Type: EventTileMortgaged, Seat: seatRef(p.SeatIndex), Payload: eff})
	return p.Cash, nil
}

// Unmortgage lifts a mortgage for the mortgage value plus interest.
func (s *Session) Unmortgage(userID uuid.UUID, position int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, info, state, err := s.requireOwned(userID, position)
	if err != nil {
		return 0, err
	}
	if !state.Mortgaged {
		return 0, ErrMortgageState
	}
	cost := info.MortgageValue + info.MortgageValue*UnmortgageInterestPct/100
	if p.Cash < cost {
		return 0, ErrInsufficientFunds
	}

	state.Mortgaged = false
	p.Cash -= cost

	eff := models.MortgageEffect{Position: position, Amount: cost, Mortgaged: false}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionUnmortgage, Payload: eff, TargetTile: &position, Amount: cost, Succeeded: true})
	s.fire(Event{Type: EventTileMortgaged, Seat: seatRef(p.SeatIndex), Payload: eff})
	return p.Cash, nil
}

// Develop raises or lowers the development level of an owned tile by delta.
// Building requires the full color group; selling refunds half the build
// cost per level.
func (s *Session) Develop(userID uuid.UUID, position, delta int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, info, state, err := s.requireOwned(userID, position)
	if err != nil {
		return 0, err
	}
	if delta == 0 {
		return 0, ErrDevelopRange
	}
	if state.Mortgaged {
		return 0, ErrMortgageState
	}
	newLevel := state.Level + delta
	if newLevel < 0 || newLevel > models.MaxDevelopment {
		return 0, ErrDevelopRange
	}
	if !s.ownsColorGroup(p.SeatIndex, info.ColorGroup) {
		return 0, ErrNoMonopoly
	}

	var cost int64
	if delta > 0 {
		for lvl := state.Level + 1; lvl <= newLevel; lvl++ {
			cost += s.buildCost(info, lvl)
		}
		if p.Cash < cost {
			return 0, ErrInsufficientFunds
		}
	} else {
		for lvl := state.Level; lvl > newLevel; lvl-- {
			cost -= s.buildCost(info, lvl) / 2
		}
	}

	oldLevel := state.Level
	state.Level = newLevel
	p.Cash -= cost
	if s.Turn != nil && !s.Turn.Complete && s.Turn.Seat == p.SeatIndex && s.Turn.Phase == models.PhaseAction {
		s.Turn.Phase = models.PhaseBuild
	}

	eff := models.DevelopEffect{Position: position, OldLevel: oldLevel, NewLevel: newLevel, Cost: cost}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionDevelop, Payload: eff, TargetTile: &position, Amount: cost, Succeeded: true})
	s.fire(Event{Type: EventTileDeveloped, Seat: seatRef(p.SeatIndex), Payload: eff})
	return p.Cash, nil
}

// buildCost is the price of reaching lvl from lvl-1: houses up to level 4,
// the hotel at level 5.
func (s *Session) buildCost(info *models.PropertyInfo, lvl int) int64 {
	if lvl == models.MaxDevelopment {
		return info.HotelCost
	}
	return info.HouseCost
}

// rentFor computes the rent owed on landing at position. Base rent doubles
// when the owner holds the full color group and the tile is unimproved.
// Assumes lock is held and the tile is an owned, unmortgaged property.
func (s *Session) rentFor(position int) (int64, bool) {
	info := s.Board.Positions[position].Property
	state := &s.Tiles[position]
	rent := info.Rents[state.Level]
	if state.Level == 0 && s.ownsColorGroup(*state.OwnerSeat, info.ColorGroup) {
		return rent * 2, true
	}
	return rent, false
}

// ownsColorGroup reports whether seat owns every tile in the group.
// Assumes lock is held.
func (s *Session) ownsColorGroup(seat int, group string) bool {
	for i := range s.Board.Positions {
		info := s.Board.Positions[i].Property
		if info == nil || info.ColorGroup != group {
			continue
		}
		st := &s.Tiles[i]
		if st.OwnerSeat == nil || *st.OwnerSeat != seat {
			return false
		}
	}
	return true
}

// requireProperty validates the common preconditions of economic operations:
// active session, seated active player, on-track position, property content.
// Assumes lock is held.
func (s *Session) requireProperty(userID uuid.UUID, position int) (*models.SeatedPlayer, *models.PropertyInfo, *models.TileState, error) {
	if s.Status != models.StatusActive {
		return nil, nil, nil, ErrInvalidState
	}
	p := s.seatedBy(userID)
	if p == nil || !p.IsActive {
		return nil, nil, nil, ErrNotSeated
	}
	content := s.Board.ContentAt(position)
	if content == nil {
		return nil, nil, nil, ErrInvalidPosition
	}
	if content.Type != models.TileProperty {
		return nil, nil, nil, ErrNotProperty
	}
	return p, content.Property, &s.Tiles[position], nil
}

// requireOwned additionally checks that userID owns the tile.
func (s *Session) requireOwned(userID uuid.UUID, position int) (*models.SeatedPlayer, *models.PropertyInfo, *models.TileState, error) {
	p, info, state, err := s.requireProperty(userID, position)
	if err != nil {
		return nil, nil, nil, err
	}
	if state.OwnerSeat == nil || *state.OwnerSeat != p.SeatIndex {
		return nil, nil, nil, ErrNotOwner
	}
	return p, info, state, nil
}
