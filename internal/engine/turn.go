// internal/engine/turn.go
package engine

import (
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/models"
)

// RollResult reports everything that happened during one roll: the dice,
// the movement, and the resolved landing effect.
type RollResult struct {
	Dice         models.DicePair    `json:"dice"`
	From         int                `json:"from"`
	To           int                `json:"to"`
	PassedGo     bool               `json:"passed_go"`
	CanBuy       bool               `json:"can_buy"`
	RentPaid     int64              `json:"rent_paid,omitempty"`
	TaxPaid      int64              `json:"tax_paid,omitempty"`
	JailFinePaid int64              `json:"jail_fine_paid,omitempty"`
	LeftJail     bool               `json:"left_jail,omitempty"`
	WentToJail   bool               `json:"went_to_jail,omitempty"`
	Card         *models.CardEffect `json:"card,omitempty"`
	Bankrupt     bool               `json:"bankrupt,omitempty"`
}

// RollDice performs the whole roll -> move -> landing resolution sequence in
// one critical section and leaves the turn in the ACTION phase. This is the
// only unconditional phase transition the engine performs.
func (s *Session) RollDice(userID uuid.UUID) (*RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.requireTurn(userID)
	if err != nil {
		return nil, err
	}
	if s.Turn.Phase != models.PhaseRoll {
		return nil, ErrWrongPhase
	}

	d1, d2 := s.Roll()
	dice := models.DicePair{Die1: d1, Die2: d2}
	s.Turn.Dice = &dice
	res := &RollResult{Dice: dice, From: p.Position}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionRoll, Payload: dice, Succeeded: true})
	s.fire(Event{Type: EventDiceRolled, Seat: seatRef(p.SeatIndex), Payload: dice})

	if p.InJail {
		if dice.IsDouble() {
			p.InJail = false
			res.LeftJail = true
		} else {
			fine := s.JailFine
			survived := s.chargeMandatory(p, nil, fine, models.ActionJailFine, nil)
			res.JailFinePaid = fine
			p.InJail = false
			if !survived {
				res.Bankrupt = true
				return res, nil
			}
		}
	}

	s.Turn.Phase = models.PhaseMove

	track := s.Board.TrackLength()
	from := p.Position
	to := (from + dice.Total()) % track
	wrapped := to < from || to == s.Board.Special.Start

	landing := s.Board.ContentAt(to)
	if wrapped && landing.Type != models.TileGoToJail {
		p.Cash += s.PassGoBonus
		res.PassedGo = true
	}
	p.Position = to
	res.To = to

	move := models.MoveEffect{From: from, To: to, PassedGo: res.PassedGo}
	s.record(models.ActionRecord{
		Seat: p.SeatIndex, Type: models.ActionMove, Payload: move,
		TargetTile: &to, Succeeded: true,
	})
	s.fire(Event{Type: EventMoved, Seat: seatRef(p.SeatIndex), Payload: move})

	s.Turn.Phase = models.PhaseAction
	s.resolveLanding(p, landing, res)
	return res, nil
}

// resolveLanding applies the effect of the tile the player arrived at.
// Assumes lock is held.
func (s *Session) resolveLanding(p *models.SeatedPlayer, content *models.TileContent, res *RollResult) {
	pos := p.Position

	switch content.Type {
	case models.TileProperty:
		state := &s.Tiles[pos]
		if state.OwnerSeat == nil {
			res.CanBuy = true
			return
		}
		ownerSeat := *state.OwnerSeat
		if ownerSeat == p.SeatIndex || state.Mortgaged {
			return
		}
		owner := s.playerAtSeat(ownerSeat)
		if owner == nil || !owner.IsActive {
			return
		}
		rent, doubled := s.rentFor(pos)
		now := s.Now()
		state.LastRentAt = &now
		eff := models.RentEffect{
			Position: pos, Amount: rent,
			PayerSeat: p.SeatIndex, OwnerSeat: ownerSeat, Doubled: doubled,
		}
		s.record(models.ActionRecord{
			Seat: p.SeatIndex, Type: models.ActionRent, Payload: eff,
			TargetTile: &pos, TargetSeat: &ownerSeat, Amount: rent, Succeeded: true,
		})
		s.fire(Event{Type: EventRentPaid, Seat: seatRef(p.SeatIndex), Payload: eff})
		res.RentPaid = rent
		if !s.chargeMandatory(p, owner, rent, "", nil) {
			res.Bankrupt = true
		}

	case models.TileTax:
		amount := content.TaxAmount
		s.record(models.ActionRecord{
			Seat: p.SeatIndex, Type: models.ActionTax, TargetTile: &pos,
			Amount: amount, Succeeded: true,
		})
		s.fire(Event{Type: EventTaxPaid, Seat: seatRef(p.SeatIndex), Payload: models.TransferEffect{Amount: amount, FromSeat: seatRef(p.SeatIndex)}})
		res.TaxPaid = amount
		if !s.chargeMandatory(p, nil, amount, "", nil) {
			res.Bankrupt = true
		}

	case models.TileChance, models.TileTreasure:
		if s.DrawCard == nil {
			return
		}
		card := s.DrawCard(content.Type)
		if card == nil {
			return
		}
		res.Card = card
		s.record(models.ActionRecord{
			Seat: p.SeatIndex, Type: models.ActionCard, Payload: *card,
			Amount: card.Cash, Succeeded: true,
		})
		s.fire(Event{Type: EventCardDrawn, Seat: seatRef(p.SeatIndex), Payload: *card})
		if card.Cash > 0 {
			p.Cash += card.Cash
		} else if card.Cash < 0 {
			if !s.chargeMandatory(p, nil, -card.Cash, "", nil) {
				res.Bankrupt = true
				return
			}
		}
		// a card from an external deck may carry a bad destination
		if card.MoveTo != nil && s.Board.ContentAt(*card.MoveTo) != nil {
			p.Position = *card.MoveTo
		}

	case models.TileGoToJail:
		p.Position = s.Board.Special.Prison
		p.InJail = true
		res.WentToJail = true
		s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionGoToJail, Succeeded: true})
		s.fire(Event{Type: EventWentToJail, Seat: seatRef(p.SeatIndex)})

	default:
		// Start, Jail (just visiting), Vacation, FreeParking: nothing happens.
	}
}

// EndTurn completes the current player's turn and hands off to the next
// active seat in order, wrapping and incrementing the round when the rotation
// passes the last seat.
func (s *Session) EndTurn(userID uuid.UUID) (*models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.requireTurn(userID)
	if err != nil {
		return nil, err
	}
	switch s.Turn.Phase {
	case models.PhaseAction, models.PhaseTrade, models.PhaseBuild:
	default:
		return nil, ErrWrongPhase
	}

	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionEndTurn, Succeeded: true})
	s.advanceTurn()
	next := *s.Turn
	return &next, nil
}

// requireTurn validates that userID is seated, active, and owns the current
// incomplete turn of an active session. Assumes lock is held.
func (s *Session) requireTurn(userID uuid.UUID) (*models.SeatedPlayer, error) {
	if s.Status != models.StatusActive || s.Turn == nil || s.Turn.Complete {
		return nil, ErrInvalidState
	}
	p := s.seatedBy(userID)
	if p == nil {
		return nil, ErrNotSeated
	}
	if p.SeatIndex != s.Turn.Seat || !p.IsActive {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// advanceTurn closes the current turn and opens the next one for the next
// active seat. Assumes lock is held and the session is active.
func (s *Session) advanceTurn() {
	cur := s.Turn
	now := s.Now()
	cur.Complete = true
	cur.CompletedAt = &now
	cur.Phase = models.PhaseEnd
	s.TurnsCompleted++

	var seats []int
	for _, p := range s.Players {
		if p.IsActive {
			seats = append(seats, p.SeatIndex)
		}
	}
	if len(seats) == 0 {
		return
	}
	sort.Ints(seats)

	next := -1
	for _, seat := range seats {
		if seat > cur.Seat {
			next = seat
			break
		}
	}
	round := cur.Round
	if next == -1 { // wrapped past the last seat
		next = seats[0]
		round++
	}

	s.Turn = &models.Turn{
		Number:    cur.Number + 1,
		Round:     round,
		Seat:      next,
		Phase:     models.PhaseRoll,
		StartedAt: now,
	}
	s.fire(Event{Type: EventTurnStarted, Seat: seatRef(next), Payload: *s.Turn})
}

// chargeMandatory applies a payment the player cannot decline. If the balance
// goes negative and mortgaging every remaining asset still could not cover the
// debt, the player is eliminated. Returns false when the player went bankrupt.
// Assumes lock is held.
func (s *Session) chargeMandatory(p *models.SeatedPlayer, creditor *models.SeatedPlayer, amount int64, typ models.ActionType, payload any) bool {
	p.Cash -= amount
	if creditor != nil {
		creditor.Cash += amount
	}
	if typ != "" {
		s.record(models.ActionRecord{Seat: p.SeatIndex, Type: typ, Payload: payload, Amount: amount, Succeeded: true})
	}
	if p.Cash >= 0 {
		return true
	}
	if p.Cash+s.liquidationCapacity(p) >= 0 {
		// The player can still mortgage their way out; leave the balance
		// negative and let them resolve it.
		return true
	}
	var creditorSeat *int
	if creditor != nil {
		creditorSeat = seatRef(creditor.SeatIndex)
	}
	s.eliminate(p, creditorSeat, -p.Cash)
	return false
}

// liquidationCapacity is the cash the player could still raise by mortgaging
// every unmortgaged tile they own. Assumes lock is held.
func (s *Session) liquidationCapacity(p *models.SeatedPlayer) int64 {
	var total int64
	for i := range s.Tiles {
		st := &s.Tiles[i]
		if st.OwnerSeat == nil || *st.OwnerSeat != p.SeatIndex || st.Mortgaged {
			continue
		}
		if info := s.Board.Positions[i].Property; info != nil {
			total += info.MortgageValue
		}
	}
	return total
}

// eliminate soft-removes a player: inactive, assets to the creditor (or back
// to the bank when the debt was owed to the bank), pending trades involving
// them cancelled, turn forced over if it was theirs. Finishes the session
// when a single active player remains. Assumes lock is held.
func (s *Session) eliminate(p *models.SeatedPlayer, creditorSeat *int, shortfall int64) {
	p.IsActive = false
	p.IsReady = false

	for i := range s.Tiles {
		st := &s.Tiles[i]
		if st.OwnerSeat == nil || *st.OwnerSeat != p.SeatIndex {
			continue
		}
		if creditorSeat != nil {
			seat := *creditorSeat
			st.OwnerSeat = &seat
		} else {
			st.OwnerSeat = nil
			st.Level = 0
			st.Mortgaged = false
		}
	}

	for _, t := range s.Trades {
		if t.Status != models.TradePending {
			continue
		}
		if t.OfferedBySeat == p.SeatIndex || (t.OfferedToSeat != nil && *t.OfferedToSeat == p.SeatIndex) {
			s.resolveTrade(t, models.TradeCancelled)
		}
	}

	eff := models.BankruptEffect{Seat: p.SeatIndex, Shortfall: shortfall, CreditorSeat: creditorSeat}
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionBankrupt, Payload: eff, TargetSeat: creditorSeat, Amount: shortfall, Succeeded: true})
	s.fire(Event{Type: EventPlayerBankrupt, Seat: seatRef(p.SeatIndex), Payload: eff})
	log.WithFields(log.Fields{"session": s.PublicID, "seat": p.SeatIndex}).Info("player eliminated")

	if s.activeCount() == 1 {
		for _, q := range s.Players {
			if q.IsActive {
				s.finish(q.SeatIndex)
				return
			}
		}
	}
	if s.Status == models.StatusActive && s.Turn != nil && !s.Turn.Complete && s.Turn.Seat == p.SeatIndex {
		s.advanceTurn()
	}
}
