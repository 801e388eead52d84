// internal/models/action.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionType names a state-changing action recorded in the session log.
type ActionType string

const (
	ActionJoin          ActionType = "join"
	ActionReady         ActionType = "ready"
	ActionStart         ActionType = "session_start"
	ActionRoll          ActionType = "roll"
	ActionMove          ActionType = "move"
	ActionRent          ActionType = "rent"
	ActionTax           ActionType = "tax"
	ActionCard          ActionType = "card"
	ActionGoToJail      ActionType = "go_to_jail"
	ActionJailFine      ActionType = "jail_fine"
	ActionPurchase      ActionType = "purchase"
	ActionMortgage      ActionType = "mortgage"
	ActionUnmortgage    ActionType = "unmortgage"
	ActionDevelop       ActionType = "develop"
	ActionTransfer      ActionType = "transfer"
	ActionTradeProposed ActionType = "trade_proposed"
	ActionTradeResolved ActionType = "trade_resolved"
	ActionAuctionStart  ActionType = "auction_start"
	ActionBid           ActionType = "bid"
	ActionAuctionEnd    ActionType = "auction_end"
	ActionBankrupt      ActionType = "bankrupt"
	ActionEndTurn       ActionType = "end_turn"
	ActionPause         ActionType = "pause"
	ActionResume        ActionType = "resume"
	ActionFinish        ActionType = "session_finish"
	ActionChat          ActionType = "chat"
)

// Effect payloads form a closed set of tagged variants, one per action type
// that carries structured data. The persisted form is generic JSON, but the
// engine only ever constructs these concrete shapes.

// MoveEffect describes token movement from a dice roll or card.
type MoveEffect struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	PassedGo bool `json:"passed_go"`
}

// RentEffect describes an automatic rent payment on landing.
type RentEffect struct {
	Position  int   `json:"position"`
	Amount    int64 `json:"amount"`
	PayerSeat int   `json:"payer_seat"`
	OwnerSeat int   `json:"owner_seat"`
	Doubled   bool  `json:"doubled"`
}

// TransferEffect describes a cash movement. A nil seat is the bank.
type TransferEffect struct {
	Amount   int64 `json:"amount"`
	FromSeat *int  `json:"from_seat,omitempty"`
	ToSeat   *int  `json:"to_seat,omitempty"`
}

// PurchaseEffect describes a property purchase from the bank.
type PurchaseEffect struct {
	Position  int   `json:"position"`
	Price     int64 `json:"price"`
	BuyerSeat int   `json:"buyer_seat"`
}

// DevelopEffect describes a development level change on an owned tile.
type DevelopEffect struct {
	Position int   `json:"position"`
	OldLevel int   `json:"old_level"`
	NewLevel int   `json:"new_level"`
	Cost     int64 `json:"cost"`
}

// MortgageEffect describes mortgaging or unmortgaging a tile.
type MortgageEffect struct {
	Position  int   `json:"position"`
	Amount    int64 `json:"amount"`
	Mortgaged bool  `json:"mortgaged"`
}

// TradeEffect describes a trade lifecycle change.
type TradeEffect struct {
	TradeID uuid.UUID   `json:"trade_id"`
	Status  TradeStatus `json:"status"`
}

// AuctionEffect describes an auction lifecycle or bid event.
type AuctionEffect struct {
	AuctionID  uuid.UUID `json:"auction_id"`
	Position   int       `json:"position"`
	Price      int64     `json:"price"`
	BidderSeat *int      `json:"bidder_seat,omitempty"`
	Settled    bool      `json:"settled"`
}

// BankruptEffect describes a player elimination.
type BankruptEffect struct {
	Seat         int   `json:"seat"`
	Shortfall    int64 `json:"shortfall"`
	CreditorSeat *int  `json:"creditor_seat,omitempty"`
}

// ActionRecord is one immutable entry in the append-only session log.
// Payload holds one of the typed effect variants above (or nil).
type ActionRecord struct {
	SessionID  uuid.UUID  `json:"session_id"`
	Index      int        `json:"index"`
	TurnNumber int        `json:"turn_number"`
	Seat       int        `json:"seat"` // -1 for system actions
	Type       ActionType `json:"type"`
	Payload    any        `json:"payload,omitempty"`
	TargetTile *int       `json:"target_tile,omitempty"`
	TargetSeat *int       `json:"target_seat,omitempty"`
	Amount     int64      `json:"amount"`
	Succeeded  bool       `json:"succeeded"`
	Timestamp  time.Time  `json:"timestamp"`
}
