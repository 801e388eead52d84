// internal/models/trade.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus is the lifecycle state of a trade proposal. Every status other
// than PENDING is terminal.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeAccepted  TradeStatus = "ACCEPTED"
	TradeRejected  TradeStatus = "REJECTED"
	TradeCancelled TradeStatus = "CANCELLED"
	TradeCompleted TradeStatus = "COMPLETED"
)

// TradeTerms is one side of a trade: cash plus board positions.
type TradeTerms struct {
	Cash  int64 `json:"cash"`
	Tiles []int `json:"tiles,omitempty"`
}

// Trade is a proposal between two seated players. A nil OfferedToSeat is an
// open offer any other active player may accept.
type Trade struct {
	ID            uuid.UUID   `json:"id"`
	OfferedBySeat int         `json:"offered_by_seat"`
	OfferedToSeat *int        `json:"offered_to_seat,omitempty"`
	Offer         TradeTerms  `json:"offer"`
	Request       TradeTerms  `json:"request"`
	Status        TradeStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	ResolvedAt    *time.Time  `json:"resolved_at,omitempty"`
}
