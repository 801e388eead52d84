// internal/models/auction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the lifecycle state of a tile auction.
type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "ACTIVE"
	AuctionEnded     AuctionStatus = "ENDED"
	AuctionCancelled AuctionStatus = "CANCELLED"
)

// Bid is one accepted bid. Accepted amounts strictly exceed the auction's
// current price at acceptance time, so bids are monotonically increasing.
type Bid struct {
	Seat     int       `json:"seat"`
	Amount   int64     `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// Auction is a competitive sale of one unowned tile. At most one auction is
// active per session at a time.
type Auction struct {
	ID            uuid.UUID     `json:"id"`
	Position      int           `json:"position"`
	Status        AuctionStatus `json:"status"`
	StartingPrice int64         `json:"starting_price"`
	CurrentPrice  int64         `json:"current_price"`
	HighestSeat   *int          `json:"highest_seat,omitempty"`
	Bids          []Bid         `json:"bids"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
}
