// internal/engine/errors.go
package engine

import "errors"

// Typed failures surfaced by session operations. Callers match with
// errors.Is; the HTTP layer maps them onto status codes. No operation that
// returns one of these leaves the session partially mutated.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotJoinable = errors.New("session is not accepting players")
	ErrSessionFull        = errors.New("session is full")
	ErrAlreadyJoined      = errors.New("user already holds a seat in this session")
	ErrNotSeated          = errors.New("user does not hold a seat in this session")
	ErrPermission         = errors.New("requester is not allowed to perform this action")
	ErrInvalidState       = errors.New("session is not in a valid state for this action")

	ErrNotYourTurn = errors.New("it is not this player's turn")
	ErrWrongPhase  = errors.New("action is not legal in the current phase")

	ErrInvalidPosition   = errors.New("position is outside the board track")
	ErrNotProperty       = errors.New("tile is not a purchasable property")
	ErrAlreadyOwned      = errors.New("tile already has an owner")
	ErrNotOwner          = errors.New("tile is not owned by this player")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMortgageState     = errors.New("tile is already in the requested mortgage state")
	ErrDevelopedTile     = errors.New("tile has development and cannot be mortgaged")
	ErrNoMonopoly        = errors.New("player does not own the full color group")
	ErrDevelopRange      = errors.New("development level must stay between 0 and 5")

	ErrInvalidTrade    = errors.New("trade terms can no longer be satisfied")
	ErrTradeNotPending = errors.New("trade has already been resolved")
	ErrTradeNotFound   = errors.New("trade not found")

	ErrAuctionNotActive   = errors.New("auction is not active")
	ErrAuctionInProgress  = errors.New("another auction is already running")
	ErrBidTooLow          = errors.New("bid must strictly exceed the current price")
	ErrWrongGame          = errors.New("bidder is not part of this auction's session")
	ErrNoAuction          = errors.New("no auction exists for this session")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
