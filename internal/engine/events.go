// internal/engine/events.go
package engine

// EventType is an enum-like type for broadcasting session events.
type EventType string

const (
	EventPlayerJoined    EventType = "player_joined"
	EventPlayerReady     EventType = "player_ready"
	EventPlayerLeft      EventType = "player_left"
	EventSessionStarted  EventType = "session_started"
	EventSessionPaused   EventType = "session_paused"
	EventSessionResumed  EventType = "session_resumed"
	EventSessionFinished EventType = "session_finished"
	EventTurnStarted     EventType = "turn_started"
	EventDiceRolled      EventType = "dice_rolled"
	EventMoved           EventType = "moved"
	EventRentPaid        EventType = "rent_paid"
	EventTaxPaid         EventType = "tax_paid"
	EventCardDrawn       EventType = "card_drawn"
	EventWentToJail      EventType = "went_to_jail"
	EventTilePurchased   EventType = "tile_purchased"
	EventTileMortgaged   EventType = "tile_mortgaged"
	EventTileDeveloped   EventType = "tile_developed"
	EventTradeProposed   EventType = "trade_proposed"
	EventTradeResolved   EventType = "trade_resolved"
	EventAuctionStarted  EventType = "auction_started"
	EventBidPlaced       EventType = "bid_placed"
	EventAuctionEnded    EventType = "auction_ended"
	EventPlayerBankrupt  EventType = "player_bankrupt"
	EventChat            EventType = "chat"
)

// Event is one broadcast frame sent to every subscriber of a session.
// Payload is one of the typed effect structs from the models package, or a
// small handler-defined struct; it is serialized as-is.
type Event struct {
	Type    EventType `json:"type"`
	Seat    *int      `json:"seat,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

func seatRef(seat int) *int {
	return &seat
}
