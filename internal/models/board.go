// internal/models/board.go
package models

import (
	"github.com/google/uuid"
)

// TileType identifies the canonical kind of content at a board position.
type TileType string

const (
	TileStart       TileType = "START"
	TileProperty    TileType = "PROPERTY"
	TileTax         TileType = "TAX"
	TileChance      TileType = "CHANCE"
	TileTreasure    TileType = "TREASURE"
	TileFreeParking TileType = "FREE_PARKING"
	TileJail        TileType = "JAIL"
	TileGoToJail    TileType = "GO_TO_JAIL"
	TileVacation    TileType = "VACATION"
)

// MaxDevelopment is the highest development level a property can reach.
// Levels 1-4 are houses; level 5 is a hotel.
const MaxDevelopment = 5

// PropertyInfo holds the per-property economics attached to a PROPERTY tile.
// Rents is indexed by development level: Rents[0] is base rent, Rents[5] hotel rent.
type PropertyInfo struct {
	Price         int64    `json:"price"`
	MortgageValue int64    `json:"mortgage_value"`
	Rents         [6]int64 `json:"rents"`
	HouseCost     int64    `json:"house_cost"`
	HotelCost     int64    `json:"hotel_cost"`
	ColorGroup    string   `json:"color_group"`
}

// TileContent is the immutable, board-level definition of one position.
// Property is non-nil only for TileProperty; TaxAmount applies to TileTax.
type TileContent struct {
	Title     string        `json:"title"`
	Type      TileType      `json:"type"`
	Property  *PropertyInfo `json:"property,omitempty"`
	TaxAmount int64         `json:"tax_amount,omitempty"`
}

// SpecialPositions names the board positions with fixed game meaning.
type SpecialPositions struct {
	Start      int `json:"start"`
	Prison     int `json:"prison"`
	Vacation   int `json:"vacation"`
	GoToPrison int `json:"go_to_prison"`
}

// DefaultSpecialPositions returns the canonical special tile positions for an
// n-sized board: start at 0, prison at n-1, vacation at 2n-1, go-to-prison at 3n-1.
func DefaultSpecialPositions(size int) SpecialPositions {
	return SpecialPositions{
		Start:      0,
		Prison:     size - 1,
		Vacation:   2*size - 1,
		GoToPrison: 3*size - 1,
	}
}

// Board is an immutable board template. Positions are ordered; valid board
// positions are [0, len(Positions)). Boards are registered once in the catalog
// and never mutated during play.
type Board struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Size      int              `json:"size"`
	Theme     string           `json:"theme"`
	Positions []TileContent    `json:"positions"`
	Special   SpecialPositions `json:"special"`
	Enabled   bool             `json:"enabled"`
}

// TrackLength returns the number of positions a token can occupy.
func (b *Board) TrackLength() int {
	return len(b.Positions)
}

// ContentAt returns the tile content at pos, or nil if pos is off the track.
func (b *Board) ContentAt(pos int) *TileContent {
	if pos < 0 || pos >= len(b.Positions) {
		return nil
	}
	return &b.Positions[pos]
}

// CardEffect is the generic money/movement instruction carried by a drawn
// chance or treasure card. Card content itself comes from an external
// collaborator; the engine only executes the effect.
type CardEffect struct {
	Title  string `json:"title"`
	Cash   int64  `json:"cash"`              // positive = bank pays player, negative = player pays bank
	MoveTo *int   `json:"move_to,omitempty"` // absolute board position
}
