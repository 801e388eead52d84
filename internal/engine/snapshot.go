// internal/engine/snapshot.go
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/brokeio/brokeio/internal/models"
)

// Snapshot is a consistent, copied view of a session taken under its lock.
// Callers may hold it without synchronization; it never aliases live state.
type Snapshot struct {
	ID             uuid.UUID             `json:"id"`
	PublicID       string                `json:"public_id"`
	Name           string                `json:"name"`
	BoardID        uuid.UUID             `json:"board_id"`
	BoardName      string                `json:"board_name"`
	Mode           models.SessionMode    `json:"mode"`
	Status         models.SessionStatus  `json:"status"`
	MaxPlayers     int                   `json:"max_players"`
	StartingCash   int64                 `json:"starting_cash"`
	Players        []models.SeatedPlayer `json:"players"`
	Tiles          []models.TileState    `json:"tiles,omitempty"`
	Turn           *models.Turn          `json:"turn,omitempty"`
	TurnsCompleted int                   `json:"turns_completed"`
	Trades         []models.Trade        `json:"trades,omitempty"`
	Auction        *models.Auction       `json:"auction,omitempty"`
	Chat           []models.ChatMessage  `json:"chat,omitempty"`
	ActionCount    int                   `json:"action_count"`
	WinnerSeat     *int                  `json:"winner_seat,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	StartedAt      *time.Time            `json:"started_at,omitempty"`
	FinishedAt     *time.Time            `json:"finished_at,omitempty"`
}

// Snapshot copies the observable session state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:             s.ID,
		PublicID:       s.PublicID,
		Name:           s.Name,
		BoardID:        s.Board.ID,
		BoardName:      s.Board.Name,
		Mode:           s.Mode,
		Status:         s.Status,
		MaxPlayers:     s.MaxPlayers,
		StartingCash:   s.StartingCash,
		TurnsCompleted: s.TurnsCompleted,
		ActionCount:    len(s.Log),
		CreatedAt:      s.CreatedAt,
	}

	snap.Players = make([]models.SeatedPlayer, len(s.Players))
	for i, p := range s.Players {
		snap.Players[i] = *p
	}
	snap.Tiles = append([]models.TileState(nil), s.Tiles...)
	snap.Chat = append([]models.ChatMessage(nil), s.Chat...)

	if s.Turn != nil {
		t := *s.Turn
		snap.Turn = &t
	}
	if s.Auction != nil {
		a := *s.Auction
		a.Bids = append([]models.Bid(nil), s.Auction.Bids...)
		snap.Auction = &a
	}
	for _, t := range s.Trades {
		snap.Trades = append(snap.Trades, *t)
	}
	if s.WinnerSeat != nil {
		w := *s.WinnerSeat
		snap.WinnerSeat = &w
	}
	if s.StartedAt != nil {
		at := *s.StartedAt
		snap.StartedAt = &at
	}
	if s.FinishedAt != nil {
		at := *s.FinishedAt
		snap.FinishedAt = &at
	}
	return snap
}

// Actions copies the action log entries from index onward.
func (s *Session) Actions(from int) []models.ActionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from < 0 || from > len(s.Log) {
		from = 0
	}
	return append([]models.ActionRecord(nil), s.Log[from:]...)
}
