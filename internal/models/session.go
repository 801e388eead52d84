// internal/models/session.go
package models

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a game session. Transitions are
// monotonic: LOBBY -> ACTIVE -> {PAUSED <-> ACTIVE} -> FINISHED.
type SessionStatus string

const (
	StatusLobby    SessionStatus = "LOBBY"
	StatusActive   SessionStatus = "ACTIVE"
	StatusPaused   SessionStatus = "PAUSED"
	StatusFinished SessionStatus = "FINISHED"
)

// SessionMode controls lobby visibility. Solo and friends sessions are joined
// via direct links; only online sessions appear in the public listing.
type SessionMode string

const (
	ModeSolo    SessionMode = "SOLO"
	ModeFriends SessionMode = "FRIENDS"
	ModeOnline  SessionMode = "ONLINE"
)

const publicIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewPublicID returns a short human-friendly session identifier like "ha83sz".
func NewPublicID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = publicIDAlphabet[rand.Intn(len(publicIDAlphabet))]
	}
	return string(b)
}

// SeatedPlayer is one participant bound to a session. Seat indexes are unique
// per session and dense from 0. Players are never deleted during play; an
// eliminated or departed player is soft-removed via IsActive=false.
type SeatedPlayer struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	SeatIndex   int       `json:"seat_index"`
	Cash        int64     `json:"cash"`
	Position    int       `json:"position"`
	IsReady     bool      `json:"is_ready"`
	IsOwner     bool      `json:"is_owner"`
	IsActive    bool      `json:"is_active"`
	InJail      bool      `json:"in_jail"`
	JoinedAt    time.Time `json:"joined_at"`
}

// TileState is the per-session mutable record for one board position: who
// owns it, development level (0-5, 5 = hotel), and mortgage status. Exactly
// one TileState exists per (session, position) once the session has started.
type TileState struct {
	Position   int        `json:"position"`
	OwnerSeat  *int       `json:"owner_seat,omitempty"`
	Level      int        `json:"level"`
	Mortgaged  bool       `json:"mortgaged"`
	LastRentAt *time.Time `json:"last_rent_at,omitempty"`
}

// ChatMessage is one append-only in-session chat entry.
type ChatMessage struct {
	Seat     int       `json:"seat"` // -1 for system messages
	Text     string    `json:"text"`
	IsSystem bool      `json:"is_system"`
	SentAt   time.Time `json:"sent_at"`
}
