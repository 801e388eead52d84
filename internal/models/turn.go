// internal/models/turn.go
package models

import "time"

// TurnPhase is the sub-state within a single player's turn.
type TurnPhase string

const (
	PhaseRoll   TurnPhase = "ROLL"
	PhaseMove   TurnPhase = "MOVE"
	PhaseAction TurnPhase = "ACTION"
	PhaseTrade  TurnPhase = "TRADE"
	PhaseBuild  TurnPhase = "BUILD"
	PhaseEnd    TurnPhase = "END"
)

// DicePair is the result of one roll of two dice.
type DicePair struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

func (d DicePair) Total() int {
	return d.Die1 + d.Die2
}

func (d DicePair) IsDouble() bool {
	return d.Die1 == d.Die2
}

// Turn tracks one player's turn. A session holds a direct reference to its
// single incomplete Turn; at most one Turn per session has Complete=false.
type Turn struct {
	Number      int        `json:"number"`
	Round       int        `json:"round"`
	Seat        int        `json:"seat"`
	Phase       TurnPhase  `json:"phase"`
	Dice        *DicePair  `json:"dice,omitempty"`
	Complete    bool       `json:"complete"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
