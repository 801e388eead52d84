// internal/engine/session.go
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/models"
)

// Economy defaults. Overridable per session before start.
const (
	DefaultStartingCash = 1500
	DefaultPassGoBonus  = 200
	DefaultJailFine     = 50
	DefaultMaxPlayers   = 6

	// UnmortgageInterestPct is charged on top of the mortgage value when lifting
	// a mortgage.
	UnmortgageInterestPct = 10
)

// Session holds the entire state for one game session, lobby through finish.
// All mutable state is guarded by mu; every public operation is one bounded
// critical section that either fully applies or returns a typed error with no
// effect. Two operations on the same session never interleave.
type Session struct {
	ID       uuid.UUID
	PublicID string
	Name     string
	Board    *models.Board
	OwnerID  uuid.UUID // external user id; uuid.Nil for system-owned sessions
	Mode     models.SessionMode

	MaxPlayers   int
	StartingCash int64
	PassGoBonus  int64
	JailFine     int64

	Status     models.SessionStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	WinnerSeat *int

	Players []*models.SeatedPlayer
	Tiles   []models.TileState // one per board position once started
	Turn    *models.Turn       // the single incomplete turn, nil before start

	TurnsCompleted int
	Trades         map[uuid.UUID]*models.Trade
	Auction        *models.Auction
	Chat           []models.ChatMessage
	Log            []models.ActionRecord

	actionIndex int
	mu          sync.Mutex

	// Roll produces one throw of two dice. Injectable for tests.
	Roll func() (int, int)
	// Now stamps records and lifecycle timestamps. Injectable for tests.
	Now func() time.Time
	// DrawCard supplies chance/treasure card effects. Nil disables draws.
	DrawCard func(kind models.TileType) *models.CardEffect

	// BroadcastFn is used to send events to all subscribers. If nil, no
	// broadcast is done.
	BroadcastFn func(ev Event)
	// Publish pushes an action record to the async persistence queue.
	Publish func(rec models.ActionRecord)
	// OnFinish is invoked once when the session reaches FINISHED.
	OnFinish func(s *Session, winnerSeat int)
}

// NewSession builds a session in LOBBY status bound to an immutable board.
func NewSession(board *models.Board, ownerID uuid.UUID, name string, mode models.SessionMode, maxPlayers int) *Session {
	if maxPlayers < 2 {
		maxPlayers = DefaultMaxPlayers
	}
	if mode == "" {
		mode = models.ModeFriends
	}
	s := &Session{
		ID:           uuid.New(),
		PublicID:     models.NewPublicID(),
		Name:         name,
		Board:        board,
		OwnerID:      ownerID,
		Mode:         mode,
		MaxPlayers:   maxPlayers,
		StartingCash: DefaultStartingCash,
		PassGoBonus:  DefaultPassGoBonus,
		JailFine:     DefaultJailFine,
		Status:       models.StatusLobby,
		Trades:       make(map[uuid.UUID]*models.Trade),
		Roll: func() (int, int) {
			return rand.Intn(6) + 1, rand.Intn(6) + 1
		},
		Now: time.Now,
	}
	s.CreatedAt = s.Now()
	return s
}

// Join seats a user in the lobby. The smallest unused non-negative seat index
// is assigned.
func (s *Session) Join(userID uuid.UUID, displayName string) (*models.SeatedPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != models.StatusLobby {
		return nil, ErrSessionNotJoinable
	}
	if len(s.Players) >= s.MaxPlayers {
		return nil, ErrSessionFull
	}
	if s.seatedBy(userID) != nil {
		return nil, ErrAlreadyJoined
	}

	p := &models.SeatedPlayer{
		UserID:      userID,
		DisplayName: displayName,
		SeatIndex:   s.lowestFreeSeat(),
		Cash:        s.StartingCash,
		Position:    s.Board.Special.Start,
		IsOwner:     userID == s.OwnerID,
		IsActive:    true,
		JoinedAt:    s.Now(),
	}
	s.Players = append(s.Players, p)

	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionJoin, Succeeded: true})
	s.fire(Event{Type: EventPlayerJoined, Seat: seatRef(p.SeatIndex), Payload: *p})
	log.WithFields(log.Fields{"session": s.PublicID, "seat": p.SeatIndex, "user": userID}).Info("player joined")
	return p, nil
}

// SetReady toggles a lobby player's ready flag.
func (s *Session) SetReady(userID uuid.UUID, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != models.StatusLobby {
		return ErrInvalidState
	}
	p := s.seatedBy(userID)
	if p == nil {
		return ErrNotSeated
	}
	if p.IsReady == ready {
		return nil
	}
	p.IsReady = ready
	s.record(models.ActionRecord{Seat: p.SeatIndex, Type: models.ActionReady, Succeeded: true})
	s.fire(Event{Type: EventPlayerReady, Seat: seatRef(p.SeatIndex), Payload: ready})
	return nil
}

// Leave removes a lobby player and compacts seat indexes so they remain dense
// from 0. During an active game the player is soft-removed instead: marked
// inactive, assets released to the bank, turn forced over if it was theirs.
func (s *Session) Leave(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.seatedBy(userID)
	if p == nil {
		return ErrNotSeated
	}

	switch s.Status {
	case models.StatusLobby:
		left := p.SeatIndex
		players := s.Players[:0]
		for _, q := range s.Players {
			if q.UserID == userID {
				continue
			}
			if q.SeatIndex > left {
				q.SeatIndex--
			}
			players = append(players, q)
		}
		s.Players = players
		s.fire(Event{Type: EventPlayerLeft, Seat: seatRef(left)})
		if len(s.Players) == 0 {
			// nobody left to start or dissolve the lobby; close it out
			now := s.Now()
			s.Status = models.StatusFinished
			s.FinishedAt = &now
			s.fire(Event{Type: EventSessionFinished})
			return nil
		}
		if userID == s.OwnerID {
			heir := s.Players[0]
			for _, q := range s.Players {
				if q.SeatIndex < heir.SeatIndex {
					heir = q
				}
			}
			s.OwnerID = heir.UserID
			heir.IsOwner = true
			log.WithFields(log.Fields{"session": s.PublicID, "seat": heir.SeatIndex}).Info("lobby ownership transferred")
		}
		return nil
	case models.StatusActive:
		s.eliminate(p, nil, 0)
		return nil
	default:
		return ErrInvalidState
	}
}

// CanStart reports whether requester may start the session: owner, at least
// two seated players, everyone ready.
func (s *Session) CanStart(requester uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canStart(requester)
}

// canStart assumes the lock is held.
func (s *Session) canStart(requester uuid.UUID) bool {
	if s.Status != models.StatusLobby || requester != s.OwnerID {
		return false
	}
	if len(s.Players) < 2 {
		return false
	}
	for _, p := range s.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// Start transitions the session to ACTIVE as one atomic unit: snapshot the
// board into tile states (idempotent), create the first turn for the lowest
// seat, stamp StartedAt.
func (s *Session) Start(requester uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != models.StatusLobby {
		return ErrInvalidState
	}
	if requester != s.OwnerID {
		return ErrPermission
	}
	if !s.canStart(requester) {
		return ErrInvalidState
	}

	s.initTileStates()

	first := s.Players[0]
	for _, p := range s.Players {
		if p.SeatIndex < first.SeatIndex {
			first = p
		}
	}
	now := s.Now()
	s.Turn = &models.Turn{
		Number:    1,
		Round:     1,
		Seat:      first.SeatIndex,
		Phase:     models.PhaseRoll,
		StartedAt: now,
	}
	s.Status = models.StatusActive
	s.StartedAt = &now

	s.record(models.ActionRecord{Seat: -1, Type: models.ActionStart, Succeeded: true})
	s.fire(Event{Type: EventSessionStarted})
	s.fire(Event{Type: EventTurnStarted, Seat: seatRef(first.SeatIndex), Payload: *s.Turn})
	log.WithFields(log.Fields{"session": s.PublicID, "players": len(s.Players)}).Info("session started")
	return nil
}

// initTileStates creates one TileState per board position. Idempotent: a
// second invocation is a no-op. Assumes lock is held.
func (s *Session) initTileStates() {
	if len(s.Tiles) > 0 {
		return
	}
	s.Tiles = make([]models.TileState, s.Board.TrackLength())
	for i := range s.Tiles {
		s.Tiles[i].Position = i
	}
}

// Pause suspends an active session. Only the owner (or the system, via
// uuid.Nil) may pause.
func (s *Session) Pause(requester uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != models.StatusActive {
		return ErrInvalidState
	}
	if requester != uuid.Nil && requester != s.OwnerID {
		return ErrPermission
	}
	s.Status = models.StatusPaused
	s.record(models.ActionRecord{Seat: -1, Type: models.ActionPause, Succeeded: true})
	s.fire(Event{Type: EventSessionPaused})
	return nil
}

// Resume reactivates a paused session.
func (s *Session) Resume(requester uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != models.StatusPaused {
		return ErrInvalidState
	}
	if requester != uuid.Nil && requester != s.OwnerID {
		return ErrPermission
	}
	s.Status = models.StatusActive
	s.record(models.ActionRecord{Seat: -1, Type: models.ActionResume, Succeeded: true})
	s.fire(Event{Type: EventSessionResumed})
	return nil
}

// SendChat appends a chat message and broadcasts it. Chat is append-only and
// has no state-machine effect.
func (s *Session) SendChat(userID uuid.UUID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.seatedBy(userID)
	if p == nil {
		return ErrNotSeated
	}
	msg := models.ChatMessage{Seat: p.SeatIndex, Text: text, SentAt: s.Now()}
	s.Chat = append(s.Chat, msg)
	s.fire(Event{Type: EventChat, Seat: seatRef(p.SeatIndex), Payload: msg})
	return nil
}

// finish transitions to FINISHED with a winner. Assumes lock is held.
func (s *Session) finish(winnerSeat int) {
	if s.Status == models.StatusFinished {
		return
	}
	now := s.Now()
	s.Status = models.StatusFinished
	s.FinishedAt = &now
	s.WinnerSeat = seatRef(winnerSeat)
	if s.Turn != nil && !s.Turn.Complete {
		s.Turn.Complete = true
		s.Turn.CompletedAt = &now
		s.Turn.Phase = models.PhaseEnd
	}
	s.record(models.ActionRecord{Seat: winnerSeat, Type: models.ActionFinish, Succeeded: true})
	s.fire(Event{Type: EventSessionFinished, Seat: seatRef(winnerSeat)})
	log.WithFields(log.Fields{"session": s.PublicID, "winner": winnerSeat}).Info("session finished")
	if s.OnFinish != nil {
		s.OnFinish(s, winnerSeat)
	}
}

// --- lock-held helpers ---

func (s *Session) seatedBy(userID uuid.UUID) *models.SeatedPlayer {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Session) playerAtSeat(seat int) *models.SeatedPlayer {
	for _, p := range s.Players {
		if p.SeatIndex == seat {
			return p
		}
	}
	return nil
}

func (s *Session) lowestFreeSeat() int {
	taken := make(map[int]bool, len(s.Players))
	for _, p := range s.Players {
		taken[p.SeatIndex] = true
	}
	seat := 0
	for taken[seat] {
		seat++
	}
	return seat
}

func (s *Session) activeCount() int {
	n := 0
	for _, p := range s.Players {
		if p.IsActive {
			n++
		}
	}
	return n
}

// record appends to the in-memory log and pushes to the persistence queue.
// Assumes lock is held.
func (s *Session) record(rec models.ActionRecord) {
	rec.SessionID = s.ID
	rec.Index = s.actionIndex
	s.actionIndex++
	if s.Turn != nil {
		rec.TurnNumber = s.Turn.Number
	}
	rec.Timestamp = s.Now()
	s.Log = append(s.Log, rec)
	if s.Publish != nil {
		s.Publish(rec)
	}
}

// fire broadcasts an event to all subscribers. Assumes lock is held; the
// broadcast hook must not block.
func (s *Session) fire(ev Event) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}
