// internal/engine/engine_test.go
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/models"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{}
}

func (mb *mockBroadcaster) broadcastFn(ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = append(mb.events, ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = nil
}

func (mb *mockBroadcaster) lastEvent() *Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.events) == 0 {
		return nil
	}
	return &mb.events[len(mb.events)-1]
}

func (mb *mockBroadcaster) eventsOfType(t EventType) []Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []Event
	for _, ev := range mb.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// fixedRoll pins the dice for deterministic movement.
func fixedRoll(d1, d2 int) func() (int, int) {
	return func() (int, int) { return d1, d2 }
}

// setupLobby creates a session on the classic board with numPlayers seated
// and ready, left in LOBBY status. users[0] is the owner.
func setupLobby(t *testing.T, numPlayers int) (*Session, []uuid.UUID, *mockBroadcaster) {
	t.Helper()

	board := catalog.ClassicBoard()
	users := make([]uuid.UUID, numPlayers)
	for i := range users {
		users[i] = uuid.New()
	}

	s := NewSession(board, users[0], "test table", models.ModeFriends, 6)
	mb := newMockBroadcaster()
	s.BroadcastFn = mb.broadcastFn
	s.Roll = fixedRoll(1, 2)
	s.DrawCard = nil // keep landings deterministic unless a test wires a deck

	for i, uid := range users {
		_, err := s.Join(uid, "player")
		require.NoError(t, err, "join %d", i)
		require.NoError(t, s.SetReady(uid, true))
	}
	return s, users, mb
}

// setupTestSession is setupLobby plus a successful Start.
func setupTestSession(t *testing.T, numPlayers int) (*Session, []uuid.UUID, *mockBroadcaster) {
	t.Helper()
	s, users, mb := setupLobby(t, numPlayers)
	require.NoError(t, s.Start(users[0]))
	mb.clear()
	return s, users, mb
}

// totalCash sums every seated player's balance, for conservation checks.
func totalCash(s *Session) int64 {
	var sum int64
	for _, p := range s.Players {
		sum += p.Cash
	}
	return sum
}

// advanceTo fast-forwards the rotation until it is userID's turn, ending
// turns with minimal rolls.
func advanceTo(t *testing.T, s *Session, users []uuid.UUID, userID uuid.UUID) {
	t.Helper()
	for i := 0; i < len(users)*2; i++ {
		cur := s.Turn.Seat
		var curUser uuid.UUID
		for _, uid := range users {
			if p := s.seatedBy(uid); p != nil && p.SeatIndex == cur {
				curUser = uid
			}
		}
		if curUser == userID {
			return
		}
		_, err := s.RollDice(curUser)
		require.NoError(t, err)
		_, err = s.EndTurn(curUser)
		require.NoError(t, err)
	}
	t.Fatalf("never reached turn for user %v", userID)
}

// fixedNow pins the session clock.
func fixedNow(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
