// internal/engine/session_test.go
package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/models"
)

func TestJoinAssignsDenseSeats(t *testing.T) {
	s, users, _ := setupLobby(t, 3)

	for i, uid := range users {
		p := s.seatedBy(uid)
		require.NotNil(t, p)
		assert.Equal(t, i, p.SeatIndex)
		assert.Equal(t, s.StartingCash, p.Cash)
		assert.Equal(t, s.Board.Special.Start, p.Position)
	}
	assert.True(t, s.Players[0].IsOwner)
	assert.False(t, s.Players[1].IsOwner)
}

func TestJoinRejections(t *testing.T) {
	s, users, _ := setupLobby(t, 2)

	_, err := s.Join(users[0], "again")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	s.MaxPlayers = 2
	_, err = s.Join(uuid.New(), "late")
	assert.ErrorIs(t, err, ErrSessionFull)

	require.NoError(t, s.Start(users[0]))
	_, err = s.Join(uuid.New(), "too late")
	assert.ErrorIs(t, err, ErrSessionNotJoinable)
}

func TestLeaveLobbyCompactsSeats(t *testing.T) {
	s, users, _ := setupLobby(t, 3)

	require.NoError(t, s.Leave(users[1]))
	require.Len(t, s.Players, 2)
	assert.Equal(t, 0, s.seatedBy(users[0]).SeatIndex)
	assert.Equal(t, 1, s.seatedBy(users[2]).SeatIndex)

	// rejoiner fills the freed seat
	_, err := s.Join(uuid.New(), "newcomer")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Players[2].SeatIndex)
}

func TestOwnerLeavingLobbyHandsOffOwnership(t *testing.T) {
	s, users, _ := setupLobby(t, 3)

	require.NoError(t, s.Leave(users[0]))
	assert.Equal(t, users[1], s.OwnerID)
	assert.True(t, s.seatedBy(users[1]).IsOwner)

	// the new owner can start the compacted lobby
	require.NoError(t, s.Start(users[1]))
	assert.Equal(t, models.StatusActive, s.Status)
	assert.Equal(t, 0, s.Turn.Seat)
}

func TestLastPlayerLeavingClosesLobby(t *testing.T) {
	s, users, mb := setupLobby(t, 2)

	require.NoError(t, s.Leave(users[1]))
	require.NoError(t, s.Leave(users[0]))

	assert.Empty(t, s.Players)
	assert.Equal(t, models.StatusFinished, s.Status)
	require.NotNil(t, s.FinishedAt)
	assert.NotEmpty(t, mb.eventsOfType(EventSessionFinished))

	_, err := s.Join(uuid.New(), "late")
	assert.ErrorIs(t, err, ErrSessionNotJoinable)
}

func TestStartRequiresOwnerAndReadiness(t *testing.T) {
	s, users, _ := setupLobby(t, 2)

	assert.ErrorIs(t, s.Start(users[1]), ErrPermission)

	require.NoError(t, s.SetReady(users[1], false))
	assert.False(t, s.CanStart(users[0]))
	assert.ErrorIs(t, s.Start(users[0]), ErrInvalidState)

	require.NoError(t, s.SetReady(users[1], true))
	require.NoError(t, s.Start(users[0]))
	assert.Equal(t, models.StatusActive, s.Status)
	assert.ErrorIs(t, s.Start(users[0]), ErrInvalidState)
}

func TestStartSnapshotsBoardAndOpensFirstTurn(t *testing.T) {
	s, _, mb := setupLobby(t, 2)
	require.NoError(t, s.Start(s.OwnerID))

	require.Len(t, s.Tiles, s.Board.TrackLength())
	for i, st := range s.Tiles {
		assert.Equal(t, i, st.Position)
		assert.Nil(t, st.OwnerSeat)
		assert.Zero(t, st.Level)
		assert.False(t, st.Mortgaged)
	}

	require.NotNil(t, s.Turn)
	assert.Equal(t, 1, s.Turn.Number)
	assert.Equal(t, 1, s.Turn.Round)
	assert.Equal(t, 0, s.Turn.Seat)
	assert.Equal(t, models.PhaseRoll, s.Turn.Phase)
	assert.False(t, s.Turn.Complete)
	require.NotNil(t, s.StartedAt)

	assert.NotEmpty(t, mb.eventsOfType(EventSessionStarted))
	assert.NotEmpty(t, mb.eventsOfType(EventTurnStarted))
}

func TestTileSnapshotIsIdempotent(t *testing.T) {
	s, _, _ := setupLobby(t, 2)
	require.NoError(t, s.Start(s.OwnerID))
	require.Len(t, s.Tiles, s.Board.TrackLength())

	seat := 0
	s.Tiles[1].OwnerSeat = &seat
	s.Tiles[1].Level = 2

	// a repeated snapshot step must not duplicate or reset tile states
	s.mu.Lock()
	s.initTileStates()
	s.mu.Unlock()

	require.Len(t, s.Tiles, s.Board.TrackLength())
	seen := make(map[int]bool, len(s.Tiles))
	for _, st := range s.Tiles {
		assert.False(t, seen[st.Position], "position %d duplicated", st.Position)
		seen[st.Position] = true
	}
	require.NotNil(t, s.Tiles[1].OwnerSeat)
	assert.Equal(t, 2, s.Tiles[1].Level)
}

func TestTooFewPlayersCannotStart(t *testing.T) {
	board := catalog.ClassicBoard()
	owner := uuid.New()
	s := NewSession(board, owner, "solo lobby", models.ModeFriends, 4)
	_, err := s.Join(owner, "owner")
	require.NoError(t, err)
	require.NoError(t, s.SetReady(owner, true))

	assert.False(t, s.CanStart(owner))
	assert.ErrorIs(t, s.Start(owner), ErrInvalidState)
}

func TestPauseResume(t *testing.T) {
	s, users, mb := setupTestSession(t, 2)

	assert.ErrorIs(t, s.Pause(users[1]), ErrPermission)
	require.NoError(t, s.Pause(users[0]))
	assert.Equal(t, models.StatusPaused, s.Status)

	// play is rejected while paused
	_, err := s.RollDice(users[0])
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.ErrorIs(t, s.Resume(users[1]), ErrPermission)
	require.NoError(t, s.Resume(users[0]))
	assert.Equal(t, models.StatusActive, s.Status)

	assert.NotEmpty(t, mb.eventsOfType(EventSessionPaused))
	assert.NotEmpty(t, mb.eventsOfType(EventSessionResumed))
}

func TestChat(t *testing.T) {
	s, users, mb := setupTestSession(t, 2)

	require.NoError(t, s.SendChat(users[1], "hello"))
	require.Len(t, s.Chat, 1)
	assert.Equal(t, 1, s.Chat[0].Seat)
	assert.Equal(t, "hello", s.Chat[0].Text)

	assert.ErrorIs(t, s.SendChat(uuid.New(), "spy"), ErrNotSeated)

	ev := mb.eventsOfType(EventChat)
	require.Len(t, ev, 1)
}

func TestActionLogIsAppendOnlyAndOrdered(t *testing.T) {
	s, users, _ := setupTestSession(t, 2)

	_, err := s.RollDice(users[0])
	require.NoError(t, err)
	_, err = s.EndTurn(users[0])
	require.NoError(t, err)

	require.NotEmpty(t, s.Log)
	for i, rec := range s.Log {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, s.ID, rec.SessionID)
		assert.False(t, rec.Timestamp.IsZero())
	}
}

func TestSnapshotDoesNotAliasLiveState(t *testing.T) {
	s, users, _ := setupTestSession(t, 2)
	s.Now = fixedNow(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	snap := s.Snapshot()
	require.Len(t, snap.Players, 2)

	snap.Players[0].Cash = 1
	snap.Tiles[1].Level = 5
	assert.Equal(t, s.StartingCash, s.Players[0].Cash)
	assert.Zero(t, s.Tiles[1].Level)

	_, err := s.RollDice(users[0])
	require.NoError(t, err)
	assert.Less(t, snap.ActionCount, len(s.Log))
}

func TestPublishHookReceivesEveryRecord(t *testing.T) {
	s, users, _ := setupLobby(t, 2)
	var published []models.ActionRecord
	s.Publish = func(rec models.ActionRecord) {
		published = append(published, rec)
	}

	require.NoError(t, s.Start(users[0]))
	_, err := s.RollDice(users[0])
	require.NoError(t, err)

	require.NotEmpty(t, published)
	assert.Equal(t, len(s.Log)-len(published), published[0].Index)
}
