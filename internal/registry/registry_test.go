// internal/registry/registry_test.go
package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/models"
)

func newTestRegistry(t *testing.T) (*Registry, uuid.UUID) {
	t.Helper()
	cat := catalog.New()
	board := catalog.ClassicBoard()
	require.NoError(t, cat.AddBoard(board))
	return New(cat, nil), board.ID
}

func create(t *testing.T, r *Registry, boardID uuid.UUID, owner uuid.UUID, mode models.SessionMode) *engine.Session {
	t.Helper()
	s, err := r.CreateSession(context.Background(), owner, CreateParams{
		BoardID:     boardID,
		Name:        "test table",
		Mode:        mode,
		MaxPlayers:  4,
		DisplayName: "owner",
	})
	require.NoError(t, err)
	return s
}

func TestCreateSessionSeatsOwner(t *testing.T) {
	r, boardID := newTestRegistry(t)
	owner := uuid.New()

	s := create(t, r, boardID, owner, models.ModeFriends)
	require.Len(t, s.Players, 1)
	assert.Equal(t, 0, s.Players[0].SeatIndex)
	assert.True(t, s.Players[0].IsOwner)
	assert.Equal(t, models.StatusLobby, s.Status)
	assert.Nil(t, s.DrawCard, "no deck configured on this registry")
}

func TestCreateSessionUnknownBoard(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.CreateSession(context.Background(), uuid.New(), CreateParams{BoardID: uuid.New()})
	assert.ErrorIs(t, err, catalog.ErrUnknownBoard)
}

func TestResolveByIDAndPublicID(t *testing.T) {
	r, boardID := newTestRegistry(t)
	s := create(t, r, boardID, uuid.New(), models.ModeFriends)

	got, err := r.Resolve(s.ID.String())
	require.NoError(t, err)
	assert.Same(t, s, got)

	got, err = r.Resolve(s.PublicID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Resolve("zzzzzz")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	_, err = r.Resolve(uuid.New().String())
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestJoinAndStartThroughRegistry(t *testing.T) {
	r, boardID := newTestRegistry(t)
	owner := uuid.New()
	s := create(t, r, boardID, owner, models.ModeFriends)

	guest := uuid.New()
	_, seat, err := r.Join(s.PublicID, guest, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, seat.SeatIndex)

	require.NoError(t, s.SetReady(owner, true))
	require.NoError(t, s.SetReady(guest, true))

	started, err := r.Start(s.PublicID, owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, started.Status)
}

func TestListShowsOnlyOnlineLobbies(t *testing.T) {
	r, boardID := newTestRegistry(t)
	owner := uuid.New()

	create(t, r, boardID, owner, models.ModeFriends)
	online := create(t, r, boardID, uuid.New(), models.ModeOnline)

	// an online session that started no longer lists
	active := create(t, r, boardID, uuid.New(), models.ModeOnline)
	second := uuid.New()
	_, _, err := r.Join(active.PublicID, second, "guest")
	require.NoError(t, err)
	require.NoError(t, active.SetReady(active.OwnerID, true))
	require.NoError(t, active.SetReady(second, true))
	_, err = r.Start(active.PublicID, active.OwnerID)
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, online.ID, list[0].ID)
}

func TestRegistryInstallsCardDeck(t *testing.T) {
	cat := catalog.New()
	board := catalog.ClassicBoard()
	require.NoError(t, cat.AddBoard(board))
	r := New(cat, nil)
	r.Cards = catalog.StandardCards()

	s := create(t, r, board.ID, uuid.New(), models.ModeFriends)
	require.NotNil(t, s.DrawCard)
	card := s.DrawCard(models.TileChance)
	require.NotNil(t, card)
	assert.NotEmpty(t, card.Title)
}
