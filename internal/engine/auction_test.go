// internal/engine/auction_test.go
package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeio/brokeio/internal/models"
)

func TestAuctionLifecycle(t *testing.T) {
	s, users, mb := setupTestSession(t, 3)

	a, err := s.StartAuction(users[0], 1, 50)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionActive, a.Status)
	assert.Equal(t, int64(50), a.CurrentPrice)
	assert.Nil(t, a.HighestSeat)

	// at or under the floor is rejected
	_, err = s.PlaceBid(users[1], a.ID, 40)
	assert.ErrorIs(t, err, ErrBidTooLow)
	_, err = s.PlaceBid(users[1], a.ID, 50)
	assert.ErrorIs(t, err, ErrBidTooLow)

	afterBid, err := s.PlaceBid(users[1], a.ID, 60)
	require.NoError(t, err)
	require.NotNil(t, afterBid.HighestSeat)
	assert.Equal(t, 1, *afterBid.HighestSeat)
	assert.Equal(t, int64(60), afterBid.CurrentPrice)

	// raising your own bid is allowed, undercutting is not
	_, err = s.PlaceBid(users[2], a.ID, 55)
	assert.ErrorIs(t, err, ErrBidTooLow)
	_, err = s.PlaceBid(users[2], a.ID, 80)
	require.NoError(t, err)

	got, err := s.EndAuction(users[0], a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionEnded, got.Status)
	require.NotNil(t, got.EndedAt)

	// the winner paid and owns the tile
	winner := s.seatedBy(users[2])
	assert.Equal(t, s.StartingCash-80, winner.Cash)
	require.NotNil(t, s.Tiles[1].OwnerSeat)
	assert.Equal(t, winner.SeatIndex, *s.Tiles[1].OwnerSeat)

	assert.NotEmpty(t, mb.eventsOfType(EventAuctionStarted))
	assert.Len(t, mb.eventsOfType(EventBidPlaced), 2)
	assert.NotEmpty(t, mb.eventsOfType(EventAuctionEnded))
}

func TestAuctionReturnsDetachedState(t *testing.T) {
	s, users, _ := setupTestSession(t, 3)
	a, err := s.StartAuction(users[0], 1, 50)
	require.NoError(t, err)

	first, err := s.PlaceBid(users[1], a.ID, 60)
	require.NoError(t, err)
	_, err = s.PlaceBid(users[2], a.ID, 80)
	require.NoError(t, err)

	// the value handed back earlier does not follow later mutations
	assert.Equal(t, int64(60), first.CurrentPrice)
	require.Len(t, first.Bids, 1)
	assert.Equal(t, 1, *first.HighestSeat)

	// nor can callers reach live state through it
	first.Bids[0].Amount = 9999
	first.CurrentPrice = 9999
	assert.Equal(t, int64(60), s.Auction.Bids[0].Amount)
	assert.Equal(t, int64(80), s.Auction.CurrentPrice)
}

func TestEndAuctionIsIdempotent(t *testing.T) {
	s, users, _ := setupTestSession(t, 2)
	a, err := s.StartAuction(users[0], 1, 50)
	require.NoError(t, err)
	_, err = s.PlaceBid(users[1], a.ID, 60)
	require.NoError(t, err)

	first, err := s.EndAuction(users[0], a.ID)
	require.NoError(t, err)
	balanceAfter := s.seatedBy(users[1]).Cash

	second, err := s.EndAuction(users[0], a.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, balanceAfter, s.seatedBy(users[1]).Cash, "settlement happens once")
}

func TestAuctionWithoutBidsEndsUnsold(t *testing.T) {
	s, users, _ := setupTestSession(t, 2)
	a, err := s.StartAuction(users[0], 1, 50)
	require.NoError(t, err)

	got, err := s.EndAuction(users[0], a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionEnded, got.Status)
	assert.Nil(t, s.Tiles[1].OwnerSeat)
}

func TestAuctionSkipsSettlementForBrokeWinner(t *testing.T) {
	s, users, _ := setupTestSession(t, 2)
	a, err := s.StartAuction(users[0], 1, 50)
	require.NoError(t, err)
	_, err = s.PlaceBid(users[1], a.ID, 60)
	require.NoError(t, err)

	// the winner's funds drain between bid and close
	s.seatedBy(users[1]).Cash = 10

	got, err := s.EndAuction(users[0], a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionEnded, got.Status)
	assert.Nil(t, s.Tiles[1].OwnerSeat, "no sale without funds")
	assert.Equal(t, int64(10), s.seatedBy(users[1]).Cash)
}

func TestAuctionGuards(t *testing.T) {
	s, users, _ := setupTestSession(t, 2)

	_, err := s.StartAuction(users[0], 0, 50)
	assert.ErrorIs(t, err, ErrNotProperty)

	seat := 1
	s.Tiles[3].OwnerSeat = &seat
	_, err = s.StartAuction(users[0], 3, 50)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	a, err := s.StartAuction(users[0], 1, 50)
	require.NoError(t, err)

	// one auction at a time
	_, err = s.StartAuction(users[0], 6, 50)
	assert.ErrorIs(t, err, ErrAuctionInProgress)

	// buying the tile under auction is blocked
	_, err = s.PurchaseTile(users[1], 1)
	assert.ErrorIs(t, err, ErrAuctionInProgress)

	// unknown auction ids
	_, err = s.PlaceBid(users[1], uuid.New(), 60)
	assert.ErrorIs(t, err, ErrWrongGame)
	_, err = s.EndAuction(users[0], uuid.New())
	assert.ErrorIs(t, err, ErrNoAuction)

	// bids above your balance are rejected at bid time
	s.seatedBy(users[1]).Cash = 55
	_, err = s.PlaceBid(users[1], a.ID, 60)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCancelAuction(t *testing.T) {
	s, users, _ := setupTestSession(t, 3)
	a, err := s.StartAuction(users[1], 1, 50)
	require.NoError(t, err)

	// a bystander may not cancel
	_, err = s.CancelAuction(users[2], a.ID)
	assert.ErrorIs(t, err, ErrPermission)

	got, err := s.CancelAuction(users[0], a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionCancelled, got.Status)
	assert.Nil(t, s.Tiles[1].OwnerSeat)

	_, err = s.CancelAuction(users[0], a.ID)
	assert.ErrorIs(t, err, ErrAuctionNotActive)
}
