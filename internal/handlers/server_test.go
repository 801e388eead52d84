// internal/handlers/server_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeio/brokeio/internal/auth"
	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/models"
	"github.com/brokeio/brokeio/internal/registry"
)

func newTestServer(t *testing.T) (*Server, *http.ServeMux, uuid.UUID) {
	t.Helper()
	auth.Init()

	cat := catalog.New()
	board := catalog.ClassicBoard()
	require.NoError(t, cat.AddBoard(board))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	reg := registry.New(cat, nil)
	srv := NewServer(reg, logger)
	return srv, srv.Routes(), board.ID
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.CreateToken(userID)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	} else {
		buf.WriteString("{}")
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

// TestSessionHTTPFlow drives a full create -> join -> ready -> start -> roll
// round trip through the HTTP surface.
func TestSessionHTTPFlow(t *testing.T) {
	_, mux, boardID := newTestServer(t)

	owner := uuid.New()
	guest := uuid.New()
	ownerToken := tokenFor(t, owner)
	guestToken := tokenFor(t, guest)

	// create
	w := doJSON(t, mux, "POST", "/sessions", ownerToken, map[string]interface{}{
		"board_id":     boardID,
		"name":         "friday game",
		"mode":         "FRIENDS",
		"max_players":  4,
		"display_name": "alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.NotEmpty(t, snap.PublicID)

	base := "/session/" + snap.PublicID

	// join
	w = doJSON(t, mux, "POST", base+"/join", guestToken, map[string]string{"display_name": "bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// both ready
	w = doJSON(t, mux, "POST", base+"/ready", ownerToken, map[string]bool{"ready": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(t, mux, "POST", base+"/ready", guestToken, map[string]bool{"ready": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// guest cannot start
	w = doJSON(t, mux, "POST", base+"/start", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// owner starts
	w = doJSON(t, mux, "POST", base+"/start", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.StatusActive, snap.Status)
	require.NotNil(t, snap.Turn)

	// seat 0 rolls
	w = doJSON(t, mux, "POST", base+"/roll", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var roll engine.RollResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roll))
	assert.NotZero(t, roll.Dice.Total())

	// rolling twice is a phase conflict
	w = doJSON(t, mux, "POST", base+"/roll", ownerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// out-of-turn roll is forbidden
	w = doJSON(t, mux, "POST", base+"/end-turn", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// state is readable by anyone with the link
	w = doJSON(t, mux, "GET", base, guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// action log paging
	w = doJSON(t, mux, "GET", base+"/actions?from=0", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []models.ActionRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.NotEmpty(t, records)
}

func TestUnknownSessionReturns404(t *testing.T) {
	_, mux, _ := newTestServer(t)
	token := tokenFor(t, uuid.New())

	w := doJSON(t, mux, "GET", "/session/zzzzzz", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWithUnknownBoardReturns404(t *testing.T) {
	_, mux, _ := newTestServer(t)
	token := tokenFor(t, uuid.New())

	w := doJSON(t, mux, "POST", "/sessions", token, map[string]interface{}{
		"board_id": uuid.New(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuestCookieIsMinted(t *testing.T) {
	_, mux, _ := newTestServer(t)

	// no token at all: the server mints a guest identity
	w := doJSON(t, mux, "GET", "/sessions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var minted bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			minted = true
			_, err := auth.VerifyToken(c.Value)
			assert.NoError(t, err)
		}
	}
	assert.True(t, minted, "expected an auth_token cookie")
}

func TestListBoards(t *testing.T) {
	_, mux, boardID := newTestServer(t)
	w := doJSON(t, mux, "GET", "/boards", tokenFor(t, uuid.New()), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var boards []models.Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, boardID, boards[0].ID)
	assert.Equal(t, 40, boards[0].TrackLength())
}
