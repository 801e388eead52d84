package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/brokeio/brokeio/internal/auth"
	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/engine"
)

// ensureGuest resolves the caller's identity from the auth_token cookie,
// minting a fresh guest id and cookie when the token is missing or invalid.
func ensureGuest(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if c, err := r.Cookie("auth_token"); err == nil {
		if userID, err := auth.VerifyToken(c.Value); err == nil {
			return userID, nil
		}
	}

	userID := uuid.New()
	token, err := auth.CreateToken(userID)
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// httpStatus maps engine sentinel errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrSessionNotFound),
		errors.Is(err, engine.ErrTradeNotFound),
		errors.Is(err, engine.ErrNoAuction),
		errors.Is(err, catalog.ErrUnknownBoard):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPermission),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrNotSeated):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, engine.ErrSessionNotJoinable),
		errors.Is(err, engine.ErrSessionFull),
		errors.Is(err, engine.ErrAlreadyJoined),
		errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrAlreadyOwned),
		errors.Is(err, engine.ErrNotOwner),
		errors.Is(err, engine.ErrMortgageState),
		errors.Is(err, engine.ErrDevelopedTile),
		errors.Is(err, engine.ErrTradeNotPending),
		errors.Is(err, engine.ErrAuctionNotActive),
		errors.Is(err, engine.ErrAuctionInProgress),
		errors.Is(err, engine.ErrWrongGame):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, engine.ErrNotProperty),
		errors.Is(err, engine.ErrNoMonopoly),
		errors.Is(err, engine.ErrDevelopRange),
		errors.Is(err, engine.ErrInvalidTrade),
		errors.Is(err, engine.ErrBidTooLow),
		errors.Is(err, engine.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
