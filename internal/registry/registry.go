// internal/registry/registry.go
package registry

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/brokeio/brokeio/internal/catalog"
	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/models"
)

// Persister writes durable snapshots of session lifecycle milestones. The
// in-memory session stays authoritative; persistence is best-effort and
// asynchronous.
type Persister interface {
	SaveSessionCreated(ctx context.Context, snap engine.Snapshot) error
	SaveSeat(ctx context.Context, sessionID uuid.UUID, p models.SeatedPlayer) error
	SaveSessionStarted(ctx context.Context, snap engine.Snapshot) error
	SaveTurn(ctx context.Context, sessionID uuid.UUID, t models.Turn) error
	SaveTrade(ctx context.Context, sessionID uuid.UUID, t models.Trade) error
	SaveBid(ctx context.Context, sessionID, auctionID uuid.UUID, position int, b models.Bid) error
	SaveSessionFinished(ctx context.Context, snap engine.Snapshot) error
}

// Registry owns the set of live sessions. It creates them from catalog
// boards, resolves lookups by id or public id, and fans lifecycle milestones
// out to the persister.
type Registry struct {
	catalog *catalog.Catalog
	store   *engine.SessionStore
	repo    Persister // nil disables persistence

	// Cards is the shared chance/treasure deck dealt into every new session.
	Cards []models.CardEffect
	// Publish is installed as each new session's action queue hook.
	Publish func(rec models.ActionRecord)
	// OnCreate lets the transport layer attach broadcast hooks before the
	// session is visible to anyone.
	OnCreate func(s *engine.Session)
}

func New(cat *catalog.Catalog, repo Persister) *Registry {
	return &Registry{
		catalog: cat,
		store:   engine.NewSessionStore(),
		repo:    repo,
	}
}

// CreateParams carries the owner-chosen settings for a new session.
type CreateParams struct {
	BoardID     uuid.UUID
	Name        string
	Mode        models.SessionMode
	MaxPlayers  int
	DisplayName string
}

// CreateSession builds a lobby session on the requested board and seats the
// owner at seat 0.
func (r *Registry) CreateSession(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*engine.Session, error) {
	board, err := r.catalog.Board(params.BoardID)
	if err != nil {
		return nil, err
	}

	s := engine.NewSession(board, ownerID, params.Name, params.Mode, params.MaxPlayers)
	s.Publish = r.Publish
	s.OnFinish = r.finished
	if len(r.Cards) > 0 {
		deck := r.Cards
		s.DrawCard = func(models.TileType) *models.CardEffect {
			card := deck[rand.Intn(len(deck))]
			return &card
		}
	}
	if r.OnCreate != nil {
		r.OnCreate(s)
	}
	if _, err := s.Join(ownerID, params.DisplayName); err != nil {
		return nil, err
	}
	r.store.Add(s)

	r.persist(func(ctx context.Context) error {
		return r.repo.SaveSessionCreated(ctx, s.Snapshot())
	})
	log.WithFields(log.Fields{"session": s.PublicID, "board": board.Name, "owner": ownerID}).Info("session created")
	return s, nil
}

// Get returns the live session with the given internal id.
func (r *Registry) Get(id uuid.UUID) (*engine.Session, error) {
	s, ok := r.store.Get(id)
	if !ok {
		return nil, engine.ErrSessionNotFound
	}
	return s, nil
}

// Resolve accepts either an internal uuid or a shareable public id.
func (r *Registry) Resolve(ref string) (*engine.Session, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return r.Get(id)
	}
	s, ok := r.store.GetByPublicID(ref)
	if !ok {
		return nil, engine.ErrSessionNotFound
	}
	return s, nil
}

// Join seats a user and persists the seat.
func (r *Registry) Join(ref string, userID uuid.UUID, displayName string) (*engine.Session, *models.SeatedPlayer, error) {
	s, err := r.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Join(userID, displayName)
	if err != nil {
		return nil, nil, err
	}
	seat := *p
	r.persist(func(ctx context.Context) error {
		return r.repo.SaveSeat(ctx, s.ID, seat)
	})
	return s, p, nil
}

// Start activates the session and persists the initial board snapshot.
func (r *Registry) Start(ref string, requester uuid.UUID) (*engine.Session, error) {
	s, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if err := s.Start(requester); err != nil {
		return nil, err
	}
	r.persist(func(ctx context.Context) error {
		return r.repo.SaveSessionStarted(ctx, s.Snapshot())
	})
	return s, nil
}

// PersistTurn records a completed turn milestone through the persister.
func (r *Registry) PersistTurn(sessionID uuid.UUID, t models.Turn) {
	r.persist(func(ctx context.Context) error {
		return r.repo.SaveTurn(ctx, sessionID, t)
	})
}

// PersistTrade upserts a trade row whenever its status changes.
func (r *Registry) PersistTrade(sessionID uuid.UUID, t models.Trade) {
	r.persist(func(ctx context.Context) error {
		return r.repo.SaveTrade(ctx, sessionID, t)
	})
}

// PersistBid appends one accepted bid row.
func (r *Registry) PersistBid(sessionID, auctionID uuid.UUID, position int, b models.Bid) {
	r.persist(func(ctx context.Context) error {
		return r.repo.SaveBid(ctx, sessionID, auctionID, position, b)
	})
}

// List returns snapshots of joinable public lobbies, newest first.
func (r *Registry) List() []engine.Snapshot {
	var out []engine.Snapshot
	r.store.ForEach(func(s *engine.Session) {
		snap := s.Snapshot()
		if snap.Mode == models.ModeOnline && snap.Status == models.StatusLobby {
			out = append(out, snap)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Boards exposes the catalog for the transport layer.
func (r *Registry) Boards() []*models.Board {
	return r.catalog.List()
}

// Sweep pauses active sessions idle longer than maxIdle and drops finished
// ones older than retainFinished.
func (r *Registry) Sweep(maxIdle, retainFinished time.Duration) {
	now := time.Now()
	r.store.ForEach(func(s *engine.Session) {
		snap := s.Snapshot()
		switch snap.Status {
		case models.StatusActive:
			if snap.Turn != nil && now.Sub(snap.Turn.StartedAt) > maxIdle {
				if err := s.Pause(uuid.Nil); err == nil {
					log.WithField("session", snap.PublicID).Info("idle session paused")
				}
			}
		case models.StatusFinished:
			if snap.FinishedAt != nil && now.Sub(*snap.FinishedAt) > retainFinished {
				r.store.Delete(snap.ID)
			}
		}
	})
}

func (r *Registry) finished(s *engine.Session, winnerSeat int) {
	r.persist(func(ctx context.Context) error {
		return r.repo.SaveSessionFinished(ctx, s.Snapshot())
	})
}

// persist runs fn on a short background deadline when a persister is wired.
func (r *Registry) persist(fn func(ctx context.Context) error) {
	if r.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.WithError(err).Warn("session persistence failed")
		}
	}()
}
