// internal/database/repo.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokeio/brokeio/internal/engine"
	"github.com/brokeio/brokeio/internal/models"
)

// Repo persists session lifecycle milestones and the action log. Writes that
// touch more than one row run inside a single transaction so a snapshot is
// either fully recorded or not at all.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// SaveSessionCreated upserts the session row in its lobby form.
func (r *Repo) SaveSessionCreated(ctx context.Context, snap engine.Snapshot) error {
	q := `
		INSERT INTO sessions (id, public_id, name, board_id, mode, status, max_players, starting_cash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, e := tx.Exec(ctx, q,
			snap.ID, snap.PublicID, snap.Name, snap.BoardID, snap.Mode,
			snap.Status, snap.MaxPlayers, snap.StartingCash, snap.CreatedAt,
		); e != nil {
			return e
		}
		return upsertSeats(ctx, tx, snap.ID, snap.Players)
	})
	if err != nil {
		return fmt.Errorf("tx save session created: %w", err)
	}
	return nil
}

// SaveSeat upserts a single seat row.
func (r *Repo) SaveSeat(ctx context.Context, sessionID uuid.UUID, p models.SeatedPlayer) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return upsertSeats(ctx, tx, sessionID, []models.SeatedPlayer{p})
	})
}

func upsertSeats(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, players []models.SeatedPlayer) error {
	q := `
		INSERT INTO session_players (session_id, seat_index, user_id, display_name, cash, position, in_jail, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, seat_index)
		DO UPDATE SET user_id=$3, display_name=$4, cash=$5, position=$6, in_jail=$7, is_active=$8
	`
	for _, p := range players {
		if _, e := tx.Exec(ctx, q, sessionID, p.SeatIndex, p.UserID, p.DisplayName, p.Cash, p.Position, p.InJail, p.IsActive); e != nil {
			return e
		}
	}
	return nil
}

// SaveSessionStarted marks the session active and bulk-inserts the initial
// tile ledger, all in one transaction.
func (r *Repo) SaveSessionStarted(ctx context.Context, snap engine.Snapshot) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `UPDATE sessions SET status=$1, started_at=$2 WHERE id=$3`
		if _, e := tx.Exec(ctx, q, snap.Status, snap.StartedAt, snap.ID); e != nil {
			return e
		}
		tileQ := `
			INSERT INTO session_tiles (session_id, position, owner_seat, level, mortgaged)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (session_id, position)
			DO UPDATE SET owner_seat=$3, level=$4, mortgaged=$5
		`
		for _, t := range snap.Tiles {
			if _, e := tx.Exec(ctx, tileQ, snap.ID, t.Position, t.OwnerSeat, t.Level, t.Mortgaged); e != nil {
				return e
			}
		}
		return upsertSeats(ctx, tx, snap.ID, snap.Players)
	})
	if err != nil {
		return fmt.Errorf("tx save session started: %w", err)
	}
	return nil
}

// SaveTurn upserts one turn row.
func (r *Repo) SaveTurn(ctx context.Context, sessionID uuid.UUID, t models.Turn) error {
	q := `
		INSERT INTO session_turns (session_id, turn_number, round_number, seat_index, phase, complete, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, turn_number)
		DO UPDATE SET phase=$5, complete=$6, completed_at=$8
	`
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, sessionID, t.Number, t.Round, t.Seat, t.Phase, t.Complete, t.StartedAt, t.CompletedAt)
		return e
	})
}

// SaveTrade upserts a trade with its terms serialized as JSON.
func (r *Repo) SaveTrade(ctx context.Context, sessionID uuid.UUID, t models.Trade) error {
	offer, err := json.Marshal(t.Offer)
	if err != nil {
		return fmt.Errorf("marshal trade offer: %w", err)
	}
	request, err := json.Marshal(t.Request)
	if err != nil {
		return fmt.Errorf("marshal trade request: %w", err)
	}
	q := `
		INSERT INTO session_trades (id, session_id, offered_by_seat, offered_to_seat, offer, request, status, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET status=$7, resolved_at=$9
	`
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, t.ID, sessionID, t.OfferedBySeat, t.OfferedToSeat, offer, request, t.Status, t.CreatedAt, t.ResolvedAt)
		return e
	})
}

// SaveBid appends one bid row for an auction.
func (r *Repo) SaveBid(ctx context.Context, sessionID, auctionID uuid.UUID, position int, b models.Bid) error {
	q := `
		INSERT INTO session_bids (auction_id, session_id, position, seat_index, amount, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, q, auctionID, sessionID, position, b.Seat, b.Amount, b.PlacedAt)
	return err
}

// SaveSessionFinished records the terminal snapshot: winner, final balances
// and the final tile ledger.
func (r *Repo) SaveSessionFinished(ctx context.Context, snap engine.Snapshot) error {
	final, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal final snapshot: %w", err)
	}
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE sessions
			SET status=$1, finished_at=$2, winner_seat=$3, final_state=$4
			WHERE id=$5
		`
		if _, e := tx.Exec(ctx, q, snap.Status, snap.FinishedAt, snap.WinnerSeat, final, snap.ID); e != nil {
			return e
		}
		return upsertSeats(ctx, tx, snap.ID, snap.Players)
	})
	if err != nil {
		return fmt.Errorf("tx save session finished: %w", err)
	}
	return nil
}

// MarkSessionAbandoned flips a session row to ABANDONED when it never
// reached FINISHED and its action stream went quiet.
func (r *Repo) MarkSessionAbandoned(ctx context.Context, sessionID uuid.UUID) error {
	q := `
		UPDATE sessions
		SET status = 'ABANDONED', finished_at = NOW()
		WHERE id = $1 AND status IN ('LOBBY', 'ACTIVE', 'PAUSED')
	`
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, sessionID)
		return e
	})
}

// InsertActionRecords bulk-inserts drained queue entries. Used by the
// historian; duplicate (session_id, action_index) pairs are skipped so a
// replayed batch stays idempotent.
func (r *Repo) InsertActionRecords(ctx context.Context, records []models.ActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	q := `
		INSERT INTO session_actions (session_id, action_index, turn_number, seat_index, action_type, payload, target_tile, target_seat, amount, succeeded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, action_index) DO NOTHING
	`
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			payload, e := json.Marshal(rec.Payload)
			if e != nil {
				return fmt.Errorf("marshal action payload: %w", e)
			}
			if _, e := tx.Exec(ctx, q,
				rec.SessionID, rec.Index, rec.TurnNumber, rec.Seat, rec.Type,
				payload, rec.TargetTile, rec.TargetSeat, rec.Amount, rec.Succeeded, rec.Timestamp,
			); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert action records: %w", err)
	}
	return nil
}
