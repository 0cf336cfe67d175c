package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/puzzlewager/puzzlewager/internal/puzzle"
)

// demoScope is the reserved chain scope for wallet-less demo sessions.
const demoScope = "demo"

// SessionRepository persists puzzle sessions in Postgres, scoped by chain
// id so one database serves multiple deployments. Rows are never deleted,
// only superseded by resets.
type SessionRepository struct {
	pool    *pgxpool.Pool
	chainID string
}

// NewSessionRepository constructs a session repository for one chain scope.
func NewSessionRepository(pool *pgxpool.Pool, chainID string) *SessionRepository {
	return &SessionRepository{pool: pool, chainID: chainID}
}

func (r *SessionRepository) scope(demo bool) string {
	if demo {
		return demoScope
	}
	return r.chainID
}

// Get fetches one (match, player) session row.
func (r *SessionRepository) Get(ctx context.Context, matchID, player string, demo bool) (puzzle.SessionRecord, error) {
	var rec puzzle.SessionRecord
	row := r.pool.QueryRow(ctx,
		`SELECT match_id, player, state, reset_count
		   FROM puzzle_sessions
		  WHERE chain_id = $1 AND match_id = $2 AND player = $3`,
		r.scope(demo), matchID, player)
	if err := row.Scan(&rec.MatchID, &rec.Player, &rec.State, &rec.ResetCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, puzzle.ErrNotFound
		}
		return rec, fmt.Errorf("select session: %w", err)
	}
	return rec, nil
}

// CreateDuel inserts both players' rows with a shared board state. The
// insert is conflict-tolerant: a concurrent creator's rows win and this
// call still succeeds, matching at-most-one-creation semantics.
func (r *SessionRepository) CreateDuel(ctx context.Context, matchID, p1, p2, state string, resetCount uint32) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create duel: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, player := range []string{p1, p2} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO puzzle_sessions (chain_id, match_id, player, state, reset_count)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (chain_id, match_id, player) DO NOTHING`,
			r.chainID, matchID, player, state, resetCount); err != nil {
			return fmt.Errorf("insert duel session: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// CreateDemo inserts a single wallet-less demo row.
func (r *SessionRepository) CreateDemo(ctx context.Context, matchID, state string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO puzzle_sessions (chain_id, match_id, player, state, reset_count)
		 VALUES ($1, $2, '', $3, 0)
		 ON CONFLICT (chain_id, match_id, player) DO NOTHING`,
		demoScope, matchID, state)
	if err != nil {
		return fmt.Errorf("insert demo session: %w", err)
	}
	return nil
}

// SetState replaces one row's board state.
func (r *SessionRepository) SetState(ctx context.Context, matchID, player string, demo bool, state string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE puzzle_sessions
		    SET state = $4, updated_at = now()
		  WHERE chain_id = $1 AND match_id = $2 AND player = $3`,
		r.scope(demo), matchID, player, state)
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return puzzle.ErrNotFound
	}
	return nil
}

// Reset clears every row of a match in one conditional update. The
// reset_count < $3 guard enforces the rematch authorization in storage:
// a caller whose count already caught up, or who lost a race to a
// concurrent reset, affects zero rows and gets applied=false. Demo rows
// take the same path so their reset count advances every cycle.
func (r *SessionRepository) Reset(ctx context.Context, matchID, state string, newResetCount uint32, demo bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE puzzle_sessions
		    SET state = $2, reset_count = $3, updated_at = now()
		  WHERE chain_id = $1 AND match_id = $4 AND reset_count < $3`,
		r.scope(demo), state, newResetCount, matchID)
	if err != nil {
		return false, fmt.Errorf("reset sessions: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
