package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository stores per-user match display settings (currently
// just the archived flag that hides finished matches from the default
// list).
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository constructs a settings repository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// SetArchived upserts the archived flag for one (match, player) pair.
func (r *SettingsRepository) SetArchived(ctx context.Context, matchID, player string, archived bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_game_settings (match_id, player, archived)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (match_id, player) DO UPDATE SET archived = EXCLUDED.archived`,
		matchID, player, archived)
	if err != nil {
		return fmt.Errorf("upsert game settings: %w", err)
	}
	return nil
}

// ListArchived returns the match ids a player has archived.
func (r *SettingsRepository) ListArchived(ctx context.Context, player string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT match_id FROM user_game_settings WHERE player = $1 AND archived`,
		player)
	if err != nil {
		return nil, fmt.Errorf("select archived matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan archived match: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
