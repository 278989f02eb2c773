// Package repository provides the spin ledger data access layer.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamble3000/internal/model"
)

// ErrSessionNotFound is returned when a session has no ledger rows.
var ErrSessionNotFound = errors.New("session not found")

// SpinRepository persists settled spins. The ledger is append-only and is
// never read back to restore a balance.
type SpinRepository struct {
	pool *pgxpool.Pool
}

// NewSpinRepository creates a new SpinRepository instance.
func NewSpinRepository(pool *pgxpool.Pool) *SpinRepository {
	return &SpinRepository{pool: pool}
}

// Migrate creates the ledger schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS spins (
			id BIGSERIAL PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			seq INT NOT NULL,
			bet BIGINT NOT NULL,
			reel1 VARCHAR(16) NOT NULL,
			reel2 VARCHAR(16) NOT NULL,
			reel3 VARCHAR(16) NOT NULL,
			outcome VARCHAR(32) NOT NULL,
			symbol VARCHAR(16) NOT NULL DEFAULT '',
			payout BIGINT NOT NULL,
			balance_after BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (session_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_spins_session ON spins(session_id, seq);
		CREATE INDEX IF NOT EXISTS idx_spins_created ON spins(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create spins table: %w", err)
	}
	return nil
}

// Create inserts a spin record and fills in its ID and creation time.
func (r *SpinRepository) Create(ctx context.Context, rec *model.SpinRecord) (*model.SpinRecord, error) {
	const query = `
		INSERT INTO spins (session_id, seq, bet, reel1, reel2, reel3, outcome, symbol, payout, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	out := *rec
	err := r.pool.QueryRow(ctx, query,
		rec.SessionID,
		rec.Seq,
		rec.Bet,
		rec.Reels[0],
		rec.Reels[1],
		rec.Reels[2],
		rec.Outcome,
		rec.Symbol,
		rec.Payout,
		rec.BalanceAfter,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create spin record: %w", err)
	}

	return &out, nil
}

// GetBySession retrieves a session's spins in play order.
func (r *SpinRepository) GetBySession(ctx context.Context, sessionID string, limit int) ([]*model.SpinRecord, error) {
	const query = `
		SELECT id, session_id, seq, bet, reel1, reel2, reel3, outcome, symbol, payout, balance_after, created_at
		FROM spins
		WHERE session_id = $1
		ORDER BY seq ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get spins: %w", err)
	}
	defer rows.Close()

	var records []*model.SpinRecord
	for rows.Next() {
		var rec model.SpinRecord
		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Seq,
			&rec.Bet,
			&rec.Reels[0],
			&rec.Reels[1],
			&rec.Reels[2],
			&rec.Outcome,
			&rec.Symbol,
			&rec.Payout,
			&rec.BalanceAfter,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spin: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spins: %w", err)
	}

	return records, nil
}

// GetSessionStats aggregates a session's spins.
// Returns ErrSessionNotFound if the session recorded no spins.
func (r *SpinRepository) GetSessionStats(ctx context.Context, sessionID string) (*model.SessionStats, error) {
	const query = `
		SELECT session_id, COUNT(*), SUM(bet)::BIGINT, SUM(payout)::BIGINT, COUNT(*) FILTER (WHERE payout > 0)
		FROM spins
		WHERE session_id = $1
		GROUP BY session_id
	`

	var stats model.SessionStats
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&stats.SessionID,
		&stats.Spins,
		&stats.Wagered,
		&stats.Won,
		&stats.Wins,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}

	return &stats, nil
}

// CountBySession returns the number of spins recorded for a session.
func (r *SpinRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM spins WHERE session_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count spins: %w", err)
	}
	return count, nil
}
