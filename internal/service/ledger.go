// Package service provides business logic on top of the spin ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gamble3000/internal/model"
	"gamble3000/internal/pkg/db"
	"gamble3000/internal/repository"
)

// DefaultWriteTimeout bounds a single ledger write.
const DefaultWriteTimeout = 3 * time.Second

// ErrInvalidRecord is returned for records that cannot belong to a session.
var ErrInvalidRecord = errors.New("invalid spin record")

// SpinStore is the persistence the ledger needs.
type SpinStore interface {
	Create(ctx context.Context, rec *model.SpinRecord) (*model.SpinRecord, error)
	GetSessionStats(ctx context.Context, sessionID string) (*model.SessionStats, error)
}

// LedgerService records settled spins. It never feeds a balance back into a
// session; the in-memory balance is authoritative.
type LedgerService struct {
	store   SpinStore
	timeout time.Duration
}

// NewLedgerService creates a new LedgerService instance.
// A non-positive timeout falls back to DefaultWriteTimeout.
func NewLedgerService(store SpinStore, timeout time.Duration) *LedgerService {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &LedgerService{
		store:   store,
		timeout: timeout,
	}
}

// Record appends a settled spin to the ledger.
func (s *LedgerService) Record(ctx context.Context, rec *model.SpinRecord) error {
	if rec == nil || rec.SessionID == "" || rec.Seq < 1 || rec.Bet < 0 || rec.Payout < 0 {
		return ErrInvalidRecord
	}

	ctx, cancel := db.WithTimeout(ctx, s.timeout)
	defer cancel()

	saved, err := s.store.Create(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to record spin: %w", err)
	}

	log.Debug().
		Int64("id", saved.ID).
		Str("session_id", saved.SessionID).
		Int("seq", saved.Seq).
		Int64("net", saved.Net()).
		Msg("Spin recorded")
	return nil
}

// SessionStats returns the aggregated ledger for a session. A session that
// recorded no spins yields zero stats rather than an error.
func (s *LedgerService) SessionStats(ctx context.Context, sessionID string) (*model.SessionStats, error) {
	stats, err := s.store.GetSessionStats(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return &model.SessionStats{SessionID: sessionID}, nil
		}
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}
	return stats, nil
}
