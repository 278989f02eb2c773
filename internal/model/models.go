// Package model defines the data models for the slot machine ledger.
package model

import "time"

// SpinRecord is one settled spin as written to the ledger.
type SpinRecord struct {
	ID           int64     `db:"id"`
	SessionID    string    `db:"session_id"`
	Seq          int       `db:"seq"`
	Bet          int64     `db:"bet"`
	Reels        [3]string `db:"-"`
	Outcome      string    `db:"outcome"`
	Symbol       string    `db:"symbol"`
	Payout       int64     `db:"payout"`
	BalanceAfter int64     `db:"balance_after"`
	CreatedAt    time.Time `db:"created_at"`
}

// Net returns the balance change caused by the spin.
func (r *SpinRecord) Net() int64 {
	return r.Payout - r.Bet
}

// SessionStats aggregates the ledger rows of one session.
type SessionStats struct {
	SessionID string `db:"session_id"`
	Spins     int64  `db:"spins"`
	Wagered   int64  `db:"wagered"`
	Won       int64  `db:"won"`
	Wins      int64  `db:"wins"`
}

// Net returns total winnings minus total wagers.
func (s *SessionStats) Net() int64 {
	return s.Won - s.Wagered
}

// Outcome labels stored in the ledger.
const (
	OutcomeNoWin        = "no_win"        // Nothing paid
	OutcomeThreeOfAKind = "three_of_kind" // 3-of-a-kind
	OutcomeConsolation  = "consolation"   // Exactly two consolation symbols
)
