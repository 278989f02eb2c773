// Package session runs one player's slot machine session: it owns the
// balance and drives the bet, spin, settle loop until the player cashes out
// or can no longer cover the minimum bet.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gamble3000/internal/game/slot"
	"gamble3000/internal/model"
	"gamble3000/internal/pkg/lock"
)

// Bet rejections. These are recoverable: the session stays in AwaitingBet
// and nothing changes.
var (
	ErrMalformedBet    = errors.New("bet must be a whole number")
	ErrBetBelowMin     = errors.New("bet is below the minimum")
	ErrBetAboveMax     = errors.New("bet is above the maximum")
	ErrBetAboveBalance = errors.New("bet exceeds the current balance")
)

// Construction and lifecycle errors.
var (
	ErrNilMachine    = errors.New("machine is required")
	ErrNilInput      = errors.New("input is required")
	ErrNilOutput     = errors.New("output is required")
	ErrInvalidLimits = errors.New("invalid session limits")
	ErrTerminated    = errors.New("session already terminated")
)

// State is a session state.
type State int

const (
	StateAwaitingBet State = iota
	StateSpinning
	StateSettling
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitingBet:
		return "awaiting_bet"
	case StateSpinning:
		return "spinning"
	case StateSettling:
		return "settling"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason tells why a session terminated.
type Reason int

const (
	ReasonNone      Reason = iota // Still running
	ReasonCashedOut               // Player cashed out, or input ended
	ReasonWashedOut               // Balance fell below the minimum bet
	ReasonAborted                 // Input failed or the context was cancelled
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonCashedOut:
		return "cashed_out"
	case ReasonWashedOut:
		return "washed_out"
	case ReasonAborted:
		return "aborted"
	default:
		return "none"
	}
}

// Machine spins and scores paylines. *slot.Machine implements it.
type Machine interface {
	Spin() slot.Line
	Evaluate(line slot.Line, bet int64) (int64, slot.Outcome)
}

// Recorder receives every settled spin. Failures are logged and never stop
// play.
type Recorder interface {
	Record(ctx context.Context, rec *model.SpinRecord) error
}

// Config holds the immutable per-session limits.
type Config struct {
	ID              string // Generated when empty
	StartingBalance int64
	MinBet          int64
	MaxBet          int64
}

// ConfigFrom takes the session limits from a machine configuration.
func ConfigFrom(c slot.Config) Config {
	return Config{
		StartingBalance: c.StartingBalance,
		MinBet:          c.MinBet,
		MaxBet:          c.MaxBet,
	}
}

// Dependencies holds the collaborators of a session.
type Dependencies struct {
	Machine  Machine
	Input    Input
	Output   Output
	Recorder Recorder          // Optional
	Locks    *lock.SessionLock // Optional; defaults to lock.DefaultSessionLock
}

// Summary is the final account of a session.
type Summary struct {
	SessionID    string
	Reason       Reason
	FinalBalance int64
	Spins        int
	Wagered      int64
	Won          int64
}

// Net returns the balance change over the session.
func (s Summary) Net() int64 {
	return s.Won - s.Wagered
}

// Session is one player's run at the machine. Its balance and random source
// are never shared with another session.
type Session struct {
	cfg      Config
	machine  Machine
	in       Input
	out      Output
	recorder Recorder
	locks    *lock.SessionLock
	logger   zerolog.Logger

	state   State
	balance int64
	bet     int64
	line    slot.Line
	summary Summary
}

// New creates a session in AwaitingBet with the starting balance.
func New(cfg Config, deps *Dependencies) (*Session, error) {
	if deps == nil || deps.Machine == nil {
		return nil, ErrNilMachine
	}
	if deps.Input == nil {
		return nil, ErrNilInput
	}
	if deps.Output == nil {
		return nil, ErrNilOutput
	}
	if cfg.MinBet < 1 || cfg.MaxBet < cfg.MinBet || cfg.StartingBalance < 0 {
		return nil, fmt.Errorf("%w: balance %d, bets [%d, %d]",
			ErrInvalidLimits, cfg.StartingBalance, cfg.MinBet, cfg.MaxBet)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	locks := deps.Locks
	if locks == nil {
		locks = lock.DefaultSessionLock
	}

	return &Session{
		cfg:      cfg,
		machine:  deps.Machine,
		in:       deps.Input,
		out:      deps.Output,
		recorder: deps.Recorder,
		locks:    locks,
		logger:   log.With().Str("session_id", cfg.ID).Logger(),
		state:    StateAwaitingBet,
		balance:  cfg.StartingBalance,
		summary:  Summary{SessionID: cfg.ID},
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.cfg.ID
}

// Balance returns the current balance. Safe to call from other goroutines.
func (s *Session) Balance() int64 {
	var b int64
	_ = s.locks.WithLock(s.cfg.ID, func() error {
		b = s.balance
		return nil
	})
	return b
}

// State returns the current state. Safe to call from other goroutines.
func (s *Session) State() State {
	var st State
	_ = s.locks.WithLock(s.cfg.ID, func() error {
		st = s.state
		return nil
	})
	return st
}

// ValidateBet checks a wager against the bet range and the current balance.
func (s *Session) ValidateBet(bet int64) error {
	if bet < s.cfg.MinBet {
		return fmt.Errorf("%w: %d < %d", ErrBetBelowMin, bet, s.cfg.MinBet)
	}
	if bet > s.cfg.MaxBet {
		return fmt.Errorf("%w: %d > %d", ErrBetAboveMax, bet, s.cfg.MaxBet)
	}
	if balance := s.Balance(); bet > balance {
		return fmt.Errorf("%w: %d > %d", ErrBetAboveBalance, bet, balance)
	}
	return nil
}

// Run drives the session until it terminates and returns its summary.
// Input end-of-stream counts as a cash-out. Any other input error or a
// cancelled context aborts the session; the summary still carries the
// final balance.
func (s *Session) Run(ctx context.Context) (*Summary, error) {
	if s.State() == StateTerminated {
		return nil, ErrTerminated
	}

	balance := s.Balance()
	s.logger.Info().Int64("balance", balance).Msg("Session started")
	s.out.Emit(Event{Kind: EventStarted, Balance: balance})
	if balance < s.cfg.MinBet {
		s.terminate(ReasonWashedOut)
	}

	for {
		switch s.State() {
		case StateAwaitingBet:
			if err := ctx.Err(); err != nil {
				return s.abort(err)
			}
			cmd, err := s.in.Next(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					s.terminate(ReasonCashedOut)
					continue
				}
				return s.abort(fmt.Errorf("failed to read command: %w", err))
			}
			s.accept(cmd)

		case StateSpinning:
			s.spin()

		case StateSettling:
			s.settle(ctx)

		case StateTerminated:
			out := s.summary
			return &out, nil
		}
	}
}

// accept handles one command in AwaitingBet.
func (s *Session) accept(cmd Command) {
	switch cmd.Kind {
	case CommandCashOut:
		s.terminate(ReasonCashedOut)
	case CommandBet:
		if err := s.ValidateBet(cmd.Amount); err != nil {
			s.reject(cmd, err)
			return
		}
		s.bet = cmd.Amount
		s.setState(StateSpinning)
	default:
		s.reject(cmd, fmt.Errorf("%w: %q", ErrMalformedBet, cmd.Raw))
	}
}

func (s *Session) reject(cmd Command, err error) {
	s.logger.Debug().Err(err).Str("input", cmd.Raw).Int64("bet", cmd.Amount).Msg("Bet rejected")
	s.out.Emit(Event{Kind: EventRejected, Err: err, Bet: cmd.Amount, Balance: s.Balance()})
}

// spin debits the bet before drawing, so a payout can never fund its own bet.
func (s *Session) spin() {
	_ = s.locks.WithLock(s.cfg.ID, func() error {
		s.balance -= s.bet
		return nil
	})
	s.line = s.machine.Spin()
	s.setState(StateSettling)
}

// settle credits the payout, reports the spin and decides whether play goes on.
func (s *Session) settle(ctx context.Context) {
	payout, outcome := s.machine.Evaluate(s.line, s.bet)

	var balance int64
	_ = s.locks.WithLock(s.cfg.ID, func() error {
		s.balance += payout
		balance = s.balance
		return nil
	})

	s.summary.Spins++
	s.summary.Wagered += s.bet
	s.summary.Won += payout

	s.logger.Debug().
		Int("seq", s.summary.Spins).
		Int64("bet", s.bet).
		Str("line", s.line.String()).
		Str("outcome", outcome.String()).
		Int64("payout", payout).
		Int64("balance", balance).
		Msg("Spin settled")

	s.out.Emit(Event{
		Kind:    EventSpin,
		Bet:     s.bet,
		Line:    s.line,
		Outcome: outcome,
		Payout:  payout,
		Balance: balance,
	})
	s.record(ctx, outcome, payout, balance)

	if balance < s.cfg.MinBet {
		s.terminate(ReasonWashedOut)
		return
	}
	s.setState(StateAwaitingBet)
}

func (s *Session) record(ctx context.Context, outcome slot.Outcome, payout, balance int64) {
	if s.recorder == nil {
		return
	}
	rec := &model.SpinRecord{
		SessionID:    s.cfg.ID,
		Seq:          s.summary.Spins,
		Bet:          s.bet,
		Reels:        [3]string{string(s.line[0]), string(s.line[1]), string(s.line[2])},
		Outcome:      outcomeLabel(outcome.Kind),
		Symbol:       string(outcome.Symbol),
		Payout:       payout,
		BalanceAfter: balance,
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Int("seq", rec.Seq).Msg("Failed to record spin")
	}
}

// terminate moves to Terminated and reports the final balance.
func (s *Session) terminate(reason Reason) {
	balance := s.Balance()
	s.summary.Reason = reason
	s.summary.FinalBalance = balance
	s.setState(StateTerminated)

	kind := EventCashedOut
	if reason == ReasonWashedOut {
		kind = EventWashedOut
	}
	s.logger.Info().
		Str("reason", reason.String()).
		Int64("balance", balance).
		Int("spins", s.summary.Spins).
		Msg("Session terminated")
	s.out.Emit(Event{Kind: kind, Balance: balance})
}

func (s *Session) abort(err error) (*Summary, error) {
	s.summary.Reason = ReasonAborted
	s.summary.FinalBalance = s.Balance()
	s.setState(StateTerminated)
	s.logger.Error().Err(err).Int64("balance", s.summary.FinalBalance).Msg("Session aborted")

	out := s.summary
	return &out, err
}

func (s *Session) setState(st State) {
	_ = s.locks.WithLock(s.cfg.ID, func() error {
		s.state = st
		return nil
	})
}

func outcomeLabel(kind slot.OutcomeKind) string {
	switch kind {
	case slot.OutcomeThreeOfAKind:
		return model.OutcomeThreeOfAKind
	case slot.OutcomeConsolation:
		return model.OutcomeConsolation
	default:
		return model.OutcomeNoWin
	}
}
