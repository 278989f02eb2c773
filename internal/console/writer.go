package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gamble3000/internal/game/slot"
	"gamble3000/internal/session"
)

// Writer renders session events as text. It implements session.Output.
type Writer struct {
	w   io.Writer
	cfg slot.Config
	err error
}

// NewWriter creates a Writer for a machine configured with cfg.
func NewWriter(w io.Writer, cfg slot.Config) *Writer {
	return &Writer{w: w, cfg: cfg}
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

// Emit renders one event.
func (w *Writer) Emit(ev session.Event) {
	switch ev.Kind {
	case session.EventStarted:
		w.banner(ev.Balance)
	case session.EventRejected:
		w.println(w.rejection(ev.Err))
	case session.EventSpin:
		w.printf("Spin: %s\n", ev.Line)
		w.println(w.outcome(ev))
		w.printf("Balance: %d credits\n\n", ev.Balance)
	case session.EventCashedOut:
		w.printf("Cashing out with %d credits. Thanks for playing!\n", ev.Balance)
	case session.EventWashedOut:
		w.println("You are below the minimum bet. Ur Washed.")
		w.printf("Final cashout: %d credits.\n", ev.Balance)
	}
}

func (w *Writer) banner(balance int64) {
	symbols := make([]string, 0, len(w.cfg.Symbols))
	payouts := make([]string, 0, len(w.cfg.Symbols))
	for _, spec := range w.cfg.Symbols {
		symbols = append(symbols, string(spec.Symbol))
		payouts = append(payouts, fmt.Sprintf("'%s': %d", spec.Symbol, spec.Multiplier))
	}

	w.println("🎰 Welcome to the Gamble3000! (Go All In Or You Are A Softie)")
	w.printf("Symbols: %s\n", strings.Join(symbols, ", "))
	w.printf("Payouts (3-of-a-kind, x bet): {%s}\n", strings.Join(payouts, ", "))
	w.printf("Consolation: exactly two %s pays %dx bet\n", w.cfg.ConsolationSymbol, w.cfg.ConsolationMultiplier)
	w.println("")
	w.printf("Starting balance: %d credits.\n", balance)
}

func (w *Writer) rejection(err error) string {
	switch {
	case errors.Is(err, session.ErrBetBelowMin), errors.Is(err, session.ErrBetAboveMax):
		return fmt.Sprintf("Bet must be between %d and %d.", w.cfg.MinBet, w.cfg.MaxBet)
	case errors.Is(err, session.ErrBetAboveBalance):
		return "You cannot bet more than your current balance."
	default:
		return fmt.Sprintf("Please enter a whole number or '%s'.", QuitToken)
	}
}

func (w *Writer) outcome(ev session.Event) string {
	switch ev.Outcome.Kind {
	case slot.OutcomeThreeOfAKind:
		return fmt.Sprintf("3-of-a-kind %s! You win %d credits.", ev.Outcome.Symbol, ev.Payout)
	case slot.OutcomeConsolation:
		return fmt.Sprintf("Two %s! You win %d credits.", ev.Outcome.Symbol, ev.Payout)
	default:
		return "No win. Better luck next spin!"
	}
}

func (w *Writer) println(s string) {
	w.printf("%s\n", s)
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}
