package session

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamble3000/internal/game/slot"
	"gamble3000/internal/model"
	"gamble3000/internal/pkg/lock"
)

var (
	lineLose    = slot.Line{slot.SymbolBAR, slot.SymbolStar, slot.SymbolLemon}
	lineSevens  = slot.Line{slot.SymbolSeven, slot.SymbolSeven, slot.SymbolSeven}
	lineCherry2 = slot.Line{slot.SymbolCherry, slot.SymbolCherry, slot.SymbolStar}
)

// scriptInput replays commands, then reports io.EOF.
type scriptInput struct {
	cmds  []Command
	calls int
}

func (in *scriptInput) Next(context.Context) (Command, error) {
	if in.calls >= len(in.cmds) {
		in.calls++
		return Command{}, io.EOF
	}
	cmd := in.cmds[in.calls]
	in.calls++
	return cmd, nil
}

// recorder collects events.
type recorder struct {
	events []Event
}

func (r *recorder) Emit(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// fakeMachine returns scripted lines and scores them with the reference paytable.
type fakeMachine struct {
	lines    []slot.Line
	spins    int
	paytable *slot.Paytable
	onSpin   func()
}

func newFakeMachine(lines ...slot.Line) *fakeMachine {
	return &fakeMachine{lines: lines, paytable: slot.NewPaytable(slot.DefaultConfig())}
}

func (m *fakeMachine) Spin() slot.Line {
	if m.onSpin != nil {
		m.onSpin()
	}
	line := m.lines[m.spins%len(m.lines)]
	m.spins++
	return line
}

func (m *fakeMachine) Evaluate(line slot.Line, bet int64) (int64, slot.Outcome) {
	return m.paytable.Evaluate(line, bet)
}

// spinLog is a Recorder that can fail on demand.
type spinLog struct {
	records []*model.SpinRecord
	err     error
}

func (l *spinLog) Record(_ context.Context, rec *model.SpinRecord) error {
	l.records = append(l.records, rec)
	return l.err
}

func newTestSession(t *testing.T, cfg Config, m Machine, cmds ...Command) (*Session, *scriptInput, *recorder) {
	t.Helper()
	in := &scriptInput{cmds: cmds}
	out := &recorder{}
	s, err := New(cfg, &Dependencies{Machine: m, Input: in, Output: out, Locks: lock.NewSessionLock()})
	require.NoError(t, err)
	return s, in, out
}

func defaultConfig() Config {
	return ConfigFrom(slot.DefaultConfig())
}

func TestNew_Validation(t *testing.T) {
	m := newFakeMachine(lineLose)
	in := &scriptInput{}
	out := &recorder{}

	tests := []struct {
		name    string
		cfg     Config
		deps    *Dependencies
		wantErr error
	}{
		{"nil deps", defaultConfig(), nil, ErrNilMachine},
		{"nil machine", defaultConfig(), &Dependencies{Input: in, Output: out}, ErrNilMachine},
		{"nil input", defaultConfig(), &Dependencies{Machine: m, Output: out}, ErrNilInput},
		{"nil output", defaultConfig(), &Dependencies{Machine: m, Input: in}, ErrNilOutput},
		{"zero min bet", Config{StartingBalance: 10, MinBet: 0, MaxBet: 5}, &Dependencies{Machine: m, Input: in, Output: out}, ErrInvalidLimits},
		{"max below min", Config{StartingBalance: 10, MinBet: 5, MaxBet: 1}, &Dependencies{Machine: m, Input: in, Output: out}, ErrInvalidLimits},
		{"negative balance", Config{StartingBalance: -1, MinBet: 1, MaxBet: 5}, &Dependencies{Machine: m, Input: in, Output: out}, ErrInvalidLimits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.deps)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(defaultConfig(), &Dependencies{Machine: newFakeMachine(lineLose), Input: &scriptInput{}, Output: &recorder{}})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, StateAwaitingBet, s.State())
	assert.Equal(t, int64(slot.DefaultStartingBalance), s.Balance())
}

func TestRun_AllInLoseWashesOut(t *testing.T) {
	s, in, out := newTestSession(t, defaultConfig(), newFakeMachine(lineLose), Bet(100), Bet(1))

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventStarted, EventSpin, EventWashedOut}, out.kinds())
	assert.Equal(t, int64(0), out.events[1].Balance)
	assert.Equal(t, int64(0), out.events[2].Balance)
	assert.Equal(t, ReasonWashedOut, sum.Reason)
	assert.Equal(t, int64(0), sum.FinalBalance)
	assert.Equal(t, 1, in.calls, "no prompt may follow a wash-out")
	assert.Equal(t, StateTerminated, s.State())
}

func TestRun_BetAboveBalanceRejected(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxBet = 500

	m := newFakeMachine(lineLose)
	s, _, out := newTestSession(t, cfg, m, Bet(150), CashOut())

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []EventKind{EventStarted, EventRejected, EventCashedOut}, out.kinds())
	assert.ErrorIs(t, out.events[1].Err, ErrBetAboveBalance)
	assert.Equal(t, int64(100), out.events[1].Balance)
	assert.Equal(t, int64(100), sum.FinalBalance)
	assert.Zero(t, m.spins)
}

func TestRun_RejectionsLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{"below minimum", Bet(0), ErrBetBelowMin},
		{"above maximum", Bet(101), ErrBetAboveMax},
		{"malformed", Malformed("abc"), ErrMalformedBet},
		{"unknown kind", Command{Kind: CommandKind(42)}, ErrMalformedBet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFakeMachine(lineLose)
			s, _, out := newTestSession(t, defaultConfig(), m, tt.cmd, CashOut())

			sum, err := s.Run(context.Background())
			require.NoError(t, err)

			require.Equal(t, []EventKind{EventStarted, EventRejected, EventCashedOut}, out.kinds())
			assert.ErrorIs(t, out.events[1].Err, tt.wantErr)
			assert.Equal(t, int64(100), sum.FinalBalance)
			assert.Zero(t, sum.Spins)
			assert.Zero(t, m.spins)
		})
	}
}

func TestRun_CashOut(t *testing.T) {
	s, _, out := newTestSession(t, defaultConfig(), newFakeMachine(lineLose), CashOut())

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventStarted, EventCashedOut}, out.kinds())
	assert.Equal(t, ReasonCashedOut, sum.Reason)
	assert.Equal(t, int64(100), sum.FinalBalance)
}

func TestRun_EndOfInputCashesOut(t *testing.T) {
	s, _, out := newTestSession(t, defaultConfig(), newFakeMachine(lineLose), Bet(10))

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventStarted, EventSpin, EventCashedOut}, out.kinds())
	assert.Equal(t, ReasonCashedOut, sum.Reason)
	assert.Equal(t, int64(90), sum.FinalBalance)
}

func TestRun_WinsAndConsolation(t *testing.T) {
	m := newFakeMachine(lineSevens, lineCherry2, lineLose)
	s, _, out := newTestSession(t, defaultConfig(), m, Bet(10), Bet(4), Bet(20), CashOut())

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	spins := out.events[1:4]
	assert.Equal(t, int64(500), spins[0].Payout)
	assert.Equal(t, int64(590), spins[0].Balance)
	assert.Equal(t, slot.OutcomeThreeOfAKind, spins[0].Outcome.Kind)
	assert.Equal(t, int64(4), spins[1].Payout)
	assert.Equal(t, int64(590), spins[1].Balance)
	assert.Equal(t, slot.OutcomeConsolation, spins[1].Outcome.Kind)
	assert.Equal(t, int64(0), spins[2].Payout)
	assert.Equal(t, int64(570), spins[2].Balance)

	assert.Equal(t, 3, sum.Spins)
	assert.Equal(t, int64(34), sum.Wagered)
	assert.Equal(t, int64(504), sum.Won)
	assert.Equal(t, int64(470), sum.Net())
	assert.Equal(t, int64(570), sum.FinalBalance)
}

func TestRun_DebitsBeforeSpin(t *testing.T) {
	m := newFakeMachine(lineSevens)
	s, _, _ := newTestSession(t, defaultConfig(), m, Bet(40), CashOut())

	var atSpin int64 = -1
	m.onSpin = func() { atSpin = s.Balance() }

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(60), atSpin)
	assert.Equal(t, int64(100-40+2000), s.Balance())
}

func TestRun_StartingBelowMinimum(t *testing.T) {
	cfg := defaultConfig()
	cfg.StartingBalance = 0
	s, in, out := newTestSession(t, cfg, newFakeMachine(lineLose), Bet(1))

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventStarted, EventWashedOut}, out.kinds())
	assert.Equal(t, ReasonWashedOut, sum.Reason)
	assert.Zero(t, in.calls)
}

func TestRun_InputErrorAborts(t *testing.T) {
	boom := errors.New("terminal closed")
	in := InputFunc(func(context.Context) (Command, error) { return Command{}, boom })
	s, err := New(defaultConfig(), &Dependencies{Machine: newFakeMachine(lineLose), Input: in, Output: &recorder{}})
	require.NoError(t, err)

	sum, err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, sum)
	assert.Equal(t, ReasonAborted, sum.Reason)
	assert.Equal(t, int64(100), sum.FinalBalance)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	in := InputFunc(func(context.Context) (Command, error) {
		calls++
		cancel()
		return Bet(10), nil
	})
	s, err := New(defaultConfig(), &Dependencies{Machine: newFakeMachine(lineLose), Input: in, Output: &recorder{}})
	require.NoError(t, err)

	sum, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ReasonAborted, sum.Reason)
	assert.Equal(t, int64(90), sum.FinalBalance, "the spin in flight settles before the abort")
}

func TestRun_BalanceReadableWhileRunning(t *testing.T) {
	m, err := slot.New(slot.DefaultConfig(), slot.NewRand(5))
	require.NoError(t, err)

	cmds := make([]Command, 0, 50)
	for range 50 {
		cmds = append(cmds, Bet(1))
	}
	s, _, out := newTestSession(t, defaultConfig(), m, cmds...)

	stop := make(chan struct{})
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		for {
			select {
			case <-stop:
				return
			default:
				if b := s.Balance(); b < 0 {
					t.Errorf("negative balance %d", b)
					return
				}
				_ = s.State()
			}
		}
	}()

	sum, err := s.Run(context.Background())
	close(stop)
	<-polled
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.events[0].Balance)
	assert.Equal(t, sum.FinalBalance, s.Balance())
}

func TestRun_Twice(t *testing.T) {
	s, _, _ := newTestSession(t, defaultConfig(), newFakeMachine(lineLose), CashOut())

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestRun_RecordsSpins(t *testing.T) {
	log := &spinLog{}
	s, err := New(defaultConfig(), &Dependencies{
		Machine:  newFakeMachine(lineSevens, lineLose),
		Input:    &scriptInput{cmds: []Command{Bet(2), Bet(3)}},
		Output:   &recorder{},
		Recorder: log,
		Locks:    lock.NewSessionLock(),
	})
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, log.records, 2)
	first := log.records[0]
	assert.Equal(t, s.ID(), first.SessionID)
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, [3]string{"7", "7", "7"}, first.Reels)
	assert.Equal(t, model.OutcomeThreeOfAKind, first.Outcome)
	assert.Equal(t, "7", first.Symbol)
	assert.Equal(t, int64(100), first.Payout)
	assert.Equal(t, int64(198), first.BalanceAfter)

	second := log.records[1]
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, model.OutcomeNoWin, second.Outcome)
	assert.Equal(t, int64(195), second.BalanceAfter)
}

func TestRun_RecorderFailureDoesNotStopPlay(t *testing.T) {
	log := &spinLog{err: errors.New("ledger down")}
	out := &recorder{}
	s, err := New(defaultConfig(), &Dependencies{
		Machine:  newFakeMachine(lineLose),
		Input:    &scriptInput{cmds: []Command{Bet(1), Bet(1), CashOut()}},
		Output:   out,
		Recorder: log,
	})
	require.NoError(t, err)

	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, log.records, 2)
	assert.Equal(t, int64(98), sum.FinalBalance)
	assert.Equal(t, EventCashedOut, out.events[len(out.events)-1].Kind)
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "awaiting_bet", StateAwaitingBet.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "washed_out", ReasonWashedOut.String())
	assert.Equal(t, "spin", EventSpin.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}
