package session

import "context"

// CommandKind is what the player asked for at the bet prompt.
type CommandKind int

const (
	CommandBet       CommandKind = iota // Wager Amount credits
	CommandCashOut                      // Leave with the current balance
	CommandMalformed                    // Input that is neither a number nor the quit token
)

// Command is one answer to the bet prompt.
type Command struct {
	Kind   CommandKind
	Amount int64
	Raw    string // Original input, kept for feedback on malformed entries
}

// Bet returns a wager command.
func Bet(amount int64) Command {
	return Command{Kind: CommandBet, Amount: amount}
}

// CashOut returns a cash-out command.
func CashOut() Command {
	return Command{Kind: CommandCashOut}
}

// Malformed returns a command for unparseable input.
func Malformed(raw string) Command {
	return Command{Kind: CommandMalformed, Raw: raw}
}

// Input supplies the player's next command. It returns io.EOF when no
// further commands will come.
type Input interface {
	Next(ctx context.Context) (Command, error)
}

// InputFunc adapts a function to Input.
type InputFunc func(ctx context.Context) (Command, error)

// Next calls f.
func (f InputFunc) Next(ctx context.Context) (Command, error) {
	return f(ctx)
}
