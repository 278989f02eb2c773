package slot

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// DefaultStartingBalance is the credit balance a new session starts with.
	DefaultStartingBalance = 100

	// DefaultMinBet is the smallest accepted wager.
	DefaultMinBet = 1

	// DefaultMaxBet is the largest accepted wager.
	DefaultMaxBet = 100

	// DefaultConsolationMultiplier pays 1x bet for exactly two cherries.
	DefaultConsolationMultiplier = 1
)

// Configuration errors. Any of these means the machine must not start.
var (
	ErrEmptyTable             = errors.New("symbol table is empty")
	ErrInvalidWeight          = errors.New("symbol weight must be at least 1")
	ErrInvalidMultiplier      = errors.New("payout multiplier must not be negative")
	ErrDuplicateSymbol        = errors.New("symbol declared more than once")
	ErrUnknownConsolation     = errors.New("consolation symbol is not on the reels")
	ErrInvalidBetRange        = errors.New("bet range is invalid")
	ErrInvalidStartingBalance = errors.New("starting balance must cover the minimum bet")
)

// Config is the fixed machine configuration. Symbols doubles as the weight
// table and the 3-of-a-kind paytable; its order is paytable order.
type Config struct {
	StartingBalance       int64
	MinBet                int64
	MaxBet                int64
	Symbols               []SymbolSpec
	ConsolationSymbol     Symbol
	ConsolationMultiplier int64
}

// DefaultConfig returns the reference Gamble3000 configuration.
func DefaultConfig() Config {
	return Config{
		StartingBalance: DefaultStartingBalance,
		MinBet:          DefaultMinBet,
		MaxBet:          DefaultMaxBet,
		Symbols: []SymbolSpec{
			{Symbol: SymbolSeven, Weight: 2, Multiplier: 50},
			{Symbol: SymbolBAR, Weight: 4, Multiplier: 20},
			{Symbol: SymbolBell, Weight: 6, Multiplier: 10},
			{Symbol: SymbolStar, Weight: 8, Multiplier: 8},
			{Symbol: SymbolLemon, Weight: 10, Multiplier: 5},
			{Symbol: SymbolCherry, Weight: 12, Multiplier: 3},
		},
		ConsolationSymbol:     SymbolCherry,
		ConsolationMultiplier: DefaultConsolationMultiplier,
	}
}

// Validate reports the first configuration error found, if any.
func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return ErrEmptyTable
	}

	seen := make(map[Symbol]struct{}, len(c.Symbols))
	for _, spec := range c.Symbols {
		if spec.Weight < 1 {
			return fmt.Errorf("%w: %q has weight %d", ErrInvalidWeight, spec.Symbol, spec.Weight)
		}
		if spec.Multiplier < 0 {
			return fmt.Errorf("%w: %q pays %d", ErrInvalidMultiplier, spec.Symbol, spec.Multiplier)
		}
		if _, dup := seen[spec.Symbol]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSymbol, spec.Symbol)
		}
		seen[spec.Symbol] = struct{}{}
	}

	if _, ok := seen[c.ConsolationSymbol]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownConsolation, c.ConsolationSymbol)
	}
	if c.ConsolationMultiplier < 0 {
		return fmt.Errorf("%w: consolation pays %d", ErrInvalidMultiplier, c.ConsolationMultiplier)
	}

	if c.MinBet < 1 || c.MaxBet < c.MinBet {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidBetRange, c.MinBet, c.MaxBet)
	}
	if c.StartingBalance < c.MinBet {
		return fmt.Errorf("%w: %d < %d", ErrInvalidStartingBalance, c.StartingBalance, c.MinBet)
	}

	return nil
}

// SymbolList returns the declared symbols in paytable order.
func (c Config) SymbolList() []Symbol {
	out := make([]Symbol, len(c.Symbols))
	for i, spec := range c.Symbols {
		out[i] = spec.Symbol
	}
	return out
}

// clone returns a copy that shares no memory with c.
func (c Config) clone() Config {
	c.Symbols = slices.Clone(c.Symbols)
	return c
}
