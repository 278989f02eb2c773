// Package slot implements the three-reel slot machine: reel construction,
// spinning, payline evaluation and the immutable machine configuration.
package slot

import "strings"

// ReelCount is the number of reels on the machine.
const ReelCount = 3

// ConsolationMatches is how many consolation symbols the payline must show.
const ConsolationMatches = 2

// Symbol is an opaque reel symbol, compared only for equality.
type Symbol string

// Reference symbols, rarest first.
const (
	SymbolSeven  Symbol = "7"
	SymbolBAR    Symbol = "BAR"
	SymbolBell   Symbol = "🔔"
	SymbolStar   Symbol = "⭐"
	SymbolLemon  Symbol = "🍋"
	SymbolCherry Symbol = "🍒"
)

// SymbolSpec binds a symbol to its reel weight and its 3-of-a-kind multiplier.
type SymbolSpec struct {
	Symbol     Symbol
	Weight     int
	Multiplier int64
}

// Line is the payline produced by one spin, left to right.
type Line [ReelCount]Symbol

// Count returns how many positions of the line show s.
func (l Line) Count(s Symbol) int {
	n := 0
	for _, sym := range l {
		if sym == s {
			n++
		}
	}
	return n
}

// String renders the line the way the console shows it.
func (l Line) String() string {
	parts := make([]string, len(l))
	for i, sym := range l {
		parts[i] = string(sym)
	}
	return strings.Join(parts, " | ")
}
