package slot

import "fmt"

// OutcomeKind classifies an evaluated payline.
type OutcomeKind int

const (
	OutcomeNoWin        OutcomeKind = iota // Nothing pays
	OutcomeThreeOfAKind                    // All three positions show one symbol
	OutcomeConsolation                     // Exactly two consolation symbols
)

// String returns the classification name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeThreeOfAKind:
		return "3-of-a-kind"
	case OutcomeConsolation:
		return "two-of-consolation-symbol"
	default:
		return "no win"
	}
}

// Outcome is the classification of a payline together with the multiplier
// that was applied to the bet.
type Outcome struct {
	Kind       OutcomeKind
	Symbol     Symbol // Winning symbol; empty for OutcomeNoWin
	Multiplier int64
}

// Won reports whether the outcome pays anything.
func (o Outcome) Won() bool {
	return o.Kind != OutcomeNoWin
}

// String renders the classification, e.g. "3-of-a-kind 7".
func (o Outcome) String() string {
	if o.Kind == OutcomeThreeOfAKind {
		return fmt.Sprintf("%s %s", o.Kind, o.Symbol)
	}
	return o.Kind.String()
}

// Paytable evaluates paylines. It is immutable once built.
type Paytable struct {
	specs                 []SymbolSpec
	consolationSymbol     Symbol
	consolationMultiplier int64
}

// NewPaytable builds a paytable from a validated configuration.
func NewPaytable(cfg Config) *Paytable {
	cfg = cfg.clone()
	return &Paytable{
		specs:                 cfg.Symbols,
		consolationSymbol:     cfg.ConsolationSymbol,
		consolationMultiplier: cfg.ConsolationMultiplier,
	}
}

// Evaluate returns the credits won by line for the given bet and the outcome
// classification. Rules, first match wins:
//   - 3-of-a-kind, checked in paytable declaration order: multiplier x bet
//   - exactly two consolation symbols: consolation multiplier x bet
//   - otherwise nothing
//
// Three consolation symbols are a 3-of-a-kind, never a consolation.
func (p *Paytable) Evaluate(line Line, bet int64) (int64, Outcome) {
	for _, spec := range p.specs {
		if line.Count(spec.Symbol) == ReelCount {
			return spec.Multiplier * bet, Outcome{
				Kind:       OutcomeThreeOfAKind,
				Symbol:     spec.Symbol,
				Multiplier: spec.Multiplier,
			}
		}
	}

	if line.Count(p.consolationSymbol) == ConsolationMatches {
		return p.consolationMultiplier * bet, Outcome{
			Kind:       OutcomeConsolation,
			Symbol:     p.consolationSymbol,
			Multiplier: p.consolationMultiplier,
		}
	}

	return 0, Outcome{Kind: OutcomeNoWin}
}

// Multiplier returns the 3-of-a-kind multiplier of s and whether s is on the table.
func (p *Paytable) Multiplier(s Symbol) (int64, bool) {
	for _, spec := range p.specs {
		if spec.Symbol == s {
			return spec.Multiplier, true
		}
	}
	return 0, false
}
