package slot

import (
	"errors"
	"fmt"
)

// ErrNilRand is returned when a machine is built without a random source.
var ErrNilRand = errors.New("random source is required")

// Machine is a configured three-reel slot machine. Reels and paytable are
// built once and never change; the random source is owned by one session.
type Machine struct {
	cfg      Config
	reels    Reels
	paytable *Paytable
	rng      Rand
}

// New validates cfg and builds the reels and paytable from it.
// A configuration error means the machine must not be used.
func New(cfg Config, rng Rand) (*Machine, error) {
	if rng == nil {
		return nil, ErrNilRand
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine configuration: %w", err)
	}

	cfg = cfg.clone()
	return &Machine{
		cfg:      cfg,
		reels:    BuildReels(cfg.Symbols),
		paytable: NewPaytable(cfg),
		rng:      rng,
	}, nil
}

// Name returns the machine's display name.
func (m *Machine) Name() string {
	return "Gamble3000"
}

// Description returns a brief description of the game.
func (m *Machine) Description() string {
	return fmt.Sprintf("%d weighted reels, one payline. 3-of-a-kind pays by symbol, exactly %d %s pay %dx bet.",
		ReelCount, ConsolationMatches, m.cfg.ConsolationSymbol, m.cfg.ConsolationMultiplier)
}

// Config returns a copy of the machine configuration.
func (m *Machine) Config() Config {
	return m.cfg.clone()
}

// Reels returns the machine's reels. Callers must not modify them.
func (m *Machine) Reels() Reels {
	return m.reels
}

// Paytable returns the machine's paytable.
func (m *Machine) Paytable() *Paytable {
	return m.paytable
}

// Spin draws a payline.
func (m *Machine) Spin() Line {
	return Spin(m.rng, m.reels)
}

// Evaluate scores a payline for the given bet.
func (m *Machine) Evaluate(line Line, bet int64) (int64, Outcome) {
	return m.paytable.Evaluate(line, bet)
}
