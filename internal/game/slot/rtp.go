package slot

// Report summarises the return of a machine per unit bet, either exactly over
// every reel stop combination or empirically over simulated spins.
type Report struct {
	Trials   int64                 // Weighted combinations or simulated spins
	Hits     int64                 // Trials that paid anything
	Returned int64                 // Credits returned for a bet of 1 per trial
	ByKind   map[OutcomeKind]int64 // Paying trials per outcome kind
}

// RTP returns the return-to-player ratio.
func (r Report) RTP() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Returned) / float64(r.Trials)
}

// HitFrequency returns the share of trials that paid anything.
func (r Report) HitFrequency() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Trials)
}

// ExactReport enumerates every reel stop combination of the machine. Each
// stop of a reel is one trial, so Trials is the product of the reel sizes.
func ExactReport(m *Machine) Report {
	rep := Report{ByKind: make(map[OutcomeKind]int64)}

	type stop struct {
		symbol Symbol
		weight int64
	}
	var faces [ReelCount][]stop
	for i, reel := range m.reels {
		counts := make(map[Symbol]int64)
		for _, sym := range reel {
			if counts[sym] == 0 {
				faces[i] = append(faces[i], stop{symbol: sym})
			}
			counts[sym]++
		}
		for j := range faces[i] {
			faces[i][j].weight = counts[faces[i][j].symbol]
		}
	}

	for _, a := range faces[0] {
		for _, b := range faces[1] {
			for _, c := range faces[2] {
				weight := a.weight * b.weight * c.weight
				payout, outcome := m.paytable.Evaluate(Line{a.symbol, b.symbol, c.symbol}, 1)
				rep.add(weight, payout, outcome)
			}
		}
	}
	return rep
}

// Simulate spins the machine n times at a bet of 1. The result depends on the
// machine's random source, so a seeded machine gives a reproducible report.
func Simulate(m *Machine, n int) Report {
	rep := Report{ByKind: make(map[OutcomeKind]int64)}
	for i := 0; i < n; i++ {
		payout, outcome := m.Evaluate(m.Spin(), 1)
		rep.add(1, payout, outcome)
	}
	return rep
}

func (r *Report) add(weight, payout int64, outcome Outcome) {
	r.Trials += weight
	r.Returned += weight * payout
	if outcome.Won() {
		r.Hits += weight
		r.ByKind[outcome.Kind] += weight
	}
}
