package slot

// Reel is the drawable population of one reel. Only multiplicity matters;
// the order is the declaration order of the weight table.
type Reel []Symbol

// Reels holds one Reel per payline position.
type Reels [ReelCount]Reel

// BuildReel expands the weight table into a Reel holding each symbol
// exactly Weight times. Callers validate the table first.
func BuildReel(specs []SymbolSpec) Reel {
	size := 0
	for _, spec := range specs {
		size += spec.Weight
	}

	reel := make(Reel, 0, size)
	for _, spec := range specs {
		for i := 0; i < spec.Weight; i++ {
			reel = append(reel, spec.Symbol)
		}
	}
	return reel
}

// BuildReels builds ReelCount independent reels with identical composition.
func BuildReels(specs []SymbolSpec) Reels {
	var reels Reels
	for i := range reels {
		reels[i] = BuildReel(specs)
	}
	return reels
}

// Count returns the number of occurrences of s on the reel.
func (r Reel) Count(s Symbol) int {
	n := 0
	for _, sym := range r {
		if sym == s {
			n++
		}
	}
	return n
}

// Draw picks one symbol uniformly over the reel population.
func (r Reel) Draw(rng Rand) Symbol {
	return r[rng.IntN(len(r))]
}
