package domain

import (
	"errors"
	"sort"
)

var ErrNoCandidates = errors.New("no candidates available to guess")

// BestCandidate picks the next guess: the highest-entropy candidate that has
// not been guessed yet and satisfies the active constraints. When the
// constraints eliminate everyone it relaxes them in stages rather than giving
// up: drop the major-appearance window first, then keep only nationality,
// region, and role, then nationality alone, and finally fall back to raw
// entropy over the unguessed pool.
func BestCandidate(candidates []Candidate, constraints ConstraintSet, guessed map[string]struct{}) (Candidate, error) {
	available := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if _, done := guessed[candidate.PlayerID]; done {
			continue
		}
		available = append(available, candidate)
	}
	if len(available) == 0 {
		return Candidate{}, ErrNoCandidates
	}

	for _, relaxed := range relaxationLadder(constraints) {
		if best, ok := topEntropy(FilterByConstraints(available, relaxed)); ok {
			return best, nil
		}
	}

	best, _ := topEntropy(available)
	return best, nil
}

func relaxationLadder(constraints ConstraintSet) []ConstraintSet {
	ladder := []ConstraintSet{constraints}

	if _, ok := constraints[KeyMajors]; ok {
		withoutMajors := make(ConstraintSet, len(constraints))
		for key, constraint := range constraints {
			if key == KeyMajors {
				continue
			}
			withoutMajors[key] = constraint
		}
		ladder = append(ladder, withoutMajors)
	}

	ladder = append(ladder,
		subset(constraints, KeyNationality, KeyRegion, KeyRole),
		subset(constraints, KeyNationality, KeyRegion),
	)
	return ladder
}

func subset(constraints ConstraintSet, keys ...string) ConstraintSet {
	kept := make(ConstraintSet, len(keys))
	for _, key := range keys {
		if constraint, ok := constraints[key]; ok {
			kept[key] = constraint
		}
	}
	return kept
}

func topEntropy(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EntropyValue > ranked[j].EntropyValue
	})
	return ranked[0], true
}
