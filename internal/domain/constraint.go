package domain

// Constraint keys, matching the wire format of the recommendation source.
const (
	KeyNationality = "nationality"
	KeyRegion      = "nationality_region"
	KeyTeam        = "team"
	KeyAge         = "age"
	KeyRole        = "role"
	KeyMajors      = "majorAppearances"
	KeyRetired     = "isRetired"
)

// Constraint is one predicate narrowing the plausible candidates for a single
// attribute. The wire format is polymorphic per key: exact carries a string,
// number, or boolean depending on the attribute, ranges apply to numeric
// attributes, and region only appears under nationality_region.
type Constraint struct {
	Exact       any      `json:"exact,omitempty"`
	Exclude     string   `json:"exclude,omitempty"`
	ExcludeList []string `json:"exclude_list,omitempty"`
	Min         *int     `json:"min,omitempty"`
	Max         *int     `json:"max,omitempty"`
	Region      string   `json:"region,omitempty"`
}

func (c Constraint) ExactText() (string, bool) {
	s, ok := c.Exact.(string)
	return s, ok
}

// ExactInt reads a numeric exact value. JSON decoding yields float64, so both
// representations are accepted.
func (c Constraint) ExactInt() (int, bool) {
	switch v := c.Exact.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func (c Constraint) ExactBool() (bool, bool) {
	b, ok := c.Exact.(bool)
	return b, ok
}

func (c Constraint) excludes(value string) bool {
	if c.Exclude != "" && c.Exclude == value {
		return true
	}
	for _, excluded := range c.ExcludeList {
		if excluded == value {
			return true
		}
	}
	return false
}

func (c Constraint) matchText(value string) bool {
	if exact, ok := c.ExactText(); ok {
		return value == exact
	}
	return !c.excludes(value)
}

func (c Constraint) matchInt(value int) bool {
	if exact, ok := c.ExactInt(); ok {
		return value == exact
	}
	if c.Min != nil && value < *c.Min {
		return false
	}
	if c.Max != nil && value > *c.Max {
		return false
	}
	return true
}

// ConstraintSet maps attribute keys to their active constraint. It is replaced
// wholesale from fetched snapshots and merged incrementally from guess results.
type ConstraintSet map[string]Constraint

// Matches reports whether the candidate satisfies every constraint in the set.
func (cs ConstraintSet) Matches(candidate Candidate) bool {
	for key, constraint := range cs {
		switch key {
		case KeyNationality:
			if !constraint.matchText(candidate.Nationality) {
				return false
			}
		case KeyRegion:
			if constraint.Region != "" && Region(candidate.Nationality) != constraint.Region {
				return false
			}
		case KeyTeam:
			if !constraint.matchText(string(candidate.Team)) {
				return false
			}
		case KeyAge:
			if !constraint.matchInt(candidate.Age) {
				return false
			}
		case KeyRole:
			if !constraint.matchText(candidate.Role) {
				return false
			}
		case KeyMajors:
			if !constraint.matchInt(candidate.MajorAppearances) {
				return false
			}
		case KeyRetired:
			if exact, ok := constraint.ExactBool(); ok && candidate.IsRetired != exact {
				return false
			}
		}
	}
	return true
}

// FilterByConstraints derives the candidates satisfying every constraint.
func FilterByConstraints(candidates []Candidate, cs ConstraintSet) []Candidate {
	if len(cs) == 0 {
		return candidates
	}
	matched := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if cs.Matches(candidate) {
			matched = append(matched, candidate)
		}
	}
	return matched
}

// Merge folds incoming constraints into the set, resolving per-key conflicts:
// an exact assertion always wins, exclusions union into a single list, and
// numeric ranges intersect. A range intersection that collapses (min > max)
// falls back to the more plausible half for major appearances and to the
// incoming constraint otherwise. The receiver is not mutated.
func (cs ConstraintSet) Merge(incoming ConstraintSet) ConstraintSet {
	merged := make(ConstraintSet, len(cs)+len(incoming))
	for key, constraint := range cs {
		merged[key] = constraint
	}

	for key, next := range incoming {
		existing, present := merged[key]
		if !present {
			merged[key] = next
			continue
		}

		if next.Exact != nil {
			merged[key] = next
			continue
		}

		if next.hasExclusion() && existing.hasExclusion() {
			merged[key] = Constraint{ExcludeList: unionExclusions(existing, next)}
			continue
		}

		if next.hasRange() && existing.hasRange() {
			merged[key] = intersectRanges(key, existing, next)
			continue
		}

		merged[key] = next
	}

	return merged
}

func (c Constraint) hasExclusion() bool {
	return c.Exclude != "" || len(c.ExcludeList) > 0
}

func (c Constraint) hasRange() bool {
	return c.Min != nil || c.Max != nil
}

func unionExclusions(constraints ...Constraint) []string {
	seen := make(map[string]struct{})
	var union []string
	add := func(value string) {
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		union = append(union, value)
	}

	for _, constraint := range constraints {
		add(constraint.Exclude)
		for _, value := range constraint.ExcludeList {
			add(value)
		}
	}
	return union
}

func intersectRanges(key string, existing, next Constraint) Constraint {
	var merged Constraint
	if existing.Min != nil || next.Min != nil {
		merged.Min = maxBound(existing.Min, next.Min)
	}
	if existing.Max != nil || next.Max != nil {
		merged.Max = minBound(existing.Max, next.Max)
	}

	if merged.Min == nil || merged.Max == nil || *merged.Min <= *merged.Max {
		return merged
	}

	// Collapsed intersection. Contradictory major-appearance windows keep the
	// bound pointing at the likelier bracket; everything else trusts the
	// newest assertion.
	if key == KeyMajors {
		if *merged.Min >= 8 {
			return Constraint{Min: merged.Min}
		}
		return Constraint{Max: merged.Max}
	}
	return next
}

func maxBound(a, b *int) *int {
	if a == nil {
		return copyBound(b)
	}
	if b == nil || *a >= *b {
		return copyBound(a)
	}
	return copyBound(b)
}

func minBound(a, b *int) *int {
	if a == nil {
		return copyBound(b)
	}
	if b == nil || *a <= *b {
		return copyBound(a)
	}
	return copyBound(b)
}

func copyBound(v *int) *int {
	if v == nil {
		return nil
	}
	bound := *v
	return &bound
}

// IntPtr is a convenience for building range constraints.
func IntPtr(v int) *int { return &v }
