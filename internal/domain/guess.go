package domain

import (
	"encoding/json"
	"time"
)

type VerdictKind string

const (
	VerdictCorrect        VerdictKind = "CORRECT"
	VerdictIncorrect      VerdictKind = "INCORRECT"
	VerdictIncorrectClose VerdictKind = "INCORRECT_CLOSE"
	VerdictHighClose      VerdictKind = "HIGH_CLOSE"
	VerdictLowClose       VerdictKind = "LOW_CLOSE"
	VerdictHighFar        VerdictKind = "HIGH_NOT_CLOSE"
	VerdictLowFar         VerdictKind = "LOW_NOT_CLOSE"
)

func (k VerdictKind) Correct() bool { return k == VerdictCorrect }

func (k VerdictKind) Close() bool {
	return k == VerdictIncorrectClose || k == VerdictHighClose || k == VerdictLowClose
}

func (k VerdictKind) TooHigh() bool { return k == VerdictHighClose || k == VerdictHighFar }

func (k VerdictKind) TooLow() bool { return k == VerdictLowClose || k == VerdictLowFar }

type TextVerdict struct {
	Result VerdictKind `json:"result"`
	Value  string      `json:"value,omitempty"`
}

type NumberVerdict struct {
	Result VerdictKind `json:"result"`
	Value  int         `json:"value,omitempty"`
}

type TeamVerdict struct {
	Result VerdictKind `json:"result"`
	Data   TeamName    `json:"data,omitempty"`
}

// GuessResult is one immutable entry in the result log. Entries arrive from
// the push channel or from the immediate submission response; local failures
// are recorded with only Message set.
type GuessResult struct {
	ID               string         `json:"id,omitempty"`
	PlayerID         string         `json:"playerId,omitempty"`
	FirstName        string         `json:"firstName,omitempty"`
	LastName         string         `json:"lastName,omitempty"`
	Nickname         string         `json:"nickname,omitempty"`
	IsSuccess        bool           `json:"isSuccess,omitempty"`
	Nationality      *TextVerdict   `json:"nationality,omitempty"`
	Team             *TeamVerdict   `json:"team,omitempty"`
	Age              *NumberVerdict `json:"age,omitempty"`
	Role             *TextVerdict   `json:"role,omitempty"`
	MajorAppearances *NumberVerdict `json:"majorAppearances,omitempty"`
	IsRetired        *bool          `json:"isRetired,omitempty"`
	Message          string         `json:"message,omitempty"`
	ReceivedAt       time.Time      `json:"-"`
}

// GuessedID returns whichever identity field the payload carried.
func (r GuessResult) GuessedID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.PlayerID
}

func (r GuessResult) Failure() bool {
	return r.Message != "" && r.Nationality == nil && r.Team == nil &&
		r.Age == nil && r.Role == nil && r.MajorAppearances == nil
}

// DeriveConstraints translates the per-field verdicts of one guess into the
// constraints they imply, following the scoring rules of the game: close
// numeric verdicts pin the answer to a 1-3 window on the correct side, far
// verdicts open a range at distance 4, and a close nationality shares the
// guessed country's region.
func (r GuessResult) DeriveConstraints() ConstraintSet {
	constraints := make(ConstraintSet)

	if v := r.Nationality; v != nil {
		switch v.Result {
		case VerdictCorrect:
			constraints[KeyNationality] = Constraint{Exact: v.Value}
		case VerdictIncorrectClose:
			if region := Region(v.Value); region != "" {
				constraints[KeyRegion] = Constraint{Region: region}
			}
			constraints[KeyNationality] = Constraint{Exclude: v.Value}
		}
	}

	if v := r.Team; v != nil && v.Result == VerdictCorrect {
		constraints[KeyTeam] = Constraint{Exact: string(v.Data)}
	}

	if v := r.Age; v != nil {
		if c, ok := numericConstraint(v.Result, v.Value, nil); ok {
			constraints[KeyAge] = c
		}
	}

	if v := r.Role; v != nil {
		if v.Result == VerdictCorrect {
			constraints[KeyRole] = Constraint{Exact: v.Value}
		} else {
			constraints[KeyRole] = Constraint{Exclude: v.Value}
		}
	}

	if v := r.MajorAppearances; v != nil {
		if c, ok := numericConstraint(v.Result, v.Value, looseMajorFloor); ok {
			constraints[KeyMajors] = c
		}
	}

	if r.IsRetired != nil {
		constraints[KeyRetired] = Constraint{Exact: *r.IsRetired}
	}

	return constraints
}

// looseMajorFloor widens HIGH_NOT_CLOSE for small major-appearance guesses:
// a guess of 4 or less would otherwise assert max <= 0, which eliminates
// almost nobody correctly.
func looseMajorFloor(guessed int) (Constraint, bool) {
	if guessed <= 4 {
		return Constraint{Max: IntPtr(3)}, true
	}
	return Constraint{}, false
}

func numericConstraint(kind VerdictKind, value int, highFarOverride func(int) (Constraint, bool)) (Constraint, bool) {
	switch kind {
	case VerdictCorrect:
		return Constraint{Exact: value}, true
	case VerdictHighClose:
		return Constraint{Min: IntPtr(value - 3), Max: IntPtr(value - 1)}, true
	case VerdictLowClose:
		return Constraint{Min: IntPtr(value + 1), Max: IntPtr(value + 3)}, true
	case VerdictHighFar:
		if highFarOverride != nil {
			if c, ok := highFarOverride(value); ok {
				return c, true
			}
		}
		return Constraint{Max: IntPtr(value - 4)}, true
	case VerdictLowFar:
		return Constraint{Min: IntPtr(value + 4)}, true
	default:
		return Constraint{}, false
	}
}

// resultEnvelope mirrors the alternate push shape where the result sits under
// a payload field rather than inline.
type resultEnvelope struct {
	Payload *GuessResult `json:"payload"`
}

// DecodeGuessResult accepts both inline and payload-wrapped result shapes.
func DecodeGuessResult(data []byte) (GuessResult, error) {
	var wrapped resultEnvelope
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Payload != nil {
		return *wrapped.Payload, nil
	}

	var result GuessResult
	if err := json.Unmarshal(data, &result); err != nil {
		return GuessResult{}, err
	}
	return result, nil
}
