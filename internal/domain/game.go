package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseReady     Phase = "ready"
	PhaseStarting  Phase = "starting"
	PhaseGame      Phase = "game"
	PhaseEnd       Phase = "end"
	PhaseCompleted Phase = "completed"
)

// Label returns a short human-readable name for the phase. Unrecognized
// phases are returned verbatim: the server is the authority on legal phase
// values and the client renders whatever it asserts.
func (p Phase) Label() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseReady:
		return "waiting for ready"
	case PhaseStarting:
		return "starting"
	case PhaseGame:
		return "guessing"
	case PhaseEnd:
		return "round over"
	case PhaseCompleted:
		return "match over"
	default:
		return string(p)
	}
}

type BestOf string

const (
	BestOf1 BestOf = "best_of_1"
	BestOf3 BestOf = "best_of_3"
	BestOf5 BestOf = "best_of_5"
	BestOf7 BestOf = "best_of_7"
)

// RequiredWins derives the win target from the series format. Formats the
// client has never seen still parse as long as they follow the best_of_N
// convention; anything else counts as a single round.
func (b BestOf) RequiredWins() int {
	switch b {
	case BestOf1:
		return 1
	case BestOf3:
		return 2
	case BestOf5:
		return 3
	case BestOf7:
		return 4
	}

	raw, ok := strings.CutPrefix(string(b), "best_of_")
	if !ok {
		return 1
	}
	rounds, err := strconv.Atoi(raw)
	if err != nil || rounds < 1 {
		return 1
	}
	return rounds/2 + 1
}

func (b BestOf) Label() string {
	if b == BestOf1 {
		return "single game"
	}
	raw, ok := strings.CutPrefix(string(b), "best_of_")
	if !ok {
		return string(b)
	}
	return "BO" + raw
}

// DefaultGuessAllowance is the per-round guess budget the server grants.
const DefaultGuessAllowance = 8

type GameState struct {
	Phase            Phase
	BestOf           BestOf
	CurrentWins      int
	RequiredWins     int
	RemainingGuesses int
	SubmissionOpen   bool
}

func NewGameState() GameState {
	return GameState{
		Phase:            PhaseLobby,
		BestOf:           BestOf3,
		RequiredWins:     BestOf3.RequiredWins(),
		RemainingGuesses: DefaultGuessAllowance,
	}
}

// StateDelta is a partial state assertion: nil fields were absent from the
// payload and leave the current value untouched.
type StateDelta struct {
	BestOf           *BestOf
	CurrentWins      *int
	RequiredWins     *int
	Phase            *Phase
	RemainingGuesses *int
}

// Apply overwrites exactly the fields the delta carries. The remaining-guess
// counter is clamped at zero; every other value is trusted verbatim.
func (s *GameState) Apply(d StateDelta) {
	if d.BestOf != nil {
		s.BestOf = *d.BestOf
		if d.RequiredWins == nil {
			s.RequiredWins = s.BestOf.RequiredWins()
		}
	}
	if d.CurrentWins != nil {
		s.CurrentWins = *d.CurrentWins
	}
	if d.RequiredWins != nil {
		s.RequiredWins = *d.RequiredWins
	}
	if d.RemainingGuesses != nil {
		s.RemainingGuesses = ClampGuesses(*d.RemainingGuesses)
	}
	if d.Phase != nil {
		s.Phase = *d.Phase
		switch s.Phase {
		case PhaseReady, PhaseGame, PhaseEnd:
			s.SubmissionOpen = true
		case PhaseLobby, PhaseCompleted:
			s.SubmissionOpen = false
		}
	}
}

func ClampGuesses(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Record formats the series score, e.g. "BO3 1/2".
func (s GameState) Record() string {
	if s.BestOf == BestOf1 {
		return s.BestOf.Label()
	}
	return fmt.Sprintf("%s %d/%d", s.BestOf.Label(), s.CurrentWins, s.RequiredWins)
}
