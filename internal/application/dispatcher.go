package application

import (
	"encoding/json"

	"github.com/UchihaStesla/friberg/internal/domain"
	"go.uber.org/zap"
)

// Message types carried in the "type" field of push frames.
const (
	MsgInitialState = "INITIAL_STATE"
	MsgStateUpdate  = "STATE_UPDATE"
	MsgGuessResult  = "GUESS_RESULT"
)

const pongFrame = "pong"

// envelope covers every frame shape the room emits. State fields are pointers
// so an absent field is distinguishable from a zero value.
type envelope struct {
	Type             string          `json:"type"`
	BestOf           *domain.BestOf  `json:"best_of"`
	PlayerWins       *int            `json:"player_wins"`
	RequiredWins     *int            `json:"required_wins"`
	GamePhase        *domain.Phase   `json:"game_phase"`
	RemainingGuesses *int            `json:"remaining_guesses"`
	Result           json.RawMessage `json:"result"`
}

// HandleFrame classifies one inbound text frame and routes it. Keepalive
// echoes are absorbed here; malformed or unknown frames are logged and
// dropped without touching state.
func (s *Session) HandleFrame(data []byte) {
	if string(data) == pongFrame {
		s.log.Debug("keepalive echo")
		return
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}

	switch env.Type {
	case MsgInitialState, MsgStateUpdate:
		s.applyStateFrame(env)
	case MsgGuessResult:
		s.applyGuessFrame(env)
	default:
		s.log.Info("ignoring unknown message", zap.String("type", env.Type))
	}
}

// applyStateFrame runs the shared reducer for INITIAL_STATE and STATE_UPDATE:
// every present field overwrites, every absent field survives. Entering the
// lobby clears the per-game log; entering the game phase pulls a fresh
// recommendation snapshot.
func (s *Session) applyStateFrame(env envelope) {
	delta := domain.StateDelta{
		BestOf:           env.BestOf,
		CurrentWins:      env.PlayerWins,
		RequiredWins:     env.RequiredWins,
		Phase:            env.GamePhase,
		RemainingGuesses: env.RemainingGuesses,
	}

	s.mu.Lock()
	s.state.Apply(delta)
	if env.GamePhase != nil && *env.GamePhase == domain.PhaseLobby {
		s.state.CurrentWins = 0
		s.accumulated = make(domain.ConstraintSet)
		s.results = nil
		s.guessed = make(map[string]struct{})
		s.notice = ""
	}
	s.mu.Unlock()
	s.notify()

	if env.GamePhase != nil && *env.GamePhase == domain.PhaseGame {
		s.reconcileAsync()
	}
}

// applyGuessFrame records the authoritative result of a guess, whoever made
// it: the entry is logged, the guessed player is excluded from future
// suggestions, the derived constraints are folded in, and the remaining-guess
// counter is overwritten if present. Exactly one reconcile follows.
func (s *Session) applyGuessFrame(env envelope) {
	result, err := domain.DecodeGuessResult(env.Result)
	if err != nil {
		s.log.Warn("dropping guess result with malformed payload", zap.Error(err))
		return
	}
	result.ReceivedAt = s.clock.Now()

	s.mu.Lock()
	s.results = append(s.results, result)
	if id := result.GuessedID(); id != "" {
		s.guessed[id] = struct{}{}
	}
	s.accumulated = s.accumulated.Merge(result.DeriveConstraints())
	if env.RemainingGuesses != nil {
		s.state.RemainingGuesses = domain.ClampGuesses(*env.RemainingGuesses)
	}
	if result.IsSuccess {
		s.notice = result.Message
	}
	s.mu.Unlock()
	s.notify()

	s.reconcileAsync()
}
