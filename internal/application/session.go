package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/UchihaStesla/friberg/internal/ports"
	"go.uber.org/zap"
)

var ErrRoomRejected = errors.New("room rejected the request")

// Session is the single source of truth for one room membership: the game
// state replica, the last fetched recommendation snapshot, the accumulated
// constraints, and the result log. It is created on connect and torn down on
// disconnect; only the frame dispatcher and the reconciler write to it.
type Session struct {
	roomID    string
	api       ports.RoomAPI
	transport ports.Transport
	clock     ports.Clock
	log       *zap.Logger

	mu          sync.Mutex
	state       domain.GameState
	candidates  []domain.Candidate
	constraints domain.ConstraintSet
	accumulated domain.ConstraintSet
	results     []domain.GuessResult
	guessed     map[string]struct{}
	lastError   string
	notice      string
	fetchSeq    uint64

	// baseCtx bounds reactive fetches triggered by inbound frames, which have
	// no caller to supply one.
	baseCtx context.Context

	changes chan struct{}
}

// Snapshot is a read-only copy of the session for observers.
type Snapshot struct {
	RoomID      string
	State       domain.GameState
	Candidates  []domain.Candidate
	Constraints domain.ConstraintSet
	Results     []domain.GuessResult // newest first
	LastError   string
	Notice      string
}

func NewSession(roomID string, api ports.RoomAPI, transport ports.Transport, clock ports.Clock, logger *zap.Logger) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		roomID:      roomID,
		api:         api,
		transport:   transport,
		clock:       clock,
		log:         logger,
		state:       domain.NewGameState(),
		accumulated: make(domain.ConstraintSet),
		guessed:     make(map[string]struct{}),
		baseCtx:     context.Background(),
		changes:     make(chan struct{}, 1),
	}
}

// Start joins the room and opens the push channel.
func (s *Session) Start(ctx context.Context) error {
	ack, err := s.api.Connect(ctx, s.roomID)
	if err != nil {
		return fmt.Errorf("connect to room: %w", err)
	}
	if !ack.Success {
		return fmt.Errorf("connect to room: %w: %s", ErrRoomRejected, ack.Message)
	}

	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	if s.transport != nil {
		if err := s.transport.Open(ctx, s.roomID); err != nil {
			return fmt.Errorf("open push channel: %w", err)
		}
	}

	s.log.Info("joined room", zap.String("room", s.roomID))
	return nil
}

// Ready signals readiness and, on acknowledgment, pulls the first
// recommendation snapshot.
func (s *Session) Ready(ctx context.Context) error {
	ack, err := s.api.PlayerReady(ctx, s.roomID)
	if err != nil {
		return fmt.Errorf("player ready: %w", err)
	}
	if !ack.Success {
		return fmt.Errorf("player ready: %w: %s", ErrRoomRejected, ack.Message)
	}

	return s.Reconcile(ctx)
}

// Stop leaves the room and resets all local state to defaults. State is reset
// even when the leave call fails, mirroring a hard disconnect.
func (s *Session) Stop(ctx context.Context) error {
	var closeErr error
	if s.transport != nil {
		closeErr = s.transport.Close()
	}

	ack, err := s.api.Disconnect(ctx, s.roomID)

	s.mu.Lock()
	s.state = domain.NewGameState()
	s.candidates = nil
	s.constraints = nil
	s.accumulated = make(domain.ConstraintSet)
	s.results = nil
	s.guessed = make(map[string]struct{})
	s.lastError = ""
	s.notice = ""
	s.mu.Unlock()
	s.notify()

	if err != nil {
		return fmt.Errorf("disconnect from room: %w", err)
	}
	if !ack.Success {
		return fmt.Errorf("disconnect from room: %w: %s", ErrRoomRejected, ack.Message)
	}
	return closeErr
}

// SubmitGuess sends a manual guess intent. The immediate outcome is appended
// to the result log; the remaining-guess counter is left alone, since only the
// push channel updates it authoritatively.
func (s *Session) SubmitGuess(ctx context.Context, playerID string) (domain.GuessResult, error) {
	outcome, err := s.api.ManualGuess(ctx, s.roomID, playerID)
	return s.recordOutcome(outcome, err, playerID)
}

// AutoGuess asks the room to pick and submit the next guess itself.
func (s *Session) AutoGuess(ctx context.Context) (domain.GuessResult, error) {
	outcome, err := s.api.AutoGuess(ctx, s.roomID)
	return s.recordOutcome(outcome, err, "")
}

func (s *Session) recordOutcome(outcome ports.GuessOutcome, err error, playerID string) (domain.GuessResult, error) {
	now := s.clock.Now()

	if err != nil {
		failure := domain.GuessResult{PlayerID: playerID, Message: err.Error(), ReceivedAt: now}
		s.appendResult(failure)
		return failure, fmt.Errorf("submit guess: %w", err)
	}
	if !outcome.Success {
		failure := domain.GuessResult{PlayerID: playerID, Message: outcome.Message, ReceivedAt: now}
		s.appendResult(failure)
		return failure, fmt.Errorf("submit guess: %w: %s", ErrRoomRejected, outcome.Message)
	}

	result := domain.GuessResult{PlayerID: playerID, Message: outcome.Message}
	if outcome.Result != nil {
		result = *outcome.Result
	}
	result.ReceivedAt = now

	s.mu.Lock()
	s.results = append(s.results, result)
	if id := result.GuessedID(); id != "" {
		s.guessed[id] = struct{}{}
	}
	s.accumulated = s.accumulated.Merge(result.DeriveConstraints())
	if result.IsSuccess {
		s.notice = fmt.Sprintf("correct: %s (%s)", result.Nickname, resultFullName(result))
	}
	s.mu.Unlock()
	s.notify()

	s.reconcileAsync()
	return result, nil
}

func resultFullName(result domain.GuessResult) string {
	name := result.FirstName
	if result.LastName != "" {
		if name != "" {
			name += " "
		}
		name += result.LastName
	}
	return name
}

func (s *Session) appendResult(result domain.GuessResult) {
	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
	s.notify()
}

// SuggestNext picks the next guess locally: the highest-entropy candidate from
// the last fetched set that satisfies both the fetched and the accumulated
// constraints.
func (s *Session) SuggestNext() (domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.constraints.Merge(s.accumulated)
	return domain.BestCandidate(s.candidates, merged, s.guessed)
}

// Filtered derives a view of the last fetched candidates matching the search
// string. No network call is involved.
func (s *Session) Filtered(search string) []domain.Candidate {
	s.mu.Lock()
	candidates := make([]domain.Candidate, len(s.candidates))
	copy(candidates, s.candidates)
	s.mu.Unlock()

	return domain.Filter(candidates, search)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]domain.Candidate, len(s.candidates))
	copy(candidates, s.candidates)

	results := make([]domain.GuessResult, 0, len(s.results))
	for i := len(s.results) - 1; i >= 0; i-- {
		results = append(results, s.results[i])
	}

	constraints := make(domain.ConstraintSet, len(s.constraints))
	for key, constraint := range s.constraints {
		constraints[key] = constraint
	}

	return Snapshot{
		RoomID:      s.roomID,
		State:       s.state,
		Candidates:  candidates,
		Constraints: constraints,
		Results:     results,
		LastError:   s.lastError,
		Notice:      s.notice,
	}
}

// Changes coalesces update notifications: at least one receive is pending
// after any state mutation.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
