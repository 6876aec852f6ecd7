package ports

import (
	"context"

	"github.com/UchihaStesla/friberg/internal/domain"
)

// Ack is the outcome of a plain intent call: success or failure plus a
// human-readable message.
type Ack struct {
	Success bool
	Message string
}

// GuessOutcome is the immediate response to a guess intent. It only describes
// this one guess; the authoritative remaining-guess counter arrives separately
// over the push channel.
type GuessOutcome struct {
	Success bool
	Message string
	Result  *domain.GuessResult
}

// RecommendationSnapshot is a full snapshot from the recommendation source:
// the ranked candidate list, the active constraints, and optionally the game
// metadata expressed as a partial state assertion.
type RecommendationSnapshot struct {
	Candidates  []domain.Candidate
	Constraints domain.ConstraintSet
	Metadata    *domain.StateDelta
}

// RoomAPI is the pull half of the room protocol.
type RoomAPI interface {
	Connect(ctx context.Context, roomID string) (Ack, error)
	Disconnect(ctx context.Context, roomID string) (Ack, error)
	PlayerReady(ctx context.Context, roomID string) (Ack, error)
	Recommendations(ctx context.Context, roomID string) (RecommendationSnapshot, error)
	ManualGuess(ctx context.Context, roomID, playerID string) (GuessOutcome, error)
	AutoGuess(ctx context.Context, roomID string) (GuessOutcome, error)
}

// Transport is the push half: a persistent duplex channel whose inbound
// frames are delivered to a handler registered at construction.
type Transport interface {
	Open(ctx context.Context, roomID string) error
	Close() error
}
