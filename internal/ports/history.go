package ports

import (
	"context"

	"github.com/UchihaStesla/friberg/internal/domain"
)

// HistoryRepository persists guess results across sessions, keyed by room.
type HistoryRepository interface {
	Append(ctx context.Context, roomID string, result domain.GuessResult) error
	ListByRoom(ctx context.Context, roomID string) ([]domain.GuessResult, error)
	Clear(ctx context.Context, roomID string) error
}
