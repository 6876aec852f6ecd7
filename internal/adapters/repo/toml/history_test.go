package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *HistoryRepository {
	t.Helper()

	cfg := viper.New()
	cfg.Set(historyPathKey, filepath.Join(t.TempDir(), "history.toml"))

	repo, err := NewHistoryRepository(cfg)
	require.NoError(t, err)
	return repo
}

func sampleResult() domain.GuessResult {
	return domain.GuessResult{
		ID:          "p1",
		FirstName:   "Patrik",
		LastName:    "Lindberg",
		Nickname:    "f0rest",
		Nationality: &domain.TextVerdict{Result: domain.VerdictIncorrectClose, Value: "SE"},
		Team:        &domain.TeamVerdict{Result: domain.VerdictIncorrect, Data: "NIP"},
		Age:         &domain.NumberVerdict{Result: domain.VerdictHighClose, Value: 36},
		ReceivedAt:  time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC),
	}
}

func TestAppendAndListRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "room-1", sampleResult()))

	results, err := repo.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "p1", got.GuessedID())
	assert.Equal(t, "f0rest", got.Nickname)
	require.NotNil(t, got.Nationality)
	assert.Equal(t, domain.VerdictIncorrectClose, got.Nationality.Result)
	require.NotNil(t, got.Team)
	assert.Equal(t, domain.TeamName("NIP"), got.Team.Data)
	require.NotNil(t, got.Age)
	assert.Equal(t, 36, got.Age.Value)
	assert.Equal(t, time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC), got.ReceivedAt)
}

func TestListUnknownRoomIsEmpty(t *testing.T) {
	repo := newTestRepository(t)

	results, err := repo.ListByRoom(context.Background(), "room-9")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAppendKeepsRoomsSeparate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "room-1", sampleResult()))
	other := sampleResult()
	other.ID = "p2"
	other.Nickname = "device"
	require.NoError(t, repo.Append(ctx, "room-2", other))
	require.NoError(t, repo.Append(ctx, "room-1", other))

	roomOne, err := repo.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, roomOne, 2)

	roomTwo, err := repo.ListByRoom(ctx, "room-2")
	require.NoError(t, err)
	require.Len(t, roomTwo, 1)
	assert.Equal(t, "device", roomTwo[0].Nickname)
}

func TestClearRemovesOnlyThatRoom(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "room-1", sampleResult()))
	require.NoError(t, repo.Append(ctx, "room-2", sampleResult()))

	require.NoError(t, repo.Clear(ctx, "room-1"))

	roomOne, err := repo.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, roomOne)

	roomTwo, err := repo.ListByRoom(ctx, "room-2")
	require.NoError(t, err)
	assert.Len(t, roomTwo, 1)
}

func TestHistoryFileHasRestrictivePermissions(t *testing.T) {
	cfg := viper.New()
	path := filepath.Join(t.TempDir(), "history.toml")
	cfg.Set(historyPathKey, path)

	repo, err := NewHistoryRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), "room-1", sampleResult()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(historyFileMode), info.Mode().Perm())
}

func TestRejectsNewerSchemaVersion(t *testing.T) {
	cfg := viper.New()
	path := filepath.Join(t.TempDir(), "history.toml")
	cfg.Set(historyPathKey, path)
	require.NoError(t, os.WriteFile(path, []byte("version = 99\n"), 0o600))

	repo, err := NewHistoryRepository(cfg)
	require.NoError(t, err)

	_, err = repo.ListByRoom(context.Background(), "room-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported history schema version")
}

func TestCanceledContextShortCircuits(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, repo.Append(ctx, "room-1", sampleResult()))
	_, err := repo.ListByRoom(ctx, "room-1")
	require.Error(t, err)
}
