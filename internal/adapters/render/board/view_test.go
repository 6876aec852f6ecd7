package board

import (
	"testing"
	"time"

	"github.com/UchihaStesla/friberg/internal/application"
	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyBoard(t *testing.T) {
	output, err := Render(application.Snapshot{
		RoomID: "room-1",
		State:  domain.NewGameState(),
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Room room-1")
	assert.Contains(t, output, "lobby")
	assert.Contains(t, output, "BO3 0/2")
	assert.Contains(t, output, "8 guesses left")
	assert.Contains(t, output, "submissions closed")
	assert.Contains(t, output, "No constraints yet.")
	assert.Contains(t, output, "No recommendations loaded.")
	assert.Contains(t, output, "No guesses yet.")
}

func TestRenderMidGameBoard(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	state := domain.NewGameState()
	state.Phase = domain.PhaseGame
	state.SubmissionOpen = true
	state.CurrentWins = 1
	state.RemainingGuesses = 6

	output, err := Render(application.Snapshot{
		RoomID: "room-7",
		State:  state,
		Constraints: domain.ConstraintSet{
			domain.KeyNationality: {Exclude: "SE", Region: "Europe"},
			domain.KeyAge:         {Min: domain.IntPtr(25), Max: domain.IntPtr(30)},
			domain.KeyMajors:      {Max: domain.IntPtr(3)},
			domain.KeyRetired:     {Exact: false},
		},
		Candidates: []domain.Candidate{
			{PlayerID: "p2", Nickname: "device", FirstName: "Nicolai", LastName: "Reedtz",
				Team: "Astralis", Age: 28, Role: "awper", MajorAppearances: 2, EntropyValue: 0.812},
		},
		Results: []domain.GuessResult{
			{
				ID:          "p1",
				Nickname:    "f0rest",
				Nationality: &domain.TextVerdict{Result: domain.VerdictIncorrectClose, Value: "SE"},
				Age:         &domain.NumberVerdict{Result: domain.VerdictHighClose, Value: 36},
				Role:        &domain.TextVerdict{Result: domain.VerdictCorrect, Value: "rifler"},
				ReceivedAt:  now.Add(-30 * time.Second),
			},
		},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "guessing")
	assert.Contains(t, output, "BO3 1/2")
	assert.Contains(t, output, "6 guesses left")
	assert.Contains(t, output, "submissions open")

	assert.Contains(t, output, "nationality")
	assert.Contains(t, output, "not SE, in Europe")
	assert.Contains(t, output, "25 to 30")
	assert.Contains(t, output, "<= 3")
	assert.Contains(t, output, "= false")

	assert.Contains(t, output, "device")
	assert.Contains(t, output, "Nicolai Reedtz")
	assert.Contains(t, output, "Astralis")
	assert.Contains(t, output, "majors:2")

	assert.Contains(t, output, "f0rest")
	assert.Contains(t, output, "nat:SE(~)")
	assert.Contains(t, output, "age:36(~v)")
	assert.Contains(t, output, "role:rifler(=)")
	assert.Contains(t, output, "30s ago")
}

func TestRenderTruncatesCandidateList(t *testing.T) {
	candidates := make([]domain.Candidate, 5)
	for i := range candidates {
		candidates[i] = domain.Candidate{PlayerID: "p", Nickname: "nick"}
	}

	output, err := Render(application.Snapshot{
		RoomID:     "room-1",
		State:      domain.NewGameState(),
		Candidates: candidates,
	}, RenderOptions{MaxCandidates: 3})

	require.NoError(t, err)
	assert.Contains(t, output, "candidates: 5")
	assert.Contains(t, output, "... and 2 more")
}

func TestRenderShowsNoticeAndLastError(t *testing.T) {
	output, err := Render(application.Snapshot{
		RoomID:    "room-1",
		State:     domain.NewGameState(),
		Notice:    "correct: f0rest (Patrik Lindberg)",
		LastError: "load recommendations: status 502",
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "correct: f0rest (Patrik Lindberg)")
	assert.Contains(t, output, "load recommendations: status 502")
}

func TestRenderMarksLocalFailureEntries(t *testing.T) {
	output, err := Render(application.Snapshot{
		RoomID:  "room-1",
		State:   domain.NewGameState(),
		Results: []domain.GuessResult{{Message: "not your turn"}},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "! not your turn")
}
