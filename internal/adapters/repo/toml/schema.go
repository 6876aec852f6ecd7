package toml

import (
	"fmt"
	"time"

	"github.com/UchihaStesla/friberg/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Rooms   []roomSchema `toml:"rooms"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported history schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type roomSchema struct {
	ID      string        `toml:"id"`
	Guesses []guessSchema `toml:"guesses"`
}

type guessSchema struct {
	PlayerID         string               `toml:"player_id,omitempty"`
	FirstName        string               `toml:"first_name,omitempty"`
	LastName         string               `toml:"last_name,omitempty"`
	Nickname         string               `toml:"nickname,omitempty"`
	Success          bool                 `toml:"success,omitempty"`
	Message          string               `toml:"message,omitempty"`
	ReceivedAt       string               `toml:"received_at,omitempty"`
	Nationality      *textVerdictSchema   `toml:"nationality,omitempty"`
	Team             *textVerdictSchema   `toml:"team,omitempty"`
	Age              *numberVerdictSchema `toml:"age,omitempty"`
	Role             *textVerdictSchema   `toml:"role,omitempty"`
	MajorAppearances *numberVerdictSchema `toml:"major_appearances,omitempty"`
	Retired          *bool                `toml:"retired,omitempty"`
}

type textVerdictSchema struct {
	Result string `toml:"result"`
	Value  string `toml:"value,omitempty"`
}

type numberVerdictSchema struct {
	Result string `toml:"result"`
	Value  int    `toml:"value,omitempty"`
}

func toSchema(result domain.GuessResult) guessSchema {
	entry := guessSchema{
		PlayerID:  result.GuessedID(),
		FirstName: result.FirstName,
		LastName:  result.LastName,
		Nickname:  result.Nickname,
		Success:   result.IsSuccess,
		Message:   result.Message,
		Retired:   result.IsRetired,
	}
	if !result.ReceivedAt.IsZero() {
		entry.ReceivedAt = result.ReceivedAt.UTC().Format(time.RFC3339)
	}

	if v := result.Nationality; v != nil {
		entry.Nationality = &textVerdictSchema{Result: string(v.Result), Value: v.Value}
	}
	if v := result.Team; v != nil {
		entry.Team = &textVerdictSchema{Result: string(v.Result), Value: string(v.Data)}
	}
	if v := result.Age; v != nil {
		entry.Age = &numberVerdictSchema{Result: string(v.Result), Value: v.Value}
	}
	if v := result.Role; v != nil {
		entry.Role = &textVerdictSchema{Result: string(v.Result), Value: v.Value}
	}
	if v := result.MajorAppearances; v != nil {
		entry.MajorAppearances = &numberVerdictSchema{Result: string(v.Result), Value: v.Value}
	}

	return entry
}

func fromSchema(entry guessSchema) domain.GuessResult {
	result := domain.GuessResult{
		PlayerID:  entry.PlayerID,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		Nickname:  entry.Nickname,
		IsSuccess: entry.Success,
		Message:   entry.Message,
		IsRetired: entry.Retired,
	}
	if entry.ReceivedAt != "" {
		if at, err := time.Parse(time.RFC3339, entry.ReceivedAt); err == nil {
			result.ReceivedAt = at
		}
	}

	if v := entry.Nationality; v != nil {
		result.Nationality = &domain.TextVerdict{Result: domain.VerdictKind(v.Result), Value: v.Value}
	}
	if v := entry.Team; v != nil {
		result.Team = &domain.TeamVerdict{Result: domain.VerdictKind(v.Result), Data: domain.TeamName(v.Value)}
	}
	if v := entry.Age; v != nil {
		result.Age = &domain.NumberVerdict{Result: domain.VerdictKind(v.Result), Value: v.Value}
	}
	if v := entry.Role; v != nil {
		result.Role = &domain.TextVerdict{Result: domain.VerdictKind(v.Result), Value: v.Value}
	}
	if v := entry.MajorAppearances; v != nil {
		result.MajorAppearances = &domain.NumberVerdict{Result: domain.VerdictKind(v.Result), Value: v.Value}
	}

	return result
}
