package domain

import (
	"encoding/json"
	"strings"
)

// TeamName tolerates both wire shapes the recommendation source emits for a
// team: a plain string or an object carrying a name field.
type TeamName string

func (t *TeamName) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = TeamName(plain)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = TeamName(obj.Name)
	return nil
}

func (t TeamName) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

type Candidate struct {
	PlayerID         string   `json:"player_id"`
	FirstName        string   `json:"first_name,omitempty"`
	LastName         string   `json:"last_name,omitempty"`
	Nickname         string   `json:"nickname,omitempty"`
	Nationality      string   `json:"nationality,omitempty"`
	Team             TeamName `json:"team,omitempty"`
	Age              int      `json:"age,omitempty"`
	Role             string   `json:"role,omitempty"`
	MajorAppearances int      `json:"major_appearances,omitempty"`
	IsRetired        bool     `json:"is_retired,omitempty"`
	EntropyValue     float64  `json:"entropy_value,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
}

func (c Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Filter derives the subset of candidates whose name, nationality, team, or
// role contains the search string, case-insensitively. It never mutates the
// input; an empty search returns the full set unchanged in order.
func Filter(candidates []Candidate, search string) []Candidate {
	search = strings.ToLower(search)
	if search == "" {
		return candidates
	}

	matched := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.matchesSearch(search) {
			matched = append(matched, candidate)
		}
	}
	return matched
}

func (c Candidate) matchesSearch(search string) bool {
	fullName := strings.ToLower(c.FirstName + " " + c.LastName + " " + c.Nickname)
	if strings.Contains(fullName, search) {
		return true
	}
	return strings.Contains(strings.ToLower(c.Nationality), search) ||
		strings.Contains(strings.ToLower(string(c.Team)), search) ||
		strings.Contains(strings.ToLower(c.Role), search)
}
