package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()

	ack := func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}

	players := []map[string]any{
		{"player_id": "p1", "nickname": "f0rest", "first_name": "Patrik", "last_name": "Lindberg",
			"nationality": "SE", "team": "NIP", "age": 36, "role": "rifler", "entropy_value": 0.9},
		{"player_id": "p2", "nickname": "device", "first_name": "Nicolai", "last_name": "Reedtz",
			"nationality": "DK", "team": "Astralis", "age": 28, "role": "awper", "entropy_value": 0.8},
	}
	nicknames := map[string]string{"p1": "f0rest", "p2": "device"}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/connect", ack)
	mux.HandleFunc("/api/disconnect", ack)
	mux.HandleFunc("/api/player-ready", ack)
	mux.HandleFunc("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"recommendations": players,
			"constraints": map[string]any{
				"nationality": map[string]any{"exclude": "FR"},
			},
			"game_metadata": map[string]any{"current_phase": "game", "remaining_guesses": 6},
		})
	})
	mux.HandleFunc("/api/manual-guess", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": map[string]any{
				"id":          body["player_id"],
				"nickname":    nicknames[body["player_id"]],
				"isSuccess":   false,
				"nationality": map[string]any{"result": "INCORRECT", "value": "SE"},
			},
		})
	})
	mux.HandleFunc("/api/auto-guess", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"id": "p1", "nickname": "f0rest", "isSuccess": true},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestBoardRequiresRoom(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "board")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room id is required")
}

func TestBoardRendersSnapshot(t *testing.T) {
	server := newGameServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"board", "--server", server.URL, "--room", "room-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Room room-1")
	assert.Contains(t, stdout, "guessing")
	assert.Contains(t, stdout, "6 guesses left")
	assert.Contains(t, stdout, "f0rest")
	assert.Contains(t, stdout, "device")
	assert.Contains(t, stdout, "not FR")
}

func TestBoardSearchFiltersCandidates(t *testing.T) {
	server := newGameServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"board", "--server", server.URL, "--room", "room-1", "--search", "awper")

	require.NoError(t, err)
	assert.Contains(t, stdout, "device")
	assert.NotContains(t, stdout, "f0rest")
}

func TestRoomCanComeFromEnvironment(t *testing.T) {
	server := newGameServer(t)
	t.Setenv("FRIBERG_ROOM", "room-env")

	stdout, _, err := executeCLI(t, t.TempDir(), "board", "--server", server.URL)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Room room-env")
}

func TestGuessResolvesUniqueSearchMatch(t *testing.T) {
	server := newGameServer(t)
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"guess", "device", "--server", server.URL, "--room", "room-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "incorrect: device")
}

func TestGuessByPlayerID(t *testing.T) {
	server := newGameServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"guess", "p1", "--server", server.URL, "--room", "room-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "incorrect: f0rest")
}

func TestGuessRejectsAmbiguousQuery(t *testing.T) {
	server := newGameServer(t)

	// Both candidates' nationalities land in Europe; "e" matches both nicknames.
	_, _, err := executeCLI(t, t.TempDir(),
		"guess", "e", "--server", server.URL, "--room", "room-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
	assert.Contains(t, err.Error(), "f0rest")
	assert.Contains(t, err.Error(), "device")
}

func TestGuessRejectsUnknownPlayer(t *testing.T) {
	server := newGameServer(t)

	_, _, err := executeCLI(t, t.TempDir(),
		"guess", "zywoo", "--server", server.URL, "--room", "room-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidate matches")
}

func TestGuessRecordsHistory(t *testing.T) {
	server := newGameServer(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home,
		"guess", "p2", "--server", server.URL, "--room", "room-1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "history", "--room", "room-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "incorrect")
	assert.Contains(t, stdout, "device")
}

func TestHistoryClearForgetsRoom(t *testing.T) {
	server := newGameServer(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home,
		"guess", "p2", "--server", server.URL, "--room", "room-1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "history", "clear", "--room", "room-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cleared history for room-1")

	stdout, _, err = executeCLI(t, home, "history", "--room", "room-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no guesses recorded")
}

func TestSuggestPrintsTopCandidate(t *testing.T) {
	server := newGameServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"suggest", "--server", server.URL, "--room", "room-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "f0rest")
	assert.Contains(t, stdout, "0.900")
}

func TestAutoGuessPrintsOutcome(t *testing.T) {
	server := newGameServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"autoguess", "--server", server.URL, "--room", "room-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "correct: f0rest")
}

func TestConnectRejectionSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/connect", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "room full"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	_, _, err := executeCLI(t, t.TempDir(),
		"board", "--server", server.URL, "--room", "room-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "room full")
}

func TestConfigInitWritesFile(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "init", "--server", "https://game.example")
	require.NoError(t, err)
	assert.Contains(t, stdout, "config.toml")

	data, err := os.ReadFile(filepath.Join(home, ".friberg", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://game.example")
	assert.Contains(t, string(data), "history.toml")
}

func TestConfigInitRefusesOverwriteWithoutForce(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "config", "init")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, home, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigFileSuppliesRoomAndServer(t *testing.T) {
	server := newGameServer(t)
	home := t.TempDir()

	configDir := filepath.Join(home, ".friberg")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	config := "server = '" + server.URL + "'\nroom = 'room-cfg'\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o600))

	stdout, _, err := executeCLI(t, home, "board")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Room room-cfg")
}
