package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/UchihaStesla/friberg/internal/ports"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// ErrMalformedRecommendations marks a recommendation response whose player
// list is not an array. The caller keeps its previous snapshot in that case.
var ErrMalformedRecommendations = errors.New("recommendation payload is not a list")

// RequestError is an application-level rejection: the server answered, but
// with success=false.
type RequestError struct {
	Endpoint string
	Message  string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request rejected", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// Client talks to the room's HTTP API. It implements ports.RoomAPI.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

var _ ports.RoomAPI = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

type roomRequest struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id,omitempty"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type guessResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Result  *domain.GuessResult `json:"result"`
}

// stateMetadata is the partial game state some responses carry alongside their
// payload. All fields are optional.
type stateMetadata struct {
	BestOf           *domain.BestOf `json:"best_of"`
	CurrentWins      *int           `json:"current_wins"`
	RequiredWins     *int           `json:"required_wins"`
	CurrentPhase     *domain.Phase  `json:"current_phase"`
	RemainingGuesses *int           `json:"remaining_guesses"`
}

func (m *stateMetadata) delta() *domain.StateDelta {
	if m == nil {
		return nil
	}
	return &domain.StateDelta{
		BestOf:           m.BestOf,
		CurrentWins:      m.CurrentWins,
		RequiredWins:     m.RequiredWins,
		Phase:            m.CurrentPhase,
		RemainingGuesses: m.RemainingGuesses,
	}
}

type recommendationsResponse struct {
	Success         bool                 `json:"success"`
	Message         string               `json:"message"`
	Recommendations json.RawMessage      `json:"recommendations"`
	Constraints     domain.ConstraintSet `json:"constraints"`
	Metadata        *stateMetadata       `json:"game_metadata"`
}

func (c *Client) Connect(ctx context.Context, roomID string) (ports.Ack, error) {
	return c.ack(ctx, "/api/connect", roomRequest{RoomID: roomID})
}

func (c *Client) Disconnect(ctx context.Context, roomID string) (ports.Ack, error) {
	return c.ack(ctx, "/api/disconnect", roomRequest{RoomID: roomID})
}

func (c *Client) PlayerReady(ctx context.Context, roomID string) (ports.Ack, error) {
	return c.ack(ctx, "/api/player-ready", roomRequest{RoomID: roomID})
}

func (c *Client) Recommendations(ctx context.Context, roomID string) (ports.RecommendationSnapshot, error) {
	var resp recommendationsResponse
	if err := c.post(ctx, "/api/recommendations", roomRequest{RoomID: roomID}, &resp); err != nil {
		return ports.RecommendationSnapshot{}, err
	}
	if !resp.Success {
		return ports.RecommendationSnapshot{}, &RequestError{Endpoint: "/api/recommendations", Message: resp.Message}
	}

	candidates, err := decodePlayers(resp.Recommendations)
	if err != nil {
		return ports.RecommendationSnapshot{}, err
	}

	return ports.RecommendationSnapshot{
		Candidates:  candidates,
		Constraints: resp.Constraints,
		Metadata:    resp.Metadata.delta(),
	}, nil
}

func (c *Client) ManualGuess(ctx context.Context, roomID, playerID string) (ports.GuessOutcome, error) {
	return c.guess(ctx, "/api/manual-guess", roomRequest{RoomID: roomID, PlayerID: playerID})
}

func (c *Client) AutoGuess(ctx context.Context, roomID string) (ports.GuessOutcome, error) {
	return c.guess(ctx, "/api/auto-guess", roomRequest{RoomID: roomID})
}

func (c *Client) ack(ctx context.Context, path string, payload roomRequest) (ports.Ack, error) {
	var resp ackResponse
	if err := c.post(ctx, path, payload, &resp); err != nil {
		return ports.Ack{}, err
	}
	return ports.Ack{Success: resp.Success, Message: resp.Message}, nil
}

func (c *Client) guess(ctx context.Context, path string, payload roomRequest) (ports.GuessOutcome, error) {
	var resp guessResponse
	if err := c.post(ctx, path, payload, &resp); err != nil {
		return ports.GuessOutcome{}, err
	}
	return ports.GuessOutcome{Success: resp.Success, Message: resp.Message, Result: resp.Result}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("room api error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("call %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodePlayers(raw json.RawMessage) ([]domain.Candidate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, ErrMalformedRecommendations
	}

	var candidates []domain.Candidate
	if err := json.Unmarshal(trimmed, &candidates); err != nil {
		return nil, fmt.Errorf("decode player list: %w", err)
	}
	return candidates, nil
}
