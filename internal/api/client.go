package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tomz197/bugzapper/internal/store"
)

// StatusError is returned by Client when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a score server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL, e.g. "http://localhost:3000".
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// GameStats is the summary of a finished game, as submitted by the client.
type GameStats struct {
	PlayerName         string `json:"playerName"`
	BulletsFired       int    `json:"bulletsFired"`
	AsteroidsDestroyed int    `json:"asteroidsDestroyed"`
	LevelReached       int    `json:"levelReached"`
	TimePlayed         int    `json:"timePlayed"`
	Score              int    `json:"score"`
}

// TopScores fetches the score board.
func (c *Client) TopScores(ctx context.Context) ([]store.ScoreRecord, error) {
	var out []store.ScoreRecord
	err := c.do(ctx, http.MethodGet, "/api/scores", nil, &out)
	return out, err
}

// SubmitScore records a score and returns the stored record.
func (c *Client) SubmitScore(ctx context.Context, playerName string, score int) (store.ScoreRecord, error) {
	body := map[string]any{"playerName": playerName, "score": score}
	var out store.ScoreRecord
	err := c.do(ctx, http.MethodPost, "/api/scores", body, &out)
	return out, err
}

// ClearScores empties the score board.
func (c *Client) ClearScores(ctx context.Context) error {
	var out MessageResponse
	return c.do(ctx, http.MethodGet, "/api/clearScores", nil, &out)
}

// RecentPlayerStats fetches the latest game summaries.
func (c *Client) RecentPlayerStats(ctx context.Context) ([]store.PlayerStatsRecord, error) {
	var out []store.PlayerStatsRecord
	err := c.do(ctx, http.MethodGet, "/api/playerStats", nil, &out)
	return out, err
}

// SubmitPlayerStats records a game summary and returns the stored record.
func (c *Client) SubmitPlayerStats(ctx context.Context, stats GameStats) (store.PlayerStatsRecord, error) {
	var out store.PlayerStatsRecord
	err := c.do(ctx, http.MethodPost, "/api/playerStats", stats, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
