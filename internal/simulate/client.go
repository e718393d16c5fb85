package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/internal/domain/types"
)

// Client talks to a running compare HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Songs lists every song.
func (c *Client) Songs(ctx context.Context) ([]model.Song, error) {
	var out []model.Song
	err := c.do(ctx, http.MethodGet, "/songs", nil, &out)
	return out, err
}

// Matchup asks for the next pair.
func (c *Client) Matchup(ctx context.Context) (types.Matchup, error) {
	var out types.Matchup
	err := c.do(ctx, http.MethodGet, "/matchup", nil, &out)
	return out, err
}

// Submit posts a verdict.
func (c *Client) Submit(ctx context.Context, v types.Verdict) (types.MatchResult, error) {
	var out types.MatchResult
	err := c.do(ctx, http.MethodPost, "/matches", v, &out)
	return out, err
}

// Leaderboard fetches standings. limit <= 0 leaves the bound to the server.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]types.Standing, error) {
	path := "/leaderboard"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []types.Standing
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Rank reads one song's standing.
func (c *Client) Rank(ctx context.Context, songID int) (types.Standing, error) {
	var out types.Standing
	err := c.do(ctx, http.MethodGet, "/rank/"+strconv.Itoa(songID), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &e)
		return fmt.Errorf("%w: %s %s: %d %s: %s", ErrRemote, method, path, resp.StatusCode, e.Code, e.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
