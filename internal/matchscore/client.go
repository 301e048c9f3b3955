package matchscore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client calls the external scoring service over HTTP. The service exposes a
// single POST /match endpoint taking two image references and returning an
// integer score. No authentication is attached; the service is expected on a
// fixed local network address.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient constructs a scoring client for the provided base URL. The
// timeout is the only abort mechanism: an in-flight call cannot otherwise be
// cancelled once issued.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type matchRequest struct {
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
}

type matchResponse struct {
	MatchScore int `json:"match_score"`
}

// Score submits both image references and returns the reported score.
func (c *Client) Score(ctx context.Context, image1, image2 string) (int, error) {
	if c == nil || c.BaseURL == "" {
		return 0, ErrScorerUnavailable
	}

	body, err := json.Marshal(matchRequest{Image1: image1, Image2: image2})
	if err != nil {
		return 0, fmt.Errorf("encode match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/match", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrScorerUnavailable, resp.StatusCode)
	}

	var payload matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("parse match response: %w", err)
	}

	if payload.MatchScore < 0 || payload.MatchScore > 100 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidScore, payload.MatchScore)
	}

	return payload.MatchScore, nil
}
