// Package ledger talks to the external settlement ledger that anchors
// contests. Settlement is best effort: callers log failures and move on.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

type declareWinnerRequest struct {
	ContestRef    string `json:"contest_ref"`
	WinnerAddress string `json:"winner_address"`
}

type declareWinnerResponse struct {
	Receipt string `json:"receipt"`
	Error   string `json:"error,omitempty"`
}

// DeclareWinner records the winner against the contest's ledger entry and
// returns the settlement receipt.
func (c *Client) DeclareWinner(ctx context.Context, contestRef string, winnerAddress string) (string, error) {
	if c.baseURL == "" {
		return "", errors.New("ledger base url is not configured")
	}
	contestRef = strings.TrimSpace(contestRef)
	if contestRef == "" {
		return "", errors.New("ledger contest ref is required")
	}

	payload, err := json.Marshal(declareWinnerRequest{
		ContestRef:    contestRef,
		WinnerAddress: strings.TrimSpace(winnerAddress),
	})
	if err != nil {
		return "", fmt.Errorf("encode settlement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/contests/declare-winner", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call settlement ledger: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read settlement response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("settlement ledger returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded declareWinnerResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode settlement response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("settlement ledger error: %s", decoded.Error)
	}
	if c.logger != nil {
		c.logger.Info("winner declared on ledger",
			"event", "ledger_winner_declared",
			"module", "internal/platform/ledger",
			"layer", "platform",
			"contest_ref", contestRef,
			"receipt", decoded.Receipt,
		)
	}
	return decoded.Receipt, nil
}
