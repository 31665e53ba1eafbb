package llm

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

// ErrQuotaExhausted is returned when the generation gateway reports that the
// caller has run out of request quota. Callers treat it as non-retryable.
var ErrQuotaExhausted = errors.New("llm quota exhausted")

const defaultTimeout = 30 * time.Second

// Client is a thin JSON client for the text-generation gateway. All language
// model traffic in the system goes through this single adapter.
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

type generateRequest struct {
	Prompt string `json:"prompt"`
	JSON   bool   `json:"json,omitempty"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// GenerateText sends a free-form prompt and returns the raw completion.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, generateRequest{Prompt: prompt})
}

// GenerateStructured asks the gateway for a JSON completion and unmarshals it
// into out. Markdown code fences around the payload are tolerated.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, out any) error {
	text, err := c.generate(ctx, generateRequest{Prompt: prompt, JSON: true})
	if err != nil {
		return err
	}
	cleaned := stripCodeFence(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("decode structured completion: %w", err)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	if c.baseURL == "" {
		return "", errors.New("llm base url is not configured")
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generation gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if c.logger != nil {
			c.logger.Warn("generation gateway rejected request over quota",
				"event", "llm_quota_exhausted",
				"module", "internal/platform/llm",
				"layer", "platform",
			)
		}
		return "", ErrQuotaExhausted
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("generation gateway error: %s", decoded.Error)
	}
	if strings.TrimSpace(decoded.Text) == "" {
		return "", errors.New("generation gateway returned empty completion")
	}
	return decoded.Text, nil
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
