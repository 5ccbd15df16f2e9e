// Package assist implements the model-backed slide classification
// collaborator against the Anthropic Messages API. The inducer works
// without it; everything here is best-effort and bounded by timeouts.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/induct"
)

// Client calls the Anthropic Messages API for slide role classification.
// It satisfies induct.Assist.
type Client struct {
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client

	// Stats, when set, collects call latency samples.
	Stats *Stats
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// guessPayload is the JSON shape the model is asked to answer with.
type guessPayload struct {
	Role       string  `json:"role"`
	Confidence float64 `json:"confidence"`
	Caption    string  `json:"caption"`
}

// ClassifySlide asks the model for the slide's functional role. Transient
// API failures are retried with backoff inside the call; whatever error
// escapes means the collaborator is unavailable and the caller falls
// back to heuristics.
func (c *Client) ClassifySlide(ctx context.Context, s deck.Slide) (induct.RoleGuess, error) {
	prompt := buildSlidePrompt(s)

	var lastErr error
	for attempt := range MaxRetries {
		guess, err := c.classifyOnce(ctx, prompt)
		if err == nil {
			return guess, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return induct.RoleGuess{}, ctx.Err()
		}
	}
	if c.Stats != nil {
		c.Stats.RecordFailure()
	}
	return induct.RoleGuess{}, lastErr
}

func (c *Client) classifyOnce(ctx context.Context, prompt string) (induct.RoleGuess, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.Stats != nil {
		start := time.Now()
		defer func() {
			c.Stats.Record(time.Since(start).Milliseconds())
		}()
	}

	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 256,
		System:    classifySystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return induct.RoleGuess{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return induct.RoleGuess{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return induct.RoleGuess{}, fmt.Errorf("anthropic api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return induct.RoleGuess{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return induct.RoleGuess{}, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return induct.RoleGuess{}, fmt.Errorf("anthropic api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return induct.RoleGuess{}, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return induct.RoleGuess{}, fmt.Errorf("anthropic error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return induct.RoleGuess{}, fmt.Errorf("empty response from model")
	}

	return parseGuess(apiResp.Content[0].Text)
}

func parseGuess(text string) (induct.RoleGuess, error) {
	var payload guessPayload
	if err := json.Unmarshal([]byte(stripCodeBlock(text)), &payload); err != nil {
		return induct.RoleGuess{}, fmt.Errorf("parse guess json: %w (raw: %s)", err, truncate(text, 200))
	}
	role, ok := normalizeRole(payload.Role)
	if !ok {
		return induct.RoleGuess{}, fmt.Errorf("unknown role %q in model answer", payload.Role)
	}
	return induct.RoleGuess{
		Role:       role,
		Confidence: payload.Confidence,
		Caption:    payload.Caption,
	}, nil
}

func normalizeRole(s string) (induct.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opening":
		return induct.RoleOpening, true
	case "toc", "table_of_contents":
		return induct.RoleTOC, true
	case "section_header", "section":
		return induct.RoleSectionHeader, true
	case "ending":
		return induct.RoleEnding, true
	case "content":
		return induct.RoleContent, true
	}
	return "", false
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
