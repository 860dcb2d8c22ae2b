// ABOUTME: HTTP client for the remote inference endpoint
// ABOUTME: Single request/response exchange, no retries, no streaming

package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrNoReply is returned when the endpoint answers without a usable reply
// field. The engine treats it the same as any transport failure.
var ErrNoReply = errors.New("no reply in response")

// defaultTimeout bounds a single exchange when the config supplies none.
// The engine itself imposes no timeouts.
const defaultTimeout = 30 * time.Second

// request is the wire format for an outbound turn.
type request struct {
	Message string `json:"message"`
}

// response is the wire format for a reply.
type response struct {
	Reply string `json:"reply"`
}

// Client sends user utterances to the remote responder.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a responder client for the given endpoint URL.
// A zero timeout falls back to the default. Pass nil logger for default.
func New(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "responder"),
	}
}

// Converse sends one user utterance and returns the reply text.
// Network errors, non-success statuses, and missing reply fields are all
// plain errors; the caller decides what stands in for the reply.
func (c *Client) Converse(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(request{Message: text})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling responder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("responder status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if parsed.Reply == "" {
		return "", ErrNoReply
	}

	c.logger.Debug("reply received", "chars", len(parsed.Reply))
	return parsed.Reply, nil
}
