package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Violet backend's /api/chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chat client. A zero timeout means no client-imposed
// deadline on the chat call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts the full conversation log and returns the backend's reply.
// Any transport failure, non-success status or undecodable body is
// returned as an error; the caller owns the degraded-turn behavior.
func (c *Client) Send(ctx context.Context, userID string, messages []Entry) (*ReplyPayload, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("backend URL not configured")
	}

	jsonData, err := json.Marshal(chatRequest{UserID: userID, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat request failed:\n  Status: %d\n  Body:   %s", resp.StatusCode, string(body))
	}

	var payload ReplyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &payload, nil
}
