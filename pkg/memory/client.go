package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client reads and writes UserMemory against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type saveRequest struct {
	UserID string     `json:"userId"`
	Memory UserMemory `json:"memory"`
}

// Load fetches the record for userID. It never fails: any transport
// error, non-success status or undecodable body yields the default record
// with the cause attached.
func (c *Client) Load(ctx context.Context, userID string) LoadResult {
	fallback := func(err error) LoadResult {
		return LoadResult{Memory: Default(), FromBackend: false, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/memory?userId="+url.QueryEscape(userID), nil)
	if err != nil {
		return fallback(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallback(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fallback(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fallback(fmt.Errorf("memory request failed: status %d", resp.StatusCode))
	}

	mem := Default()
	if err := json.Unmarshal(body, &mem); err != nil {
		return fallback(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if mem.UserProfile == nil {
		mem.UserProfile = map[string]any{}
	}

	return LoadResult{Memory: mem, FromBackend: true}
}

// Save replaces the stored record for userID. Best-effort with no retry;
// the caller fire-and-forgets and the next successful save catches up.
func (c *Client) Save(ctx context.Context, userID string, mem UserMemory) error {
	jsonData, err := json.Marshal(saveRequest{UserID: userID, Memory: mem})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/memory", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Response body is ignored, only transport failure is observed.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("memory save failed: status %d", resp.StatusCode)
	}

	return nil
}
