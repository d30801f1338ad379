// Package upstream talks to the two external collaborators: the schedule
// store, which owns schedule persistence, and the notification dispatcher,
// which owns outbound client messaging. Every call carries the configured
// bearer token. Failed writes are reported once and never retried here.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"collection-status-backend/config"
	"collection-status-backend/internal/engine"
	"collection-status-backend/internal/thread"
)

// Client is the HTTP client for the schedule store and notification dispatcher.
type Client struct {
	cfg    config.UpstreamConfig
	client *http.Client
}

// NewClient creates a new upstream client from the given configuration.
func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// FetchSchedulePage fetches a single page of schedule records.
func (c *Client) FetchSchedulePage(ctx context.Context, page int) (*ScheduleResponse, error) {
	url := fmt.Sprintf("%s/schedules?page=%d&pageSize=%d", c.baseURL(), page, c.cfg.PageSize)

	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp ScheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule response: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("schedule store returned non-zero application code: %d", resp.Code)
	}
	return &resp, nil
}

// FetchMessages fetches the flat message list for the given user.
func (c *Client) FetchMessages(ctx context.Context, userID int64) ([]thread.Message, error) {
	url := fmt.Sprintf("%s/messages?userId=%d", c.baseURL(), userID)

	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp MessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message response: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("message endpoint returned non-zero application code: %d", resp.Code)
	}
	return resp.Data, nil
}

// MarkComplete sets a schedule's status to Completed in the schedule store.
func (c *Client) MarkComplete(ctx context.Context, scheduleID int64) error {
	url := fmt.Sprintf("%s/schedules/%d", c.baseURL(), scheduleID)

	payload, err := json.Marshal(map[string]string{"status": string(engine.StatusCompleted)})
	if err != nil {
		return fmt.Errorf("failed to marshal status payload: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPatch, url, payload); err != nil {
		return fmt.Errorf("mark complete for schedule %d failed: %w", scheduleID, err)
	}
	return nil
}

// SendApology triggers an apology message for a hotel. Target is "today" or
// "tomorrow"; each target is a separate dispatch with its own error.
func (c *Client) SendApology(ctx context.Context, hotelID int64, target string) error {
	url := fmt.Sprintf("%s/hotels/%d/apologies/%s", c.baseURL(), hotelID, target)

	if _, err := c.do(ctx, http.MethodPost, url, nil); err != nil {
		return fmt.Errorf("%s apology for hotel %d failed: %w", target, hotelID, err)
	}
	return nil
}

func (c *Client) baseURL() string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/")
}

// do performs a single request with auth headers and returns the response body.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("received non-2xx status code: %d", resp.StatusCode)
	}

	return body, nil
}
