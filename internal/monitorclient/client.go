package monitorclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MonitorState is the live view of a monitor as reported by the monitoring
// service.
type MonitorState struct {
	Status      string     `json:"status"` // "up", "down", "degraded", "pending"
	Type        string     `json:"type"`
	LastChecked *time.Time `json:"last_checked"`
}

// MonitorEvent is one entry in a monitor's recent transition history.
type MonitorEvent struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Client talks to the monitoring service. Calls are best-effort: the
// aggregator degrades a component to "unknown" when a call fails instead of
// failing the page view.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (c *Client) GetMonitor(ctx context.Context, monitorID string) (*MonitorState, error) {
	url := fmt.Sprintf("%s/monitors/%s", c.baseURL, monitorID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("monitor service returned status %d", resp.StatusCode)
	}

	var state MonitorState

	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, err
	}

	return &state, nil
}

func (c *Client) GetEvents(ctx context.Context, monitorID string, limit int) ([]MonitorEvent, error) {
	url := fmt.Sprintf("%s/monitors/%s/events?limit=%d", c.baseURL, monitorID, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("monitor service returned status %d", resp.StatusCode)
	}

	var events []MonitorEvent

	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, err
	}

	return events, nil
}
