package truckersmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tmpsync/internal/models"
)

// DefaultBaseURL is the public TruckersMP API endpoint.
const DefaultBaseURL = "https://api.truckersmp.com"

// ErrUpstream indicates the API answered but flagged its own response as
// erroneous. The data is untrustworthy and must not be processed.
var ErrUpstream = errors.New("truckersmp api reported an error")

// apiResponse is the envelope both event endpoints return.
type apiResponse struct {
	Error    bool           `json:"error"`
	Response []models.Event `json:"response"`
}

// Client fetches event listings for a VTC from the TruckersMP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a new TruckersMP API client.
func NewClient(logger *slog.Logger, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// FetchEvents retrieves the events created by the VTC and the events it is
// attending, and concatenates them in that order. Duplicate ids across the
// two lists are not collapsed; dedup happens later against the target server.
func (c *Client) FetchEvents(ctx context.Context, vtcID string) ([]models.Event, error) {
	created, err := c.fetchList(ctx, fmt.Sprintf("%s/v2/vtc/%s/events", c.baseURL, vtcID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created events: %w", err)
	}

	attending, err := c.fetchList(ctx, fmt.Sprintf("%s/v2/vtc/%s/events/attending", c.baseURL, vtcID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attending events: %w", err)
	}

	c.logger.Info("Fetched events from TruckersMP.", "created", len(created), "attending", len(attending))
	return append(created, attending...), nil
}

// fetchList performs one GET against an event endpoint and unwraps the envelope.
func (c *Client) fetchList(ctx context.Context, url string) ([]models.Event, error) {
	c.logger.Debug("Fetching event list.", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if body.Error {
		return nil, ErrUpstream
	}

	return body.Response, nil
}
