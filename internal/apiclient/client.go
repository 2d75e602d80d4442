package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signaldigest/internal/api"
	"signaldigest/internal/logging"
	"signaldigest/internal/models"
)

// Client talks to the digest backend over HTTP. All calls take a context
// and every non-2xx answer is returned as an *api.Error.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// New creates an HTTP API client for the given base URL
func New(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// apiError extracts the backend's error message. The backend wraps it as
// {"detail": "..."}; anything else is passed through raw.
func (c *Client) apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := strings.TrimSpace(string(data))
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &detail); err == nil && detail.Detail != "" {
		message = detail.Detail
	}
	return &api.Error{StatusCode: resp.StatusCode, Message: message}
}

// ListItems queries one page of items for the composed filter
func (c *Client) ListItems(ctx context.Context, filter models.ItemFilter) (*models.PaginatedItems, error) {
	query := url.Values{}
	if filter.Date != "" {
		query.Set("date", filter.Date)
	}
	if filter.SourceID != "" {
		query.Set("source_id", filter.SourceID)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.StarredOnly {
		query.Set("is_starred", "true")
	}
	if filter.UnreadOnly {
		// Unread-only is expressed as an explicit read-flag filter.
		query.Set("is_read", "false")
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.ItemsPerPage > 0 {
		query.Set("items_per_page", strconv.Itoa(filter.ItemsPerPage))
	}

	var out models.PaginatedItems
	if err := c.do(ctx, http.MethodGet, "/api/items", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ItemStats returns the per-day summary; empty date means server today
func (c *Client) ItemStats(ctx context.Context, date string) (*models.ItemStats, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	var out models.ItemStats
	if err := c.do(ctx, http.MethodGet, "/api/items/stats", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem applies a partial item mutation
func (c *Client) UpdateItem(ctx context.Context, id string, update models.ItemUpdate) (*models.DigestItem, error) {
	var out models.DigestItem
	if err := c.do(ctx, http.MethodPatch, "/api/items/"+id, nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddManualItem creates a manually entered item
func (c *Client) AddManualItem(ctx context.Context, params models.ManualItemParams) (*models.DigestItem, error) {
	var out models.DigestItem
	if err := c.do(ctx, http.MethodPost, "/api/items/manual", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSources(ctx context.Context) ([]models.Source, error) {
	var out []models.Source
	if err := c.do(ctx, http.MethodGet, "/api/sources", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSource(ctx context.Context, id string) (*models.Source, error) {
	var out models.Source
	if err := c.do(ctx, http.MethodGet, "/api/sources/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSource(ctx context.Context, params models.CreateSourceParams) (*models.Source, error) {
	var out models.Source
	if err := c.do(ctx, http.MethodPost, "/api/sources", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSource(ctx context.Context, id string, params models.UpdateSourceParams) (*models.Source, error) {
	var out models.Source
	if err := c.do(ctx, http.MethodPatch, "/api/sources/"+id, nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSource(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sources/"+id, nil, nil, nil)
}

// TestSource runs a one-off fetch without ingesting
func (c *Client) TestSource(ctx context.Context, id string) ([]models.DigestItem, error) {
	var out struct {
		Items []models.DigestItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sources/"+id+"/test", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, params models.CreateCategoryParams) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerRun starts a pipeline run, or joins one that is already active.
// The returned status is the backend's answer, e.g. "started" or
// "already_running"; both are success.
func (c *Client) TriggerRun(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/pipeline/run", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// RunStatus returns the live pipeline snapshot
func (c *Client) RunStatus(ctx context.Context) (*models.PipelineStatus, error) {
	var out models.PipelineStatus
	if err := c.do(ctx, http.MethodGet, "/api/pipeline/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRuns(ctx context.Context) ([]models.PipelineRun, error) {
	var out []models.PipelineRun
	if err := c.do(ctx, http.MethodGet, "/api/pipeline/runs", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListReviews(ctx context.Context) ([]models.WeeklyReview, error) {
	var out []models.WeeklyReview
	if err := c.do(ctx, http.MethodGet, "/api/reviews", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetReview(ctx context.Context, id string) (*models.WeeklyReview, error) {
	var out models.WeeklyReview
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateReview(ctx context.Context, params models.GenerateReviewParams) (*models.WeeklyReview, error) {
	var out models.WeeklyReview
	if err := c.do(ctx, http.MethodPost, "/api/reviews/generate", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReview(ctx context.Context, id string, params models.UpdateReviewParams) (*models.WeeklyReview, error) {
	var out models.WeeklyReview
	if err := c.do(ctx, http.MethodPatch, "/api/reviews/"+id, nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSuggestions(ctx context.Context) ([]models.ChannelSuggestion, error) {
	var out []models.ChannelSuggestion
	if err := c.do(ctx, http.MethodGet, "/api/discovery/channels", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AcceptSuggestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/discovery/channels/"+id+"/accept", nil, nil, nil)
}

func (c *Client) DismissSuggestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/discovery/channels/"+id+"/dismiss", nil, nil, nil)
}

// RefreshDiscovery triggers a suggestion re-scan and returns how many
// suggestions were updated
func (c *Client) RefreshDiscovery(ctx context.Context) (int, error) {
	var out struct {
		SuggestionsUpdated int `json:"suggestions_updated"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/discovery/refresh", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.SuggestionsUpdated, nil
}

func (c *Client) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	var out models.AppSettings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, params models.UpdateSettingsParams) (*models.AppSettings, error) {
	var out models.AppSettings
	if err := c.do(ctx, http.MethodPatch, "/api/settings", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ api.Client = (*Client)(nil)
