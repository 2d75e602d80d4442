package api

import (
	"context"
	"fmt"

	"signaldigest/internal/models"
)

// Error is a failure reported by the backend API
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client is the full surface this application consumes from the digest
// backend. internal/apiclient implements it over HTTP; internal/mockapi
// implements it in-process for offline use and tests. Consumers should
// declare the narrow subset they need rather than depending on this
// interface directly.
type Client interface {
	// Items
	ListItems(ctx context.Context, filter models.ItemFilter) (*models.PaginatedItems, error)
	ItemStats(ctx context.Context, date string) (*models.ItemStats, error)
	UpdateItem(ctx context.Context, id string, update models.ItemUpdate) (*models.DigestItem, error)
	AddManualItem(ctx context.Context, params models.ManualItemParams) (*models.DigestItem, error)

	// Sources
	ListSources(ctx context.Context) ([]models.Source, error)
	GetSource(ctx context.Context, id string) (*models.Source, error)
	CreateSource(ctx context.Context, params models.CreateSourceParams) (*models.Source, error)
	UpdateSource(ctx context.Context, id string, params models.UpdateSourceParams) (*models.Source, error)
	DeleteSource(ctx context.Context, id string) error
	TestSource(ctx context.Context, id string) ([]models.DigestItem, error)

	// Categories
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, params models.CreateCategoryParams) (*models.Category, error)

	// Pipeline
	TriggerRun(ctx context.Context) (string, error)
	RunStatus(ctx context.Context) (*models.PipelineStatus, error)
	ListRuns(ctx context.Context) ([]models.PipelineRun, error)

	// Reviews
	ListReviews(ctx context.Context) ([]models.WeeklyReview, error)
	GetReview(ctx context.Context, id string) (*models.WeeklyReview, error)
	GenerateReview(ctx context.Context, params models.GenerateReviewParams) (*models.WeeklyReview, error)
	UpdateReview(ctx context.Context, id string, params models.UpdateReviewParams) (*models.WeeklyReview, error)

	// Discovery
	ListSuggestions(ctx context.Context) ([]models.ChannelSuggestion, error)
	AcceptSuggestion(ctx context.Context, id string) error
	DismissSuggestion(ctx context.Context, id string) error
	RefreshDiscovery(ctx context.Context) (int, error)

	// Settings
	GetSettings(ctx context.Context) (*models.AppSettings, error)
	UpdateSettings(ctx context.Context, params models.UpdateSettingsParams) (*models.AppSettings, error)
}
