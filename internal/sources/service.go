package sources

import (
	"context"
	"fmt"
	"strings"

	"signaldigest/internal/health"
	"signaldigest/internal/logging"
	"signaldigest/internal/models"
)

// ServiceError represents a service-level validation error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Client is the slice of the backend API the service needs
type Client interface {
	ListSources(ctx context.Context) ([]models.Source, error)
	GetSource(ctx context.Context, id string) (*models.Source, error)
	CreateSource(ctx context.Context, params models.CreateSourceParams) (*models.Source, error)
	UpdateSource(ctx context.Context, id string, params models.UpdateSourceParams) (*models.Source, error)
	DeleteSource(ctx context.Context, id string) error
	TestSource(ctx context.Context, id string) ([]models.DigestItem, error)
}

// Row is one source decorated with its derived health
type Row struct {
	models.Source
	Health health.Status
}

// ListFilter narrows the source list client-side. Empty or "all" fields
// are inactive.
type ListFilter struct {
	SourceType string
	Health     string
	Query      string
}

// Service coordinates the source management screen: listing with health
// decoration and filtering, plus acknowledged-before-applied mutations.
type Service struct {
	client     Client
	classifier *health.Classifier
	logger     *logging.Logger
}

// NewService creates a source service
func NewService(client Client, classifier *health.Classifier, logger *logging.Logger) *Service {
	return &Service{
		client:     client,
		classifier: classifier,
		logger:     logger,
	}
}

// List fetches all sources and decorates each with its health status
func (s *Service) List(ctx context.Context) ([]Row, error) {
	srcs, err := s.client.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	rows := make([]Row, 0, len(srcs))
	for _, src := range srcs {
		rows = append(rows, Row{
			Source: src,
			Health: s.classifier.Classify(&src),
		})
	}
	return rows, nil
}

// Filter narrows rows by type, health and name substring
func Filter(rows []Row, filter ListFilter) []Row {
	typeActive := filter.SourceType != "" && filter.SourceType != "all"
	healthActive := filter.Health != "" && filter.Health != "all"
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	if !typeActive && !healthActive && query == "" {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if typeActive && row.SourceType != filter.SourceType {
			continue
		}
		if healthActive && string(row.Health) != filter.Health {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(row.Name), query) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Create validates and creates a new source
func (s *Service) Create(ctx context.Context, params models.CreateSourceParams) (*models.Source, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, &ServiceError{Message: "source name is required"}
	}
	if !models.IsValidSourceType(params.SourceType) {
		return nil, &ServiceError{Message: "invalid source type"}
	}

	src, err := s.client.CreateSource(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	s.logger.Info("Created source", logging.WithFields(map[string]interface{}{
		"id":   src.ID,
		"type": src.SourceType,
	}))
	return src, nil
}

// Update applies a partial source update
func (s *Service) Update(ctx context.Context, id string, params models.UpdateSourceParams) (*models.Source, error) {
	src, err := s.client.UpdateSource(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("update source: %w", err)
	}
	return src, nil
}

// SetEnabled soft-disables or re-enables a source without deleting it
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) (*models.Source, error) {
	return s.Update(ctx, id, models.UpdateSourceParams{Enabled: &enabled})
}

// Delete hard-deletes a source
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteSource(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	s.logger.Info("Deleted source", logging.WithField("id", id))
	return nil
}

// Test runs a one-off fetch against the source and returns what it would
// produce, without ingesting anything.
func (s *Service) Test(ctx context.Context, id string) ([]models.DigestItem, error) {
	items, err := s.client.TestSource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("test source: %w", err)
	}
	return items, nil
}
