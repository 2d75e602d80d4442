package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"signaldigest/internal/logging"
	"signaldigest/internal/models"
)

// ErrRefreshing is returned while a discovery scan is already in flight
var ErrRefreshing = errors.New("discovery refresh already in progress")

// Client is the slice of the backend API the service needs
type Client interface {
	ListSuggestions(ctx context.Context) ([]models.ChannelSuggestion, error)
	AcceptSuggestion(ctx context.Context, id string) error
	DismissSuggestion(ctx context.Context, id string) error
	RefreshDiscovery(ctx context.Context) (int, error)
}

// Service coordinates the channel discovery screen
type Service struct {
	client Client
	logger *logging.Logger

	mu         sync.Mutex
	refreshing bool
}

// NewService creates a discovery service
func NewService(client Client, logger *logging.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// List returns the current channel suggestions
func (s *Service) List(ctx context.Context) ([]models.ChannelSuggestion, error) {
	suggestions, err := s.client.ListSuggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

// Accept turns a suggestion into a tracked source on the backend
func (s *Service) Accept(ctx context.Context, id string) error {
	if err := s.client.AcceptSuggestion(ctx, id); err != nil {
		return fmt.Errorf("accept suggestion: %w", err)
	}
	s.logger.Info("Accepted channel suggestion", logging.WithField("id", id))
	return nil
}

// Dismiss hides a suggestion from future lists
func (s *Service) Dismiss(ctx context.Context, id string) error {
	if err := s.client.DismissSuggestion(ctx, id); err != nil {
		return fmt.Errorf("dismiss suggestion: %w", err)
	}
	return nil
}

// Refreshing reports whether a scan is in flight
func (s *Service) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}

// Refresh asks the backend to re-scan for channel suggestions and returns
// how many were updated. At most one refresh runs at a time.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return 0, ErrRefreshing
	}
	s.refreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	updated, err := s.client.RefreshDiscovery(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh discovery: %w", err)
	}

	s.logger.Info("Discovery refresh complete", logging.WithField("suggestions_updated", updated))
	return updated, nil
}
