package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"signaldigest/internal/logging"
	"signaldigest/internal/models"
)

// ErrGenerating is returned while a generation request is already in flight
var ErrGenerating = errors.New("review generation already in progress")

// Client is the slice of the backend API the service needs
type Client interface {
	ListReviews(ctx context.Context) ([]models.WeeklyReview, error)
	GetReview(ctx context.Context, id string) (*models.WeeklyReview, error)
	GenerateReview(ctx context.Context, params models.GenerateReviewParams) (*models.WeeklyReview, error)
	UpdateReview(ctx context.Context, id string, params models.UpdateReviewParams) (*models.WeeklyReview, error)
}

// Service coordinates the weekly review screen. Generation is a long
// remote call, so at most one runs at a time per service instance.
type Service struct {
	client Client
	logger *logging.Logger

	mu         sync.Mutex
	generating bool
}

// NewService creates a review service
func NewService(client Client, logger *logging.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// List returns all generated reviews, newest first per the backend
func (s *Service) List(ctx context.Context) ([]models.WeeklyReview, error) {
	reviews, err := s.client.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Get returns one review by id
func (s *Service) Get(ctx context.Context, id string) (*models.WeeklyReview, error) {
	review, err := s.client.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// Generating reports whether a generation request is in flight
func (s *Service) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Generate produces a review for the given week span. A second call while
// one is in flight returns ErrGenerating instead of queueing.
func (s *Service) Generate(ctx context.Context, params models.GenerateReviewParams) (*models.WeeklyReview, error) {
	if strings.TrimSpace(params.WeekStart) == "" || strings.TrimSpace(params.WeekEnd) == "" {
		return nil, errors.New("week span is required")
	}

	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, ErrGenerating
	}
	s.generating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	s.logger.Info("Generating weekly review", logging.WithFields(map[string]interface{}{
		"week_start": params.WeekStart,
		"week_end":   params.WeekEnd,
	}))

	review, err := s.client.GenerateReview(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("generate review: %w", err)
	}
	return review, nil
}

// Update applies a partial edit to a review's title or markdown
func (s *Service) Update(ctx context.Context, id string, params models.UpdateReviewParams) (*models.WeeklyReview, error) {
	review, err := s.client.UpdateReview(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}
