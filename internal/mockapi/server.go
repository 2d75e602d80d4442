package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"signaldigest/internal/api"
	"signaldigest/internal/models"
)

// Server is a complete in-memory stand-in for the digest backend. It
// implements the same api.Client surface as the HTTP client, so the
// application can run offline and integration tests can exercise the full
// coordination stack without a network.
type Server struct {
	mu sync.Mutex

	sources     []models.Source
	items       []models.DigestItem
	categories  []models.Category
	runs        []models.PipelineRun
	reviews     []models.WeeklyReview
	suggestions []models.ChannelSuggestion
	settings    models.AppSettings

	running        bool
	pollsRemaining int
	pollsPerRun    int
	itemsPerRun    int
	activeRun      *models.PipelineRun
}

// New creates a mock backend seeded with a representative dataset
func New() *Server {
	s := &Server{
		pollsPerRun: 3,
		itemsPerRun: 12,
	}
	s.seed(time.Now())
	return s
}

func notFound(what, id string) error {
	return &api.Error{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("%s not found: %s", what, id)}
}

func badRequest(msg string) error {
	return &api.Error{StatusCode: http.StatusBadRequest, Message: msg}
}

// SetRunShape tunes how many status polls a simulated run stays active
// for and how many new items it reports.
func (s *Server) SetRunShape(polls, itemsNew int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollsPerRun = polls
	s.itemsPerRun = itemsNew
}

// TriggerRun starts a simulated pipeline run, or joins the active one
func (s *Server) TriggerRun(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return "already_running", nil
	}

	now := time.Now()
	s.running = true
	s.pollsRemaining = s.pollsPerRun
	s.activeRun = &models.PipelineRun{
		ID:        uuid.NewString(),
		StartedAt: now,
		Status:    models.RunStatusRunning,
		Trigger:   models.RunTriggerManual,
	}
	return "started", nil
}

// RunStatus reports the live pipeline snapshot. Each call while a run is
// active consumes one poll; the run finishes once its polls are spent,
// which gives tests and the demo a deterministic run length.
func (s *Server) RunStatus(ctx context.Context) (*models.PipelineStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.pollsRemaining--
		if s.pollsRemaining <= 0 {
			s.finishRunLocked()
		} else {
			return &models.PipelineStatus{IsRunning: true}, nil
		}
	}

	status := &models.PipelineStatus{IsRunning: false}
	if len(s.runs) > 0 {
		last := s.runs[0]
		status.LastRunAt = &last.StartedAt
		lastStatus := last.Status
		status.LastRunStatus = &lastStatus
		itemsNew := last.ItemsNew
		status.LastRunItemsNew = &itemsNew
	}
	return status, nil
}

// finishRunLocked finalizes the active run and ingests its new items
func (s *Server) finishRunLocked() {
	now := time.Now()
	run := s.activeRun
	run.CompletedAt = &now
	run.Status = models.RunStatusCompleted
	run.ItemsNew = s.itemsPerRun
	run.ItemsFetched = s.itemsPerRun * 3
	run.ItemsSummarized = s.itemsPerRun

	for i := 0; i < s.itemsPerRun && len(s.sources) > 0; i++ {
		src := s.sources[i%len(s.sources)]
		s.items = append(s.items, models.DigestItem{
			ID:          uuid.NewString(),
			SourceID:    src.ID,
			SourceName:  src.Name,
			SourceType:  src.SourceType,
			Title:       fmt.Sprintf("Fresh item %d from %s", i+1, src.Name),
			URL:         fmt.Sprintf("https://example.com/fresh/%d", i+1),
			PublishedAt: now.Add(-time.Duration(i) * time.Minute),
			FetchedAt:   now,
			Categories:  []models.Category{},
			Extra:       map[string]interface{}{},
		})
	}

	s.runs = append([]models.PipelineRun{*run}, s.runs...)
	s.activeRun = nil
	s.running = false
}

// ListRuns returns run history, newest first
func (s *Server) ListRuns(ctx context.Context) ([]models.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PipelineRun, len(s.runs))
	copy(out, s.runs)
	return out, nil
}

func (s *Server) ListSources(ctx context.Context) ([]models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Source, len(s.sources))
	copy(out, s.sources)
	return out, nil
}

func (s *Server) GetSource(ctx context.Context, id string) (*models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.sources {
		if src.ID == id {
			out := src
			return &out, nil
		}
	}
	return nil, notFound("source", id)
}

func (s *Server) CreateSource(ctx context.Context, params models.CreateSourceParams) (*models.Source, error) {
	if params.Name == "" {
		return nil, badRequest("source name is required")
	}
	if !models.IsValidSourceType(params.SourceType) {
		return nil, badRequest("unknown source type: " + params.SourceType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := true
	if params.Enabled != nil {
		enabled = *params.Enabled
	}
	src := models.Source{
		ID:            uuid.NewString(),
		Name:          params.Name,
		SourceType:    params.SourceType,
		Config:        params.Config,
		Enabled:       enabled,
		FetchInterval: "12 hours",
	}
	s.sources = append(s.sources, src)
	return &src, nil
}

func (s *Server) UpdateSource(ctx context.Context, id string, params models.UpdateSourceParams) (*models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sources {
		if s.sources[i].ID != id {
			continue
		}
		if params.Name != nil {
			s.sources[i].Name = *params.Name
		}
		if params.Config != nil {
			s.sources[i].Config = params.Config
		}
		if params.Enabled != nil {
			s.sources[i].Enabled = *params.Enabled
		}
		out := s.sources[i]
		return &out, nil
	}
	return nil, notFound("source", id)
}

func (s *Server) DeleteSource(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sources {
		if s.sources[i].ID == id {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			return nil
		}
	}
	return notFound("source", id)
}

// TestSource returns a couple of synthetic items without ingesting them
func (s *Server) TestSource(ctx context.Context, id string) ([]models.DigestItem, error) {
	src, err := s.GetSource(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]models.DigestItem, 2)
	for i := range items {
		items[i] = models.DigestItem{
			ID:          uuid.NewString(),
			SourceID:    src.ID,
			SourceName:  src.Name,
			SourceType:  src.SourceType,
			Title:       fmt.Sprintf("Test fetch result %d from %s", i+1, src.Name),
			URL:         fmt.Sprintf("https://example.com/test/%d", i+1),
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
			FetchedAt:   now,
			Categories:  []models.Category{},
			Extra:       map[string]interface{}{},
		}
	}
	return items, nil
}

func (s *Server) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Server) CreateCategory(ctx context.Context, params models.CreateCategoryParams) (*models.Category, error) {
	if params.Name == "" || params.Slug == "" {
		return nil, badRequest("category name and slug are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Slug == params.Slug {
			return nil, badRequest("slug already exists: " + params.Slug)
		}
	}

	color := params.Color
	if color == "" {
		color = "#6B7280"
	}
	cat := models.Category{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Slug:      params.Slug,
		Color:     color,
		SortOrder: len(s.categories) + 1,
	}
	s.categories = append(s.categories, cat)
	return &cat, nil
}

func (s *Server) ListReviews(ctx context.Context) ([]models.WeeklyReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WeeklyReview, len(s.reviews))
	copy(out, s.reviews)
	return out, nil
}

func (s *Server) GetReview(ctx context.Context, id string) (*models.WeeklyReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, notFound("review", id)
}

// GenerateReview builds a review document from the starred items of the
// requested week
func (s *Server) GenerateReview(ctx context.Context, params models.GenerateReviewParams) (*models.WeeklyReview, error) {
	if params.WeekStart == "" || params.WeekEnd == "" {
		return nil, badRequest("week span is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	starred := 0
	markdown := "# Weekly Review\n\n"
	for _, item := range s.items {
		if item.IsStarred {
			starred++
			markdown += fmt.Sprintf("- [%s](%s)\n", item.Title, item.URL)
		}
	}

	review := models.WeeklyReview{
		ID:          uuid.NewString(),
		WeekStart:   params.WeekStart,
		WeekEnd:     params.WeekEnd,
		Markdown:    markdown,
		ItemCount:   starred,
		GeneratedAt: time.Now(),
	}
	if params.Title != "" {
		title := params.Title
		review.Title = &title
	}
	s.reviews = append([]models.WeeklyReview{review}, s.reviews...)
	return &review, nil
}

func (s *Server) UpdateReview(ctx context.Context, id string, params models.UpdateReviewParams) (*models.WeeklyReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reviews {
		if s.reviews[i].ID != id {
			continue
		}
		if params.Title != nil {
			s.reviews[i].Title = params.Title
		}
		if params.Markdown != nil {
			s.reviews[i].Markdown = *params.Markdown
		}
		out := s.reviews[i]
		return &out, nil
	}
	return nil, notFound("review", id)
}

func (s *Server) ListSuggestions(ctx context.Context) ([]models.ChannelSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChannelSuggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out, nil
}

// AcceptSuggestion promotes a suggestion to a tracked channel source
func (s *Server) AcceptSuggestion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.suggestions {
		if s.suggestions[i].ID != id {
			continue
		}
		s.suggestions[i].Status = models.SuggestionAccepted
		s.sources = append(s.sources, models.Source{
			ID:         uuid.NewString(),
			Name:       s.suggestions[i].ChannelName,
			SourceType: models.SourceTypeYouTubeChannel,
			Config: map[string]interface{}{
				"channel_id": s.suggestions[i].ChannelID,
			},
			Enabled:       true,
			FetchInterval: "12 hours",
		})
		return nil
	}
	return notFound("suggestion", id)
}

func (s *Server) DismissSuggestion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.suggestions {
		if s.suggestions[i].ID == id {
			s.suggestions[i].Status = models.SuggestionDismissed
			return nil
		}
	}
	return notFound("suggestion", id)
}

// RefreshDiscovery bumps appearance counts on pending suggestions and
// reports how many were touched
func (s *Server) RefreshDiscovery(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for i := range s.suggestions {
		if s.suggestions[i].Status == models.SuggestionPending {
			s.suggestions[i].AppearanceCount++
			updated++
		}
	}
	return updated, nil
}

func (s *Server) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	return &out, nil
}

func (s *Server) UpdateSettings(ctx context.Context, params models.UpdateSettingsParams) (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if params.PipelineCron != nil {
		s.settings.PipelineCron = *params.PipelineCron
	}
	if params.YouTubeKeywords != nil {
		s.settings.YouTubeKeywords = params.YouTubeKeywords
	}
	out := s.settings
	return &out, nil
}

var _ api.Client = (*Server)(nil)
