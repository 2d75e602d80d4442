package mockapi

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"signaldigest/internal/models"
)

// normalizeText lowercases and strips diacritics so searches match
// regardless of accents or case
func normalizeText(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return norm.NFC.String(b.String())
}

func matchesSearch(item models.DigestItem, needle string) bool {
	if strings.Contains(normalizeText(item.Title), needle) {
		return true
	}
	if item.Summary != nil && strings.Contains(normalizeText(*item.Summary), needle) {
		return true
	}
	if item.Author != nil && strings.Contains(normalizeText(*item.Author), needle) {
		return true
	}
	return false
}

func hasCategory(item models.DigestItem, slug string) bool {
	for _, c := range item.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

func sameDay(t time.Time, date string) bool {
	return t.Local().Format("2006-01-02") == date
}

// ListItems applies every active facet, orders by publish time with
// keyword search results sinking below tracked sources, and paginates
func (s *Server) ListItems(ctx context.Context, filter models.ItemFilter) (*models.PaginatedItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := normalizeText(strings.TrimSpace(filter.Search))

	var matched []models.DigestItem
	for _, item := range s.items {
		if filter.Date != "" && !sameDay(item.PublishedAt, filter.Date) {
			continue
		}
		if filter.SourceID != "" && item.SourceID != filter.SourceID {
			continue
		}
		if filter.Category != "" && !hasCategory(item, filter.Category) {
			continue
		}
		if filter.StarredOnly && !item.IsStarred {
			continue
		}
		if filter.UnreadOnly && item.IsRead {
			continue
		}
		if needle != "" && !matchesSearch(item, needle) {
			continue
		}
		matched = append(matched, item)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		iSearch := matched[i].SourceType == models.SourceTypeYouTubeSearch
		jSearch := matched[j].SourceType == models.SourceTypeYouTubeSearch
		if iSearch != jSearch {
			return jSearch
		}
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	perPage := filter.ItemsPerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	total := len(matched)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	pageItems := make([]models.DigestItem, end-start)
	copy(pageItems, matched[start:end])

	return &models.PaginatedItems{
		Items:        pageItems,
		TotalItems:   total,
		Page:         page,
		ItemsPerPage: perPage,
		TotalPages:   totalPages,
	}, nil
}

// ItemStats summarizes one day. Only the date narrows the counts; the
// other list facets do not apply here.
func (s *Server) ItemStats(ctx context.Context, date string) (*models.ItemStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.ItemStats{}
	for _, item := range s.items {
		if date != "" && !sameDay(item.PublishedAt, date) {
			continue
		}
		stats.TodayCount++
		if !item.IsRead {
			stats.UnreadCount++
		}
		if item.IsStarred {
			stats.StarredCount++
		}
	}

	for _, src := range s.sources {
		stats.SourcesTotal++
		if src.Enabled && src.ErrorCount < 3 {
			stats.SourcesHealthy++
		}
	}
	return stats, nil
}

func (s *Server) UpdateItem(ctx context.Context, id string, update models.ItemUpdate) (*models.DigestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if update.IsRead != nil {
			s.items[i].IsRead = *update.IsRead
		}
		if update.IsStarred != nil {
			s.items[i].IsStarred = *update.IsStarred
			if !*update.IsStarred {
				s.items[i].StarNote = nil
			}
		}
		if update.StarNote != nil {
			s.items[i].StarNote = update.StarNote
		}
		if update.CategoryIDs != nil {
			var cats []models.Category
			for _, cid := range update.CategoryIDs {
				for _, c := range s.categories {
					if c.ID == cid {
						cats = append(cats, c)
					}
				}
			}
			if cats == nil {
				cats = []models.Category{}
			}
			s.items[i].Categories = cats
		}
		out := s.items[i]
		return &out, nil
	}
	return nil, notFound("item", id)
}

// AddManualItem files a hand-entered link under the manual source,
// creating that source on first use
func (s *Server) AddManualItem(ctx context.Context, params models.ManualItemParams) (*models.DigestItem, error) {
	if params.Title == "" || params.URL == "" {
		return nil, badRequest("title and url are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sourceName := params.SourceName
	if sourceName == "" {
		sourceName = "Manual"
	}

	var manual *models.Source
	for i := range s.sources {
		if s.sources[i].SourceType == models.SourceTypeManual && s.sources[i].Name == sourceName {
			manual = &s.sources[i]
			break
		}
	}
	if manual == nil {
		s.sources = append(s.sources, models.Source{
			ID:            uuid.NewString(),
			Name:          sourceName,
			SourceType:    models.SourceTypeManual,
			Config:        map[string]interface{}{},
			Enabled:       true,
			FetchInterval: "12 hours",
		})
		manual = &s.sources[len(s.sources)-1]
	}

	now := time.Now()
	item := models.DigestItem{
		ID:          uuid.NewString(),
		SourceID:    manual.ID,
		SourceName:  manual.Name,
		SourceType:  models.SourceTypeManual,
		Title:       params.Title,
		URL:         params.URL,
		PublishedAt: now,
		FetchedAt:   now,
		Categories:  []models.Category{},
		Extra:       map[string]interface{}{},
	}
	if params.ContentRaw != "" {
		summary := params.ContentRaw
		item.Summary = &summary
	}
	s.items = append(s.items, item)
	out := item
	return &out, nil
}
