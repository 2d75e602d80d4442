package models

import "time"

// DigestItem is one ingested piece of content
type DigestItem struct {
	ID           string                 `json:"id"`
	SourceID     string                 `json:"source_id"`
	SourceName   string                 `json:"source_name"`
	SourceType   string                 `json:"source_type"`
	Title        string                 `json:"title"`
	URL          string                 `json:"url"`
	Author       *string                `json:"author"`
	Summary      *string                `json:"summary"`
	ThumbnailURL *string                `json:"thumbnail_url"`
	PublishedAt  time.Time              `json:"published_at"`
	FetchedAt    time.Time              `json:"fetched_at"`
	IsRead       bool                   `json:"is_read"`
	IsStarred    bool                   `json:"is_starred"`
	StarNote     *string                `json:"star_note"`
	Categories   []Category             `json:"categories"`
	Extra        map[string]interface{} `json:"extra"`
}

// ItemFilter is the composed filter sent with every item query. A zero
// value means the facet is inactive.
type ItemFilter struct {
	Date         string
	SourceID     string
	Category     string
	StarredOnly  bool
	UnreadOnly   bool
	Search       string
	Page         int
	ItemsPerPage int
}

// PaginatedItems is one page of query results with pagination metadata
type PaginatedItems struct {
	Items        []DigestItem `json:"items"`
	TotalItems   int          `json:"total_items"`
	Page         int          `json:"page"`
	ItemsPerPage int          `json:"items_per_page"`
	TotalPages   int          `json:"total_pages"`
}

// ItemStats is the per-day summary shown above the digest list
type ItemStats struct {
	TodayCount     int `json:"today_count"`
	UnreadCount    int `json:"unread_count"`
	StarredCount   int `json:"starred_count"`
	SourcesHealthy int `json:"sources_healthy"`
	SourcesTotal   int `json:"sources_total"`
}

// ItemUpdate is a partial item mutation. Each field is independent; nil
// fields are left untouched so updates commute.
type ItemUpdate struct {
	IsRead      *bool    `json:"is_read,omitempty"`
	IsStarred   *bool    `json:"is_starred,omitempty"`
	StarNote    *string  `json:"star_note,omitempty"`
	CategoryIDs []string `json:"category_ids,omitempty"`
}

// ManualItemParams holds fields for a manually entered item
type ManualItemParams struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	ContentRaw string `json:"content_raw,omitempty"`
	SourceName string `json:"source_name,omitempty"`
}
