package models

import "time"

// Source types supported by the backend pipeline
const (
	SourceTypeRSS            = "rss"
	SourceTypeHackerNews     = "hackernews"
	SourceTypeReddit         = "reddit"
	SourceTypeArxiv          = "arxiv"
	SourceTypeGithubReleases = "github_releases"
	SourceTypeYouTubeChannel = "youtube_channel"
	SourceTypeYouTubeSearch  = "youtube_search"
	SourceTypeBluesky        = "bluesky"
	SourceTypeTwitter        = "twitter"
	SourceTypeManual         = "manual"
)

var validSourceTypes = map[string]bool{
	SourceTypeRSS:            true,
	SourceTypeHackerNews:     true,
	SourceTypeReddit:         true,
	SourceTypeArxiv:          true,
	SourceTypeGithubReleases: true,
	SourceTypeYouTubeChannel: true,
	SourceTypeYouTubeSearch:  true,
	SourceTypeBluesky:        true,
	SourceTypeTwitter:        true,
	SourceTypeManual:         true,
}

// IsValidSourceType reports whether t is a known source type
func IsValidSourceType(t string) bool {
	return validSourceTypes[t]
}

// Source is one configured content origin. The backend owns its lifecycle;
// the client holds read-only copies plus acknowledged updates.
type Source struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	SourceType    string                 `json:"source_type"`
	Config        map[string]interface{} `json:"config"`
	Enabled       bool                   `json:"enabled"`
	FetchInterval string                 `json:"fetch_interval"`
	LastFetchedAt *time.Time             `json:"last_fetched_at"`
	LastError     *string                `json:"last_error"`
	ErrorCount    int                    `json:"error_count"`
	ItemsToday    int                    `json:"items_today"`
	TotalItems    int                    `json:"total_items"`
}

// CreateSourceParams holds fields for creating a source
type CreateSourceParams struct {
	Name       string                 `json:"name"`
	SourceType string                 `json:"source_type"`
	Config     map[string]interface{} `json:"config"`
	Enabled    *bool                  `json:"enabled,omitempty"`
}

// UpdateSourceParams holds a partial source update. Nil fields are left
// unchanged by the backend.
type UpdateSourceParams struct {
	Name    *string                `json:"name,omitempty"`
	Config  map[string]interface{} `json:"config,omitempty"`
	Enabled *bool                  `json:"enabled,omitempty"`
}
