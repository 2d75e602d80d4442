package models

// Suggestion review states
const (
	SuggestionPending   = "pending"
	SuggestionAccepted  = "accepted"
	SuggestionDismissed = "dismissed"
)

// SampleVideo is a representative video attached to a channel suggestion
type SampleVideo struct {
	Title string `json:"title"`
	Views string `json:"views"`
}

// ChannelSuggestion is a channel surfaced by the discovery scanner
type ChannelSuggestion struct {
	ID              string        `json:"id"`
	ChannelID       string        `json:"channel_id"`
	ChannelName     string        `json:"channel_name"`
	ChannelURL      string        `json:"channel_url"`
	SubscriberCount *int          `json:"subscriber_count"`
	VideoCount      *int          `json:"video_count"`
	AppearanceCount int           `json:"appearance_count"`
	SampleVideos    []SampleVideo `json:"sample_videos"`
	Status          string        `json:"status"`
}

// AppSettings holds the user-tunable backend settings
type AppSettings struct {
	PipelineCron    string   `json:"pipeline_cron"`
	YouTubeKeywords []string `json:"youtube_keywords"`
}

// UpdateSettingsParams is a partial settings update
type UpdateSettingsParams struct {
	PipelineCron    *string  `json:"pipeline_cron,omitempty"`
	YouTubeKeywords []string `json:"youtube_keywords,omitempty"`
}
