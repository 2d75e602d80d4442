package models

import "time"

// WeeklyReview is a generated summary document for one week of items.
// The markdown body is opaque text to this client.
type WeeklyReview struct {
	ID          string    `json:"id"`
	WeekStart   string    `json:"week_start"`
	WeekEnd     string    `json:"week_end"`
	Title       *string   `json:"title"`
	Markdown    string    `json:"markdown"`
	ItemCount   int       `json:"item_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GenerateReviewParams holds the week span for a new review
type GenerateReviewParams struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Title     string `json:"title,omitempty"`
}

// UpdateReviewParams is a partial review update
type UpdateReviewParams struct {
	Title    *string `json:"title,omitempty"`
	Markdown *string `json:"markdown,omitempty"`
}
