package models

// Category is a user-defined tag applied to digest items
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

// CreateCategoryParams holds fields for creating a category
type CreateCategoryParams struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}
