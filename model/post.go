package model

// Post is a developer post under the dev/ tree of the content repository.
// Two layouts are supported: a flat dev/category/slug.md file, or a
// dev/category/slug/ folder holding one markdown file and an optional cover.
type Post struct {
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Date        string   `json:"date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Cover       string   `json:"cover,omitempty"`

	// Content and commit dates are populated only for single-post fetches.
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
