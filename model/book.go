package model

// Book describes one book directory in the content repository.
// Metadata comes from the directory's info.json; a book whose metadata
// could not be fetched degrades to a slug-derived fallback record.
type Book struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Cover    string   `json:"cover,omitempty"`
	Status   string   `json:"status,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Rating   float64  `json:"rating,omitempty"` // 0-5, possibly fractional
	Date     string   `json:"date,omitempty"`

	TotalChapters int `json:"total_chapters,omitempty"`
}

// ChapterRef identifies a chapter within a book without its content.
// Path is unique within the book and slash-joined for subfolder chapters.
type ChapterRef struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	Order    int    `json:"order"` // leading numeric filename prefix, 999 if absent
	Folder   string `json:"folder,omitempty"`
	Date     string `json:"date,omitempty"` // last commit date, "" when the lookup failed
}

// BookDetail is a Book plus its chapter listing, partitioned into root
// chapters and per-folder groups, each independently sorted by Order.
type BookDetail struct {
	Book
	RootChapters  []ChapterRef            `json:"root_chapters"`
	FolderGroups  map[string][]ChapterRef `json:"folder_groups"`
	CommentCounts map[string]int          `json:"comment_counts,omitempty"`
}

// ChapterContent is a single chapter's raw markdown body with commit dates.
type ChapterContent struct {
	BookSlug  string `json:"book_slug"`
	Path      string `json:"path"`
	FileName  string `json:"file_name"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
