package model

// IndexedChapter is one searchable record of the content index: a chapter
// whose markdown was fetched and reduced to plain text. Exactly one record
// exists per (BookSlug, ChapterPath) pair that fetched successfully;
// chapters whose fetch failed are absent, so the index is a best-effort
// subset, never guaranteed complete.
type IndexedChapter struct {
	BookSlug    string `json:"bookSlug"`
	BookTitle   string `json:"bookTitle"`
	ChapterPath string `json:"chapterPath"`
	ChapterName string `json:"chapterName"`
	PlainText   string `json:"plainText"`
}

// BuildState is the lifecycle of the search index builder.
type BuildState string

const (
	BuildStateEmpty    BuildState = "empty"
	BuildStateBuilding BuildState = "building"
	BuildStateReady    BuildState = "ready"
)

// BuildProgress reports how far an index build has come. Total stays 0
// until task enumeration across all books has finished.
type BuildProgress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// SearchResult is one search hit: the matched chapter plus a snippet of
// the plain text around the first occurrence of the query. Derived per
// query, never stored.
type SearchResult struct {
	BookSlug    string `json:"bookSlug"`
	BookTitle   string `json:"bookTitle"`
	ChapterPath string `json:"chapterPath"`
	ChapterName string `json:"chapterName"`
	Snippet     string `json:"snippet"`
}
