package model

// VisitorStats summarizes visit counts for the dashboard.
type VisitorStats struct {
	Today     int `json:"today"`
	Yesterday int `json:"yesterday"`
	Total     int `json:"total"`
}

// PageHit is one ranked path from the analytics hits endpoint.
type PageHit struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// BookHit aggregates hit counts of all paths under one book.
type BookHit struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// DashboardData is the public dashboard aggregate.
type DashboardData struct {
	Visitors VisitorStats `json:"visitors"`
	TopPosts []PageHit    `json:"topPosts"`
	TopBooks []BookHit    `json:"topBooks"`
}

// StatRow is one row of a GoatCounter breakdown (browsers, systems,
// locations, languages).
type StatRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RateLimit mirrors the core resource of the GitHub rate-limit endpoint.
type RateLimit struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// AdminStats is the password-gated admin dashboard aggregate.
type AdminStats struct {
	Visitors  VisitorStats `json:"visitors"`
	Hits      []PageHit    `json:"hits"`
	Browsers  []StatRow    `json:"browsers"`
	Systems   []StatRow    `json:"systems"`
	Locations []StatRow    `json:"locations"`
	Languages []StatRow    `json:"languages"`
	RateLimit *RateLimit   `json:"rateLimit"`
}

// GuestbookComment is one comment of the guestbook discussion.
type GuestbookComment struct {
	Author    string `json:"author"`
	Avatar    string `json:"avatar"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// GuestbookPage is one page of guestbook comments, newest first.
type GuestbookPage struct {
	Comments   []GuestbookComment `json:"comments"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
}
