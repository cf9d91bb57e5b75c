package github

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	internalErrors "github.com/chanani/booksite/internal/errors"
	"github.com/chanani/booksite/model"
)

const indexFile = "index.md"

// bookInfo mirrors a book directory's info.json.
type bookInfo struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Status   string   `json:"status"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Rating   float64  `json:"rating"`
	Date     string   `json:"date"`
}

// ListBooks returns every book directory under the books path. The root
// listing failing is fatal; a single book's metadata failing degrades that
// book to a slug-derived fallback record.
func (c *Client) ListBooks(ctx context.Context) ([]model.Book, error) {
	entries, err := c.listDir(ctx, c.cfg.BooksPath)
	if err != nil {
		return nil, internalErrors.NewContentUnavailableError(c.cfg.BooksPath, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.Type == "dir" {
			dirs = append(dirs, DecodeQuotedName(e.Name))
		}
	}

	books := make([]model.Book, len(dirs))
	var g errgroup.Group
	for i, slug := range dirs {
		i, slug := i, slug
		g.Go(func() error {
			books[i] = c.fetchBookMeta(ctx, slug)
			return nil
		})
	}
	_ = g.Wait()

	sortBooks(books)
	return books, nil
}

// fetchBookMeta reads one book's info.json and cover. Any failure yields
// the fallback record instead of an error.
func (c *Client) fetchBookMeta(ctx context.Context, slug string) model.Book {
	fallback := model.Book{Slug: slug, Title: slugTitle(slug)}

	files, err := c.listDir(ctx, c.cfg.BooksPath, slug)
	if err != nil {
		return fallback
	}

	book := fallback
	book.Cover = findCover(files)
	for _, f := range files {
		if DecodeQuotedName(f.Name) != "info.json" {
			continue
		}
		_, data, err := c.getFile(ctx, c.cfg.BooksPath, slug, "info.json")
		if err != nil {
			break
		}
		var info bookInfo
		if err := json.Unmarshal(data, &info); err != nil {
			break
		}
		applyBookInfo(&book, info)
		break
	}
	return book
}

func applyBookInfo(book *model.Book, info bookInfo) {
	if info.Title != "" {
		book.Title = info.Title
	}
	book.Author = info.Author
	book.Status = info.Status
	book.Category = info.Category
	book.Tags = info.Tags
	book.Rating = info.Rating
	book.Date = info.Date
}

// slugTitle derives a fallback title from a directory name.
func slugTitle(slug string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(slug)
}

// sortBooks orders by descending date when every book carries one, else by
// title.
func sortBooks(books []model.Book) {
	allDated := len(books) > 0
	for _, b := range books {
		if b.Date == "" {
			allDated = false
			break
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		if allDated {
			return books[i].Date > books[j].Date
		}
		return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
	})
}

// GetBookDetail returns one book with its chapter listing. Per-chapter
// commit dates are fetched in parallel and degrade to "" individually.
func (c *Client) GetBookDetail(ctx context.Context, slug string) (*model.BookDetail, error) {
	entries, err := c.listDir(ctx, c.cfg.BooksPath, slug)
	if err != nil {
		return nil, internalErrors.NewContentUnavailableError(c.cfg.BooksPath+"/"+slug, err)
	}

	detail := &model.BookDetail{
		Book:         model.Book{Slug: slug, Title: slugTitle(slug)},
		FolderGroups: make(map[string][]model.ChapterRef),
	}
	detail.Cover = findCover(entries)

	for _, e := range entries {
		if DecodeQuotedName(e.Name) != "info.json" {
			continue
		}
		_, data, err := c.getFile(ctx, c.cfg.BooksPath, slug, "info.json")
		if err != nil {
			break
		}
		var info bookInfo
		if err := json.Unmarshal(data, &info); err != nil {
			break
		}
		applyBookInfo(&detail.Book, info)
		break
	}

	chapters := c.collectChapters(ctx, slug, entries)
	detail.TotalChapters = len(chapters)

	// Last commit date per chapter; a failed lookup leaves Date empty.
	var g errgroup.Group
	for i := range chapters {
		i := i
		g.Go(func() error {
			filePath := strings.Join([]string{c.cfg.BooksPath, slug, chapters[i].Path + ".md"}, "/")
			_, updated := c.commitDates(ctx, filePath, false)
			chapters[i].Date = formatDate(updated)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Order < chapters[j].Order })
	for _, ch := range chapters {
		if ch.Folder == "" {
			detail.RootChapters = append(detail.RootChapters, ch)
		} else {
			detail.FolderGroups[ch.Folder] = append(detail.FolderGroups[ch.Folder], ch)
		}
	}
	if detail.RootChapters == nil {
		detail.RootChapters = make([]model.ChapterRef, 0)
	}
	return detail, nil
}

// ListBookChapters returns the flattened chapter references of one book,
// root and subfolder chapters together, without commit dates.
func (c *Client) ListBookChapters(ctx context.Context, slug string) ([]model.ChapterRef, error) {
	entries, err := c.listDir(ctx, c.cfg.BooksPath, slug)
	if err != nil {
		return nil, internalErrors.NewContentUnavailableError(c.cfg.BooksPath+"/"+slug, err)
	}
	return c.collectChapters(ctx, slug, entries), nil
}

// collectChapters gathers root markdown files and subfolder markdown files
// as chapter references. A subfolder listing that fails contributes
// nothing.
func (c *Client) collectChapters(ctx context.Context, slug string, entries []contentEntry) []model.ChapterRef {
	var chapters []model.ChapterRef
	var subDirs []string

	for _, e := range entries {
		name := DecodeQuotedName(e.Name)
		switch {
		case e.Type == "file" && strings.HasSuffix(name, ".md") && name != indexFile:
			chapters = append(chapters, model.ChapterRef{
				Name:     formatChapterName(name),
				FileName: name,
				Path:     strings.TrimSuffix(name, ".md"),
				Order:    chapterOrder(name),
			})
		case e.Type == "dir":
			subDirs = append(subDirs, name)
		}
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, folder := range subDirs {
		folder := folder
		g.Go(func() error {
			subEntries, err := c.listDir(ctx, c.cfg.BooksPath, slug, folder)
			if err != nil {
				return nil
			}
			label := titleCaseWords(folder)
			var found []model.ChapterRef
			for _, se := range subEntries {
				name := DecodeQuotedName(se.Name)
				if se.Type != "file" || !strings.HasSuffix(name, ".md") {
					continue
				}
				found = append(found, model.ChapterRef{
					Name:     formatChapterName(name),
					FileName: name,
					Path:     folder + "/" + strings.TrimSuffix(name, ".md"),
					Order:    chapterOrder(name),
					Folder:   label,
				})
			}
			mu.Lock()
			chapters = append(chapters, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return chapters
}

// GetChapterContent fetches one chapter's markdown body and commit dates.
func (c *Client) GetChapterContent(ctx context.Context, bookSlug, chapterPath string) (*model.ChapterContent, error) {
	filePath := strings.Join([]string{c.cfg.BooksPath, bookSlug, chapterPath + ".md"}, "/")

	var (
		fileName         string
		data             []byte
		fileErr          error
		created, updated string
	)
	var g errgroup.Group
	g.Go(func() error {
		fileName, data, fileErr = c.getFile(ctx, c.cfg.BooksPath, bookSlug, chapterPath+".md")
		return nil
	})
	g.Go(func() error {
		created, updated = c.commitDates(ctx, filePath, true)
		return nil
	})
	_ = g.Wait()

	if fileErr != nil {
		return nil, internalErrors.NewChapterNotFoundError(bookSlug, chapterPath)
	}

	return &model.ChapterContent{
		BookSlug:  bookSlug,
		Path:      chapterPath,
		FileName:  fileName,
		Title:     formatChapterName(fileName),
		Content:   string(data),
		CreatedAt: formatDate(created),
		UpdatedAt: formatDate(updated),
	}, nil
}

var lastPageRe = regexp.MustCompile(`page=(\d+)>; rel="last"`)

// commitItem is one element of the commits listing.
type commitItem struct {
	Commit struct {
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// commitDates returns the creation and last-modification timestamps of a
// file. The most recent commit comes from the first page; when
// withCreated is set and the Link header advertises a last page, that page
// holds the original commit. Failures degrade to empty strings.
func (c *Client) commitDates(ctx context.Context, filePath string, withCreated bool) (created, updated string) {
	base := c.cfg.APIBaseURL + "/repos/" + c.cfg.Owner + "/" + c.cfg.Repo + "/commits" +
		"?path=" + url.QueryEscape(filePath) + "&per_page=1"

	var commits []commitItem
	header, err := c.getJSON(ctx, base, &commits)
	if err != nil || len(commits) == 0 {
		return "", ""
	}
	updated = commits[0].Commit.Committer.Date
	created = updated

	if !withCreated {
		return created, updated
	}
	if m := lastPageRe.FindStringSubmatch(header.Get("Link")); m != nil {
		var first []commitItem
		if _, err := c.getJSON(ctx, base+"&page="+m[1], &first); err == nil && len(first) > 0 {
			created = first[0].Commit.Committer.Date
		}
	}
	return created, updated
}
