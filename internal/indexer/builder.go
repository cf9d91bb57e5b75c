// Package indexer builds the content search index: it enumerates every
// chapter of every book, fetches the markdown bodies through a fixed pool
// of workers sharing one task cursor, strips markdown, and persists the
// resulting records as a TTL-gated snapshot.
package indexer

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chanani/booksite/config"
	"github.com/chanani/booksite/internal/cache"
	"github.com/chanani/booksite/internal/markdown"
	"github.com/chanani/booksite/model"
	"github.com/chanani/booksite/services"
	"github.com/chanani/booksite/store"
)

// CacheKey is the snapshot key of the persisted index.
const CacheKey = "search-index"

// ProgressFunc observes build progress as (done, total). Total is 0 until
// task enumeration across all books has finished.
type ProgressFunc func(done, total int)

// Builder drives the index lifecycle: empty -> building -> ready, with a
// cached -> ready shortcut when a non-expired snapshot exists.
type Builder struct {
	content  services.ContentClient
	store    *store.ChapterStore
	cache    cache.Store
	ttl      time.Duration
	workers  int
	progress ProgressFunc

	mu    sync.Mutex
	state model.BuildState
	done  int
	total int
}

// New creates a Builder over the given content client, chapter store and
// snapshot cache.
func New(content services.ContentClient, chapters *store.ChapterStore, snapshots cache.Store, cfg config.Index) *Builder {
	return &Builder{
		content: content,
		store:   chapters,
		cache:   snapshots,
		ttl:     cfg.CacheTTL,
		workers: cfg.Concurrency,
		state:   model.BuildStateEmpty,
	}
}

// SetProgressFunc registers a progress observer. Must be called before
// Build.
func (b *Builder) SetProgressFunc(fn ProgressFunc) {
	b.progress = fn
}

// State returns the current lifecycle state.
func (b *Builder) State() model.BuildState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Progress returns completed and total task counts.
func (b *Builder) Progress() model.BuildProgress {
	b.mu.Lock()
	defer b.mu.Unlock()
	return model.BuildProgress{Done: b.done, Total: b.total}
}

// LoadCached hydrates the store from a non-expired snapshot and reports
// whether hydration succeeded. A stale or corrupt snapshot has already
// been deleted by the cache and counts as a miss.
func (b *Builder) LoadCached() bool {
	b.mu.Lock()
	if b.state != model.BuildStateEmpty {
		ready := b.state == model.BuildStateReady
		b.mu.Unlock()
		return ready
	}
	b.mu.Unlock()

	var records []model.IndexedChapter
	if err := b.cache.Get(CacheKey, b.ttl, &records); err != nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != model.BuildStateEmpty { // a build won the race
		return b.state == model.BuildStateReady
	}
	b.store.Replace(records)
	b.state = model.BuildStateReady
	b.done = len(records)
	b.total = len(records)
	log.Printf("Search index hydrated from snapshot: %d chapters", len(records))
	return true
}

// buildTask pairs a book with one of its chapters.
type buildTask struct {
	book    model.Book
	chapter model.ChapterRef
}

// Build runs a full index build. It is a no-op unless the builder is
// empty, and it never fails: a chapter whose fetch errors is skipped with
// no retry, and a full content-store outage yields an empty index in the
// ready state.
func (b *Builder) Build(ctx context.Context, books []model.Book) {
	b.mu.Lock()
	if b.state != model.BuildStateEmpty {
		b.mu.Unlock()
		return
	}
	b.state = model.BuildStateBuilding
	b.done = 0
	b.total = 0
	b.mu.Unlock()

	tasks := b.enumerate(ctx, books)

	b.mu.Lock()
	b.total = len(tasks)
	b.mu.Unlock()
	b.report(0, len(tasks))

	var (
		cursor    atomic.Int64
		completed atomic.Int64
		wg        sync.WaitGroup
	)
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(tasks) {
					return
				}
				b.runTask(ctx, tasks[idx])
				done := int(completed.Add(1))
				b.mu.Lock()
				b.done = done
				b.mu.Unlock()
				b.report(done, len(tasks))
			}
		}()
	}
	wg.Wait()

	records := b.store.Snapshot()
	if err := b.cache.Set(CacheKey, records); err != nil {
		log.Printf("Warning: failed to persist search index snapshot: %v", err)
	}

	b.mu.Lock()
	b.state = model.BuildStateReady
	b.mu.Unlock()
	log.Printf("Search index built: %d of %d chapters indexed", len(records), len(tasks))
}

// enumerate flattens every book's chapter listing into one task list.
// A book whose listing fails contributes no tasks.
func (b *Builder) enumerate(ctx context.Context, books []model.Book) []buildTask {
	var tasks []buildTask
	for _, book := range books {
		chapters, err := b.content.ListBookChapters(ctx, book.Slug)
		if err != nil {
			log.Printf("Warning: listing chapters of book '%s' failed: %v", book.Slug, err)
			continue
		}
		for _, ch := range chapters {
			tasks = append(tasks, buildTask{book: book, chapter: ch})
		}
	}
	return tasks
}

// runTask fetches and indexes one chapter. Fetch errors skip the chapter;
// there is no retry and the pool keeps draining.
func (b *Builder) runTask(ctx context.Context, t buildTask) {
	content, err := b.content.GetChapterContent(ctx, t.book.Slug, t.chapter.Path)
	if err != nil {
		return
	}
	b.store.Append(model.IndexedChapter{
		BookSlug:    t.book.Slug,
		BookTitle:   t.book.Title,
		ChapterPath: t.chapter.Path,
		ChapterName: t.chapter.Name,
		PlainText:   markdown.Strip(content.Content),
	})
}

func (b *Builder) report(done, total int) {
	if b.progress != nil {
		b.progress(done, total)
	}
}

// Invalidate drops the in-memory index and the persisted snapshot. It is
// ignored while a build is running.
func (b *Builder) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == model.BuildStateBuilding {
		return
	}
	b.store.Clear()
	if err := b.cache.Delete(CacheKey); err != nil {
		log.Printf("Warning: failed to delete search index snapshot: %v", err)
	}
	b.state = model.BuildStateEmpty
	b.done = 0
	b.total = 0
}
