// Package feed is the view-model behind the home page: a page of posts and
// the comment tree of each post.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"agora/internal/comments"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/service"
)

// ContentSource is the subset of the content service the feed needs.
type ContentSource interface {
	GetPosts(ctx context.Context, page, size int) (*models.Page[models.Post], error)
	GetComments(ctx context.Context, postID int64) ([]*models.Comment, error)
	AddComment(ctx context.Context, postID int64, content string, parentID *int64) (*models.Comment, error)
}

// Option configures a Feed.
type Option func(*Feed)

// WithPageSize sets the number of posts per page.
func WithPageSize(size int) Option {
	return func(f *Feed) { f.pageSize = size }
}

// WithPage sets the zero-based page the first Load fetches.
func WithPage(page int) Option {
	return func(f *Feed) { f.page = max(page, 0) }
}

// WithConcurrency caps the number of comment fetches in flight.
func WithConcurrency(n int) Option {
	return func(f *Feed) { f.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) { f.logger = logger }
}

// Feed holds the currently displayed page. Comment trees for the posts on
// the page arrive independently; a post whose comments failed to load keeps
// the error instead of a tree.
type Feed struct {
	content     ContentSource
	pageSize    int
	concurrency int
	logger      *slog.Logger

	mu          sync.RWMutex
	page        int
	totalPages  int
	posts       []models.Post
	trees       map[int64][]*models.Comment
	commentErrs map[int64]error
	loading     bool
}

func New(content ContentSource, opts ...Option) *Feed {
	f := &Feed{
		content:     content,
		pageSize:    service.DefaultPageSize,
		concurrency: 8,
		trees:       make(map[int64][]*models.Comment),
		commentErrs: make(map[int64]error),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.concurrency < 1 {
		f.concurrency = 1
	}
	f.logger = observability.Or(f.logger).With(slog.String("component", "feed"))
	return f
}

// Load fetches the current page and then the comments of every post on it.
// When the posts request fails the error is returned and whatever was loaded
// before stays in place.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.loading = true
	page := f.page
	f.mu.Unlock()

	result, err := f.content.GetPosts(ctx, page, f.pageSize)
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to load posts", slog.Int("page", page), slog.String("error", err.Error()))
		f.setLoading(false)
		return err
	}

	f.mu.Lock()
	f.posts = append([]models.Post(nil), result.Content...)
	f.totalPages = result.TotalPages
	f.trees = make(map[int64][]*models.Comment, len(result.Content))
	f.commentErrs = make(map[int64]error)
	posts := f.posts
	f.mu.Unlock()

	f.loadComments(ctx, posts)
	f.setLoading(false)
	return nil
}

func (f *Feed) loadComments(ctx context.Context, posts []models.Post) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.concurrency)

	for _, post := range posts {
		wg.Add(1)
		sem <- struct{}{}

		go func(postID int64) {
			defer wg.Done()
			defer func() { <-sem }()
			_ = f.ReloadComments(ctx, postID)
		}(post.ID)
	}

	wg.Wait()
}

// ReloadComments refreshes the comment tree of one post. The result is
// dropped if the post is no longer on the current page when it arrives.
func (f *Feed) ReloadComments(ctx context.Context, postID int64) error {
	list, err := f.content.GetComments(ctx, postID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.onPage(postID) {
		f.logger.DebugContext(ctx, "discarding comments for post off the current page", slog.Int64("post_id", postID))
		return nil
	}
	if err != nil {
		observability.FeedCommentFetchFailures.Inc()
		f.logger.WarnContext(ctx, "failed to load comments", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		f.commentErrs[postID] = err
		return err
	}
	delete(f.commentErrs, postID)
	f.trees[postID] = comments.BuildTree(list)
	return nil
}

// onPage reports whether postID is on the current page. f.mu must be held.
func (f *Feed) onPage(postID int64) bool {
	for _, p := range f.posts {
		if p.ID == postID {
			return true
		}
	}
	return false
}

// AddComment posts a comment and then refreshes that post's comments. A
// failed refresh is logged and left recorded on the post.
func (f *Feed) AddComment(ctx context.Context, postID int64, content string, parentID *int64) (*models.Comment, error) {
	comment, err := f.content.AddComment(ctx, postID, content, parentID)
	if err != nil {
		return nil, err
	}
	_ = f.ReloadComments(ctx, postID)
	return comment, nil
}

// NextPage moves to the following page and loads it. It does nothing on the
// last page.
func (f *Feed) NextPage(ctx context.Context) error {
	f.mu.Lock()
	if f.page+1 >= f.totalPages {
		f.mu.Unlock()
		return nil
	}
	prev := f.page
	f.page++
	f.mu.Unlock()
	return f.loadOrRevert(ctx, prev)
}

// PreviousPage moves to the preceding page and loads it. It does nothing on
// the first page.
func (f *Feed) PreviousPage(ctx context.Context) error {
	f.mu.Lock()
	if f.page == 0 {
		f.mu.Unlock()
		return nil
	}
	prev := f.page
	f.page--
	f.mu.Unlock()
	return f.loadOrRevert(ctx, prev)
}

// GoTo jumps to page, clamped to the known page range, and loads it.
func (f *Feed) GoTo(ctx context.Context, page int) error {
	f.mu.Lock()
	prev := f.page
	if page >= f.totalPages {
		page = f.totalPages - 1
	}
	if page < 0 {
		page = 0
	}
	f.page = page
	f.mu.Unlock()
	return f.loadOrRevert(ctx, prev)
}

func (f *Feed) loadOrRevert(ctx context.Context, prev int) error {
	if err := f.Load(ctx); err != nil {
		f.mu.Lock()
		f.page = prev
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *Feed) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}

// Page returns the zero-based current page.
func (f *Feed) Page() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.page
}

// TotalPages returns the page count reported by the last successful load.
func (f *Feed) TotalPages() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.totalPages
}

// Loading reports whether a page load is in progress.
func (f *Feed) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

// HasNext reports whether a later page exists.
func (f *Feed) HasNext() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.page+1 < f.totalPages
}

// HasPrevious reports whether an earlier page exists.
func (f *Feed) HasPrevious() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.page > 0
}

// Posts returns the posts of the current page.
func (f *Feed) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Post(nil), f.posts...)
}

// Comments returns the comment tree of a post, or nil if it has not loaded.
func (f *Feed) Comments(postID int64) []*models.Comment {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.trees[postID]
}

// CommentError returns the error of the last failed comment load of a post.
func (f *Feed) CommentError(postID int64) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.commentErrs[postID]
}
