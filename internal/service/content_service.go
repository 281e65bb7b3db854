package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"agora/internal/api"
	"agora/internal/models"
	"agora/internal/navigation"
	"agora/internal/observability"
	"agora/internal/session"
)

// DefaultPageSize is the number of posts per page when none is given.
const DefaultPageSize = 3

// ContentService reads and writes posts and comments.
type ContentService struct {
	client Requester
	store  *session.Store
	nav    navigation.Navigator
	logger *slog.Logger
}

// CreatePostInput is the new post form.
type CreatePostInput struct {
	Title    string
	Content  string
	AuthorID int64
}

func NewContentService(
	client Requester,
	store *session.Store,
	nav navigation.Navigator,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		client: client,
		store:  store,
		nav:    nav,
		logger: observability.Or(logger).With(slog.String("service", "content")),
	}
}

// GetPosts fetches one zero-based page of published posts. A negative page
// is treated as the first page and a non-positive size as DefaultPageSize.
func (s *ContentService) GetPosts(ctx context.Context, page, size int) (*models.Page[models.Post], error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	var out models.Page[models.Post]
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/posts",
		Route:  "/api/posts",
		Query: url.Values{
			"page": {strconv.Itoa(page)},
			"size": {strconv.Itoa(size)},
		},
	}, &out)
	if err != nil {
		return nil, s.fail(ctx, "get posts", err)
	}
	return &out, nil
}

// GetPost fetches a single post.
func (s *ContentService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var out models.Post
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/posts/%d", id),
		Route:  "/api/posts/:id",
	}, &out)
	if err != nil {
		return nil, s.fail(ctx, "get post", err)
	}
	return &out, nil
}

// GetComments fetches the flat comment list of a post.
func (s *ContentService) GetComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var out []*models.Comment
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/posts/%d/comments", postID),
		Route:  "/api/posts/:id/comments",
	}, &out)
	if err != nil {
		return nil, s.fail(ctx, "get comments", err)
	}
	if out == nil {
		out = []*models.Comment{}
	}
	return out, nil
}

// AddComment posts a comment, or a reply when parentID is set. Without a
// session it navigates to the login route and sends nothing.
func (s *ContentService) AddComment(ctx context.Context, postID int64, content string, parentID *int64) (*models.Comment, error) {
	if !s.store.IsLoggedIn(ctx) {
		s.nav.Navigate(navigation.RouteLogin)
		return nil, models.NewAuthRequiredError(MsgLoginToComment)
	}

	var out models.Comment
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/posts/%d/comments", postID),
		Route:  "/api/posts/:id/comments",
		Body:   models.CommentRequest{Content: content, ParentID: parentID},
		Token:  s.store.Token(ctx),
	}, &out)
	if err != nil {
		return nil, s.fail(ctx, "add comment", err)
	}
	return &out, nil
}

// CreatePost publishes a new post. Without a session it navigates to the
// login route and sends nothing.
func (s *ContentService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if !s.store.IsLoggedIn(ctx) {
		s.nav.Navigate(navigation.RouteLogin)
		return nil, models.NewAuthRequiredError(MsgLoginToCreatePost)
	}

	var out models.Post
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/posts",
		Route:  "/api/posts",
		Body: models.CreatePostRequest{
			Title:    in.Title,
			Content:  in.Content,
			AuthorID: in.AuthorID,
		},
		Token: s.store.Token(ctx),
	}, &out)
	if err != nil {
		return nil, s.fail(ctx, "create post", err)
	}
	return &out, nil
}

func (s *ContentService) fail(ctx context.Context, op string, err error) error {
	s.logger.WarnContext(ctx, op+" failed", slog.String("error", err.Error()))
	return contentFailure(err, s.nav)
}
