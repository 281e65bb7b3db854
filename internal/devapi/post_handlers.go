package devapi

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
)

// ListPosts returns a page of published posts, newest first.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page, size := parsePage(c)

	records, total, err := s.postRepo.ListPublished(c.UserContext(), page*size, size)
	if err != nil {
		return err
	}

	posts := make([]models.Post, 0, len(records))
	for _, p := range records {
		posts = append(posts, p.toModel())
	}
	return c.JSON(models.NewPage(posts, page, size, total))
}

// GetPost returns a single post and counts the view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondWithError(c, fiber.StatusNotFound, "Post not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(post.toModel())
}

// CreatePost publishes a post authored by the caller.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req models.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return respondWithError(c, fiber.StatusBadRequest, "Title and content are required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return respondWithError(c, fiber.StatusBadRequest, "Title is too long")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return respondWithError(c, fiber.StatusBadRequest, "Content is too long")
	}
	if req.AuthorID != 0 && req.AuthorID != userID {
		return respondWithError(c, fiber.StatusForbidden, "Cannot post on behalf of another user")
	}

	post := &Post{Title: title, Content: content, AuthorID: userID, Published: true}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "post created", slog.Int64("post_id", post.ID))
	return c.Status(fiber.StatusCreated).JSON(created.toModel())
}

// ListComments returns the flat comment list of a post, oldest first.
func (s *Server) ListComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.postRepo.GetByID(ctx, postID); errors.Is(err, gorm.ErrRecordNotFound) {
		return respondWithError(c, fiber.StatusNotFound, "Post not found")
	} else if err != nil {
		return err
	}

	records, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	out := make([]*models.Comment, 0, len(records))
	for _, r := range records {
		out = append(out, r.toModel())
	}
	return c.JSON(out)
}

// CreateComment adds a comment, or a reply to a comment on the same post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return respondWithError(c, fiber.StatusBadRequest, "Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return respondWithError(c, fiber.StatusBadRequest, "Comment is too long")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); errors.Is(err, gorm.ErrRecordNotFound) {
		return respondWithError(c, fiber.StatusNotFound, "Post not found")
	} else if err != nil {
		return err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && parent.PostID != postID) {
			return respondWithError(c, fiber.StatusBadRequest, "Parent comment not found on this post")
		}
		if err != nil {
			return err
		}
	}

	comment := &Comment{Content: content, PostID: postID, UserID: userID, ParentID: req.ParentID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return err
	}
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "comment created",
		slog.Int64("post_id", postID),
		slog.Int64("comment_id", comment.ID),
	)
	return c.Status(fiber.StatusCreated).JSON(created.toModel())
}
