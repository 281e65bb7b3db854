package devapi

import (
	"errors"
	"strings"
	"unicode/utf8"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListMessages returns the guestbook as a forest of top-level messages.
func (s *Server) ListMessages(c *fiber.Ctx) error {
	records, err := s.messageRepo.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(models.MessageList{Success: true, Data: nestMessages(records)})
}

// CreateMessage posts a guestbook entry. A parentId of 0 starts a new thread.
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req models.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return respondWithError(c, fiber.StatusBadRequest, "Message content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return respondWithError(c, fiber.StatusBadRequest, "Message is too long")
	}

	message := &Message{Content: content, UserID: currentUserID(c)}
	if req.ParentID != 0 {
		if _, err := s.messageRepo.GetByID(ctx, req.ParentID); errors.Is(err, gorm.ErrRecordNotFound) {
			return respondWithError(c, fiber.StatusBadRequest, "Parent message not found")
		} else if err != nil {
			return err
		}
		parentID := req.ParentID
		message.ParentID = &parentID
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return err
	}
	created, err := s.messageRepo.GetByID(ctx, message.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created.toModel(),
	})
}

// nestMessages links replies under their parents. Records must be ordered
// oldest first; messages whose parent is missing become top-level.
func nestMessages(records []*Message) []*models.Message {
	byID := make(map[int64]*models.Message, len(records))
	ordered := make([]*models.Message, 0, len(records))
	for _, r := range records {
		m := r.toModel()
		m.Children = []*models.Message{}
		byID[m.ID] = m
		ordered = append(ordered, m)
	}

	roots := make([]*models.Message, 0)
	for _, m := range ordered {
		if m.ParentID != nil {
			if parent, ok := byID[*m.ParentID]; ok && parent != m {
				parent.Children = append(parent.Children, m)
				continue
			}
		}
		roots = append(roots, m)
	}
	return roots
}
