package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"agora/internal/api"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/session"
)

// MessageService reads the guestbook and posts replies to it.
type MessageService struct {
	client Requester
	store  *session.Store
	logger *slog.Logger
}

func NewMessageService(client Requester, store *session.Store, logger *slog.Logger) *MessageService {
	return &MessageService{
		client: client,
		store:  store,
		logger: observability.Or(logger).With(slog.String("service", "message")),
	}
}

// List returns the top-level messages with their nested children.
func (s *MessageService) List(ctx context.Context) ([]*models.Message, error) {
	var out models.MessageList
	if err := s.client.Do(ctx, apiRequest(http.MethodGet, "/api/messages", nil), &out); err != nil {
		s.logger.WarnContext(ctx, "list messages failed", slog.String("error", err.Error()))
		return nil, models.NewRemoteError(serverMessage(err, MsgLoadMessagesFailed), err)
	}
	if out.Data == nil {
		out.Data = []*models.Message{}
	}
	return out.Data, nil
}

// Reply posts content as a reply to the message parentID. It requires a
// stored token and sends nothing otherwise.
func (s *MessageService) Reply(ctx context.Context, content string, parentID int64) error {
	token := s.store.Token(ctx)
	if token == "" {
		return models.NewAuthRequiredError(MsgNotLoggedIn)
	}

	req := apiRequest(http.MethodPost, "/api/messages", models.MessageRequest{
		Content:  content,
		ParentID: parentID,
	})
	req.Token = token
	if err := s.client.Do(ctx, req, nil); err != nil {
		s.logger.WarnContext(ctx, "reply failed", slog.String("error", err.Error()))
		return models.NewRemoteError(serverMessage(err, MsgReplyFailed), err)
	}
	return nil
}

// serverMessage returns the message the server put in the error body, or def.
func serverMessage(err error, def string) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	return def
}
