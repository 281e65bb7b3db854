// Package cli implements the agora terminal front-end.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"agora/internal/api"
	"agora/internal/config"
	"agora/internal/navigation"
	"agora/internal/service"
	"agora/internal/session"

	"github.com/fatih/color"
)

// App holds the services the commands run against.
type App struct {
	Auth     *service.AuthService
	Content  *service.ContentService
	Messages *service.MessageService
	Store    *session.Store
	Router   *navigation.Router

	Out io.Writer
	Err io.Writer

	closers []func() error
}

// New wires the services over client and store. Navigation to the login
// route prints a hint on the error stream.
func New(client service.Requester, store *session.Store, logger *slog.Logger, out, errOut io.Writer) *App {
	router := navigation.NewRouter()
	a := &App{
		Auth:     service.NewAuthService(client, store, logger),
		Content:  service.NewContentService(client, store, router, logger),
		Messages: service.NewMessageService(client, store, logger),
		Store:    store,
		Router:   router,
		Out:      out,
		Err:      errOut,
	}
	router.OnNavigate(func(route string) {
		if route == navigation.RouteLogin {
			color.New(color.FgYellow).Fprintln(a.Err, "Run `agora login <username>` to sign in.")
		}
	})
	return a
}

// Bootstrap builds an App from configuration, selecting the session storage
// backend and the API client settings.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIBaseURL, api.WithTimeout(cfg.APITimeout), api.WithLogger(logger))
	if err != nil {
		_ = closeStorage()
		return nil, err
	}

	store := session.NewStore(ctx, storage, session.WithKey(cfg.SessionKey), session.WithLogger(logger))
	a := New(client, store, logger, os.Stdout, os.Stderr)
	a.closers = append(a.closers, closeStorage)
	return a, nil
}

// Close releases the session storage.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func openStorage(ctx context.Context, cfg *config.Config) (session.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return session.NewMemoryStorage(), noop, nil
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStorage(client, cfg.SessionTTL), client.Close, nil
	default:
		path := cfg.SessionFile
		if path == "" {
			var err error
			if path, err = session.DefaultFilePath(); err != nil {
				return nil, nil, err
			}
		}
		return session.NewFileStorage(path), noop, nil
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}
