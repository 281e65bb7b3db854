// Package session holds the single logged-in identity of the client and
// persists it through a pluggable Storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKey is the storage key the identity is persisted under.
const DefaultKey = "currentUser"

// Listener receives the current identity, nil meaning logged out. A
// listener must not call SetIdentity or Clear on the Store it observes.
type Listener func(*models.User)

// subscription serializes deliveries to one listener so the replay in
// Subscribe is never overtaken by a later publish.
type subscription struct {
	mu sync.Mutex
	fn Listener
}

func (sub *subscription) deliver(user *models.User) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.fn(user)
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is an observable holder of the current identity. Writes go through
// a single path that persists, replaces and publishes in that order;
// each subscriber observes changes in write order.
type Store struct {
	storage Storage
	key     string
	logger  *slog.Logger
	now     func() time.Time

	writeMu sync.Mutex

	mu      sync.RWMutex
	current *models.User

	listenersMu sync.Mutex
	listeners   map[uint64]*subscription
	nextID      uint64
}

// NewStore builds a Store and restores the identity persisted in storage.
// Entries that cannot be read or decoded restore as no identity.
func NewStore(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		key:       DefaultKey,
		now:       time.Now,
		listeners: make(map[uint64]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = observability.Or(s.logger).With(slog.String("component", "session"))

	user, err := s.load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable session", slog.String("error", err.Error()))
	}
	s.current = user
	observability.RecordSessionEvent(observability.SessionEventRestore)
	return s
}

// Current returns a copy of the current identity, or nil when logged out.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers fn, calls it with the current identity, and then with
// every later change until the returned function is called. fn may call
// Subscribe and Current.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	sub.mu.Lock()
	defer sub.mu.Unlock()

	s.mu.RLock()
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = sub
	s.listenersMu.Unlock()
	current := s.current.Clone()
	s.mu.RUnlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// SetIdentity persists user and publishes it to every subscriber before
// returning. The identity is replaced as a whole; any password is dropped.
func (s *Store) SetIdentity(ctx context.Context, user *models.User) error {
	if user == nil {
		return s.Clear(ctx)
	}
	stored := user.Clone()
	stored.Password = ""

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		observability.RecordSessionEvent(observability.SessionEventError)
		return fmt.Errorf("failed to persist identity: %w", err)
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()

	observability.RecordSessionEvent(observability.SessionEventSet)
	s.logger.DebugContext(ctx, "identity set", slog.Int64("user_id", stored.ID))
	s.publish(stored)
	return nil
}

// Clear removes the persisted identity and publishes nil. The in-memory
// identity is cleared even when the storage removal fails; that failure is
// still returned.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.storage.Remove(ctx, s.key)
	if err != nil {
		observability.RecordSessionEvent(observability.SessionEventError)
		s.logger.ErrorContext(ctx, "failed to remove persisted identity", slog.String("error", err.Error()))
		err = fmt.Errorf("failed to remove identity: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	observability.RecordSessionEvent(observability.SessionEventClear)
	s.publish(nil)
	return err
}

// IsLoggedIn reports whether storage holds an identity with a token. A token
// that parses as a JWT with an exp claim in the past counts as logged out;
// opaque tokens are trusted as is.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	token := s.Token(ctx)
	if token == "" {
		return false
	}
	return !s.tokenExpired(token)
}

// Token returns the bearer token of the persisted identity, or "".
func (s *Store) Token(ctx context.Context) string {
	user, err := s.load(ctx)
	if err != nil || user == nil {
		return ""
	}
	return user.Token
}

func (s *Store) load(ctx context.Context) (*models.User, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &user, nil
}

func (s *Store) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

func (s *Store) publish(user *models.User) {
	s.listenersMu.Lock()
	subs := make([]*subscription, 0, len(s.listeners))
	for _, sub := range s.listeners {
		subs = append(subs, sub)
	}
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.deliver(user.Clone())
	}
}
