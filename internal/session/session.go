// Package session keeps the bearer token, user profile and draft pointer across invocations.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/notify"
	"github.com/debemdeboas/blogctl/internal/store"
	"github.com/rs/zerolog"
)

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

type Kind int

const (
	KindSet Kind = iota
	KindDeleted
)

func (k Kind) String() string {
	if k == KindDeleted {
		return "deleted"
	}
	return "set"
}

// Event announces that one persisted key changed.
type Event struct {
	Key  string
	Kind Kind
}

// Store is the only way to reach the persisted session keys.
type Store struct {
	mu     sync.Mutex
	kv     store.Store
	events *notify.Broadcaster[Event]
}

func New(kv store.Store) *Store {
	return &Store{
		kv:     kv,
		events: notify.NewBroadcaster[Event](),
	}
}

func (s *Store) Subscribe(buffer int) *notify.Subscriber[Event] {
	return s.events.Subscribe(buffer)
}

func (s *Store) Unsubscribe(sub *notify.Subscriber[Event]) {
	s.events.Unsubscribe(sub)
}

func (s *Store) get(key string) string {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		sessionLogger.Error().Err(err).Str("key", key).Msg("Failed to read session key")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// Token is empty when nobody is logged in.
func (s *Store) Token() string {
	return s.get(config.KeyToken)
}

func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// IsAuthenticated requires both the flag and a token, as a half-cleared session is logged out.
func (s *Store) IsAuthenticated() bool {
	return s.get(config.KeyIsAuthenticated) == "true" && s.HasToken()
}

// User returns nil when no profile is stored.
func (s *Store) User() (*model.User, error) {
	raw := s.get(config.KeyUser)
	if raw == "" {
		return nil, nil
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

func (s *Store) SaveLogin(token string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.set(config.KeyToken, token); err != nil {
		return err
	}
	if err := s.set(config.KeyIsAuthenticated, "true"); err != nil {
		return err
	}
	return s.set(config.KeyUser, string(raw))
}

// SaveSignup keeps only the token; the user still has to log in.
func (s *Store) SaveSignup(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(config.KeyToken, token)
}

func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(config.KeyToken, config.KeyIsAuthenticated, config.KeyUser)
}

// Expire drops the credentials after the service rejected them. The profile stays for display.
func (s *Store) Expire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionLogger.Info().Msg("Session expired")
	return s.delete(config.KeyToken, config.KeyIsAuthenticated)
}

func (s *Store) DraftPointer() (model.PostID, bool) {
	id := s.get(config.KeyDraftID)
	return model.PostID(id), id != ""
}

func (s *Store) SetDraftPointer(id model.PostID) error {
	if id.IsZero() {
		return s.ClearDraftPointer()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(config.KeyDraftID, string(id))
}

func (s *Store) ClearDraftPointer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(config.KeyDraftID)
}

// ClearDraftPointerIf clears the pointer only when it references id.
func (s *Store) ClearDraftPointerIf(id model.PostID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id.IsZero() || s.get(config.KeyDraftID) != string(id) {
		return false, nil
	}
	if err := s.delete(config.KeyDraftID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) set(key, value string) error {
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	s.events.Broadcast(Event{Key: key, Kind: KindSet})
	return nil
}

func (s *Store) delete(keys ...string) error {
	present := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok, _ := s.kv.Get(k); ok {
			present = append(present, k)
		}
	}
	if err := s.kv.Delete(keys...); err != nil {
		return fmt.Errorf("clear %v: %w", keys, err)
	}
	for _, k := range present {
		s.events.Broadcast(Event{Key: k, Kind: KindDeleted})
	}
	return nil
}
