// Package session holds the authenticated identity and bearer credential for
// each browser session, persisted across restarts.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storage"
	"storefront/internal/upstream"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Store is one session's identity state. The locally cached profile is
// authoritative until the next successful refresh or explicit login.
type Store struct {
	sid    string
	store  storage.Store
	client *upstream.Client
	logger *zap.Logger

	mu    sync.RWMutex
	user  *models.User
	token string
}

// NewStore creates a logged-out session store.
func NewStore(sid string, store storage.Store, client *upstream.Client) *Store {
	return &Store{
		sid:    sid,
		store:  store,
		client: client,
		logger: util.GetLogger(),
	}
}

// Restore reads the persisted {user, token} pair. When both are present and
// well-formed the session becomes authenticated synchronously and a
// background profile refresh is kicked off. Malformed persisted data is
// deleted and treated as logged out, never surfaced as an error.
func (s *Store) Restore(ctx context.Context) {
	rawUser, errUser := s.store.Get(ctx, storage.UserKey(s.sid))
	token, errToken := s.store.Get(ctx, storage.TokenKey(s.sid))
	if errUser != nil || errToken != nil || token == "" {
		util.SessionRestoresTotal.WithLabelValues("empty").Inc()
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == 0 {
		s.logger.Warn("Discarding malformed persisted session",
			zap.String("session_id", s.sid))
		_ = s.store.Del(ctx, storage.UserKey(s.sid), storage.TokenKey(s.sid))
		util.SessionRestoresTotal.WithLabelValues("corrupt").Inc()
		return
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()

	util.SessionRestoresTotal.WithLabelValues("restored").Inc()

	// Best-effort refresh against the backend; failure keeps the cached
	// profile.
	go s.refresh(token)
}

func (s *Store) refresh(token string) {
	user, err := s.client.Me(context.Background(), token)
	if err != nil {
		s.logger.Warn("Background profile refresh failed",
			zap.String("session_id", s.sid),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.token != token {
		// Session changed while the refresh was in flight.
		s.mu.Unlock()
		return
	}
	s.user = user
	s.mu.Unlock()

	s.persistUser(context.Background(), user)
}

// Login sets the session atomically and persists both fields. The session is
// immediately authenticated.
func (s *Store) Login(ctx context.Context, token string, user models.User) {
	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()

	if err := s.store.Set(ctx, storage.TokenKey(s.sid), token); err != nil {
		s.logger.Error("Failed to persist token", zap.Error(err))
	}
	s.persistUser(ctx, &user)
	util.SessionLoginsTotal.Inc()
}

// Logout clears the session and its persisted fields.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Del(ctx, storage.UserKey(s.sid), storage.TokenKey(s.sid)); err != nil {
		s.logger.Error("Failed to clear persisted session", zap.Error(err))
	}
}

// UpdateUser replaces the cached profile and persists it.
func (s *Store) UpdateUser(ctx context.Context, user models.User) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.persistUser(ctx, &user)
}

// IsAuthenticated is true iff a user is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the cached profile, or false when logged out.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Token returns the bearer credential, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) persistUser(ctx context.Context, user *models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("Failed to serialize user", zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, storage.UserKey(s.sid), string(raw)); err != nil {
		s.logger.Error("Failed to persist user", zap.Error(err))
	}
}
