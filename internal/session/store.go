// Package session persists the authenticated principal across runs, playing
// the part browser local storage played for the original client: one durable
// entry for the bearer token and one for the serialized user record.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/domain"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store is the durable session store. It keeps an in-memory copy guarded by
// a mutex; concurrent processes sharing the same state dir are not
// coordinated, and a logout elsewhere is only discovered on the next 401.
type Store struct {
	dir    string
	logger *slog.Logger

	mu  sync.Mutex
	cur *domain.UserSession
}

// NewStore opens (creating if needed) the session store rooted at dir and
// loads any persisted session.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	s := &Store{dir: dir, logger: logger}
	if err := s.load(); err != nil {
		// A corrupt session is treated as logged out, not as a fatal error.
		logger.Warn("discarding unreadable session state", slog.String("error", err.Error()))
		_ = s.Clear()
	}
	return s, nil
}

func (s *Store) load() error {
	tokenBytes, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return nil
	}

	userBytes, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		return fmt.Errorf("read user record: %w", err)
	}

	var sess domain.UserSession
	if err := json.Unmarshal(userBytes, &sess); err != nil {
		return fmt.Errorf("decode user record: %w", err)
	}

	// Persisted state may carry a stale role spelling.
	sess.Normalize()
	sess.Token = token
	s.cur = &sess
	return nil
}

// Current returns the active session, if any.
func (s *Store) Current() (*domain.UserSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil, false
	}
	copied := *s.cur
	return &copied, true
}

// Token returns the persisted bearer token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil || s.cur.Token == "" {
		return "", false
	}
	return s.cur.Token, true
}

// SaveLogin persists a freshly constructed session: both entries are written
// before the in-memory copy is swapped, so a crash cannot leave a token
// without its record.
func (s *Store) SaveLogin(sess *domain.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.Normalize()
	userBytes, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), userBytes, 0o600); err != nil {
		return fmt.Errorf("write user record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	copied := *sess
	s.cur = &copied
	s.logger.Info("session saved",
		slog.String("user_id", sess.ID),
		slog.String("role", string(sess.Role)),
	)
	return nil
}

// Clear removes both durable entries and drops the in-memory session. It is
// safe to call repeatedly and when already logged out.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = nil
	var firstErr error
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", name, err)
			}
		}
	}
	return firstErr
}

// MergeMetadata folds a profile patch into the persisted user record so
// other surfaces (the header greeting, the cached profile) reflect a save
// without re-fetching.
func (s *Store) MergeMetadata(p domain.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return nil
	}
	p.ApplyTo(&s.cur.User)
	if p.Email != nil {
		s.cur.Email = *p.Email
	}
	s.cur.DisplayName = s.cur.User.DisplayName()

	userBytes, err := json.Marshal(s.cur)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), userBytes, 0o600); err != nil {
		return fmt.Errorf("write user record: %w", err)
	}
	return nil
}

// Claims parses the stored token's claims without verifying the signature.
// The client has no signing secret; verification is the server's job. This
// exists for display and proactive expiry checks only.
func (s *Store) Claims() (jwt.MapClaims, error) {
	token, ok := s.Token()
	if !ok {
		return nil, errors.New("no session token")
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token claims: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the token's expiry claim, when present and well formed.
func (s *Store) ExpiresAt() (time.Time, bool) {
	claims, err := s.Claims()
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
