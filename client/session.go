package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var ErrNoSession = errors.New("no session: log in first")

type (
	// SessionUser is what the API tells about the logged-in user.
	SessionUser struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Email    string `json:"email"`
	}

	// Session is persisted as {"token": ..., "user": {...}}.
	Session struct {
		Token string      `json:"token"`
		User  SessionUser `json:"user"`
	}

	// SessionStore is the single accessor of the session file.
	// Get never touches the disk: call Load once at startup.
	SessionStore struct {
		path string

		mu      sync.RWMutex
		current *Session
	}
)

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Init persists sess and makes it current.
func (s *SessionStore) Init(sess Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return errors.Wrap(err, "creating session directory")
		}
		if err = os.WriteFile(s.path, data, 0o600); err != nil {
			return errors.Wrap(err, "writing session")
		}
	}
	s.current = &sess
	return nil
}

// Load reads the session file; ErrNoSession is returned when there is none.
// A corrupted file is removed.
func (s *SessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.current == nil {
			return Session{}, ErrNoSession
		}
		return *s.current, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.current = nil
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, errors.Wrap(err, "reading session")
	}

	var sess Session
	if err = json.Unmarshal(data, &sess); err != nil || sess.Token == "" {
		s.current = nil
		_ = os.Remove(s.path)
		return Session{}, ErrNoSession
	}
	s.current = &sess
	return sess, nil
}

// Get returns the current session, if any.
func (s *SessionStore) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Clear forgets the session and removes its file.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session")
	}
	return nil
}
